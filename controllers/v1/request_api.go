package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/controllers"
	requesthandler "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/request"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/middleware"
	apimodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/api"
	requestapimodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/api/request"
)

type requestApiController struct {
	controllers.BaseAPIController
}

func InitRequestApiRouters(app *fiber.App) {
	controller := requestApiController{}
	app.Route("request", func(router fiber.Router) {
		router.Post("", controller.create)
		router.Get("my", controller.listMy)
		router.Get("pending", controller.listPending)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Get("", controller.get)
			idRoute.Post("decision", controller.decide)
			idRoute.Put("decision", controller.amend)
			idRoute.Post("cancel", controller.cancel)
			idRoute.Get("history", controller.history)
		})
	})
}

// @Summary Создание заявки
// @Tags Заявки
// @Description Создание заявки (отпуск/отгул/переработка)
// @Param   Authorization	header	string									true	"Authorization token"
// @Param	body 			body	requestapimodels.RequestCreateData		true	"request body"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request [post]
func (c *requestApiController) create(ctx *fiber.Ctx) error {
	var payload requestapimodels.RequestCreateData
	if err := c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err := payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	actorID := middleware.GetUserID(ctx)
	id, err := requesthandler.Instance.Create(actorID, payload)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка создания заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(id))
}

// @Summary Мои заявки
// @Tags Заявки
// @Description Список заявок текущего сотрудника
// @Param   Authorization	header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]requestapimodels.RequestView}
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request/my [get]
func (c *requestApiController) listMy(ctx *fiber.Ctx) error {
	employeeID := middleware.GetUserID(ctx)
	result, err := requesthandler.Instance.ListByEmployee(employeeID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка заявок")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Заявки на согласовании
// @Tags Заявки
// @Description Список заявок, ожидающих решения текущего согласующего
// @Param   Authorization	header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]requestapimodels.RequestView}
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request/pending [get]
func (c *requestApiController) listPending(ctx *fiber.Ctx) error {
	approverID := middleware.GetUserID(ctx)
	result, err := requesthandler.Instance.GetPendingFor(approverID)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения списка заявок на согласование")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Заявка
// @Tags Заявки
// @Description Карточка заявки с записями согласования
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   id          	path    string	true    "rec ID"
// @Success 200 {object} apimodels.Response{data=requestapimodels.RequestView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request/{id} [get]
func (c *requestApiController) get(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	result, err := requesthandler.Instance.GetByID(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Решение по заявке
// @Tags Заявки
// @Description Согласовать или отклонить заявку
// @Param   Authorization	header	string							true	"Authorization token"
// @Param	body 			body	requestapimodels.DecisionData	true	"request body"
// @Param   id          	path    string							true    "rec ID"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request/{id}/decision [post]
func (c *requestApiController) decide(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload requestapimodels.DecisionData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	approverID := middleware.GetUserID(ctx)
	newState, err := requesthandler.Instance.Decide(id, approverID, payload.GetDecision(), payload.Comment)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка фиксации решения по заявке")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(newState))
}

// @Summary Корректировка решения
// @Tags Заявки
// @Description Изменение ранее зафиксированного решения в пределах окна корректировки
// @Param   Authorization	header	string							true	"Authorization token"
// @Param	body 			body	requestapimodels.DecisionData	true	"request body"
// @Param   id          	path    string							true    "rec ID"
// @Success 200 {object} apimodels.Response{data=string}
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request/{id}/decision [put]
func (c *requestApiController) amend(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload requestapimodels.DecisionData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	if err = payload.Validate(); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	approverID := middleware.GetUserID(ctx)
	newState, err := requesthandler.Instance.Amend(id, approverID, payload.GetDecision(), payload.Comment)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка корректировки решения по заявке")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(newState))
}

// @Summary Отмена заявки
// @Tags Заявки
// @Description Отмена заявки автором, руководителем или администратором
// @Param   Authorization	header	string							true	"Authorization token"
// @Param	body 			body	requestapimodels.CancelData		true	"request body"
// @Param   id          	path    string							true    "rec ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 409 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request/{id}/cancel [post]
func (c *requestApiController) cancel(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	var payload requestapimodels.CancelData
	if err = c.BodyParser(ctx, &payload); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	actorID := middleware.GetUserID(ctx)
	err = requesthandler.Instance.Cancel(id, actorID, payload.Reason)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка отмены заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary История заявки
// @Tags Заявки
// @Description Журнал аудита заявки
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   id          	path    string	true    "rec ID"
// @Success 200 {object} apimodels.Response{data=[]requestapimodels.AuditEntryView}
// @Failure 400 {object} apimodels.Response
// @Failure 404 {object} apimodels.Response
// @Failure 500 {object} apimodels.Response
// @router /api/v1/request/{id}/history [get]
func (c *requestApiController) history(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	result, err := requesthandler.Instance.History(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения истории заявки")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}
