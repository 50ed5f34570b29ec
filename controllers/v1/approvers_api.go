package apiv1

import (
	"github.com/gofiber/fiber/v2"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/controllers"
	approvershandler "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/approvers"
	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/middleware"
	apimodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/api"
)

type approversApiController struct {
	controllers.BaseAPIController
}

func InitApproversApiRouters(app *fiber.App) {
	controller := approversApiController{}
	app.Route("approver", func(router fiber.Router) {
		router.Get("", controller.list)
		router.Route(":id", func(idRoute fiber.Router) {
			idRoute.Post("", middleware.AdminRoleRequired(), controller.appoint)
			idRoute.Delete("", middleware.AdminRoleRequired(), controller.revoke)
		})
	})
}

// @Summary Реестр согласующих
// @Tags Согласующие
// @Description Активные назначенные согласующие в порядке назначения
// @Param   Authorization	header	string	true	"Authorization token"
// @Success 200 {object} apimodels.Response{data=[]employeeapimodels.ApproverView}
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approver [get]
func (c *approversApiController) list(ctx *fiber.Ctx) error {
	result, err := approvershandler.Instance.ListActive()
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка получения реестра согласующих")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(result))
}

// @Summary Назначение согласующего
// @Tags Согласующие
// @Description Добавление сотрудника в реестр согласующих
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   id          	path    string	true    "employee ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approver/{id} [post]
func (c *approversApiController) appoint(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = approvershandler.Instance.Appoint(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка назначения согласующего")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}

// @Summary Отзыв согласующего
// @Tags Согласующие
// @Description Исключение сотрудника из реестра согласующих
// @Param   Authorization	header	string	true	"Authorization token"
// @Param   id          	path    string	true    "employee ID"
// @Success 200 {object} apimodels.Response
// @Failure 400 {object} apimodels.Response
// @Failure 403
// @Failure 500 {object} apimodels.Response
// @router /api/v1/approver/{id} [delete]
func (c *approversApiController) revoke(ctx *fiber.Ctx) error {
	id, err := c.GetID(ctx)
	if err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	err = approvershandler.Instance.Revoke(id)
	if err != nil {
		return c.SendError(ctx, c.GetLogger(ctx), err, "Ошибка отзыва согласующего")
	}
	return ctx.Status(fiber.StatusOK).JSON(apimodels.NewResponse(nil))
}
