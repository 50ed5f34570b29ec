package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/lib/errs"
	apimodels "github.com/amezarenovaautomatizacion-sudo/ApiRenova-sub000/models/api"
)

type BaseAPIController struct{}

func (c *BaseAPIController) BodyParser(ctx *fiber.Ctx, out interface{}) error {
	if err := ctx.BodyParser(out); err != nil {
		log.WithError(err).Error("ошибка распознавания запроса")
		return errors.New("не удалось получить данные из запроса")
	}
	return nil
}

func (c *BaseAPIController) GetID(ctx *fiber.Ctx) (string, error) {
	return c.GetIDByKey(ctx, "id")
}

func (c *BaseAPIController) GetIDByKey(ctx *fiber.Ctx, key string) (string, error) {
	id := ctx.Params(key)
	if id == "" {
		return "", errors.Errorf("не указан идентификатор (%v)", key)
	}
	if _, err := uuid.Parse(id); err != nil {
		return "", errors.Errorf("некорректный идентификатор (%v)", key)
	}
	return id, nil
}

func (c *BaseAPIController) GetLogger(ctx *fiber.Ctx) *log.Entry {
	return log.
		WithField("method", ctx.Method()).
		WithField("path", ctx.Path())
}

// SendError переводит ошибки уровня бизнес-логики в коды ответа,
// всё неожиданное логируется и возвращается как 500.
func (c *BaseAPIController) SendError(ctx *fiber.Ctx, logger *log.Entry, err error, errMsg string) error {
	switch {
	case errors.Is(err, errs.ErrRequestNotFound),
		errors.Is(err, errs.ErrEmployeeNotFound),
		errors.Is(err, errs.ErrNoLedger):
		return ctx.Status(fiber.StatusNotFound).JSON(apimodels.NewError(err.Error()))
	case errors.Is(err, errs.ErrNotAuthorized),
		errors.Is(err, errs.ErrNotApprover):
		return ctx.Status(fiber.StatusForbidden).JSON(apimodels.NewError(err.Error()))
	case errors.Is(err, errs.ErrAlreadyDecided),
		errors.Is(err, errs.ErrNotDecided),
		errors.Is(err, errs.ErrNotPending),
		errors.Is(err, errs.ErrDuplicateBooking):
		return ctx.Status(fiber.StatusConflict).JSON(apimodels.NewError(err.Error()))
	case errors.Is(err, errs.ErrInsufficientBalance),
		errors.Is(err, errs.ErrAmendWindowExpired),
		errors.Is(err, errs.ErrNoPanel):
		return ctx.Status(fiber.StatusBadRequest).JSON(apimodels.NewError(err.Error()))
	}
	logger.WithError(err).Error(errMsg)
	return ctx.Status(fiber.StatusInternalServerError).JSON(apimodels.NewError(errMsg))
}
