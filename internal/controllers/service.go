package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pedant-server/internal/dto"
	"pedant-server/internal/services"
	"pedant-server/pkg/api"
	"pedant-server/pkg/utils"
)

type ServiceController struct {
	registry services.ServiceRegistryInterface
	orders   services.OrderServiceInterface
	logger   *zap.Logger
}

func NewServiceController(
	registry services.ServiceRegistryInterface,
	orders services.OrderServiceInterface,
	logger *zap.Logger,
) *ServiceController {
	return &ServiceController{registry: registry, orders: orders, logger: logger}
}

func (c *ServiceController) GetServices(ctx echo.Context) error {
	list, err := c.registry.ListServices(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Список сервисов получен", list)
}

func (c *ServiceController) GetServicesByOwner(ctx echo.Context) error {
	ownerID, err := utils.ParseIDParam(ctx, "ownerId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	list, err := c.registry.ListServicesByOwner(ctx.Request().Context(), ownerID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Сервисы владельца получены", list)
}

func (c *ServiceController) FindService(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	service, err := c.registry.GetService(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, service, "Сервис найден", http.StatusOK)
}

func (c *ServiceController) CreateService(ctx echo.Context) error {
	var payload dto.CreateServiceDTO
	if err := utils.BindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	service, err := c.registry.CreateService(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	c.logger.Info("Сервис создан", zap.Uint64("serviceID", service.ID), zap.String("number", service.ServiceNumber))
	return utils.SuccessResponse(ctx, service, "Сервис создан", http.StatusCreated)
}

func (c *ServiceController) UpdateService(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateServiceDTO
	if err := utils.BindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	service, err := c.registry.UpdateService(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, service, "Сервис обновлён", http.StatusOK)
}

func (c *ServiceController) DeleteService(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.registry.DeleteService(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	c.logger.Info("Сервис удалён", zap.Uint64("serviceID", id))
	return utils.SuccessResponse(ctx, struct{}{}, "Сервис удалён", http.StatusOK)
}

func (c *ServiceController) NextOrderNumber(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.orders.NextOrderNumber(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Следующий номер заказа", http.StatusOK)
}
