package controllers

import (
	"errors"
	"mime/multipart"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pedant-server/internal/dto"
	"pedant-server/internal/services"
	"pedant-server/pkg/api"
	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/utils"
)

const orderPhotosField = "photos"

type OrderController struct {
	orderService services.OrderServiceInterface
	logger       *zap.Logger
}

func NewOrderController(orderService services.OrderServiceInterface, logger *zap.Logger) *OrderController {
	return &OrderController{orderService: orderService, logger: logger}
}

func (c *OrderController) GetOrders(ctx echo.Context) error {
	serviceID, err := utils.ParseOptionalUint64(ctx.QueryParam("serviceId"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	filter := dto.OrderFilterDTO{ServiceID: serviceID, Status: ctx.QueryParam("status")}

	list, err := c.orderService.ListOrders(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Список заказов получен", list)
}

func (c *OrderController) FindOrder(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	order, err := c.orderService.GetOrder(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, order, "Заказ найден", http.StatusOK)
}

// CreateOrder принимает multipart-форму (поля + файлы "photos") или JSON без фото.
func (c *OrderController) CreateOrder(ctx echo.Context) error {
	payload, photos, err := c.readCreateForm(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := ctx.Validate(&payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	order, err := c.orderService.CreateOrder(ctx.Request().Context(), payload, photos)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	c.logger.Info("Заказ создан",
		zap.Uint64("orderID", order.ID),
		zap.String("number", order.OrderNumber),
		zap.Int("photos", len(order.Photos)),
	)
	return utils.SuccessResponse(ctx, order, "Заказ создан", http.StatusCreated)
}

func (c *OrderController) readCreateForm(ctx echo.Context) (dto.CreateOrderDTO, []*multipart.FileHeader, error) {
	var payload dto.CreateOrderDTO

	form, err := ctx.MultipartForm()
	if errors.Is(err, http.ErrNotMultipart) {
		if err := ctx.Bind(&payload); err != nil {
			return payload, nil, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат запроса", err, nil)
		}
		return payload, nil, nil
	}
	if err != nil {
		return payload, nil, apperrors.NewHttpError(http.StatusBadRequest, "Не удалось прочитать форму", err, nil)
	}

	serviceID, err := utils.ParseOptionalUint64(ctx.FormValue("serviceId"))
	if err != nil {
		return payload, nil, err
	}
	payload.ServiceID = serviceID
	payload.OrderNumber = ctx.FormValue("orderNumber")
	payload.Comment = ctx.FormValue("comment")
	return payload, form.File[orderPhotosField], nil
}

func (c *OrderController) UpdateOrder(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateOrderDTO
	if err := utils.BindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	order, err := c.orderService.UpdateOrder(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, order, "Заказ обновлён", http.StatusOK)
}

func (c *OrderController) DeleteOrder(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.orderService.DeleteOrder(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Заказ удалён", http.StatusOK)
}
