package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pedant-server/internal/dto"
	"pedant-server/internal/entities"
	"pedant-server/internal/services"
	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/utils"
)

type SettingsController struct {
	settingsService services.SettingsServiceInterface
	logger          *zap.Logger
}

func NewSettingsController(settingsService services.SettingsServiceInterface, logger *zap.Logger) *SettingsController {
	return &SettingsController{settingsService: settingsService, logger: logger}
}

func (c *SettingsController) GetSettings(ctx echo.Context) error {
	res, err := c.settingsService.GetSettings(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Настройки получены", http.StatusOK)
}

func (c *SettingsController) UpdateSettings(ctx echo.Context) error {
	var values entities.SettingsValues
	if err := ctx.Bind(&values); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат настроек", err, nil), c.logger)
	}
	res, err := c.settingsService.UpdateSettings(ctx.Request().Context(), values)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Настройки сохранены", http.StatusOK)
}

func (c *SettingsController) UpdateSetting(ctx echo.Context) error {
	var payload dto.UpdateSettingDTO
	if err := utils.BindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	res, err := c.settingsService.UpdateSetting(ctx.Request().Context(), payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, res, "Настройка сохранена", http.StatusOK)
}

func (c *SettingsController) SetPincode(ctx echo.Context) error {
	var payload dto.PincodeDTO
	if err := utils.BindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.settingsService.SetPincode(ctx.Request().Context(), payload.Pincode); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "PIN-код установлен", http.StatusOK)
}

func (c *SettingsController) VerifyPincode(ctx echo.Context) error {
	var payload dto.PincodeDTO
	if err := utils.BindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	ok, err := c.settingsService.VerifyPincode(ctx.Request().Context(), payload.Pincode)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, map[string]bool{"valid": ok}, "PIN-код проверен", http.StatusOK)
}

func (c *SettingsController) DeletePincode(ctx echo.Context) error {
	if err := c.settingsService.DeletePincode(ctx.Request().Context()); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "PIN-код удалён", http.StatusOK)
}
