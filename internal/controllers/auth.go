package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pedant-server/internal/dto"
	"pedant-server/internal/services"
	"pedant-server/pkg/middleware"
	"pedant-server/pkg/utils"
)

type AuthController struct {
	authService services.AuthServiceInterface
	logger      *zap.Logger
}

func NewAuthController(authService services.AuthServiceInterface, logger *zap.Logger) *AuthController {
	return &AuthController{authService: authService, logger: logger}
}

func (ctrl *AuthController) errorResponse(c echo.Context, err error) error {
	return utils.ErrorResponse(c, err, ctrl.logger)
}

// TelegramLogin - вход из WebApp по initData.
func (ctrl *AuthController) TelegramLogin(c echo.Context) error {
	var payload dto.TelegramAuthDTO
	if err := utils.BindAndValidate(c, &payload); err != nil {
		return ctrl.errorResponse(c, err)
	}

	res, err := ctrl.authService.TelegramLogin(c.Request().Context(), payload, c.Request().Header.Get(middleware.TelegramUserHeader))
	if err != nil {
		ctrl.logger.Warn("TelegramLogin: вход отклонён", zap.String("platform", payload.Platform), zap.Error(err))
		return ctrl.errorResponse(c, err)
	}
	ctrl.logger.Info("TelegramLogin: пользователь вошёл", zap.Uint64("userID", res.User.ID), zap.String("sessionID", res.SessionID))
	return utils.SuccessResponse(c, res, "Авторизация прошла успешно", http.StatusOK)
}

func (ctrl *AuthController) RefreshTokens(c echo.Context) error {
	var payload dto.RefreshTokenDTO
	if err := utils.BindAndValidate(c, &payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	res, err := ctrl.authService.RefreshTokens(c.Request().Context(), payload.RefreshToken)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, res, "Токены обновлены", http.StatusOK)
}

func (ctrl *AuthController) PingSession(c echo.Context) error {
	var payload dto.SessionPingDTO
	if err := utils.BindAndValidate(c, &payload); err != nil {
		return ctrl.errorResponse(c, err)
	}
	session, err := ctrl.authService.PingSession(c.Request().Context(), payload.SessionID)
	if err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, session, "Сессия продлена", http.StatusOK)
}

func (ctrl *AuthController) Logout(c echo.Context) error {
	if err := ctrl.authService.Logout(c.Request().Context()); err != nil {
		return ctrl.errorResponse(c, err)
	}
	return utils.SuccessResponse(c, struct{}{}, "Выход выполнен", http.StatusOK)
}
