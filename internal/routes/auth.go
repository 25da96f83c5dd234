package routes

import (
	"github.com/labstack/echo/v4"

	"pedant-server/internal/controllers"
)

func runAuthRouter(api, secureGroup *echo.Group, ctrl *controllers.AuthController) {
	auth := api.Group("/auth")
	auth.POST("/telegram", ctrl.TelegramLogin)
	auth.POST("/refresh", ctrl.RefreshTokens)

	secureGroup.POST("/auth/logout", ctrl.Logout)
	secureGroup.POST("/session/ping", ctrl.PingSession)
}
