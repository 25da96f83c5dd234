package routes

import (
	"github.com/labstack/echo/v4"

	"pedant-server/internal/controllers"
	"pedant-server/pkg/middleware"
)

func runUserRouter(secureGroup *echo.Group, ctrl *controllers.UserController, guards *middleware.Guards) {
	secureGroup.GET("/users/me", ctrl.GetMe)
	secureGroup.PUT("/users/me/active-service", ctrl.SetActiveService)
	secureGroup.GET("/users", ctrl.GetUsers, guards.RequireAdmin)
	secureGroup.POST("/users", ctrl.UpsertUser, guards.RequireAdmin)
	secureGroup.GET("/users/:id", ctrl.FindUser)
	secureGroup.PUT("/users/:id", ctrl.UpdateUser)
	secureGroup.PUT("/users/:id/role", ctrl.UpdateUserRole, guards.RequireAdmin)
}
