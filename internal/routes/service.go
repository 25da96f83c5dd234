package routes

import (
	"github.com/labstack/echo/v4"

	"pedant-server/internal/authz"
	"pedant-server/internal/controllers"
	"pedant-server/pkg/middleware"
)

func runServiceRouter(secureGroup *echo.Group, ctrl *controllers.ServiceController, guards *middleware.Guards) {
	ownerOrAdmin := guards.AdminOr(guards.RequireServiceOwner("id"))

	secureGroup.GET("/services", ctrl.GetServices)
	secureGroup.POST("/services", ctrl.CreateService)
	secureGroup.GET("/services/owner/:ownerId", ctrl.GetServicesByOwner)
	secureGroup.GET("/services/:id", ctrl.FindService)
	secureGroup.PUT("/services/:id", ctrl.UpdateService, ownerOrAdmin)
	secureGroup.DELETE("/services/:id", ctrl.DeleteService, ownerOrAdmin)
	secureGroup.GET("/services/:id/next-order-number", ctrl.NextOrderNumber,
		guards.RequireServicePermission("id", authz.CreateOrders))
}
