package routes

import (
	"github.com/labstack/echo/v4"

	"pedant-server/internal/authz"
	"pedant-server/internal/controllers"
	"pedant-server/pkg/middleware"
)

// Администратору выгрузка доступна без трудоустройства; право повторно проверяет сервис.
func runReportRouter(secureGroup *echo.Group, ctrl *controllers.ReportController, guards *middleware.Guards) {
	secureGroup.GET("/services/:id/orders/export", ctrl.ExportServiceOrders,
		guards.AdminOr(guards.RequireServicePermission("id", authz.ViewOrders)))
}
