package routes

import (
	"github.com/labstack/echo/v4"

	"pedant-server/internal/controllers"
)

func runOrderRouter(secureGroup *echo.Group, ctrl *controllers.OrderController) {
	secureGroup.GET("/orders", ctrl.GetOrders)
	secureGroup.POST("/orders", ctrl.CreateOrder)
	secureGroup.GET("/orders/:id", ctrl.FindOrder)
	secureGroup.PUT("/orders/:id", ctrl.UpdateOrder)
	secureGroup.DELETE("/orders/:id", ctrl.DeleteOrder)
}
