package routes

import (
	"github.com/labstack/echo/v4"

	"pedant-server/internal/controllers"
)

func runEmployeeRouter(secureGroup *echo.Group, ctrl *controllers.EmployeeController) {
	secureGroup.GET("/employees/service/:serviceId", ctrl.GetServiceEmployees)
	secureGroup.POST("/employees/service/:serviceId", ctrl.AddEmployee)
	secureGroup.GET("/employees/user/:userId", ctrl.GetUserEmployments)
	secureGroup.GET("/employees/:userId/:serviceId/:permission", ctrl.CheckPermission)
	secureGroup.POST("/employees/hire", ctrl.HireEmployee)
	secureGroup.PUT("/employees/:id", ctrl.UpdateEmployee)
	secureGroup.DELETE("/employees/:id", ctrl.RemoveEmployee)
}
