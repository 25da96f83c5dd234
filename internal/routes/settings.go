package routes

import (
	"github.com/labstack/echo/v4"

	"pedant-server/internal/controllers"
)

func runSettingsRouter(secureGroup *echo.Group, ctrl *controllers.SettingsController) {
	settings := secureGroup.Group("/settings")
	settings.GET("", ctrl.GetSettings)
	settings.PUT("", ctrl.UpdateSettings)
	settings.PATCH("/setting", ctrl.UpdateSetting)
	settings.POST("/pincode", ctrl.SetPincode)
	settings.POST("/pincode/verify", ctrl.VerifyPincode)
	settings.DELETE("/pincode", ctrl.DeletePincode)
}
