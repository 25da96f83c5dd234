package routes

import (
	"github.com/labstack/echo/v4"

	"pedant-server/internal/controllers"
)

func runHiringRouter(secureGroup *echo.Group, ctrl *controllers.HiringController) {
	queue := secureGroup.Group("/hiring-queue")
	queue.POST("", ctrl.AddToQueue)
	queue.POST("/general", ctrl.JoinGeneralQueue)
	queue.POST("/:id/approve", ctrl.Approve)
	queue.POST("/:id/reject", ctrl.Reject)
	queue.POST("/:id/approve-and-hire", ctrl.ApproveAndHire)
	queue.GET("/employer/:employerId", ctrl.GetEmployerQueue)
	queue.GET("/candidate/:candidateId", ctrl.GetCandidateApplications)
	queue.GET("/stats/:employerId", ctrl.GetQueueStats)
}
