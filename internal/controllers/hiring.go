package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pedant-server/internal/dto"
	"pedant-server/internal/services"
	"pedant-server/pkg/api"
	"pedant-server/pkg/utils"
)

type HiringController struct {
	queue  services.HiringQueueServiceInterface
	logger *zap.Logger
}

func NewHiringController(queue services.HiringQueueServiceInterface, logger *zap.Logger) *HiringController {
	return &HiringController{queue: queue, logger: logger}
}

// AddToQueue - автор запроса приглашает кандидата как работодатель.
func (c *HiringController) AddToQueue(ctx echo.Context) error {
	employerID, err := actorID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.AddToQueueDTO
	if err := utils.BindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	entry, err := c.queue.AddToQueue(ctx.Request().Context(), employerID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, entry, "Кандидат добавлен в очередь", http.StatusCreated)
}

// JoinGeneralQueue - автор запроса сам встаёт в общую очередь соискателей.
func (c *HiringController) JoinGeneralQueue(ctx echo.Context) error {
	candidateID, err := actorID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	entry, err := c.queue.AddCandidateToGeneralQueue(ctx.Request().Context(), candidateID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, entry, "Вы добавлены в общую очередь", http.StatusCreated)
}

func (c *HiringController) Approve(ctx echo.Context) error {
	queueID, employerID, err := c.decision(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	entry, err := c.queue.Approve(ctx.Request().Context(), queueID, employerID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, entry, "Заявка одобрена", http.StatusOK)
}

func (c *HiringController) Reject(ctx echo.Context) error {
	queueID, employerID, err := c.decision(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	entry, err := c.queue.Reject(ctx.Request().Context(), queueID, employerID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, entry, "Заявка отклонена", http.StatusOK)
}

func (c *HiringController) ApproveAndHire(ctx echo.Context) error {
	queueID, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.ApproveAndHireDTO
	if err := utils.BindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	employerID, err := c.employer(ctx, payload.EmployerUserID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	entry, employee, err := c.queue.ApproveAndHire(ctx.Request().Context(), queueID, employerID, payload.ServiceID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	body := map[string]interface{}{"entry": entry, "employee": employee}
	return utils.SuccessResponse(ctx, body, "Кандидат одобрен и нанят", http.StatusOK)
}

func (c *HiringController) GetEmployerQueue(ctx echo.Context) error {
	employerID, err := c.ownID(ctx, "employerId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	list, err := c.queue.GetEmployerQueue(ctx.Request().Context(), employerID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Очередь работодателя получена", list)
}

func (c *HiringController) GetCandidateApplications(ctx echo.Context) error {
	candidateID, err := c.ownID(ctx, "candidateId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	list, err := c.queue.GetCandidateApplications(ctx.Request().Context(), candidateID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Заявки кандидата получены", list)
}

func (c *HiringController) GetQueueStats(ctx echo.Context) error {
	employerID, err := c.ownID(ctx, "employerId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	stats, err := c.queue.GetQueueStats(ctx.Request().Context(), employerID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, stats, "Статистика очереди", http.StatusOK)
}

func (c *HiringController) decision(ctx echo.Context) (uint64, uint64, error) {
	queueID, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return 0, 0, err
	}
	var payload dto.HiringDecisionDTO
	if err := utils.BindAndValidate(ctx, &payload); err != nil {
		return 0, 0, err
	}
	employerID, err := c.employer(ctx, payload.EmployerUserID)
	if err != nil {
		return 0, 0, err
	}
	return queueID, employerID, nil
}

// employer: без явного employerUserId решает автор запроса; за другого - только администратор.
func (c *HiringController) employer(ctx echo.Context, explicit *uint64) (uint64, error) {
	if explicit == nil {
		return actorID(ctx)
	}
	if err := selfOrAdmin(ctx, *explicit); err != nil {
		return 0, err
	}
	return *explicit, nil
}

func (c *HiringController) ownID(ctx echo.Context, param string) (uint64, error) {
	id, err := utils.ParseIDParam(ctx, param)
	if err != nil {
		return 0, err
	}
	if err := selfOrAdmin(ctx, id); err != nil {
		return 0, err
	}
	return id, nil
}
