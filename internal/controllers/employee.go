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

type EmployeeController struct {
	employeeService services.EmployeeServiceInterface
	logger          *zap.Logger
}

func NewEmployeeController(employeeService services.EmployeeServiceInterface, logger *zap.Logger) *EmployeeController {
	return &EmployeeController{employeeService: employeeService, logger: logger}
}

func (c *EmployeeController) GetServiceEmployees(ctx echo.Context) error {
	serviceID, err := utils.ParseIDParam(ctx, "serviceId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	list, err := c.employeeService.ListEmployeesByService(ctx.Request().Context(), serviceID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Сотрудники сервиса получены", list)
}

func (c *EmployeeController) GetUserEmployments(ctx echo.Context) error {
	userID, err := utils.ParseIDParam(ctx, "userId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	list, err := c.employeeService.ListEmployeesByUser(ctx.Request().Context(), userID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Места работы получены", list)
}

// CheckPermission отвечает {allowed}. Спрашивать можно о себе, администратору - о любом.
func (c *EmployeeController) CheckPermission(ctx echo.Context) error {
	userID, err := utils.ParseIDParam(ctx, "userId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	serviceID, err := utils.ParseIDParam(ctx, "serviceId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := selfOrAdmin(ctx, userID); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	allowed, err := c.employeeService.HasPermission(ctx.Request().Context(), userID, serviceID, ctx.Param("permission"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, map[string]bool{"allowed": allowed}, "Право проверено", http.StatusOK)
}

func (c *EmployeeController) AddEmployee(ctx echo.Context) error {
	serviceID, err := utils.ParseIDParam(ctx, "serviceId")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.AddEmployeeDTO
	if err := utils.BindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	employee, err := c.employeeService.AddEmployee(ctx.Request().Context(), serviceID, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, employee, "Сотрудник добавлен", http.StatusCreated)
}

func (c *EmployeeController) UpdateEmployee(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateEmployeeDTO
	if err := utils.BindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	employee, err := c.employeeService.UpdateEmployee(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, employee, "Сотрудник обновлён", http.StatusOK)
}

func (c *EmployeeController) RemoveEmployee(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	if err := c.employeeService.RemoveEmployee(ctx.Request().Context(), id); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Сотрудник удалён", http.StatusOK)
}

// HireEmployee: нанимает от имени автора запроса, он же должен быть владельцем сервиса.
func (c *EmployeeController) HireEmployee(ctx echo.Context) error {
	ownerID, err := actorID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.HireEmployeeDTO
	if err := utils.BindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	employee, err := c.employeeService.HireEmployee(ctx.Request().Context(), payload.CandidateUserID, payload.ServiceID, ownerID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, employee, "Сотрудник нанят", http.StatusOK)
}
