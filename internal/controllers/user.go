package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pedant-server/internal/dto"
	"pedant-server/internal/entities"
	"pedant-server/internal/services"
	"pedant-server/pkg/api"
	"pedant-server/pkg/utils"
)

type UserController struct {
	userService services.UserServiceInterface
	logger      *zap.Logger
}

func NewUserController(userService services.UserServiceInterface, logger *zap.Logger) *UserController {
	return &UserController{userService: userService, logger: logger}
}

func (c *UserController) GetMe(ctx echo.Context) error {
	id, err := actorID(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	user, err := c.userService.GetUser(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, services.ToUserResponse(user), "Профиль получен", http.StatusOK)
}

func (c *UserController) GetUsers(ctx echo.Context) error {
	users, err := c.userService.ListUsers(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return api.SuccessList(ctx, "Список пользователей получен", toUserResponses(users))
}

func (c *UserController) FindUser(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	user, err := c.userService.GetUser(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, services.ToUserResponse(user), "Пользователь найден", http.StatusOK)
}

// UpsertUser - ручное создание пользователя по профилю Telegram (администратор).
func (c *UserController) UpsertUser(ctx echo.Context) error {
	var profile dto.TelegramProfileDTO
	if err := utils.BindAndValidate(ctx, &profile); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	user, err := c.userService.CreateOrUpdateUser(ctx.Request().Context(), profile)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	c.logger.Info("Пользователь создан или обновлён вручную", zap.Uint64("userID", user.ID))
	return utils.SuccessResponse(ctx, services.ToUserResponse(user), "Пользователь сохранён", http.StatusOK)
}

func (c *UserController) UpdateUser(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateUserDTO
	if err := utils.BindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	user, err := c.userService.UpdateUser(ctx.Request().Context(), id, payload)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, services.ToUserResponse(user), "Пользователь обновлён", http.StatusOK)
}

func (c *UserController) UpdateUserRole(ctx echo.Context) error {
	id, err := utils.ParseIDParam(ctx, "id")
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	var payload dto.UpdateUserRoleDTO
	if err := utils.BindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	user, err := c.userService.UpdateUserRole(ctx.Request().Context(), id, payload.Role)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, services.ToUserResponse(user), "Роль обновлена", http.StatusOK)
}

func (c *UserController) SetActiveService(ctx echo.Context) error {
	var payload dto.SetActiveServiceDTO
	if err := utils.BindAndValidate(ctx, &payload); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	user, err := c.userService.SetActiveService(ctx.Request().Context(), payload.ServiceID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, services.ToUserResponse(user), "Активный сервис выбран", http.StatusOK)
}

func toUserResponses(users []entities.User) []dto.UserResponseDTO {
	result := make([]dto.UserResponseDTO, 0, len(users))
	for i := range users {
		result = append(result, services.ToUserResponse(&users[i]))
	}
	return result
}
