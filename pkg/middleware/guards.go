package middleware

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pedant-server/internal/authz"
	"pedant-server/internal/entities"
	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/utils"
)

// EmploymentFinder - активная запись о трудоустройстве пары (user, service) или nil.
type EmploymentFinder interface {
	FindActive(ctx context.Context, userID, serviceID uint64) (*entities.ServiceEmployee, error)
}

// Guards - проверки доступа на уровне маршрутов. Ставятся после Auth.
type Guards struct {
	employments EmploymentFinder
	logger      *zap.Logger
}

func NewGuards(employments EmploymentFinder, logger *zap.Logger) *Guards {
	return &Guards{employments: employments, logger: logger}
}

func (g *Guards) RequireAuthentication(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if CurrentUser(c) == nil {
			return utils.ErrorResponse(c, apperrors.ErrUnauthorized, g.logger)
		}
		return next(c)
	}
}

func (g *Guards) RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		user := CurrentUser(c)
		if user == nil {
			return utils.ErrorResponse(c, apperrors.ErrUnauthorized, g.logger)
		}
		if !user.IsAdmin() {
			return utils.ErrorResponse(c, apperrors.ErrAdminRequired, g.logger)
		}
		return next(c)
	}
}

// RequireServiceOwner пропускает владельца сервиса из параметра param.
func (g *Guards) RequireServiceOwner(param string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return utils.ErrorResponse(c, apperrors.ErrUnauthorized, g.logger)
			}
			serviceID, err := serviceIDParam(c, param)
			if err != nil {
				return utils.ErrorResponse(c, err, g.logger)
			}
			if !user.OwnsService(serviceID) {
				return utils.ErrorResponse(c, apperrors.ErrNotServiceOwner, g.logger)
			}
			return next(c)
		}
	}
}

// RequireServicePermission проверяет право в сервисе из параметра param.
// Право вычисляется на каждый запрос, без кеша.
func (g *Guards) RequireServicePermission(param, permission string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			user := CurrentUser(c)
			if user == nil {
				return utils.ErrorResponse(c, apperrors.ErrUnauthorized, g.logger)
			}
			serviceID, err := serviceIDParam(c, param)
			if err != nil {
				return utils.ErrorResponse(c, err, g.logger)
			}
			employment, err := g.employments.FindActive(c.Request().Context(), user.ID, serviceID)
			if err != nil {
				return utils.ErrorResponse(c, err, g.logger)
			}
			if !authz.Allows(employment, permission) {
				return utils.ErrorResponse(c,
					apperrors.NewForbiddenError("Нет права %s в сервисе %d", permission, serviceID), g.logger)
			}
			return next(c)
		}
	}
}

// AdminOr пропускает администратора мимо guard, остальных проверяет guard.
func (g *Guards) AdminOr(guard echo.MiddlewareFunc) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		guarded := guard(next)
		return func(c echo.Context) error {
			if user := CurrentUser(c); user != nil && user.IsAdmin() {
				return next(c)
			}
			return guarded(c)
		}
	}
}

func serviceIDParam(c echo.Context, param string) (uint64, error) {
	if c.Param(param) == "" {
		return 0, apperrors.NewHttpError(http.StatusBadRequest, "Не указан ID сервиса", nil, nil)
	}
	return utils.ParseIDParam(c, param)
}
