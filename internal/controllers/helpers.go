package controllers

import (
	"github.com/labstack/echo/v4"

	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/middleware"
)

// selfOrAdmin пропускает запрос о себе или от администратора.
func selfOrAdmin(c echo.Context, userID uint64) error {
	user := middleware.CurrentUser(c)
	if user == nil {
		return apperrors.ErrUnauthorized
	}
	if user.ID != userID && !user.IsAdmin() {
		return apperrors.ErrForbidden
	}
	return nil
}

// actorID - ID автора запроса, загруженного AuthMiddleware.
func actorID(c echo.Context) (uint64, error) {
	user := middleware.CurrentUser(c)
	if user == nil {
		return 0, apperrors.ErrUnauthorized
	}
	return user.ID, nil
}
