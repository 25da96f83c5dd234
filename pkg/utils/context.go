package utils

import (
	"context"
	"time"

	"github.com/labstack/echo/v4"

	"pedant-server/pkg/contextkeys"
	apperrors "pedant-server/pkg/errors"
)

func ContextWithTimeout(ctx echo.Context, timeout int) (context.Context, context.CancelFunc) {
	reqCtx := ctx.Request().Context()
	return context.WithTimeout(reqCtx, time.Duration(timeout)*time.Second)
}

func GetUserIDFromCtx(ctx context.Context) (uint64, error) {
	userID, ok := ctx.Value(contextkeys.UserIDKey).(uint64)
	if !ok || userID == 0 {
		return 0, apperrors.ErrUnauthorized
	}
	return userID, nil
}

func GetUserRoleFromCtx(ctx context.Context) string {
	role, _ := ctx.Value(contextkeys.UserRoleKey).(string)
	return role
}

func GetSessionIDFromCtx(ctx context.Context) string {
	sessionID, _ := ctx.Value(contextkeys.SessionIDKey).(string)
	return sessionID
}
