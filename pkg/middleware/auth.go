package middleware

import (
	"context"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"pedant-server/internal/entities"
	"pedant-server/pkg/contextkeys"
	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/service"
	"pedant-server/pkg/telegram"
	"pedant-server/pkg/utils"
)

const (
	currentUserKey = "currentUser"

	// TelegramUserHeader - JSON пользователя без подписи, только для разработки.
	TelegramUserHeader = "X-Telegram-User"
)

// UserFinder - откуда middleware берёт пользователя по ID.
type UserFinder interface {
	FindUser(ctx context.Context, id uint64) (*entities.User, error)
}

type AuthMiddleware struct {
	jwtService    service.JWTService
	users         UserFinder
	allowUnsigned bool
	logger        *zap.Logger
}

func NewAuthMiddleware(jwtSvc service.JWTService, users UserFinder, allowUnsigned bool, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService:    jwtSvc,
		users:         users,
		allowUnsigned: allowUnsigned,
		logger:        logger,
	}
}

// Auth проверяет access-токен, загружает пользователя и отсекает заблокированных.
func (m *AuthMiddleware) Auth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		userID, sessionID, err := m.identify(c)
		if err != nil {
			return utils.ErrorResponse(c, err, m.logger)
		}

		ctx := c.Request().Context()
		user, err := m.users.FindUser(ctx, userID)
		if err != nil {
			if apperrors.IsKind(err, apperrors.KindNotFound) {
				m.logger.Warn("AuthMiddleware: пользователь из токена не найден", zap.Uint64("userID", userID))
				return utils.ErrorResponse(c, apperrors.ErrUnauthorized, m.logger)
			}
			return utils.ErrorResponse(c, err, m.logger)
		}
		if user.IsBlocked() {
			return utils.ErrorResponse(c, apperrors.ErrUserBlocked, m.logger)
		}

		ctx = context.WithValue(ctx, contextkeys.UserIDKey, user.ID)
		ctx = context.WithValue(ctx, contextkeys.UserRoleKey, user.Role)
		ctx = context.WithValue(ctx, contextkeys.SessionIDKey, sessionID)
		c.SetRequest(c.Request().WithContext(ctx))
		c.Set(currentUserKey, user)

		return next(c)
	}
}

func (m *AuthMiddleware) identify(c echo.Context) (uint64, string, error) {
	authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		if m.allowUnsigned {
			if raw := c.Request().Header.Get(TelegramUserHeader); raw != "" {
				tgUser, err := telegram.ParseUserHeader(raw)
				if err != nil {
					return 0, "", apperrors.Wrap(apperrors.KindUnauthorized, err, "Некорректный заголовок X-Telegram-User")
				}
				return tgUser.ID, "", nil
			}
		}
		return 0, "", apperrors.ErrEmptyAuthHeader
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return 0, "", apperrors.ErrInvalidAuthHeader
	}

	claims, err := m.jwtService.ValidateToken(parts[1])
	if err != nil {
		return 0, "", err
	}
	if claims.IsRefreshToken {
		m.logger.Warn("AuthMiddleware: Попытка доступа с refresh токеном", zap.Uint64("userID", claims.UserID))
		return 0, "", apperrors.ErrTokenIsNotAccess
	}
	return claims.UserID, claims.SessionID, nil
}

// CurrentUser - пользователь, загруженный Auth. nil вне защищённых маршрутов.
func CurrentUser(c echo.Context) *entities.User {
	user, _ := c.Get(currentUserKey).(*entities.User)
	return user
}
