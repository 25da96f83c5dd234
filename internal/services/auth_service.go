// Файл: internal/services/auth_service.go
package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pedant-server/internal/dto"
	"pedant-server/internal/entities"
	"pedant-server/internal/repositories"
	"pedant-server/pkg/config"
	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/service"
	"pedant-server/pkg/telegram"
	"pedant-server/pkg/utils"
)

type AuthServiceInterface interface {
	// TelegramLogin проверяет initData WebApp (или, в режиме разработки,
	// неподписанный заголовок пользователя), синхронизирует профиль и открывает сессию.
	TelegramLogin(ctx context.Context, d dto.TelegramAuthDTO, unsignedUser string) (*dto.AuthResponseDTO, error)
	RefreshTokens(ctx context.Context, refreshToken string) (*dto.AuthResponseDTO, error)
	PingSession(ctx context.Context, sessionID string) (*repositories.Session, error)
	Logout(ctx context.Context) error
}

type AuthService struct {
	users      UserServiceInterface
	userRepo   repositories.UserRepositoryInterface
	sessions   repositories.SessionRepositoryInterface
	jwtService service.JWTService
	tgCfg      config.TelegramConfig
	sessionTTL time.Duration
	clock      utils.Clock
	logger     *zap.Logger
}

func NewAuthService(
	users UserServiceInterface,
	userRepo repositories.UserRepositoryInterface,
	sessions repositories.SessionRepositoryInterface,
	jwtService service.JWTService,
	tgCfg config.TelegramConfig,
	sessionTTL time.Duration,
	clock utils.Clock,
	logger *zap.Logger,
) AuthServiceInterface {
	return &AuthService{
		users:      users,
		userRepo:   userRepo,
		sessions:   sessions,
		jwtService: jwtService,
		tgCfg:      tgCfg,
		sessionTTL: sessionTTL,
		clock:      clock,
		logger:     logger,
	}
}

func (s *AuthService) TelegramLogin(ctx context.Context, d dto.TelegramAuthDTO, unsignedUser string) (*dto.AuthResponseDTO, error) {
	tgUser, err := s.identify(d.InitData, unsignedUser)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateOrUpdateUser(ctx, dto.TelegramProfileDTO{
		ID:           tgUser.ID,
		FirstName:    tgUser.FirstName,
		LastName:     tgUser.LastName,
		Username:     tgUser.Username,
		LanguageCode: tgUser.LanguageCode,
		IsPremium:    tgUser.IsPremium,
		PhotoURL:     tgUser.PhotoURL,
	})
	if err != nil {
		return nil, err
	}
	if user.IsBlocked() {
		return nil, apperrors.ErrUserBlocked
	}

	now := s.clock()
	session := &repositories.Session{
		ID:           uuid.New().String(),
		UserID:       user.ID,
		Platform:     d.Platform,
		CreatedAt:    now,
		LastActivity: now,
	}
	if err := s.sessions.CreateSession(ctx, session, s.sessionTTL); err != nil {
		return nil, err
	}

	s.logger.Info("Вход через Telegram", zap.Uint64("userID", user.ID), zap.String("sessionID", session.ID))
	return s.issue(user, session.ID)
}

func (s *AuthService) identify(initData, unsignedUser string) (*telegram.WebAppUser, error) {
	if initData != "" {
		if s.tgCfg.BotToken == "" {
			return nil, apperrors.NewUnauthorizedError("Проверка initData недоступна: токен бота не задан")
		}
		data, err := telegram.ValidateInitData(initData, s.tgCfg.BotToken, s.tgCfg.InitDataTTL, s.clock())
		if err != nil {
			s.logger.Warn("Отклонены initData", zap.Error(err))
			if errors.Is(err, telegram.ErrInitDataExpired) {
				return nil, apperrors.Wrap(apperrors.KindUnauthorized, err, "Данные Telegram устарели, перезапустите приложение")
			}
			return nil, apperrors.Wrap(apperrors.KindUnauthorized, err, apperrors.ErrInvalidInitData.Error())
		}
		return &data.User, nil
	}

	if unsignedUser != "" && s.tgCfg.AllowUnsigned {
		tgUser, err := telegram.ParseUserHeader(unsignedUser)
		if err != nil {
			return nil, apperrors.Wrap(apperrors.KindUnauthorized, err, "Некорректный заголовок X-Telegram-User")
		}
		return tgUser, nil
	}
	return nil, apperrors.NewInvalidInputError("Не переданы initData")
}

func (s *AuthService) RefreshTokens(ctx context.Context, refreshToken string) (*dto.AuthResponseDTO, error) {
	claims, err := s.jwtService.ValidateToken(refreshToken)
	if err != nil {
		return nil, err
	}
	if !claims.IsRefreshToken {
		return nil, apperrors.ErrTokenIsNotRefresh
	}

	if claims.SessionID != "" {
		if _, err := s.sessions.TouchSession(ctx, claims.SessionID, s.clock(), s.sessionTTL); err != nil {
			if apperrors.IsKind(err, apperrors.KindNotFound) {
				return nil, apperrors.NewUnauthorizedError("Сессия завершена, войдите заново")
			}
			return nil, err
		}
	}

	user, err := s.userRepo.FindUser(ctx, claims.UserID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.ErrUnauthorized
		}
		return nil, err
	}
	if user.IsBlocked() {
		return nil, apperrors.ErrUserBlocked
	}
	return s.issue(user, claims.SessionID)
}

// PingSession продлевает сессию автора запроса.
func (s *AuthService) PingSession(ctx context.Context, sessionID string) (*repositories.Session, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	session, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if session.UserID != userID {
		return nil, apperrors.NewForbiddenError("Чужая сессия")
	}
	return s.sessions.TouchSession(ctx, sessionID, s.clock(), s.sessionTTL)
}

func (s *AuthService) Logout(ctx context.Context) error {
	sessionID := utils.GetSessionIDFromCtx(ctx)
	if sessionID == "" {
		return nil
	}
	return s.sessions.DeleteSession(ctx, sessionID)
}

func (s *AuthService) issue(user *entities.User, sessionID string) (*dto.AuthResponseDTO, error) {
	access, refresh, err := s.jwtService.GenerateTokens(user.ID, sessionID)
	if err != nil {
		return nil, err
	}
	return &dto.AuthResponseDTO{
		AccessToken:  access,
		RefreshToken: refresh,
		SessionID:    sessionID,
		User:         ToUserResponse(user),
	}, nil
}
