// Файл: internal/services/user_directory.go
package services

import (
	"context"

	"go.uber.org/zap"

	"pedant-server/internal/dto"
	"pedant-server/internal/entities"
	"pedant-server/internal/repositories"
	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/utils"
)

const (
	maxProfileStringLen = 255
	maxPhotoURLLen      = 500
)

type UserServiceInterface interface {
	CreateOrUpdateUser(ctx context.Context, profile dto.TelegramProfileDTO) (*entities.User, error)
	GetUser(ctx context.Context, id uint64) (*entities.User, error)
	ListUsers(ctx context.Context) ([]entities.User, error)
	UpdateUser(ctx context.Context, id uint64, d dto.UpdateUserDTO) (*entities.User, error)
	UpdateUserRole(ctx context.Context, id uint64, role string) (*entities.User, error)
	SetActiveService(ctx context.Context, serviceID *uint64) (*entities.User, error)
}

type UserService struct {
	userRepo     repositories.UserRepositoryInterface
	employeeRepo repositories.EmployeeRepositoryInterface
	txManager    repositories.TxManagerInterface
	clock        utils.Clock
	logger       *zap.Logger
}

func NewUserService(
	userRepo repositories.UserRepositoryInterface,
	employeeRepo repositories.EmployeeRepositoryInterface,
	txManager repositories.TxManagerInterface,
	clock utils.Clock,
	logger *zap.Logger,
) UserServiceInterface {
	return &UserService{
		userRepo:     userRepo,
		employeeRepo: employeeRepo,
		txManager:    txManager,
		clock:        clock,
		logger:       logger,
	}
}

// CreateOrUpdateUser: первый контакт создаёт пользователя с ролью user,
// повторный обновляет только профиль Telegram и lastSeen.
func (s *UserService) CreateOrUpdateUser(ctx context.Context, profile dto.TelegramProfileDTO) (*entities.User, error) {
	if profile.ID == 0 {
		return nil, apperrors.NewInvalidInputError("Не указан ID пользователя Telegram")
	}

	var result *entities.User
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		now := s.clock()
		user, err := s.userRepo.FindUser(ctx, profile.ID)
		if err != nil && !apperrors.IsKind(err, apperrors.KindNotFound) {
			return err
		}

		if user == nil {
			user = &entities.User{
				ID:                 profile.ID,
				Role:               entities.UserRoleUser,
				Status:             entities.UserStatusActive,
				RegistrationStatus: entities.RegistrationUnregistered,
				OwnedServices:      []uint64{},
				EmployeeServices:   []uint64{},
				CreatedAt:          now,
			}
			applyProfile(user, profile)
			user.LastSeen, user.UpdatedAt = now, now
			if err := s.userRepo.CreateUser(ctx, user); err != nil {
				return err
			}
			s.logger.Info("Новый пользователь", zap.Uint64("userID", user.ID))
			result = user
			return nil
		}

		applyProfile(user, profile)
		user.LastSeen, user.UpdatedAt = now, now
		if err := s.userRepo.SaveUser(ctx, user); err != nil {
			return err
		}
		result = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func applyProfile(user *entities.User, profile dto.TelegramProfileDTO) {
	user.FirstName = utils.SanitizeString(profile.FirstName, maxProfileStringLen)
	user.LastName = utils.SanitizeString(profile.LastName, maxProfileStringLen)
	user.Username = utils.SanitizeString(profile.Username, maxProfileStringLen)
	user.LanguageCode = entities.NormalizeLanguageCode(profile.LanguageCode)
	user.IsPremium = profile.IsPremium
	user.PhotoURL = utils.SanitizeString(profile.PhotoURL, maxPhotoURLLen)
}

func (s *UserService) GetUser(ctx context.Context, id uint64) (*entities.User, error) {
	if _, err := loadActor(ctx, s.userRepo); err != nil {
		return nil, err
	}
	return s.userRepo.FindUser(ctx, id)
}

func (s *UserService) ListUsers(ctx context.Context) ([]entities.User, error) {
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, apperrors.ErrAdminRequired
	}
	return s.userRepo.GetUsers(ctx)
}

// UpdateUser - профиль меняет сам пользователь или администратор; роль и статус - только администратор.
func (s *UserService) UpdateUser(ctx context.Context, id uint64, d dto.UpdateUserDTO) (*entities.User, error) {
	var result *entities.User
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		actor, err := loadActor(ctx, s.userRepo)
		if err != nil {
			return err
		}
		if actor.ID != id && !actor.IsAdmin() {
			return apperrors.NewForbiddenError("Нельзя изменять чужой профиль")
		}
		if (d.Role.Valid || d.Status.Valid) && !actor.IsAdmin() {
			return apperrors.ErrAdminRequired
		}

		user, err := s.userRepo.FindUser(ctx, id)
		if err != nil {
			return err
		}

		if d.FirstName.Valid {
			user.FirstName = utils.SanitizeString(d.FirstName.String, maxProfileStringLen)
		}
		if d.LastName.Valid {
			user.LastName = utils.SanitizeString(d.LastName.String, maxProfileStringLen)
		}
		if d.Username.Valid {
			user.Username = utils.SanitizeString(d.Username.String, maxProfileStringLen)
		}
		if d.LanguageCode.Valid {
			user.LanguageCode = entities.NormalizeLanguageCode(d.LanguageCode.String)
		}
		if d.PhotoURL.Valid {
			user.PhotoURL = utils.SanitizeString(d.PhotoURL.String, maxPhotoURLLen)
		}
		if d.OrganizationName.Valid {
			user.OrganizationName = utils.SanitizeString(d.OrganizationName.String, maxProfileStringLen)
		}
		if d.Role.Valid {
			user.Role = d.Role.String
		}
		if d.Status.Valid {
			user.Status = d.Status.String
		}
		user.UpdatedAt = s.clock()

		if err := s.userRepo.SaveUser(ctx, user); err != nil {
			return err
		}
		result = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *UserService) UpdateUserRole(ctx context.Context, id uint64, role string) (*entities.User, error) {
	switch role {
	case entities.UserRoleAdmin, entities.UserRoleModerator, entities.UserRoleUser:
	default:
		return nil, apperrors.NewInvalidInputError("Недопустимая роль: %s", role)
	}

	var result *entities.User
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		actor, err := loadActor(ctx, s.userRepo)
		if err != nil {
			return err
		}
		if !actor.IsAdmin() {
			return apperrors.ErrAdminRequired
		}
		user, err := s.userRepo.FindUser(ctx, id)
		if err != nil {
			return err
		}
		user.Role = role
		user.UpdatedAt = s.clock()
		if err := s.userRepo.SaveUser(ctx, user); err != nil {
			return err
		}
		s.logger.Info("Роль пользователя изменена",
			zap.Uint64("userID", id), zap.String("role", role), zap.Uint64("by", actor.ID))
		result = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// SetActiveService переключает рабочий сервис автора запроса. nil сбрасывает выбор.
// Выбрать можно только свой сервис или сервис, где есть активное трудоустройство.
func (s *UserService) SetActiveService(ctx context.Context, serviceID *uint64) (*entities.User, error) {
	var result *entities.User
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		actor, err := loadActor(ctx, s.userRepo)
		if err != nil {
			return err
		}
		if serviceID != nil && !actor.OwnsService(*serviceID) {
			employment, err := s.employeeRepo.FindActive(ctx, actor.ID, *serviceID)
			if err != nil {
				return err
			}
			if employment == nil {
				return apperrors.NewForbiddenError("Нет доступа к сервису %d", *serviceID)
			}
		}
		actor.ActiveServiceID = serviceID
		actor.UpdatedAt = s.clock()
		if err := s.userRepo.SaveUser(ctx, actor); err != nil {
			return err
		}
		result = actor
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}
