package seeders

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pedant-server/internal/dto"
	"pedant-server/internal/entities"
	"pedant-server/internal/repositories"
	"pedant-server/internal/services"
	"pedant-server/pkg/contextkeys"
	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/utils"
)

// Seeder наполняет пустую базу: администратор и демонстрационные сервисы.
// Записи создаются через сервисы, поэтому связи пользователь-сервис согласованы.
type Seeder struct {
	users     services.UserServiceInterface
	userRepo  repositories.UserRepositoryInterface
	registry  services.ServiceRegistryInterface
	txManager repositories.TxManagerInterface
	clock     utils.Clock
	logger    *zap.Logger
}

func NewSeeder(
	users services.UserServiceInterface,
	userRepo repositories.UserRepositoryInterface,
	registry services.ServiceRegistryInterface,
	txManager repositories.TxManagerInterface,
	clock utils.Clock,
	logger *zap.Logger,
) *Seeder {
	return &Seeder{
		users:     users,
		userRepo:  userRepo,
		registry:  registry,
		txManager: txManager,
		clock:     clock,
		logger:    logger,
	}
}

// SeedAdmin создаёт (или обновляет) пользователя Telegram и делает его администратором.
func (s *Seeder) SeedAdmin(ctx context.Context, profile dto.TelegramProfileDTO) (*entities.User, error) {
	if _, err := s.users.CreateOrUpdateUser(ctx, profile); err != nil {
		return nil, fmt.Errorf("пользователь %d: %w", profile.ID, err)
	}
	return s.Promote(ctx, profile.ID, entities.UserRoleAdmin)
}

// Promote меняет роль без проверки автора: вызывается только из CLI на сервере.
func (s *Seeder) Promote(ctx context.Context, userID uint64, role string) (*entities.User, error) {
	switch role {
	case entities.UserRoleAdmin, entities.UserRoleModerator, entities.UserRoleUser:
	default:
		return nil, apperrors.NewInvalidInputError("Недопустимая роль: %s", role)
	}

	var result *entities.User
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		user, err := s.userRepo.FindUser(ctx, userID)
		if err != nil {
			return err
		}
		result = user
		if user.Role == role {
			return nil
		}
		user.Role = role
		user.UpdatedAt = s.clock()
		return s.userRepo.SaveUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("Роль пользователя установлена", zap.Uint64("userID", userID), zap.String("role", role))
	return result, nil
}

// SeedDemo создаёт демонстрационные сервисы владельца. Занятые номера пропускаются.
func (s *Seeder) SeedDemo(ctx context.Context, ownerID uint64) ([]entities.Service, error) {
	if _, err := s.userRepo.FindUser(ctx, ownerID); err != nil {
		return nil, fmt.Errorf("владелец %d: %w", ownerID, err)
	}
	asOwner := context.WithValue(ctx, contextkeys.UserIDKey, ownerID)

	created := make([]entities.Service, 0, len(demoServices))
	for _, d := range demoServices {
		service, err := s.registry.CreateService(asOwner, d)
		if apperrors.IsKind(err, apperrors.KindAlreadyExists) {
			s.logger.Info("Сервис уже существует, пропускаем", zap.String("number", d.ServiceNumber))
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("сервис %s: %w", d.ServiceNumber, err)
		}
		created = append(created, *service)
	}
	s.logger.Info("Демонстрационные сервисы созданы", zap.Int("count", len(created)))
	return created, nil
}
