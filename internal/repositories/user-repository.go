package repositories

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"pedant-server/internal/entities"
)

type UserRepositoryInterface interface {
	FindUser(ctx context.Context, id uint64) (*entities.User, error)
	GetUsers(ctx context.Context) ([]entities.User, error)
	CreateUser(ctx context.Context, user *entities.User) error
	SaveUser(ctx context.Context, user *entities.User) error
}

type UserRepository struct {
	users  collection[entities.User, *entities.User]
	logger *zap.Logger
}

func NewUserRepository(store DocumentStore, validate *validator.Validate, logger *zap.Logger) UserRepositoryInterface {
	return &UserRepository{
		users:  newCollection[entities.User](store, validate, CollectionUsers, "Пользователь %d не найден"),
		logger: logger,
	}
}

func (r *UserRepository) FindUser(ctx context.Context, id uint64) (*entities.User, error) {
	return r.users.get(ctx, id)
}

func (r *UserRepository) GetUsers(ctx context.Context) ([]entities.User, error) {
	return r.users.list(ctx)
}

// CreateUser вставляет пользователя с его Telegram ID; повтор - ALREADY_EXISTS.
func (r *UserRepository) CreateUser(ctx context.Context, user *entities.User) error {
	if err := r.users.insert(ctx, user); err != nil {
		r.logger.Error("ошибка при создании пользователя", zap.Uint64("userID", user.ID), zap.Error(err))
		return err
	}
	return nil
}

func (r *UserRepository) SaveUser(ctx context.Context, user *entities.User) error {
	return r.users.save(ctx, user)
}
