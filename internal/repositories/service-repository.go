package repositories

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"pedant-server/internal/entities"
)

type ServiceRepositoryInterface interface {
	FindService(ctx context.Context, id uint64) (*entities.Service, error)
	GetServices(ctx context.Context) ([]entities.Service, error)
	GetServicesByOwner(ctx context.Context, ownerID uint64) ([]entities.Service, error)
	// FindByNumber возвращает nil без ошибки, если номер свободен.
	FindByNumber(ctx context.Context, serviceNumber string) (*entities.Service, error)
	CreateService(ctx context.Context, service *entities.Service) error
	SaveService(ctx context.Context, service *entities.Service) error
	DeleteService(ctx context.Context, id uint64) (bool, error)
}

type ServiceRepository struct {
	services collection[entities.Service, *entities.Service]
	logger   *zap.Logger
}

func NewServiceRepository(store DocumentStore, validate *validator.Validate, logger *zap.Logger) ServiceRepositoryInterface {
	return &ServiceRepository{
		services: newCollection[entities.Service](store, validate, CollectionServices, "Сервис %d не найден"),
		logger:   logger,
	}
}

func (r *ServiceRepository) FindService(ctx context.Context, id uint64) (*entities.Service, error) {
	return r.services.get(ctx, id)
}

func (r *ServiceRepository) GetServices(ctx context.Context) ([]entities.Service, error) {
	return r.services.list(ctx)
}

func (r *ServiceRepository) GetServicesByOwner(ctx context.Context, ownerID uint64) ([]entities.Service, error) {
	return r.services.find(ctx, Fields{"ownerId": ownerID})
}

func (r *ServiceRepository) FindByNumber(ctx context.Context, serviceNumber string) (*entities.Service, error) {
	found, err := r.services.find(ctx, Fields{"serviceNumber": serviceNumber})
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return &found[0], nil
}

func (r *ServiceRepository) CreateService(ctx context.Context, service *entities.Service) error {
	return r.services.insert(ctx, service)
}

func (r *ServiceRepository) SaveService(ctx context.Context, service *entities.Service) error {
	return r.services.save(ctx, service)
}

func (r *ServiceRepository) DeleteService(ctx context.Context, id uint64) (bool, error) {
	return r.services.remove(ctx, id)
}
