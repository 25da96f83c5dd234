package repositories

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"pedant-server/internal/entities"
)

type EmployeeRepositoryInterface interface {
	FindEmployee(ctx context.Context, id uint64) (*entities.ServiceEmployee, error)
	// FindActive возвращает активную запись пары или nil без ошибки.
	FindActive(ctx context.Context, userID, serviceID uint64) (*entities.ServiceEmployee, error)
	FindByPair(ctx context.Context, userID, serviceID uint64) ([]entities.ServiceEmployee, error)
	GetByService(ctx context.Context, serviceID uint64) ([]entities.ServiceEmployee, error)
	GetByUser(ctx context.Context, userID uint64) ([]entities.ServiceEmployee, error)
	CreateEmployee(ctx context.Context, employee *entities.ServiceEmployee) error
	SaveEmployee(ctx context.Context, employee *entities.ServiceEmployee) error
	DeleteEmployee(ctx context.Context, id uint64) (bool, error)
}

type EmployeeRepository struct {
	employees collection[entities.ServiceEmployee, *entities.ServiceEmployee]
	logger    *zap.Logger
}

func NewEmployeeRepository(store DocumentStore, validate *validator.Validate, logger *zap.Logger) EmployeeRepositoryInterface {
	return &EmployeeRepository{
		employees: newCollection[entities.ServiceEmployee](store, validate, CollectionServiceEmployees, "Сотрудник %d не найден"),
		logger:    logger,
	}
}

func (r *EmployeeRepository) FindEmployee(ctx context.Context, id uint64) (*entities.ServiceEmployee, error) {
	return r.employees.get(ctx, id)
}

func (r *EmployeeRepository) FindActive(ctx context.Context, userID, serviceID uint64) (*entities.ServiceEmployee, error) {
	found, err := r.employees.find(ctx, Fields{
		"userId":    userID,
		"serviceId": serviceID,
		"status":    entities.EmploymentStatusActive,
	})
	if err != nil || len(found) == 0 {
		return nil, err
	}
	if len(found) > 1 {
		r.logger.Warn("Несколько активных записей для одной пары",
			zap.Uint64("userID", userID), zap.Uint64("serviceID", serviceID), zap.Int("count", len(found)))
	}
	return &found[0], nil
}

func (r *EmployeeRepository) FindByPair(ctx context.Context, userID, serviceID uint64) ([]entities.ServiceEmployee, error) {
	return r.employees.find(ctx, Fields{"userId": userID, "serviceId": serviceID})
}

func (r *EmployeeRepository) GetByService(ctx context.Context, serviceID uint64) ([]entities.ServiceEmployee, error) {
	return r.employees.find(ctx, Fields{"serviceId": serviceID})
}

func (r *EmployeeRepository) GetByUser(ctx context.Context, userID uint64) ([]entities.ServiceEmployee, error) {
	return r.employees.find(ctx, Fields{"userId": userID})
}

func (r *EmployeeRepository) CreateEmployee(ctx context.Context, employee *entities.ServiceEmployee) error {
	return r.employees.insert(ctx, employee)
}

func (r *EmployeeRepository) SaveEmployee(ctx context.Context, employee *entities.ServiceEmployee) error {
	return r.employees.save(ctx, employee)
}

func (r *EmployeeRepository) DeleteEmployee(ctx context.Context, id uint64) (bool, error) {
	return r.employees.remove(ctx, id)
}
