package repositories

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"pedant-server/internal/entities"
)

type OrderRepositoryInterface interface {
	FindOrder(ctx context.Context, id uint64) (*entities.Order, error)
	GetOrders(ctx context.Context) ([]entities.Order, error)
	GetByService(ctx context.Context, serviceID uint64) ([]entities.Order, error)
	GetByCreator(ctx context.Context, userID uint64) ([]entities.Order, error)
	// FindByNumber возвращает nil без ошибки, если номер свободен.
	FindByNumber(ctx context.Context, orderNumber string) (*entities.Order, error)
	CreateOrder(ctx context.Context, order *entities.Order) error
	SaveOrder(ctx context.Context, order *entities.Order) error
	DeleteOrder(ctx context.Context, id uint64) (bool, error)
}

type OrderRepository struct {
	orders collection[entities.Order, *entities.Order]
	logger *zap.Logger
}

func NewOrderRepository(store DocumentStore, validate *validator.Validate, logger *zap.Logger) OrderRepositoryInterface {
	return &OrderRepository{
		orders: newCollection[entities.Order](store, validate, CollectionOrders, "Заказ %d не найден"),
		logger: logger,
	}
}

func (r *OrderRepository) FindOrder(ctx context.Context, id uint64) (*entities.Order, error) {
	return r.orders.get(ctx, id)
}

func (r *OrderRepository) GetOrders(ctx context.Context) ([]entities.Order, error) {
	return r.orders.list(ctx)
}

func (r *OrderRepository) GetByService(ctx context.Context, serviceID uint64) ([]entities.Order, error) {
	return r.orders.find(ctx, Fields{"serviceId": serviceID})
}

func (r *OrderRepository) GetByCreator(ctx context.Context, userID uint64) ([]entities.Order, error) {
	return r.orders.find(ctx, Fields{"created_by_id": userID})
}

func (r *OrderRepository) FindByNumber(ctx context.Context, orderNumber string) (*entities.Order, error) {
	found, err := r.orders.find(ctx, Fields{"orderNumber": orderNumber})
	if err != nil || len(found) == 0 {
		return nil, err
	}
	return &found[0], nil
}

func (r *OrderRepository) CreateOrder(ctx context.Context, order *entities.Order) error {
	if err := r.orders.insert(ctx, order); err != nil {
		r.logger.Error("ошибка при создании заказа", zap.String("orderNumber", order.OrderNumber), zap.Error(err))
		return err
	}
	return nil
}

func (r *OrderRepository) SaveOrder(ctx context.Context, order *entities.Order) error {
	return r.orders.save(ctx, order)
}

func (r *OrderRepository) DeleteOrder(ctx context.Context, id uint64) (bool, error) {
	return r.orders.remove(ctx, id)
}
