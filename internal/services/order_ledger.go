// Файл: internal/services/order_ledger.go
package services

import (
	"context"
	"fmt"
	"mime/multipart"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"pedant-server/internal/authz"
	"pedant-server/internal/dto"
	"pedant-server/internal/entities"
	"pedant-server/internal/repositories"
	"pedant-server/pkg/customvalidator"
	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/filestorage"
	"pedant-server/pkg/metrics"
	"pedant-server/pkg/utils"
)

const orderNumberDigits = 5

type OrderServiceInterface interface {
	CreateOrder(ctx context.Context, d dto.CreateOrderDTO, photos []*multipart.FileHeader) (*entities.Order, error)
	GetOrder(ctx context.Context, id uint64) (*entities.Order, error)
	ListOrders(ctx context.Context, filter dto.OrderFilterDTO) ([]entities.Order, error)
	UpdateOrder(ctx context.Context, id uint64, d dto.UpdateOrderDTO) (*entities.Order, error)
	DeleteOrder(ctx context.Context, id uint64) error
	// GenerateNextOrderNumber - следующий номер вида "{prefix}-NNNNN".
	GenerateNextOrderNumber(ctx context.Context, prefix string) (string, error)
	NextOrderNumber(ctx context.Context, serviceID uint64) (*dto.NextOrderNumberDTO, error)
}

type OrderService struct {
	orderRepo    repositories.OrderRepositoryInterface
	userRepo     repositories.UserRepositoryInterface
	serviceRepo  repositories.ServiceRepositoryInterface
	employeeRepo repositories.EmployeeRepositoryInterface
	txManager    repositories.TxManagerInterface
	fileStorage  filestorage.FileStorageInterface
	metrics      *metrics.Metrics
	clock        utils.Clock
	logger       *zap.Logger
}

func NewOrderService(
	orderRepo repositories.OrderRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	serviceRepo repositories.ServiceRepositoryInterface,
	employeeRepo repositories.EmployeeRepositoryInterface,
	txManager repositories.TxManagerInterface,
	fileStorage filestorage.FileStorageInterface,
	m *metrics.Metrics,
	clock utils.Clock,
	logger *zap.Logger,
) OrderServiceInterface {
	return &OrderService{
		orderRepo:    orderRepo,
		userRepo:     userRepo,
		serviceRepo:  serviceRepo,
		employeeRepo: employeeRepo,
		txManager:    txManager,
		fileStorage:  fileStorage,
		metrics:      m,
		clock:        clock,
		logger:       logger,
	}
}

func (s *OrderService) GenerateNextOrderNumber(ctx context.Context, prefix string) (string, error) {
	orders, err := s.orderRepo.GetOrders(ctx)
	if err != nil {
		return "", err
	}
	return nextOrderNumber(prefix, orders), nil
}

// nextOrderNumber: максимум числовых суффиксов номеров с префиксом "{prefix}-" плюс один.
// Нечисловые суффиксы пропускаются.
func nextOrderNumber(prefix string, orders []entities.Order) string {
	head := prefix + "-"
	var max uint64
	for _, o := range orders {
		if !strings.HasPrefix(o.OrderNumber, head) {
			continue
		}
		n, err := strconv.ParseUint(strings.TrimPrefix(o.OrderNumber, head), 10, 64)
		if err != nil {
			continue
		}
		if n > max {
			max = n
		}
	}
	return fmt.Sprintf("%s-%0*d", prefix, orderNumberDigits, max+1)
}

func (s *OrderService) NextOrderNumber(ctx context.Context, serviceID uint64) (*dto.NextOrderNumberDTO, error) {
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}
	service, err := s.serviceRepo.FindService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if err := s.requirePermission(ctx, actor, serviceID, authz.CreateOrders); err != nil {
		return nil, err
	}
	number, err := s.GenerateNextOrderNumber(ctx, service.ServiceNumber)
	if err != nil {
		return nil, err
	}
	return &dto.NextOrderNumberDTO{ServiceNumber: service.ServiceNumber, OrderNumber: number}, nil
}

// CreateOrder: фото сохраняются до транзакции и удаляются, если она не прошла.
// Номер генерируется под замком операций, поэтому два заказа не получат один номер.
func (s *OrderService) CreateOrder(ctx context.Context, d dto.CreateOrderDTO, photos []*multipart.FileHeader) (*entities.Order, error) {
	if len(photos) > customvalidator.OrderPhotoRules.MaxFiles {
		return nil, apperrors.NewInvalidInputError("Можно приложить не больше %d фото", customvalidator.OrderPhotoRules.MaxFiles)
	}
	if _, err := loadActor(ctx, s.userRepo); err != nil {
		return nil, err
	}

	saved, err := s.savePhotos(photos)
	if err != nil {
		return nil, err
	}

	var order *entities.Order
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		actor, err := loadActor(ctx, s.userRepo)
		if err != nil {
			return err
		}

		number := strings.TrimSpace(d.OrderNumber)
		if d.ServiceID != nil {
			service, err := s.serviceRepo.FindService(ctx, *d.ServiceID)
			if err != nil {
				return err
			}
			if err := s.requirePermission(ctx, actor, service.ID, authz.CreateOrders); err != nil {
				return err
			}
			if number == "" {
				if number, err = s.GenerateNextOrderNumber(ctx, service.ServiceNumber); err != nil {
					return err
				}
			}
		}
		if number == "" {
			return apperrors.NewInvalidInputError("Номер заказа обязателен для заказа без сервиса")
		}

		existing, err := s.orderRepo.FindByNumber(ctx, number)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperrors.NewAlreadyExistsError("Заказ с номером %s уже существует", number)
		}

		now := s.clock()
		order = &entities.Order{
			ServiceID:   d.ServiceID,
			OrderNumber: number,
			CreatedByID: actor.ID,
			CreatedBy:   actor.DisplayName(),
			Comment:     strings.TrimSpace(d.Comment),
			Photos:      saved,
			PhotosCount: len(saved),
			Status:      entities.OrderStatusActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := s.orderRepo.CreateOrder(ctx, order); err != nil {
			return err
		}

		actor.Orders++
		actor.UpdatedAt = now
		return s.userRepo.SaveUser(ctx, actor)
	})
	if err != nil {
		s.removePhotos(saved)
		return nil, err
	}

	s.metrics.OrderCreated(order.ServiceID != nil)
	s.logger.Info("Заказ создан",
		zap.Uint64("orderID", order.ID),
		zap.String("orderNumber", order.OrderNumber),
		zap.Int("photos", order.PhotosCount))
	return order, nil
}

func (s *OrderService) savePhotos(headers []*multipart.FileHeader) ([]entities.OrderPhoto, error) {
	photos := make([]entities.OrderPhoto, 0, len(headers))
	for _, header := range headers {
		photo, err := s.savePhoto(header)
		if err != nil {
			s.removePhotos(photos)
			return nil, err
		}
		photos = append(photos, photo)
	}
	return photos, nil
}

func (s *OrderService) savePhoto(header *multipart.FileHeader) (entities.OrderPhoto, error) {
	file, err := header.Open()
	if err != nil {
		return entities.OrderPhoto{}, fmt.Errorf("не удалось открыть файл %s: %w", header.Filename, err)
	}
	defer file.Close()

	mimeType, err := customvalidator.ValidateFile(header.Size, file, customvalidator.OrderPhotoRules)
	if err != nil {
		return entities.OrderPhoto{}, err
	}
	path, err := s.fileStorage.Save(file, header.Filename, customvalidator.OrderPhotoRules.PathPrefix)
	if err != nil {
		return entities.OrderPhoto{}, fmt.Errorf("не удалось сохранить файл %s: %w", header.Filename, err)
	}
	return entities.OrderPhoto{
		Filename: utils.SanitizeString(header.Filename, maxProfileStringLen),
		Size:     header.Size,
		Mimetype: mimeType,
		Path:     s.fileStorage.PublicPath(path),
	}, nil
}

func (s *OrderService) removePhotos(photos []entities.OrderPhoto) {
	for _, p := range photos {
		if err := s.fileStorage.Delete(p.Path); err != nil {
			s.logger.Warn("Не удалось удалить файл", zap.String("path", p.Path), zap.Error(err))
		}
	}
}

func (s *OrderService) GetOrder(ctx context.Context, id uint64) (*entities.Order, error) {
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}
	order, err := s.orderRepo.FindOrder(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.requireOrderAccess(ctx, actor, order, authz.OrderView); err != nil {
		return nil, err
	}
	return order, nil
}

// ListOrders: свои заказы плюс заказы сервисов, где есть право view_orders. Новые сверху.
func (s *OrderService) ListOrders(ctx context.Context, filter dto.OrderFilterDTO) ([]entities.Order, error) {
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}

	var orders []entities.Order
	if filter.ServiceID != nil {
		orders, err = s.orderRepo.GetByService(ctx, *filter.ServiceID)
	} else {
		orders, err = s.orderRepo.GetOrders(ctx)
	}
	if err != nil {
		return nil, err
	}

	viewable := make(map[uint64]bool)
	if !actor.IsAdmin() {
		employments, err := s.employeeRepo.GetByUser(ctx, actor.ID)
		if err != nil {
			return nil, err
		}
		for i := range employments {
			if authz.Allows(&employments[i], authz.ViewOrders) {
				viewable[employments[i].ServiceID] = true
			}
		}
	}

	result := make([]entities.Order, 0, len(orders))
	for _, o := range orders {
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		visible := actor.IsAdmin() || o.CreatedByID == actor.ID || (o.ServiceID != nil && viewable[*o.ServiceID])
		if visible {
			result = append(result, o)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].ID > result[j].ID })
	return result, nil
}

func (s *OrderService) UpdateOrder(ctx context.Context, id uint64, d dto.UpdateOrderDTO) (*entities.Order, error) {
	var result *entities.Order
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		actor, err := loadActor(ctx, s.userRepo)
		if err != nil {
			return err
		}
		order, err := s.orderRepo.FindOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := s.requireOrderAccess(ctx, actor, order, authz.OrderEdit); err != nil {
			return err
		}
		if d.Comment.Valid {
			order.Comment = strings.TrimSpace(d.Comment.String)
		}
		if d.Status.Valid {
			order.Status = d.Status.String
		}
		order.UpdatedAt = s.clock()
		if err := s.orderRepo.SaveOrder(ctx, order); err != nil {
			return err
		}
		result = order
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *OrderService) DeleteOrder(ctx context.Context, id uint64) error {
	var photos []entities.OrderPhoto
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		actor, err := loadActor(ctx, s.userRepo)
		if err != nil {
			return err
		}
		order, err := s.orderRepo.FindOrder(ctx, id)
		if err != nil {
			return err
		}
		if err := s.requireOrderAccess(ctx, actor, order, authz.OrderDelete); err != nil {
			return err
		}
		if _, err := s.orderRepo.DeleteOrder(ctx, id); err != nil {
			return err
		}
		photos = order.Photos
		return nil
	})
	if err != nil {
		return err
	}
	s.removePhotos(photos)
	return nil
}

func (s *OrderService) requirePermission(ctx context.Context, actor *entities.User, serviceID uint64, permission string) error {
	employment, err := s.employeeRepo.FindActive(ctx, actor.ID, serviceID)
	if err != nil {
		return err
	}
	if !authz.Allows(employment, permission) {
		return apperrors.NewForbiddenError("Нет права %s в сервисе %d", permission, serviceID)
	}
	return nil
}

func (s *OrderService) requireOrderAccess(ctx context.Context, actor *entities.User, order *entities.Order, action authz.OrderAction) error {
	var employment *entities.ServiceEmployee
	if order.ServiceID != nil {
		var err error
		if employment, err = s.employeeRepo.FindActive(ctx, actor.ID, *order.ServiceID); err != nil {
			return err
		}
	}
	if !authz.CanAccessOrder(actor, employment, order, action) {
		return apperrors.NewForbiddenError("Нет доступа к заказу %d", order.ID)
	}
	return nil
}
