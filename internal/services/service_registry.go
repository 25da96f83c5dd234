// Файл: internal/services/service_registry.go
package services

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"pedant-server/internal/authz"
	"pedant-server/internal/dto"
	"pedant-server/internal/entities"
	"pedant-server/internal/repositories"
	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/utils"
)

type ServiceRegistryInterface interface {
	CreateService(ctx context.Context, d dto.CreateServiceDTO) (*entities.Service, error)
	GetService(ctx context.Context, id uint64) (*entities.Service, error)
	ListServices(ctx context.Context) ([]entities.Service, error)
	ListServicesByOwner(ctx context.Context, ownerID uint64) ([]entities.Service, error)
	UpdateService(ctx context.Context, id uint64, d dto.UpdateServiceDTO) (*entities.Service, error)
	DeleteService(ctx context.Context, id uint64) error
}

type ServiceRegistry struct {
	serviceRepo  repositories.ServiceRepositoryInterface
	userRepo     repositories.UserRepositoryInterface
	employeeRepo repositories.EmployeeRepositoryInterface
	txManager    repositories.TxManagerInterface
	clock        utils.Clock
	logger       *zap.Logger
}

func NewServiceRegistry(
	serviceRepo repositories.ServiceRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	employeeRepo repositories.EmployeeRepositoryInterface,
	txManager repositories.TxManagerInterface,
	clock utils.Clock,
	logger *zap.Logger,
) ServiceRegistryInterface {
	return &ServiceRegistry{
		serviceRepo:  serviceRepo,
		userRepo:     userRepo,
		employeeRepo: employeeRepo,
		txManager:    txManager,
		clock:        clock,
		logger:       logger,
	}
}

// CreateService регистрирует сервис и запись владельца в нём.
// Незарегистрированный владелец становится registered.
func (s *ServiceRegistry) CreateService(ctx context.Context, d dto.CreateServiceDTO) (*entities.Service, error) {
	var result *entities.Service
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		actor, err := loadActor(ctx, s.userRepo)
		if err != nil {
			return err
		}

		owner := actor
		if d.OwnerID != nil && *d.OwnerID != actor.ID {
			if !actor.IsAdmin() {
				return apperrors.ErrAdminRequired
			}
			if owner, err = s.userRepo.FindUser(ctx, *d.OwnerID); err != nil {
				return err
			}
		}

		existing, err := s.serviceRepo.FindByNumber(ctx, d.ServiceNumber)
		if err != nil {
			return err
		}
		if existing != nil {
			return apperrors.NewAlreadyExistsError("Сервис с номером %s уже существует", d.ServiceNumber)
		}

		now := s.clock()
		service := &entities.Service{
			ServiceNumber: d.ServiceNumber,
			Name:          utils.SanitizeString(d.Name, maxProfileStringLen),
			Address:       utils.SanitizeString(d.Address, maxPhotoURLLen),
			Status:        entities.ServiceStatusActive,
			OwnerID:       owner.ID,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if err := s.serviceRepo.CreateService(ctx, service); err != nil {
			return err
		}

		if err := s.employeeRepo.CreateEmployee(ctx, &entities.ServiceEmployee{
			ServiceID:   service.ID,
			UserID:      owner.ID,
			Role:        authz.RoleOwner,
			Permissions: authz.AllPermissions(),
			Status:      entities.EmploymentStatusActive,
			InvitedBy:   owner.ID,
			JoinedAt:    now,
			UpdatedAt:   now,
		}); err != nil {
			return err
		}

		owner.OwnedServices, _ = utils.AppendUnique(owner.OwnedServices, service.ID)
		if owner.RegistrationStatus == entities.RegistrationUnregistered {
			owner.RegistrationStatus = entities.RegistrationRegistered
		}
		if owner.ActiveServiceID == nil {
			owner.ActiveServiceID = utils.ToPtr(service.ID)
		}
		owner.UpdatedAt = now
		if err := s.userRepo.SaveUser(ctx, owner); err != nil {
			return err
		}

		s.logger.Info("Сервис создан",
			zap.Uint64("serviceID", service.ID),
			zap.String("serviceNumber", service.ServiceNumber),
			zap.Uint64("ownerID", owner.ID))
		result = service
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *ServiceRegistry) GetService(ctx context.Context, id uint64) (*entities.Service, error) {
	if _, err := loadActor(ctx, s.userRepo); err != nil {
		return nil, err
	}
	return s.serviceRepo.FindService(ctx, id)
}

// ListServices: администратору - все, остальным - свои и те, где он работает.
func (s *ServiceRegistry) ListServices(ctx context.Context) ([]entities.Service, error) {
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}
	all, err := s.serviceRepo.GetServices(ctx)
	if err != nil {
		return nil, err
	}
	if actor.IsAdmin() {
		return all, nil
	}

	employments, err := s.employeeRepo.GetByUser(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	visible := make(map[uint64]struct{})
	for _, id := range actor.OwnedServices {
		visible[id] = struct{}{}
	}
	for _, e := range employments {
		if e.IsActive() {
			visible[e.ServiceID] = struct{}{}
		}
	}

	result := make([]entities.Service, 0, len(visible))
	for _, svc := range all {
		if _, ok := visible[svc.ID]; ok {
			result = append(result, svc)
		}
	}
	return result, nil
}

func (s *ServiceRegistry) ListServicesByOwner(ctx context.Context, ownerID uint64) ([]entities.Service, error) {
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}
	if actor.ID != ownerID && !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	services, err := s.serviceRepo.GetServicesByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	sort.Slice(services, func(i, j int) bool { return services[i].ID < services[j].ID })
	return services, nil
}

func (s *ServiceRegistry) UpdateService(ctx context.Context, id uint64, d dto.UpdateServiceDTO) (*entities.Service, error) {
	var result *entities.Service
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		actor, err := loadActor(ctx, s.userRepo)
		if err != nil {
			return err
		}
		service, err := s.serviceRepo.FindService(ctx, id)
		if err != nil {
			return err
		}
		if service.OwnerID != actor.ID && !actor.IsAdmin() {
			return apperrors.ErrNotServiceOwner
		}

		if d.Name.Valid {
			service.Name = utils.SanitizeString(d.Name.String, maxProfileStringLen)
		}
		if d.Address.Valid {
			service.Address = utils.SanitizeString(d.Address.String, maxPhotoURLLen)
		}
		if d.Status.Valid {
			service.Status = d.Status.String
		}
		service.UpdatedAt = s.clock()

		if err := s.serviceRepo.SaveService(ctx, service); err != nil {
			return err
		}
		result = service
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteService удаляет сервис вместе со всеми записями о трудоустройстве в нём
// и чистит ссылки на него у пользователей.
func (s *ServiceRegistry) DeleteService(ctx context.Context, id uint64) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		actor, err := loadActor(ctx, s.userRepo)
		if err != nil {
			return err
		}
		service, err := s.serviceRepo.FindService(ctx, id)
		if err != nil {
			return err
		}
		if service.OwnerID != actor.ID && !actor.IsAdmin() {
			return apperrors.ErrNotServiceOwner
		}

		employments, err := s.employeeRepo.GetByService(ctx, id)
		if err != nil {
			return err
		}
		affected := map[uint64]struct{}{service.OwnerID: {}}
		for _, e := range employments {
			if _, err := s.employeeRepo.DeleteEmployee(ctx, e.ID); err != nil {
				return err
			}
			affected[e.UserID] = struct{}{}
		}

		now := s.clock()
		for userID := range affected {
			user, err := s.userRepo.FindUser(ctx, userID)
			if err != nil {
				if apperrors.IsKind(err, apperrors.KindNotFound) {
					continue
				}
				return err
			}
			var changedOwned, changedEmployee bool
			user.OwnedServices, changedOwned = utils.RemoveUint64(user.OwnedServices, id)
			user.EmployeeServices, changedEmployee = utils.RemoveUint64(user.EmployeeServices, id)
			changedActive := user.ActiveServiceID != nil && *user.ActiveServiceID == id
			if changedActive {
				user.ActiveServiceID = nil
			}
			if !changedOwned && !changedEmployee && !changedActive {
				continue
			}
			user.UpdatedAt = now
			if err := s.userRepo.SaveUser(ctx, user); err != nil {
				return err
			}
		}

		if _, err := s.serviceRepo.DeleteService(ctx, id); err != nil {
			return err
		}
		s.logger.Info("Сервис удалён",
			zap.Uint64("serviceID", id),
			zap.Int("employments", len(employments)),
			zap.Uint64("by", actor.ID))
		return nil
	})
}
