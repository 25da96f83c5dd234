// Файл: internal/services/employee_ledger.go
package services

import (
	"context"

	"go.uber.org/zap"

	"pedant-server/internal/authz"
	"pedant-server/internal/dto"
	"pedant-server/internal/entities"
	"pedant-server/internal/events"
	"pedant-server/internal/repositories"
	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/eventbus"
	"pedant-server/pkg/utils"
)

type EmployeeServiceInterface interface {
	AddEmployee(ctx context.Context, serviceID uint64, d dto.AddEmployeeDTO) (*entities.ServiceEmployee, error)
	UpdateEmployee(ctx context.Context, employeeID uint64, d dto.UpdateEmployeeDTO) (*entities.ServiceEmployee, error)
	RemoveEmployee(ctx context.Context, employeeID uint64) error
	ListEmployeesByService(ctx context.Context, serviceID uint64) ([]dto.EmployeeResponseDTO, error)
	ListEmployeesByUser(ctx context.Context, userID uint64) ([]dto.EmployeeResponseDTO, error)
	// HasPermission вычисляется при каждом вызове, без кеша.
	HasPermission(ctx context.Context, userID, serviceID uint64, permission string) (bool, error)
	// HireEmployee оформляет кандидата в сервис владельца ownerID.
	HireEmployee(ctx context.Context, candidateUserID, serviceID, ownerID uint64) (*entities.ServiceEmployee, error)
	// Hire - то же без своей транзакции и без события: для вызова внутри
	// чужой транзакции. Событие публикует вызывающий после коммита.
	// Пустая role означает employee.
	Hire(ctx context.Context, candidateUserID, serviceID, ownerID uint64, role string) (*HireResult, error)
}

// HireResult - итог найма. Changed == false, если кандидат уже работал в сервисе.
type HireResult struct {
	Employment *entities.ServiceEmployee
	Service    *entities.Service
	OwnerID    uint64
	Changed    bool
}

func (r *HireResult) Event() events.EmployeeHired {
	return events.EmployeeHired{Employment: *r.Employment, Service: *r.Service, OwnerID: r.OwnerID}
}

type EmployeeService struct {
	employeeRepo repositories.EmployeeRepositoryInterface
	userRepo     repositories.UserRepositoryInterface
	serviceRepo  repositories.ServiceRepositoryInterface
	txManager    repositories.TxManagerInterface
	bus          *eventbus.Bus
	clock        utils.Clock
	logger       *zap.Logger
}

func NewEmployeeService(
	employeeRepo repositories.EmployeeRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	serviceRepo repositories.ServiceRepositoryInterface,
	txManager repositories.TxManagerInterface,
	bus *eventbus.Bus,
	clock utils.Clock,
	logger *zap.Logger,
) EmployeeServiceInterface {
	return &EmployeeService{
		employeeRepo: employeeRepo,
		userRepo:     userRepo,
		serviceRepo:  serviceRepo,
		txManager:    txManager,
		bus:          bus,
		clock:        clock,
		logger:       logger,
	}
}

func (s *EmployeeService) HasPermission(ctx context.Context, userID, serviceID uint64, permission string) (bool, error) {
	employment, err := s.employeeRepo.FindActive(ctx, userID, serviceID)
	if err != nil {
		return false, err
	}
	return authz.Allows(employment, permission), nil
}

func (s *EmployeeService) HireEmployee(ctx context.Context, candidateUserID, serviceID, ownerID uint64) (*entities.ServiceEmployee, error) {
	var result *HireResult
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.Hire(ctx, candidateUserID, serviceID, ownerID, authz.RoleEmployee)
		return err
	})
	if err != nil {
		return nil, err
	}
	if result.Changed {
		s.bus.Publish(ctx, result.Event())
	}
	return result.Employment, nil
}

func (s *EmployeeService) Hire(ctx context.Context, candidateUserID, serviceID, ownerID uint64, role string) (*HireResult, error) {
	if role == "" {
		role = authz.RoleEmployee
	}
	if err := validateHireRole(role); err != nil {
		return nil, err
	}
	owner, err := s.userRepo.FindUser(ctx, ownerID)
	if err != nil && !apperrors.IsKind(err, apperrors.KindNotFound) {
		return nil, err
	}
	if owner == nil || !owner.OwnsService(serviceID) {
		return nil, apperrors.ErrNotServiceOwner
	}
	service, err := s.serviceRepo.FindService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	candidate, err := s.userRepo.FindUser(ctx, candidateUserID)
	if err != nil {
		return nil, err
	}

	pairs, err := s.employeeRepo.FindByPair(ctx, candidateUserID, serviceID)
	if err != nil {
		return nil, err
	}
	for i := range pairs {
		if pairs[i].IsActive() {
			return &HireResult{Employment: &pairs[i], Service: service, OwnerID: ownerID}, nil
		}
	}

	now := s.clock()
	var employment *entities.ServiceEmployee
	if len(pairs) > 0 {
		employment = &pairs[0]
		employment.Role = role
		employment.Permissions = authz.HirePermissionsFor(role)
		employment.Status = entities.EmploymentStatusActive
		employment.InvitedBy = ownerID
		employment.UpdatedAt = now
		if err := s.employeeRepo.SaveEmployee(ctx, employment); err != nil {
			return nil, err
		}
	} else {
		employment = &entities.ServiceEmployee{
			ServiceID:   serviceID,
			UserID:      candidateUserID,
			Role:        role,
			Permissions: authz.HirePermissionsFor(role),
			Status:      entities.EmploymentStatusActive,
			InvitedBy:   ownerID,
			JoinedAt:    now,
			UpdatedAt:   now,
		}
		if err := s.employeeRepo.CreateEmployee(ctx, employment); err != nil {
			return nil, err
		}
	}

	candidate.EmployeeServices, _ = utils.AppendUnique(candidate.EmployeeServices, serviceID)
	candidate.RegistrationStatus = entities.RegistrationEmployee
	candidate.ActiveServiceID = utils.ToPtr(serviceID)
	candidate.UpdatedAt = now
	if err := s.userRepo.SaveUser(ctx, candidate); err != nil {
		return nil, err
	}

	s.logger.Info("Сотрудник нанят",
		zap.Uint64("candidateID", candidateUserID),
		zap.Uint64("serviceID", serviceID),
		zap.Uint64("ownerID", ownerID),
		zap.String("role", role))
	return &HireResult{Employment: employment, Service: service, OwnerID: ownerID, Changed: true}, nil
}

// validateHireRole: при найме и добавлении выдаются только роли manager и employee.
func validateHireRole(role string) error {
	if !authz.IsKnownRole(role) {
		return apperrors.NewInvalidInputError("Недопустимая роль сотрудника: %s", role)
	}
	if role == authz.RoleOwner {
		return apperrors.NewInvalidInputError("Роль владельца назначается только при создании сервиса")
	}
	return nil
}

// AddEmployee - ручное добавление сотрудника владельцем или менеджером.
// Повторное добавление активной пары возвращает существующую запись.
func (s *EmployeeService) AddEmployee(ctx context.Context, serviceID uint64, d dto.AddEmployeeDTO) (*entities.ServiceEmployee, error) {
	role := d.Role
	if role == "" {
		role = authz.RoleEmployee
	}
	if err := validateHireRole(role); err != nil {
		return nil, err
	}
	permissions := utils.UniqueStrings(d.Permissions)
	if len(permissions) == 0 {
		permissions = authz.DefaultEmployeePermissions()
	}

	var result *entities.ServiceEmployee
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		actor, err := loadActor(ctx, s.userRepo)
		if err != nil {
			return err
		}
		if _, err := s.serviceRepo.FindService(ctx, serviceID); err != nil {
			return err
		}
		if err := s.requireManager(ctx, actor, serviceID); err != nil {
			return err
		}
		user, err := s.userRepo.FindUser(ctx, d.UserID)
		if err != nil {
			return err
		}

		pairs, err := s.employeeRepo.FindByPair(ctx, d.UserID, serviceID)
		if err != nil {
			return err
		}
		for i := range pairs {
			if pairs[i].IsActive() {
				result = &pairs[i]
				return nil
			}
		}

		now := s.clock()
		if len(pairs) > 0 {
			result = &pairs[0]
			result.Role = role
			result.Permissions = permissions
			result.Status = entities.EmploymentStatusActive
			result.InvitedBy = actor.ID
			result.UpdatedAt = now
			err = s.employeeRepo.SaveEmployee(ctx, result)
		} else {
			result = &entities.ServiceEmployee{
				ServiceID:   serviceID,
				UserID:      d.UserID,
				Role:        role,
				Permissions: permissions,
				Status:      entities.EmploymentStatusActive,
				InvitedBy:   actor.ID,
				JoinedAt:    now,
				UpdatedAt:   now,
			}
			err = s.employeeRepo.CreateEmployee(ctx, result)
		}
		if err != nil {
			return err
		}

		user.EmployeeServices, _ = utils.AppendUnique(user.EmployeeServices, serviceID)
		if user.RegistrationStatus == entities.RegistrationUnregistered ||
			user.RegistrationStatus == entities.RegistrationWaitingForHire {
			user.RegistrationStatus = entities.RegistrationEmployee
		}
		if user.ActiveServiceID == nil {
			user.ActiveServiceID = utils.ToPtr(serviceID)
		}
		user.UpdatedAt = now
		return s.userRepo.SaveUser(ctx, user)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *EmployeeService) UpdateEmployee(ctx context.Context, employeeID uint64, d dto.UpdateEmployeeDTO) (*entities.ServiceEmployee, error) {
	var result *entities.ServiceEmployee
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		actor, err := loadActor(ctx, s.userRepo)
		if err != nil {
			return err
		}
		employment, err := s.employeeRepo.FindEmployee(ctx, employeeID)
		if err != nil {
			return err
		}
		if err := s.requireManager(ctx, actor, employment.ServiceID); err != nil {
			return err
		}

		if employment.Role == authz.RoleOwner && (d.Role.Valid || d.Status.Valid) {
			return apperrors.NewForbiddenError("Роль и статус владельца не меняются")
		}
		if d.Role.Valid {
			if !authz.IsKnownRole(d.Role.String) {
				return apperrors.NewInvalidInputError("Недопустимая роль сотрудника: %s", d.Role.String)
			}
			if d.Role.String == authz.RoleOwner {
				return apperrors.NewInvalidInputError("Роль владельца назначается только при создании сервиса")
			}
			employment.Role = d.Role.String
		}
		if d.Permissions != nil {
			employment.Permissions = utils.UniqueStrings(*d.Permissions)
		}

		statusChanged := d.Status.Valid && d.Status.String != employment.Status
		if d.Status.Valid {
			employment.Status = d.Status.String
		}
		employment.UpdatedAt = s.clock()
		if err := s.employeeRepo.SaveEmployee(ctx, employment); err != nil {
			return err
		}

		if statusChanged {
			if err := s.syncUserLink(ctx, employment.UserID, employment.ServiceID, employment.IsActive()); err != nil {
				return err
			}
		}
		result = employment
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *EmployeeService) RemoveEmployee(ctx context.Context, employeeID uint64) error {
	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		actor, err := loadActor(ctx, s.userRepo)
		if err != nil {
			return err
		}
		employment, err := s.employeeRepo.FindEmployee(ctx, employeeID)
		if err != nil {
			return err
		}
		if err := s.requireManager(ctx, actor, employment.ServiceID); err != nil {
			return err
		}
		if employment.Role == authz.RoleOwner {
			return apperrors.NewForbiddenError("Нельзя удалить владельца сервиса")
		}

		if _, err := s.employeeRepo.DeleteEmployee(ctx, employeeID); err != nil {
			return err
		}
		if err := s.syncUserLink(ctx, employment.UserID, employment.ServiceID, false); err != nil {
			return err
		}
		s.logger.Info("Сотрудник удалён",
			zap.Uint64("employeeID", employeeID),
			zap.Uint64("serviceID", employment.ServiceID),
			zap.Uint64("by", actor.ID))
		return nil
	})
}

// syncUserLink приводит employeeServices/activeServiceId пользователя к состоянию трудоустройства.
func (s *EmployeeService) syncUserLink(ctx context.Context, userID, serviceID uint64, active bool) error {
	user, err := s.userRepo.FindUser(ctx, userID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil
		}
		return err
	}
	if active {
		user.EmployeeServices, _ = utils.AppendUnique(user.EmployeeServices, serviceID)
	} else {
		user.EmployeeServices, _ = utils.RemoveUint64(user.EmployeeServices, serviceID)
		if user.ActiveServiceID != nil && *user.ActiveServiceID == serviceID && !user.OwnsService(serviceID) {
			user.ActiveServiceID = nil
		}
	}
	user.UpdatedAt = s.clock()
	return s.userRepo.SaveUser(ctx, user)
}

func (s *EmployeeService) requireManager(ctx context.Context, actor *entities.User, serviceID uint64) error {
	employment, err := s.employeeRepo.FindActive(ctx, actor.ID, serviceID)
	if err != nil {
		return err
	}
	if !authz.CanManageEmployees(actor, employment, serviceID) {
		return apperrors.NewForbiddenError("Нет прав на управление сотрудниками сервиса %d", serviceID)
	}
	return nil
}

// ListEmployeesByService доступен администратору, владельцу и сотрудникам сервиса.
func (s *EmployeeService) ListEmployeesByService(ctx context.Context, serviceID uint64) ([]dto.EmployeeResponseDTO, error) {
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}
	if _, err := s.serviceRepo.FindService(ctx, serviceID); err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && !actor.OwnsService(serviceID) {
		own, err := s.employeeRepo.FindActive(ctx, actor.ID, serviceID)
		if err != nil {
			return nil, err
		}
		if own == nil {
			return nil, apperrors.NewForbiddenError("Нет доступа к сервису %d", serviceID)
		}
	}

	employments, err := s.employeeRepo.GetByService(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.EmployeeResponseDTO, 0, len(employments))
	for _, e := range employments {
		user, err := s.userRepo.FindUser(ctx, e.UserID)
		if err != nil && !apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, err
		}
		result = append(result, toEmployeeResponse(e, user))
	}
	return result, nil
}

func (s *EmployeeService) ListEmployeesByUser(ctx context.Context, userID uint64) ([]dto.EmployeeResponseDTO, error) {
	actor, err := loadActor(ctx, s.userRepo)
	if err != nil {
		return nil, err
	}
	if actor.ID != userID && !actor.IsAdmin() {
		return nil, apperrors.ErrForbidden
	}
	employments, err := s.employeeRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	result := make([]dto.EmployeeResponseDTO, 0, len(employments))
	for _, e := range employments {
		result = append(result, toEmployeeResponse(e, nil))
	}
	return result, nil
}
