// Файл: internal/services/hiring_queue.go
package services

import (
	"context"
	"sort"

	"go.uber.org/zap"

	"pedant-server/internal/authz"
	"pedant-server/internal/dto"
	"pedant-server/internal/entities"
	"pedant-server/internal/events"
	"pedant-server/internal/repositories"
	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/eventbus"
	"pedant-server/pkg/metrics"
	"pedant-server/pkg/utils"
)

type HiringQueueServiceInterface interface {
	AddCandidateToGeneralQueue(ctx context.Context, candidateUserID uint64) (*entities.HiringQueue, error)
	AddToQueue(ctx context.Context, employerUserID uint64, d dto.AddToQueueDTO) (*entities.HiringQueue, error)
	Approve(ctx context.Context, queueID, employerUserID uint64) (*entities.HiringQueue, error)
	Reject(ctx context.Context, queueID, employerUserID uint64) (*entities.HiringQueue, error)
	// ApproveAndHire одобряет заявку и нанимает кандидата одной транзакцией.
	ApproveAndHire(ctx context.Context, queueID, employerUserID, serviceID uint64) (*entities.HiringQueue, *entities.ServiceEmployee, error)
	GetEmployerQueue(ctx context.Context, employerUserID uint64) ([]entities.HiringQueue, error)
	GetCandidateApplications(ctx context.Context, candidateUserID uint64) ([]entities.HiringQueue, error)
	GetQueueStats(ctx context.Context, employerUserID uint64) (*dto.QueueStatsDTO, error)
	// SweepExpired помечает просроченные открытые заявки статусом expired.
	SweepExpired(ctx context.Context) (int, error)
}

type HiringQueueService struct {
	queueRepo    repositories.HiringQueueRepositoryInterface
	activityRepo repositories.HiringActivityRepositoryInterface
	userRepo     repositories.UserRepositoryInterface
	serviceRepo  repositories.ServiceRepositoryInterface
	employees    EmployeeServiceInterface
	txManager    repositories.TxManagerInterface
	bus          *eventbus.Bus
	metrics      *metrics.Metrics
	clock        utils.Clock
	logger       *zap.Logger
}

func NewHiringQueueService(
	queueRepo repositories.HiringQueueRepositoryInterface,
	activityRepo repositories.HiringActivityRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	serviceRepo repositories.ServiceRepositoryInterface,
	employees EmployeeServiceInterface,
	txManager repositories.TxManagerInterface,
	bus *eventbus.Bus,
	m *metrics.Metrics,
	clock utils.Clock,
	logger *zap.Logger,
) HiringQueueServiceInterface {
	return &HiringQueueService{
		queueRepo:    queueRepo,
		activityRepo: activityRepo,
		userRepo:     userRepo,
		serviceRepo:  serviceRepo,
		employees:    employees,
		txManager:    txManager,
		bus:          bus,
		metrics:      m,
		clock:        clock,
		logger:       logger,
	}
}

func snapshotOf(user *entities.User) *entities.QRData {
	if user == nil {
		return nil
	}
	return &entities.QRData{FirstName: user.FirstName, LastName: user.LastName, Username: user.Username}
}

// AddCandidateToGeneralQueue ставит кандидата в общую очередь без работодателя.
// Неизвестный пользователь допускается, тогда снимок qrData пуст.
func (s *HiringQueueService) AddCandidateToGeneralQueue(ctx context.Context, candidateUserID uint64) (*entities.HiringQueue, error) {
	var entry *entities.HiringQueue
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		candidate, err := s.userRepo.FindUser(ctx, candidateUserID)
		if err != nil && !apperrors.IsKind(err, apperrors.KindNotFound) {
			return err
		}

		now := s.clock()
		entry = &entities.HiringQueue{
			CandidateUserID: candidateUserID,
			Role:            authz.RoleEmployee,
			Status:          entities.HiringStatusWaitingForHire,
			QRData:          snapshotOf(candidate),
			ScannedAt:       now,
			ExpiresAt:       now.Add(entities.HiringQueueTTL),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.queueRepo.CreateEntry(ctx, entry); err != nil {
			return err
		}

		if candidate != nil {
			candidate.RegistrationStatus = entities.RegistrationWaitingForHire
			candidate.UpdatedAt = now
			if err := s.userRepo.SaveUser(ctx, candidate); err != nil {
				return err
			}
		}
		return s.record(ctx, candidateUserID, entities.ActivityQueued, entry, nil)
	})
	s.metrics.HiringTransition(entities.HiringStatusWaitingForHire, resultTag(err))
	if err != nil {
		return nil, err
	}

	s.logger.Info("Кандидат в общей очереди", zap.Uint64("candidateID", candidateUserID), zap.Uint64("queueID", entry.ID))
	s.bus.Publish(ctx, events.HiringQueued{Entry: *entry})
	return entry, nil
}

// AddToQueue - работодатель отсканировал QR кандидата.
// Повторное сканирование той же пары возвращает открытую заявку.
func (s *HiringQueueService) AddToQueue(ctx context.Context, employerUserID uint64, d dto.AddToQueueDTO) (*entities.HiringQueue, error) {
	role := d.Role
	if role == "" {
		role = authz.RoleEmployee
	}
	if err := validateHireRole(role); err != nil {
		return nil, err
	}
	if d.CandidateUserID == employerUserID {
		return nil, apperrors.NewInvalidInputError("Нельзя поставить в очередь самого себя")
	}

	var (
		entry   *entities.HiringQueue
		created bool
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if d.ServiceID != nil {
			employer, err := s.userRepo.FindUser(ctx, employerUserID)
			if err != nil {
				return err
			}
			if !employer.OwnsService(*d.ServiceID) {
				return apperrors.ErrNotServiceOwner
			}
			if _, err := s.serviceRepo.FindService(ctx, *d.ServiceID); err != nil {
				return err
			}
		}

		candidate, err := s.userRepo.FindUser(ctx, d.CandidateUserID)
		if err != nil && !apperrors.IsKind(err, apperrors.KindNotFound) {
			return err
		}

		now := s.clock()
		existing, err := s.queueRepo.GetByCandidate(ctx, d.CandidateUserID)
		if err != nil {
			return err
		}
		for i := range existing {
			e := &existing[i]
			if e.IsOpen() && !e.IsExpired(now) && sameID(e.EmployerUserID, &employerUserID) && sameID(e.ServiceID, d.ServiceID) {
				entry = e
				return nil
			}
		}

		entry = &entities.HiringQueue{
			CandidateUserID: d.CandidateUserID,
			EmployerUserID:  utils.ToPtr(employerUserID),
			ServiceID:       d.ServiceID,
			Role:            role,
			Status:          entities.HiringStatusPending,
			QRData:          snapshotOf(candidate),
			ScannedAt:       now,
			ExpiresAt:       now.Add(entities.HiringQueueTTL),
			CreatedAt:       now,
			UpdatedAt:       now,
		}
		if err := s.queueRepo.CreateEntry(ctx, entry); err != nil {
			return err
		}
		created = true
		return s.record(ctx, employerUserID, entities.ActivityQueued, entry, nil)
	})
	s.metrics.HiringTransition(entities.HiringStatusPending, resultTag(err))
	if err != nil {
		return nil, err
	}
	if created {
		s.bus.Publish(ctx, events.HiringQueued{Entry: *entry})
	}
	return entry, nil
}

func (s *HiringQueueService) Approve(ctx context.Context, queueID, employerUserID uint64) (*entities.HiringQueue, error) {
	var entry *entities.HiringQueue
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.decide(ctx, queueID, employerUserID, true, nil)
		return err
	})
	s.metrics.HiringTransition(entities.HiringStatusApproved, resultTag(err))
	if err != nil {
		return nil, err
	}
	s.bus.Publish(ctx, events.HiringDecided{Entry: *entry, Approved: true})
	return entry, nil
}

func (s *HiringQueueService) Reject(ctx context.Context, queueID, employerUserID uint64) (*entities.HiringQueue, error) {
	var entry *entities.HiringQueue
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.decide(ctx, queueID, employerUserID, false, nil)
		return err
	})
	s.metrics.HiringTransition(entities.HiringStatusRejected, resultTag(err))
	if err != nil {
		return nil, err
	}
	s.bus.Publish(ctx, events.HiringDecided{Entry: *entry, Approved: false})
	return entry, nil
}

func (s *HiringQueueService) ApproveAndHire(ctx context.Context, queueID, employerUserID, serviceID uint64) (*entities.HiringQueue, *entities.ServiceEmployee, error) {
	var (
		entry *entities.HiringQueue
		hired *HireResult
	)
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		var err error
		entry, err = s.decide(ctx, queueID, employerUserID, true, &serviceID)
		if err != nil {
			return err
		}
		hired, err = s.employees.Hire(ctx, entry.CandidateUserID, serviceID, employerUserID, entry.Role)
		if err != nil {
			return err
		}
		return s.record(ctx, employerUserID, entities.ActivityHired, entry, map[string]interface{}{
			"employmentId": hired.Employment.ID,
		})
	})
	s.metrics.HiringTransition(entities.HiringStatusApproved, resultTag(err))
	if err != nil {
		return nil, nil, err
	}

	s.bus.Publish(ctx, events.HiringDecided{Entry: *entry, Approved: true})
	if hired.Changed {
		s.bus.Publish(ctx, hired.Event())
	}
	return entry, hired.Employment, nil
}

// decide - общий переход pending/waiting_for_hire -> approved/rejected.
// Порядок проверок у одобрения и отклонения разный: одобрение сначала
// смотрит на срок, отклонение - на статус.
func (s *HiringQueueService) decide(ctx context.Context, queueID, employerUserID uint64, approve bool, serviceID *uint64) (*entities.HiringQueue, error) {
	entry, err := s.queueRepo.FindEntry(ctx, queueID)
	if err != nil {
		return nil, err
	}
	if entry.EmployerUserID != nil && *entry.EmployerUserID != employerUserID {
		return nil, apperrors.NewForbiddenError("Заявка %d адресована другому работодателю", queueID)
	}
	if entry.CandidateUserID == employerUserID {
		return nil, apperrors.NewInvalidInputError("Нельзя решить собственную заявку %d", queueID)
	}

	now := s.clock()
	expired := func() error {
		if entry.IsExpired(now) {
			return apperrors.NewExpiredError("Срок заявки %d истёк", queueID)
		}
		return nil
	}
	processed := func() error {
		if !entry.IsOpen() {
			return apperrors.NewAlreadyProcessedError("Заявка %d уже обработана (%s)", queueID, entry.Status)
		}
		return nil
	}
	checks := []func() error{processed, expired}
	if approve {
		checks = []func() error{expired, processed}
	}
	for _, check := range checks {
		if err := check(); err != nil {
			return nil, err
		}
	}

	if serviceID != nil {
		if entry.ServiceID != nil && *entry.ServiceID != *serviceID {
			return nil, apperrors.NewInvalidInputError("Заявка %d относится к другому сервису", queueID)
		}
		entry.ServiceID = serviceID
	}

	activity := entities.ActivityRejected
	entry.Status = entities.HiringStatusRejected
	if approve {
		activity = entities.ActivityApproved
		entry.Status = entities.HiringStatusApproved
	}
	entry.EmployerUserID = utils.ToPtr(employerUserID)
	entry.ProcessedAt = utils.ToPtr(now)
	entry.UpdatedAt = now

	if err := s.queueRepo.SaveEntry(ctx, entry); err != nil {
		return nil, err
	}
	if err := s.record(ctx, employerUserID, activity, entry, nil); err != nil {
		return nil, err
	}
	return entry, nil
}

// GetEmployerQueue: непросроченные заявки работодателя и общая очередь, новые сверху.
func (s *HiringQueueService) GetEmployerQueue(ctx context.Context, employerUserID uint64) ([]entities.HiringQueue, error) {
	entries, err := s.queueRepo.GetEntries(ctx)
	if err != nil {
		return nil, err
	}
	now := s.clock()
	result := make([]entities.HiringQueue, 0, len(entries))
	for _, e := range entries {
		if e.IsExpired(now) {
			continue
		}
		mine := e.EmployerUserID != nil && *e.EmployerUserID == employerUserID
		general := e.IsGeneral() && e.Status == entities.HiringStatusWaitingForHire
		if mine || general {
			result = append(result, e)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (s *HiringQueueService) GetCandidateApplications(ctx context.Context, candidateUserID uint64) ([]entities.HiringQueue, error) {
	entries, err := s.queueRepo.GetByCandidate(ctx, candidateUserID)
	if err != nil {
		return nil, err
	}
	sortNewestFirst(entries)
	return entries, nil
}

func (s *HiringQueueService) GetQueueStats(ctx context.Context, employerUserID uint64) (*dto.QueueStatsDTO, error) {
	entries, err := s.GetEmployerQueue(ctx, employerUserID)
	if err != nil {
		return nil, err
	}
	stats := &dto.QueueStatsDTO{Total: len(entries)}
	for _, e := range entries {
		switch e.Status {
		case entities.HiringStatusPending, entities.HiringStatusWaitingForHire:
			stats.Pending++
		case entities.HiringStatusApproved:
			stats.Approved++
		case entities.HiringStatusRejected:
			stats.Rejected++
		}
	}
	return stats, nil
}

func (s *HiringQueueService) SweepExpired(ctx context.Context) (int, error) {
	swept := 0
	err := s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		swept = 0
		entries, err := s.queueRepo.GetEntries(ctx)
		if err != nil {
			return err
		}
		now := s.clock()
		for i := range entries {
			e := &entries[i]
			if !e.IsOpen() || !e.IsExpired(now) {
				continue
			}
			e.Status = entities.HiringStatusExpired
			e.UpdatedAt = now
			if err := s.queueRepo.SaveEntry(ctx, e); err != nil {
				return err
			}
			if err := s.record(ctx, e.CandidateUserID, entities.ActivityExpired, e, nil); err != nil {
				return err
			}
			swept++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	s.metrics.ExpiredSwept(swept)
	if swept > 0 {
		s.logger.Info("Просроченные заявки закрыты", zap.Int("count", swept))
	}
	return swept, nil
}

func (s *HiringQueueService) record(ctx context.Context, userID uint64, activity string, entry *entities.HiringQueue, extra map[string]interface{}) error {
	data := map[string]interface{}{
		"candidateUserId": entry.CandidateUserID,
		"status":          entry.Status,
	}
	if entry.EmployerUserID != nil {
		data["employerUserId"] = *entry.EmployerUserID
	}
	if entry.ServiceID != nil {
		data["serviceId"] = *entry.ServiceID
	}
	for k, v := range extra {
		data[k] = v
	}
	return s.activityRepo.CreateActivity(ctx, &entities.HiringActivity{
		UserID:       userID,
		ActivityType: activity,
		QueueID:      entry.ID,
		Data:         data,
		Timestamp:    s.clock(),
	})
}

func sortNewestFirst(entries []entities.HiringQueue) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].ScannedAt.Equal(entries[j].ScannedAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].ScannedAt.After(entries[j].ScannedAt)
	})
}

func sameID(a, b *uint64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// resultTag - метка результата для метрик: "ok" или вид ошибки.
func resultTag(err error) string {
	if err == nil {
		return "ok"
	}
	return string(apperrors.KindOf(err))
}
