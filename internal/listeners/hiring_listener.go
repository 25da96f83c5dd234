package listeners

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"pedant-server/internal/entities"
	"pedant-server/internal/events"
	"pedant-server/internal/repositories"
	"pedant-server/internal/services"
	"pedant-server/pkg/eventbus"
)

// HiringListener рассылает уведомления о найме участникам заявки.
type HiringListener struct {
	notifier  services.NotificationServiceInterface
	userRepo  repositories.UserRepositoryInterface
	webAppURL string
	logger    *zap.Logger
}

func NewHiringListener(
	notifier services.NotificationServiceInterface,
	userRepo repositories.UserRepositoryInterface,
	webAppURL string,
	logger *zap.Logger,
) *HiringListener {
	return &HiringListener{
		notifier:  notifier,
		userRepo:  userRepo,
		webAppURL: webAppURL,
		logger:    logger,
	}
}

func (l *HiringListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.HiringQueuedEvent, l.handleQueued)
	bus.Subscribe(events.HiringApprovedEvent, l.handleDecided)
	bus.Subscribe(events.HiringRejectedEvent, l.handleDecided)
	bus.Subscribe(events.EmployeeHiredEvent, l.handleHired)
	l.logger.Info("HiringListener подписан на события найма")
}

// handleQueued: работодателю сообщаем о новом кандидате. Общая очередь никого не уведомляет.
func (l *HiringListener) handleQueued(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.HiringQueued)
	if !ok || e.Entry.EmployerUserID == nil {
		return nil
	}
	text := fmt.Sprintf("Новый кандидат в очереди: %s", l.candidateName(ctx, e.Entry))
	return l.notifier.NotifyWithWebApp(ctx, *e.Entry.EmployerUserID, text, "Открыть очередь", l.webAppURL)
}

func (l *HiringListener) handleDecided(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.HiringDecided)
	if !ok {
		return nil
	}
	text := "Ваша заявка на трудоустройство отклонена."
	if e.Approved {
		text = "Ваша заявка на трудоустройство одобрена."
	}
	return l.notifier.Notify(ctx, e.Entry.CandidateUserID, text)
}

func (l *HiringListener) handleHired(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.EmployeeHired)
	if !ok {
		return nil
	}
	text := fmt.Sprintf("Вы приняты в сервис «%s» (№%s).", e.Service.Name, e.Service.ServiceNumber)
	return l.notifier.NotifyWithWebApp(ctx, e.Employment.UserID, text, "Открыть приложение", l.webAppURL)
}

func (l *HiringListener) candidateName(ctx context.Context, entry entities.HiringQueue) string {
	if user, err := l.userRepo.FindUser(ctx, entry.CandidateUserID); err == nil {
		return user.DisplayName()
	}
	if entry.QRData != nil {
		u := entities.User{ID: entry.CandidateUserID, FirstName: entry.QRData.FirstName, LastName: entry.QRData.LastName, Username: entry.QRData.Username}
		return u.DisplayName()
	}
	return fmt.Sprintf("User %d", entry.CandidateUserID)
}
