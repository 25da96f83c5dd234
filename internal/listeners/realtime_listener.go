package listeners

import (
	"context"

	"go.uber.org/zap"

	"pedant-server/internal/entities"
	"pedant-server/internal/events"
	"pedant-server/pkg/eventbus"
	"pedant-server/pkg/websocket"
)

// Pusher - то, чем RealtimeListener доставляет сообщения в открытые WebApp.
type Pusher interface {
	SendMessageToUser(userID uint64, messageType string, payload interface{}) (int, error)
}

// RealtimeListener пересылает изменения очереди найма в WebSocket-соединения.
type RealtimeListener struct {
	pusher Pusher
	logger *zap.Logger
}

func NewRealtimeListener(pusher Pusher, logger *zap.Logger) *RealtimeListener {
	return &RealtimeListener{pusher: pusher, logger: logger}
}

func (l *RealtimeListener) Register(bus *eventbus.Bus) {
	bus.Subscribe(events.HiringQueuedEvent, l.handleEntry)
	bus.Subscribe(events.HiringApprovedEvent, l.handleEntry)
	bus.Subscribe(events.HiringRejectedEvent, l.handleEntry)
	bus.Subscribe(events.EmployeeHiredEvent, l.handleHired)
}

func (l *RealtimeListener) handleEntry(ctx context.Context, event eventbus.Event) error {
	var entry entities.HiringQueue
	switch e := event.(type) {
	case events.HiringQueued:
		entry = e.Entry
	case events.HiringDecided:
		entry = e.Entry
	default:
		return nil
	}

	if entry.EmployerUserID != nil {
		if _, err := l.pusher.SendMessageToUser(*entry.EmployerUserID, websocket.MessageQueueUpdated, entry); err != nil {
			return err
		}
	}
	_, err := l.pusher.SendMessageToUser(entry.CandidateUserID, websocket.MessageApplication, entry)
	return err
}

func (l *RealtimeListener) handleHired(ctx context.Context, event eventbus.Event) error {
	e, ok := event.(events.EmployeeHired)
	if !ok {
		return nil
	}
	payload := map[string]interface{}{
		"employment": e.Employment,
		"service":    e.Service,
	}
	for _, userID := range []uint64{e.Employment.UserID, e.OwnerID} {
		if _, err := l.pusher.SendMessageToUser(userID, websocket.MessageEmployeeHired, payload); err != nil {
			return err
		}
	}
	return nil
}
