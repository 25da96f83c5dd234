package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Hub хранит соединения по пользователям и раздаёт им сообщения.
type Hub struct {
	mu          sync.RWMutex
	userClients map[uint64]map[*Client]struct{}
	register    chan *Client
	unregister  chan *Client
	now         func() time.Time
	logger      *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		userClients: make(map[uint64]map[*Client]struct{}),
		register:    make(chan *Client),
		unregister:  make(chan *Client),
		now:         func() time.Time { return time.Now().UTC() },
		logger:      logger,
	}
}

// Run обслуживает регистрацию соединений до отмены ctx, затем закрывает все соединения.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			set, ok := h.userClients[client.UserID]
			if !ok {
				set = make(map[*Client]struct{})
				h.userClients[client.UserID] = set
			}
			set[client] = struct{}{}
			h.mu.Unlock()
			h.logger.Debug("WebSocket: клиент подключён", zap.Uint64("userID", client.UserID))
		case client := <-h.unregister:
			h.remove(client)
		case <-ctx.Done():
			h.mu.Lock()
			for userID, set := range h.userClients {
				for client := range set {
					close(client.Send)
				}
				delete(h.userClients, userID)
			}
			h.mu.Unlock()
			return
		}
	}
}

func (h *Hub) Register(client *Client) { h.register <- client }

func (h *Hub) Unregister(client *Client) { h.unregister <- client }

func (h *Hub) remove(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.userClients[client.UserID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	close(client.Send)
	if len(set) == 0 {
		delete(h.userClients, client.UserID)
	}
}

// Connected - число открытых соединений пользователя.
func (h *Hub) Connected(userID uint64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.userClients[userID])
}

// SendMessageToUser кладёт сообщение во все соединения пользователя.
// Медленного клиента с переполненным буфером сообщение не ждёт.
func (h *Hub) SendMessageToUser(userID uint64, messageType string, payload interface{}) (int, error) {
	raw, err := json.Marshal(Envelope{Type: messageType, Payload: payload, Timestamp: h.now()})
	if err != nil {
		return 0, err
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for client := range h.userClients[userID] {
		select {
		case client.Send <- raw:
			delivered++
		default:
			h.logger.Warn("WebSocket: буфер клиента переполнен, сообщение пропущено", zap.Uint64("userID", userID))
		}
	}
	return delivered, nil
}
