package websocket

import "time"

// Типы сообщений, которые получает WebApp.
const (
	MessageQueueUpdated  = "hiring.queue_updated"
	MessageApplication   = "hiring.application_updated"
	MessageEmployeeHired = "employee.hired"
)

// Envelope - конверт сообщения: по Type фронтенд решает, что обновить.
type Envelope struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}
