package entities

import "time"

const (
	ActivityQueued   = "queued"
	ActivityApproved = "approved"
	ActivityRejected = "rejected"
	ActivityHired    = "hired"
	ActivityExpired  = "expired"
)

// HiringActivity - журнал действий по заявкам найма.
type HiringActivity struct {
	ID           uint64                 `json:"id"`
	UserID       uint64                 `json:"userId" validate:"required"`
	ActivityType string                 `json:"activityType" validate:"required"`
	QueueID      uint64                 `json:"queueId"`
	Data         map[string]interface{} `json:"data,omitempty"`
	Timestamp    time.Time              `json:"timestamp"`
}

func (a *HiringActivity) GetID() uint64   { return a.ID }
func (a *HiringActivity) SetID(id uint64) { a.ID = id }
