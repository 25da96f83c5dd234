package entities

import "time"

const (
	EmploymentStatusActive   = "active"
	EmploymentStatusInactive = "inactive"
)

// ServiceEmployee - запись о трудоустройстве пользователя в сервисе.
// Для пары (UserID, ServiceID) активной может быть не больше одной записи.
type ServiceEmployee struct {
	ID          uint64    `json:"id"`
	ServiceID   uint64    `json:"serviceId" validate:"required"`
	UserID      uint64    `json:"userId" validate:"required"`
	Role        string    `json:"role" validate:"oneof=owner manager employee"`
	Permissions []string  `json:"permissions" validate:"dive,permission"`
	Status      string    `json:"status" validate:"oneof=active inactive"`
	InvitedBy   uint64    `json:"invitedBy"`
	JoinedAt    time.Time `json:"joinedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (e *ServiceEmployee) GetID() uint64   { return e.ID }
func (e *ServiceEmployee) SetID(id uint64) { e.ID = id }

func (e *ServiceEmployee) IsActive() bool { return e.Status == EmploymentStatusActive }
