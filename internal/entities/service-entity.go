package entities

import "time"

const (
	ServiceStatusActive   = "active"
	ServiceStatusInactive = "inactive"
)

// Service - бизнес (сервисный центр), которым владеет пользователь.
type Service struct {
	ID            uint64    `json:"id"`
	ServiceNumber string    `json:"serviceNumber" validate:"required,service_number"`
	Name          string    `json:"name" validate:"required,max=255"`
	Address       string    `json:"address" validate:"max=500"`
	Status        string    `json:"status" validate:"oneof=active inactive"`
	OwnerID       uint64    `json:"ownerId" validate:"required"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (s *Service) GetID() uint64   { return s.ID }
func (s *Service) SetID(id uint64) { s.ID = id }
