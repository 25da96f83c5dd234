package dto

import "github.com/aarondl/null/v8"

type CreateServiceDTO struct {
	ServiceNumber string `json:"serviceNumber" validate:"required,service_number"`
	Name          string `json:"name" validate:"required,max=255"`
	Address       string `json:"address" validate:"max=500"`
	// OwnerID - только для администратора; по умолчанию владелец - автор запроса.
	OwnerID *uint64 `json:"ownerId"`
}

type UpdateServiceDTO struct {
	Name    null.String `json:"name" validate:"omitempty,max=255"`
	Address null.String `json:"address" validate:"omitempty,max=500"`
	Status  null.String `json:"status" validate:"omitempty,oneof=active inactive"`
}
