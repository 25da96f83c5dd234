package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

type AddEmployeeDTO struct {
	UserID      uint64   `json:"userId" validate:"required"`
	Role        string   `json:"role" validate:"omitempty"`
	Permissions []string `json:"permissions" validate:"omitempty,dive,permission"`
}

// UpdateEmployeeDTO: Permissions == nil - права не меняются, пустой массив - права сбрасываются.
type UpdateEmployeeDTO struct {
	Role        null.String `json:"role"`
	Permissions *[]string   `json:"permissions" validate:"omitempty,dive,permission"`
	Status      null.String `json:"status" validate:"omitempty,oneof=active inactive"`
}

type HireEmployeeDTO struct {
	CandidateUserID uint64 `json:"candidateUserId" validate:"required"`
	ServiceID       uint64 `json:"serviceId" validate:"required"`
}

type EmployeeResponseDTO struct {
	ID          uint64        `json:"id"`
	ServiceID   uint64        `json:"serviceId"`
	UserID      uint64        `json:"userId"`
	Role        string        `json:"role"`
	Permissions []string      `json:"permissions"`
	Status      string        `json:"status"`
	InvitedBy   uint64        `json:"invitedBy"`
	JoinedAt    time.Time     `json:"joinedAt"`
	User        *ShortUserDTO `json:"user,omitempty"`
}
