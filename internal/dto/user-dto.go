package dto

import (
	"time"

	"github.com/aarondl/null/v8"
)

// TelegramProfileDTO - профиль из Telegram, которым создаётся или обновляется пользователь.
type TelegramProfileDTO struct {
	ID           uint64 `json:"id" validate:"required"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Username     string `json:"username"`
	LanguageCode string `json:"language_code"`
	IsPremium    bool   `json:"is_premium"`
	PhotoURL     string `json:"photo_url"`
}

// UpdateUserDTO - частичное обновление. Role и Status меняет только администратор.
type UpdateUserDTO struct {
	FirstName        null.String `json:"first_name" validate:"omitempty,max=255"`
	LastName         null.String `json:"last_name" validate:"omitempty,max=255"`
	Username         null.String `json:"username" validate:"omitempty,max=255"`
	LanguageCode     null.String `json:"language_code"`
	PhotoURL         null.String `json:"photo_url" validate:"omitempty,max=500"`
	OrganizationName null.String `json:"organizationName" validate:"omitempty,max=255"`
	Role             null.String `json:"role" validate:"omitempty,oneof=admin moderator user"`
	Status           null.String `json:"status" validate:"omitempty,oneof=active blocked"`
}

// UpdateUserRoleDTO - роль проверяется в сервисе, чтобы отдать INVALID_INPUT с понятным текстом.
type UpdateUserRoleDTO struct {
	Role string `json:"role" validate:"required"`
}

type SetActiveServiceDTO struct {
	ServiceID *uint64 `json:"serviceId"`
}

type UserResponseDTO struct {
	ID                 uint64    `json:"id"`
	FirstName          string    `json:"first_name"`
	LastName           string    `json:"last_name"`
	Username           string    `json:"username"`
	DisplayName        string    `json:"displayName"`
	LanguageCode       string    `json:"language_code"`
	IsPremium          bool      `json:"is_premium"`
	PhotoURL           string    `json:"photo_url"`
	Role               string    `json:"role"`
	Status             string    `json:"status"`
	RegistrationStatus string    `json:"registrationStatus"`
	OrganizationName   string    `json:"organizationName"`
	Orders             int       `json:"orders"`
	OwnedServices      []uint64  `json:"ownedServices"`
	EmployeeServices   []uint64  `json:"employeeServices"`
	ActiveServiceID    *uint64   `json:"activeServiceId"`
	LastSeen           time.Time `json:"lastSeen"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

type ShortUserDTO struct {
	ID          uint64 `json:"id"`
	DisplayName string `json:"displayName"`
	Username    string `json:"username"`
	PhotoURL    string `json:"photo_url"`
}
