package dto

import (
	"encoding/json"

	"pedant-server/internal/entities"
)

type SettingsResponseDTO struct {
	Settings   entities.SettingsValues `json:"settings"`
	HasPincode bool                    `json:"hasPincode"`
}

// UpdateSettingDTO - изменение одной настройки по ключу JSON.
type UpdateSettingDTO struct {
	Key   string          `json:"key" validate:"required"`
	Value json.RawMessage `json:"value" validate:"required"`
}

type PincodeDTO struct {
	Pincode string `json:"pincode" validate:"required,pincode"`
}
