package entities

import "time"

type SettingsValues struct {
	Language       string `json:"language" validate:"oneof=auto ru en"`
	AutoLock       bool   `json:"autoLock"`
	AutoCleanup    bool   `json:"autoCleanup"`
	CacheLimit     int    `json:"cacheLimit" validate:"min=10,max=10000"`
	Notifications  bool   `json:"notifications"`
	Vibration      bool   `json:"vibration"`
	Sounds         bool   `json:"sounds"`
	PhotosPerPage  int    `json:"photosPerPage" validate:"min=1,max=200"`
	AutoLoadPhotos bool   `json:"autoLoadPhotos"`
	PhotoQuality   string `json:"photoQuality" validate:"oneof=low medium high"`
	DebugMode      bool   `json:"debugMode"`
	Analytics      bool   `json:"analytics"`
}

// UserSettings - настройки WebApp. ID совпадает с ID пользователя.
// Хеш пин-кода хранится рядом, но наружу не отдаётся.
type UserSettings struct {
	ID          uint64         `json:"id"`
	UserID      uint64         `json:"userId" validate:"required"`
	Settings    SettingsValues `json:"settings"`
	PincodeHash string         `json:"pincodeHash,omitempty"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

func (s *UserSettings) GetID() uint64   { return s.ID }
func (s *UserSettings) SetID(id uint64) { s.ID = id }

func DefaultSettingsValues() SettingsValues {
	return SettingsValues{
		Language:       "auto",
		AutoLock:       false,
		AutoCleanup:    true,
		CacheLimit:     100,
		Notifications:  true,
		Vibration:      true,
		Sounds:         true,
		PhotosPerPage:  20,
		AutoLoadPhotos: true,
		PhotoQuality:   "high",
	}
}
