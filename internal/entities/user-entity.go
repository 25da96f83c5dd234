package entities

import (
	"fmt"
	"strings"
	"time"
)

const (
	UserRoleAdmin     = "admin"
	UserRoleModerator = "moderator"
	UserRoleUser      = "user"

	UserStatusActive  = "active"
	UserStatusBlocked = "blocked"

	RegistrationUnregistered   = "unregistered"
	RegistrationRegistered     = "registered"
	RegistrationEmployee       = "employee"
	RegistrationWaitingForHire = "waiting_for_hire"

	DefaultLanguageCode = "ru"
)

var supportedLanguages = map[string]struct{}{"ru": {}, "en": {}, "uk": {}, "kz": {}}

// User - пользователь Telegram. Создаётся при первом обращении и никогда не удаляется.
type User struct {
	ID                 uint64    `json:"id" validate:"required"`
	FirstName          string    `json:"first_name" validate:"max=255"`
	LastName           string    `json:"last_name" validate:"max=255"`
	Username           string    `json:"username" validate:"max=255"`
	LanguageCode       string    `json:"language_code" validate:"oneof=ru en uk kz"`
	IsPremium          bool      `json:"is_premium"`
	PhotoURL           string    `json:"photo_url" validate:"max=500"`
	Role               string    `json:"role" validate:"oneof=admin moderator user"`
	Status             string    `json:"status" validate:"oneof=active blocked"`
	RegistrationStatus string    `json:"registrationStatus" validate:"oneof=unregistered registered employee waiting_for_hire"`
	OrganizationName   string    `json:"organizationName" validate:"max=255"`
	Orders             int       `json:"orders" validate:"min=0"`
	OwnedServices      []uint64  `json:"ownedServices"`
	EmployeeServices   []uint64  `json:"employeeServices"`
	ActiveServiceID    *uint64   `json:"activeServiceId"`
	LastSeen           time.Time `json:"lastSeen"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

func (u *User) GetID() uint64   { return u.ID }
func (u *User) SetID(id uint64) { u.ID = id }

// DisplayName: "Имя Фамилия", иначе username, иначе "User {id}".
func (u *User) DisplayName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name != "" {
		return name
	}
	if u.Username != "" {
		return u.Username
	}
	return fmt.Sprintf("User %d", u.ID)
}

func (u *User) IsAdmin() bool   { return u.Role == UserRoleAdmin }
func (u *User) IsBlocked() bool { return u.Status == UserStatusBlocked }

func (u *User) OwnsService(serviceID uint64) bool {
	for _, id := range u.OwnedServices {
		if id == serviceID {
			return true
		}
	}
	return false
}

func (u *User) WorksAt(serviceID uint64) bool {
	for _, id := range u.EmployeeServices {
		if id == serviceID {
			return true
		}
	}
	return false
}

// NormalizeLanguageCode приводит неподдерживаемый язык к ru.
func NormalizeLanguageCode(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if _, ok := supportedLanguages[code]; ok {
		return code
	}
	return DefaultLanguageCode
}
