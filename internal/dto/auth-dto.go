package dto

type TelegramAuthDTO struct {
	InitData string `json:"initData"`
	Platform string `json:"platform" validate:"max=32"`
}

type RefreshTokenDTO struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type SessionPingDTO struct {
	SessionID string `json:"sessionId" validate:"required"`
}

type AuthResponseDTO struct {
	AccessToken  string          `json:"accessToken"`
	RefreshToken string          `json:"refreshToken"`
	SessionID    string          `json:"sessionId"`
	User         UserResponseDTO `json:"user"`
}
