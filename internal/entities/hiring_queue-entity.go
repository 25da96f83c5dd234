package entities

import "time"

const (
	HiringStatusPending        = "pending"
	HiringStatusApproved       = "approved"
	HiringStatusRejected       = "rejected"
	HiringStatusExpired        = "expired"
	HiringStatusWaitingForHire = "waiting_for_hire"

	// HiringQueueTTL - срок жизни заявки с момента сканирования.
	HiringQueueTTL = 24 * time.Hour
)

// QRData - снимок данных кандидата на момент постановки в очередь.
type QRData struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
}

// HiringQueue - заявка кандидата на трудоустройство. Записи не удаляются.
type HiringQueue struct {
	ID              uint64     `json:"id"`
	CandidateUserID uint64     `json:"candidateUserId" validate:"required"`
	EmployerUserID  *uint64    `json:"employerUserId"`
	ServiceID       *uint64    `json:"serviceId"`
	Role            string     `json:"role" validate:"oneof=manager employee"`
	Status          string     `json:"status" validate:"oneof=pending approved rejected expired waiting_for_hire"`
	QRData          *QRData    `json:"qrData"`
	ScannedAt       time.Time  `json:"scannedAt"`
	ProcessedAt     *time.Time `json:"processedAt"`
	ExpiresAt       time.Time  `json:"expiresAt"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

func (h *HiringQueue) GetID() uint64   { return h.ID }
func (h *HiringQueue) SetID(id uint64) { h.ID = id }

// IsOpen - заявку ещё можно одобрить или отклонить.
func (h *HiringQueue) IsOpen() bool {
	return h.Status == HiringStatusPending || h.Status == HiringStatusWaitingForHire
}

// IsExpired - строгое сравнение: в момент now == ExpiresAt заявка ещё жива.
func (h *HiringQueue) IsExpired(now time.Time) bool {
	return now.After(h.ExpiresAt)
}

// IsGeneral - заявка в общей очереди, без назначенного работодателя.
func (h *HiringQueue) IsGeneral() bool {
	return h.EmployerUserID == nil
}
