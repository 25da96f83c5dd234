package entities

import "time"

const (
	OrderStatusActive    = "active"
	OrderStatusCompleted = "completed"
	OrderStatusCancelled = "cancelled"
)

type OrderPhoto struct {
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
	Mimetype string `json:"mimetype"`
	Path     string `json:"path"`
}

// Order - заказ-наряд. OrderNumber уникален по полной строке.
type Order struct {
	ID          uint64       `json:"id"`
	ServiceID   *uint64      `json:"serviceId"`
	OrderNumber string       `json:"orderNumber" validate:"required,max=64"`
	CreatedByID uint64       `json:"created_by_id" validate:"required"`
	CreatedBy   string       `json:"created_by" validate:"max=255"`
	Comment     string       `json:"comment" validate:"max=4000"`
	Photos      []OrderPhoto `json:"photos"`
	PhotosCount int          `json:"photos_count"`
	Status      string       `json:"status" validate:"oneof=active completed cancelled"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

func (o *Order) GetID() uint64   { return o.ID }
func (o *Order) SetID(id uint64) { o.ID = id }

func (o *Order) InService(serviceID uint64) bool {
	return o.ServiceID != nil && *o.ServiceID == serviceID
}
