package dto

import "github.com/aarondl/null/v8"

// CreateOrderDTO - текстовые поля multipart-формы; фото идут отдельными частями "photos".
type CreateOrderDTO struct {
	ServiceID   *uint64 `form:"serviceId" json:"serviceId"`
	OrderNumber string  `form:"orderNumber" json:"orderNumber" validate:"omitempty,order_number"`
	Comment     string  `form:"comment" json:"comment" validate:"max=4000"`
}

type UpdateOrderDTO struct {
	Comment null.String `json:"comment" validate:"omitempty,max=4000"`
	Status  null.String `json:"status" validate:"omitempty,oneof=active completed cancelled"`
}

type OrderFilterDTO struct {
	ServiceID *uint64
	Status    string
}

type NextOrderNumberDTO struct {
	ServiceNumber string `json:"serviceNumber"`
	OrderNumber   string `json:"orderNumber"`
}
