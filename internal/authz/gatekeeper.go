package authz

import "pedant-server/internal/entities"

// OrderAction - действие над заказом.
type OrderAction int

const (
	OrderView OrderAction = iota
	OrderEdit
	OrderDelete
)

func (a OrderAction) permission() string {
	switch a {
	case OrderEdit:
		return EditOrders
	case OrderDelete:
		return DeleteOrders
	default:
		return ViewOrders
	}
}

// CanAccessOrder: автор всегда работает со своим заказом, админ - с любым,
// остальным нужно соответствующее право в сервисе заказа.
func CanAccessOrder(actor *entities.User, employment *entities.ServiceEmployee, order *entities.Order, action OrderAction) bool {
	if actor == nil || order == nil {
		return false
	}
	if actor.IsAdmin() || order.CreatedByID == actor.ID {
		return true
	}
	if order.ServiceID == nil {
		return false
	}
	if employment == nil || employment.ServiceID != *order.ServiceID || employment.UserID != actor.ID {
		return false
	}
	return Allows(employment, action.permission())
}
