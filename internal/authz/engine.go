package authz

import "pedant-server/internal/entities"

// Allows - политика доступа поверх записи о трудоустройстве.
// Нет записи или она неактивна - отказ. Владелец и менеджер могут всё.
// Остальным нужно явное право в списке.
func Allows(employment *entities.ServiceEmployee, permission string) bool {
	if employment == nil || !employment.IsActive() {
		return false
	}
	if employment.Role == RoleOwner || employment.Role == RoleManager {
		return true
	}
	for _, p := range employment.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CanManageEmployees - кто может добавлять, менять и увольнять сотрудников.
func CanManageEmployees(actor *entities.User, employment *entities.ServiceEmployee, serviceID uint64) bool {
	if actor == nil {
		return false
	}
	if actor.IsAdmin() || actor.OwnsService(serviceID) {
		return true
	}
	return Allows(employment, ManageEmployees)
}
