// internal/authz/permissions.go
package authz

// --- ПРАВА СОТРУДНИКА ВНУТРИ СЕРВИСА ---

const (
	CreateOrders    = "create_orders"
	ViewOrders      = "view_orders"
	EditOrders      = "edit_orders"
	DeleteOrders    = "delete_orders"
	ManageEmployees = "manage_employees"
)

// --- РОЛИ СОТРУДНИКА ---

const (
	RoleOwner    = "owner"
	RoleManager  = "manager"
	RoleEmployee = "employee"
)

var knownPermissions = map[string]struct{}{
	CreateOrders:    {},
	ViewOrders:      {},
	EditOrders:      {},
	DeleteOrders:    {},
	ManageEmployees: {},
}

// DefaultEmployeePermissions - права при ручном добавлении сотрудника.
func DefaultEmployeePermissions() []string {
	return []string{CreateOrders, ViewOrders}
}

// HirePermissions - права при найме через очередь.
func HirePermissions() []string {
	return []string{CreateOrders, ViewOrders, EditOrders}
}

// HirePermissionsFor - права при найме через очередь для роли из заявки.
func HirePermissionsFor(role string) []string {
	if role == RoleManager {
		return append(HirePermissions(), ManageEmployees)
	}
	return HirePermissions()
}

// AllPermissions - полный набор, выдаётся владельцу.
func AllPermissions() []string {
	return []string{CreateOrders, ViewOrders, EditOrders, DeleteOrders, ManageEmployees}
}

func IsKnownPermission(p string) bool {
	_, ok := knownPermissions[p]
	return ok
}

func IsKnownRole(role string) bool {
	switch role {
	case RoleOwner, RoleManager, RoleEmployee:
		return true
	}
	return false
}
