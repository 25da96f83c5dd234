package services

import (
	"context"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pedant-server/internal/authz"
	"pedant-server/internal/dto"
	"pedant-server/internal/entities"
	apperrors "pedant-server/pkg/errors"
)

func TestHireEmployee_IdempotentAndReactivates(t *testing.T) {
	f := newFixture(t)
	f.user(1, "Владелец")
	f.user(7, "Анна")
	svc := f.service(1, "042")

	first, err := f.employeeSvc.HireEmployee(context.Background(), 7, svc.ID, 1)
	require.NoError(t, err)
	second, err := f.employeeSvc.HireEmployee(context.Background(), 7, svc.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	all, err := f.employees.FindByPair(context.Background(), 7, svc.ID)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.employeeSvc.UpdateEmployee(as(1), first.ID, dto.UpdateEmployeeDTO{Status: null.StringFrom(entities.EmploymentStatusInactive)})
	require.NoError(t, err)
	assert.Empty(t, f.reload(7).EmployeeServices)

	again, err := f.employeeSvc.HireEmployee(context.Background(), 7, svc.ID, 1)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)
	assert.True(t, again.IsActive())
	assert.Equal(t, authz.HirePermissions(), again.Permissions)
	assert.Equal(t, []uint64{svc.ID}, f.reload(7).EmployeeServices)
}

func TestHireEmployee_Errors(t *testing.T) {
	f := newFixture(t)
	f.user(1, "Владелец")
	f.user(2, "Другой")
	f.user(7, "Анна")
	svc := f.service(1, "042")

	_, err := f.employeeSvc.HireEmployee(context.Background(), 7, svc.ID, 2)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	_, err = f.employeeSvc.HireEmployee(context.Background(), 7, svc.ID, 404)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	_, err = f.employeeSvc.HireEmployee(context.Background(), 404, svc.ID, 1)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestHasPermission(t *testing.T) {
	f := newFixture(t)
	f.user(1, "Владелец")
	f.user(7, "Анна")
	svc := f.service(1, "042")

	ok, err := f.employeeSvc.HasPermission(context.Background(), 1, svc.ID, authz.DeleteOrders)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = f.employeeSvc.HasPermission(context.Background(), 7, svc.ID, authz.ViewOrders)
	require.NoError(t, err)
	assert.False(t, ok)

	employment, err := f.employeeSvc.AddEmployee(as(1), svc.ID, dto.AddEmployeeDTO{UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, authz.DefaultEmployeePermissions(), employment.Permissions)

	ok, err = f.employeeSvc.HasPermission(context.Background(), 7, svc.ID, authz.ViewOrders)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = f.employeeSvc.HasPermission(context.Background(), 7, svc.ID, authz.EditOrders)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = f.employeeSvc.UpdateEmployee(as(1), employment.ID, dto.UpdateEmployeeDTO{Role: null.StringFrom(authz.RoleManager)})
	require.NoError(t, err)
	ok, err = f.employeeSvc.HasPermission(context.Background(), 7, svc.ID, authz.EditOrders)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAddEmployee(t *testing.T) {
	f := newFixture(t)
	f.user(1, "Владелец")
	f.user(7, "Анна")
	f.user(8, "Борис")
	svc := f.service(1, "042")

	_, err := f.employeeSvc.AddEmployee(as(1), svc.ID, dto.AddEmployeeDTO{UserID: 7, Role: authz.RoleOwner})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))

	_, err = f.employeeSvc.AddEmployee(as(8), svc.ID, dto.AddEmployeeDTO{UserID: 7})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	added, err := f.employeeSvc.AddEmployee(as(1), svc.ID, dto.AddEmployeeDTO{UserID: 7, Permissions: []string{authz.ManageEmployees}})
	require.NoError(t, err)
	again, err := f.employeeSvc.AddEmployee(as(1), svc.ID, dto.AddEmployeeDTO{UserID: 7})
	require.NoError(t, err)
	assert.Equal(t, added.ID, again.ID)

	anna := f.reload(7)
	assert.Equal(t, entities.RegistrationEmployee, anna.RegistrationStatus)
	require.NotNil(t, anna.ActiveServiceID)
	assert.Equal(t, svc.ID, *anna.ActiveServiceID)

	// Сотрудник с правом manage_employees сам добавляет коллег.
	_, err = f.employeeSvc.AddEmployee(as(7), svc.ID, dto.AddEmployeeDTO{UserID: 8})
	require.NoError(t, err)
}

func TestOwnerEmploymentProtected(t *testing.T) {
	f := newFixture(t)
	f.user(1, "Владелец")
	svc := f.service(1, "042")

	list, err := f.employeeSvc.ListEmployeesByService(as(1), svc.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	ownerEmployment := list[0]
	assert.Equal(t, authz.RoleOwner, ownerEmployment.Role)
	require.NotNil(t, ownerEmployment.User)

	_, err = f.employeeSvc.UpdateEmployee(as(1), ownerEmployment.ID, dto.UpdateEmployeeDTO{Status: null.StringFrom(entities.EmploymentStatusInactive)})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	err = f.employeeSvc.RemoveEmployee(as(1), ownerEmployment.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestRemoveEmployee(t *testing.T) {
	f := newFixture(t)
	f.user(1, "Владелец")
	f.user(7, "Анна")
	svc := f.service(1, "042")
	employment, err := f.employeeSvc.AddEmployee(as(1), svc.ID, dto.AddEmployeeDTO{UserID: 7})
	require.NoError(t, err)

	require.NoError(t, f.employeeSvc.RemoveEmployee(as(1), employment.ID))

	anna := f.reload(7)
	assert.Empty(t, anna.EmployeeServices)
	assert.Nil(t, anna.ActiveServiceID)

	_, err = f.employeeSvc.ListEmployeesByService(as(7), svc.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	err = f.employeeSvc.RemoveEmployee(as(1), employment.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestListEmployeesByUser(t *testing.T) {
	f := newFixture(t)
	f.user(1, "Владелец")
	f.user(7, "Анна")
	svc := f.service(1, "042")
	_, err := f.employeeSvc.AddEmployee(as(1), svc.ID, dto.AddEmployeeDTO{UserID: 7})
	require.NoError(t, err)

	own, err := f.employeeSvc.ListEmployeesByUser(as(7), 7)
	require.NoError(t, err)
	assert.Len(t, own, 1)

	_, err = f.employeeSvc.ListEmployeesByUser(as(7), 1)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	f.admin(9)
	others, err := f.employeeSvc.ListEmployeesByUser(as(9), 1)
	require.NoError(t, err)
	assert.Len(t, others, 1)
}
