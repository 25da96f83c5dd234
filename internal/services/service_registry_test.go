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

func TestCreateService(t *testing.T) {
	f := newFixture(t)
	f.user(1, "Владелец")

	svc := f.service(1, "042")
	assert.Equal(t, uint64(1), svc.OwnerID)
	assert.Equal(t, entities.ServiceStatusActive, svc.Status)

	owner := f.reload(1)
	assert.Equal(t, []uint64{svc.ID}, owner.OwnedServices)
	assert.Equal(t, entities.RegistrationRegistered, owner.RegistrationStatus)
	require.NotNil(t, owner.ActiveServiceID)
	assert.Equal(t, svc.ID, *owner.ActiveServiceID)

	employment, err := f.employees.FindActive(context.Background(), 1, svc.ID)
	require.NoError(t, err)
	require.NotNil(t, employment)
	assert.Equal(t, authz.RoleOwner, employment.Role)
	assert.Equal(t, authz.AllPermissions(), employment.Permissions)

	_, err = f.registry.CreateService(as(1), dto.CreateServiceDTO{ServiceNumber: "042", Name: "Дубль"})
	assert.True(t, apperrors.IsKind(err, apperrors.KindAlreadyExists))
}

func TestCreateService_OwnerOnlyByAdmin(t *testing.T) {
	f := newFixture(t)
	f.user(1, "Пользователь")
	f.user(2, "Будущий владелец")
	f.admin(9)

	owner := uint64(2)
	_, err := f.registry.CreateService(as(1), dto.CreateServiceDTO{ServiceNumber: "1", Name: "Мастерская", OwnerID: &owner})
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	svc, err := f.registry.CreateService(as(9), dto.CreateServiceDTO{ServiceNumber: "1", Name: "Мастерская", OwnerID: &owner})
	require.NoError(t, err)
	assert.Equal(t, owner, svc.OwnerID)
	assert.Equal(t, []uint64{svc.ID}, f.reload(2).OwnedServices)
	assert.Empty(t, f.reload(9).OwnedServices)
}

func TestListServices_Visibility(t *testing.T) {
	f := newFixture(t)
	f.user(1, "Владелец А")
	f.user(2, "Владелец Б")
	f.user(7, "Анна")
	f.admin(9)
	a := f.service(1, "100")
	b := f.service(2, "200")
	_, err := f.employeeSvc.AddEmployee(as(2), b.ID, dto.AddEmployeeDTO{UserID: 7})
	require.NoError(t, err)

	list, err := f.registry.ListServices(as(1))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, a.ID, list[0].ID)

	list, err = f.registry.ListServices(as(7))
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, b.ID, list[0].ID)

	list, err = f.registry.ListServices(as(9))
	require.NoError(t, err)
	assert.Len(t, list, 2)

	_, err = f.registry.ListServicesByOwner(as(7), 2)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))
}

func TestUpdateService(t *testing.T) {
	f := newFixture(t)
	f.user(1, "Владелец")
	f.user(2, "Чужой")
	svc := f.service(1, "042")

	_, err := f.registry.UpdateService(as(2), svc.ID, dto.UpdateServiceDTO{Name: null.StringFrom("Захват")})
	assert.ErrorIs(t, err, apperrors.ErrNotServiceOwner)

	updated, err := f.registry.UpdateService(as(1), svc.ID, dto.UpdateServiceDTO{Address: null.StringFrom("ул. Ленина, 1")})
	require.NoError(t, err)
	assert.Equal(t, "ул. Ленина, 1", updated.Address)
	assert.Equal(t, svc.Name, updated.Name)
}

func TestDeleteService_Cascade(t *testing.T) {
	f := newFixture(t)
	f.user(1, "Владелец")
	f.user(7, "Анна")
	svc := f.service(1, "042")
	keep := f.service(1, "043")
	_, err := f.employeeSvc.HireEmployee(context.Background(), 7, svc.ID, 1)
	require.NoError(t, err)

	err = f.registry.DeleteService(as(7), svc.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	require.NoError(t, f.registry.DeleteService(as(1), svc.ID))

	_, err = f.services.FindService(context.Background(), svc.ID)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	employments, err := f.employees.GetByService(context.Background(), svc.ID)
	require.NoError(t, err)
	assert.Empty(t, employments)

	owner := f.reload(1)
	assert.Equal(t, []uint64{keep.ID}, owner.OwnedServices)
	assert.Nil(t, owner.ActiveServiceID)

	anna := f.reload(7)
	assert.Empty(t, anna.EmployeeServices)
	assert.Nil(t, anna.ActiveServiceID)
}
