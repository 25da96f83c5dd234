package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pedant-server/internal/entities"
	"pedant-server/pkg/customvalidator"
	apperrors "pedant-server/pkg/errors"
)

func newTestUser(id uint64) *entities.User {
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	return &entities.User{
		ID:                 id,
		FirstName:          "Тест",
		LanguageCode:       "ru",
		Role:               entities.UserRoleUser,
		Status:             entities.UserStatusActive,
		RegistrationStatus: entities.RegistrationUnregistered,
		OwnedServices:      []uint64{},
		EmployeeServices:   []uint64{},
		CreatedAt:          now,
		UpdatedAt:          now,
		LastSeen:           now,
	}
}

func TestUserRepository_CreateFindSave(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(zap.NewNop())
	repo := NewUserRepository(store, customvalidator.New(), zap.NewNop())

	require.NoError(t, repo.CreateUser(ctx, newTestUser(123456789)))

	err := repo.CreateUser(ctx, newTestUser(123456789))
	assert.True(t, apperrors.IsKind(err, apperrors.KindAlreadyExists))

	u, err := repo.FindUser(ctx, 123456789)
	require.NoError(t, err)
	assert.Equal(t, "Тест", u.FirstName)

	u.OwnedServices = append(u.OwnedServices, 4)
	require.NoError(t, repo.SaveUser(ctx, u))

	u, err = repo.FindUser(ctx, 123456789)
	require.NoError(t, err)
	assert.Equal(t, []uint64{4}, u.OwnedServices)

	_, err = repo.FindUser(ctx, 1)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
	assert.Equal(t, "Пользователь 1 не найден", err.Error())
}

func TestUserRepository_ValidatesOnWrite(t *testing.T) {
	repo := NewUserRepository(NewMemoryStore(zap.NewNop()), customvalidator.New(), zap.NewNop())
	u := newTestUser(5)
	u.Role = "superuser"

	err := repo.CreateUser(context.Background(), u)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))
}

func TestEmployeeRepository_FindActive(t *testing.T) {
	ctx := context.Background()
	repo := NewEmployeeRepository(NewMemoryStore(zap.NewNop()), customvalidator.New(), zap.NewNop())

	inactive := &entities.ServiceEmployee{ServiceID: 1, UserID: 2, Role: "employee", Permissions: []string{"view_orders"}, Status: entities.EmploymentStatusInactive}
	require.NoError(t, repo.CreateEmployee(ctx, inactive))

	got, err := repo.FindActive(ctx, 2, 1)
	require.NoError(t, err)
	assert.Nil(t, got)

	active := &entities.ServiceEmployee{ServiceID: 1, UserID: 2, Role: "employee", Permissions: []string{"view_orders"}, Status: entities.EmploymentStatusActive}
	require.NoError(t, repo.CreateEmployee(ctx, active))

	got, err = repo.FindActive(ctx, 2, 1)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, active.ID, got.ID)

	pair, err := repo.FindByPair(ctx, 2, 1)
	require.NoError(t, err)
	assert.Len(t, pair, 2)

	bad := &entities.ServiceEmployee{ServiceID: 1, UserID: 3, Role: "employee", Permissions: []string{"fly"}, Status: entities.EmploymentStatusActive}
	assert.True(t, apperrors.IsKind(repo.CreateEmployee(ctx, bad), apperrors.KindInvalidInput))
}

func TestSettingsRepository_UpsertByUser(t *testing.T) {
	ctx := context.Background()
	repo := NewSettingsRepository(NewMemoryStore(zap.NewNop()), customvalidator.New())

	s, err := repo.FindByUser(ctx, 9)
	require.NoError(t, err)
	assert.Nil(t, s)

	require.NoError(t, repo.SaveSettings(ctx, &entities.UserSettings{UserID: 9, Settings: entities.DefaultSettingsValues()}))
	values := entities.DefaultSettingsValues()
	values.PhotoQuality = "low"
	require.NoError(t, repo.SaveSettings(ctx, &entities.UserSettings{UserID: 9, Settings: values}))

	s, err = repo.FindByUser(ctx, 9)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, uint64(9), s.ID)
	assert.Equal(t, "low", s.Settings.PhotoQuality)
}
