package services

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"pedant-server/internal/dto"
	"pedant-server/internal/entities"
	"pedant-server/pkg/customvalidator"
	apperrors "pedant-server/pkg/errors"
)

func newSettings(t *testing.T, f *fixture) SettingsServiceInterface {
	t.Helper()
	return NewSettingsService(f.settings, newCache(t), f.tx, customvalidator.New(), f.clock, zap.NewNop())
}

func TestSettings_DefaultsAndUpdate(t *testing.T) {
	f := newFixture(t)
	svc := newSettings(t, f)

	got, err := svc.GetSettings(as(1))
	require.NoError(t, err)
	assert.Equal(t, entities.DefaultSettingsValues(), got.Settings)
	assert.False(t, got.HasPincode)

	got, err = svc.UpdateSetting(as(1), dto.UpdateSettingDTO{Key: "photosPerPage", Value: json.RawMessage(`50`)})
	require.NoError(t, err)
	assert.Equal(t, 50, got.Settings.PhotosPerPage)
	assert.True(t, got.Settings.Sounds)

	_, err = svc.UpdateSetting(as(1), dto.UpdateSettingDTO{Key: "theme", Value: json.RawMessage(`"dark"`)})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))

	_, err = svc.UpdateSetting(as(1), dto.UpdateSettingDTO{Key: "photosPerPage", Value: json.RawMessage(`"много"`)})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))

	_, err = svc.UpdateSetting(as(1), dto.UpdateSettingDTO{Key: "photoQuality", Value: json.RawMessage(`"ultra"`)})
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidInput))

	values := entities.DefaultSettingsValues()
	values.Language = "en"
	got, err = svc.UpdateSettings(as(1), values)
	require.NoError(t, err)
	assert.Equal(t, "en", got.Settings.Language)
	assert.Equal(t, 20, got.Settings.PhotosPerPage)

	other, err := svc.GetSettings(as(2))
	require.NoError(t, err)
	assert.Equal(t, "auto", other.Settings.Language)
}

func TestSettings_PincodeLockout(t *testing.T) {
	f := newFixture(t)
	svc := newSettings(t, f)

	_, err := svc.VerifyPincode(as(1), "1234")
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	require.NoError(t, svc.SetPincode(as(1), "1234"))
	got, err := svc.GetSettings(as(1))
	require.NoError(t, err)
	assert.True(t, got.HasPincode)

	ok, err := svc.VerifyPincode(as(1), "1234")
	require.NoError(t, err)
	assert.True(t, ok)

	for i := 0; i < maxPincodeAttempts; i++ {
		ok, err = svc.VerifyPincode(as(1), "0000")
		require.NoError(t, err)
		assert.False(t, ok)
	}
	_, err = svc.VerifyPincode(as(1), "1234")
	assert.True(t, apperrors.IsKind(err, apperrors.KindForbidden))

	require.NoError(t, svc.DeletePincode(as(1)))
	got, err = svc.GetSettings(as(1))
	require.NoError(t, err)
	assert.False(t, got.HasPincode)
}
