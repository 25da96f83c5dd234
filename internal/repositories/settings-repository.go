package repositories

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"

	"pedant-server/internal/entities"
	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/utils"
)

type SettingsRepositoryInterface interface {
	// FindByUser возвращает nil без ошибки, если пользователь ещё ничего не сохранял.
	FindByUser(ctx context.Context, userID uint64) (*entities.UserSettings, error)
	SaveSettings(ctx context.Context, settings *entities.UserSettings) error
}

type SettingsRepository struct {
	store    DocumentStore
	settings collection[entities.UserSettings, *entities.UserSettings]
	validate *validator.Validate
}

func NewSettingsRepository(store DocumentStore, validate *validator.Validate) SettingsRepositoryInterface {
	return &SettingsRepository{
		store:    store,
		settings: newCollection[entities.UserSettings](store, validate, CollectionUserSettings, "Настройки %d не найдены"),
		validate: validate,
	}
}

func (r *SettingsRepository) FindByUser(ctx context.Context, userID uint64) (*entities.UserSettings, error) {
	s, err := r.settings.get(ctx, userID)
	if apperrors.IsKind(err, apperrors.KindNotFound) {
		return nil, nil
	}
	return s, err
}

// SaveSettings - upsert по userId.
func (r *SettingsRepository) SaveSettings(ctx context.Context, settings *entities.UserSettings) error {
	if err := r.validate.Struct(settings); err != nil {
		return utils.ValidationError(err)
	}
	settings.ID = settings.UserID
	data, err := json.Marshal(settings)
	if err != nil {
		return err
	}
	_, err = r.store.Upsert(ctx, CollectionUserSettings, "userId", Document{ID: settings.ID, Data: data})
	return err
}
