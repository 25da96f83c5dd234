// Файл: internal/services/settings_service.go
package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"pedant-server/internal/dto"
	"pedant-server/internal/entities"
	"pedant-server/internal/repositories"
	apperrors "pedant-server/pkg/errors"
	"pedant-server/pkg/utils"
)

const (
	maxPincodeAttempts = 5
	pincodeLockout     = 15 * time.Minute
)

type SettingsServiceInterface interface {
	GetSettings(ctx context.Context) (*dto.SettingsResponseDTO, error)
	UpdateSettings(ctx context.Context, values entities.SettingsValues) (*dto.SettingsResponseDTO, error)
	UpdateSetting(ctx context.Context, d dto.UpdateSettingDTO) (*dto.SettingsResponseDTO, error)
	SetPincode(ctx context.Context, pincode string) error
	VerifyPincode(ctx context.Context, pincode string) (bool, error)
	DeletePincode(ctx context.Context) error
}

type SettingsService struct {
	settingsRepo repositories.SettingsRepositoryInterface
	cache        repositories.CacheRepositoryInterface
	txManager    repositories.TxManagerInterface
	validate     *validator.Validate
	clock        utils.Clock
	logger       *zap.Logger
}

func NewSettingsService(
	settingsRepo repositories.SettingsRepositoryInterface,
	cache repositories.CacheRepositoryInterface,
	txManager repositories.TxManagerInterface,
	validate *validator.Validate,
	clock utils.Clock,
	logger *zap.Logger,
) SettingsServiceInterface {
	return &SettingsService{
		settingsRepo: settingsRepo,
		cache:        cache,
		txManager:    txManager,
		validate:     validate,
		clock:        clock,
		logger:       logger,
	}
}

// load возвращает сохранённые настройки или значения по умолчанию.
func (s *SettingsService) load(ctx context.Context, userID uint64) (*entities.UserSettings, error) {
	settings, err := s.settingsRepo.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if settings == nil {
		now := s.clock()
		settings = &entities.UserSettings{
			ID:        userID,
			UserID:    userID,
			Settings:  entities.DefaultSettingsValues(),
			CreatedAt: now,
		}
	}
	return settings, nil
}

func toSettingsResponse(settings *entities.UserSettings) *dto.SettingsResponseDTO {
	return &dto.SettingsResponseDTO{Settings: settings.Settings, HasPincode: settings.PincodeHash != ""}
}

func (s *SettingsService) GetSettings(ctx context.Context) (*dto.SettingsResponseDTO, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}
	settings, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	return toSettingsResponse(settings), nil
}

func (s *SettingsService) UpdateSettings(ctx context.Context, values entities.SettingsValues) (*dto.SettingsResponseDTO, error) {
	return s.modify(ctx, func(settings *entities.UserSettings) error {
		settings.Settings = values
		return nil
	})
}

// UpdateSetting меняет одну настройку по её JSON-ключу.
func (s *SettingsService) UpdateSetting(ctx context.Context, d dto.UpdateSettingDTO) (*dto.SettingsResponseDTO, error) {
	return s.modify(ctx, func(settings *entities.UserSettings) error {
		raw, err := json.Marshal(settings.Settings)
		if err != nil {
			return err
		}
		fields := map[string]json.RawMessage{}
		if err := json.Unmarshal(raw, &fields); err != nil {
			return err
		}
		if _, ok := fields[d.Key]; !ok {
			return apperrors.NewInvalidInputError("Неизвестная настройка: %s", d.Key)
		}
		fields[d.Key] = d.Value

		merged, err := json.Marshal(fields)
		if err != nil {
			return err
		}
		var values entities.SettingsValues
		if err := json.Unmarshal(merged, &values); err != nil {
			return apperrors.NewInvalidInputError("Неверное значение настройки %s", d.Key)
		}
		settings.Settings = values
		return nil
	})
}

func (s *SettingsService) modify(ctx context.Context, fn func(settings *entities.UserSettings) error) (*dto.SettingsResponseDTO, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return nil, err
	}

	var result *entities.UserSettings
	err = s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		settings, err := s.load(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(settings); err != nil {
			return err
		}
		if err := s.validate.Struct(settings.Settings); err != nil {
			return utils.ValidationError(err)
		}
		settings.UpdatedAt = s.clock()
		if err := s.settingsRepo.SaveSettings(ctx, settings); err != nil {
			return err
		}
		result = settings
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toSettingsResponse(result), nil
}

func (s *SettingsService) SetPincode(ctx context.Context, pincode string) error {
	hash, err := utils.HashPincode(pincode)
	if err != nil {
		return fmt.Errorf("не удалось захешировать пин-код: %w", err)
	}
	_, err = s.modify(ctx, func(settings *entities.UserSettings) error {
		settings.PincodeHash = hash
		return nil
	})
	return err
}

// VerifyPincode сверяет пин-код. После maxPincodeAttempts неудач подряд проверка
// блокируется на pincodeLockout.
func (s *SettingsService) VerifyPincode(ctx context.Context, pincode string) (bool, error) {
	userID, err := utils.GetUserIDFromCtx(ctx)
	if err != nil {
		return false, err
	}
	attemptsKey := "pincode_attempts:" + strconv.FormatUint(userID, 10)

	attempts := 0
	if raw, err := s.cache.Get(ctx, attemptsKey); err == nil {
		attempts, _ = strconv.Atoi(raw)
	} else if !apperrors.IsKind(err, apperrors.KindNotFound) {
		return false, err
	}
	if attempts >= maxPincodeAttempts {
		return false, apperrors.NewForbiddenError("Слишком много попыток. Попробуйте через %d минут", int(pincodeLockout.Minutes()))
	}

	settings, err := s.load(ctx, userID)
	if err != nil {
		return false, err
	}
	if settings.PincodeHash == "" {
		return false, apperrors.NewNotFoundError("Пин-код не установлен")
	}

	if utils.ComparePincode(settings.PincodeHash, pincode) == nil {
		if err := s.cache.Del(ctx, attemptsKey); err != nil {
			s.logger.Warn("Не удалось сбросить счётчик попыток", zap.Error(err))
		}
		return true, nil
	}

	if err := s.cache.Set(ctx, attemptsKey, attempts+1, pincodeLockout); err != nil {
		s.logger.Warn("Не удалось записать счётчик попыток", zap.Error(err))
	}
	return false, nil
}

func (s *SettingsService) DeletePincode(ctx context.Context) error {
	_, err := s.modify(ctx, func(settings *entities.UserSettings) error {
		settings.PincodeHash = ""
		return nil
	})
	return err
}
