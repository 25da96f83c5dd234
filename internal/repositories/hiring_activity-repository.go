package repositories

import (
	"context"

	"github.com/go-playground/validator/v10"

	"pedant-server/internal/entities"
)

type HiringActivityRepositoryInterface interface {
	CreateActivity(ctx context.Context, activity *entities.HiringActivity) error
	GetByUser(ctx context.Context, userID uint64) ([]entities.HiringActivity, error)
}

type HiringActivityRepository struct {
	activities collection[entities.HiringActivity, *entities.HiringActivity]
}

func NewHiringActivityRepository(store DocumentStore, validate *validator.Validate) HiringActivityRepositoryInterface {
	return &HiringActivityRepository{
		activities: newCollection[entities.HiringActivity](store, validate, CollectionHiringActivities, "Запись журнала %d не найдена"),
	}
}

func (r *HiringActivityRepository) CreateActivity(ctx context.Context, activity *entities.HiringActivity) error {
	return r.activities.insert(ctx, activity)
}

func (r *HiringActivityRepository) GetByUser(ctx context.Context, userID uint64) ([]entities.HiringActivity, error) {
	return r.activities.find(ctx, Fields{"userId": userID})
}
