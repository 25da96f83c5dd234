package repositories

import (
	"context"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"pedant-server/internal/entities"
)

type HiringQueueRepositoryInterface interface {
	FindEntry(ctx context.Context, id uint64) (*entities.HiringQueue, error)
	GetEntries(ctx context.Context) ([]entities.HiringQueue, error)
	GetByCandidate(ctx context.Context, candidateUserID uint64) ([]entities.HiringQueue, error)
	CreateEntry(ctx context.Context, entry *entities.HiringQueue) error
	SaveEntry(ctx context.Context, entry *entities.HiringQueue) error
}

type HiringQueueRepository struct {
	entries collection[entities.HiringQueue, *entities.HiringQueue]
	logger  *zap.Logger
}

func NewHiringQueueRepository(store DocumentStore, validate *validator.Validate, logger *zap.Logger) HiringQueueRepositoryInterface {
	return &HiringQueueRepository{
		entries: newCollection[entities.HiringQueue](store, validate, CollectionHiringQueue, "Заявка %d не найдена"),
		logger:  logger,
	}
}

func (r *HiringQueueRepository) FindEntry(ctx context.Context, id uint64) (*entities.HiringQueue, error) {
	return r.entries.get(ctx, id)
}

func (r *HiringQueueRepository) GetEntries(ctx context.Context) ([]entities.HiringQueue, error) {
	return r.entries.list(ctx)
}

func (r *HiringQueueRepository) GetByCandidate(ctx context.Context, candidateUserID uint64) ([]entities.HiringQueue, error) {
	return r.entries.find(ctx, Fields{"candidateUserId": candidateUserID})
}

func (r *HiringQueueRepository) CreateEntry(ctx context.Context, entry *entities.HiringQueue) error {
	return r.entries.insert(ctx, entry)
}

func (r *HiringQueueRepository) SaveEntry(ctx context.Context, entry *entities.HiringQueue) error {
	return r.entries.save(ctx, entry)
}
