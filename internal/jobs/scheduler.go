package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper - то, что периодически закрывает просроченные заявки найма.
type Sweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// sweepTimeout - сколько даётся одному проходу.
const sweepTimeout = 2 * time.Minute

// Scheduler запускает фоновые задачи по cron-расписанию (с секундами, в UTC).
type Scheduler struct {
	cron    *cron.Cron
	sweeper Sweeper
	logger  *zap.Logger
}

func NewScheduler(sweeper Sweeper, logger *zap.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		sweeper: sweeper,
		logger:  logger,
	}
}

// Register добавляет задачу закрытия просроченных заявок. Пустое расписание отключает её.
func (s *Scheduler) Register(hiringSweepSpec string) error {
	if hiringSweepSpec == "" {
		s.logger.Info("Закрытие просроченных заявок по расписанию отключено")
		return nil
	}
	if _, err := s.cron.AddFunc(hiringSweepSpec, s.SweepHiringQueue); err != nil {
		return fmt.Errorf("неверное расписание %q: %w", hiringSweepSpec, err)
	}
	s.logger.Info("Задача зарегистрирована", zap.String("job", "hiring_sweep"), zap.String("spec", hiringSweepSpec))
	return nil
}

// SweepHiringQueue - один проход; ошибки только логируются, следующий запуск повторит.
func (s *Scheduler) SweepHiringQueue() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	n, err := s.sweeper.SweepExpired(ctx)
	if err != nil {
		s.logger.Error("Не удалось закрыть просроченные заявки", zap.Error(err))
		return
	}
	s.logger.Debug("Проход по очереди найма завершён", zap.Int("expired", n))
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info("Планировщик задач запущен", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop ждёт завершения уже запущенных задач.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Планировщик задач остановлен")
}

func (s *Scheduler) Entries() int { return len(s.cron.Entries()) }
