package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (s *countingSweeper) SweepExpired(ctx context.Context) (int, error) {
	s.calls.Add(1)
	return 2, s.err
}

func TestScheduler_Register(t *testing.T) {
	s := NewScheduler(&countingSweeper{}, zap.NewNop())

	require.NoError(t, s.Register(""))
	assert.Zero(t, s.Entries())

	assert.Error(t, s.Register("каждые пять минут"))

	require.NoError(t, s.Register("0 */10 * * * *"))
	assert.Equal(t, 1, s.Entries())
}

func TestScheduler_RunsSweep(t *testing.T) {
	sweeper := &countingSweeper{}
	s := NewScheduler(sweeper, zap.NewNop())
	require.NoError(t, s.Register("* * * * * *"))

	s.Start()
	defer s.Stop()
	assert.Eventually(t, func() bool { return sweeper.calls.Load() > 0 }, 3*time.Second, 50*time.Millisecond)
}

func TestScheduler_SweepErrorIsSwallowed(t *testing.T) {
	sweeper := &countingSweeper{err: errors.New("хранилище недоступно")}
	s := NewScheduler(sweeper, zap.NewNop())

	assert.NotPanics(t, s.SweepHiringQueue)
	assert.Equal(t, int32(1), sweeper.calls.Load())
}
