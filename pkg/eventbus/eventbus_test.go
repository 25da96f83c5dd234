package eventbus

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type pinged struct{}

func (pinged) Name() string { return "test.pinged" }

func TestPublish_CallsEverySubscriber(t *testing.T) {
	bus := New(zap.NewNop())
	var calls int32
	for i := 0; i < 3; i++ {
		bus.Subscribe("test.pinged", func(ctx context.Context, e Event) error {
			atomic.AddInt32(&calls, 1)
			return nil
		})
	}
	bus.Subscribe("test.other", func(ctx context.Context, e Event) error {
		t.Error("чужое событие")
		return nil
	})

	bus.Publish(context.Background(), pinged{})
	bus.Wait()
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPublish_ListenerFailureIsContained(t *testing.T) {
	bus := New(zap.NewNop())
	var ok int32
	bus.Subscribe("test.pinged", func(ctx context.Context, e Event) error { return errors.New("boom") })
	bus.Subscribe("test.pinged", func(ctx context.Context, e Event) error { panic("boom") })
	bus.Subscribe("test.pinged", func(ctx context.Context, e Event) error {
		atomic.StoreInt32(&ok, 1)
		return nil
	})

	bus.Publish(context.Background(), pinged{})
	bus.Wait()
	assert.Equal(t, int32(1), atomic.LoadInt32(&ok))
}

func TestPublish_NilBus(t *testing.T) {
	var bus *Bus
	assert.NotPanics(t, func() { bus.Publish(context.Background(), pinged{}) })
}
