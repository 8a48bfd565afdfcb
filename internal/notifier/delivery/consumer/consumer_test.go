package consumer

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"email-datagen/internal/entity"
	"email-datagen/internal/notifier/config"
	"email-datagen/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingService struct {
	events  atomic.Int32
	retries atomic.Int32
}

func (s *countingService) Init(context.Context) error { return nil }

func (s *countingService) ProcessEvents(ctx context.Context) {
	s.events.Add(1)
	select {
	case <-ctx.Done():
	case <-time.After(5 * time.Millisecond):
	}
}

func (s *countingService) ProcessRetries(context.Context) { s.retries.Add(1) }

func (s *countingService) Notify(context.Context, *entity.RunEvent) error { return nil }

func TestRedisConsumer_RunsHandlersUntilStopped(t *testing.T) {
	svc := &countingService{}
	cfg := &config.Config{Notifier: config.Notifier{HandlerTimeout: time.Second, RetryInterval: 10 * time.Millisecond}}
	c := NewRedisConsumer(cfg, svc, logger.NewNop())

	require.NoError(t, c.Start(context.Background()))
	assert.Eventually(t, func() bool {
		return svc.events.Load() > 2 && svc.retries.Load() > 0
	}, time.Second, 5*time.Millisecond)

	c.Stop()
	c.Stop()
	events := svc.events.Load()
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, events, svc.events.Load())
}

func TestRedisConsumer_StopsOnContextCancel(t *testing.T) {
	svc := &countingService{}
	cfg := &config.Config{Notifier: config.Notifier{HandlerTimeout: time.Second, RetryInterval: time.Hour}}
	c := NewRedisConsumer(cfg, svc, logger.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	require.NoError(t, c.Start(ctx))
	cancel()

	done := make(chan struct{})
	go func() {
		c.Stop()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}
