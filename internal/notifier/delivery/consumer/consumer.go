package consumer

import (
	"context"
	"sync"
	"time"

	"email-datagen/internal/notifier/config"
	"email-datagen/internal/notifier/service"
	"email-datagen/pkg/common"
	"email-datagen/pkg/logger"
	"email-datagen/pkg/utils"
)

// RedisConsumer drives the notification service from the run-event stream.
type RedisConsumer struct {
	cfg                 *config.Config
	notificationService service.NotificationService
	logger              *logger.Logger
	stopChan            chan struct{}
	stopOnce            sync.Once
	wg                  sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(cfg *config.Config, notificationService service.NotificationService, log *logger.Logger) *RedisConsumer {
	return &RedisConsumer{
		cfg:                 cfg,
		notificationService: notificationService,
		logger:              log,
		stopChan:            make(chan struct{}),
	}
}

// Start prepares the consumer group and begins the read and retry loops.
func (c *RedisConsumer) Start(ctx context.Context) error {
	if err := c.notificationService.Init(ctx); err != nil {
		return err
	}
	c.logger.Info("Redis consumer started")
	c.RegisterStreamHandler(ctx, c.notificationService.ProcessEvents, common.RedisStreamScheduleRunCompleted, c.cfg.Notifier.HandlerTimeout)
	c.RegisterTickerHandler(ctx, c.notificationService.ProcessRetries, c.cfg.Notifier.RetryInterval, c.cfg.Notifier.HandlerTimeout, common.RedisStreamScheduleRunCompleted+"-retry")
	return nil
}

// RegisterStreamHandler runs fn in a loop until the consumer stops.
func (c *RedisConsumer) RegisterStreamHandler(ctx context.Context, fn func(ctx context.Context), streamName string, timeout time.Duration) {
	c.logger.Info("Registering stream handler", logger.Field("stream", streamName))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping")
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			}
		}
	})
}

// RegisterTickerHandler runs fn every interval until the consumer stops.
func (c *RedisConsumer) RegisterTickerHandler(ctx context.Context, fn func(ctx context.Context), interval time.Duration, timeout time.Duration, name string) {
	c.logger.Info("Registering ticker handler",
		logger.Field("name", name),
		logger.Field("interval", interval),
		logger.Field("timeout", timeout))
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				ctxTimeout, cancel := context.WithTimeout(ctx, timeout)
				fn(ctxTimeout)
				cancel()
			case <-ctx.Done():
				c.logger.Info("Ticker handler stopping due to context cancellation", logger.Field("name", name))
				return
			case <-c.stopChan:
				c.logger.Info("Ticker handler stopping", logger.Field("name", name))
				return
			}
		}
	})
}

// Stop gracefully shuts down the consumer.
func (c *RedisConsumer) Stop() {
	c.stopOnce.Do(func() { close(c.stopChan) })
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
