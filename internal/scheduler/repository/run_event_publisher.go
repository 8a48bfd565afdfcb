package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"email-datagen/internal/entity"
	"email-datagen/pkg/common"
	"email-datagen/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// RunEventPublisher announces finished firings.
type RunEventPublisher interface {
	Publish(ctx context.Context, event *entity.RunEvent) error
}

// NewRedisRunEventPublisher creates a publisher that appends events to the run-completed stream.
func NewRedisRunEventPublisher(client *redis.Client, maxLen int64) RunEventPublisher {
	return &redisRunEventPublisher{client: client, maxLen: maxLen}
}

type redisRunEventPublisher struct {
	client *redis.Client
	maxLen int64
}

// Publish adds the event to the stream.
func (p *redisRunEventPublisher) Publish(ctx context.Context, event *entity.RunEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal run event: %w", err)
	}
	args := &redis.XAddArgs{
		Stream: common.RedisStreamScheduleRunCompleted,
		Values: map[string]interface{}{"payload": payload},
	}
	if p.maxLen > 0 {
		args.MaxLen = p.maxLen
		args.Approx = true
	}
	return p.client.XAdd(ctx, args).Err()
}

// NewLogRunEventPublisher creates a publisher that only logs events. Used when Redis is not configured.
func NewLogRunEventPublisher(log *logger.Logger) RunEventPublisher {
	return &logRunEventPublisher{logger: log}
}

type logRunEventPublisher struct {
	logger *logger.Logger
}

// Publish logs the event.
func (p *logRunEventPublisher) Publish(_ context.Context, event *entity.RunEvent) error {
	p.logger.Info("Schedule run completed",
		logger.StringField("schedule_id", event.ScheduleID),
		logger.StringField("status", string(event.Status)),
		logger.IntField("sent", event.Sent),
		logger.IntField("failed", event.Failed),
		logger.Field("auto_disabled", event.AutoDisabled),
		logger.Field("exhausted", event.Exhausted))
	return nil
}
