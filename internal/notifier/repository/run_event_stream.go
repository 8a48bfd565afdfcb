package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"email-datagen/internal/entity"
	"email-datagen/pkg/common"

	"github.com/redis/go-redis/v9"
)

// StreamMessage is one entry read from the run-event stream.
type StreamMessage struct {
	ID         string
	Event      *entity.RunEvent
	Deliveries int64
	// DecodeErr is set when the entry could not be decoded; Event is nil then.
	DecodeErr error
}

// RunEventStream reads run events through a consumer group.
type RunEventStream interface {
	EnsureGroup(ctx context.Context) error
	Read(ctx context.Context, count int64, block time.Duration) ([]StreamMessage, error)
	ClaimStale(ctx context.Context, minIdle time.Duration, count int64) ([]StreamMessage, error)
	Ack(ctx context.Context, id string) error
}

// NewRedisRunEventStream creates a RunEventStream over the schedule run-completed stream.
func NewRedisRunEventStream(client *redis.Client) RunEventStream {
	return &redisRunEventStream{
		client:   client,
		stream:   common.RedisStreamScheduleRunCompleted,
		group:    common.RedisStreamGroup,
		consumer: common.RedisStreamConsumer,
	}
}

type redisRunEventStream struct {
	client   *redis.Client
	stream   string
	group    string
	consumer string
}

// EnsureGroup creates the consumer group and the stream if they do not exist yet.
func (r *redisRunEventStream) EnsureGroup(ctx context.Context) error {
	err := r.client.XGroupCreateMkStream(ctx, r.stream, r.group, "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}
	return nil
}

// Read returns new entries for this consumer. An idle block yields no entries and no error.
func (r *redisRunEventStream) Read(ctx context.Context, count int64, block time.Duration) ([]StreamMessage, error) {
	streams, err := r.client.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    r.group,
		Consumer: r.consumer,
		Streams:  []string{r.stream, ">"}, // ">" means only new messages
		Count:    count,
		Block:    block,
	}).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	if len(streams) == 0 {
		return nil, nil
	}

	out := make([]StreamMessage, 0, len(streams[0].Messages))
	for _, m := range streams[0].Messages {
		out = append(out, decode(m, 1))
	}
	return out, nil
}

// ClaimStale takes over entries that were delivered but not acknowledged for at least minIdle.
func (r *redisRunEventStream) ClaimStale(ctx context.Context, minIdle time.Duration, count int64) ([]StreamMessage, error) {
	msgs, _, err := r.client.XAutoClaim(ctx, &redis.XAutoClaimArgs{
		Stream:   r.stream,
		Group:    r.group,
		Consumer: r.consumer + "-retry",
		MinIdle:  minIdle,
		Start:    "0",
		Count:    count,
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to claim pending run events: %w", err)
	}

	out := make([]StreamMessage, 0, len(msgs))
	for _, m := range msgs {
		deliveries := int64(1)
		pending, err := r.client.XPendingExt(ctx, &redis.XPendingExtArgs{
			Stream: r.stream,
			Group:  r.group,
			Start:  m.ID,
			End:    m.ID,
			Count:  1,
		}).Result()
		if err == nil && len(pending) > 0 {
			deliveries = pending[0].RetryCount
		}
		out = append(out, decode(m, deliveries))
	}
	return out, nil
}

// Ack acknowledges and deletes an entry.
func (r *redisRunEventStream) Ack(ctx context.Context, id string) error {
	if err := r.client.XAck(ctx, r.stream, r.group, id).Err(); err != nil {
		return err
	}
	return r.client.XDel(ctx, r.stream, id).Err()
}

func decode(m redis.XMessage, deliveries int64) StreamMessage {
	msg := StreamMessage{ID: m.ID, Deliveries: deliveries}
	raw, ok := m.Values["payload"].(string)
	if !ok {
		msg.DecodeErr = errors.New("field 'payload' not found or not a string in stream message")
		return msg
	}
	var event entity.RunEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		msg.DecodeErr = fmt.Errorf("failed to unmarshal run event: %w", err)
		return msg
	}
	msg.Event = &event
	return msg
}
