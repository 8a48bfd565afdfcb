package service

import (
	"context"
	"fmt"
	"time"

	"email-datagen/internal/entity"
	"email-datagen/internal/notifier/config"
	"email-datagen/internal/notifier/repository"
	"email-datagen/pkg/logger"
	"email-datagen/pkg/telegram"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// NotificationService turns run events into Telegram alerts.
type NotificationService interface {
	Init(ctx context.Context) error
	ProcessEvents(ctx context.Context)
	ProcessRetries(ctx context.Context)
	Notify(ctx context.Context, event *entity.RunEvent) error
}

// NewNotificationService creates a NotificationService.
func NewNotificationService(
	cfg config.Notifier,
	stream repository.RunEventStream,
	bot telegram.Notifier,
	loc *time.Location,
	log *logger.Logger,
) NotificationService {
	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.MessagesPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.MessagesPerMinute)), 1)
	}
	window := cfg.DedupWindow
	if window <= 0 {
		window = time.Hour
	}
	return &notificationService{
		cfg:     cfg,
		stream:  stream,
		bot:     bot,
		loc:     loc,
		log:     log,
		limiter: limiter,
		sent:    cache.New(window, 2*window),
	}
}

type notificationService struct {
	cfg     config.Notifier
	stream  repository.RunEventStream
	bot     telegram.Notifier
	loc     *time.Location
	log     *logger.Logger
	limiter *rate.Limiter
	sent    *cache.Cache
}

// ShouldNotify reports whether an event deserves an alert: any non-success run, an
// auto-disable, or (when enabled) a one-off schedule that completed.
func ShouldNotify(event *entity.RunEvent, notifyExhausted bool) bool {
	if event.AutoDisabled {
		return true
	}
	if event.Status != entity.RunStatusSuccess {
		return true
	}
	return notifyExhausted && event.Exhausted
}

// Init prepares the consumer group.
func (s *notificationService) Init(ctx context.Context) error {
	return s.stream.EnsureGroup(ctx)
}

// ProcessEvents reads and handles one batch of new run events.
func (s *notificationService) ProcessEvents(ctx context.Context) {
	msgs, err := s.stream.Read(ctx, s.cfg.ReadCount, s.cfg.ReadBlock)
	if err != nil {
		// Cancellation and deadline are expected during shutdown and idle periods.
		if ctx.Err() != nil {
			return
		}
		s.log.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}

	for _, msg := range msgs {
		s.handle(ctx, msg)
	}
}

// ProcessRetries re-handles events that were delivered but never acknowledged.
func (s *notificationService) ProcessRetries(ctx context.Context) {
	msgs, err := s.stream.ClaimStale(ctx, s.cfg.MaxIdleDuration, s.cfg.ReadCount)
	if err != nil {
		s.log.Error("Failed to claim pending run events", logger.ErrorField(err))
		return
	}
	if len(msgs) == 0 {
		s.log.Debug("Retry no pending messages found")
		return
	}

	for _, msg := range msgs {
		if msg.Event != nil && s.cfg.MaxRetry > 0 && msg.Deliveries > int64(s.cfg.MaxRetry) {
			s.log.Error("Run event retry count exceeded",
				logger.StringField("message_id", msg.ID),
				logger.StringField("schedule_id", msg.Event.ScheduleID),
				logger.IntField("retry_count", int(msg.Deliveries)),
				logger.IntField("max_retry", s.cfg.MaxRetry))
			s.ack(ctx, msg.ID)
			continue
		}
		s.handle(ctx, msg)
	}
}

func (s *notificationService) handle(ctx context.Context, msg repository.StreamMessage) {
	if msg.DecodeErr != nil {
		s.log.Error("Dropping malformed run event", logger.ErrorField(msg.DecodeErr), logger.StringField("message_id", msg.ID))
		s.ack(ctx, msg.ID)
		return
	}

	if err := s.Notify(ctx, msg.Event); err != nil {
		// Left pending; ProcessRetries picks it up after MaxIdleDuration.
		s.log.Error("Failed to send run alert",
			logger.ErrorField(err),
			logger.StringField("message_id", msg.ID),
			logger.StringField("schedule_id", msg.Event.ScheduleID))
		return
	}
	s.ack(ctx, msg.ID)
}

func (s *notificationService) ack(ctx context.Context, id string) {
	if err := s.stream.Ack(ctx, id); err != nil {
		s.log.Error("Failed to acknowledge run event", logger.ErrorField(err), logger.StringField("message_id", id))
	}
}

// Notify sends an alert for event if it deserves one. An alert for the same firing and
// outcome is sent at most once per dedup window.
func (s *notificationService) Notify(ctx context.Context, event *entity.RunEvent) error {
	if !ShouldNotify(event, s.cfg.NotifyExhausted) {
		return nil
	}

	key := fmt.Sprintf("%s|%d|%s|%t", event.ScheduleID, event.OccurrenceAt.Unix(), event.Status, event.AutoDisabled)
	if err := s.sent.Add(key, struct{}{}, cache.DefaultExpiration); err != nil {
		s.log.Debug("Duplicate run alert suppressed", logger.StringField("schedule_id", event.ScheduleID))
		return nil
	}

	if err := s.limiter.Wait(ctx); err != nil {
		s.sent.Delete(key)
		return fmt.Errorf("waiting for telegram slot: %w", err)
	}

	if err := s.bot.SendMessage(telegram.FormatRunEventForTelegram(event, s.loc)); err != nil {
		s.sent.Delete(key)
		return err
	}

	s.log.Info("Run alert sent",
		logger.StringField("schedule_id", event.ScheduleID),
		logger.StringField("status", string(event.Status)),
		logger.Field("auto_disabled", event.AutoDisabled),
		logger.Field("exhausted", event.Exhausted))
	return nil
}
