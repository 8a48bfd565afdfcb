package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"email-datagen/internal/entity"
	"email-datagen/internal/scheduler/config"
	"email-datagen/internal/scheduler/repository"
	"email-datagen/pkg/common"
	"email-datagen/pkg/lease"
	"email-datagen/pkg/logger"
	"email-datagen/pkg/utils"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// maxConflictRetries bounds how often an outcome write is re-applied after a version conflict.
const maxConflictRetries = 3

// Dispatcher sends the emails of one firing.
//
// A returned error means the send could not be performed at all. A result with Success false
// means the sender answered but reported failure.
type Dispatcher interface {
	Dispatch(ctx context.Context, schedule *entity.Schedule) (*entity.DispatchResult, error)
}

// TickReport summarizes one tick.
type TickReport struct {
	Due      int `json:"due"`
	Fired    int `json:"fired"`
	Failed   int `json:"failed"`
	Skipped  int `json:"skipped"`
	Repaired int `json:"repaired"`
}

// SchedulerService defines the interface for the scheduling engine.
type SchedulerService interface {
	// Start runs the polling loop until ctx is canceled.
	Start(ctx context.Context) error
	// Tick fires every schedule due at now and waits for those firings to finish.
	Tick(ctx context.Context, now time.Time) (*TickReport, error)
}

// NewSchedulerService creates a new scheduler service.
func NewSchedulerService(
	scheduleRepo repository.ScheduleRepository,
	runRepo repository.ScheduleRunRepository,
	dispatcher Dispatcher,
	publisher repository.RunEventPublisher,
	locker lease.Locker,
	calculator *NextRunCalculator,
	clock utils.Clock,
	log *logger.Logger,
	cfg config.Scheduler,
) SchedulerService {
	if cfg.MaxConcurrentDispatches < 1 {
		cfg.MaxConcurrentDispatches = 1
	}
	if cfg.LeaseTTL <= 0 {
		cfg.LeaseTTL = 10 * time.Minute
	}
	if cfg.PollingInterval <= 0 {
		cfg.PollingInterval = 30 * time.Second
	}
	return &schedulerService{
		scheduleRepo: scheduleRepo,
		runRepo:      runRepo,
		dispatcher:   dispatcher,
		publisher:    publisher,
		locker:       locker,
		calculator:   calculator,
		clock:        clock,
		logger:       log,
		cfg:          cfg,
	}
}

type schedulerService struct {
	scheduleRepo repository.ScheduleRepository
	runRepo      repository.ScheduleRunRepository
	dispatcher   Dispatcher
	publisher    repository.RunEventPublisher
	locker       lease.Locker
	calculator   *NextRunCalculator
	clock        utils.Clock
	logger       *logger.Logger
	cfg          config.Scheduler

	inflight sync.Map
}

type fireOutcome int

const (
	outcomeSkipped fireOutcome = iota
	outcomeFired
	outcomeFailed
)

// Start begins the periodic tick loop. Ticks may overlap; per-schedule exclusion keeps that safe.
func (s *schedulerService) Start(ctx context.Context) error {
	cronLog := &cronLogger{logger: s.logger}
	c := cron.New(
		cron.WithLocation(time.UTC),
		cron.WithLogger(cronLog),
		cron.WithChain(cron.Recover(cronLog)),
	)
	spec := fmt.Sprintf("@every %s", s.cfg.PollingInterval)
	if _, err := c.AddFunc(spec, func() { s.runTick(ctx) }); err != nil {
		return fmt.Errorf("failed to register tick: %w", err)
	}

	s.logger.Info("Scheduler service started",
		logger.StringField("polling_interval", s.cfg.PollingInterval.String()),
		logger.StringField("time_zone", s.calculator.Location().String()))
	c.Start()
	utils.GoSafe(func() { s.runTick(ctx) })

	<-ctx.Done()
	s.logger.Info("Scheduler service stopping")
	<-c.Stop().Done()
	return nil
}

func (s *schedulerService) runTick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if _, err := s.Tick(ctx, s.clock.Now()); err != nil {
		s.logger.Error("Tick skipped", logger.ErrorField(err))
	}
}

// Tick finds and fires due schedules. A store failure while scanning aborts the tick with
// ErrStoreUnavailable; failures of individual schedules never do.
func (s *schedulerService) Tick(ctx context.Context, now time.Time) (*TickReport, error) {
	now = now.UTC()
	report := &TickReport{}

	repaired, err := s.repairMissingNextRuns(ctx, now)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	report.Repaired = repaired

	due, err := s.scheduleRepo.FindDue(ctx, now)
	if err != nil {
		return report, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	report.Due = len(due)

	var mu sync.Mutex
	g := new(errgroup.Group)
	g.SetLimit(s.cfg.MaxConcurrentDispatches)
	for i := range due {
		schedule := due[i]
		g.Go(func() error {
			outcome := s.fire(ctx, &schedule, now)
			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case outcomeFired:
				report.Fired++
			case outcomeFailed:
				report.Fired++
				report.Failed++
			default:
				report.Skipped++
			}
			return nil
		})
	}
	_ = g.Wait()

	fields := []zap.Field{
		logger.IntField("due", report.Due),
		logger.IntField("fired", report.Fired),
		logger.IntField("failed", report.Failed),
		logger.IntField("skipped", report.Skipped),
		logger.IntField("repaired", report.Repaired),
	}
	if report.Due > 0 || report.Repaired > 0 {
		s.logger.Info("Tick completed", fields...)
	} else {
		s.logger.Debug("Tick completed", fields...)
	}
	return report, nil
}

// repairMissingNextRuns gives enabled schedules without a next run one, computed from now.
// Repaired schedules are not fired in the same tick.
func (s *schedulerService) repairMissingNextRuns(ctx context.Context, now time.Time) (int, error) {
	schedules, err := s.scheduleRepo.FindMissingNextRun(ctx)
	if err != nil {
		return 0, err
	}

	repaired := 0
	for i := range schedules {
		schedule := &schedules[i]
		next, ok, err := s.calculator.Next(schedule, now)
		if err != nil {
			s.logger.Warn("Cannot compute next run", logger.StringField("schedule_id", schedule.ID), logger.ErrorField(err))
			continue
		}
		if !ok {
			markExhausted(schedule)
		} else {
			schedule.NextRunAt = &next
		}
		if err := s.scheduleRepo.Update(ctx, schedule); err != nil {
			s.logger.Warn("Failed to repair next run", logger.StringField("schedule_id", schedule.ID), logger.ErrorField(err))
			continue
		}
		repaired++
	}
	return repaired, nil
}

// fire runs one due schedule through the exclusion chain: an in-process guard, a lease, a
// fresh read, and a durable claim of the occurrence. Only then is the dispatcher called.
func (s *schedulerService) fire(ctx context.Context, due *entity.Schedule, now time.Time) fireOutcome {
	log := s.logger.With(logger.StringField("schedule_id", due.ID))

	if _, busy := s.inflight.LoadOrStore(due.ID, struct{}{}); busy {
		log.Debug("Schedule already firing in this process")
		return outcomeSkipped
	}
	defer s.inflight.Delete(due.ID)

	key := common.LeaseKeyPrefix + due.ID
	token, ok, err := s.locker.Acquire(ctx, key, s.cfg.LeaseTTL)
	if err != nil {
		log.Error("Failed to acquire firing lease", logger.ErrorField(err))
		return outcomeSkipped
	}
	if !ok {
		log.Debug("Firing lease held elsewhere")
		return outcomeSkipped
	}
	defer func() {
		if err := s.locker.Release(context.WithoutCancel(ctx), key, token); err != nil {
			log.Warn("Failed to release firing lease", logger.ErrorField(err))
		}
	}()

	current, err := s.scheduleRepo.FindByID(ctx, due.ID)
	if err != nil {
		if !errors.Is(err, repository.ErrScheduleNotFound) {
			log.Error("Failed to reload schedule", logger.ErrorField(err))
		}
		return outcomeSkipped
	}
	if !current.IsDue(now) || !sameInstant(current.NextRunAt, due.NextRunAt) {
		log.Debug("Schedule no longer due")
		return outcomeSkipped
	}
	occurrence := current.NextRunAt.UTC()

	run := &entity.ScheduleRun{
		ScheduleID:   current.ID,
		OccurrenceAt: occurrence,
		EmailType:    current.EmailType,
		ConfigName:   current.ConfigName,
		Status:       entity.RunStatusRunning,
		StartedAt:    s.clock.Now(),
	}
	if err := s.runRepo.Create(ctx, run); err != nil {
		if errors.Is(err, repository.ErrDuplicateOccurrence) {
			log.Warn("Occurrence already fired, advancing next run", logger.StringField("occurrence_utc", utils.FormatUTC(occurrence)))
			s.persist(ctx, current, func(sc *entity.Schedule) {
				s.advance(sc, occurrence, now)
			})
			return outcomeSkipped
		}
		log.Error("Failed to record run", logger.ErrorField(err))
		return outcomeSkipped
	}

	// The occurrence is claimed, so the send runs to completion even during shutdown. The
	// sender's per-attempt timeout bounds it.
	result, dispatchErr := s.dispatch(context.WithoutCancel(ctx), current)
	status, message := classify(result, dispatchErr)
	if status != entity.RunStatusSuccess {
		log.Warn("Dispatch failed",
			logger.StringField("email_type", string(current.EmailType)),
			logger.StringField("status", string(status)),
			logger.StringField("error", message))
	} else {
		log.Info("Dispatch succeeded",
			logger.StringField("email_type", string(current.EmailType)),
			logger.IntField("sent", result.Sent))
	}

	startedAt := run.StartedAt
	autoDisabled := false
	updated := s.persist(ctx, current, func(sc *entity.Schedule) {
		autoDisabled = s.applyOutcome(sc, occurrence, startedAt, status, message, now)
	})

	s.completeRun(ctx, run, status, result, message)
	s.publish(ctx, updated, run, autoDisabled)

	if status != entity.RunStatusSuccess {
		return outcomeFailed
	}
	return outcomeFired
}

func (s *schedulerService) dispatch(ctx context.Context, schedule *entity.Schedule) (result *entity.DispatchResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			result, err = nil, fmt.Errorf("dispatch panicked: %v", r)
		}
	}()
	return s.dispatcher.Dispatch(ctx, schedule)
}

func classify(result *entity.DispatchResult, err error) (entity.RunStatus, string) {
	switch {
	case err != nil:
		return entity.RunStatusError, err.Error()
	case result == nil:
		return entity.RunStatusError, "dispatcher returned no result"
	case result.Success:
		return entity.RunStatusSuccess, ""
	case len(result.Errors) > 0:
		return entity.RunStatusFailure, strings.Join(result.Errors, "; ")
	default:
		return entity.RunStatusFailure, fmt.Sprintf("send failed: %d of %d messages failed", result.Failed, result.Sent+result.Failed)
	}
}

// persist applies mutate to schedule and writes it, reloading and re-applying on version
// conflicts. It returns the last state it saw.
func (s *schedulerService) persist(ctx context.Context, schedule *entity.Schedule, mutate func(*entity.Schedule)) *entity.Schedule {
	ctx = context.WithoutCancel(ctx)
	current := schedule
	for attempt := 0; ; attempt++ {
		working := *current
		mutate(&working)
		err := s.scheduleRepo.Update(ctx, &working)
		if err == nil {
			return &working
		}
		if !errors.Is(err, repository.ErrVersionConflict) || attempt >= maxConflictRetries {
			s.logger.Error("Failed to persist schedule outcome",
				logger.StringField("schedule_id", schedule.ID),
				logger.IntField("attempt", attempt+1),
				logger.ErrorField(err))
			return &working
		}
		reloaded, err := s.scheduleRepo.FindByID(ctx, schedule.ID)
		if err != nil {
			s.logger.Warn("Schedule vanished while persisting outcome",
				logger.StringField("schedule_id", schedule.ID),
				logger.ErrorField(err))
			return &working
		}
		current = reloaded
	}
}

// applyOutcome records a firing on sc and reschedules it. It reports whether the schedule
// was disabled for exceeding the consecutive failure limit.
func (s *schedulerService) applyOutcome(sc *entity.Schedule, occurrence, startedAt time.Time, status entity.RunStatus, message string, now time.Time) bool {
	started := startedAt.UTC()
	sc.LastRunAt = &started
	sc.LastStatus = status
	sc.LastError = message
	sc.RunCount++
	if status == entity.RunStatusSuccess {
		sc.FailureCount = 0
	} else {
		sc.FailureCount++
	}

	s.advance(sc, occurrence, now)

	limit := s.cfg.MaxConsecutiveFailures
	if status != entity.RunStatusSuccess && limit > 0 && sc.FailureCount >= limit && sc.Enabled {
		sc.Enabled = false
		s.logger.Warn("Schedule disabled after consecutive failures",
			logger.StringField("schedule_id", sc.ID),
			logger.IntField("failure_count", sc.FailureCount))
		return true
	}
	return false
}

// advance moves sc past occurrence. It is a no-op when the schedule was re-armed or edited
// after the occurrence was read.
func (s *schedulerService) advance(sc *entity.Schedule, occurrence, now time.Time) {
	if !sameInstant(sc.NextRunAt, &occurrence) {
		return
	}
	fired := occurrence
	sc.LastFiredAt = &fired

	if sc.ScheduleType == entity.ScheduleTypeOneOff {
		markExhausted(sc)
		return
	}
	next, ok, err := s.calculator.Next(sc, now)
	if err != nil {
		s.logger.Error("Cannot compute next run", logger.StringField("schedule_id", sc.ID), logger.ErrorField(err))
		sc.NextRunAt = nil
		return
	}
	if !ok {
		markExhausted(sc)
		return
	}
	sc.NextRunAt = &next
}

func (s *schedulerService) completeRun(ctx context.Context, run *entity.ScheduleRun, status entity.RunStatus, result *entity.DispatchResult, message string) {
	run.Status = status
	run.CompletedAt.Time = s.clock.Now()
	run.CompletedAt.Valid = true
	if result != nil {
		run.Sent = result.Sent
		run.Failed = result.Failed
		run.Errors = result.Errors
		if result.ConfigName != "" {
			run.ConfigName = result.ConfigName
		}
	}
	if len(run.Errors) == 0 && message != "" {
		run.Errors = []string{message}
	}
	if err := s.runRepo.Update(context.WithoutCancel(ctx), run); err != nil {
		s.logger.Error("Failed to update run history", logger.ErrorField(err), logger.Field("run_id", run.ID))
	}
}

func (s *schedulerService) publish(ctx context.Context, schedule *entity.Schedule, run *entity.ScheduleRun, autoDisabled bool) {
	event := &entity.RunEvent{
		ScheduleID:   schedule.ID,
		Name:         schedule.Name,
		EmailType:    schedule.EmailType,
		Status:       run.Status,
		Sent:         run.Sent,
		Failed:       run.Failed,
		Errors:       run.Errors,
		OccurrenceAt: run.OccurrenceAt,
		NextRunAt:    schedule.NextRunAt,
		FailureCount: schedule.FailureCount,
		AutoDisabled: autoDisabled,
		Exhausted:    schedule.Exhausted,
	}
	if err := s.publisher.Publish(context.WithoutCancel(ctx), event); err != nil {
		s.logger.Warn("Failed to publish run event", logger.StringField("schedule_id", schedule.ID), logger.ErrorField(err))
	}
}

func markExhausted(sc *entity.Schedule) {
	sc.Exhausted = true
	sc.Enabled = false
	sc.NextRunAt = nil
}

func sameInstant(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// cronLogger adapts the service logger to cron.Logger.
type cronLogger struct {
	logger *logger.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Debugw(msg, keysAndValues...)
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Sugar().Errorw(msg, append(keysAndValues, "error", err)...)
}
