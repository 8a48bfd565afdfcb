package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"email-datagen/internal/entity"
	"email-datagen/internal/scheduler/dto"
	"email-datagen/internal/scheduler/repository"
	"email-datagen/pkg/logger"
	"email-datagen/pkg/utils"

	"github.com/google/uuid"
)

// MaxPreviewRuns caps how many occurrences PreviewNextRuns returns.
const MaxPreviewRuns = 50

// ScheduleService defines the interface for managing schedules.
type ScheduleService interface {
	CreateSchedule(ctx context.Context, req *dto.ScheduleRequest) (*dto.ScheduleResponse, error)
	GetScheduleByID(ctx context.Context, id string) (*dto.ScheduleResponse, error)
	GetAllSchedules(ctx context.Context) ([]*dto.ScheduleResponse, error)
	UpdateSchedule(ctx context.Context, id string, req *dto.ScheduleRequest) (*dto.ScheduleResponse, error)
	DeleteSchedule(ctx context.Context, id string) error
	ToggleSchedule(ctx context.Context, id string, enabled bool) (*dto.ScheduleResponse, error)
	RunNow(ctx context.Context, id string) (*dto.ScheduleResponse, error)
	PreviewNextRuns(ctx context.Context, id string, count int) (*dto.NextRunsResponse, error)
}

// NewScheduleService creates a new schedule service.
func NewScheduleService(scheduleRepo repository.ScheduleRepository, calculator *NextRunCalculator, clock utils.Clock, logger *logger.Logger) ScheduleService {
	return &scheduleService{
		scheduleRepo: scheduleRepo,
		calculator:   calculator,
		clock:        clock,
		logger:       logger,
	}
}

type scheduleService struct {
	scheduleRepo repository.ScheduleRepository
	calculator   *NextRunCalculator
	clock        utils.Clock
	logger       *logger.Logger
}

// CreateSchedule validates the request, computes the first run and stores the schedule.
func (s *scheduleService) CreateSchedule(ctx context.Context, req *dto.ScheduleRequest) (*dto.ScheduleResponse, error) {
	schedule, err := NormalizeSchedule(req)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	schedule.ID = uuid.NewString()
	schedule.CreatedAt = now
	schedule.UpdatedAt = now
	if err := s.computeNextRun(schedule, now); err != nil {
		return nil, err
	}

	if err := s.scheduleRepo.Create(ctx, schedule); err != nil {
		s.logger.Error("Failed to create schedule", logger.ErrorField(err))
		return nil, err
	}

	s.logger.Info("Schedule created successfully",
		logger.StringField("schedule_id", schedule.ID),
		logger.StringField("schedule_type", string(schedule.ScheduleType)),
		logger.Field("next_run_utc", schedule.NextRunAt))
	return s.mapToScheduleResponse(schedule), nil
}

// GetScheduleByID retrieves a schedule by its ID.
func (s *scheduleService) GetScheduleByID(ctx context.Context, id string) (*dto.ScheduleResponse, error) {
	schedule, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.mapToScheduleResponse(schedule), nil
}

// GetAllSchedules retrieves all schedules.
func (s *scheduleService) GetAllSchedules(ctx context.Context) ([]*dto.ScheduleResponse, error) {
	schedules, err := s.scheduleRepo.FindAll(ctx)
	if err != nil {
		s.logger.Error("Failed to get all schedules", logger.ErrorField(err))
		return nil, err
	}

	scheduleResponses := make([]*dto.ScheduleResponse, 0, len(schedules))
	for i := range schedules {
		scheduleResponses = append(scheduleResponses, s.mapToScheduleResponse(&schedules[i]))
	}
	return scheduleResponses, nil
}

// UpdateSchedule replaces the definition of a schedule. The next run is recomputed when the
// timing changed, and a one-off given a new run time is re-armed.
func (s *scheduleService) UpdateSchedule(ctx context.Context, id string, req *dto.ScheduleRequest) (*dto.ScheduleResponse, error) {
	proposed, err := NormalizeSchedule(req)
	if err != nil {
		return nil, err
	}

	schedule, err := s.mutate(ctx, id, func(schedule *entity.Schedule) error {
		timingChanged := !sameTiming(schedule, proposed)

		schedule.Name = proposed.Name
		schedule.EmailType = proposed.EmailType
		schedule.Recipients = proposed.Recipients
		schedule.Count = proposed.Count
		schedule.ConfigName = proposed.ConfigName
		schedule.Payload = proposed.Payload
		schedule.ScheduleType = proposed.ScheduleType
		schedule.RunAt = proposed.RunAt
		schedule.IntervalHours = proposed.IntervalHours
		schedule.WeeklyDays = proposed.WeeklyDays
		schedule.TimeOfDayLocal = proposed.TimeOfDayLocal
		if req.Enabled != nil {
			schedule.Enabled = *req.Enabled
		}

		if !timingChanged && schedule.NextRunAt != nil {
			return nil
		}
		if timingChanged && schedule.Exhausted {
			schedule.Exhausted = false
			if req.Enabled == nil {
				schedule.Enabled = true
			}
		}
		return s.computeNextRun(schedule, s.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Schedule updated successfully",
		logger.StringField("schedule_id", id),
		logger.Field("next_run_utc", schedule.NextRunAt))
	return s.mapToScheduleResponse(schedule), nil
}

// DeleteSchedule deletes a schedule by its ID.
func (s *scheduleService) DeleteSchedule(ctx context.Context, id string) error {
	if err := s.scheduleRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return ErrScheduleNotFound
		}
		s.logger.Error("Failed to delete schedule", logger.ErrorField(err), logger.StringField("schedule_id", id))
		return err
	}
	s.logger.Info("Schedule deleted successfully", logger.StringField("schedule_id", id))
	return nil
}

// ToggleSchedule sets the enabled flag. The cached next run is left untouched.
func (s *scheduleService) ToggleSchedule(ctx context.Context, id string, enabled bool) (*dto.ScheduleResponse, error) {
	schedule, err := s.mutate(ctx, id, func(schedule *entity.Schedule) error {
		if schedule.Enabled == enabled {
			return errNoChange
		}
		schedule.Enabled = enabled
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Schedule toggled", logger.StringField("schedule_id", id), logger.Field("enabled", enabled))
	return s.mapToScheduleResponse(schedule), nil
}

// RunNow makes the schedule due immediately; the next tick fires it.
func (s *scheduleService) RunNow(ctx context.Context, id string) (*dto.ScheduleResponse, error) {
	schedule, err := s.mutate(ctx, id, func(schedule *entity.Schedule) error {
		if !schedule.Enabled || schedule.Exhausted {
			return ErrScheduleNotRunnable
		}
		now := s.clock.Now()
		if schedule.ScheduleType == entity.ScheduleTypeOneOff {
			schedule.RunAt = &now
		}
		schedule.NextRunAt = &now
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Schedule queued to run now", logger.StringField("schedule_id", id))
	return s.mapToScheduleResponse(schedule), nil
}

// PreviewNextRuns computes upcoming occurrences without changing the schedule.
func (s *scheduleService) PreviewNextRuns(ctx context.Context, id string, count int) (*dto.NextRunsResponse, error) {
	schedule, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if count < 1 {
		count = 1
	}
	if count > MaxPreviewRuns {
		count = MaxPreviewRuns
	}

	now := s.clock.Now()
	runs := []time.Time{}
	if !schedule.Exhausted {
		// The cached next run comes first; later runs follow from it.
		from := schedule
		if schedule.NextRunAt != nil && schedule.ScheduleType != entity.ScheduleTypeOneOff {
			runs = append(runs, schedule.NextRunAt.UTC())
			copied := *schedule
			fired := schedule.NextRunAt.UTC()
			copied.LastFiredAt = &fired
			from = &copied
			if fired.After(now) {
				now = fired
			}
		}
		more, err := s.calculator.Upcoming(from, now, count-len(runs))
		if err != nil {
			return nil, err
		}
		runs = append(runs, more...)
	}
	return &dto.NextRunsResponse{ScheduleID: schedule.ID, NextRuns: runs}, nil
}

var errNoChange = errors.New("no change")

// mutate loads a schedule, applies fn and writes it back, retrying on version conflicts.
// fn returning errNoChange skips the write.
func (s *scheduleService) mutate(ctx context.Context, id string, fn func(*entity.Schedule) error) (*entity.Schedule, error) {
	for attempt := 0; attempt <= maxConflictRetries; attempt++ {
		schedule, err := s.find(ctx, id)
		if err != nil {
			return nil, err
		}
		if err := fn(schedule); err != nil {
			if errors.Is(err, errNoChange) {
				return schedule, nil
			}
			return nil, err
		}
		schedule.UpdatedAt = s.clock.Now()

		err = s.scheduleRepo.Update(ctx, schedule)
		switch {
		case err == nil:
			return schedule, nil
		case errors.Is(err, repository.ErrScheduleNotFound):
			return nil, ErrScheduleNotFound
		case errors.Is(err, repository.ErrVersionConflict):
			s.logger.Debug("Version conflict, retrying", logger.StringField("schedule_id", id), logger.IntField("attempt", attempt+1))
			continue
		default:
			s.logger.Error("Failed to update schedule", logger.ErrorField(err), logger.StringField("schedule_id", id))
			return nil, err
		}
	}
	return nil, ErrScheduleConflict
}

func (s *scheduleService) find(ctx context.Context, id string) (*entity.Schedule, error) {
	schedule, err := s.scheduleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("Failed to find schedule", logger.ErrorField(err), logger.StringField("schedule_id", id))
		return nil, err
	}
	return schedule, nil
}

func (s *scheduleService) computeNextRun(schedule *entity.Schedule, now time.Time) error {
	next, ok, err := s.calculator.Next(schedule, now)
	if err != nil {
		return fmt.Errorf("failed to compute next run: %w", err)
	}
	if !ok {
		schedule.NextRunAt = nil
		return nil
	}
	schedule.NextRunAt = &next
	return nil
}

func sameTiming(a, b *entity.Schedule) bool {
	if a.ScheduleType != b.ScheduleType {
		return false
	}
	switch a.ScheduleType {
	case entity.ScheduleTypeOneOff:
		return sameInstant(a.RunAt, b.RunAt)
	case entity.ScheduleTypeInterval:
		return a.IntervalHours == b.IntervalHours
	case entity.ScheduleTypeWeekly:
		if a.TimeOfDayLocal != b.TimeOfDayLocal || len(a.WeeklyDays) != len(b.WeeklyDays) {
			return false
		}
		days := make(map[string]bool, len(a.WeeklyDays))
		for _, d := range a.WeeklyDays {
			days[d] = true
		}
		for _, d := range b.WeeklyDays {
			if !days[d] {
				return false
			}
		}
		return true
	}
	return false
}

// mapToScheduleResponse maps an entity.Schedule to a dto.ScheduleResponse.
func (s *scheduleService) mapToScheduleResponse(schedule *entity.Schedule) *dto.ScheduleResponse {
	resp := &dto.ScheduleResponse{
		ID:             schedule.ID,
		Name:           schedule.Name,
		EmailType:      string(schedule.EmailType),
		Recipients:     []string(schedule.Recipients),
		Count:          schedule.Count,
		ConfigName:     schedule.ConfigName,
		ScheduleType:   string(schedule.ScheduleType),
		Enabled:        schedule.Enabled,
		RunAtUTC:       schedule.RunAt,
		IntervalHours:  schedule.IntervalHours,
		WeeklyDays:     []string(schedule.WeeklyDays),
		TimeOfDayLocal: schedule.TimeOfDayLocal,
		NextRunUTC:     schedule.NextRunAt,
		LastRunUTC:     schedule.LastRunAt,
		LastStatus:     string(schedule.LastStatus),
		LastError:      schedule.LastError,
		FailureCount:   schedule.FailureCount,
		RunCount:       schedule.RunCount,
		Exhausted:      schedule.Exhausted,
		CreatedAt:      schedule.CreatedAt,
		UpdatedAt:      schedule.UpdatedAt,
	}
	if schedule.ScheduleType == entity.ScheduleTypeWeekly {
		resp.TimeZone = s.calculator.Location().String()
	}
	if len(schedule.Payload) > 0 {
		var payload map[string]interface{}
		if err := json.Unmarshal(schedule.Payload, &payload); err == nil && len(payload) > 0 {
			resp.Payload = payload
		}
	}
	return resp
}
