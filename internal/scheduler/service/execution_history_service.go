package service

import (
	"context"
	"errors"

	"email-datagen/internal/entity"
	"email-datagen/internal/scheduler/dto"
	"email-datagen/internal/scheduler/repository"
	"email-datagen/pkg/logger"
)

// DefaultHistoryLimit is the number of runs returned when the caller does not ask for a limit.
const DefaultHistoryLimit = 100

// ExecutionHistoryService defines the interface for reading run history.
type ExecutionHistoryService interface {
	GetExecutionHistoryByID(ctx context.Context, id uint) (*dto.ExecutionHistoryResponse, error)
	GetAllExecutionHistories(ctx context.Context, limit int) ([]*dto.ExecutionHistoryResponse, error)
	GetExecutionHistoriesByScheduleID(ctx context.Context, scheduleID string, limit int) ([]*dto.ExecutionHistoryResponse, error)
}

// NewExecutionHistoryService creates a new execution history service.
func NewExecutionHistoryService(runRepo repository.ScheduleRunRepository, scheduleRepo repository.ScheduleRepository, logger *logger.Logger) ExecutionHistoryService {
	return &executionHistoryService{
		runRepo:      runRepo,
		scheduleRepo: scheduleRepo,
		logger:       logger,
	}
}

type executionHistoryService struct {
	runRepo      repository.ScheduleRunRepository
	scheduleRepo repository.ScheduleRepository
	logger       *logger.Logger
}

// GetExecutionHistoryByID retrieves a run by its ID.
func (s *executionHistoryService) GetExecutionHistoryByID(ctx context.Context, id uint) (*dto.ExecutionHistoryResponse, error) {
	run, err := s.runRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrRunNotFound) {
			return nil, ErrExecutionNotFound
		}
		s.logger.Error("Failed to find execution history", logger.ErrorField(err), logger.Field("history_id", id))
		return nil, err
	}
	return s.mapToExecutionHistoryResponse(run), nil
}

// GetAllExecutionHistories retrieves the most recent runs across all schedules.
func (s *executionHistoryService) GetAllExecutionHistories(ctx context.Context, limit int) ([]*dto.ExecutionHistoryResponse, error) {
	runs, err := s.runRepo.FindAll(ctx, normalizeLimit(limit))
	if err != nil {
		s.logger.Error("Failed to get all execution histories", logger.ErrorField(err))
		return nil, err
	}
	return s.mapAll(runs), nil
}

// GetExecutionHistoriesByScheduleID retrieves the most recent runs of one schedule.
func (s *executionHistoryService) GetExecutionHistoriesByScheduleID(ctx context.Context, scheduleID string, limit int) ([]*dto.ExecutionHistoryResponse, error) {
	if _, err := s.scheduleRepo.FindByID(ctx, scheduleID); err != nil {
		if errors.Is(err, repository.ErrScheduleNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	runs, err := s.runRepo.FindAllByScheduleID(ctx, scheduleID, normalizeLimit(limit))
	if err != nil {
		s.logger.Error("Failed to get execution histories by schedule ID", logger.ErrorField(err), logger.StringField("schedule_id", scheduleID))
		return nil, err
	}
	return s.mapAll(runs), nil
}

func (s *executionHistoryService) mapAll(runs []entity.ScheduleRun) []*dto.ExecutionHistoryResponse {
	historyResponses := make([]*dto.ExecutionHistoryResponse, 0, len(runs))
	for i := range runs {
		historyResponses = append(historyResponses, s.mapToExecutionHistoryResponse(&runs[i]))
	}
	return historyResponses
}

// mapToExecutionHistoryResponse maps an entity.ScheduleRun to a dto.ExecutionHistoryResponse.
func (s *executionHistoryService) mapToExecutionHistoryResponse(run *entity.ScheduleRun) *dto.ExecutionHistoryResponse {
	resp := &dto.ExecutionHistoryResponse{
		ID:            run.ID,
		ScheduleID:    run.ScheduleID,
		EmailType:     string(run.EmailType),
		ConfigName:    run.ConfigName,
		Status:        string(run.Status),
		OccurrenceUTC: run.OccurrenceAt,
		ExecutedAt:    run.StartedAt,
		Sent:          run.Sent,
		Failed:        run.Failed,
		Errors:        []string(run.Errors),
	}
	if run.CompletedAt.Valid {
		completed := run.CompletedAt.Time
		resp.CompletedAt = &completed
		resp.Duration = completed.Sub(run.StartedAt).Milliseconds()
	}
	return resp
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 1000 {
		return DefaultHistoryLimit
	}
	return limit
}
