package repository

import (
	"context"
	"errors"

	"email-datagen/internal/entity"

	"gorm.io/gorm"
)

var (
	// ErrDuplicateOccurrence is returned when a run for the same schedule occurrence already exists.
	ErrDuplicateOccurrence = errors.New("occurrence already claimed")
	// ErrRunNotFound is returned when no run has the requested id.
	ErrRunNotFound = errors.New("execution not found")
)

// ScheduleRunRepository defines the interface for schedule run history operations.
type ScheduleRunRepository interface {
	// Create claims an occurrence. It fails with ErrDuplicateOccurrence if the occurrence was already claimed.
	Create(ctx context.Context, run *entity.ScheduleRun) error
	Update(ctx context.Context, run *entity.ScheduleRun) error
	FindByID(ctx context.Context, id uint) (*entity.ScheduleRun, error)
	FindAll(ctx context.Context, limit int) ([]entity.ScheduleRun, error)
	FindAllByScheduleID(ctx context.Context, scheduleID string, limit int) ([]entity.ScheduleRun, error)
}

// NewScheduleRunRepository creates a new GORM-based schedule run repository.
func NewScheduleRunRepository(db *gorm.DB) ScheduleRunRepository {
	return &scheduleRunRepository{db: db}
}

type scheduleRunRepository struct {
	db *gorm.DB
}

// Create inserts a run row.
func (r *scheduleRunRepository) Create(ctx context.Context, run *entity.ScheduleRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateOccurrence
		}
		return err
	}
	return nil
}

// Update records the outcome columns of a run.
func (r *scheduleRunRepository) Update(ctx context.Context, run *entity.ScheduleRun) error {
	return r.db.WithContext(ctx).
		Model(run).
		Select("status", "sent", "failed", "errors", "config_name", "completed_at").
		Updates(run).Error
}

// FindByID retrieves a run by its ID.
func (r *scheduleRunRepository) FindByID(ctx context.Context, id uint) (*entity.ScheduleRun, error) {
	var run entity.ScheduleRun
	if err := r.db.WithContext(ctx).First(&run, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRunNotFound
		}
		return nil, err
	}
	return &run, nil
}

// FindAll retrieves the most recent runs.
func (r *scheduleRunRepository) FindAll(ctx context.Context, limit int) ([]entity.ScheduleRun, error) {
	var runs []entity.ScheduleRun
	if err := r.db.WithContext(ctx).Order("started_at desc").Limit(limit).Find(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

// FindAllByScheduleID retrieves the most recent runs of one schedule.
func (r *scheduleRunRepository) FindAllByScheduleID(ctx context.Context, scheduleID string, limit int) ([]entity.ScheduleRun, error) {
	var runs []entity.ScheduleRun
	err := r.db.WithContext(ctx).
		Where("schedule_id = ?", scheduleID).
		Order("started_at desc").
		Limit(limit).
		Find(&runs).Error
	if err != nil {
		return nil, err
	}
	return runs, nil
}
