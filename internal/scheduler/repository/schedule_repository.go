package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"email-datagen/internal/entity"

	"gorm.io/gorm"
)

var (
	// ErrScheduleNotFound is returned when no schedule has the requested id.
	ErrScheduleNotFound = errors.New("schedule not found")
	// ErrVersionConflict is returned when the stored version no longer matches the one read.
	ErrVersionConflict = errors.New("schedule was modified concurrently")
)

// ScheduleRepository defines the interface for schedule data operations.
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *entity.Schedule) error
	FindByID(ctx context.Context, id string) (*entity.Schedule, error)
	FindAll(ctx context.Context) ([]entity.Schedule, error)
	// Update writes schedule if its stored version still equals schedule.Version, then bumps the version.
	Update(ctx context.Context, schedule *entity.Schedule) error
	Delete(ctx context.Context, id string) error
	// FindDue returns enabled, unexhausted schedules whose next run is at or before now.
	FindDue(ctx context.Context, now time.Time) ([]entity.Schedule, error)
	// FindMissingNextRun returns enabled, unexhausted schedules that have no next run.
	FindMissingNextRun(ctx context.Context) ([]entity.Schedule, error)
}

// NewScheduleRepository creates a new GORM-based schedule repository.
func NewScheduleRepository(db *gorm.DB) ScheduleRepository {
	return &scheduleRepository{db: db}
}

type scheduleRepository struct {
	db *gorm.DB
}

// Create creates a new schedule.
func (r *scheduleRepository) Create(ctx context.Context, schedule *entity.Schedule) error {
	return r.db.WithContext(ctx).Create(schedule).Error
}

// FindByID retrieves a schedule by its ID.
func (r *scheduleRepository) FindByID(ctx context.Context, id string) (*entity.Schedule, error) {
	var schedule entity.Schedule
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&schedule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}
	return &schedule, nil
}

// FindAll retrieves all schedules, newest first.
func (r *scheduleRepository) FindAll(ctx context.Context) ([]entity.Schedule, error) {
	var schedules []entity.Schedule
	if err := r.db.WithContext(ctx).Order("created_at desc").Find(&schedules).Error; err != nil {
		return nil, err
	}
	return schedules, nil
}

// Update updates a schedule under optimistic locking.
func (r *scheduleRepository) Update(ctx context.Context, schedule *entity.Schedule) error {
	expected := schedule.Version
	schedule.Version = expected + 1

	result := r.db.WithContext(ctx).
		Model(&entity.Schedule{ID: schedule.ID}).
		Where("version = ?", expected).
		Select("*").
		Omit("id", "created_at").
		Updates(schedule)
	if result.Error != nil {
		schedule.Version = expected
		return result.Error
	}
	if result.RowsAffected == 0 {
		schedule.Version = expected
		var count int64
		if err := r.db.WithContext(ctx).Model(&entity.Schedule{}).Where("id = ?", schedule.ID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrScheduleNotFound
		}
		return fmt.Errorf("%w: id=%s version=%d", ErrVersionConflict, schedule.ID, expected)
	}
	return nil
}

// Delete removes a schedule by its ID. Its run history goes with it.
func (r *scheduleRepository) Delete(ctx context.Context, id string) error {
	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&entity.Schedule{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

// FindDue finds schedules that need to run.
func (r *scheduleRepository) FindDue(ctx context.Context, now time.Time) ([]entity.Schedule, error) {
	var schedules []entity.Schedule
	err := r.db.WithContext(ctx).
		Where("enabled = ? AND exhausted = ? AND next_run_utc IS NOT NULL AND next_run_utc <= ?", true, false, now.UTC()).
		Order("next_run_utc asc").
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}

// FindMissingNextRun finds enabled schedules that were never given a next run.
func (r *scheduleRepository) FindMissingNextRun(ctx context.Context) ([]entity.Schedule, error) {
	var schedules []entity.Schedule
	err := r.db.WithContext(ctx).
		Where("enabled = ? AND exhausted = ? AND next_run_utc IS NULL", true, false).
		Find(&schedules).Error
	if err != nil {
		return nil, err
	}
	return schedules, nil
}
