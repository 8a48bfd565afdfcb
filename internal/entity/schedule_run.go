package entity

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

// ScheduleRun records one firing of a schedule. The pair (ScheduleID, OccurrenceAt) is unique,
// which makes claiming an occurrence a durable at-most-once guard.
type ScheduleRun struct {
	ID           uint           `gorm:"primaryKey" json:"id"`
	ScheduleID   string         `gorm:"type:uuid;not null;uniqueIndex:idx_schedule_runs_occurrence" json:"schedule_id"`
	OccurrenceAt time.Time      `gorm:"column:occurrence_utc;not null;uniqueIndex:idx_schedule_runs_occurrence" json:"occurrence_utc"`
	EmailType    EmailType      `gorm:"type:varchar(20);not null" json:"email_type"`
	ConfigName   string         `gorm:"type:varchar(255)" json:"config_name,omitempty"`
	Status       RunStatus      `gorm:"type:varchar(20);not null" json:"status"`
	Sent         int            `json:"sent"`
	Failed       int            `json:"failed"`
	Errors       pq.StringArray `gorm:"type:text[]" json:"errors,omitempty"`
	StartedAt    time.Time      `gorm:"not null" json:"started_at"`
	CompletedAt  sql.NullTime   `json:"completed_at"`
}

// TableName specifies the table name for the ScheduleRun model.
func (ScheduleRun) TableName() string {
	return "schedule_runs"
}

// DispatchResult is what the dispatch callback reports for one firing.
type DispatchResult struct {
	Success    bool     `json:"success"`
	Sent       int      `json:"sent"`
	Failed     int      `json:"failed"`
	Errors     []string `json:"errors,omitempty"`
	ConfigName string   `json:"config_name,omitempty"`
}

// RunEvent is published after every firing for out-of-band observers.
type RunEvent struct {
	ScheduleID   string     `json:"schedule_id"`
	Name         string     `json:"name"`
	EmailType    EmailType  `json:"email_type"`
	Status       RunStatus  `json:"status"`
	Sent         int        `json:"sent"`
	Failed       int        `json:"failed"`
	Errors       []string   `json:"errors,omitempty"`
	OccurrenceAt time.Time  `json:"occurrence_utc"`
	NextRunAt    *time.Time `json:"next_run_utc,omitempty"`
	FailureCount int        `json:"failure_count"`
	AutoDisabled bool       `json:"auto_disabled"`
	Exhausted    bool       `json:"exhausted"`
}
