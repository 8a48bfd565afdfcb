package dto

import (
	"time"
)

// ExecutionHistoryResponse is the DTO for API responses containing execution history details.
type ExecutionHistoryResponse struct {
	ID            uint       `json:"id"`
	ScheduleID    string     `json:"schedule_id"`
	EmailType     string     `json:"email_type"`
	ConfigName    string     `json:"config_name,omitempty"`
	Status        string     `json:"status"`
	OccurrenceUTC time.Time  `json:"occurrence_utc"`
	ExecutedAt    time.Time  `json:"executed_at"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	Duration      int64      `json:"duration_ms"`
	Sent          int        `json:"sent"`
	Failed        int        `json:"failed"`
	Errors        []string   `json:"errors,omitempty"`
}
