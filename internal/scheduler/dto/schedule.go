package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ScheduleRequest is the DTO for creating or updating a schedule.
//
// Only the fields of the selected schedule_type are read; the others are ignored.
// Payload fields are flat: template_type for phishing, subject/body/display_name/attachment_type for custom.
type ScheduleRequest struct {
	Name         string        `json:"name"`
	EmailType    string        `json:"email_type"`
	Recipients   RecipientList `json:"recipients" swaggertype:"array,string"`
	Count        LenientInt    `json:"count" swaggertype:"integer"`
	ConfigName   string        `json:"config_name"`
	ScheduleType string        `json:"schedule_type"`
	Enabled      *bool         `json:"enabled"`

	NextRunUTC     string     `json:"next_run_utc" example:"2025-01-06T09:00:00Z"`
	IntervalHours  LenientInt `json:"interval_hours" swaggertype:"integer"`
	WeeklyDays     []string   `json:"weekly_days" example:"Mon,Wed"`
	TimeOfDayLocal string     `json:"time_of_day_local" example:"09:00"`

	TemplateType   string `json:"template_type"`
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	DisplayName    string `json:"display_name"`
	AttachmentType string `json:"attachment_type"`
}

// ToggleRequest is the DTO for enabling or disabling a schedule.
type ToggleRequest struct {
	Enabled *bool `json:"enabled"`
}

// ScheduleResponse is the DTO for API responses containing schedule details.
type ScheduleResponse struct {
	ID             string                 `json:"id"`
	Name           string                 `json:"name"`
	EmailType      string                 `json:"email_type"`
	Recipients     []string               `json:"recipients"`
	Count          int                    `json:"count"`
	ConfigName     string                 `json:"config_name,omitempty"`
	ScheduleType   string                 `json:"schedule_type"`
	Enabled        bool                   `json:"enabled"`
	Payload        map[string]interface{} `json:"payload,omitempty"`
	RunAtUTC       *time.Time             `json:"run_at_utc,omitempty"`
	IntervalHours  int                    `json:"interval_hours,omitempty"`
	WeeklyDays     []string               `json:"weekly_days,omitempty"`
	TimeOfDayLocal string                 `json:"time_of_day_local,omitempty"`
	TimeZone       string                 `json:"time_zone,omitempty"`
	NextRunUTC     *time.Time             `json:"next_run_utc"`
	LastRunUTC     *time.Time             `json:"last_run_utc,omitempty"`
	LastStatus     string                 `json:"last_status"`
	LastError      string                 `json:"last_error,omitempty"`
	FailureCount   int                    `json:"failure_count"`
	RunCount       int                    `json:"run_count"`
	Exhausted      bool                   `json:"exhausted"`
	CreatedAt      time.Time              `json:"created_at"`
	UpdatedAt      time.Time              `json:"updated_at"`
}

// NextRunsResponse lists upcoming occurrences of a schedule.
type NextRunsResponse struct {
	ScheduleID string      `json:"schedule_id"`
	NextRuns   []time.Time `json:"next_runs_utc"`
}

// RecipientList accepts either a JSON array of addresses or a single string of addresses
// separated by commas, semicolons or line breaks. Blank entries are dropped.
type RecipientList []string

// UnmarshalJSON implements json.Unmarshaler.
func (r *RecipientList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*r = nil
		return nil
	}

	var raw []string
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = []string{s}
	} else if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("recipients must be a string or an array of strings")
	}

	list := make(RecipientList, 0, len(raw))
	for _, item := range raw {
		list = append(list, SplitRecipients(item)...)
	}
	*r = list
	return nil
}

// SplitRecipients splits a free-form address list and drops blank entries.
func SplitRecipients(s string) []string {
	fields := strings.FieldsFunc(s, func(c rune) bool {
		return c == ',' || c == ';' || c == '\n' || c == '\r'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// LenientInt accepts a JSON number or a numeric string. Set reports whether the field was
// present and non-null; Valid reports whether it held an integer.
type LenientInt struct {
	Value int
	Set   bool
	Valid bool
}

// NewLenientInt returns a valid LenientInt holding v.
func NewLenientInt(v int) LenientInt {
	return LenientInt{Value: v, Set: true, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler. It never fails; malformed values are recorded as invalid.
func (n *LenientInt) UnmarshalJSON(data []byte) error {
	*n = LenientInt{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	n.Set = true

	text := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		text = strings.TrimSpace(s)
		if text == "" {
			n.Set = false
			return nil
		}
	}
	if v, err := strconv.Atoi(text); err == nil {
		n.Value, n.Valid = v, true
		return nil
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && f == float64(int(f)) {
		n.Value, n.Valid = int(f), true
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (n LenientInt) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return []byte(strconv.Itoa(n.Value)), nil
}
