package entity

import (
	"strings"
	"time"

	"github.com/lib/pq"
	"gorm.io/datatypes"
)

// EmailType selects which dispatch variant a schedule fires.
type EmailType string

const (
	EmailTypePhishing EmailType = "phishing"
	EmailTypeEICAR    EmailType = "eicar"
	EmailTypeCynic    EmailType = "cynic"
	EmailTypeGTUBE    EmailType = "gtube"
	EmailTypeCustom   EmailType = "custom"
)

// EmailTypes lists every supported email type.
var EmailTypes = []EmailType{EmailTypePhishing, EmailTypeEICAR, EmailTypeCynic, EmailTypeGTUBE, EmailTypeCustom}

// IsValid reports whether t is a supported email type.
func (t EmailType) IsValid() bool {
	for _, v := range EmailTypes {
		if t == v {
			return true
		}
	}
	return false
}

// ScheduleType selects the next-run rule.
type ScheduleType string

const (
	ScheduleTypeOneOff   ScheduleType = "one_off"
	ScheduleTypeInterval ScheduleType = "interval"
	ScheduleTypeWeekly   ScheduleType = "weekly"
)

// IsValid reports whether t is a supported schedule type.
func (t ScheduleType) IsValid() bool {
	switch t {
	case ScheduleTypeOneOff, ScheduleTypeInterval, ScheduleTypeWeekly:
		return true
	}
	return false
}

// RunStatus is the outcome of the most recent firing.
type RunStatus string

const (
	RunStatusNone    RunStatus = ""
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	// RunStatusFailure means the sender answered but reported an unsuccessful send.
	RunStatusFailure RunStatus = "failure"
	// RunStatusError means the send could not be performed at all.
	RunStatusError RunStatus = "error"
)

// Schedule is a persisted email dispatch job definition.
//
// Exactly one group of type-specific fields is populated:
// RunAt for one_off, IntervalHours for interval, WeeklyDays and TimeOfDayLocal for weekly.
// All instants are stored in UTC.
type Schedule struct {
	ID           string         `gorm:"primaryKey;type:uuid" json:"id"`
	Name         string         `gorm:"type:varchar(255);not null" json:"name"`
	EmailType    EmailType      `gorm:"type:varchar(20);not null" json:"email_type"`
	Recipients   pq.StringArray `gorm:"type:text[];not null" json:"recipients"`
	Count        int            `gorm:"not null;default:1" json:"count"`
	ConfigName   string         `gorm:"type:varchar(255)" json:"config_name,omitempty"`
	Payload      datatypes.JSON `gorm:"type:jsonb" json:"payload,omitempty"`
	ScheduleType ScheduleType   `gorm:"type:varchar(20);not null" json:"schedule_type"`
	Enabled      bool           `gorm:"not null;default:true" json:"enabled"`

	RunAt          *time.Time     `gorm:"column:run_at_utc" json:"run_at_utc,omitempty"`
	IntervalHours  int            `json:"interval_hours,omitempty"`
	WeeklyDays     pq.StringArray `gorm:"type:text[]" json:"weekly_days,omitempty"`
	TimeOfDayLocal string         `gorm:"type:varchar(5)" json:"time_of_day_local,omitempty"`

	NextRunAt    *time.Time `gorm:"column:next_run_utc;index" json:"next_run_utc,omitempty"`
	LastRunAt    *time.Time `gorm:"column:last_run_utc" json:"last_run_utc,omitempty"`
	LastFiredAt  *time.Time `gorm:"column:last_fired_utc" json:"last_fired_utc,omitempty"`
	LastStatus   RunStatus  `gorm:"type:varchar(20)" json:"last_status,omitempty"`
	LastError    string     `gorm:"type:text" json:"last_error,omitempty"`
	FailureCount int        `gorm:"not null;default:0" json:"failure_count"`
	RunCount     int        `gorm:"not null;default:0" json:"run_count"`
	Exhausted    bool       `gorm:"not null;default:false" json:"exhausted"`
	Version      int        `gorm:"not null;default:0" json:"version"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Schedule model.
func (Schedule) TableName() string {
	return "schedules"
}

// IsDue reports whether the schedule should fire at now.
func (s *Schedule) IsDue(now time.Time) bool {
	if !s.Enabled || s.Exhausted || s.NextRunAt == nil {
		return false
	}
	return !now.Before(*s.NextRunAt)
}

// Weekdays returns the parsed weekly days, skipping unknown tokens.
func (s *Schedule) Weekdays() []Weekday {
	days := make([]Weekday, 0, len(s.WeeklyDays))
	for _, raw := range s.WeeklyDays {
		if d, ok := ParseWeekday(raw); ok {
			days = append(days, d)
		}
	}
	return days
}

// EffectiveCount returns the number of messages a firing sends. GTUBE always sends one.
func (s *Schedule) EffectiveCount() int {
	if s.EmailType == EmailTypeGTUBE {
		return 1
	}
	if s.Count < 1 {
		return 1
	}
	return s.Count
}

// Weekday is a three-letter weekday token as used on the wire.
type Weekday string

const (
	WeekdayMon Weekday = "Mon"
	WeekdayTue Weekday = "Tue"
	WeekdayWed Weekday = "Wed"
	WeekdayThu Weekday = "Thu"
	WeekdayFri Weekday = "Fri"
	WeekdaySat Weekday = "Sat"
	WeekdaySun Weekday = "Sun"
)

var weekdays = map[Weekday]time.Weekday{
	WeekdayMon: time.Monday,
	WeekdayTue: time.Tuesday,
	WeekdayWed: time.Wednesday,
	WeekdayThu: time.Thursday,
	WeekdayFri: time.Friday,
	WeekdaySat: time.Saturday,
	WeekdaySun: time.Sunday,
}

// ParseWeekday accepts a three-letter token in any letter case and returns its canonical form.
func ParseWeekday(s string) (Weekday, bool) {
	s = strings.TrimSpace(s)
	if len(s) != 3 {
		return "", false
	}
	d := Weekday(strings.ToUpper(s[:1]) + strings.ToLower(s[1:]))
	if _, ok := weekdays[d]; !ok {
		return "", false
	}
	return d, true
}

// WeekdayOf returns the token for a time.Weekday.
func WeekdayOf(w time.Weekday) Weekday {
	for d, tw := range weekdays {
		if tw == w {
			return d
		}
	}
	return ""
}

// TimeWeekday returns the time.Weekday for d.
func (d Weekday) TimeWeekday() time.Weekday {
	return weekdays[d]
}
