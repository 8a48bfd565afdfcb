package main

import (
	"bytes"
	"testing"
	"time"

	"email-datagen/internal/entity"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
)

func TestToExport(t *testing.T) {
	next := time.Date(2025, 1, 6, 2, 0, 0, 0, time.UTC)
	out := toExport([]entity.Schedule{{
		ID:             "3f6c1a2e-8d4b-4a51-9f0e-2b7c9d1e5a40",
		Name:           "weekly_phish",
		EmailType:      entity.EmailTypePhishing,
		Recipients:     pq.StringArray{"a@example.com"},
		Count:          2,
		ScheduleType:   entity.ScheduleTypeWeekly,
		Enabled:        true,
		WeeklyDays:     pq.StringArray{"Mon", "Thu"},
		TimeOfDayLocal: "09:00",
		Payload:        datatypes.JSON(`{"template_type":"urgent"}`),
		NextRunAt:      &next,
	}})

	require.Len(t, out, 1)
	assert.Equal(t, "2025-01-06T02:00:00Z", out[0].NextRunUTC)
	assert.Equal(t, "urgent", out[0].Payload["template_type"])

	b, err := yaml.Marshal(exportDocument{Schedules: out})
	require.NoError(t, err)
	assert.Contains(t, string(b), "weekly_days:")
	assert.Contains(t, string(b), "09:00")
}

func TestPrintSchedules(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printSchedules(&buf, []entity.Schedule{
		{ID: "a", Name: "one", EmailType: entity.EmailTypeEICAR, ScheduleType: entity.ScheduleTypeOneOff, Exhausted: true, LastStatus: entity.RunStatusSuccess},
		{ID: "b", Name: "two", EmailType: entity.EmailTypeGTUBE, ScheduleType: entity.ScheduleTypeInterval, Enabled: true},
	}))

	out := buf.String()
	assert.Contains(t, out, "exhausted")
	assert.Contains(t, out, "EICAR")
	assert.Contains(t, out, "NEXT RUN (UTC)")
}
