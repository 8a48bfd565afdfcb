package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseWeekday(t *testing.T) {
	tests := []struct {
		in   string
		want Weekday
		ok   bool
	}{
		{"Mon", WeekdayMon, true},
		{"mon", WeekdayMon, true},
		{" SUN ", WeekdaySun, true},
		{"tHu", WeekdayThu, true},
		{"Monday", "", false},
		{"Mo", "", false},
		{"", "", false},
		{"Xyz", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseWeekday(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestWeekdayRoundTrip(t *testing.T) {
	for w := time.Sunday; w <= time.Saturday; w++ {
		d := WeekdayOf(w)
		require.NotEmpty(t, d)
		assert.Equal(t, w, d.TimeWeekday())
	}
}

func TestSchedule_IsDue(t *testing.T) {
	now := time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)
	past := now.Add(-time.Minute)
	future := now.Add(time.Minute)

	tests := []struct {
		name string
		s    Schedule
		want bool
	}{
		{"due", Schedule{Enabled: true, NextRunAt: &past}, true},
		{"due exactly now", Schedule{Enabled: true, NextRunAt: &now}, true},
		{"future", Schedule{Enabled: true, NextRunAt: &future}, false},
		{"disabled", Schedule{Enabled: false, NextRunAt: &past}, false},
		{"exhausted", Schedule{Enabled: true, Exhausted: true, NextRunAt: &past}, false},
		{"no next run", Schedule{Enabled: true}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.s.IsDue(now))
		})
	}
}

func TestSchedule_EffectiveCount(t *testing.T) {
	assert.Equal(t, 5, (&Schedule{EmailType: EmailTypePhishing, Count: 5}).EffectiveCount())
	assert.Equal(t, 1, (&Schedule{EmailType: EmailTypeGTUBE, Count: 5}).EffectiveCount())
	assert.Equal(t, 1, (&Schedule{EmailType: EmailTypeEICAR, Count: 0}).EffectiveCount())
}

func TestSchedule_Weekdays(t *testing.T) {
	s := Schedule{WeeklyDays: []string{"Mon", "fri", "bogus"}}
	assert.Equal(t, []Weekday{WeekdayMon, WeekdayFri}, s.Weekdays())
}

func TestDecodePayload(t *testing.T) {
	p, err := DecodePayload(EmailTypePhishing, nil)
	require.NoError(t, err)
	assert.Equal(t, PhishingPayload{TemplateType: PhishingTemplateWarning}, p)

	p, err = DecodePayload(EmailTypePhishing, []byte(`{"template_type":"urgent"}`))
	require.NoError(t, err)
	assert.Equal(t, PhishingPayload{TemplateType: PhishingTemplateUrgent}, p)

	raw, err := EncodePayload(CustomPayload{Subject: "Hi", Body: "<p>Hello</p>", AttachmentType: ".pdf"})
	require.NoError(t, err)
	p, err = DecodePayload(EmailTypeCustom, raw)
	require.NoError(t, err)
	custom, ok := p.(CustomPayload)
	require.True(t, ok)
	assert.Equal(t, "Hi", custom.Subject)
	assert.Equal(t, ".pdf", custom.AttachmentType)
	assert.Equal(t, EmailTypeCustom, p.EmailType())

	p, err = DecodePayload(EmailTypeGTUBE, []byte(`{"ignored":true}`))
	require.NoError(t, err)
	assert.Equal(t, GTUBEPayload{}, p)

	_, err = DecodePayload(EmailTypeCustom, []byte(`{not json`))
	assert.Error(t, err)

	_, err = DecodePayload(EmailType("sms"), nil)
	assert.Error(t, err)
}

func TestEmailType_IsValid(t *testing.T) {
	for _, et := range EmailTypes {
		assert.True(t, et.IsValid(), et)
	}
	assert.False(t, EmailType("PHISHING").IsValid())
	assert.True(t, ScheduleTypeWeekly.IsValid())
	assert.False(t, ScheduleType("cron").IsValid())
}
