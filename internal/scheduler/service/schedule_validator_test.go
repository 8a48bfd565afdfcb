package service

import (
	"encoding/json"
	"testing"
	"time"

	"email-datagen/internal/entity"
	"email-datagen/internal/scheduler/dto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRequest(t *testing.T, body string) *dto.ScheduleRequest {
	t.Helper()
	var req dto.ScheduleRequest
	require.NoError(t, json.Unmarshal([]byte(body), &req))
	return &req
}

func messages(err error) []string {
	verr, ok := err.(*ValidationError)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(verr.Violations))
	for _, v := range verr.Violations {
		out = append(out, v.Message)
	}
	return out
}

func TestNormalizeSchedule_Weekly(t *testing.T) {
	req := decodeRequest(t, `{
		"name": "  Weekly phishing ",
		"email_type": "phishing",
		"recipients": "a@example.com, b@example.com;\n\n c@example.com",
		"count": "3",
		"schedule_type": "weekly",
		"weekly_days": ["mon", "FRI"],
		"time_of_day_local": "9:05",
		"interval_hours": 4,
		"next_run_utc": "2025-01-01T00:00:00Z"
	}`)

	s, err := NormalizeSchedule(req)
	require.NoError(t, err)
	assert.Equal(t, "Weekly phishing", s.Name)
	assert.Equal(t, entity.EmailTypePhishing, s.EmailType)
	assert.Equal(t, []string{"a@example.com", "b@example.com", "c@example.com"}, []string(s.Recipients))
	assert.Equal(t, 3, s.Count)
	assert.Equal(t, []string{"Mon", "Fri"}, []string(s.WeeklyDays))
	assert.Equal(t, "09:05", s.TimeOfDayLocal)
	assert.True(t, s.Enabled)
	assert.Zero(t, s.IntervalHours, "fields of other schedule types are dropped")
	assert.Nil(t, s.RunAt)
	assert.JSONEq(t, `{"template_type":"warning"}`, string(s.Payload))
}

func TestNormalizeSchedule_OneOffAndInterval(t *testing.T) {
	s, err := NormalizeSchedule(decodeRequest(t, `{
		"name": "once", "email_type": "eicar", "recipients": ["x@example.com"],
		"schedule_type": "one_off", "next_run_utc": "2020-05-01T10:00:00+07:00"
	}`))
	require.NoError(t, err)
	require.NotNil(t, s.RunAt)
	assert.Equal(t, time.Date(2020, 5, 1, 3, 0, 0, 0, time.UTC), *s.RunAt, "past instants are accepted and stored in UTC")

	s, err = NormalizeSchedule(decodeRequest(t, `{
		"name": "every day", "email_type": "gtube", "recipients": ["x@example.com"],
		"count": 10, "schedule_type": "interval", "interval_hours": "24"
	}`))
	require.NoError(t, err)
	assert.Equal(t, 24, s.IntervalHours)
	assert.Equal(t, 10, s.Count, "stored count is kept; the gtube override applies at fire time")
}

func TestNormalizeSchedule_IntervalUpperBound(t *testing.T) {
	s, err := NormalizeSchedule(decodeRequest(t, `{
		"name": "rare", "email_type": "eicar", "recipients": ["x@example.com"],
		"schedule_type": "interval", "interval_hours": 2562047
	}`))
	require.NoError(t, err)
	assert.Equal(t, int(MaxIntervalHours), s.IntervalHours)

	_, err = NormalizeSchedule(decodeRequest(t, `{
		"name": "too rare", "email_type": "eicar", "recipients": ["x@example.com"],
		"schedule_type": "interval", "interval_hours": 3000000
	}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("interval_hours"))
}

func TestNormalizeSchedule_CountFallback(t *testing.T) {
	for body, want := range map[string]int{
		`"count": null`:  1,
		`"count": "abc"`: 1,
		`"count": 0`:     1,
		`"count": -4`:    1,
		`"count": "7"`:   7,
		`"count": 2.0`:   2,
	} {
		s, err := NormalizeSchedule(decodeRequest(t, `{"name":"n","email_type":"cynic","recipients":"a@b.c",
			"schedule_type":"interval","interval_hours":1,`+body+`}`))
		require.NoError(t, err, body)
		assert.Equal(t, want, s.Count, body)
	}
}

func TestNormalizeSchedule_EmptyRecipients(t *testing.T) {
	for _, recipients := range []string{`[]`, `""`, `" , ;"`, `["", "  "]`, `null`} {
		_, err := NormalizeSchedule(decodeRequest(t, `{"name":"n","email_type":"eicar","recipients":`+recipients+`,
			"schedule_type":"interval","interval_hours":1}`))
		require.Error(t, err, recipients)
		assert.Contains(t, messages(err), "recipients required", recipients)
	}
}

func TestNormalizeSchedule_ReportsEveryViolation(t *testing.T) {
	_, err := NormalizeSchedule(decodeRequest(t, `{
		"name": " ", "email_type": "sms", "recipients": [],
		"schedule_type": "weekly", "weekly_days": ["Mon", "mon", "Funday"], "time_of_day_local": "25:00"
	}`))
	require.Error(t, err)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	for _, field := range []string{"name", "email_type", "recipients", "weekly_days", "time_of_day_local"} {
		assert.True(t, verr.Has(field), field)
	}
	assert.Contains(t, messages(err), `duplicate weekday "Mon"`)
	assert.Contains(t, messages(err), `unknown weekday "Funday"`)
}

func TestNormalizeSchedule_TypeSpecificRequirements(t *testing.T) {
	tests := []struct {
		name  string
		body  string
		field string
	}{
		{"missing schedule type", `"schedule_type": ""`, "schedule_type"},
		{"unknown schedule type", `"schedule_type": "cron"`, "schedule_type"},
		{"one_off without time", `"schedule_type": "one_off"`, "next_run_utc"},
		{"one_off bad time", `"schedule_type": "one_off", "next_run_utc": "tomorrow"`, "next_run_utc"},
		{"interval missing", `"schedule_type": "interval"`, "interval_hours"},
		{"interval not a number", `"schedule_type": "interval", "interval_hours": "often"`, "interval_hours"},
		{"interval zero", `"schedule_type": "interval", "interval_hours": 0`, "interval_hours"},
		{"interval too long", `"schedule_type": "interval", "interval_hours": 2562048`, "interval_hours"},
		{"weekly no days", `"schedule_type": "weekly", "time_of_day_local": "09:00"`, "weekly_days"},
		{"weekly no time", `"schedule_type": "weekly", "weekly_days": ["Mon"]`, "time_of_day_local"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NormalizeSchedule(decodeRequest(t, `{"name":"n","email_type":"eicar","recipients":"a@b.c",`+tt.body+`}`))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.True(t, verr.Has(tt.field), "violations: %v", verr.Violations)
		})
	}
}

func TestNormalizeSchedule_CustomPayload(t *testing.T) {
	s, err := NormalizeSchedule(decodeRequest(t, `{
		"name": "custom", "email_type": "custom", "recipients": "a@b.c",
		"schedule_type": "interval", "interval_hours": 2,
		"subject": "Invoice", "body": "<p>Hello<br>there</p><script>x()</script><p>Bye</p>",
		"display_name": "Billing", "attachment_type": "PDF"
	}`))
	require.NoError(t, err)

	p, err := entity.DecodePayload(entity.EmailTypeCustom, s.Payload)
	require.NoError(t, err)
	custom := p.(entity.CustomPayload)
	assert.Equal(t, "Invoice", custom.Subject)
	assert.Equal(t, "Billing", custom.DisplayName)
	assert.Equal(t, ".pdf", custom.AttachmentType)
	assert.Equal(t, "Hello\nthere\nBye", custom.TextBody)

	_, err = NormalizeSchedule(decodeRequest(t, `{
		"name": "custom", "email_type": "custom", "recipients": "a@b.c",
		"schedule_type": "interval", "interval_hours": 2, "attachment_type": ".exe"
	}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("subject"))
	assert.True(t, verr.Has("body"))
	assert.True(t, verr.Has("attachment_type"))
}

func TestNormalizeSchedule_PhishingTemplate(t *testing.T) {
	_, err := NormalizeSchedule(decodeRequest(t, `{"name":"n","email_type":"phishing","recipients":"a@b.c",
		"schedule_type":"interval","interval_hours":1,"template_type":"scary"}`))
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("template_type"))
}

func TestPlainText(t *testing.T) {
	assert.Equal(t, "plain text", PlainText("  plain text "))
	assert.Equal(t, "Title\nline one\nline two", PlainText("<h1>Title</h1><div>line   one</div><div>line two</div>"))
}
