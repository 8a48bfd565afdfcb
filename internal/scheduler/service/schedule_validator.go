package service

import (
	"strings"

	"email-datagen/internal/entity"
	"email-datagen/internal/scheduler/dto"
	"email-datagen/pkg/utils"

	"github.com/PuerkitoBio/goquery"
)

// NormalizeSchedule validates a schedule request and builds the normalized entity.
// Every violated rule is reported, not just the first. The returned schedule carries no id,
// timestamps or computed next run; those are assigned by the caller.
func NormalizeSchedule(req *dto.ScheduleRequest) (*entity.Schedule, error) {
	verr := &ValidationError{}
	s := &entity.Schedule{Enabled: true}

	s.Name = strings.TrimSpace(req.Name)
	if s.Name == "" {
		verr.add("name", "name required")
	}

	s.EmailType = entity.EmailType(strings.ToLower(strings.TrimSpace(req.EmailType)))
	switch {
	case s.EmailType == "":
		verr.add("email_type", "email_type required")
	case !s.EmailType.IsValid():
		verr.add("email_type", "unknown email_type %q", req.EmailType)
	}

	recipients := make([]string, 0, len(req.Recipients))
	for _, r := range req.Recipients {
		if r = strings.TrimSpace(r); r != "" {
			recipients = append(recipients, r)
		}
	}
	if len(recipients) == 0 {
		verr.add("recipients", "recipients required")
	}
	s.Recipients = recipients

	s.Count = 1
	if req.Count.Valid && req.Count.Value > 1 {
		s.Count = req.Count.Value
	}

	s.ConfigName = strings.TrimSpace(req.ConfigName)
	if req.Enabled != nil {
		s.Enabled = *req.Enabled
	}

	normalizePayload(req, s, verr)
	normalizeTiming(req, s, verr)

	if len(verr.Violations) > 0 {
		return nil, verr
	}
	return s, nil
}

func normalizeTiming(req *dto.ScheduleRequest, s *entity.Schedule, verr *ValidationError) {
	s.ScheduleType = entity.ScheduleType(strings.ToLower(strings.TrimSpace(req.ScheduleType)))
	switch s.ScheduleType {
	case "":
		verr.add("schedule_type", "schedule_type required")
	case entity.ScheduleTypeOneOff:
		if strings.TrimSpace(req.NextRunUTC) == "" {
			verr.add("next_run_utc", "next_run_utc required for one_off schedules")
			return
		}
		at, err := utils.ParseUTC(req.NextRunUTC)
		if err != nil {
			verr.add("next_run_utc", "next_run_utc must be an ISO-8601 instant")
			return
		}
		s.RunAt = &at
	case entity.ScheduleTypeInterval:
		switch {
		case !req.IntervalHours.Set:
			verr.add("interval_hours", "interval_hours required for interval schedules")
		case !req.IntervalHours.Valid:
			verr.add("interval_hours", "interval_hours must be an integer")
		case req.IntervalHours.Value < 1:
			verr.add("interval_hours", "interval_hours must be at least 1")
		case int64(req.IntervalHours.Value) > MaxIntervalHours:
			verr.add("interval_hours", "interval_hours must be at most %d", MaxIntervalHours)
		default:
			s.IntervalHours = req.IntervalHours.Value
		}
	case entity.ScheduleTypeWeekly:
		normalizeWeekly(req, s, verr)
	default:
		verr.add("schedule_type", "unknown schedule_type %q", req.ScheduleType)
	}
}

func normalizeWeekly(req *dto.ScheduleRequest, s *entity.Schedule, verr *ValidationError) {
	if len(req.WeeklyDays) == 0 {
		verr.add("weekly_days", "weekly_days required for weekly schedules")
	} else {
		seen := make(map[entity.Weekday]bool, len(req.WeeklyDays))
		days := make([]string, 0, len(req.WeeklyDays))
		for _, raw := range req.WeeklyDays {
			d, ok := entity.ParseWeekday(raw)
			if !ok {
				verr.add("weekly_days", "unknown weekday %q", raw)
				continue
			}
			if seen[d] {
				verr.add("weekly_days", "duplicate weekday %q", string(d))
				continue
			}
			seen[d] = true
			days = append(days, string(d))
		}
		s.WeeklyDays = days
	}

	if strings.TrimSpace(req.TimeOfDayLocal) == "" {
		verr.add("time_of_day_local", "time_of_day_local required for weekly schedules")
		return
	}
	hour, minute, err := utils.ParseTimeOfDay(req.TimeOfDayLocal)
	if err != nil {
		verr.add("time_of_day_local", "time_of_day_local must be a 24-hour HH:MM time")
		return
	}
	s.TimeOfDayLocal = utils.FormatTimeOfDay(hour, minute)
}

func normalizePayload(req *dto.ScheduleRequest, s *entity.Schedule, verr *ValidationError) {
	var payload entity.EmailPayload
	switch s.EmailType {
	case entity.EmailTypePhishing:
		template := strings.ToLower(strings.TrimSpace(req.TemplateType))
		if template == "" {
			template = entity.PhishingTemplateWarning
		}
		if !contains(entity.PhishingTemplates, template) {
			verr.add("template_type", "template_type must be one of %s", strings.Join(entity.PhishingTemplates, ", "))
			return
		}
		payload = entity.PhishingPayload{TemplateType: template}
	case entity.EmailTypeCustom:
		custom := entity.CustomPayload{
			Subject:        strings.TrimSpace(req.Subject),
			Body:           strings.TrimSpace(req.Body),
			DisplayName:    strings.TrimSpace(req.DisplayName),
			AttachmentType: strings.ToLower(strings.TrimSpace(req.AttachmentType)),
		}
		if custom.Subject == "" {
			verr.add("subject", "subject required for custom emails")
		}
		if custom.Body == "" {
			verr.add("body", "body required for custom emails")
		}
		if custom.AttachmentType != "" {
			if !strings.HasPrefix(custom.AttachmentType, ".") {
				custom.AttachmentType = "." + custom.AttachmentType
			}
			if !contains(entity.AttachmentTypes, custom.AttachmentType) {
				verr.add("attachment_type", "attachment_type must be one of %s", strings.Join(entity.AttachmentTypes, ", "))
			}
		}
		custom.TextBody = PlainText(custom.Body)
		payload = custom
	case entity.EmailTypeEICAR:
		payload = entity.EICARPayload{}
	case entity.EmailTypeCynic:
		payload = entity.CynicPayload{}
	case entity.EmailTypeGTUBE:
		payload = entity.GTUBEPayload{}
	default:
		return
	}

	raw, err := entity.EncodePayload(payload)
	if err != nil {
		verr.add("payload", "%s", err.Error())
		return
	}
	s.Payload = raw
}

// PlainText renders an HTML body as whitespace-collapsed text. Non-HTML input is returned trimmed.
func PlainText(body string) string {
	if !strings.Contains(body, "<") {
		return strings.TrimSpace(body)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return strings.TrimSpace(body)
	}
	doc.Find("script, style").Remove()
	doc.Find("br").ReplaceWithHtml("\n")
	doc.Find("p, div, li, tr, h1, h2, h3, h4, h5, h6").Each(func(_ int, sel *goquery.Selection) {
		sel.AppendHtml("\n")
	})

	lines := strings.Split(doc.Text(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.Join(strings.Fields(line), " "); line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
