package telegram

import (
	"fmt"
	"strings"
	"time"

	"email-datagen/internal/entity"
)

// maxMessageLen keeps messages under Telegram's 4096 character limit.
const maxMessageLen = 4090

// maxListedErrors caps how many send errors a run alert lists.
const maxListedErrors = 5

var markdownEscaper = strings.NewReplacer("_", "\\_", "*", "\\*", "`", "\\`", "[", "\\[")

// EscapeMarkdown escapes the characters legacy Markdown treats as formatting.
func EscapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}

// FormatRunEventForTelegram formats a finished schedule firing into a Markdown alert.
// Times are shown in UTC and, when loc is not UTC, in loc as well.
func FormatRunEventForTelegram(event *entity.RunEvent, loc *time.Location) string {
	var sb strings.Builder

	var title, emoji string
	switch {
	case event.AutoDisabled:
		title, emoji = "Schedule auto-disabled", "⛔"
	case event.Status == entity.RunStatusError:
		title, emoji = "Schedule run error", "📛"
	case event.Status == entity.RunStatusFailure:
		title, emoji = "Schedule run failed", "⚠️"
	case event.Exhausted:
		title, emoji = "One-off schedule completed", "✅"
	default:
		title, emoji = "Schedule run", "🔔"
	}

	sb.WriteString(fmt.Sprintf("%s *%s*\n", emoji, title))
	sb.WriteString(fmt.Sprintf("📋 %s (%s)\n", EscapeMarkdown(event.Name), EscapeMarkdown(string(event.EmailType))))
	sb.WriteString(fmt.Sprintf("🕒 %s\n", formatInstant(event.OccurrenceAt, loc)))
	sb.WriteString(fmt.Sprintf("📨 Sent %d, failed %d\n", event.Sent, event.Failed))

	if event.FailureCount > 0 {
		sb.WriteString(fmt.Sprintf("🔁 Consecutive failures: %d\n", event.FailureCount))
	}

	if len(event.Errors) > 0 {
		sb.WriteString("\n*Errors:*\n")
		for i, e := range event.Errors {
			if i == maxListedErrors {
				sb.WriteString(fmt.Sprintf("• ... and %d more\n", len(event.Errors)-maxListedErrors))
				break
			}
			sb.WriteString(fmt.Sprintf("• %s\n", EscapeMarkdown(e)))
		}
	}

	switch {
	case event.AutoDisabled:
		sb.WriteString("\nThe schedule was disabled. Fix the cause and enable it again.\n")
	case event.NextRunAt != nil:
		sb.WriteString(fmt.Sprintf("\n⏭ Next run: %s\n", formatInstant(*event.NextRunAt, loc)))
	}

	return truncate(sb.String())
}

// FormatErrorAlertMessage formats an operational error that is not tied to a single run.
func FormatErrorAlertMessage(at time.Time, errType string, errMsg string, data string) string {
	return truncate(fmt.Sprintf("📛 [ERROR ALERT]\n%s\n🔧 %s\n⚠️ %s\n\n📄 Data: %s\n",
		at.UTC().Format("2006-01-02 15:04 MST"), EscapeMarkdown(errType), EscapeMarkdown(errMsg), EscapeMarkdown(data)))
}

func formatInstant(t time.Time, loc *time.Location) string {
	utc := t.UTC().Format("2006-01-02 15:04 MST")
	if loc == nil || loc == time.UTC {
		return utc
	}
	return fmt.Sprintf("%s (%s)", utc, t.In(loc).Format("2006-01-02 15:04 MST"))
}

func truncate(s string) string {
	if len(s) <= maxMessageLen {
		return s
	}
	return s[:maxMessageLen-3] + "..."
}
