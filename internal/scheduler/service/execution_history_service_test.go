package service

import (
	"context"
	"testing"
	"time"

	"email-datagen/internal/entity"
	"email-datagen/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutionHistoryService(t *testing.T) {
	schedules := newMemScheduleRepo(intervalSchedule("hist", 1, baseTime))
	runs := newMemRunRepo()
	ctx := context.Background()

	first := &entity.ScheduleRun{ScheduleID: "hist", OccurrenceAt: baseTime, EmailType: entity.EmailTypeEICAR,
		Status: entity.RunStatusSuccess, Sent: 1, StartedAt: baseTime}
	first.CompletedAt.Time = baseTime.Add(1500 * time.Millisecond)
	first.CompletedAt.Valid = true
	require.NoError(t, runs.Create(ctx, first))
	require.NoError(t, runs.Create(ctx, &entity.ScheduleRun{ScheduleID: "hist", OccurrenceAt: baseTime.Add(time.Hour),
		EmailType: entity.EmailTypeEICAR, Status: entity.RunStatusRunning, StartedAt: baseTime.Add(time.Hour)}))

	svc := NewExecutionHistoryService(runs, schedules, logger.NewNop())

	got, err := svc.GetExecutionHistoryByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "success", got.Status)
	assert.Equal(t, int64(1500), got.Duration)
	require.NotNil(t, got.CompletedAt)

	all, err := svc.GetAllExecutionHistories(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	bySchedule, err := svc.GetExecutionHistoriesByScheduleID(ctx, "hist", 1)
	require.NoError(t, err)
	require.Len(t, bySchedule, 1)
	assert.Equal(t, "running", bySchedule[0].Status)
	assert.Nil(t, bySchedule[0].CompletedAt)

	_, err = svc.GetExecutionHistoryByID(ctx, 999)
	assert.ErrorIs(t, err, ErrExecutionNotFound)
	_, err = svc.GetExecutionHistoriesByScheduleID(ctx, "missing", 10)
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}
