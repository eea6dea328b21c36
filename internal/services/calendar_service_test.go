package services

import (
	"context"
	"testing"
	"time"

	"zaikan/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func logAt(t time.Time, direction string) *models.MovementLog {
	return &models.MovementLog{
		ID:         uuid.New(),
		ItemID:     uuid.New(),
		ItemName:   "Widget",
		Direction:  direction,
		Quantity:   1,
		OccurredAt: t,
	}
}

func TestMonthlySummary_CountsPerDay(t *testing.T) {
	loc := time.UTC
	day3 := time.Date(2026, time.August, 3, 9, 0, 0, 0, loc)

	entries := []*models.MovementLog{
		logAt(day3, models.DirectionIn),
		logAt(day3.Add(2*time.Hour), models.DirectionIn),
		logAt(day3.Add(5*time.Hour), models.DirectionOut),
		logAt(time.Date(2026, time.August, 15, 12, 0, 0, 0, loc), models.DirectionOut),
	}

	summaries := MonthlySummary(entries, 2026, time.August, loc)

	assert.Len(t, summaries, 31)
	assert.Equal(t, models.DaySummary{Day: 3, In: 2, Out: 1}, summaries[2])
	assert.Equal(t, models.DaySummary{Day: 15, In: 0, Out: 1}, summaries[14])
	// Days without movements still appear, with zero counts
	assert.Equal(t, models.DaySummary{Day: 1, In: 0, Out: 0}, summaries[0])
}

func TestMonthlySummary_EmptyMonth(t *testing.T) {
	summaries := MonthlySummary(nil, 2026, time.February, time.UTC)

	assert.Len(t, summaries, 28)
	for i, s := range summaries {
		assert.Equal(t, i+1, s.Day)
		assert.Zero(t, s.In)
		assert.Zero(t, s.Out)
	}
}

func TestMonthlySummary_LeapFebruary(t *testing.T) {
	summaries := MonthlySummary(nil, 2028, time.February, time.UTC)
	assert.Len(t, summaries, 29)
}

func TestMonthlySummary_IgnoresOtherMonths(t *testing.T) {
	loc := time.UTC
	entries := []*models.MovementLog{
		logAt(time.Date(2026, time.July, 31, 23, 0, 0, 0, loc), models.DirectionIn),
		logAt(time.Date(2026, time.September, 1, 0, 0, 0, 0, loc), models.DirectionOut),
	}

	summaries := MonthlySummary(entries, 2026, time.August, loc)
	for _, s := range summaries {
		assert.Zero(t, s.In)
		assert.Zero(t, s.Out)
	}
}

// Bucketing follows the local calendar day, not UTC: 23:30 UTC on the 3rd is
// already the 4th in a +02:00 zone.
func TestMonthlySummary_UsesLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	entries := []*models.MovementLog{
		logAt(time.Date(2026, time.August, 3, 23, 30, 0, 0, time.UTC), models.DirectionIn),
	}

	summaries := MonthlySummary(entries, 2026, time.August, loc)

	assert.Equal(t, 0, summaries[2].In)
	assert.Equal(t, 1, summaries[3].In)
}

func TestLogsForDate_KeepsInputOrder(t *testing.T) {
	loc := time.UTC
	day := time.Date(2026, time.August, 3, 0, 0, 0, 0, loc)

	first := logAt(day.Add(15*time.Hour), models.DirectionOut)
	second := logAt(day.Add(9*time.Hour), models.DirectionIn)
	other := logAt(day.AddDate(0, 0, 1), models.DirectionIn)

	got := LogsForDate([]*models.MovementLog{first, second, other}, day, loc)

	// Input order survives even when timestamps are out of order
	assert.Equal(t, []*models.MovementLog{first, second}, got)
}

func TestCalendarService_MonthQueriesFullRange(t *testing.T) {
	mockLogRepo := &MockMovementLogRepository{}
	loc := time.UTC
	userID := uuid.New()

	from := time.Date(2026, time.August, 1, 0, 0, 0, 0, loc)
	to := time.Date(2026, time.September, 1, 0, 0, 0, 0, loc)
	mockLogRepo.On("ListRange", mock.Anything, userID, from, to).
		Return([]*models.MovementLog{}, nil).Once()

	service := NewCalendarService(mockLogRepo, loc)
	summaries, err := service.Month(context.Background(), userID, 2026, time.August)

	assert.NoError(t, err)
	assert.Len(t, summaries, 31)
	mockLogRepo.AssertExpectations(t)
}

func TestCalendarService_DayReturnsEmptySliceNotNil(t *testing.T) {
	mockLogRepo := &MockMovementLogRepository{}
	loc := time.UTC
	userID := uuid.New()
	date := time.Date(2026, time.August, 3, 0, 0, 0, 0, loc)

	mockLogRepo.On("ListRange", mock.Anything, userID, date, date.AddDate(0, 0, 1)).
		Return(([]*models.MovementLog)(nil), nil).Once()

	service := NewCalendarService(mockLogRepo, loc)
	logs, err := service.Day(context.Background(), userID, date)

	assert.NoError(t, err)
	assert.NotNil(t, logs)
	assert.Empty(t, logs)
	mockLogRepo.AssertExpectations(t)
}
