package services

import (
	"context"
	"time"

	"zaikan/internal/models"
	"zaikan/internal/repositories"

	"github.com/google/uuid"
)

// CalendarService is a pure read-side consumer of the movement log: it
// never mutates anything.
type CalendarService interface {
	Month(ctx context.Context, userID uuid.UUID, year int, month time.Month) ([]models.DaySummary, error)
	Day(ctx context.Context, userID uuid.UUID, date time.Time) ([]*models.MovementLog, error)
}

type calendarService struct {
	logRepo repositories.MovementLogRepository
	loc     *time.Location
}

func NewCalendarService(logRepo repositories.MovementLogRepository, loc *time.Location) CalendarService {
	if loc == nil {
		loc = time.Local
	}
	return &calendarService{logRepo: logRepo, loc: loc}
}

func (s *calendarService) Month(ctx context.Context, userID uuid.UUID, year int, month time.Month) ([]models.DaySummary, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 1, 0)

	entries, err := s.logRepo.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	return MonthlySummary(entries, year, month, s.loc), nil
}

func (s *calendarService) Day(ctx context.Context, userID uuid.UUID, date time.Time) ([]*models.MovementLog, error) {
	from := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, s.loc)
	to := from.AddDate(0, 0, 1)

	entries, err := s.logRepo.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	if entries == nil {
		entries = []*models.MovementLog{}
	}
	return entries, nil
}

// MonthlySummary buckets movement log entries by calendar day in loc. Every
// day of the month is present; days without movements carry zero counts.
func MonthlySummary(entries []*models.MovementLog, year int, month time.Month, loc *time.Location) []models.DaySummary {
	if loc == nil {
		loc = time.Local
	}

	// Day 0 of the next month is the last day of this one
	daysInMonth := time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()

	summaries := make([]models.DaySummary, daysInMonth)
	for i := range summaries {
		summaries[i].Day = i + 1
	}

	for _, entry := range entries {
		t := entry.OccurredAt.In(loc)
		if t.Year() != year || t.Month() != month {
			continue
		}
		day := t.Day()
		switch entry.Direction {
		case models.DirectionIn:
			summaries[day-1].In++
		case models.DirectionOut:
			summaries[day-1].Out++
		}
	}
	return summaries
}

// LogsForDate filters entries to the given local day, keeping their input
// order.
func LogsForDate(entries []*models.MovementLog, date time.Time, loc *time.Location) []*models.MovementLog {
	if loc == nil {
		loc = time.Local
	}

	y, m, d := date.In(loc).Date()
	var out []*models.MovementLog
	for _, entry := range entries {
		ey, em, ed := entry.OccurredAt.In(loc).Date()
		if ey == y && em == m && ed == d {
			out = append(out, entry)
		}
	}
	return out
}
