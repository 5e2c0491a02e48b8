// Package calendar expands a configured start date into the fixed
// 28-day scheduling window.
package calendar

import (
	"time"

	"rota-engine/internal/models"
)

const (
	DaysPerWeek    = 7
	WeeksPerPeriod = 4
	DaysPerPeriod  = DaysPerWeek * WeeksPerPeriod
)

// Build returns the 28 contiguous calendar days starting at start,
// week-indexed 1-4, with IsWeekend set for Saturday and Sunday. The
// time-of-day component of start is discarded.
func Build(start time.Time) (*models.Calendar, error) {
	if start.IsZero() {
		return nil, &models.ConfigurationError{Reason: "start date is missing"}
	}
	start = Midnight(start)
	cal := &models.Calendar{
		Start: start,
		Days:  make([]models.CalendarDay, DaysPerPeriod),
	}
	for i := range cal.Days {
		date := start.AddDate(0, 0, i)
		wd := date.Weekday()
		cal.Days[i] = models.CalendarDay{
			Date:      date,
			Week:      i/DaysPerWeek + 1,
			Weekday:   wd,
			IsWeekend: wd == time.Saturday || wd == time.Sunday,
		}
	}
	return cal, nil
}

// Midnight normalizes a date to midnight UTC so dates compare with
// Equal regardless of how they were parsed.
func Midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
