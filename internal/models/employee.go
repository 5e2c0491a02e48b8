package models

import "time"

// Role partitions the roster: duty managers carry the coverage
// obligations and work their quota exactly, reserves fill shortfalls up
// to a maximum.
type Role int

const (
	DutyManager Role = iota
	Reserve
)

func (r Role) String() string {
	if r == Reserve {
		return "Reserve"
	}
	return "DutyManager"
}

type DateRange struct {
	Start time.Time
	End   time.Time
}

func (r DateRange) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// Overrides are per-date temporary rules layered on top of an
// employee's persistent rules for a single period.
type Overrides struct {
	Shifts  map[time.Time]ShiftLabel // forced working shift on a date
	DaysOff map[time.Time]bool
	Holiday *DateRange
}

// ForcedOff reports whether the date is explicitly non-working, either
// by a day-off override or a holiday interval.
func (o Overrides) ForcedOff(t time.Time) bool {
	if o.DaysOff[t] {
		return true
	}
	return o.Holiday != nil && o.Holiday.Contains(t)
}

type Employee struct {
	Name                 string
	Role                 Role
	Quota                int // working days per period; exact for duty managers, max for reserves
	ForbiddenWeekdays    map[time.Weekday]bool
	EligibleShifts       map[ShiftLabel]bool
	PreferredShifts      map[ShiftLabel]bool
	NoLateToEarly        bool
	AlternateWeekendsOff bool
	Overrides            Overrides
}

func (e *Employee) Eligible(l ShiftLabel) bool {
	return e.EligibleShifts[l]
}
