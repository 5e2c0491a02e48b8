package models

import "time"

type CalendarDay struct {
	Date      time.Time
	Week      int // 1-4
	Weekday   time.Weekday
	IsWeekend bool
}

// Calendar is the immutable 28-day window of one period.
type Calendar struct {
	Start time.Time
	Days  []CalendarDay
}

func (c *Calendar) Len() int {
	return len(c.Days)
}

// Index returns the day offset of a date within the window, or -1.
func (c *Calendar) Index(t time.Time) int {
	for i, d := range c.Days {
		if d.Date.Equal(t) {
			return i
		}
	}
	return -1
}

// Weekends lists the (Saturday, Sunday) day-index pairs that fall
// adjacently inside the window, in order.
func (c *Calendar) Weekends() [][2]int {
	var out [][2]int
	for i := 0; i+1 < len(c.Days); i++ {
		if c.Days[i].Weekday == time.Saturday && c.Days[i+1].Weekday == time.Sunday {
			out = append(out, [2]int{i, i + 1})
		}
	}
	return out
}
