package schedule

import (
	"time"

	"rota-engine/internal/models"
)

// WeekBlock is one seven-day slice of the table: a header row of dated
// column labels and one row per employee.
type WeekBlock struct {
	Header []string
	Rows   [][]string
}

// Table is the presentation form of an assignment, split into week
// blocks the way the published artifact lays them out. Duty managers
// come first, reserves after, each group in roster order.
type Table struct {
	Start time.Time
	Weeks []WeekBlock
}

const headerDateFormat = "Mon 02/01"

// Format renders an assignment into week blocks. Cell contents are the
// single-letter markers; reserve days that carry no duty stay blank.
func Format(a *models.Assignment, roster *models.Roster, cal *models.Calendar) *Table {
	employees := make([]*models.Employee, 0, len(roster.Employees))
	employees = append(employees, roster.DutyManagers()...)
	employees = append(employees, roster.Reserves()...)

	t := &Table{Start: cal.Start}
	for week := 0; week*7 < cal.Len(); week++ {
		first := week * 7
		last := first + 7
		if last > cal.Len() {
			last = cal.Len()
		}

		block := WeekBlock{Header: []string{"Name"}}
		for d := first; d < last; d++ {
			block.Header = append(block.Header, cal.Days[d].Date.Format(headerDateFormat))
		}
		for _, emp := range employees {
			row := []string{emp.Name}
			for d := first; d < last; d++ {
				row = append(row, a.Label(emp.Name, d).Marker())
			}
			block.Rows = append(block.Rows, row)
		}
		t.Weeks = append(t.Weeks, block)
	}
	return t
}
