package schedule

import (
	"testing"

	"rota-engine/internal/models"
)

func testAssignment(roster *models.Roster, cal *models.Calendar) *models.Assignment {
	a := &models.Assignment{Labels: map[string][]models.ShiftLabel{}}
	for _, e := range roster.Employees {
		labels := make([]models.ShiftLabel, cal.Len())
		for d := range labels {
			switch {
			case e.Role == models.Reserve:
				labels[d] = models.Blank
			case d%7 == 0:
				labels[d] = models.DayOff
			case d%2 == 0:
				labels[d] = models.Early
			default:
				labels[d] = models.Late
			}
		}
		a.Labels[e.Name] = labels
	}
	return a
}

func TestFormat_WeekBlocks(t *testing.T) {
	roster := testRoster()
	cal := testCalendar(t)
	table := Format(testAssignment(roster, cal), roster, cal)

	if !table.Start.Equal(cal.Start) {
		t.Errorf("Expected start %v, got %v", cal.Start, table.Start)
	}
	if len(table.Weeks) != 4 {
		t.Fatalf("Expected 4 week blocks, got %d", len(table.Weeks))
	}

	wk := table.Weeks[0]
	if len(wk.Header) != 8 {
		t.Fatalf("Expected Name plus 7 dates, got %d columns", len(wk.Header))
	}
	if wk.Header[0] != "Name" {
		t.Errorf("Expected Name header, got %q", wk.Header[0])
	}
	if wk.Header[1] != "Mon 05/01" {
		t.Errorf("Expected Mon 05/01, got %q", wk.Header[1])
	}
	if wk.Header[7] != "Sun 11/01" {
		t.Errorf("Expected Sun 11/01, got %q", wk.Header[7])
	}

	if len(wk.Rows) != len(roster.Employees) {
		t.Fatalf("Expected %d rows, got %d", len(roster.Employees), len(wk.Rows))
	}
	// Duty managers first, then reserves.
	if wk.Rows[0][0] != "Alice" || wk.Rows[4][0] != "Rita" {
		t.Errorf("Unexpected row order: %q ... %q", wk.Rows[0][0], wk.Rows[4][0])
	}

	// Day 0 is a day off, day 1 a Late, day 2 an Early.
	if wk.Rows[0][1] != "D/O" || wk.Rows[0][2] != "L" || wk.Rows[0][3] != "E" {
		t.Errorf("Unexpected markers: %v", wk.Rows[0][1:4])
	}
	// Reserve blanks render as empty cells.
	for _, cell := range wk.Rows[4][1:] {
		if cell != "" {
			t.Fatalf("Expected empty reserve cell, got %q", cell)
		}
	}

	// Week 2's header continues the date sequence.
	if table.Weeks[1].Header[1] != "Mon 12/01" {
		t.Errorf("Expected Mon 12/01, got %q", table.Weeks[1].Header[1])
	}
}
