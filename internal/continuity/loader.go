package continuity

import (
	"strings"
	"time"

	"go.uber.org/zap"

	"rota-engine/internal/calendar"
	"rota-engine/internal/models"
	"rota-engine/internal/output"
	"rota-engine/internal/schedule"
)

// Loader derives per-employee carryover from the most recent artifact
// preceding a period. Continuity is best-effort: anything that prevents
// a clean read degrades to a cold start with a warning, never a failed
// generation.
type Loader struct {
	src PeriodSource
	log *zap.Logger
}

func NewLoader(src PeriodSource, log *zap.Logger) *Loader {
	return &Loader{src: src, log: log}
}

// Load implements schedule.StateSource.
func (l *Loader) Load(start time.Time, roster *models.Roster) *models.ContinuityState {
	periods, err := l.src.Periods()
	if err != nil {
		l.log.Warn("cannot enumerate prior periods", zap.Error(err))
		return models.ColdStart()
	}

	var prior *Period
	for i := range periods {
		if periods[i].Start.Before(start) {
			prior = &periods[i]
		}
	}
	if prior == nil {
		return models.ColdStart()
	}
	if !prior.Start.AddDate(0, 0, calendar.DaysPerPeriod).Equal(start) {
		l.log.Warn("latest prior period is not contiguous, starting cold",
			zap.Time("prior", prior.Start), zap.Time("start", start))
		return models.ColdStart()
	}

	state, err := l.parse(*prior, roster)
	if err != nil {
		l.log.Warn("cannot parse prior artifact, starting cold",
			zap.String("path", prior.Path), zap.Error(err))
		return models.ColdStart()
	}
	return state
}

func (l *Loader) parse(p Period, roster *models.Roster) (*models.ContinuityState, error) {
	f, err := l.src.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	table, err := output.ReadTable(f, p.Start)
	if err != nil {
		return nil, err
	}
	final := table.Weeks[len(table.Weeks)-1]
	sat, sun := weekendColumns(final.Header)

	state := models.ColdStart()
	state.Source = p.Path
	for _, emp := range roster.Employees {
		row := findRow(final, emp.Name)
		if row == nil {
			// New hires have no history.
			continue
		}
		state.ByName[emp.Name] = models.EmployeeState{
			Consecutive: trailingWorked(row[1:]),
			WeekendOff:  weekendOff(row, sat, sun),
		}
	}
	return state, nil
}

func findRow(wk schedule.WeekBlock, name string) []string {
	for _, row := range wk.Rows {
		if len(row) > 0 && row[0] == name {
			return row
		}
	}
	return nil
}

// trailingWorked counts the run of worked days ending the final week.
// Cells that fail to parse are treated as worked: overcounting only
// tightens the consecutive-days cap, which is the safe direction.
func trailingWorked(cells []string) int {
	n := 0
	for i := len(cells) - 1; i >= 0; i-- {
		label, ok := models.LabelFromMarker(strings.TrimSpace(cells[i]))
		if ok && !label.Working() {
			break
		}
		if ok && label.Working() {
			n++
			continue
		}
		n++
	}
	return n
}

func weekendOff(row []string, sat, sun int) bool {
	off := func(col int) bool {
		if col < 0 || col >= len(row) {
			return false
		}
		label, ok := models.LabelFromMarker(strings.TrimSpace(row[col]))
		return ok && !label.Working()
	}
	return off(sat) && off(sun)
}

// weekendColumns locates the Saturday and Sunday columns by the weekday
// prefix the header dates carry. Returns -1 for a column that cannot be
// found.
func weekendColumns(header []string) (sat, sun int) {
	sat, sun = -1, -1
	for i, h := range header {
		switch {
		case strings.HasPrefix(h, "Sat"):
			sat = i
		case strings.HasPrefix(h, "Sun"):
			sun = i
		}
	}
	return sat, sun
}

var _ schedule.StateSource = (*Loader)(nil)
