// Package rules parses and validates the persistent roster rules and
// the temporary per-period overrides, exposing the merged result as a
// normalized, read-only roster.
package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"time"

	"rota-engine/internal/calendar"
	"rota-engine/internal/models"
)

// DateFormat is the date layout used throughout both rule documents.
const DateFormat = "2006/01/02"

type rulesDoc struct {
	DutyManagers []string `json:"employees-duty_manager"`
	Reserves     []string `json:"employees-duty_manager-reserve"`
	Rules        struct {
		Required  requiredRules  `json:"required"`
		Preferred preferredRules `json:"preferred"`
	} `json:"Rules"`
}

type requiredRules struct {
	WorkingDays          map[string]int      `json:"Working Days"`
	DaysWontWork         map[string]string   `json:"Days won't work"`
	// The lowercase "work" is historical; existing rule documents
	// carry the key this way.
	WillWorkEarly        []string            `json:"Will work Early"`
	WillWorkMiddle       []string            `json:"Will Work Middle"`
	WillWorkLate         []string            `json:"Will Work Late"`
	NoLateToEarly        []string            `json:"No Late to Early"`
	EveryOtherWeekendOff []string            `json:"Every other weekend off"`
}

type preferredRules struct {
	EarlyShifts  []string `json:"Early Shifts"`
	MiddleShifts []string `json:"Middle Shifts"`
	LateShifts   []string `json:"Late Shifts"`
}

type overrideDoc struct {
	Required map[string]json.RawMessage `json:"Required"`
}

type globalOverride struct {
	StartDate string `json:"Start Date"`
}

type employeeOverride struct {
	DaysOff []string `json:"days off"`
	Early   string   `json:"Early"`
	Middle  string   `json:"Middle"`
	Late    string   `json:"Late"`
	Holiday struct {
		Active bool   `json:"active"`
		Start  string `json:"start"`
		End    string `json:"end"`
	} `json:"holiday"`
}

// Load reads both documents from disk. A missing or structurally
// invalid document is a ConfigurationError.
func Load(rulesPath, overridesPath string) (*models.Roster, time.Time, error) {
	rulesData, err := os.ReadFile(rulesPath)
	if err != nil {
		return nil, time.Time{}, &models.ConfigurationError{Reason: "reading rules document", Err: err}
	}
	overrideData, err := os.ReadFile(overridesPath)
	if err != nil {
		return nil, time.Time{}, &models.ConfigurationError{Reason: "reading overrides document", Err: err}
	}
	return Parse(rulesData, overrideData)
}

// Parse builds the normalized roster from the raw documents, merging
// temporary overrides on top of persistent rules for the period window
// only. Conflicting requirements are a ValidationError.
func Parse(rulesData, overrideData []byte) (*models.Roster, time.Time, error) {
	var doc rulesDoc
	if err := json.Unmarshal(rulesData, &doc); err != nil {
		return nil, time.Time{}, &models.ConfigurationError{Reason: "malformed rules document", Err: err}
	}
	var overrides overrideDoc
	if err := json.Unmarshal(overrideData, &overrides); err != nil {
		return nil, time.Time{}, &models.ConfigurationError{Reason: "malformed overrides document", Err: err}
	}

	start, err := parseStartDate(overrides)
	if err != nil {
		return nil, time.Time{}, err
	}

	roster, err := buildRoster(doc)
	if err != nil {
		return nil, time.Time{}, err
	}
	v := &validator{}
	applyRules(roster, doc.Rules.Required, doc.Rules.Preferred, v)
	applyOverrides(roster, overrides, start, v)
	validateRoster(roster, v)
	if err := v.err(); err != nil {
		return nil, time.Time{}, err
	}
	return roster, start, nil
}

func parseStartDate(doc overrideDoc) (time.Time, error) {
	raw, ok := doc.Required["Everyone"]
	if !ok {
		return time.Time{}, &models.ConfigurationError{Reason: "overrides document has no Everyone section"}
	}
	var global globalOverride
	if err := json.Unmarshal(raw, &global); err != nil {
		return time.Time{}, &models.ConfigurationError{Reason: "malformed Everyone section", Err: err}
	}
	if global.StartDate == "" {
		return time.Time{}, &models.ConfigurationError{Reason: "start date is missing"}
	}
	start, err := time.Parse(DateFormat, global.StartDate)
	if err != nil {
		return time.Time{}, &models.ConfigurationError{Reason: "unparseable start date " + global.StartDate, Err: err}
	}
	return calendar.Midnight(start), nil
}

func buildRoster(doc rulesDoc) (*models.Roster, error) {
	if len(doc.DutyManagers) == 0 {
		return nil, &models.ConfigurationError{Reason: "no duty managers configured"}
	}
	roster := &models.Roster{}
	seen := map[string]bool{}
	add := func(name string, role models.Role) error {
		if seen[name] {
			return &models.ConfigurationError{Reason: "employee " + name + " listed in both role lists"}
		}
		seen[name] = true
		roster.Employees = append(roster.Employees, &models.Employee{
			Name:              name,
			Role:              role,
			ForbiddenWeekdays: map[time.Weekday]bool{},
			EligibleShifts:    map[models.ShiftLabel]bool{},
			PreferredShifts:   map[models.ShiftLabel]bool{},
			Overrides: models.Overrides{
				Shifts:  map[time.Time]models.ShiftLabel{},
				DaysOff: map[time.Time]bool{},
			},
		})
		return nil
	}
	for _, name := range doc.DutyManagers {
		if err := add(name, models.DutyManager); err != nil {
			return nil, err
		}
	}
	for _, name := range doc.Reserves {
		if err := add(name, models.Reserve); err != nil {
			return nil, err
		}
	}
	return roster, nil
}

type validator struct {
	conflicts []string
}

func (v *validator) addf(format string, args ...interface{}) {
	v.conflicts = append(v.conflicts, fmt.Sprintf(format, args...))
}

func (v *validator) err() error {
	if len(v.conflicts) == 0 {
		return nil
	}
	sort.Strings(v.conflicts)
	return &models.ValidationError{Conflicts: v.conflicts}
}

func applyRules(roster *models.Roster, req requiredRules, pref preferredRules, v *validator) {
	lookup := func(rule, name string) *models.Employee {
		e := roster.ByName(name)
		if e == nil {
			v.addf("rule %q names unknown employee %q", rule, name)
		}
		return e
	}
	eligible := func(rule string, names []string, label models.ShiftLabel) {
		for _, name := range names {
			if e := lookup(rule, name); e != nil {
				e.EligibleShifts[label] = true
			}
		}
	}
	eligible("Will work Early", req.WillWorkEarly, models.Early)
	eligible("Will Work Middle", req.WillWorkMiddle, models.Middle)
	eligible("Will Work Late", req.WillWorkLate, models.Late)

	for name, quota := range req.WorkingDays {
		if e := lookup("Working Days", name); e != nil {
			if quota <= 0 {
				v.addf("rule %q has non-positive quota %d for %q", "Working Days", quota, name)
			}
			e.Quota = quota
		}
	}
	for name, day := range req.DaysWontWork {
		e := lookup("Days won't work", name)
		if e == nil {
			continue
		}
		wd, ok := parseWeekday(day)
		if !ok {
			v.addf("rule %q has unknown weekday %q for %q", "Days won't work", day, name)
			continue
		}
		e.ForbiddenWeekdays[wd] = true
	}
	for _, name := range req.NoLateToEarly {
		if e := lookup("No Late to Early", name); e != nil {
			e.NoLateToEarly = true
		}
	}
	for _, name := range req.EveryOtherWeekendOff {
		if e := lookup("Every other weekend off", name); e != nil {
			e.AlternateWeekendsOff = true
		}
	}

	preferred := func(rule string, names []string, label models.ShiftLabel) {
		for _, name := range names {
			if e := lookup(rule, name); e != nil {
				e.PreferredShifts[label] = true
			}
		}
	}
	preferred("Early Shifts", pref.EarlyShifts, models.Early)
	preferred("Middle Shifts", pref.MiddleShifts, models.Middle)
	preferred("Late Shifts", pref.LateShifts, models.Late)
}

// applyOverrides merges the temporary document on top of the roster.
// Override dates outside the 28-day window are dropped.
func applyOverrides(roster *models.Roster, doc overrideDoc, start time.Time, v *validator) {
	end := start.AddDate(0, 0, calendar.DaysPerPeriod-1)
	window := models.DateRange{Start: start, End: end}

	for name, raw := range doc.Required {
		if name == "Everyone" {
			continue
		}
		e := roster.ByName(name)
		if e == nil {
			v.addf("override names unknown employee %q", name)
			continue
		}
		var ov employeeOverride
		if err := json.Unmarshal(raw, &ov); err != nil {
			v.addf("override for %q is malformed: %v", name, err)
			continue
		}
		for _, raw := range ov.DaysOff {
			if raw == "" {
				continue
			}
			date, ok := parseDate(raw, name, "days off", v)
			if ok && window.Contains(date) {
				e.Overrides.DaysOff[date] = true
			}
		}
		forced := []struct {
			field string
			raw   string
			label models.ShiftLabel
		}{
			{"Early", ov.Early, models.Early},
			{"Middle", ov.Middle, models.Middle},
			{"Late", ov.Late, models.Late},
		}
		for _, f := range forced {
			if f.raw == "" {
				continue
			}
			date, ok := parseDate(f.raw, name, f.field, v)
			if !ok || !window.Contains(date) {
				continue
			}
			if prev, dup := e.Overrides.Shifts[date]; dup && prev != f.label {
				v.addf("override for %q forces both %s and %s on %s", name, prev, f.label, f.raw)
				continue
			}
			e.Overrides.Shifts[date] = f.label
		}
		if ov.Holiday.Active {
			hs, ok1 := parseDate(ov.Holiday.Start, name, "holiday start", v)
			he, ok2 := parseDate(ov.Holiday.End, name, "holiday end", v)
			if ok1 && ok2 {
				if he.Before(hs) {
					v.addf("holiday for %q ends before it starts", name)
				} else if !hs.After(end) && !he.Before(start) {
					e.Overrides.Holiday = &models.DateRange{Start: hs, End: he}
				}
			}
		}
	}
}

// validateRoster flags requirements that can never be satisfied
// together, by rule identity, instead of silently resolving them.
func validateRoster(roster *models.Roster, v *validator) {
	for _, e := range roster.Employees {
		if e.Quota == 0 {
			v.addf("rule %q has no entry for %q", "Working Days", e.Name)
		}
		if len(e.EligibleShifts) == 0 {
			v.addf("employee %q is in no Will Work list", e.Name)
		}
		for date, label := range e.Overrides.Shifts {
			day := date.Format(DateFormat)
			if !e.EligibleShifts[label] {
				v.addf("forced %s for %q on %s conflicts with their Will Work rules", label, e.Name, day)
			}
			if e.ForbiddenWeekdays[date.Weekday()] {
				v.addf("forced %s for %q on %s conflicts with rule %q", label, e.Name, day, "Days won't work")
			}
			if e.Overrides.DaysOff[date] {
				v.addf("forced %s for %q on %s conflicts with their days off override", label, e.Name, day)
			}
			if e.Overrides.Holiday != nil && e.Overrides.Holiday.Contains(date) {
				v.addf("forced %s for %q on %s falls inside their holiday", label, e.Name, day)
			}
		}
	}
}

func parseDate(raw, name, field string, v *validator) (time.Time, bool) {
	date, err := time.Parse(DateFormat, raw)
	if err != nil {
		v.addf("override %s for %q has unparseable date %q", field, name, raw)
		return time.Time{}, false
	}
	return calendar.Midnight(date), true
}

func parseWeekday(name string) (time.Weekday, bool) {
	for wd := time.Sunday; wd <= time.Saturday; wd++ {
		if wd.String() == name {
			return wd, true
		}
	}
	return 0, false
}
