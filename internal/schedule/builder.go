package schedule

import (
	"fmt"

	"rota-engine/internal/models"
	"rota-engine/internal/solver"
)

// Constraint family tags. They name the generated constraints for
// inspection and show up in infeasibility reports.
const (
	famOneLabel        = "one_label_per_day"
	famForbiddenDays   = "forbidden_days"
	famOverrides       = "overrides"
	famQuota           = "quota"
	famCoverage        = "daily_coverage"
	famReservePriority = "reserve_priority"
	famHeadcount       = "headcount_cap"
	famWeekendMiddle   = "no_weekend_middle"
	famLateToEarly     = "no_late_to_early"
	famConsecutive     = "consecutive_cap"
	famAlternation     = "weekend_alternation"
	famWeekendPref     = "weekend_preference"
)

// maxHeadcount caps total working employees on any single day.
const maxHeadcount = 4

// maxConsecutive is the longest permitted run of working days,
// counting days carried over from the previous period.
const maxConsecutive = 6

// Weights tune the preference objective.
type Weights struct {
	Preference     int64
	WeekendFull    int64
	WeekendPartial int64
}

func DefaultWeights() Weights {
	return Weights{Preference: 2000, WeekendFull: 5000, WeekendPartial: 2500}
}

type varKey struct {
	emp   int
	day   int
	label models.ShiftLabel
}

// builder translates roster + calendar + carryover state into one
// boolean decision per (employee, day, label) plus the hard-constraint
// families and the preference objective.
type builder struct {
	roster *models.Roster
	cal    *models.Calendar
	state  *models.ContinuityState
	w      Weights

	m        *solver.Model
	vars     map[varKey]solver.Var
	families []string
}

func newBuilder(roster *models.Roster, cal *models.Calendar, state *models.ContinuityState, w Weights) *builder {
	return &builder{
		roster: roster,
		cal:    cal,
		state:  state,
		w:      w,
		m:      solver.NewModel(),
		vars:   map[varKey]solver.Var{},
	}
}

func (b *builder) build() *solver.Model {
	b.createVariables()
	b.addForbiddenDays()
	b.addOverrides()
	b.addQuotas()
	b.addCoverage()
	b.addReservePriority()
	b.addHeadcountCap()
	b.addWeekendMiddleBan()
	b.addLateToEarlyBan()
	b.addConsecutiveCap()
	b.addWeekendAlternation()
	b.addObjective()
	return b.m
}

// createVariables shapes the search space: labels an employee can
// never hold are simply never created. Duty managers get their
// eligible working shifts plus DayOff; reserves get their eligible
// working shifts plus Blank, except on explicitly forced-off days
// where DayOff is the only label. Day-major order keeps the search
// resolving each day's coverage before moving on.
func (b *builder) createVariables() {
	for d, day := range b.cal.Days {
		for ei, e := range b.roster.Employees {
			if e.Role == models.Reserve && e.Overrides.ForcedOff(day.Date) {
				b.newVar(ei, d, models.DayOff)
				b.m.AddSum(famOneLabel, b.dayVars(ei, d), solver.EQ, 1)
				continue
			}
			for _, l := range models.WorkingShifts {
				if e.Eligible(l) {
					b.newVar(ei, d, l)
				}
			}
			if e.Role == models.DutyManager {
				b.newVar(ei, d, models.DayOff)
			} else {
				b.newVar(ei, d, models.Blank)
			}
			b.m.AddSum(famOneLabel, b.dayVars(ei, d), solver.EQ, 1)
		}
	}
	b.families = append(b.families, famOneLabel)
}

func (b *builder) newVar(ei, d int, l models.ShiftLabel) solver.Var {
	v := b.m.NewBool(fmt.Sprintf("%s/%d/%s", b.roster.Employees[ei].Name, d, l))
	b.vars[varKey{ei, d, l}] = v
	return v
}

func (b *builder) lookup(ei, d int, l models.ShiftLabel) (solver.Var, bool) {
	v, ok := b.vars[varKey{ei, d, l}]
	return v, ok
}

// dayVars lists every label variable of one employee on one day.
func (b *builder) dayVars(ei, d int) []solver.Var {
	var out []solver.Var
	for l := models.Early; l <= models.Blank; l++ {
		if v, ok := b.lookup(ei, d, l); ok {
			out = append(out, v)
		}
	}
	return out
}

// workVars lists the working-label variables of one employee on one
// day. Because labels are exactly-one, their sum is the employee's
// working indicator for the day.
func (b *builder) workVars(ei, d int) []solver.Var {
	var out []solver.Var
	for _, l := range models.WorkingShifts {
		if v, ok := b.lookup(ei, d, l); ok {
			out = append(out, v)
		}
	}
	return out
}

// offVar is the single non-working label of one employee on one day:
// DayOff for duty managers, Blank for reserves except on forced-off
// days.
func (b *builder) offVar(ei, d int) solver.Var {
	if v, ok := b.lookup(ei, d, models.DayOff); ok {
		return v
	}
	v, _ := b.lookup(ei, d, models.Blank)
	return v
}

func (b *builder) addForbiddenDays() {
	added := false
	for ei, e := range b.roster.Employees {
		for d, day := range b.cal.Days {
			if !e.ForbiddenWeekdays[day.Weekday] {
				continue
			}
			for _, v := range b.workVars(ei, d) {
				b.m.Fix(v, 0)
				added = true
			}
		}
	}
	if added {
		b.families = append(b.families, famForbiddenDays)
	}
}

// addOverrides pins forced shifts to 1 and forced-off/holiday days to
// the non-working label, regardless of anything else.
func (b *builder) addOverrides() {
	added := false
	for ei, e := range b.roster.Employees {
		for d, day := range b.cal.Days {
			if e.Overrides.ForcedOff(day.Date) {
				if v, ok := b.lookup(ei, d, models.DayOff); ok {
					b.m.Fix(v, 1)
					added = true
				}
			}
			if l, ok := e.Overrides.Shifts[day.Date]; ok {
				if v, exists := b.lookup(ei, d, l); exists {
					b.m.Fix(v, 1)
					added = true
				}
			}
		}
	}
	if added {
		b.families = append(b.families, famOverrides)
	}
}

// addQuotas pins each employee's period working-day total: exact for
// duty managers, a ceiling for reserves.
func (b *builder) addQuotas() {
	for ei, e := range b.roster.Employees {
		var vars []solver.Var
		for d := range b.cal.Days {
			vars = append(vars, b.workVars(ei, d)...)
		}
		op := solver.EQ
		if e.Role == models.Reserve {
			op = solver.LE
		}
		b.m.AddSum(famQuota, vars, op, e.Quota)
	}
	b.families = append(b.families, famQuota)
}

// addCoverage requires at least one Early and one Late assignment every
// day, summed over every eligible employee regardless of role. Reserves
// count toward coverage, but addReservePriority forces their booleans
// to zero whenever a duty manager holds the shift, so a reserve fills a
// slot only when no duty manager does.
func (b *builder) addCoverage() {
	for d := range b.cal.Days {
		var early, late []solver.Var
		for ei := range b.roster.Employees {
			if v, ok := b.lookup(ei, d, models.Early); ok {
				early = append(early, v)
			}
			if v, ok := b.lookup(ei, d, models.Late); ok {
				late = append(late, v)
			}
		}
		b.m.AddSum(famCoverage, early, solver.GE, 1)
		b.m.AddSum(famCoverage, late, solver.GE, 1)
	}
	b.families = append(b.families, famCoverage)
}

// addReservePriority permits a reserve on a shift only when no duty
// manager holds that shift that day: an indicator is linked to the
// duty-manager sum, and the reserve sum is forced to zero whenever the
// indicator is up.
func (b *builder) addReservePriority() {
	added := false
	for d := range b.cal.Days {
		for _, shift := range models.WorkingShifts {
			var dms, reserves []solver.Var
			for ei, e := range b.roster.Employees {
				v, ok := b.lookup(ei, d, shift)
				if !ok {
					continue
				}
				if e.Role == models.DutyManager {
					dms = append(dms, v)
				} else {
					reserves = append(reserves, v)
				}
			}
			if len(reserves) == 0 || len(dms) == 0 {
				continue
			}
			present := b.m.NewBool(fmt.Sprintf("dm_present/%d/%s", d, shift))
			dmTerms := func(presentCoeff int) []solver.Term {
				terms := make([]solver.Term, 0, len(dms)+1)
				for _, v := range dms {
					terms = append(terms, solver.Term{Var: v, Coeff: 1})
				}
				return append(terms, solver.Term{Var: present, Coeff: presentCoeff})
			}
			// present <= sum(dms)
			b.m.Add(solver.Constraint{
				Name:  famReservePriority,
				Terms: dmTerms(-1),
				Op:    solver.GE,
				Bound: 0,
			})
			// sum(dms) <= len(dms)*present
			b.m.Add(solver.Constraint{
				Name:  famReservePriority,
				Terms: dmTerms(-len(dms)),
				Op:    solver.LE,
				Bound: 0,
			})
			// sum(reserves) <= len(reserves)*(1-present)
			rterms := make([]solver.Term, 0, len(reserves)+1)
			for _, v := range reserves {
				rterms = append(rterms, solver.Term{Var: v, Coeff: 1})
			}
			rterms = append(rterms, solver.Term{Var: present, Coeff: len(reserves)})
			b.m.Add(solver.Constraint{
				Name:  famReservePriority,
				Terms: rterms,
				Op:    solver.LE,
				Bound: len(reserves),
			})
			added = true
		}
	}
	if added {
		b.families = append(b.families, famReservePriority)
	}
}

func (b *builder) addHeadcountCap() {
	for d := range b.cal.Days {
		var vars []solver.Var
		for ei := range b.roster.Employees {
			vars = append(vars, b.workVars(ei, d)...)
		}
		b.m.AddSum(famHeadcount, vars, solver.LE, maxHeadcount)
	}
	b.families = append(b.families, famHeadcount)
}

func (b *builder) addWeekendMiddleBan() {
	added := false
	for d, day := range b.cal.Days {
		if !day.IsWeekend {
			continue
		}
		for ei := range b.roster.Employees {
			if v, ok := b.lookup(ei, d, models.Middle); ok {
				b.m.Fix(v, 0)
				added = true
			}
		}
	}
	if added {
		b.families = append(b.families, famWeekendMiddle)
	}
}

func (b *builder) addLateToEarlyBan() {
	added := false
	for ei, e := range b.roster.Employees {
		if !e.NoLateToEarly {
			continue
		}
		for d := 0; d+1 < b.cal.Len(); d++ {
			late, ok1 := b.lookup(ei, d, models.Late)
			early, ok2 := b.lookup(ei, d+1, models.Early)
			if !ok1 || !ok2 {
				continue
			}
			b.m.AddSum(famLateToEarly, []solver.Var{late, early}, solver.LE, 1)
			added = true
		}
	}
	if added {
		b.families = append(b.families, famLateToEarly)
	}
}

// addConsecutiveCap generates one inequality per 7-day sliding window
// over the synthetic carryover prefix plus the 28 real days: at most 6
// worked days per window, with carried days counted as already worked.
// A carryover at the cap therefore forces day 1 off.
func (b *builder) addConsecutiveCap() {
	for ei, e := range b.roster.Employees {
		carry := b.state.For(e.Name).Consecutive
		if carry > maxConsecutive {
			carry = maxConsecutive
		}
		total := carry + b.cal.Len()
		for i := 0; i+maxConsecutive < total; i++ {
			bound := maxConsecutive
			var vars []solver.Var
			for j := i; j <= i+maxConsecutive; j++ {
				if j < carry {
					bound--
					continue
				}
				vars = append(vars, b.workVars(ei, j-carry)...)
			}
			b.m.AddSum(famConsecutive, vars, solver.LE, bound)
		}
	}
	b.families = append(b.families, famConsecutive)
}

// addWeekendAlternation forces strict off/working weekend alternation
// for flagged employees, starting from the complement of the
// carried-in parity. An off weekend is both days non-working; a
// working weekend is both days worked.
func (b *builder) addWeekendAlternation() {
	weekends := b.cal.Weekends()
	added := false
	for ei, e := range b.roster.Employees {
		if !e.AlternateWeekendsOff {
			continue
		}
		off := !b.state.For(e.Name).WeekendOff
		for _, we := range weekends {
			for _, d := range we {
				if off {
					b.m.AddSum(famAlternation, b.workVars(ei, d), solver.EQ, 0)
				} else {
					b.m.AddSum(famAlternation, b.workVars(ei, d), solver.EQ, 1)
				}
			}
			off = !off
			added = true
		}
	}
	if added {
		b.families = append(b.families, famAlternation)
	}
}

// addObjective rewards preferred-shift matches for everyone, and whole
// or partial weekends off for employees not on forced alternation.
func (b *builder) addObjective() {
	for ei, e := range b.roster.Employees {
		for d := range b.cal.Days {
			for l := range e.PreferredShifts {
				if v, ok := b.lookup(ei, d, l); ok {
					b.m.AddObjective(v, b.w.Preference)
				}
			}
		}
	}
	if b.w.WeekendFull == 0 && b.w.WeekendPartial == 0 {
		return
	}
	for ei, e := range b.roster.Employees {
		if e.AlternateWeekendsOff {
			continue
		}
		for _, we := range b.cal.Weekends() {
			satOff := b.offVar(ei, we[0])
			sunOff := b.offVar(ei, we[1])
			full := b.m.NewBool(fmt.Sprintf("full_weekend/%s/%d", e.Name, we[0]))
			part := b.m.NewBool(fmt.Sprintf("part_weekend/%s/%d", e.Name, we[0]))
			b.m.Add(solver.Constraint{
				Name:  famWeekendPref,
				Terms: []solver.Term{{Var: full, Coeff: 1}, {Var: satOff, Coeff: -1}},
				Op:    solver.LE,
			})
			b.m.Add(solver.Constraint{
				Name:  famWeekendPref,
				Terms: []solver.Term{{Var: full, Coeff: 1}, {Var: sunOff, Coeff: -1}},
				Op:    solver.LE,
			})
			b.m.Add(solver.Constraint{
				Name:  famWeekendPref,
				Terms: []solver.Term{{Var: satOff, Coeff: 1}, {Var: sunOff, Coeff: 1}, {Var: full, Coeff: -1}},
				Op:    solver.LE,
				Bound: 1,
			})
			// part == satOff + sunOff - 2*full
			b.m.Add(solver.Constraint{
				Name: famWeekendPref,
				Terms: []solver.Term{
					{Var: part, Coeff: 1}, {Var: satOff, Coeff: -1},
					{Var: sunOff, Coeff: -1}, {Var: full, Coeff: 2},
				},
				Op: solver.EQ,
			})
			b.m.AddObjective(full, b.w.WeekendFull)
			b.m.AddObjective(part, b.w.WeekendPartial)
		}
	}
}

func (b *builder) familyList() []string {
	return append([]string(nil), b.families...)
}

// extract maps solved variable values back to one label per employee
// per day.
func (b *builder) extract(values []bool) *models.Assignment {
	a := &models.Assignment{Labels: map[string][]models.ShiftLabel{}}
	for ei, e := range b.roster.Employees {
		labels := make([]models.ShiftLabel, b.cal.Len())
		for d := range b.cal.Days {
			for l := models.Early; l <= models.Blank; l++ {
				if v, ok := b.lookup(ei, d, l); ok && values[v] {
					labels[d] = l
					break
				}
			}
		}
		a.Labels[e.Name] = labels
	}
	return a
}
