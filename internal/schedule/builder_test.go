package schedule

import (
	"strings"
	"testing"
	"time"

	"rota-engine/internal/calendar"
	"rota-engine/internal/models"
	"rota-engine/internal/solver"
)

// Helpers for boilerplate roster setup. 2026-01-05 is a Monday, so the
// weekends sit at day indices 5/6, 12/13, 19/20 and 26/27.
func testCalendar(t testing.TB) *models.Calendar {
	cal, err := calendar.Build(time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	return cal
}

func testEmployee(name string, role models.Role, quota int, eligible ...models.ShiftLabel) *models.Employee {
	e := &models.Employee{
		Name:              name,
		Role:              role,
		Quota:             quota,
		ForbiddenWeekdays: map[time.Weekday]bool{},
		EligibleShifts:    map[models.ShiftLabel]bool{},
		PreferredShifts:   map[models.ShiftLabel]bool{},
		Overrides: models.Overrides{
			Shifts:  map[time.Time]models.ShiftLabel{},
			DaysOff: map[time.Time]bool{},
		},
	}
	for _, l := range eligible {
		e.EligibleShifts[l] = true
	}
	return e
}

// Four duty managers with staggered forbidden weekdays. Quota 24 is
// exactly the non-forbidden days, so every eligible day is worked and
// every weekly rest lands on the forbidden weekday. The reserve is
// Early-only, and a duty manager always holds Early, so reserve
// priority keeps her out of every solution.
func testRoster() *models.Roster {
	alice := testEmployee("Alice", models.DutyManager, 24, models.Early, models.Late)
	alice.ForbiddenWeekdays[time.Monday] = true
	alice.PreferredShifts[models.Early] = true
	bob := testEmployee("Bob", models.DutyManager, 24, models.Early, models.Late)
	bob.ForbiddenWeekdays[time.Tuesday] = true
	carol := testEmployee("Carol", models.DutyManager, 24, models.Early, models.Late)
	carol.ForbiddenWeekdays[time.Wednesday] = true
	dave := testEmployee("Dave", models.DutyManager, 24, models.Early, models.Late)
	dave.ForbiddenWeekdays[time.Thursday] = true
	rita := testEmployee("Rita", models.Reserve, 4, models.Early)
	return &models.Roster{Employees: []*models.Employee{alice, bob, carol, dave, rita}}
}

func constraintsNamed(m *solver.Model, name string) []solver.Constraint {
	var out []solver.Constraint
	for _, c := range m.Constraints() {
		if c.Name == name {
			out = append(out, c)
		}
	}
	return out
}

func TestBuild_OneLabelPerEmployeeDay(t *testing.T) {
	roster := testRoster()
	b := newBuilder(roster, testCalendar(t), models.ColdStart(), Weights{Preference: 2000})
	m := b.build()

	got := constraintsNamed(m, "one_label_per_day")
	want := len(roster.Employees) * 28
	if len(got) != want {
		t.Fatalf("Expected %d exactly-one constraints, got %d", want, len(got))
	}
	for _, c := range got {
		if c.Op != solver.EQ || c.Bound != 1 {
			t.Fatalf("Expected == 1, got %v %d", c.Op, c.Bound)
		}
	}
}

func TestBuild_QuotaOpsByRole(t *testing.T) {
	roster := testRoster()
	b := newBuilder(roster, testCalendar(t), models.ColdStart(), Weights{Preference: 2000})
	m := b.build()

	got := constraintsNamed(m, "quota")
	if len(got) != len(roster.Employees) {
		t.Fatalf("Expected %d quota constraints, got %d", len(roster.Employees), len(got))
	}
	// Constraints follow roster order: duty managers exact, reserve capped.
	for i, c := range got[:4] {
		if c.Op != solver.EQ || c.Bound != 24 {
			t.Errorf("Duty manager %d: expected == 24, got %v %d", i, c.Op, c.Bound)
		}
	}
	if got[4].Op != solver.LE || got[4].Bound != 4 {
		t.Errorf("Reserve: expected <= 4, got %v %d", got[4].Op, got[4].Bound)
	}
}

func TestBuild_ForbiddenWeekdaysPinned(t *testing.T) {
	roster := testRoster()
	b := newBuilder(roster, testCalendar(t), models.ColdStart(), Weights{Preference: 2000})
	m := b.build()

	// Alice never works Mondays: day indices 0, 7, 14, 21.
	for _, d := range []int{0, 7, 14, 21} {
		for _, l := range []models.ShiftLabel{models.Early, models.Late} {
			v, ok := b.lookup(0, d, l)
			if !ok {
				t.Fatalf("Missing variable for Alice day %d %s", d, l)
			}
			if m.Fixed(v) != 0 {
				t.Errorf("Expected Alice day %d %s pinned to 0, got %d", d, l, m.Fixed(v))
			}
		}
	}
	// Tuesdays stay free for her.
	v, _ := b.lookup(0, 1, models.Early)
	if m.Fixed(v) != -1 {
		t.Errorf("Expected Alice Tuesday Early free, got %d", m.Fixed(v))
	}
}

func TestBuild_WeekendMiddleBan(t *testing.T) {
	roster := testRoster()
	roster.Employees[0].EligibleShifts[models.Middle] = true
	b := newBuilder(roster, testCalendar(t), models.ColdStart(), Weights{Preference: 2000})
	m := b.build()

	for _, d := range []int{5, 6, 12, 13, 19, 20, 26, 27} {
		v, ok := b.lookup(0, d, models.Middle)
		if !ok {
			t.Fatalf("Missing Middle variable for day %d", d)
		}
		if m.Fixed(v) != 0 {
			t.Errorf("Expected Middle pinned to 0 on weekend day %d, got %d", d, m.Fixed(v))
		}
	}
	// Weekday Middle stays free.
	v, _ := b.lookup(0, 2, models.Middle)
	if m.Fixed(v) != -1 {
		t.Errorf("Expected weekday Middle free, got %d", m.Fixed(v))
	}
}

func TestBuild_LateToEarlyPairs(t *testing.T) {
	roster := testRoster()
	roster.Employees[1].NoLateToEarly = true
	b := newBuilder(roster, testCalendar(t), models.ColdStart(), Weights{Preference: 2000})
	m := b.build()

	got := constraintsNamed(m, "no_late_to_early")
	if len(got) != 27 {
		t.Fatalf("Expected 27 adjacent-day pairs, got %d", len(got))
	}
	for _, c := range got {
		if c.Op != solver.LE || c.Bound != 1 || len(c.Terms) != 2 {
			t.Fatalf("Expected pairwise <= 1, got %+v", c)
		}
	}
}

func TestBuild_WeekendAlternationColdStart(t *testing.T) {
	roster := testRoster()
	roster.Employees[1].AlternateWeekendsOff = true
	b := newBuilder(roster, testCalendar(t), models.ColdStart(), Weights{Preference: 2000})
	m := b.build()

	got := constraintsNamed(m, "weekend_alternation")
	if len(got) != 8 {
		t.Fatalf("Expected 2 constraints per weekend, got %d", len(got))
	}
	// Cold start carries WeekendOff=false, so the first weekend is off,
	// the second worked, and so on.
	wantBounds := []int{0, 0, 1, 1, 0, 0, 1, 1}
	for i, c := range got {
		if c.Op != solver.EQ || c.Bound != wantBounds[i] {
			t.Errorf("Constraint %d: expected == %d, got %v %d", i, wantBounds[i], c.Op, c.Bound)
		}
	}
}

func TestBuild_WeekendAlternationAfterOffWeekend(t *testing.T) {
	roster := testRoster()
	roster.Employees[1].AlternateWeekendsOff = true
	state := models.ColdStart()
	state.ByName["Bob"] = models.EmployeeState{WeekendOff: true}
	b := newBuilder(roster, testCalendar(t), state, Weights{Preference: 2000})
	m := b.build()

	got := constraintsNamed(m, "weekend_alternation")
	wantBounds := []int{1, 1, 0, 0, 1, 1, 0, 0}
	for i, c := range got {
		if c.Bound != wantBounds[i] {
			t.Errorf("Constraint %d: expected == %d, got %d", i, wantBounds[i], c.Bound)
		}
	}
}

func TestBuild_ConsecutiveWindows(t *testing.T) {
	roster := testRoster()
	b := newBuilder(roster, testCalendar(t), models.ColdStart(), Weights{Preference: 2000})
	m := b.build()

	got := constraintsNamed(m, "consecutive_cap")
	// 22 windows of 7 days per employee over 28 days.
	want := len(roster.Employees) * 22
	if len(got) != want {
		t.Fatalf("Expected %d window constraints, got %d", want, len(got))
	}
	for _, c := range got {
		if c.Op != solver.LE || c.Bound != 6 {
			t.Fatalf("Expected <= 6 with no carryover, got %v %d", c.Op, c.Bound)
		}
	}
}

func TestBuild_ConsecutiveCarryTightensFirstWindows(t *testing.T) {
	roster := testRoster()
	state := models.ColdStart()
	state.ByName["Bob"] = models.EmployeeState{Consecutive: 5}
	b := newBuilder(roster, testCalendar(t), state, Weights{Preference: 2000})
	m := b.build()

	var bobBounds []int
	for _, c := range constraintsNamed(m, "consecutive_cap") {
		if strings.HasPrefix(m.Name(c.Terms[0].Var), "Bob/") {
			bobBounds = append(bobBounds, c.Bound)
		}
	}
	// After 5 carried days, the first window covers days 0-1 with room
	// for one worked day, then loosens one day at a time.
	want := []int{1, 2, 3, 4, 5, 6}
	for i, b := range want {
		if bobBounds[i] != b {
			t.Fatalf("Window %d: expected bound %d, got %d (all: %v)", i, b, bobBounds[i], bobBounds)
		}
	}
}

func TestBuild_ConsecutiveCarryAtCapForcesFirstDayOff(t *testing.T) {
	roster := testRoster()
	state := models.ColdStart()
	state.ByName["Bob"] = models.EmployeeState{Consecutive: 6}
	b := newBuilder(roster, testCalendar(t), state, Weights{Preference: 2000})
	m := b.build()

	found := false
	for _, c := range constraintsNamed(m, "consecutive_cap") {
		if c.Bound != 0 {
			continue
		}
		for _, term := range c.Terms {
			if strings.HasPrefix(m.Name(term.Var), "Bob/0/") {
				found = true
			}
		}
	}
	if !found {
		t.Error("Expected a zero-bound window pinning Bob's first day off")
	}
}

func TestBuild_ConsecutiveCarryClamped(t *testing.T) {
	// Carryover beyond the cap behaves like exactly the cap.
	roster := testRoster()
	atCap := models.ColdStart()
	atCap.ByName["Bob"] = models.EmployeeState{Consecutive: 6}
	beyond := models.ColdStart()
	beyond.ByName["Bob"] = models.EmployeeState{Consecutive: 11}

	m1 := newBuilder(roster, testCalendar(t), atCap, Weights{Preference: 2000}).build()
	m2 := newBuilder(roster, testCalendar(t), beyond, Weights{Preference: 2000}).build()
	c1 := constraintsNamed(m1, "consecutive_cap")
	c2 := constraintsNamed(m2, "consecutive_cap")
	if len(c1) != len(c2) {
		t.Fatalf("Expected identical window counts, got %d and %d", len(c1), len(c2))
	}
	for i := range c1 {
		if c1[i].Bound != c2[i].Bound {
			t.Errorf("Window %d: bounds differ, %d vs %d", i, c1[i].Bound, c2[i].Bound)
		}
	}
}

func TestBuild_ReservePriorityLinking(t *testing.T) {
	roster := testRoster()
	b := newBuilder(roster, testCalendar(t), models.ColdStart(), Weights{Preference: 2000})
	m := b.build()

	// Three linking constraints per (day, shift) with both roles
	// present: only Early qualifies, on each of 28 days.
	got := constraintsNamed(m, "reserve_priority")
	if len(got) != 28*3 {
		t.Fatalf("Expected %d linking constraints, got %d", 28*3, len(got))
	}
}

func TestBuild_CoverageSpansRoles(t *testing.T) {
	roster := testRoster()
	b := newBuilder(roster, testCalendar(t), models.ColdStart(), Weights{Preference: 2000})
	m := b.build()

	got := constraintsNamed(m, "daily_coverage")
	if len(got) != 28*2 {
		t.Fatalf("Expected an Early and a Late constraint per day, got %d", len(got))
	}
	// Day 0: the Early sum spans the four duty managers and the
	// Early-eligible reserve; the Late sum has no reserve term.
	if len(got[0].Terms) != 5 {
		t.Errorf("Expected 5 Early terms on day 0, got %d", len(got[0].Terms))
	}
	if len(got[1].Terms) != 4 {
		t.Errorf("Expected 4 Late terms on day 0, got %d", len(got[1].Terms))
	}
	for _, c := range got {
		if c.Op != solver.GE || c.Bound != 1 {
			t.Fatalf("Expected >= 1, got %v %d", c.Op, c.Bound)
		}
	}
}

func TestBuild_OverridesPinned(t *testing.T) {
	roster := testRoster()
	bob := roster.Employees[1]
	day8 := time.Date(2026, 1, 13, 0, 0, 0, 0, time.UTC) // day index 8
	day9 := time.Date(2026, 1, 14, 0, 0, 0, 0, time.UTC)
	bob.Overrides.Shifts[day9] = models.Late
	bob.Overrides.DaysOff[day8] = true

	b := newBuilder(roster, testCalendar(t), models.ColdStart(), Weights{Preference: 2000})
	m := b.build()

	off, _ := b.lookup(1, 8, models.DayOff)
	if m.Fixed(off) != 1 {
		t.Errorf("Expected Bob day 8 pinned off, got %d", m.Fixed(off))
	}
	late, _ := b.lookup(1, 9, models.Late)
	if m.Fixed(late) != 1 {
		t.Errorf("Expected Bob day 9 pinned Late, got %d", m.Fixed(late))
	}
}

func TestBuild_HolidayGivesReserveOnlyDayOff(t *testing.T) {
	roster := testRoster()
	rita := roster.Employees[4]
	rita.Overrides.Holiday = &models.DateRange{
		Start: time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2026, 1, 16, 0, 0, 0, 0, time.UTC),
	}
	b := newBuilder(roster, testCalendar(t), models.ColdStart(), Weights{Preference: 2000})
	b.build()

	// Days 7-11 are the holiday: only a DayOff label exists.
	if _, ok := b.lookup(4, 8, models.Early); ok {
		t.Error("Expected no working labels on a reserve's holiday")
	}
	if _, ok := b.lookup(4, 8, models.DayOff); !ok {
		t.Error("Expected a DayOff label on a reserve's holiday")
	}
	// Outside the holiday the usual labels exist.
	if _, ok := b.lookup(4, 2, models.Early); !ok {
		t.Error("Expected working labels outside the holiday")
	}
}

func TestBuild_FamilyList(t *testing.T) {
	roster := testRoster()
	b := newBuilder(roster, testCalendar(t), models.ColdStart(), DefaultWeights())
	b.build()

	families := b.familyList()
	for _, want := range []string{"one_label_per_day", "quota", "daily_coverage", "headcount_cap", "consecutive_cap"} {
		found := false
		for _, f := range families {
			if f == want {
				found = true
			}
		}
		if !found {
			t.Errorf("Expected family %q in %v", want, families)
		}
	}
}
