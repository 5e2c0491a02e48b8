package models

// EmployeeState is the carryover bridging two consecutive periods.
type EmployeeState struct {
	// Consecutive working days accumulated through the end of the
	// previous period. 0 for a fresh employee.
	Consecutive int
	// WeekendOff records whether the previous period's final weekend
	// was fully off. Only meaningful for alternating-weekend employees;
	// false for a fresh employee, so their first applicable weekend
	// defaults to working.
	WeekendOff bool
}

// ContinuityState is the per-employee carryover derived from the most
// recent prior artifact, or a cold start when none exists.
type ContinuityState struct {
	// Source names the artifact the state was derived from; empty on a
	// cold start.
	Source string
	ByName map[string]EmployeeState
}

func ColdStart() *ContinuityState {
	return &ContinuityState{ByName: map[string]EmployeeState{}}
}

// For returns the carryover for an employee, zero-valued when the
// employee has no history.
func (s *ContinuityState) For(name string) EmployeeState {
	return s.ByName[name]
}
