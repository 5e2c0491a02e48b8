package models

// Assignment is the solved rota: one label per employee per calendar
// day. Produced once per run and read-only afterwards.
type Assignment struct {
	// Labels maps employee name to a slice indexed by calendar day.
	Labels    map[string][]ShiftLabel
	Objective int64
	Optimal   bool
}

func (a *Assignment) Label(name string, day int) ShiftLabel {
	labels, ok := a.Labels[name]
	if !ok || day < 0 || day >= len(labels) {
		return Blank
	}
	return labels[day]
}
