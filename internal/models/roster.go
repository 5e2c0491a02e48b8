package models

// Roster is the normalized, validated employee list for one period.
// Order is stable: duty managers first, then reserves, as configured.
type Roster struct {
	Employees []*Employee
}

func (r *Roster) ByName(name string) *Employee {
	for _, e := range r.Employees {
		if e.Name == name {
			return e
		}
	}
	return nil
}

func (r *Roster) DutyManagers() []*Employee {
	var out []*Employee
	for _, e := range r.Employees {
		if e.Role == DutyManager {
			out = append(out, e)
		}
	}
	return out
}

func (r *Roster) Reserves() []*Employee {
	var out []*Employee
	for _, e := range r.Employees {
		if e.Role == Reserve {
			out = append(out, e)
		}
	}
	return out
}
