package models

// ShiftLabel is one cell of the rota: a working shift, an explicit day
// off, or the blank a reserve gets on days they are not called in.
type ShiftLabel int

const (
	Early ShiftLabel = iota
	Middle
	Late
	DayOff
	Blank
)

// WorkingShifts are the labels that count as a worked day.
var WorkingShifts = []ShiftLabel{Early, Middle, Late}

func (l ShiftLabel) Working() bool {
	return l == Early || l == Middle || l == Late
}

// Marker is the CSV cell text for the label.
func (l ShiftLabel) Marker() string {
	switch l {
	case Early:
		return "E"
	case Middle:
		return "M"
	case Late:
		return "L"
	case DayOff:
		return "D/O"
	default:
		return ""
	}
}

func (l ShiftLabel) String() string {
	switch l {
	case Early:
		return "Early"
	case Middle:
		return "Middle"
	case Late:
		return "Late"
	case DayOff:
		return "DayOff"
	default:
		return "Blank"
	}
}

// LabelFromMarker parses a CSV cell back to a label. Legacy holiday
// cells ("H") from older artifacts read as DayOff.
func LabelFromMarker(s string) (ShiftLabel, bool) {
	switch s {
	case "E":
		return Early, true
	case "M":
		return Middle, true
	case "L":
		return Late, true
	case "D/O", "H":
		return DayOff, true
	case "":
		return Blank, true
	}
	return Blank, false
}
