package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"rota-engine/internal/schedule"
)

// ReadTable parses a published artifact back into week blocks. The CSV
// reader drops blank separator lines, so blocks are split on rows whose
// first cell is the "Name" column header.
func ReadTable(r io.Reader, start time.Time) (*schedule.Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1

	t := &schedule.Table{Start: start}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading artifact: %w", err)
		}
		if len(rec) == 0 || (len(rec) == 1 && rec[0] == "") {
			continue
		}
		if rec[0] == "Name" {
			t.Weeks = append(t.Weeks, schedule.WeekBlock{Header: rec})
			continue
		}
		if len(t.Weeks) == 0 {
			return nil, fmt.Errorf("artifact has rows before the first header")
		}
		wk := &t.Weeks[len(t.Weeks)-1]
		wk.Rows = append(wk.Rows, rec)
	}
	if len(t.Weeks) == 0 {
		return nil, fmt.Errorf("artifact has no week blocks")
	}
	return t, nil
}
