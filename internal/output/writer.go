package output

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"rota-engine/internal/schedule"
)

const filenameLayout = "Rota - 2006-01-02.csv"

// Filename is the artifact name for a period starting at start. The
// date in the name is the continuity key: later runs locate prior
// periods by parsing it back out.
func Filename(start time.Time) string {
	return start.Format(filenameLayout)
}

// Write publishes a table as CSV under dir. An existing artifact for
// the same period is an error unless force is set, so a rerun cannot
// silently rewrite history another period already carried over from.
func Write(dir string, t *schedule.Table, force bool) (string, error) {
	path := filepath.Join(dir, Filename(t.Start))
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !force {
		flags = os.O_WRONLY | os.O_CREATE | os.O_EXCL
	}
	f, err := os.OpenFile(path, flags, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return "", fmt.Errorf("artifact %s already exists (use --force to overwrite)", path)
		}
		return "", fmt.Errorf("creating artifact: %w", err)
	}
	if err := writeCSV(f, t); err != nil {
		f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("closing artifact: %w", err)
	}
	return path, nil
}

func writeCSV(w io.Writer, t *schedule.Table) error {
	cw := csv.NewWriter(w)
	for i, week := range t.Weeks {
		if i > 0 {
			// Separator row between week blocks.
			if err := cw.Write([]string{""}); err != nil {
				return fmt.Errorf("writing separator: %w", err)
			}
		}
		if err := cw.Write(week.Header); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
		for _, row := range week.Rows {
			if err := cw.Write(row); err != nil {
				return fmt.Errorf("writing row: %w", err)
			}
		}
	}
	cw.Flush()
	return cw.Error()
}
