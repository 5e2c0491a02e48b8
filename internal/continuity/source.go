package continuity

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"time"
)

// Period is one previously published rota artifact, keyed by the start
// date parsed from its filename.
type Period struct {
	Start time.Time
	Path  string
}

// PeriodSource enumerates prior artifacts and opens them for parsing.
type PeriodSource interface {
	Periods() ([]Period, error)
	Open(p Period) (io.ReadCloser, error)
}

var artifactName = regexp.MustCompile(`^Rota - (\d{4}-\d{2}-\d{2})\.csv$`)

// DirSource reads published artifacts out of a flat directory. A
// missing directory is not an error: a first run has nothing to carry
// over from.
type DirSource struct {
	Dir string
}

func (s DirSource) Periods() ([]Period, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("listing artifacts: %w", err)
	}

	var out []Period
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := artifactName.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		start, err := time.Parse("2006-01-02", m[1])
		if err != nil {
			continue
		}
		out = append(out, Period{Start: start, Path: filepath.Join(s.Dir, e.Name())})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out, nil
}

func (s DirSource) Open(p Period) (io.ReadCloser, error) {
	return os.Open(p.Path)
}
