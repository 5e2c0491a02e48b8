package schedule

import (
	"context"
	"time"

	"rota-engine/internal/models"
	"rota-engine/internal/solver"
)

// Backend is the external solver boundary. The engine never looks past
// the returned Result.
type Backend interface {
	Solve(ctx context.Context, m *solver.Model) solver.Result
}

// StateSource supplies the cross-period carryover state for a new
// period starting at start. Implementations degrade to a cold start
// rather than failing; continuity is best-effort.
type StateSource interface {
	Load(start time.Time, roster *models.Roster) *models.ContinuityState
}
