package schedule

import (
	"context"
	"time"

	"rota-engine/internal/models"
	"rota-engine/internal/solver"
)

// MockBackend implements Backend with function fields.
type MockBackend struct {
	SolveFunc func(ctx context.Context, m *solver.Model) solver.Result
}

func (b *MockBackend) Solve(ctx context.Context, m *solver.Model) solver.Result {
	return b.SolveFunc(ctx, m)
}

// MockStateSource implements StateSource with a function field. A nil
// LoadFunc means a cold start.
type MockStateSource struct {
	LoadFunc func(start time.Time, roster *models.Roster) *models.ContinuityState
}

func (s *MockStateSource) Load(start time.Time, roster *models.Roster) *models.ContinuityState {
	if s.LoadFunc == nil {
		return models.ColdStart()
	}
	return s.LoadFunc(start, roster)
}
