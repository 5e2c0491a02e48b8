package schedule

import (
	"context"
	"time"

	"go.uber.org/zap"

	"rota-engine/internal/models"
	"rota-engine/internal/solver"
)

// DefaultBudget bounds the solve call so a pathological model surfaces
// as a timeout instead of hanging the run.
const DefaultBudget = 2 * time.Minute

// Engine orchestrates one rota generation: carryover lookup, model
// build, bounded solve, assignment extraction. One configuration in,
// one assignment (or a terminal error) out; nothing is retried or
// relaxed.
type Engine struct {
	backend Backend
	states  StateSource
	log     *zap.Logger

	// Weights and Budget may be adjusted before the first Generate.
	Weights Weights
	Budget  time.Duration
}

func NewEngine(backend Backend, states StateSource, log *zap.Logger) *Engine {
	return &Engine{
		backend: backend,
		states:  states,
		log:     log,
		Weights: DefaultWeights(),
		Budget:  DefaultBudget,
	}
}

// Generate builds and solves the constraint model for one period.
// Infeasibility returns InfeasibleModelError with the active families;
// an exhausted budget returns SolverTimeoutError. No partial schedule
// is ever produced.
func (e *Engine) Generate(ctx context.Context, roster *models.Roster, cal *models.Calendar) (*models.Assignment, error) {
	state := e.states.Load(cal.Start, roster)
	if state.Source != "" {
		e.log.Info("carryover state loaded", zap.String("source", state.Source))
	} else {
		e.log.Info("no usable prior period, starting cold")
	}

	b := newBuilder(roster, cal, state, e.Weights)
	m := b.build()
	e.log.Debug("constraint model built",
		zap.Int("variables", m.NumVars()),
		zap.Int("constraints", len(m.Constraints())),
		zap.Strings("families", b.familyList()))

	solveCtx, cancel := context.WithTimeout(ctx, e.Budget)
	defer cancel()
	res := e.backend.Solve(solveCtx, m)

	switch res.Status {
	case solver.Optimal, solver.Feasible:
		a := b.extract(res.Values)
		a.Objective = res.Objective
		a.Optimal = res.Status == solver.Optimal
		e.log.Info("schedule solved",
			zap.Stringer("status", res.Status),
			zap.Int64("objective", res.Objective))
		return a, nil
	case solver.Infeasible:
		return nil, &models.InfeasibleModelError{Families: b.familyList()}
	default:
		return nil, &models.SolverTimeoutError{Budget: e.Budget}
	}
}
