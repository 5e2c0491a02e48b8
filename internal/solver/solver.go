package solver

import (
	"context"
	"time"
)

// Solver runs a depth-first branch-and-bound search with linear
// constraint propagation. It proves optimality or infeasibility when
// the search space is exhausted; when the context deadline cuts the
// search short it reports the incumbent as Feasible, or Unknown if
// none was found.
type Solver struct{}

func New() *Solver { return &Solver{} }

const deadlineCheckInterval = 256

func (s *Solver) Solve(ctx context.Context, m *Model) Result {
	if m.contradiction {
		return Result{Status: Infeasible}
	}
	srch := newSearch(ctx, m)
	if !srch.applyFixed() || !srch.propagate() {
		return Result{Status: Infeasible}
	}
	srch.run(0)
	switch {
	case srch.stopped && srch.found:
		return Result{Status: Feasible, Values: srch.bestVals, Objective: srch.best}
	case srch.stopped:
		return Result{Status: Unknown}
	case srch.found:
		return Result{Status: Optimal, Values: srch.bestVals, Objective: srch.best}
	default:
		return Result{Status: Infeasible}
	}
}

type search struct {
	m    *Model
	ctx  context.Context
	vals []int8

	// lo/hi are the achievable sum range of each constraint given the
	// current partial assignment.
	lo, hi  []int
	varCons [][]int32

	trail []Var
	queue []int32

	obj       int64
	potential int64 // positive objective weight still attainable
	best      int64
	bestVals  []bool
	found     bool

	nodes   int
	stopped bool
}

func newSearch(ctx context.Context, m *Model) *search {
	s := &search{
		m:       m,
		ctx:     ctx,
		vals:    make([]int8, m.NumVars()),
		lo:      make([]int, len(m.constraints)),
		hi:      make([]int, len(m.constraints)),
		varCons: make([][]int32, m.NumVars()),
	}
	for i := range s.vals {
		s.vals[i] = -1
	}
	for ci, c := range m.constraints {
		lo, hi := 0, 0
		for _, t := range c.Terms {
			if t.Coeff > 0 {
				hi += t.Coeff
			} else {
				lo += t.Coeff
			}
			s.varCons[t.Var] = append(s.varCons[t.Var], int32(ci))
		}
		s.lo[ci], s.hi[ci] = lo, hi
	}
	for _, w := range m.weights {
		if w > 0 {
			s.potential += w
		}
	}
	return s
}

func (s *search) applyFixed() bool {
	for v, val := range s.m.fixed {
		if val < 0 {
			continue
		}
		if !s.assign(Var(v), int(val)) {
			return false
		}
	}
	// Seed the queue with every constraint for the root propagation.
	s.queue = s.queue[:0]
	for ci := range s.m.constraints {
		s.queue = append(s.queue, int32(ci))
	}
	return true
}

// assign sets v and updates constraint ranges. It fails only when v is
// already assigned the opposite value.
func (s *search) assign(v Var, val int) bool {
	if s.vals[v] >= 0 {
		return s.vals[v] == int8(val)
	}
	s.vals[v] = int8(val)
	s.trail = append(s.trail, v)
	for _, ci := range s.varCons[v] {
		w := coeff(&s.m.constraints[ci], v)
		if w > 0 {
			s.lo[ci] += val * w
			s.hi[ci] += val*w - w
		} else {
			s.lo[ci] += val*w - w
			s.hi[ci] += val * w
		}
		s.queue = append(s.queue, ci)
	}
	if w := s.m.weights[v]; w != 0 {
		if w > 0 {
			s.potential -= w
		}
		if val == 1 {
			s.obj += w
		}
	}
	return true
}

func (s *search) undo(mark int) {
	for len(s.trail) > mark {
		v := s.trail[len(s.trail)-1]
		s.trail = s.trail[:len(s.trail)-1]
		val := int(s.vals[v])
		s.vals[v] = -1
		for _, ci := range s.varCons[v] {
			w := coeff(&s.m.constraints[ci], v)
			if w > 0 {
				s.lo[ci] -= val * w
				s.hi[ci] -= val*w - w
			} else {
				s.lo[ci] -= val*w - w
				s.hi[ci] -= val * w
			}
		}
		if w := s.m.weights[v]; w != 0 {
			if w > 0 {
				s.potential += w
			}
			if val == 1 {
				s.obj -= w
			}
		}
	}
}

// propagate drains the queue, failing on a violated constraint and
// forcing any variable whose remaining freedom would violate one.
func (s *search) propagate() bool {
	for len(s.queue) > 0 {
		ci := s.queue[0]
		s.queue = s.queue[1:]
		c := &s.m.constraints[ci]
		needLE := c.Op == LE || c.Op == EQ
		needGE := c.Op == GE || c.Op == EQ
	rescan:
		if needLE && s.lo[ci] > c.Bound {
			s.queue = s.queue[:0]
			return false
		}
		if needGE && s.hi[ci] < c.Bound {
			s.queue = s.queue[:0]
			return false
		}
		for _, t := range c.Terms {
			if s.vals[t.Var] >= 0 {
				continue
			}
			forced := -1
			switch {
			case needLE && t.Coeff > 0 && s.lo[ci]+t.Coeff > c.Bound:
				forced = 0
			case needLE && t.Coeff < 0 && s.lo[ci]-t.Coeff > c.Bound:
				forced = 1
			case needGE && t.Coeff > 0 && s.hi[ci]-t.Coeff < c.Bound:
				forced = 1
			case needGE && t.Coeff < 0 && s.hi[ci]+t.Coeff < c.Bound:
				forced = 0
			}
			if forced >= 0 {
				if !s.assign(t.Var, forced) {
					s.queue = s.queue[:0]
					return false
				}
				// Ranges moved; re-check this constraint from scratch.
				goto rescan
			}
		}
	}
	return true
}

func (s *search) run(from int) {
	if s.stopped {
		return
	}
	s.nodes++
	if s.nodes%deadlineCheckInterval == 0 && s.budgetExceeded() {
		s.stopped = true
		return
	}
	v := s.pick(from)
	if v < 0 {
		if !s.found || s.obj > s.best {
			s.found = true
			s.best = s.obj
			s.bestVals = make([]bool, len(s.vals))
			for i, val := range s.vals {
				s.bestVals[i] = val == 1
			}
		}
		return
	}
	for _, val := range [2]int{1, 0} {
		if s.found && s.obj+s.potential <= s.best {
			return
		}
		mark := len(s.trail)
		s.queue = s.queue[:0]
		if s.assign(v, val) && s.propagate() {
			s.run(int(v))
		}
		s.undo(mark)
		if s.stopped {
			return
		}
	}
}

func (s *search) pick(from int) Var {
	for i := from; i < len(s.vals); i++ {
		if s.vals[i] < 0 {
			return Var(i)
		}
	}
	return -1
}

func (s *search) budgetExceeded() bool {
	if err := s.ctx.Err(); err != nil {
		return true
	}
	if dl, ok := s.ctx.Deadline(); ok && !time.Now().Before(dl) {
		return true
	}
	return false
}

func coeff(c *Constraint, v Var) int {
	for _, t := range c.Terms {
		if t.Var == v {
			return t.Coeff
		}
	}
	return 0
}
