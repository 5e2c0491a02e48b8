package solver

import (
	"context"
	"fmt"
	"testing"
	"time"
)

func TestSolve_MaximizesObjective(t *testing.T) {
	m := NewModel()
	x := m.NewBool("x")
	y := m.NewBool("y")
	z := m.NewBool("z")
	m.AddSum("x_or_y", []Var{x, y}, LE, 1)
	m.AddObjective(x, 2)
	m.AddObjective(y, 3)
	m.AddObjective(z, -1)

	res := New().Solve(context.Background(), m)
	if res.Status != Optimal {
		t.Fatalf("Expected Optimal, got %v", res.Status)
	}
	if res.Objective != 3 {
		t.Errorf("Expected objective 3, got %d", res.Objective)
	}
	if res.Values[x] || !res.Values[y] || res.Values[z] {
		t.Errorf("Expected only y set, got x=%v y=%v z=%v", res.Values[x], res.Values[y], res.Values[z])
	}
}

func TestSolve_EqualityForcesAll(t *testing.T) {
	m := NewModel()
	x := m.NewBool("x")
	y := m.NewBool("y")
	m.AddSum("both", []Var{x, y}, EQ, 2)

	res := New().Solve(context.Background(), m)
	if res.Status != Optimal {
		t.Fatalf("Expected Optimal, got %v", res.Status)
	}
	if !res.Values[x] || !res.Values[y] {
		t.Errorf("Expected both set, got x=%v y=%v", res.Values[x], res.Values[y])
	}
}

func TestSolve_InfeasibleAtRoot(t *testing.T) {
	m := NewModel()
	x := m.NewBool("x")
	y := m.NewBool("y")
	m.AddSum("too_many", []Var{x, y}, GE, 3)

	res := New().Solve(context.Background(), m)
	if res.Status != Infeasible {
		t.Fatalf("Expected Infeasible, got %v", res.Status)
	}
}

func TestSolve_ConflictingFixes(t *testing.T) {
	m := NewModel()
	x := m.NewBool("x")
	m.Fix(x, 1)
	m.Fix(x, 0)

	res := New().Solve(context.Background(), m)
	if res.Status != Infeasible {
		t.Fatalf("Expected Infeasible, got %v", res.Status)
	}
}

func TestSolve_FixedValuePropagates(t *testing.T) {
	m := NewModel()
	x := m.NewBool("x")
	y := m.NewBool("y")
	m.Fix(x, 1)
	m.AddSum("at_most_one", []Var{x, y}, LE, 1)
	m.AddObjective(y, 10)

	res := New().Solve(context.Background(), m)
	if res.Status != Optimal {
		t.Fatalf("Expected Optimal, got %v", res.Status)
	}
	if !res.Values[x] || res.Values[y] {
		t.Errorf("Expected x forced on and y forced off, got x=%v y=%v", res.Values[x], res.Values[y])
	}
	if res.Objective != 0 {
		t.Errorf("Expected objective 0, got %d", res.Objective)
	}
}

func TestSolve_NegativeCoefficientIndicator(t *testing.T) {
	// z may only be set when x is: z - x <= 0. Maximizing z should pull
	// x up with it.
	m := NewModel()
	x := m.NewBool("x")
	z := m.NewBool("z")
	m.Add(Constraint{
		Name:  "z_implies_x",
		Terms: []Term{{Var: z, Coeff: 1}, {Var: x, Coeff: -1}},
		Op:    LE,
		Bound: 0,
	})
	m.AddObjective(z, 5)

	res := New().Solve(context.Background(), m)
	if res.Status != Optimal {
		t.Fatalf("Expected Optimal, got %v", res.Status)
	}
	if !res.Values[z] || !res.Values[x] {
		t.Errorf("Expected z and x set, got z=%v x=%v", res.Values[z], res.Values[x])
	}
	if res.Objective != 5 {
		t.Errorf("Expected objective 5, got %d", res.Objective)
	}
}

func TestSolve_ExpiredDeadlineUnknown(t *testing.T) {
	// A model deep enough that the periodic deadline check fires before
	// the first full assignment is reached.
	m := NewModel()
	for i := 0; i < 300; i++ {
		v := m.NewBool(fmt.Sprintf("v%d", i))
		m.AddObjective(v, 1)
	}

	ctx, cancel := context.WithDeadline(context.Background(), time.Unix(0, 0))
	defer cancel()
	res := New().Solve(ctx, m)
	if res.Status != Unknown {
		t.Fatalf("Expected Unknown, got %v", res.Status)
	}
}

func TestSolve_ExpiredDeadlineKeepsIncumbent(t *testing.T) {
	// The first descent reaches a full assignment before the deadline
	// check fires, so the incumbent is reported as Feasible even though
	// optimality was never proven.
	m := NewModel()
	vars := make([]Var, 300)
	for i := range vars {
		vars[i] = m.NewBool(fmt.Sprintf("v%d", i))
		m.AddObjective(vars[i], 1)
	}
	m.AddSum("cap", vars, LE, 250)

	ctx, cancel := context.WithDeadline(context.Background(), time.Unix(0, 0))
	defer cancel()
	res := New().Solve(ctx, m)
	if res.Status != Feasible {
		t.Fatalf("Expected Feasible, got %v", res.Status)
	}
	if res.Objective != 250 {
		t.Errorf("Expected incumbent objective 250, got %d", res.Objective)
	}
}

func TestSolve_ExhaustiveOptimalityOverLocalChoice(t *testing.T) {
	// Greedy 1-first would set a then be unable to take b and c; the
	// search must back out and prefer the pair.
	m := NewModel()
	a := m.NewBool("a")
	b := m.NewBool("b")
	c := m.NewBool("c")
	m.AddSum("a_excludes_b", []Var{a, b}, LE, 1)
	m.AddSum("a_excludes_c", []Var{a, c}, LE, 1)
	m.AddObjective(a, 5)
	m.AddObjective(b, 3)
	m.AddObjective(c, 3)

	res := New().Solve(context.Background(), m)
	if res.Status != Optimal {
		t.Fatalf("Expected Optimal, got %v", res.Status)
	}
	if res.Objective != 6 {
		t.Errorf("Expected objective 6, got %d", res.Objective)
	}
	if res.Values[a] || !res.Values[b] || !res.Values[c] {
		t.Errorf("Expected b and c, got a=%v b=%v c=%v", res.Values[a], res.Values[b], res.Values[c])
	}
}
