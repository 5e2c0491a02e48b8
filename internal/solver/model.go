// Package solver is the constraint-solving boundary: boolean decision
// variables, linear constraints over them, and a weighted linear
// objective to maximize. Everything above this package depends only on
// the Model/Result surface.
package solver

// Var identifies a boolean decision variable within one Model.
type Var int32

type Op int

const (
	LE Op = iota
	GE
	EQ
)

func (o Op) String() string {
	switch o {
	case LE:
		return "<="
	case GE:
		return ">="
	default:
		return "=="
	}
}

type Term struct {
	Var   Var
	Coeff int
}

// Constraint is one linear inequality or equality: sum(coeff*var) op
// bound. Name tags the constraint family that generated it.
type Constraint struct {
	Name  string
	Terms []Term
	Op    Op
	Bound int
}

type Model struct {
	names         []string
	constraints   []Constraint
	weights       []int64
	fixed         []int8 // -1 free, else the pinned value
	contradiction bool
}

func NewModel() *Model {
	return &Model{}
}

func (m *Model) NewBool(name string) Var {
	m.names = append(m.names, name)
	m.weights = append(m.weights, 0)
	m.fixed = append(m.fixed, -1)
	return Var(len(m.names) - 1)
}

func (m *Model) NumVars() int { return len(m.names) }

func (m *Model) Name(v Var) string { return m.names[v] }

func (m *Model) Add(c Constraint) {
	m.constraints = append(m.constraints, c)
}

// AddSum adds sum(vars) op bound with unit coefficients.
func (m *Model) AddSum(name string, vars []Var, op Op, bound int) {
	terms := make([]Term, len(vars))
	for i, v := range vars {
		terms[i] = Term{Var: v, Coeff: 1}
	}
	m.Add(Constraint{Name: name, Terms: terms, Op: op, Bound: bound})
}

// Fix pins a variable to a value before solving. Pinning the same
// variable to both values marks the model contradictory.
func (m *Model) Fix(v Var, val int) {
	if m.fixed[v] >= 0 && m.fixed[v] != int8(val) {
		m.contradiction = true
		return
	}
	m.fixed[v] = int8(val)
}

// AddObjective adds weight to the objective whenever v is 1. Repeated
// calls accumulate.
func (m *Model) AddObjective(v Var, weight int64) {
	m.weights[v] += weight
}

// Constraints exposes the generated (expression, bound) pairs so
// constraint families can be verified independently of the search.
func (m *Model) Constraints() []Constraint { return m.constraints }

// Fixed returns the pinned value for v, or -1 when free.
func (m *Model) Fixed(v Var) int { return int(m.fixed[v]) }

type Status int

const (
	Optimal Status = iota
	Feasible
	Infeasible
	Unknown
)

func (s Status) String() string {
	switch s {
	case Optimal:
		return "optimal"
	case Feasible:
		return "feasible"
	case Infeasible:
		return "infeasible"
	default:
		return "unknown"
	}
}

// Result carries the solve outcome. Values is only meaningful for
// Optimal and Feasible.
type Result struct {
	Status    Status
	Values    []bool
	Objective int64
}
