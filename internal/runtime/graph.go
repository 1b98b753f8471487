package runtime

import (
	"github.com/aretw0/onboard/pkg/domain"
)

// Predicate decides whether an override edge applies to the current answers.
type Predicate func(domain.Answers) bool

// Direction selects which neighbour of a step is requested.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// Override replaces the default neighbour of From in one direction when its
// predicate holds.
type Override struct {
	From      domain.StepID
	To        domain.StepID
	Direction Direction
	Condition string
	When      Predicate
}

// Edge is a renderable transition of the graph.
type Edge struct {
	From      domain.StepID
	To        domain.StepID
	Condition string
}

// Graph is the fixed step order plus its conditional overrides.
// It is consulted, never mutated, during navigation.
type Graph struct {
	order     []domain.StepID
	index     map[domain.StepID]int
	overrides []Override
}

// NewGraph builds a graph over an ordered list of steps whose last element is
// the terminal step.
func NewGraph(order []domain.StepID, overrides ...Override) *Graph {
	g := &Graph{
		order:     append([]domain.StepID(nil), order...),
		index:     make(map[domain.StepID]int, len(order)),
		overrides: overrides,
	}
	for i, s := range g.order {
		g.index[s] = i
	}
	return g
}

func noCertification(a domain.Answers) bool {
	return a.Text(domain.FieldCertification) == domain.CertificationNone
}

// RegistrationGraph returns the technician registration flow. Choosing no
// certification skips the license step in both directions.
func RegistrationGraph() *Graph {
	const cond = "certification == none"
	return NewGraph(domain.StepOrder,
		Override{From: domain.StepCertification, To: domain.StepAddress, Direction: Forward, Condition: cond, When: noCertification},
		Override{From: domain.StepAddress, To: domain.StepCertification, Direction: Backward, Condition: cond, When: noCertification},
	)
}

// Steps returns the ordered steps, terminal step last.
func (g *Graph) Steps() []domain.StepID {
	return append([]domain.StepID(nil), g.order...)
}

// First returns the initial step.
func (g *Graph) First() domain.StepID {
	return g.order[0]
}

// Terminal returns the one-way final step.
func (g *Graph) Terminal() domain.StepID {
	return g.order[len(g.order)-1]
}

// LastDataStep returns the step from which submission is triggered.
func (g *Graph) LastDataStep() domain.StepID {
	return g.order[len(g.order)-2]
}

// Contains reports whether the step is a vertex of the graph.
func (g *Graph) Contains(step domain.StepID) bool {
	_, ok := g.index[step]
	return ok
}

// IsTerminal reports whether the step is the terminal step.
func (g *Graph) IsTerminal(step domain.StepID) bool {
	return step == g.Terminal()
}

// Next returns the successor of step. The terminal step and unknown steps
// are their own successor.
func (g *Graph) Next(step domain.StepID, answers domain.Answers) domain.StepID {
	return g.neighbour(step, Forward, answers)
}

// Prev returns the predecessor of step. The first step is its own
// predecessor and the terminal step is never left backwards.
func (g *Graph) Prev(step domain.StepID, answers domain.Answers) domain.StepID {
	return g.neighbour(step, Backward, answers)
}

func (g *Graph) neighbour(step domain.StepID, dir Direction, answers domain.Answers) domain.StepID {
	i, ok := g.index[step]
	if !ok || g.IsTerminal(step) {
		return step
	}
	for _, o := range g.overrides {
		if o.From == step && o.Direction == dir && o.When(answers) {
			return o.To
		}
	}
	if dir == Forward {
		return g.order[i+1]
	}
	if i == 0 {
		return step
	}
	return g.order[i-1]
}

// Edges lists the default forward edges followed by the forward overrides.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, 0, len(g.order)-1+len(g.overrides))
	for i := 0; i < len(g.order)-1; i++ {
		edges = append(edges, Edge{From: g.order[i], To: g.order[i+1]})
	}
	for _, o := range g.overrides {
		if o.Direction == Forward {
			edges = append(edges, Edge{From: o.From, To: o.To, Condition: o.Condition})
		}
	}
	return edges
}
