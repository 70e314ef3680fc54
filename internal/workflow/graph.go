package workflow

import (
	"sort"

	"github.com/SaneeshInter/project-management-sub002/internal/model"
)

// TransitionRule describes one legal department move and its preconditions.
type TransitionRule struct {
	From              string
	To                string
	RequiredStatus    model.WorkStatus
	RequiresApproval  bool
	RequiresQAPassing bool
	EstimatedDays     int
}

// Graph is a set of transition rules keyed by (from, to). At most one rule
// exists per pair; a department may have multiple outgoing rules (branching).
type Graph struct {
	edges map[string]map[string]TransitionRule
	order []string // department ids in sequence order, for display
}

// NewGraph builds a graph from an explicit rule list. Later rules for the
// same (from, to) pair overwrite earlier ones.
func NewGraph(rules []TransitionRule) *Graph {
	g := &Graph{edges: make(map[string]map[string]TransitionRule)}
	seen := make(map[string]bool)
	for _, r := range rules {
		if g.edges[r.From] == nil {
			g.edges[r.From] = make(map[string]TransitionRule)
		}
		g.edges[r.From][r.To] = r
		for _, d := range []string{r.From, r.To} {
			if !seen[d] {
				seen[d] = true
				g.order = append(g.order, d)
			}
		}
	}
	return g
}

// ValidTransition reports whether an edge from → to exists.
func (g *Graph) ValidTransition(from, to string) bool {
	_, ok := g.edges[from][to]
	return ok
}

// RequirementsFor returns the rule for (from, to), if any.
func (g *Graph) RequirementsFor(from, to string) (TransitionRule, bool) {
	r, ok := g.edges[from][to]
	return r, ok
}

// AllowedNext returns every department reachable from the given one in one
// step, sorted for stable output.
func (g *Graph) AllowedNext(from string) []string {
	next := make([]string, 0, len(g.edges[from]))
	for to := range g.edges[from] {
		next = append(next, to)
	}
	sort.Strings(next)
	return next
}

// SuggestNext returns the single successor of a department, or empty when the
// department branches or is terminal. Used for the advisory next-department
// pointer on projects.
func (g *Graph) SuggestNext(from string) string {
	if len(g.edges[from]) != 1 {
		return ""
	}
	for to := range g.edges[from] {
		return to
	}
	return ""
}

// Sequence returns the department ids in the order they entered the graph,
// which for linear graphs is the workflow order.
func (g *Graph) Sequence() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Start returns the first department of the graph.
func (g *Graph) Start() string {
	if len(g.order) == 0 {
		return ""
	}
	return g.order[0]
}

// DefaultGraph is the fixed company-wide department sequence: a linear path
// with a branch after HTML into one of the build tracks.
func DefaultGraph() *Graph {
	return NewGraph([]TransitionRule{
		{From: model.DeptPMO, To: model.DeptDesign, RequiredStatus: model.StatusCompleted},
		{From: model.DeptDesign, To: model.DeptHTML, RequiredStatus: model.StatusCompleted, RequiresApproval: true},
		{From: model.DeptHTML, To: model.DeptPHP, RequiredStatus: model.StatusCompleted, RequiresQAPassing: true},
		{From: model.DeptHTML, To: model.DeptReact, RequiredStatus: model.StatusCompleted, RequiresQAPassing: true},
		{From: model.DeptHTML, To: model.DeptWordpress, RequiredStatus: model.StatusCompleted, RequiresQAPassing: true},
		{From: model.DeptPHP, To: model.DeptQA, RequiredStatus: model.StatusCompleted},
		{From: model.DeptReact, To: model.DeptQA, RequiredStatus: model.StatusCompleted},
		{From: model.DeptWordpress, To: model.DeptQA, RequiredStatus: model.StatusCompleted},
		{From: model.DeptQA, To: model.DeptDelivery, RequiredStatus: model.StatusReadyForDelivery, RequiresApproval: true},
		{From: model.DeptDelivery, To: model.DeptManager, RequiredStatus: model.StatusCompleted},
	})
}
