package workflow

import (
	"fmt"
	"sort"

	"github.com/SaneeshInter/project-management-sub002/internal/model"
)

// BuildCategoryGraph compiles a category's ordered department mappings into
// the same rule shape the default graph uses, so the transition coordinator
// never knows which source produced a rule. Each mapping row's only successor
// is the next row in sequence order; gating flags come from the per-department
// ApprovalGate table, not from the mapping itself.
//
// Malformed mappings are rejected here, at configuration time. A transition
// can therefore only ever fail because of a project's state.
func BuildCategoryGraph(category string, mappings []model.CategoryDepartmentMapping, gates map[string]model.ApprovalGate, catalog map[string]model.Department) (*Graph, error) {
	if len(mappings) == 0 {
		return nil, &ConfigurationError{Category: category, Reason: "no department mappings defined"}
	}

	rows := make([]model.CategoryDepartmentMapping, len(mappings))
	copy(rows, mappings)
	sort.Slice(rows, func(i, j int) bool { return rows[i].Sequence < rows[j].Sequence })

	seenSeq := make(map[int]string, len(rows))
	seenDept := make(map[string]bool, len(rows))
	for _, m := range rows {
		if _, ok := catalog[m.DepartmentID]; !ok {
			return nil, &ConfigurationError{Category: category,
				Reason: fmt.Sprintf("department %s is not in the catalog", m.DepartmentID)}
		}
		if prev, dup := seenSeq[m.Sequence]; dup {
			return nil, &ConfigurationError{Category: category,
				Reason: fmt.Sprintf("duplicate sequence %d (%s and %s)", m.Sequence, prev, m.DepartmentID)}
		}
		seenSeq[m.Sequence] = m.DepartmentID
		if seenDept[m.DepartmentID] {
			return nil, &ConfigurationError{Category: category,
				Reason: fmt.Sprintf("department %s appears more than once", m.DepartmentID)}
		}
		seenDept[m.DepartmentID] = true
	}

	rules := make([]TransitionRule, 0, len(rows)-1)
	for i := 0; i+1 < len(rows); i++ {
		from, to := rows[i], rows[i+1]
		rule := TransitionRule{
			From:           from.DepartmentID,
			To:             to.DepartmentID,
			RequiredStatus: model.StatusCompleted,
			EstimatedDays:  to.EstimatedDays,
		}
		if gate, ok := gates[from.DepartmentID]; ok {
			rule.RequiresApproval = len(gate.RequiredApprovals) > 0
			rule.RequiresQAPassing = gate.RequiredQAStatus != ""
			if gate.MinimumWorkStatus != "" {
				rule.RequiredStatus = gate.MinimumWorkStatus
			}
		}
		rules = append(rules, rule)
	}
	if len(rules) == 0 {
		// Single-department categories have nowhere to transition to.
		return nil, &ConfigurationError{Category: category, Reason: "mapping needs at least two departments"}
	}

	return NewGraph(rules), nil
}
