package workflow

import (
	"fmt"

	"github.com/SaneeshInter/project-management-sub002/internal/model"
)

// GateResult is the outcome of evaluating a department's exit gate. Missing
// holds every unmet requirement so the caller can render all of them at once.
type GateResult struct {
	Required  bool     `json:"required"`
	Satisfied bool     `json:"satisfied"`
	Missing   []string `json:"missing"`
}

// EvaluateGate checks a department's exit gate against the current visit.
// Checks run in a fixed order (minimum status, approvals, QA outcome) and
// accumulate failures rather than short-circuiting, so the result is
// deterministic and complete. A nil gate is unconditionally satisfied.
func EvaluateGate(gate *model.ApprovalGate, status model.WorkStatus, approvals []model.ApprovalRequest, qaRounds []model.QATestingRound) GateResult {
	if gate == nil {
		return GateResult{Required: false, Satisfied: true}
	}

	res := GateResult{Required: true}

	if gate.MinimumWorkStatus != "" && status != gate.MinimumWorkStatus {
		res.Missing = append(res.Missing,
			fmt.Sprintf("Work status must be %s (currently %s)", gate.MinimumWorkStatus, status))
	}

	for _, required := range gate.RequiredApprovals {
		approved := false
		for _, a := range approvals {
			if a.ApprovalType == required && a.Status == model.ApprovalApproved {
				approved = true
				break
			}
		}
		if !approved {
			res.Missing = append(res.Missing, fmt.Sprintf("Missing %s approval", required))
		}
	}

	if gate.RequiredQAStatus != "" {
		passed := false
		for _, r := range qaRounds {
			if r.Status == gate.RequiredQAStatus {
				passed = true
				break
			}
		}
		if !passed {
			res.Missing = append(res.Missing, fmt.Sprintf("No QA round with status %s", gate.RequiredQAStatus))
		}
	}

	res.Satisfied = len(res.Missing) == 0
	return res
}
