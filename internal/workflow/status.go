package workflow

import "github.com/SaneeshInter/project-management-sub002/internal/model"

// statusTransitions is the per-visit work-status machine as an explicit
// adjacency map. CORRECTIONS_NEEDED is reachable from any state and is
// handled separately in CanChangeStatus.
var statusTransitions = map[model.WorkStatus][]model.WorkStatus{
	model.StatusNotStarted: {model.StatusInProgress},
	model.StatusInProgress: {
		model.StatusCompleted,
		model.StatusOnHold,
		model.StatusPendingClientApproval,
		model.StatusQATesting,
	},
	model.StatusOnHold:                {model.StatusInProgress},
	model.StatusPendingClientApproval: {model.StatusCompleted, model.StatusClientRejected},
	model.StatusClientRejected:        {model.StatusInProgress},
	model.StatusQATesting:             {model.StatusReadyForDelivery, model.StatusCompleted, model.StatusQARejected},
	model.StatusQARejected:            {model.StatusBugfixInProgress},
	model.StatusBugfixInProgress:      {model.StatusQATesting},
	model.StatusBeforeLiveQA:          {model.StatusReadyForDelivery, model.StatusQARejected},
	model.StatusReadyForDelivery:      {model.StatusCompleted, model.StatusBeforeLiveQA},
	model.StatusCorrectionsNeeded:     {model.StatusInProgress},
	model.StatusCompleted:             {},
}

// CanChangeStatus reports whether a single visit may move from one work
// status to another, ignoring department kind.
func CanChangeStatus(from, to model.WorkStatus) bool {
	if to == model.StatusCorrectionsNeeded {
		// External correction can be raised at any point of a visit.
		return from != model.StatusCorrectionsNeeded
	}
	for _, allowed := range statusTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// ValidateStatusChange checks a status step against both the machine and the
// department kind: only design-type departments submit for client approval,
// only build- and QA-type departments enter QA testing, and the before-live
// check is exclusive to the QA department.
func ValidateStatusChange(dept model.Department, from, to model.WorkStatus) error {
	if !CanChangeStatus(from, to) {
		return &InvalidStatusChangeError{From: from, To: to}
	}
	switch to {
	case model.StatusPendingClientApproval:
		if dept.Kind != model.DeptKindDesign {
			return &InvalidStatusChangeError{From: from, To: to}
		}
	case model.StatusQATesting:
		if dept.Kind != model.DeptKindBuild && dept.Kind != model.DeptKindQA {
			return &InvalidStatusChangeError{From: from, To: to}
		}
	case model.StatusBeforeLiveQA:
		// The pre-delivery check on the live environment is the QA
		// department's own last pass.
		if dept.Kind != model.DeptKindQA {
			return &InvalidStatusChangeError{From: from, To: to}
		}
	}
	return nil
}

// NextStatuses lists the statuses reachable from the given one, for display.
func NextStatuses(from model.WorkStatus) []model.WorkStatus {
	out := make([]model.WorkStatus, len(statusTransitions[from]))
	copy(out, statusTransitions[from])
	if from != model.StatusCorrectionsNeeded {
		out = append(out, model.StatusCorrectionsNeeded)
	}
	return out
}
