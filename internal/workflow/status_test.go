package workflow

import (
	"testing"

	"github.com/SaneeshInter/project-management-sub002/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCanChangeStatus(t *testing.T) {
	tests := []struct {
		name    string
		from    model.WorkStatus
		to      model.WorkStatus
		allowed bool
	}{
		{"start work", model.StatusNotStarted, model.StatusInProgress, true},
		{"finish work", model.StatusInProgress, model.StatusCompleted, true},
		{"pause work", model.StatusInProgress, model.StatusOnHold, true},
		{"resume from hold", model.StatusOnHold, model.StatusInProgress, true},
		{"submit for client approval", model.StatusInProgress, model.StatusPendingClientApproval, true},
		{"client approves", model.StatusPendingClientApproval, model.StatusCompleted, true},
		{"client rejects", model.StatusPendingClientApproval, model.StatusClientRejected, true},
		{"rework after rejection", model.StatusClientRejected, model.StatusInProgress, true},
		{"qa passes to delivery", model.StatusQATesting, model.StatusReadyForDelivery, true},
		{"qa fails", model.StatusQATesting, model.StatusQARejected, true},
		{"bugfix loop", model.StatusQARejected, model.StatusBugfixInProgress, true},
		{"retest after bugfix", model.StatusBugfixInProgress, model.StatusQATesting, true},
		{"ready to completed", model.StatusReadyForDelivery, model.StatusCompleted, true},
		{"final live check", model.StatusReadyForDelivery, model.StatusBeforeLiveQA, true},
		{"live check passes", model.StatusBeforeLiveQA, model.StatusReadyForDelivery, true},
		{"live check fails", model.StatusBeforeLiveQA, model.StatusQARejected, true},

		{"no skipping to completed", model.StatusNotStarted, model.StatusCompleted, false},
		{"completed is terminal", model.StatusCompleted, model.StatusInProgress, false},
		{"no self transition", model.StatusInProgress, model.StatusInProgress, false},
		{"hold cannot complete directly", model.StatusOnHold, model.StatusCompleted, false},
		{"rejected cannot complete directly", model.StatusQARejected, model.StatusCompleted, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanChangeStatus(tt.from, tt.to))
		})
	}
}

func TestEveryStatusHasAnInboundEdge(t *testing.T) {
	inbound := map[model.WorkStatus]bool{
		model.StatusNotStarted:        true, // every visit starts here
		model.StatusCorrectionsNeeded: true, // reachable from anywhere, outside the map
	}
	for _, targets := range statusTransitions {
		for _, to := range targets {
			inbound[to] = true
		}
	}
	for from := range statusTransitions {
		assert.True(t, inbound[from], "status %s cannot be reached", from)
	}
}

func TestCorrectionsNeededReachableFromAnywhere(t *testing.T) {
	for from := range statusTransitions {
		if from == model.StatusCorrectionsNeeded {
			assert.False(t, CanChangeStatus(from, model.StatusCorrectionsNeeded))
			continue
		}
		assert.True(t, CanChangeStatus(from, model.StatusCorrectionsNeeded), "from %s", from)
	}
}

func TestValidateStatusChangeDepartmentKind(t *testing.T) {
	design := model.Department{ID: model.DeptDesign, Kind: model.DeptKindDesign}
	build := model.Department{ID: model.DeptPHP, Kind: model.DeptKindBuild}
	qa := model.Department{ID: model.DeptQA, Kind: model.DeptKindQA}
	management := model.Department{ID: model.DeptPMO, Kind: model.DeptKindManagement}

	// Client approval is a design-department move only.
	assert.NoError(t, ValidateStatusChange(design, model.StatusInProgress, model.StatusPendingClientApproval))
	err := ValidateStatusChange(build, model.StatusInProgress, model.StatusPendingClientApproval)
	var statusErr *InvalidStatusChangeError
	assert.ErrorAs(t, err, &statusErr)

	// QA testing belongs to build and QA departments.
	assert.NoError(t, ValidateStatusChange(build, model.StatusInProgress, model.StatusQATesting))
	assert.NoError(t, ValidateStatusChange(qa, model.StatusInProgress, model.StatusQATesting))
	assert.Error(t, ValidateStatusChange(management, model.StatusInProgress, model.StatusQATesting))
	assert.Error(t, ValidateStatusChange(design, model.StatusInProgress, model.StatusQATesting))

	// The before-live check is the QA department's own.
	assert.NoError(t, ValidateStatusChange(qa, model.StatusReadyForDelivery, model.StatusBeforeLiveQA))
	assert.Error(t, ValidateStatusChange(build, model.StatusReadyForDelivery, model.StatusBeforeLiveQA))
	assert.Error(t, ValidateStatusChange(management, model.StatusReadyForDelivery, model.StatusBeforeLiveQA))

	// Machine violations surface regardless of kind.
	err = ValidateStatusChange(design, model.StatusNotStarted, model.StatusCompleted)
	assert.ErrorAs(t, err, &statusErr)
	assert.Equal(t, model.StatusNotStarted, statusErr.From)
	assert.Equal(t, model.StatusCompleted, statusErr.To)
}

func TestNextStatuses(t *testing.T) {
	next := NextStatuses(model.StatusInProgress)
	assert.Contains(t, next, model.StatusCompleted)
	assert.Contains(t, next, model.StatusOnHold)
	assert.Contains(t, next, model.StatusCorrectionsNeeded)

	// Completed only allows the externally raised correction.
	assert.Equal(t, []model.WorkStatus{model.StatusCorrectionsNeeded}, NextStatuses(model.StatusCompleted))

	assert.NotContains(t, NextStatuses(model.StatusCorrectionsNeeded), model.StatusCorrectionsNeeded)
}
