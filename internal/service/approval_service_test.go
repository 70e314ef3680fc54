package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SaneeshInter/project-management-sub002/internal/model"
)

type approvalFixture struct {
	approvals *fakeApprovalRepo
	history   *fakeHistoryRepo
	audit     *fakeAuditRepo
	svc       ApprovalService
}

func newApprovalFixture() *approvalFixture {
	f := &approvalFixture{
		approvals: &fakeApprovalRepo{},
		history:   newFakeHistoryRepo(),
		audit:     &fakeAuditRepo{},
	}
	f.svc = NewApprovalService(f.approvals, f.history, f.audit, fakeTxManager{})
	return f
}

func (f *approvalFixture) seedEntry(t *testing.T, dept string, status model.WorkStatus) *model.DepartmentHistoryEntry {
	t.Helper()
	entry := &model.DepartmentHistoryEntry{
		ProjectID:    uuid.New(),
		ToDepartment: dept,
		WorkStatus:   status,
	}
	require.NoError(t, f.history.Create(context.Background(), entry))
	return entry
}

func TestRequestApproval(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()
	entry := f.seedEntry(t, model.DeptDesign, model.StatusPendingClientApproval)

	resp, err := f.svc.RequestApproval(ctx, entry.ID.String(), "", RequestApprovalRequest{
		ApprovalType: model.ApprovalTypeClient,
		Comments:     "mockups attached",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalPending, resp.Status)
	assert.Equal(t, model.ApprovalTypeClient, resp.ApprovalType)
	assert.Equal(t, entry.ID.String(), resp.HistoryEntryID)

	require.Len(t, f.audit.logs, 1)
	assert.Equal(t, model.ActionRequestApproval, f.audit.logs[0].Action)
}

func TestRequestApprovalRejectsDuplicatePending(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()
	entry := f.seedEntry(t, model.DeptDesign, model.StatusPendingClientApproval)

	_, err := f.svc.RequestApproval(ctx, entry.ID.String(), "", RequestApprovalRequest{ApprovalType: model.ApprovalTypeClient})
	require.NoError(t, err)

	_, err = f.svc.RequestApproval(ctx, entry.ID.String(), "", RequestApprovalRequest{ApprovalType: model.ApprovalTypeClient})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already pending")

	// A different approval type on the same visit is fine.
	_, err = f.svc.RequestApproval(ctx, entry.ID.String(), "", RequestApprovalRequest{ApprovalType: model.ApprovalTypeManager})
	require.NoError(t, err)
}

func TestRequestApprovalLosesRaceToDuplicateInsert(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()
	entry := f.seedEntry(t, model.DeptDesign, model.StatusPendingClientApproval)

	// A rival request commits between the pending check and our insert; the
	// partial unique index rejects the second row.
	f.approvals.beforeCreate = func() {
		f.approvals.beforeCreate = nil
		require.NoError(t, f.approvals.Create(ctx, &model.ApprovalRequest{
			HistoryEntryID: entry.ID,
			ApprovalType:   model.ApprovalTypeClient,
			Status:         model.ApprovalPending,
		}))
	}

	_, err := f.svc.RequestApproval(ctx, entry.ID.String(), "", RequestApprovalRequest{ApprovalType: model.ApprovalTypeClient})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already pending")

	pending, _, err := f.approvals.List(ctx, model.ApprovalPending, 1, 100)
	require.NoError(t, err)
	assert.Len(t, pending, 1)
}

func TestSubmitDecisionClientApprovedCompletesVisit(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()
	entry := f.seedEntry(t, model.DeptDesign, model.StatusPendingClientApproval)

	pending, err := f.svc.RequestApproval(ctx, entry.ID.String(), "", RequestApprovalRequest{ApprovalType: model.ApprovalTypeClient})
	require.NoError(t, err)

	resp, err := f.svc.SubmitDecision(ctx, pending.ID, "", ApprovalDecisionRequest{
		Decision: model.ApprovalApproved,
		Comments: "looks great",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalApproved, resp.Status)
	require.NotNil(t, resp.ReviewedAt)

	stored, _ := f.history.FindByID(ctx, entry.ID)
	assert.Equal(t, model.StatusCompleted, stored.WorkStatus)
	assert.NotNil(t, stored.WorkEndDate)

	require.Len(t, f.audit.logs, 2)
	assert.Equal(t, model.ActionApproveRequest, f.audit.logs[1].Action)
}

func TestSubmitDecisionClientRejectedSendsVisitBack(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()
	entry := f.seedEntry(t, model.DeptDesign, model.StatusPendingClientApproval)

	pending, err := f.svc.RequestApproval(ctx, entry.ID.String(), "", RequestApprovalRequest{ApprovalType: model.ApprovalTypeClient})
	require.NoError(t, err)

	resp, err := f.svc.SubmitDecision(ctx, pending.ID, "", ApprovalDecisionRequest{
		Decision:        model.ApprovalRejected,
		RejectionReason: "wrong brand colors",
	})
	require.NoError(t, err)
	assert.Equal(t, model.ApprovalRejected, resp.Status)
	assert.Equal(t, "wrong brand colors", resp.RejectionReason)

	stored, _ := f.history.FindByID(ctx, entry.ID)
	assert.Equal(t, model.StatusClientRejected, stored.WorkStatus)
	assert.Nil(t, stored.WorkEndDate)

	assert.Equal(t, model.ActionRejectRequest, f.audit.logs[1].Action)
}

func TestSubmitDecisionDeliveryApprovalLeavesVisitAlone(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()
	entry := f.seedEntry(t, model.DeptQA, model.StatusReadyForDelivery)

	pending, err := f.svc.RequestApproval(ctx, entry.ID.String(), "", RequestApprovalRequest{ApprovalType: model.ApprovalTypeDelivery})
	require.NoError(t, err)

	_, err = f.svc.SubmitDecision(ctx, pending.ID, "", ApprovalDecisionRequest{Decision: model.ApprovalApproved})
	require.NoError(t, err)

	stored, _ := f.history.FindByID(ctx, entry.ID)
	assert.Equal(t, model.StatusReadyForDelivery, stored.WorkStatus)
}

func TestSubmitDecisionRejectsSettledRequest(t *testing.T) {
	f := newApprovalFixture()
	ctx := context.Background()
	entry := f.seedEntry(t, model.DeptDesign, model.StatusPendingClientApproval)

	pending, err := f.svc.RequestApproval(ctx, entry.ID.String(), "", RequestApprovalRequest{ApprovalType: model.ApprovalTypeClient})
	require.NoError(t, err)

	_, err = f.svc.SubmitDecision(ctx, pending.ID, "", ApprovalDecisionRequest{Decision: model.ApprovalApproved})
	require.NoError(t, err)

	_, err = f.svc.SubmitDecision(ctx, pending.ID, "", ApprovalDecisionRequest{Decision: model.ApprovalRejected})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already APPROVED")
}
