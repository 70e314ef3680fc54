package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/SaneeshInter/project-management-sub002/internal/model"
	"github.com/SaneeshInter/project-management-sub002/internal/workflow"
)

type workflowFixture struct {
	projects   *fakeProjectRepo
	history    *fakeHistoryRepo
	approvals  *fakeApprovalRepo
	qa         *fakeQARepo
	depts      *fakeDeptRepo
	categories *fakeCategoryRepo
	audit      *fakeAuditRepo
	svc        WorkflowService
}

func newWorkflowFixture() *workflowFixture {
	f := &workflowFixture{
		projects:   newFakeProjectRepo(),
		history:    newFakeHistoryRepo(),
		approvals:  &fakeApprovalRepo{},
		qa:         &fakeQARepo{},
		depts:      newFakeDeptRepo(),
		categories: newFakeCategoryRepo(),
		audit:      &fakeAuditRepo{},
	}
	// The project store is excluded from rollback: the coordinator's only
	// project write is the guarded cut-over, and a rival writer's committed
	// state has to survive a losing transaction.
	tx := fakeTxManager{begin: func() (rollback func()) {
		entries := append([]model.DepartmentHistoryEntry(nil), f.history.entries...)
		clock := f.history.clock
		approvals := append([]model.ApprovalRequest(nil), f.approvals.approvals...)
		rounds := append([]model.QATestingRound(nil), f.qa.rounds...)
		bugs := append([]model.QABug(nil), f.qa.bugs...)
		logs := append([]model.AuditLog(nil), f.audit.logs...)
		return func() {
			f.history.entries = entries
			f.history.clock = clock
			f.approvals.approvals = approvals
			f.qa.rounds = rounds
			f.qa.bugs = bugs
			f.audit.logs = logs
		}
	}}
	f.svc = NewWorkflowService(f.projects, f.history, f.approvals, f.qa, f.depts, f.categories, f.audit, tx, nil)
	return f
}

// seedProject creates a project sitting in the given department with a
// single open history entry at the given work status.
func (f *workflowFixture) seedProject(t *testing.T, dept string, status model.WorkStatus) (*model.Project, *model.DepartmentHistoryEntry) {
	t.Helper()
	ctx := context.Background()

	project := &model.Project{
		Name:              "Acme Website",
		Status:            model.ProjectActive,
		CurrentDepartment: dept,
	}
	require.NoError(t, f.projects.Create(ctx, project))

	entry := &model.DepartmentHistoryEntry{
		ProjectID:    project.ID,
		ToDepartment: dept,
		WorkStatus:   status,
	}
	require.NoError(t, f.history.Create(ctx, entry))
	return project, entry
}

func TestMoveToDepartmentHappyPath(t *testing.T) {
	f := newWorkflowFixture()
	ctx := context.Background()
	project, first := f.seedProject(t, model.DeptPMO, model.StatusCompleted)

	resp, err := f.svc.MoveToDepartment(ctx, project.ID.String(), "", MoveToDepartmentRequest{
		ToDepartment:  model.DeptDesign,
		Notes:         "kickoff done",
		EstimatedDays: 5,
	})
	require.NoError(t, err)

	assert.Equal(t, model.DeptDesign, resp.CurrentDepartment)
	require.NotNil(t, resp.NextDepartment)
	assert.Equal(t, model.DeptHTML, *resp.NextDepartment)
	assert.Equal(t, "P", resp.ProjectCode)

	stored, err := f.projects.FindByID(ctx, project.ID)
	require.NoError(t, err)
	assert.Equal(t, model.DeptDesign, stored.CurrentDepartment)
	assert.Equal(t, "P", stored.ProjectCode)

	entries, err := f.history.ListForProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	closed := entries[0]
	assert.Equal(t, first.ID, closed.ID)
	assert.Equal(t, model.StatusCompleted, closed.WorkStatus)
	assert.NotNil(t, closed.WorkEndDate)

	opened := entries[1]
	assert.Equal(t, model.DeptDesign, opened.ToDepartment)
	assert.Equal(t, model.StatusNotStarted, opened.WorkStatus)
	require.NotNil(t, opened.FromDepartment)
	assert.Equal(t, model.DeptPMO, *opened.FromDepartment)
	assert.Equal(t, 5, opened.EstimatedDays)
	assert.Equal(t, "kickoff done", opened.Notes)

	require.Len(t, f.audit.logs, 1)
	assert.Equal(t, model.ActionMoveDepartment, f.audit.logs[0].Action)
	assert.Equal(t, project.ID.String(), f.audit.logs[0].EntityID)
}

func TestMoveToDepartmentRejectsUnknownEdge(t *testing.T) {
	f := newWorkflowFixture()
	ctx := context.Background()
	project, _ := f.seedProject(t, model.DeptPMO, model.StatusCompleted)

	_, err := f.svc.MoveToDepartment(ctx, project.ID.String(), "", MoveToDepartmentRequest{ToDepartment: model.DeptQA})

	var invalid *workflow.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, model.DeptPMO, invalid.From)
	assert.Equal(t, model.DeptQA, invalid.To)

	// Nothing was written.
	stored, _ := f.projects.FindByID(ctx, project.ID)
	assert.Equal(t, model.DeptPMO, stored.CurrentDepartment)
	entries, _ := f.history.ListForProject(ctx, project.ID)
	assert.Len(t, entries, 1)
	assert.Empty(t, f.audit.logs)
}

func TestMoveToDepartmentRequiresCompletedWork(t *testing.T) {
	f := newWorkflowFixture()
	ctx := context.Background()
	project, _ := f.seedProject(t, model.DeptPMO, model.StatusInProgress)

	_, err := f.svc.MoveToDepartment(ctx, project.ID.String(), "", MoveToDepartmentRequest{ToDepartment: model.DeptDesign})

	var notReady *workflow.WorkStatusNotReadyError
	require.ErrorAs(t, err, &notReady)
	assert.Equal(t, model.StatusCompleted, notReady.RequiredStatus)
	assert.Equal(t, model.StatusInProgress, notReady.CurrentStatus)

	entries, _ := f.history.ListForProject(ctx, project.ID)
	assert.Len(t, entries, 1)
}

func TestMoveOutOfDesignRequiresClientApproval(t *testing.T) {
	f := newWorkflowFixture()
	ctx := context.Background()
	project, entry := f.seedProject(t, model.DeptDesign, model.StatusCompleted)

	_, err := f.svc.MoveToDepartment(ctx, project.ID.String(), "", MoveToDepartmentRequest{ToDepartment: model.DeptHTML})

	var gateErr *workflow.GateNotSatisfiedError
	require.ErrorAs(t, err, &gateErr)
	assert.Equal(t, model.DeptDesign, gateErr.Department)
	assert.Contains(t, gateErr.Missing, "Missing CLIENT_APPROVAL approval")

	// An approved client sign-off opens the gate.
	require.NoError(t, f.approvals.Create(ctx, &model.ApprovalRequest{
		HistoryEntryID: entry.ID,
		ApprovalType:   model.ApprovalTypeClient,
		Status:         model.ApprovalApproved,
	}))

	resp, err := f.svc.MoveToDepartment(ctx, project.ID.String(), "", MoveToDepartmentRequest{ToDepartment: model.DeptHTML})
	require.NoError(t, err)
	assert.Equal(t, model.DeptHTML, resp.CurrentDepartment)
	assert.Equal(t, "D", resp.ProjectCode)
}

func TestMoveOutOfHTMLRequiresPassedQARound(t *testing.T) {
	f := newWorkflowFixture()
	ctx := context.Background()
	project, entry := f.seedProject(t, model.DeptHTML, model.StatusCompleted)

	_, err := f.svc.MoveToDepartment(ctx, project.ID.String(), "", MoveToDepartmentRequest{ToDepartment: model.DeptReact})

	var gateErr *workflow.GateNotSatisfiedError
	require.ErrorAs(t, err, &gateErr)
	assert.Contains(t, gateErr.Missing, "No QA round with status PASSED")

	require.NoError(t, f.qa.CreateRound(ctx, &model.QATestingRound{
		HistoryEntryID: entry.ID,
		QAType:         model.QATypeFunctional,
		RoundNumber:    1,
		Status:         model.QARoundPassed,
	}))

	resp, err := f.svc.MoveToDepartment(ctx, project.ID.String(), "", MoveToDepartmentRequest{ToDepartment: model.DeptReact})
	require.NoError(t, err)
	assert.Equal(t, model.DeptReact, resp.CurrentDepartment)
	require.NotNil(t, resp.NextDepartment)
	assert.Equal(t, model.DeptQA, *resp.NextDepartment)
}

func TestMoveFailsClosedWhenGateRowIsMissing(t *testing.T) {
	f := newWorkflowFixture()
	ctx := context.Background()
	project, entry := f.seedProject(t, model.DeptDesign, model.StatusCompleted)

	require.NoError(t, f.approvals.Create(ctx, &model.ApprovalRequest{
		HistoryEntryID: entry.ID,
		ApprovalType:   model.ApprovalTypeClient,
		Status:         model.ApprovalApproved,
	}))

	// The edge still demands an approval, but the gate row is gone. The move
	// must refuse rather than treat the absent gate as trivially satisfied.
	delete(f.depts.gates, model.DeptDesign)

	_, err := f.svc.MoveToDepartment(ctx, project.ID.String(), "", MoveToDepartmentRequest{ToDepartment: model.DeptHTML})

	var gateErr *workflow.GateNotSatisfiedError
	require.ErrorAs(t, err, &gateErr)
	assert.Equal(t, model.DeptDesign, gateErr.Department)
	assert.Contains(t, gateErr.Missing, "No approval gate configured for DESIGN")

	status, err := f.svc.GetWorkflowValidationStatus(ctx, project.ID.String())
	require.NoError(t, err)
	assert.False(t, status.CanProceed)
}

func TestMoveToDepartmentLosesRaceToConcurrentWriter(t *testing.T) {
	f := newWorkflowFixture()
	ctx := context.Background()
	project, _ := f.seedProject(t, model.DeptPMO, model.StatusCompleted)

	// A rival writer moves the project between validation and cut-over.
	f.projects.beforeCutOver = func() {
		f.projects.projects[project.ID].CurrentDepartment = model.DeptDesign
	}

	_, err := f.svc.MoveToDepartment(ctx, project.ID.String(), "", MoveToDepartmentRequest{ToDepartment: model.DeptDesign})
	require.ErrorIs(t, err, workflow.ErrConcurrentModification)

	// Our cut-over never landed: the rival's state survives untouched.
	stored, _ := f.projects.FindByID(ctx, project.ID)
	assert.Equal(t, model.DeptDesign, stored.CurrentDepartment)
	assert.Empty(t, stored.ProjectCode)

	// The ledger writes rolled back with the transaction: the original visit
	// is still open and no second entry exists.
	entries, err := f.history.ListForProject(ctx, project.ID)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, model.StatusCompleted, entries[0].WorkStatus)
	assert.Nil(t, entries[0].WorkEndDate)
	assert.Empty(t, f.audit.logs)
}

func TestMoveFollowsCategoryMapping(t *testing.T) {
	f := newWorkflowFixture()
	ctx := context.Background()

	category := &model.ProjectCategory{Name: "React SPA"}
	require.NoError(t, f.categories.Create(ctx, category))
	require.NoError(t, f.categories.ReplaceMappings(ctx, category.ID, []model.CategoryDepartmentMapping{
		{CategoryID: category.ID, DepartmentID: model.DeptPMO, Sequence: 1},
		{CategoryID: category.ID, DepartmentID: model.DeptReact, Sequence: 2, EstimatedDays: 10},
		{CategoryID: category.ID, DepartmentID: model.DeptManager, Sequence: 3},
	}))

	project, _ := f.seedProject(t, model.DeptPMO, model.StatusCompleted)
	project.CategoryID = &category.ID
	require.NoError(t, f.projects.Update(ctx, project))

	// The default sequence would forbid PMO -> REACT; the category allows it.
	resp, err := f.svc.MoveToDepartment(ctx, project.ID.String(), "", MoveToDepartmentRequest{ToDepartment: model.DeptReact})
	require.NoError(t, err)
	assert.Equal(t, model.DeptReact, resp.CurrentDepartment)
	require.NotNil(t, resp.NextDepartment)
	assert.Equal(t, model.DeptManager, *resp.NextDepartment)

	// Estimated days come from the mapping row when the request omits them.
	entries, _ := f.history.ListForProject(ctx, project.ID)
	require.Len(t, entries, 2)
	assert.Equal(t, 10, entries[1].EstimatedDays)

	// And the default edge out of PMO is gone.
	_, err = f.svc.MoveToDepartment(ctx, project.ID.String(), "", MoveToDepartmentRequest{ToDepartment: model.DeptDesign})
	var invalid *workflow.InvalidTransitionError
	require.ErrorAs(t, err, &invalid)
}

func TestUpdateWorkStatusStampsDates(t *testing.T) {
	f := newWorkflowFixture()
	ctx := context.Background()
	_, entry := f.seedProject(t, model.DeptPMO, model.StatusNotStarted)

	resp, err := f.svc.UpdateWorkStatus(ctx, entry.ID.String(), "", UpdateWorkStatusRequest{Status: model.StatusInProgress})
	require.NoError(t, err)
	assert.Equal(t, model.StatusInProgress, resp.WorkStatus)
	require.NotNil(t, resp.WorkStartDate)

	resp, err = f.svc.UpdateWorkStatus(ctx, entry.ID.String(), "", UpdateWorkStatusRequest{Status: model.StatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, model.StatusCompleted, resp.WorkStatus)
	require.NotNil(t, resp.WorkEndDate)

	require.Len(t, f.audit.logs, 2)
	assert.Equal(t, model.ActionUpdateStatus, f.audit.logs[0].Action)
}

func TestUpdateWorkStatusRejectsClosedEntry(t *testing.T) {
	f := newWorkflowFixture()
	ctx := context.Background()
	project, first := f.seedProject(t, model.DeptPMO, model.StatusCompleted)

	_, err := f.svc.MoveToDepartment(ctx, project.ID.String(), "", MoveToDepartmentRequest{ToDepartment: model.DeptDesign})
	require.NoError(t, err)

	_, err = f.svc.UpdateWorkStatus(ctx, first.ID.String(), "", UpdateWorkStatusRequest{Status: model.StatusInProgress})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "history entry is closed")
}

func TestUpdateWorkStatusHonorsDepartmentKind(t *testing.T) {
	f := newWorkflowFixture()
	ctx := context.Background()
	_, entry := f.seedProject(t, model.DeptPMO, model.StatusInProgress)

	// PMO is a management department; it never waits on the client.
	_, err := f.svc.UpdateWorkStatus(ctx, entry.ID.String(), "", UpdateWorkStatusRequest{Status: model.StatusPendingClientApproval})

	var invalid *workflow.InvalidStatusChangeError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, model.StatusInProgress, invalid.From)
	assert.Equal(t, model.StatusPendingClientApproval, invalid.To)
}

func TestUpdateWorkStatusRejectsSkippedSteps(t *testing.T) {
	f := newWorkflowFixture()
	ctx := context.Background()
	_, entry := f.seedProject(t, model.DeptPMO, model.StatusNotStarted)

	_, err := f.svc.UpdateWorkStatus(ctx, entry.ID.String(), "", UpdateWorkStatusRequest{Status: model.StatusCompleted})

	var invalid *workflow.InvalidStatusChangeError
	require.ErrorAs(t, err, &invalid)

	stored, _ := f.history.FindByID(ctx, entry.ID)
	assert.Equal(t, model.StatusNotStarted, stored.WorkStatus)
}

func TestGetAllowedNextDepartments(t *testing.T) {
	f := newWorkflowFixture()
	ctx := context.Background()
	project, _ := f.seedProject(t, model.DeptHTML, model.StatusInProgress)

	next, err := f.svc.GetAllowedNextDepartments(ctx, project.ID.String())
	require.NoError(t, err)
	assert.Equal(t, []string{model.DeptPHP, model.DeptReact, model.DeptWordpress}, next)
}

func TestGetWorkflowValidationStatus(t *testing.T) {
	f := newWorkflowFixture()
	ctx := context.Background()
	project, entry := f.seedProject(t, model.DeptDesign, model.StatusCompleted)

	status, err := f.svc.GetWorkflowValidationStatus(ctx, project.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.DeptDesign, status.CurrentDepartment)
	assert.Equal(t, model.StatusCompleted, status.CurrentWorkStatus)
	assert.Equal(t, []string{model.DeptHTML}, status.AllowedNext)
	assert.True(t, status.ApprovalGate.Required)
	assert.False(t, status.ApprovalGate.Satisfied)
	assert.False(t, status.CanProceed)

	require.NoError(t, f.approvals.Create(ctx, &model.ApprovalRequest{
		HistoryEntryID: entry.ID,
		ApprovalType:   model.ApprovalTypeClient,
		Status:         model.ApprovalApproved,
	}))

	status, err = f.svc.GetWorkflowValidationStatus(ctx, project.ID.String())
	require.NoError(t, err)
	assert.True(t, status.ApprovalGate.Satisfied)
	assert.Empty(t, status.ApprovalGate.Missing)
	assert.True(t, status.CanProceed)
}

func TestGetWorkflowValidationStatusUnknownProject(t *testing.T) {
	f := newWorkflowFixture()

	_, err := f.svc.GetWorkflowValidationStatus(context.Background(), uuid.NewString())
	require.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}
