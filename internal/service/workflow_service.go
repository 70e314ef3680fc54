package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SaneeshInter/project-management-sub002/internal/model"
	"github.com/SaneeshInter/project-management-sub002/internal/repository"
	"github.com/SaneeshInter/project-management-sub002/internal/workflow"
	ws "github.com/SaneeshInter/project-management-sub002/internal/websocket"

	"github.com/google/uuid"
)

// --- DTOs ---

type MoveToDepartmentRequest struct {
	ToDepartment  string `json:"to_department" binding:"required"`
	Notes         string `json:"notes"`
	EstimatedDays int    `json:"estimated_days" binding:"omitempty,gt=0"`
}

type UpdateWorkStatusRequest struct {
	Status model.WorkStatus `json:"status" binding:"required"`
	Notes  string           `json:"notes"`
}

type HistoryEntryResponse struct {
	ID             string           `json:"id"`
	ProjectID      string           `json:"project_id"`
	FromDepartment *string          `json:"from_department"`
	ToDepartment   string           `json:"to_department"`
	WorkStatus     model.WorkStatus `json:"work_status"`
	WorkStartDate  *string          `json:"work_start_date"`
	WorkEndDate    *string          `json:"work_end_date"`
	EstimatedDays  int              `json:"estimated_days"`
	ActualDays     int              `json:"actual_days"`
	MovedBy        *string          `json:"moved_by"`
	MoverName      string           `json:"mover_name,omitempty"`
	Notes          string           `json:"notes"`
	CreatedAt      string           `json:"created_at"`
}

type WorkflowStatusResponse struct {
	ProjectID         string              `json:"project_id"`
	CurrentDepartment string              `json:"current_department"`
	NextDepartment    *string             `json:"next_department"`
	CurrentWorkStatus model.WorkStatus    `json:"current_work_status"`
	AllowedNext       []string            `json:"allowed_next"`
	AllowedStatuses   []model.WorkStatus  `json:"allowed_statuses"`
	WorkflowSequence  []string            `json:"workflow_sequence"`
	ApprovalGate      workflow.GateResult `json:"approval_gate"`
	ProjectCode       string              `json:"project_code"`
	CanProceed        bool                `json:"can_proceed"`
}

// --- Interface ---

// WorkflowService is the transition coordinator: the only writer of the
// project's workflow pointers and the history ledger.
type WorkflowService interface {
	MoveToDepartment(ctx context.Context, projectID string, actorID string, req MoveToDepartmentRequest) (*ProjectResponse, error)
	UpdateWorkStatus(ctx context.Context, entryID string, actorID string, req UpdateWorkStatusRequest) (*HistoryEntryResponse, error)
	GetAllowedNextDepartments(ctx context.Context, projectID string) ([]string, error)
	GetWorkflowValidationStatus(ctx context.Context, projectID string) (*WorkflowStatusResponse, error)
	GetHistory(ctx context.Context, projectID string) ([]HistoryEntryResponse, error)
}

type workflowService struct {
	projectRepo  repository.ProjectRepository
	historyRepo  repository.HistoryRepository
	approvalRepo repository.ApprovalRepository
	qaRepo       repository.QARepository
	deptRepo     repository.DepartmentRepository
	categoryRepo repository.CategoryRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
	hub          *ws.Hub
}

func NewWorkflowService(
	projectRepo repository.ProjectRepository,
	historyRepo repository.HistoryRepository,
	approvalRepo repository.ApprovalRepository,
	qaRepo repository.QARepository,
	deptRepo repository.DepartmentRepository,
	categoryRepo repository.CategoryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	hub *ws.Hub,
) WorkflowService {
	return &workflowService{
		projectRepo:  projectRepo,
		historyRepo:  historyRepo,
		approvalRepo: approvalRepo,
		qaRepo:       qaRepo,
		deptRepo:     deptRepo,
		categoryRepo: categoryRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
		hub:          hub,
	}
}

// graphFor resolves the workflow graph a project follows: the category's
// compiled mapping when one exists, the default sequence otherwise. Mapping
// rows are validated when written, so a builder failure here is a stored
// configuration going bad out-of-band and is surfaced as an internal error.
func (s *workflowService) graphFor(ctx context.Context, project *model.Project) (*workflow.Graph, error) {
	if project.CategoryID == nil {
		return workflow.DefaultGraph(), nil
	}

	mappings, err := s.categoryRepo.ListMappings(ctx, *project.CategoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load category mappings: %w", err)
	}
	if len(mappings) == 0 {
		return workflow.DefaultGraph(), nil
	}

	catalog, err := s.deptRepo.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load department catalog: %w", err)
	}
	gates, err := s.deptRepo.Gates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load approval gates: %w", err)
	}

	return workflow.BuildCategoryGraph(project.CategoryID.String(), mappings, gates, catalog)
}

// MoveToDepartment validates and executes one department transition as a
// single atomic unit: close the current visit, open the next, flip the
// project's pointers, recompute the cached project code. Nothing is written
// on any validation failure.
func (s *workflowService) MoveToDepartment(ctx context.Context, projectID string, actorID string, req MoveToDepartmentRequest) (*ProjectResponse, error) {
	pid, err := uuid.Parse(projectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project id: %w", err)
	}
	actor := parseActor(actorID)

	var moved *model.Project
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		project, err := s.projectRepo.FindByIDForUpdate(txCtx, pid)
		if err != nil {
			return fmt.Errorf("project not found: %w", err)
		}
		latest, err := s.historyRepo.LatestForProject(txCtx, pid)
		if err != nil {
			return fmt.Errorf("project has no department history: %w", err)
		}

		graph, err := s.graphFor(txCtx, project)
		if err != nil {
			return err
		}

		current := project.CurrentDepartment
		if !graph.ValidTransition(current, req.ToDepartment) {
			return &workflow.InvalidTransitionError{From: current, To: req.ToDepartment}
		}
		rule, _ := graph.RequirementsFor(current, req.ToDepartment)

		if latest.WorkStatus != rule.RequiredStatus {
			return &workflow.WorkStatusNotReadyError{
				Department:     current,
				RequiredStatus: rule.RequiredStatus,
				CurrentStatus:  latest.WorkStatus,
			}
		}

		if rule.RequiresApproval || rule.RequiresQAPassing {
			gate, err := s.deptRepo.GateFor(txCtx, current)
			if err != nil {
				return fmt.Errorf("failed to load approval gate: %w", err)
			}
			// A rule that demands approval or QA passing with no gate row to
			// check against must fail closed, not wave the project through.
			if gate == nil {
				return &workflow.GateNotSatisfiedError{
					Department: current,
					Missing:    []string{fmt.Sprintf("No approval gate configured for %s", current)},
				}
			}
			approvals, err := s.approvalRepo.ListForEntry(txCtx, latest.ID)
			if err != nil {
				return fmt.Errorf("failed to load approvals: %w", err)
			}
			rounds, err := s.qaRepo.ListRoundsForEntry(txCtx, latest.ID)
			if err != nil {
				return fmt.Errorf("failed to load QA rounds: %w", err)
			}
			result := workflow.EvaluateGate(gate, latest.WorkStatus, approvals, rounds)
			if !result.Satisfied {
				return &workflow.GateNotSatisfiedError{Department: current, Missing: result.Missing}
			}
		}

		now := time.Now()
		if latest.WorkStatus != model.StatusCompleted {
			latest.WorkStatus = model.StatusCompleted
		}
		if latest.WorkEndDate == nil {
			latest.WorkEndDate = &now
			latest.ActualDays = daysBetween(startOf(latest), now)
		}
		if err := s.historyRepo.Update(txCtx, latest); err != nil {
			return fmt.Errorf("failed to close history entry: %w", err)
		}

		estimated := req.EstimatedDays
		if estimated == 0 {
			estimated = rule.EstimatedDays
		}
		entry := &model.DepartmentHistoryEntry{
			ProjectID:      pid,
			FromDepartment: &current,
			ToDepartment:   req.ToDepartment,
			WorkStatus:     model.StatusNotStarted,
			EstimatedDays:  estimated,
			MovedBy:        actor,
			Notes:          req.Notes,
		}
		if err := s.historyRepo.Create(txCtx, entry); err != nil {
			return fmt.Errorf("failed to create history entry: %w", err)
		}

		entries, err := s.historyRepo.ListForProject(txCtx, pid)
		if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}
		catalog, err := s.deptRepo.Catalog(txCtx)
		if err != nil {
			return fmt.Errorf("failed to load department catalog: %w", err)
		}
		code := workflow.ProjectCode(entries, letterCodes(catalog))

		var next *string
		if n := graph.SuggestNext(req.ToDepartment); n != "" {
			next = &n
		}

		// Optimistic guard: the update only lands if the project is still
		// where we validated it. A miss means another writer won the race.
		ok, err := s.projectRepo.CutOverDepartment(txCtx, pid, current, req.ToDepartment, next, code)
		if err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		if !ok {
			return workflow.ErrConcurrentModification
		}

		details, _ := json.Marshal(map[string]interface{}{
			"from": current,
			"to":   req.ToDepartment,
		})
		audit := &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionMoveDepartment,
			EntityID:   pid.String(),
			EntityName: project.Name,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		project.CurrentDepartment = req.ToDepartment
		project.NextDepartment = next
		project.ProjectCode = code
		moved = project
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(ws.EventProjectMoved, map[string]interface{}{
		"project_id": moved.ID.String(),
		"department": moved.CurrentDepartment,
		"code":       moved.ProjectCode,
	})

	resp := toProjectResponse(moved)
	return &resp, nil
}

// UpdateWorkStatus drives the per-visit status machine. Only the latest entry
// of a project may change; superseded entries are immutable.
func (s *workflowService) UpdateWorkStatus(ctx context.Context, entryID string, actorID string, req UpdateWorkStatusRequest) (*HistoryEntryResponse, error) {
	eid, err := uuid.Parse(entryID)
	if err != nil {
		return nil, fmt.Errorf("invalid history entry id: %w", err)
	}
	actor := parseActor(actorID)

	var updated *model.DepartmentHistoryEntry
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		entry, err := s.historyRepo.FindByID(txCtx, eid)
		if err != nil {
			return fmt.Errorf("history entry not found: %w", err)
		}
		latest, err := s.historyRepo.LatestForProject(txCtx, entry.ProjectID)
		if err != nil {
			return fmt.Errorf("failed to load latest entry: %w", err)
		}
		if latest.ID != entry.ID {
			return errors.New("history entry is closed: only the current department visit can change status")
		}

		dept, err := s.deptRepo.FindByID(txCtx, entry.ToDepartment)
		if err != nil {
			return fmt.Errorf("department %s not found: %w", entry.ToDepartment, err)
		}
		if err := workflow.ValidateStatusChange(*dept, entry.WorkStatus, req.Status); err != nil {
			return err
		}

		now := time.Now()
		previous := entry.WorkStatus
		entry.WorkStatus = req.Status
		if req.Notes != "" {
			entry.Notes = req.Notes
		}
		switch req.Status {
		case model.StatusInProgress:
			if entry.WorkStartDate == nil {
				entry.WorkStartDate = &now
			}
		case model.StatusCompleted:
			if entry.WorkEndDate == nil {
				entry.WorkEndDate = &now
				entry.ActualDays = daysBetween(startOf(entry), now)
			}
		}
		if err := s.historyRepo.Update(txCtx, entry); err != nil {
			return fmt.Errorf("failed to update history entry: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"from_status": previous,
			"to_status":   req.Status,
			"department":  entry.ToDepartment,
		})
		audit := &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionUpdateStatus,
			EntityID:   entry.ID.String(),
			EntityName: entry.ToDepartment,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.broadcast(ws.EventStatusChanged, map[string]interface{}{
		"entry_id":   updated.ID.String(),
		"project_id": updated.ProjectID.String(),
		"status":     updated.WorkStatus,
	})

	resp := toHistoryResponse(updated)
	return &resp, nil
}

func (s *workflowService) GetAllowedNextDepartments(ctx context.Context, projectID string) ([]string, error) {
	pid, err := uuid.Parse(projectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project id: %w", err)
	}
	project, err := s.projectRepo.FindByID(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("project not found: %w", err)
	}
	graph, err := s.graphFor(ctx, project)
	if err != nil {
		return nil, err
	}
	return graph.AllowedNext(project.CurrentDepartment), nil
}

// GetWorkflowValidationStatus is the read-only snapshot the dashboard renders:
// where the project is, what it may do next, and why it cannot proceed yet.
// Lock-free; may observe a slightly stale state under concurrent writes.
func (s *workflowService) GetWorkflowValidationStatus(ctx context.Context, projectID string) (*WorkflowStatusResponse, error) {
	pid, err := uuid.Parse(projectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project id: %w", err)
	}
	project, err := s.projectRepo.FindByID(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("project not found: %w", err)
	}
	latest, err := s.historyRepo.LatestForProject(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("project has no department history: %w", err)
	}
	graph, err := s.graphFor(ctx, project)
	if err != nil {
		return nil, err
	}

	gate, err := s.deptRepo.GateFor(ctx, project.CurrentDepartment)
	if err != nil {
		return nil, fmt.Errorf("failed to load approval gate: %w", err)
	}
	approvals, err := s.approvalRepo.ListForEntry(ctx, latest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load approvals: %w", err)
	}
	rounds, err := s.qaRepo.ListRoundsForEntry(ctx, latest.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load QA rounds: %w", err)
	}
	gateResult := workflow.EvaluateGate(gate, latest.WorkStatus, approvals, rounds)

	canProceed := false
	for _, to := range graph.AllowedNext(project.CurrentDepartment) {
		rule, _ := graph.RequirementsFor(project.CurrentDepartment, to)
		if latest.WorkStatus != rule.RequiredStatus {
			continue
		}
		if (rule.RequiresApproval || rule.RequiresQAPassing) && (gate == nil || !gateResult.Satisfied) {
			continue
		}
		canProceed = true
		break
	}

	return &WorkflowStatusResponse{
		ProjectID:         project.ID.String(),
		CurrentDepartment: project.CurrentDepartment,
		NextDepartment:    project.NextDepartment,
		CurrentWorkStatus: latest.WorkStatus,
		AllowedNext:       graph.AllowedNext(project.CurrentDepartment),
		AllowedStatuses:   workflow.NextStatuses(latest.WorkStatus),
		WorkflowSequence:  graph.Sequence(),
		ApprovalGate:      gateResult,
		ProjectCode:       project.ProjectCode,
		CanProceed:        canProceed,
	}, nil
}

func (s *workflowService) GetHistory(ctx context.Context, projectID string) ([]HistoryEntryResponse, error) {
	pid, err := uuid.Parse(projectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project id: %w", err)
	}
	entries, err := s.historyRepo.ListForProject(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("failed to load history: %w", err)
	}
	out := make([]HistoryEntryResponse, 0, len(entries))
	for i := range entries {
		out = append(out, toHistoryResponse(&entries[i]))
	}
	return out, nil
}

// --- helpers ---

func (s *workflowService) broadcast(event string, data map[string]interface{}) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(event, data)
}

func parseActor(actorID string) *uuid.UUID {
	if actorID == "" {
		return nil
	}
	parsed, err := uuid.Parse(actorID)
	if err != nil {
		return nil
	}
	return &parsed
}

func startOf(entry *model.DepartmentHistoryEntry) time.Time {
	if entry.WorkStartDate != nil {
		return *entry.WorkStartDate
	}
	return entry.CreatedAt
}

func daysBetween(from, to time.Time) int {
	days := int(to.Sub(from).Hours() / 24)
	if days < 0 {
		return 0
	}
	return days
}

func letterCodes(catalog map[string]model.Department) map[string]string {
	codes := make(map[string]string, len(catalog))
	for id, d := range catalog {
		codes[id] = d.Code
	}
	return codes
}

func toHistoryResponse(e *model.DepartmentHistoryEntry) HistoryEntryResponse {
	resp := HistoryEntryResponse{
		ID:            e.ID.String(),
		ProjectID:     e.ProjectID.String(),
		ToDepartment:  e.ToDepartment,
		WorkStatus:    e.WorkStatus,
		EstimatedDays: e.EstimatedDays,
		ActualDays:    e.ActualDays,
		Notes:         e.Notes,
		CreatedAt:     e.CreatedAt.Format(time.RFC3339),
	}
	resp.FromDepartment = e.FromDepartment
	if e.WorkStartDate != nil {
		v := e.WorkStartDate.Format(time.RFC3339)
		resp.WorkStartDate = &v
	}
	if e.WorkEndDate != nil {
		v := e.WorkEndDate.Format(time.RFC3339)
		resp.WorkEndDate = &v
	}
	if e.MovedBy != nil {
		v := e.MovedBy.String()
		resp.MovedBy = &v
	}
	if e.Mover != nil {
		resp.MoverName = e.Mover.Username
	}
	return resp
}
