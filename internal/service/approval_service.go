package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SaneeshInter/project-management-sub002/internal/model"
	"github.com/SaneeshInter/project-management-sub002/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type RequestApprovalRequest struct {
	ApprovalType string `json:"approval_type" binding:"required,oneof=CLIENT_APPROVAL DELIVERY_APPROVAL MANAGER_APPROVAL"`
	Comments     string `json:"comments"`
}

type ApprovalDecisionRequest struct {
	Decision        string `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	Comments        string `json:"comments"`
	RejectionReason string `json:"rejection_reason"`
}

type ApprovalFilter struct {
	Status string // PENDING, APPROVED, REJECTED or empty for all
	Page   int
	Limit  int
}

type ApprovalResponse struct {
	ID              string  `json:"id"`
	HistoryEntryID  string  `json:"history_entry_id"`
	ApprovalType    string  `json:"approval_type"`
	Status          string  `json:"status"`
	RequestedBy     *string `json:"requested_by"`
	RequesterName   string  `json:"requester_name"`
	ReviewedBy      *string `json:"reviewed_by"`
	ReviewerName    string  `json:"reviewer_name"`
	ReviewedAt      *string `json:"reviewed_at"`
	Comments        string  `json:"comments"`
	RejectionReason string  `json:"rejection_reason"`
	CreatedAt       string  `json:"created_at"`
}

// --- Interface ---

type ApprovalService interface {
	RequestApproval(ctx context.Context, entryID string, actorID string, req RequestApprovalRequest) (*ApprovalResponse, error)
	SubmitDecision(ctx context.Context, approvalID string, actorID string, req ApprovalDecisionRequest) (*ApprovalResponse, error)
	ListApprovals(ctx context.Context, filter ApprovalFilter) ([]ApprovalResponse, int64, error)
	ListForEntry(ctx context.Context, entryID string) ([]ApprovalResponse, error)
}

type approvalService struct {
	approvalRepo repository.ApprovalRepository
	historyRepo  repository.HistoryRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewApprovalService(
	approvalRepo repository.ApprovalRepository,
	historyRepo repository.HistoryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ApprovalService {
	return &approvalService{
		approvalRepo: approvalRepo,
		historyRepo:  historyRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

// --- Implementation ---

// RequestApproval opens a sign-off request on a history entry. Only one
// PENDING request per (entry, type) may exist at a time.
func (s *approvalService) RequestApproval(ctx context.Context, entryID string, actorID string, req RequestApprovalRequest) (*ApprovalResponse, error) {
	eid, err := uuid.Parse(entryID)
	if err != nil {
		return nil, fmt.Errorf("invalid history entry id: %w", err)
	}
	actor := parseActor(actorID)

	approval := &model.ApprovalRequest{
		HistoryEntryID: eid,
		ApprovalType:   req.ApprovalType,
		Status:         model.ApprovalPending,
		RequestedBy:    actor,
		Comments:       req.Comments,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		entry, err := s.historyRepo.FindByID(txCtx, eid)
		if err != nil {
			return fmt.Errorf("history entry not found: %w", err)
		}

		existing, err := s.approvalRepo.FindPending(txCtx, eid, req.ApprovalType)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("failed to check pending approvals: %w", err)
		}
		if existing != nil {
			return fmt.Errorf("a %s request is already pending for this department visit", req.ApprovalType)
		}

		if err := s.approvalRepo.Create(txCtx, approval); err != nil {
			// The partial unique index catches a requester who raced past the
			// pending check above.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return fmt.Errorf("a %s request is already pending for this department visit", req.ApprovalType)
			}
			return fmt.Errorf("failed to create approval request: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"approval_type": req.ApprovalType,
			"department":    entry.ToDepartment,
		})
		audit := &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionRequestApproval,
			EntityID:   approval.ID.String(),
			EntityName: req.ApprovalType,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return nil, err
	}

	return s.loadResponse(ctx, approval.ID)
}

// SubmitDecision closes a PENDING request. A CLIENT_APPROVAL decision also
// drives the entry's status machine when the visit is waiting on the client.
func (s *approvalService) SubmitDecision(ctx context.Context, approvalID string, actorID string, req ApprovalDecisionRequest) (*ApprovalResponse, error) {
	aid, err := uuid.Parse(approvalID)
	if err != nil {
		return nil, fmt.Errorf("invalid approval id: %w", err)
	}
	actor := parseActor(actorID)

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		approval, err := s.approvalRepo.FindByID(txCtx, aid)
		if err != nil {
			return fmt.Errorf("approval request not found: %w", err)
		}
		if approval.Status != model.ApprovalPending {
			return fmt.Errorf("approval request is already %s", approval.Status)
		}

		now := time.Now()
		approval.Status = req.Decision
		approval.ReviewedBy = actor
		approval.ReviewedAt = &now
		if req.Comments != "" {
			approval.Comments = req.Comments
		}
		approval.RejectionReason = req.RejectionReason
		if err := s.approvalRepo.Update(txCtx, approval); err != nil {
			return fmt.Errorf("failed to update approval request: %w", err)
		}

		// Client sign-off feeds back into the visit's work status.
		if approval.ApprovalType == model.ApprovalTypeClient {
			entry, err := s.historyRepo.FindByID(txCtx, approval.HistoryEntryID)
			if err != nil {
				return fmt.Errorf("history entry not found: %w", err)
			}
			if entry.WorkStatus == model.StatusPendingClientApproval {
				if req.Decision == model.ApprovalApproved {
					entry.WorkStatus = model.StatusCompleted
					entry.WorkEndDate = &now
					entry.ActualDays = daysBetween(startOf(entry), now)
				} else {
					entry.WorkStatus = model.StatusClientRejected
				}
				if err := s.historyRepo.Update(txCtx, entry); err != nil {
					return fmt.Errorf("failed to update history entry: %w", err)
				}
			}
		}

		action := model.ActionApproveRequest
		if req.Decision == model.ApprovalRejected {
			action = model.ActionRejectRequest
		}
		details, _ := json.Marshal(map[string]interface{}{
			"approval_type": approval.ApprovalType,
			"decision":      req.Decision,
			"reason":        req.RejectionReason,
		})
		audit := &model.AuditLog{
			UserID:     actor,
			Action:     action,
			EntityID:   approval.ID.String(),
			EntityName: approval.ApprovalType,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return nil, err
	}

	return s.loadResponse(ctx, aid)
}

func (s *approvalService) ListApprovals(ctx context.Context, filter ApprovalFilter) ([]ApprovalResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	approvals, total, err := s.approvalRepo.List(ctx, filter.Status, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list approval requests: %w", err)
	}

	out := make([]ApprovalResponse, 0, len(approvals))
	for i := range approvals {
		out = append(out, toApprovalResponse(&approvals[i]))
	}
	return out, total, nil
}

func (s *approvalService) ListForEntry(ctx context.Context, entryID string) ([]ApprovalResponse, error) {
	eid, err := uuid.Parse(entryID)
	if err != nil {
		return nil, fmt.Errorf("invalid history entry id: %w", err)
	}
	approvals, err := s.approvalRepo.ListForEntry(ctx, eid)
	if err != nil {
		return nil, fmt.Errorf("failed to list approvals: %w", err)
	}
	out := make([]ApprovalResponse, 0, len(approvals))
	for i := range approvals {
		out = append(out, toApprovalResponse(&approvals[i]))
	}
	return out, nil
}

// --- helpers ---

func (s *approvalService) loadResponse(ctx context.Context, id uuid.UUID) (*ApprovalResponse, error) {
	approval, err := s.approvalRepo.FindByIDWithRelations(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to reload approval request: %w", err)
	}
	resp := toApprovalResponse(approval)
	return &resp, nil
}

func toApprovalResponse(a *model.ApprovalRequest) ApprovalResponse {
	resp := ApprovalResponse{
		ID:              a.ID.String(),
		HistoryEntryID:  a.HistoryEntryID.String(),
		ApprovalType:    a.ApprovalType,
		Status:          a.Status,
		Comments:        a.Comments,
		RejectionReason: a.RejectionReason,
		CreatedAt:       a.CreatedAt.Format(time.RFC3339),
	}
	if a.RequestedBy != nil {
		v := a.RequestedBy.String()
		resp.RequestedBy = &v
	}
	if a.Requester != nil {
		resp.RequesterName = a.Requester.Username
	}
	if a.ReviewedBy != nil {
		v := a.ReviewedBy.String()
		resp.ReviewedBy = &v
	}
	if a.Reviewer != nil {
		resp.ReviewerName = a.Reviewer.Username
	}
	if a.ReviewedAt != nil {
		v := a.ReviewedAt.Format(time.RFC3339)
		resp.ReviewedAt = &v
	}
	return resp
}
