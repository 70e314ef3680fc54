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

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type StartQARoundRequest struct {
	QAType string `json:"qa_type" binding:"required,oneof=FUNCTIONAL REGRESSION BEFORE_LIVE"`
}

type QABugInput struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
	Severity    string `json:"severity" binding:"omitempty,oneof=LOW MEDIUM HIGH CRITICAL"`
}

type CompleteQARoundRequest struct {
	Outcome      string       `json:"outcome" binding:"required,oneof=PASSED FAILED"`
	BugsFound    int          `json:"bugs_found" binding:"omitempty,min=0"`
	CriticalBugs int          `json:"critical_bugs" binding:"omitempty,min=0"`
	Bugs         []QABugInput `json:"bugs" binding:"omitempty,dive"`
}

type QARoundResponse struct {
	ID             string  `json:"id"`
	HistoryEntryID string  `json:"history_entry_id"`
	QAType         string  `json:"qa_type"`
	RoundNumber    int     `json:"round_number"`
	Status         string  `json:"status"`
	BugsFound      int     `json:"bugs_found"`
	CriticalBugs   int     `json:"critical_bugs"`
	TestedBy       *string `json:"tested_by"`
	TesterName     string  `json:"tester_name,omitempty"`
	StartedAt      string  `json:"started_at"`
	FinishedAt     *string `json:"finished_at"`
}

// --- Interface ---

type QAService interface {
	StartRound(ctx context.Context, entryID string, actorID string, req StartQARoundRequest) (*QARoundResponse, error)
	CompleteRound(ctx context.Context, roundID string, actorID string, req CompleteQARoundRequest) (*QARoundResponse, error)
	ListRoundsForEntry(ctx context.Context, entryID string) ([]QARoundResponse, error)
}

type qaService struct {
	qaRepo      repository.QARepository
	historyRepo repository.HistoryRepository
	deptRepo    repository.DepartmentRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewQAService(
	qaRepo repository.QARepository,
	historyRepo repository.HistoryRepository,
	deptRepo repository.DepartmentRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) QAService {
	return &qaService{
		qaRepo:      qaRepo,
		historyRepo: historyRepo,
		deptRepo:    deptRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

// qaEligible lists the visit statuses a QA round may be opened in.
var qaEligible = map[model.WorkStatus]bool{
	model.StatusQATesting:        true,
	model.StatusQARejected:       true,
	model.StatusBugfixInProgress: true,
	model.StatusBeforeLiveQA:     true,
}

// --- Implementation ---

// StartRound opens the next QA round on a visit. Round numbers are
// monotonically increasing per history entry.
func (s *qaService) StartRound(ctx context.Context, entryID string, actorID string, req StartQARoundRequest) (*QARoundResponse, error) {
	eid, err := uuid.Parse(entryID)
	if err != nil {
		return nil, fmt.Errorf("invalid history entry id: %w", err)
	}
	actor := parseActor(actorID)

	round := &model.QATestingRound{
		HistoryEntryID: eid,
		QAType:         req.QAType,
		Status:         model.QARoundInProgress,
		TestedBy:       actor,
		StartedAt:      time.Now(),
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		entry, err := s.historyRepo.FindByID(txCtx, eid)
		if err != nil {
			return fmt.Errorf("history entry not found: %w", err)
		}
		if !qaEligible[entry.WorkStatus] {
			return fmt.Errorf("cannot start QA round while work status is %s", entry.WorkStatus)
		}

		max, err := s.qaRepo.MaxRoundNumber(txCtx, eid)
		if err != nil {
			return fmt.Errorf("failed to determine round number: %w", err)
		}
		round.RoundNumber = max + 1

		if err := s.qaRepo.CreateRound(txCtx, round); err != nil {
			// Unique (entry, round number): a concurrent tester took this
			// number first. Surface it as a retryable conflict.
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return workflow.ErrConcurrentModification
			}
			return fmt.Errorf("failed to create QA round: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{
			"qa_type":      req.QAType,
			"round_number": round.RoundNumber,
			"department":   entry.ToDepartment,
		})
		audit := &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionStartQARound,
			EntityID:   round.ID.String(),
			EntityName: req.QAType,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return nil, err
	}

	resp := toQARoundResponse(round)
	return &resp, nil
}

// CompleteRound records the outcome of an in-progress round. When the visit
// is sitting in QA_TESTING the outcome also drives its status machine:
// PASSED completes the visit (or readies it for delivery in the QA
// department), FAILED sends it to QA_REJECTED.
func (s *qaService) CompleteRound(ctx context.Context, roundID string, actorID string, req CompleteQARoundRequest) (*QARoundResponse, error) {
	rid, err := uuid.Parse(roundID)
	if err != nil {
		return nil, fmt.Errorf("invalid QA round id: %w", err)
	}
	actor := parseActor(actorID)

	var completed *model.QATestingRound
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		round, err := s.qaRepo.FindRoundByID(txCtx, rid)
		if err != nil {
			return fmt.Errorf("QA round not found: %w", err)
		}
		if round.Status != model.QARoundInProgress {
			return fmt.Errorf("QA round is already %s", round.Status)
		}

		now := time.Now()
		round.Status = req.Outcome
		round.BugsFound = req.BugsFound
		round.CriticalBugs = req.CriticalBugs
		round.FinishedAt = &now
		if err := s.qaRepo.UpdateRound(txCtx, round); err != nil {
			return fmt.Errorf("failed to update QA round: %w", err)
		}

		if req.Outcome == model.QARoundFailed {
			for _, b := range req.Bugs {
				severity := b.Severity
				if severity == "" {
					severity = model.BugSeverityMedium
				}
				bug := &model.QABug{
					QARoundID:   round.ID,
					Title:       b.Title,
					Description: b.Description,
					Severity:    severity,
				}
				if err := s.qaRepo.CreateBug(txCtx, bug); err != nil {
					return fmt.Errorf("failed to record bug: %w", err)
				}
			}
		}

		entry, err := s.historyRepo.FindByID(txCtx, round.HistoryEntryID)
		if err != nil {
			return fmt.Errorf("history entry not found: %w", err)
		}
		if entry.WorkStatus == model.StatusQATesting || entry.WorkStatus == model.StatusBeforeLiveQA {
			if req.Outcome == model.QARoundPassed {
				dept, err := s.deptRepo.FindByID(txCtx, entry.ToDepartment)
				if err != nil {
					return fmt.Errorf("department %s not found: %w", entry.ToDepartment, err)
				}
				if dept.Kind == model.DeptKindQA {
					entry.WorkStatus = model.StatusReadyForDelivery
				} else {
					entry.WorkStatus = model.StatusCompleted
					entry.WorkEndDate = &now
					entry.ActualDays = daysBetween(startOf(entry), now)
				}
			} else {
				entry.WorkStatus = model.StatusQARejected
			}
			if err := s.historyRepo.Update(txCtx, entry); err != nil {
				return fmt.Errorf("failed to update history entry: %w", err)
			}
		}

		details, _ := json.Marshal(map[string]interface{}{
			"qa_type":       round.QAType,
			"round_number":  round.RoundNumber,
			"outcome":       req.Outcome,
			"bugs_found":    req.BugsFound,
			"critical_bugs": req.CriticalBugs,
		})
		audit := &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionCompleteQARound,
			EntityID:   round.ID.String(),
			EntityName: round.QAType,
			Details:    string(details),
		}
		if err := s.auditRepo.Log(txCtx, audit); err != nil {
			return fmt.Errorf("failed to write audit log: %w", err)
		}

		completed = round
		return nil
	})
	if err != nil {
		return nil, err
	}

	resp := toQARoundResponse(completed)
	return &resp, nil
}

func (s *qaService) ListRoundsForEntry(ctx context.Context, entryID string) ([]QARoundResponse, error) {
	eid, err := uuid.Parse(entryID)
	if err != nil {
		return nil, fmt.Errorf("invalid history entry id: %w", err)
	}
	rounds, err := s.qaRepo.ListRoundsForEntry(ctx, eid)
	if err != nil {
		return nil, fmt.Errorf("failed to list QA rounds: %w", err)
	}
	out := make([]QARoundResponse, 0, len(rounds))
	for i := range rounds {
		out = append(out, toQARoundResponse(&rounds[i]))
	}
	return out, nil
}

// --- helpers ---

func toQARoundResponse(r *model.QATestingRound) QARoundResponse {
	resp := QARoundResponse{
		ID:             r.ID.String(),
		HistoryEntryID: r.HistoryEntryID.String(),
		QAType:         r.QAType,
		RoundNumber:    r.RoundNumber,
		Status:         r.Status,
		BugsFound:      r.BugsFound,
		CriticalBugs:   r.CriticalBugs,
		StartedAt:      r.StartedAt.Format(time.RFC3339),
	}
	if r.TestedBy != nil {
		v := r.TestedBy.String()
		resp.TestedBy = &v
	}
	if r.Tester != nil {
		resp.TesterName = r.Tester.Username
	}
	if r.FinishedAt != nil {
		v := r.FinishedAt.Format(time.RFC3339)
		resp.FinishedAt = &v
	}
	return resp
}
