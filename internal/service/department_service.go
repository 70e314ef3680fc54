package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/SaneeshInter/project-management-sub002/internal/model"
	"github.com/SaneeshInter/project-management-sub002/internal/repository"
	"github.com/SaneeshInter/project-management-sub002/internal/workflow"

	"github.com/google/uuid"
)

// --- DTOs ---

type DepartmentResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Code      string `json:"code"`
	Kind      string `json:"kind"`
	SortOrder int    `json:"sort_order"`
}

type GateResponse struct {
	DepartmentID      string           `json:"department_id"`
	RequiredApprovals []string         `json:"required_approvals"`
	RequiredQAStatus  string           `json:"required_qa_status"`
	MinimumWorkStatus model.WorkStatus `json:"minimum_work_status"`
}

type MappingInput struct {
	DepartmentID  string `json:"department_id" binding:"required"`
	Sequence      int    `json:"sequence" binding:"required,gt=0"`
	IsRequired    bool   `json:"is_required"`
	EstimatedDays int    `json:"estimated_days" binding:"omitempty,min=0"`
}

type ReplaceMappingsRequest struct {
	Mappings []MappingInput `json:"mappings" binding:"required,min=2,dive"`
}

type MappingResponse struct {
	DepartmentID  string `json:"department_id"`
	Sequence      int    `json:"sequence"`
	IsRequired    bool   `json:"is_required"`
	EstimatedDays int    `json:"estimated_days"`
}

type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type CategoryResponse struct {
	ID          string            `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Mappings    []MappingResponse `json:"mappings,omitempty"`
}

// --- Interface ---

type DepartmentService interface {
	ListDepartments(ctx context.Context) ([]DepartmentResponse, error)
	ListGates(ctx context.Context) ([]GateResponse, error)
	ListCategories(ctx context.Context) ([]CategoryResponse, error)
	GetCategory(ctx context.Context, id string) (*CategoryResponse, error)
	CreateCategory(ctx context.Context, actorID string, req CreateCategoryRequest) (*CategoryResponse, error)
	ReplaceCategoryMappings(ctx context.Context, actorID string, categoryID string, req ReplaceMappingsRequest) (*CategoryResponse, error)
}

type departmentService struct {
	deptRepo     repository.DepartmentRepository
	categoryRepo repository.CategoryRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewDepartmentService(
	deptRepo repository.DepartmentRepository,
	categoryRepo repository.CategoryRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) DepartmentService {
	return &departmentService{
		deptRepo:     deptRepo,
		categoryRepo: categoryRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

// --- Implementation ---

func (s *departmentService) ListDepartments(ctx context.Context) ([]DepartmentResponse, error) {
	departments, err := s.deptRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	out := make([]DepartmentResponse, 0, len(departments))
	for _, d := range departments {
		out = append(out, DepartmentResponse{
			ID:        d.ID,
			Name:      d.Name,
			Code:      d.Code,
			Kind:      d.Kind,
			SortOrder: d.SortOrder,
		})
	}
	return out, nil
}

func (s *departmentService) ListGates(ctx context.Context) ([]GateResponse, error) {
	gates, err := s.deptRepo.Gates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list approval gates: %w", err)
	}
	out := make([]GateResponse, 0, len(gates))
	for _, g := range gates {
		out = append(out, GateResponse{
			DepartmentID:      g.DepartmentID,
			RequiredApprovals: g.RequiredApprovals,
			RequiredQAStatus:  g.RequiredQAStatus,
			MinimumWorkStatus: g.MinimumWorkStatus,
		})
	}
	return out, nil
}

func (s *departmentService) ListCategories(ctx context.Context) ([]CategoryResponse, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	out := make([]CategoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, CategoryResponse{
			ID:          c.ID.String(),
			Name:        c.Name,
			Description: c.Description,
		})
	}
	return out, nil
}

func (s *departmentService) GetCategory(ctx context.Context, id string) (*CategoryResponse, error) {
	cid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid category id: %w", err)
	}
	category, err := s.categoryRepo.FindByID(ctx, cid)
	if err != nil {
		return nil, fmt.Errorf("category not found: %w", err)
	}
	resp := toCategoryResponse(category)
	return &resp, nil
}

func (s *departmentService) CreateCategory(ctx context.Context, actorID string, req CreateCategoryRequest) (*CategoryResponse, error) {
	category := &model.ProjectCategory{
		Name:        req.Name,
		Description: req.Description,
	}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, fmt.Errorf("failed to create category: %w", err)
	}
	resp := toCategoryResponse(category)
	return &resp, nil
}

// ReplaceCategoryMappings swaps a category's workflow sequence. The new
// sequence is compiled through the graph builder first, so malformed
// configuration is rejected here and can never surface during a transition.
func (s *departmentService) ReplaceCategoryMappings(ctx context.Context, actorID string, categoryID string, req ReplaceMappingsRequest) (*CategoryResponse, error) {
	cid, err := uuid.Parse(categoryID)
	if err != nil {
		return nil, fmt.Errorf("invalid category id: %w", err)
	}
	category, err := s.categoryRepo.FindByID(ctx, cid)
	if err != nil {
		return nil, fmt.Errorf("category not found: %w", err)
	}

	mappings := make([]model.CategoryDepartmentMapping, 0, len(req.Mappings))
	for _, m := range req.Mappings {
		mappings = append(mappings, model.CategoryDepartmentMapping{
			CategoryID:    cid,
			DepartmentID:  m.DepartmentID,
			Sequence:      m.Sequence,
			IsRequired:    m.IsRequired,
			EstimatedDays: m.EstimatedDays,
		})
	}

	catalog, err := s.deptRepo.Catalog(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load department catalog: %w", err)
	}
	gates, err := s.deptRepo.Gates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load approval gates: %w", err)
	}
	if _, err := workflow.BuildCategoryGraph(category.Name, mappings, gates, catalog); err != nil {
		return nil, err
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.categoryRepo.ReplaceMappings(txCtx, cid, mappings); err != nil {
			return fmt.Errorf("failed to replace mappings: %w", err)
		}
		details, _ := json.Marshal(map[string]interface{}{"count": len(mappings)})
		audit := &model.AuditLog{
			UserID:     parseActor(actorID),
			Action:     model.ActionUpdateMappings,
			EntityID:   cid.String(),
			EntityName: category.Name,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return nil, err
	}

	return s.GetCategory(ctx, categoryID)
}

// --- helpers ---

func toCategoryResponse(c *model.ProjectCategory) CategoryResponse {
	resp := CategoryResponse{
		ID:          c.ID.String(),
		Name:        c.Name,
		Description: c.Description,
	}
	for _, m := range c.Mappings {
		resp.Mappings = append(resp.Mappings, MappingResponse{
			DepartmentID:  m.DepartmentID,
			Sequence:      m.Sequence,
			IsRequired:    m.IsRequired,
			EstimatedDays: m.EstimatedDays,
		})
	}
	return resp
}
