package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/SaneeshInter/project-management-sub002/internal/model"
	"github.com/SaneeshInter/project-management-sub002/internal/repository"
	"github.com/SaneeshInter/project-management-sub002/internal/workflow"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// --- DTOs ---

type CreateProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	ClientName  string `json:"client_name"`
	Description string `json:"description"`
	CategoryID  string `json:"category_id"`
	Budget      string `json:"budget"`
	StartDate   string `json:"start_date"`
	TargetDate  string `json:"target_date"`
}

type UpdateProjectRequest struct {
	Name        string `json:"name"`
	ClientName  string `json:"client_name"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"omitempty,oneof=ACTIVE ON_HOLD DELIVERED ARCHIVED"`
	Budget      string `json:"budget"`
	TargetDate  string `json:"target_date"`
}

type ProjectListFilter struct {
	CategoryID        string
	CurrentDepartment string
	Status            string
	Search            string
	Page              int
	Limit             int
}

type ProjectResponse struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	ClientName        string  `json:"client_name"`
	Description       string  `json:"description"`
	CategoryID        *string `json:"category_id"`
	CategoryName      string  `json:"category_name,omitempty"`
	Status            string  `json:"status"`
	CurrentDepartment string  `json:"current_department"`
	NextDepartment    *string `json:"next_department"`
	ProjectCode       string  `json:"project_code"`
	Budget            string  `json:"budget"`
	StartDate         *string `json:"start_date"`
	TargetDate        *string `json:"target_date"`
	CreatedAt         string  `json:"created_at"`
}

// --- Interface ---

type ProjectService interface {
	CreateProject(ctx context.Context, actorID string, req CreateProjectRequest) (*ProjectResponse, error)
	GetProject(ctx context.Context, id string) (*ProjectResponse, error)
	ListProjects(ctx context.Context, filter ProjectListFilter) ([]ProjectResponse, int64, error)
	UpdateProject(ctx context.Context, actorID string, id string, req UpdateProjectRequest) (*ProjectResponse, error)
	DeleteProject(ctx context.Context, actorID string, id string) error
}

type projectService struct {
	projectRepo  repository.ProjectRepository
	historyRepo  repository.HistoryRepository
	categoryRepo repository.CategoryRepository
	deptRepo     repository.DepartmentRepository
	auditRepo    repository.AuditRepository
	txManager    repository.TransactionManager
}

func NewProjectService(
	projectRepo repository.ProjectRepository,
	historyRepo repository.HistoryRepository,
	categoryRepo repository.CategoryRepository,
	deptRepo repository.DepartmentRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ProjectService {
	return &projectService{
		projectRepo:  projectRepo,
		historyRepo:  historyRepo,
		categoryRepo: categoryRepo,
		deptRepo:     deptRepo,
		auditRepo:    auditRepo,
		txManager:    txManager,
	}
}

// --- Implementation ---

// CreateProject creates the project and its first history entry
// (fromDepartment = NULL) in one transaction. The starting department comes
// from the category's compiled graph, or the default sequence.
func (s *projectService) CreateProject(ctx context.Context, actorID string, req CreateProjectRequest) (*ProjectResponse, error) {
	actor := parseActor(actorID)

	var categoryID *uuid.UUID
	if req.CategoryID != "" {
		parsed, err := uuid.Parse(req.CategoryID)
		if err != nil {
			return nil, fmt.Errorf("invalid category id: %w", err)
		}
		categoryID = &parsed
	}

	budget := decimal.Zero
	if req.Budget != "" {
		parsed, err := decimal.NewFromString(req.Budget)
		if err != nil {
			return nil, fmt.Errorf("invalid budget: %w", err)
		}
		budget = parsed
	}

	project := &model.Project{
		Name:        req.Name,
		ClientName:  req.ClientName,
		Description: req.Description,
		CategoryID:  categoryID,
		Status:      model.ProjectActive,
		Budget:      budget,
		CreatedBy:   actor,
	}
	if d, err := parseDate(req.StartDate); err == nil && d != nil {
		project.StartDate = d
	}
	if d, err := parseDate(req.TargetDate); err == nil && d != nil {
		project.TargetDate = d
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		graph := workflow.DefaultGraph()
		if categoryID != nil {
			mappings, err := s.categoryRepo.ListMappings(txCtx, *categoryID)
			if err != nil {
				return fmt.Errorf("failed to load category mappings: %w", err)
			}
			if len(mappings) > 0 {
				catalog, err := s.deptRepo.Catalog(txCtx)
				if err != nil {
					return fmt.Errorf("failed to load department catalog: %w", err)
				}
				gates, err := s.deptRepo.Gates(txCtx)
				if err != nil {
					return fmt.Errorf("failed to load approval gates: %w", err)
				}
				graph, err = workflow.BuildCategoryGraph(categoryID.String(), mappings, gates, catalog)
				if err != nil {
					return err
				}
			}
		}

		start := graph.Start()
		project.CurrentDepartment = start
		if n := graph.SuggestNext(start); n != "" {
			project.NextDepartment = &n
		}

		if err := s.projectRepo.Create(txCtx, project); err != nil {
			return fmt.Errorf("failed to create project: %w", err)
		}

		entry := &model.DepartmentHistoryEntry{
			ProjectID:    project.ID,
			ToDepartment: start,
			WorkStatus:   model.StatusNotStarted,
			MovedBy:      actor,
		}
		if err := s.historyRepo.Create(txCtx, entry); err != nil {
			return fmt.Errorf("failed to create history entry: %w", err)
		}

		details, _ := json.Marshal(map[string]interface{}{"name": project.Name, "department": start})
		audit := &model.AuditLog{
			UserID:     actor,
			Action:     model.ActionCreateProject,
			EntityID:   project.ID.String(),
			EntityName: project.Name,
			Details:    string(details),
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return nil, err
	}

	resp := toProjectResponse(project)
	return &resp, nil
}

func (s *projectService) GetProject(ctx context.Context, id string) (*ProjectResponse, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid project id: %w", err)
	}
	project, err := s.projectRepo.FindByID(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("project not found: %w", err)
	}
	resp := toProjectResponse(project)
	return &resp, nil
}

func (s *projectService) ListProjects(ctx context.Context, filter ProjectListFilter) ([]ProjectResponse, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}

	repoFilter := repository.ProjectFilter{
		CurrentDepartment: filter.CurrentDepartment,
		Status:            filter.Status,
		Search:            filter.Search,
	}
	if filter.CategoryID != "" {
		parsed, err := uuid.Parse(filter.CategoryID)
		if err != nil {
			return nil, 0, fmt.Errorf("invalid category id: %w", err)
		}
		repoFilter.CategoryID = &parsed
	}

	projects, total, err := s.projectRepo.List(ctx, repoFilter, filter.Page, filter.Limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list projects: %w", err)
	}

	out := make([]ProjectResponse, 0, len(projects))
	for i := range projects {
		out = append(out, toProjectResponse(&projects[i]))
	}
	return out, total, nil
}

func (s *projectService) UpdateProject(ctx context.Context, actorID string, id string, req UpdateProjectRequest) (*ProjectResponse, error) {
	pid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid project id: %w", err)
	}

	project, err := s.projectRepo.FindByID(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("project not found: %w", err)
	}

	if req.Name != "" {
		project.Name = req.Name
	}
	if req.ClientName != "" {
		project.ClientName = req.ClientName
	}
	if req.Description != "" {
		project.Description = req.Description
	}
	if req.Status != "" {
		project.Status = req.Status
	}
	if req.Budget != "" {
		parsed, err := decimal.NewFromString(req.Budget)
		if err != nil {
			return nil, fmt.Errorf("invalid budget: %w", err)
		}
		project.Budget = parsed
	}
	if d, err := parseDate(req.TargetDate); err == nil && d != nil {
		project.TargetDate = d
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.projectRepo.Update(txCtx, project); err != nil {
			return fmt.Errorf("failed to update project: %w", err)
		}
		audit := &model.AuditLog{
			UserID:     parseActor(actorID),
			Action:     model.ActionUpdateProject,
			EntityID:   project.ID.String(),
			EntityName: project.Name,
		}
		return s.auditRepo.Log(txCtx, audit)
	})
	if err != nil {
		return nil, err
	}

	resp := toProjectResponse(project)
	return &resp, nil
}

func (s *projectService) DeleteProject(ctx context.Context, actorID string, id string) error {
	pid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid project id: %w", err)
	}
	project, err := s.projectRepo.FindByID(ctx, pid)
	if err != nil {
		return fmt.Errorf("project not found: %w", err)
	}

	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.projectRepo.Delete(txCtx, pid); err != nil {
			return fmt.Errorf("failed to delete project: %w", err)
		}
		audit := &model.AuditLog{
			UserID:     parseActor(actorID),
			Action:     model.ActionDeleteProject,
			EntityID:   pid.String(),
			EntityName: project.Name,
		}
		return s.auditRepo.Log(txCtx, audit)
	})
}

// --- helpers ---

func parseDate(value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func toProjectResponse(p *model.Project) ProjectResponse {
	resp := ProjectResponse{
		ID:                p.ID.String(),
		Name:              p.Name,
		ClientName:        p.ClientName,
		Description:       p.Description,
		Status:            p.Status,
		CurrentDepartment: p.CurrentDepartment,
		NextDepartment:    p.NextDepartment,
		ProjectCode:       p.ProjectCode,
		Budget:            p.Budget.String(),
		CreatedAt:         p.CreatedAt.Format(time.RFC3339),
	}
	if p.CategoryID != nil {
		v := p.CategoryID.String()
		resp.CategoryID = &v
	}
	if p.Category != nil {
		resp.CategoryName = p.Category.Name
	}
	if p.StartDate != nil {
		v := p.StartDate.Format("2006-01-02")
		resp.StartDate = &v
	}
	if p.TargetDate != nil {
		v := p.TargetDate.Format("2006-01-02")
		resp.TargetDate = &v
	}
	return resp
}
