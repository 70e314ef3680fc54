package service

import (
	"context"
	"fmt"
	"time"

	"github.com/SaneeshInter/project-management-sub002/internal/model"
	"github.com/SaneeshInter/project-management-sub002/internal/repository"

	"github.com/google/uuid"
)

// --- DTOs ---

type CreateTaskRequest struct {
	Title        string `json:"title" binding:"required"`
	Description  string `json:"description"`
	DepartmentID string `json:"department_id"`
	AssigneeID   string `json:"assignee_id"`
	DueDate      string `json:"due_date"`
}

type UpdateTaskRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"omitempty,oneof=TODO IN_PROGRESS DONE"`
	AssigneeID  string `json:"assignee_id"`
	DueDate     string `json:"due_date"`
}

type TaskResponse struct {
	ID           string  `json:"id"`
	ProjectID    string  `json:"project_id"`
	DepartmentID *string `json:"department_id"`
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	Status       string  `json:"status"`
	AssigneeID   *string `json:"assignee_id"`
	AssigneeName string  `json:"assignee_name,omitempty"`
	DueDate      *string `json:"due_date"`
	CreatedAt    string  `json:"created_at"`
}

// --- Interface ---

type TaskService interface {
	CreateTask(ctx context.Context, projectID string, actorID string, req CreateTaskRequest) (*TaskResponse, error)
	ListTasks(ctx context.Context, projectID string, status string, page, limit int) ([]TaskResponse, int64, error)
	UpdateTask(ctx context.Context, id string, req UpdateTaskRequest) (*TaskResponse, error)
	DeleteTask(ctx context.Context, id string) error
}

type taskService struct {
	taskRepo    repository.TaskRepository
	projectRepo repository.ProjectRepository
}

func NewTaskService(taskRepo repository.TaskRepository, projectRepo repository.ProjectRepository) TaskService {
	return &taskService{taskRepo: taskRepo, projectRepo: projectRepo}
}

// --- Implementation ---

func (s *taskService) CreateTask(ctx context.Context, projectID string, actorID string, req CreateTaskRequest) (*TaskResponse, error) {
	pid, err := uuid.Parse(projectID)
	if err != nil {
		return nil, fmt.Errorf("invalid project id: %w", err)
	}
	if _, err := s.projectRepo.FindByID(ctx, pid); err != nil {
		return nil, fmt.Errorf("project not found: %w", err)
	}

	task := &model.Task{
		ProjectID:   pid,
		Title:       req.Title,
		Description: req.Description,
		Status:      model.TaskTodo,
		CreatedBy:   parseActor(actorID),
	}
	if req.DepartmentID != "" {
		task.DepartmentID = &req.DepartmentID
	}
	if req.AssigneeID != "" {
		parsed, err := uuid.Parse(req.AssigneeID)
		if err != nil {
			return nil, fmt.Errorf("invalid assignee id: %w", err)
		}
		task.AssigneeID = &parsed
	}
	if d, err := parseDate(req.DueDate); err == nil && d != nil {
		task.DueDate = d
	}

	if err := s.taskRepo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}

	resp := toTaskResponse(task)
	return &resp, nil
}

func (s *taskService) ListTasks(ctx context.Context, projectID string, status string, page, limit int) ([]TaskResponse, int64, error) {
	pid, err := uuid.Parse(projectID)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid project id: %w", err)
	}
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	tasks, total, err := s.taskRepo.ListForProject(ctx, pid, status, page, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list tasks: %w", err)
	}

	out := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, toTaskResponse(&tasks[i]))
	}
	return out, total, nil
}

func (s *taskService) UpdateTask(ctx context.Context, id string, req UpdateTaskRequest) (*TaskResponse, error) {
	tid, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid task id: %w", err)
	}
	task, err := s.taskRepo.FindByID(ctx, tid)
	if err != nil {
		return nil, fmt.Errorf("task not found: %w", err)
	}

	if req.Title != "" {
		task.Title = req.Title
	}
	if req.Description != "" {
		task.Description = req.Description
	}
	if req.Status != "" {
		task.Status = req.Status
	}
	if req.AssigneeID != "" {
		parsed, err := uuid.Parse(req.AssigneeID)
		if err != nil {
			return nil, fmt.Errorf("invalid assignee id: %w", err)
		}
		task.AssigneeID = &parsed
	}
	if d, err := parseDate(req.DueDate); err == nil && d != nil {
		task.DueDate = d
	}

	if err := s.taskRepo.Update(ctx, task); err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}

	resp := toTaskResponse(task)
	return &resp, nil
}

func (s *taskService) DeleteTask(ctx context.Context, id string) error {
	tid, err := uuid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid task id: %w", err)
	}
	if _, err := s.taskRepo.FindByID(ctx, tid); err != nil {
		return fmt.Errorf("task not found: %w", err)
	}
	return s.taskRepo.Delete(ctx, tid)
}

// --- helpers ---

func toTaskResponse(t *model.Task) TaskResponse {
	resp := TaskResponse{
		ID:           t.ID.String(),
		ProjectID:    t.ProjectID.String(),
		DepartmentID: t.DepartmentID,
		Title:        t.Title,
		Description:  t.Description,
		Status:       t.Status,
		CreatedAt:    t.CreatedAt.Format(time.RFC3339),
	}
	if t.AssigneeID != nil {
		v := t.AssigneeID.String()
		resp.AssigneeID = &v
	}
	if t.Assignee != nil {
		resp.AssigneeName = t.Assignee.Username
	}
	if t.DueDate != nil {
		v := t.DueDate.Format("2006-01-02")
		resp.DueDate = &v
	}
	return resp
}
