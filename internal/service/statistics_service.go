package service

import (
	"context"
	"time"

	"github.com/SaneeshInter/project-management-sub002/internal/model"

	"gorm.io/gorm"
)

type DepartmentLoad struct {
	Department string `json:"department"`
	Projects   int64  `json:"projects"`
}

type CategoryCount struct {
	CategoryID   string `json:"category_id"`
	CategoryName string `json:"category_name"`
	Projects     int64  `json:"projects"`
}

type DepartmentDuration struct {
	Department    string  `json:"department"`
	AvgEstimated  float64 `json:"avg_estimated_days"`
	AvgActual     float64 `json:"avg_actual_days"`
	CompletedRuns int64   `json:"completed_runs"`
}

type RecentMovement struct {
	ProjectID      string  `json:"project_id"`
	ProjectName    string  `json:"project_name"`
	FromDepartment *string `json:"from_department"`
	ToDepartment   string  `json:"to_department"`
	MovedAt        string  `json:"moved_at"`
}

type DashboardResponse struct {
	TotalProjects     int64                `json:"total_projects"`
	ActiveProjects    int64                `json:"active_projects"`
	DeliveredProjects int64                `json:"delivered_projects"`
	OverdueProjects   int64                `json:"overdue_projects"`
	ByDepartment      []DepartmentLoad     `json:"by_department"`
	ByCategory        []CategoryCount      `json:"by_category"`
	Durations         []DepartmentDuration `json:"durations"`
	RecentMovements   []RecentMovement     `json:"recent_movements"`
}

type StatisticsService interface {
	GetDashboard(ctx context.Context) (DashboardResponse, error)
}

type statisticsService struct {
	db *gorm.DB
}

func NewStatisticsService(db *gorm.DB) StatisticsService {
	return &statisticsService{db: db}
}

// GetDashboard computes the aggregate counters shown on the landing dashboard.
func (s *statisticsService) GetDashboard(ctx context.Context) (DashboardResponse, error) {
	var response DashboardResponse

	// Headline counters
	if err := s.db.WithContext(ctx).Model(&model.Project{}).Count(&response.TotalProjects).Error; err != nil {
		return response, err
	}
	if err := s.db.WithContext(ctx).Model(&model.Project{}).
		Where("status = ?", model.ProjectActive).Count(&response.ActiveProjects).Error; err != nil {
		return response, err
	}
	if err := s.db.WithContext(ctx).Model(&model.Project{}).
		Where("status = ?", model.ProjectDelivered).Count(&response.DeliveredProjects).Error; err != nil {
		return response, err
	}
	if err := s.db.WithContext(ctx).Model(&model.Project{}).
		Where("status = ? AND target_date IS NOT NULL AND target_date < ?", model.ProjectActive, time.Now()).
		Count(&response.OverdueProjects).Error; err != nil {
		return response, err
	}

	// Active projects grouped by the department currently holding them
	if err := s.db.WithContext(ctx).Model(&model.Project{}).
		Select("current_department as department, COUNT(*) as projects").
		Where("status = ?", model.ProjectActive).
		Group("current_department").
		Order("projects DESC").
		Scan(&response.ByDepartment).Error; err != nil {
		return response, err
	}

	// Counts per category
	if err := s.db.WithContext(ctx).Table("projects").
		Select("project_categories.id as category_id, project_categories.name as category_name, COUNT(*) as projects").
		Joins("JOIN project_categories ON project_categories.id = projects.category_id").
		Where("projects.deleted_at IS NULL").
		Group("project_categories.id, project_categories.name").
		Order("projects DESC").
		Scan(&response.ByCategory).Error; err != nil {
		return response, err
	}

	// Estimated vs actual days over closed department visits
	if err := s.db.WithContext(ctx).Table("department_history_entries").
		Select("to_department as department, AVG(estimated_days) as avg_estimated, AVG(actual_days) as avg_actual, COUNT(*) as completed_runs").
		Where("work_status = ?", model.StatusCompleted).
		Group("to_department").
		Order("completed_runs DESC").
		Scan(&response.Durations).Error; err != nil {
		return response, err
	}

	// Latest ten department movements across all projects
	var movements []struct {
		ProjectID      string
		ProjectName    string
		FromDepartment *string
		ToDepartment   string
		CreatedAt      time.Time
	}
	if err := s.db.WithContext(ctx).Table("department_history_entries").
		Select("department_history_entries.project_id, projects.name as project_name, department_history_entries.from_department, department_history_entries.to_department, department_history_entries.created_at").
		Joins("JOIN projects ON projects.id = department_history_entries.project_id").
		Order("department_history_entries.created_at DESC").
		Limit(10).
		Scan(&movements).Error; err != nil {
		return response, err
	}
	response.RecentMovements = make([]RecentMovement, 0, len(movements))
	for _, m := range movements {
		response.RecentMovements = append(response.RecentMovements, RecentMovement{
			ProjectID:      m.ProjectID,
			ProjectName:    m.ProjectName,
			FromDepartment: m.FromDepartment,
			ToDepartment:   m.ToDepartment,
			MovedAt:        m.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}

	return response, nil
}
