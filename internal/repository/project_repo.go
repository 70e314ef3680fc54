package repository

import (
	"context"

	"github.com/SaneeshInter/project-management-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ProjectFilter narrows project listings.
type ProjectFilter struct {
	CategoryID        *uuid.UUID
	CurrentDepartment string
	Status            string
	Search            string
}

type ProjectRepository interface {
	Create(ctx context.Context, project *model.Project) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Project, error)
	List(ctx context.Context, filter ProjectFilter, page, limit int) ([]model.Project, int64, error)
	Update(ctx context.Context, project *model.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	CutOverDepartment(ctx context.Context, id uuid.UUID, expectedCurrent, newCurrent string, nextDepartment *string, projectCode string) (bool, error)
	CountByDepartment(ctx context.Context) (map[string]int64, error)
}

type projectRepository struct {
	db *gorm.DB
}

func NewProjectRepository(db *gorm.DB) ProjectRepository {
	return &projectRepository{db: db}
}

func (r *projectRepository) Create(ctx context.Context, project *model.Project) error {
	return GetDB(ctx, r.db).Create(project).Error
}

func (r *projectRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := GetDB(ctx, r.db).Preload("Category").Preload("Creator").
		First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// FindByIDForUpdate loads the project row under a row-level lock. Only
// meaningful inside a transaction.
func (r *projectRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	var project model.Project
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&project, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

func (r *projectRepository) List(ctx context.Context, filter ProjectFilter, page, limit int) ([]model.Project, int64, error) {
	var projects []model.Project
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Project{})
	if filter.CategoryID != nil {
		query = query.Where("category_id = ?", *filter.CategoryID)
	}
	if filter.CurrentDepartment != "" {
		query = query.Where("current_department = ?", filter.CurrentDepartment)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Search != "" {
		query = query.Where("name ILIKE ? OR client_name ILIKE ?", "%"+filter.Search+"%", "%"+filter.Search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := query.Preload("Category").Order("created_at desc").
		Offset(offset).Limit(limit).Find(&projects).Error; err != nil {
		return nil, 0, err
	}

	return projects, total, nil
}

func (r *projectRepository) Update(ctx context.Context, project *model.Project) error {
	return GetDB(ctx, r.db).Save(project).Error
}

func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Project{}).Error
}

// CutOverDepartment flips the project's denormalized workflow pointers,
// guarded by the department the caller saw when validating. Returns false
// when the guard misses, meaning another writer moved the project first.
func (r *projectRepository) CutOverDepartment(ctx context.Context, id uuid.UUID, expectedCurrent, newCurrent string, nextDepartment *string, projectCode string) (bool, error) {
	res := GetDB(ctx, r.db).Model(&model.Project{}).
		Where("id = ? AND current_department = ?", id, expectedCurrent).
		Updates(map[string]interface{}{
			"current_department": newCurrent,
			"next_department":    nextDepartment,
			"project_code":       projectCode,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}

func (r *projectRepository) CountByDepartment(ctx context.Context) (map[string]int64, error) {
	type row struct {
		CurrentDepartment string
		Total             int64
	}
	var rows []row
	if err := GetDB(ctx, r.db).Model(&model.Project{}).
		Select("current_department, count(*) as total").
		Group("current_department").Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, rw := range rows {
		out[rw.CurrentDepartment] = rw.Total
	}
	return out, nil
}
