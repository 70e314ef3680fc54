package repository

import (
	"context"

	"github.com/SaneeshInter/project-management-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	Create(ctx context.Context, category *model.ProjectCategory) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ProjectCategory, error)
	List(ctx context.Context) ([]model.ProjectCategory, error)
	Update(ctx context.Context, category *model.ProjectCategory) error
	ListMappings(ctx context.Context, categoryID uuid.UUID) ([]model.CategoryDepartmentMapping, error)
	ReplaceMappings(ctx context.Context, categoryID uuid.UUID, mappings []model.CategoryDepartmentMapping) error
}

type categoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) CategoryRepository {
	return &categoryRepository{db: db}
}

func (r *categoryRepository) Create(ctx context.Context, category *model.ProjectCategory) error {
	return GetDB(ctx, r.db).Create(category).Error
}

func (r *categoryRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ProjectCategory, error) {
	var category model.ProjectCategory
	if err := GetDB(ctx, r.db).Preload("Mappings", func(db *gorm.DB) *gorm.DB {
		return db.Order("sequence asc")
	}).First(&category, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &category, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]model.ProjectCategory, error) {
	var categories []model.ProjectCategory
	if err := GetDB(ctx, r.db).Order("name asc").Find(&categories).Error; err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *categoryRepository) Update(ctx context.Context, category *model.ProjectCategory) error {
	return GetDB(ctx, r.db).Save(category).Error
}

func (r *categoryRepository) ListMappings(ctx context.Context, categoryID uuid.UUID) ([]model.CategoryDepartmentMapping, error) {
	var mappings []model.CategoryDepartmentMapping
	if err := GetDB(ctx, r.db).Where("category_id = ?", categoryID).
		Order("sequence asc").Find(&mappings).Error; err != nil {
		return nil, err
	}
	return mappings, nil
}

// ReplaceMappings swaps a category's whole sequence in one shot. Callers must
// validate the new sequence through the graph builder first.
func (r *categoryRepository) ReplaceMappings(ctx context.Context, categoryID uuid.UUID, mappings []model.CategoryDepartmentMapping) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("category_id = ?", categoryID).
		Delete(&model.CategoryDepartmentMapping{}).Error; err != nil {
		return err
	}
	for i := range mappings {
		mappings[i].CategoryID = categoryID
	}
	return db.Create(&mappings).Error
}
