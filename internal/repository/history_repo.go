package repository

import (
	"context"

	"github.com/SaneeshInter/project-management-sub002/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryRepository is the append-only ledger of department visits. Closed
// entries are never rewritten; the only post-creation mutation is the status
// update on the current entry (including the COMPLETED stamp on cut-over).
type HistoryRepository interface {
	Create(ctx context.Context, entry *model.DepartmentHistoryEntry) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.DepartmentHistoryEntry, error)
	LatestForProject(ctx context.Context, projectID uuid.UUID) (*model.DepartmentHistoryEntry, error)
	ListForProject(ctx context.Context, projectID uuid.UUID) ([]model.DepartmentHistoryEntry, error)
	Update(ctx context.Context, entry *model.DepartmentHistoryEntry) error
	CountForProject(ctx context.Context, projectID uuid.UUID) (int64, error)
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Create(ctx context.Context, entry *model.DepartmentHistoryEntry) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *historyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.DepartmentHistoryEntry, error) {
	var entry model.DepartmentHistoryEntry
	if err := GetDB(ctx, r.db).First(&entry, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *historyRepository) LatestForProject(ctx context.Context, projectID uuid.UUID) (*model.DepartmentHistoryEntry, error) {
	var entry model.DepartmentHistoryEntry
	if err := GetDB(ctx, r.db).Where("project_id = ?", projectID).
		Order("created_at desc").First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

func (r *historyRepository) ListForProject(ctx context.Context, projectID uuid.UUID) ([]model.DepartmentHistoryEntry, error) {
	var entries []model.DepartmentHistoryEntry
	if err := GetDB(ctx, r.db).Preload("Mover").Where("project_id = ?", projectID).
		Order("created_at asc").Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}

func (r *historyRepository) Update(ctx context.Context, entry *model.DepartmentHistoryEntry) error {
	return GetDB(ctx, r.db).Save(entry).Error
}

func (r *historyRepository) CountForProject(ctx context.Context, projectID uuid.UUID) (int64, error) {
	var total int64
	err := GetDB(ctx, r.db).Model(&model.DepartmentHistoryEntry{}).
		Where("project_id = ?", projectID).Count(&total).Error
	return total, err
}
