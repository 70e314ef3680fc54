package repository

import (
	"context"
	"errors"

	"github.com/SaneeshInter/project-management-sub002/internal/model"

	"gorm.io/gorm"
)

// DepartmentRepository serves the department catalog and the per-department
// approval gates. Both are configuration: seeded once, read often.
type DepartmentRepository interface {
	List(ctx context.Context) ([]model.Department, error)
	FindByID(ctx context.Context, id string) (*model.Department, error)
	Catalog(ctx context.Context) (map[string]model.Department, error)
	Gates(ctx context.Context) (map[string]model.ApprovalGate, error)
	GateFor(ctx context.Context, departmentID string) (*model.ApprovalGate, error)
}

type departmentRepository struct {
	db *gorm.DB
}

func NewDepartmentRepository(db *gorm.DB) DepartmentRepository {
	return &departmentRepository{db: db}
}

func (r *departmentRepository) List(ctx context.Context) ([]model.Department, error) {
	var departments []model.Department
	if err := GetDB(ctx, r.db).Order("sort_order asc").Find(&departments).Error; err != nil {
		return nil, err
	}
	return departments, nil
}

func (r *departmentRepository) FindByID(ctx context.Context, id string) (*model.Department, error) {
	var dept model.Department
	if err := GetDB(ctx, r.db).First(&dept, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &dept, nil
}

func (r *departmentRepository) Catalog(ctx context.Context) (map[string]model.Department, error) {
	departments, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	catalog := make(map[string]model.Department, len(departments))
	for _, d := range departments {
		catalog[d.ID] = d
	}
	return catalog, nil
}

func (r *departmentRepository) Gates(ctx context.Context) (map[string]model.ApprovalGate, error) {
	var gates []model.ApprovalGate
	if err := GetDB(ctx, r.db).Find(&gates).Error; err != nil {
		return nil, err
	}
	out := make(map[string]model.ApprovalGate, len(gates))
	for _, g := range gates {
		out[g.DepartmentID] = g
	}
	return out, nil
}

// GateFor returns nil without error when the department has no gate.
func (r *departmentRepository) GateFor(ctx context.Context, departmentID string) (*model.ApprovalGate, error) {
	var gate model.ApprovalGate
	err := GetDB(ctx, r.db).First(&gate, "department_id = ?", departmentID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &gate, nil
}
