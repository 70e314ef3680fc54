package database

import (
	"errors"
	"fmt"
	"log"

	"github.com/SaneeshInter/project-management-sub002/internal/model"

	"gorm.io/gorm"
)

// Seed populates the department catalog, approval gates, permissions and the
// built-in roles. It is idempotent: existing rows are left untouched, so it
// runs on every startup.
func Seed(db *gorm.DB) error {
	if err := seedDepartments(db); err != nil {
		return fmt.Errorf("seeding departments: %w", err)
	}
	if err := seedApprovalGates(db); err != nil {
		return fmt.Errorf("seeding approval gates: %w", err)
	}
	if err := seedRolesAndPermissions(db); err != nil {
		return fmt.Errorf("seeding roles: %w", err)
	}
	return nil
}

func seedDepartments(db *gorm.DB) error {
	departments := []model.Department{
		{ID: model.DeptPMO, Name: "Project Management Office", Code: "P", Kind: model.DeptKindManagement, SortOrder: 1},
		{ID: model.DeptDesign, Name: "Design", Code: "D", Kind: model.DeptKindDesign, SortOrder: 2},
		{ID: model.DeptHTML, Name: "HTML", Code: "H", Kind: model.DeptKindBuild, SortOrder: 3},
		{ID: model.DeptPHP, Name: "PHP", Code: "B", Kind: model.DeptKindBuild, SortOrder: 4},
		{ID: model.DeptReact, Name: "React", Code: "R", Kind: model.DeptKindBuild, SortOrder: 5},
		{ID: model.DeptWordpress, Name: "WordPress", Code: "W", Kind: model.DeptKindBuild, SortOrder: 6},
		{ID: model.DeptQA, Name: "Quality Assurance", Code: "Q", Kind: model.DeptKindQA, SortOrder: 7},
		{ID: model.DeptDelivery, Name: "Delivery", Code: "L", Kind: model.DeptKindManagement, SortOrder: 8},
		{ID: model.DeptManager, Name: "Manager Review", Code: "M", Kind: model.DeptKindManagement, SortOrder: 9},
	}

	for _, dept := range departments {
		if err := db.Where(model.Department{ID: dept.ID}).FirstOrCreate(&dept).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedApprovalGates(db *gorm.DB) error {
	gates := []model.ApprovalGate{
		{
			DepartmentID:      model.DeptDesign,
			RequiredApprovals: []string{model.ApprovalTypeClient},
			MinimumWorkStatus: model.StatusCompleted,
		},
		{
			DepartmentID:     model.DeptHTML,
			RequiredQAStatus: model.QARoundPassed,
		},
		{
			DepartmentID:      model.DeptQA,
			RequiredApprovals: []string{model.ApprovalTypeDelivery},
			MinimumWorkStatus: model.StatusReadyForDelivery,
		},
	}

	for _, gate := range gates {
		var existing model.ApprovalGate
		err := db.Where("department_id = ?", gate.DepartmentID).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			if err := db.Create(&gate).Error; err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// permissionCatalog is the full permission set grouped by concern.
var permissionCatalog = []model.Permission{
	{Code: "projects.read", Name: "View projects", Group: "projects"},
	{Code: "projects.write", Name: "Create and edit projects", Group: "projects"},
	{Code: "projects.delete", Name: "Delete projects", Group: "projects"},
	{Code: "workflow.move", Name: "Move projects between departments", Group: "workflow"},
	{Code: "workflow.status", Name: "Change work status", Group: "workflow"},
	{Code: "approvals.read", Name: "View approval requests", Group: "approvals"},
	{Code: "approvals.request", Name: "Request approvals", Group: "approvals"},
	{Code: "approvals.decide", Name: "Approve or reject requests", Group: "approvals"},
	{Code: "qa.read", Name: "View QA rounds", Group: "qa"},
	{Code: "qa.write", Name: "Run QA rounds", Group: "qa"},
	{Code: "categories.write", Name: "Manage category workflows", Group: "categories"},
	{Code: "tasks.read", Name: "View tasks", Group: "tasks"},
	{Code: "tasks.write", Name: "Create and edit tasks", Group: "tasks"},
	{Code: "comments.read", Name: "View comments", Group: "comments"},
	{Code: "comments.write", Name: "Write comments", Group: "comments"},
	{Code: "users.read", Name: "View users", Group: "users"},
	{Code: "users.write", Name: "Create and edit users", Group: "users"},
	{Code: "users.delete", Name: "Delete users", Group: "users"},
	{Code: "roles.read", Name: "View roles", Group: "roles"},
	{Code: "roles.write", Name: "Manage roles", Group: "roles"},
	{Code: "audit.read", Name: "View audit logs", Group: "audit"},
}

// rolePermissions maps each built-in role to its permission codes.
// admin gets the whole catalog.
var rolePermissions = map[string][]string{
	"manager": {
		"projects.read", "projects.write", "projects.delete",
		"workflow.move", "workflow.status",
		"approvals.read", "approvals.request", "approvals.decide",
		"qa.read", "categories.write",
		"tasks.read", "tasks.write",
		"comments.read", "comments.write",
		"users.read", "audit.read",
	},
	"developer": {
		"projects.read",
		"workflow.status",
		"approvals.read", "approvals.request",
		"qa.read",
		"tasks.read", "tasks.write",
		"comments.read", "comments.write",
	},
	"qa": {
		"projects.read",
		"workflow.status",
		"approvals.read",
		"qa.read", "qa.write",
		"tasks.read",
		"comments.read", "comments.write",
	},
	"client": {
		"projects.read",
		"approvals.read", "approvals.decide",
		"comments.read", "comments.write",
	},
}

func seedRolesAndPermissions(db *gorm.DB) error {
	byCode := make(map[string]model.Permission, len(permissionCatalog))
	for _, perm := range permissionCatalog {
		p := perm
		if err := db.Where(model.Permission{Code: p.Code}).FirstOrCreate(&p).Error; err != nil {
			return err
		}
		byCode[p.Code] = p
	}

	all := make([]model.Permission, 0, len(byCode))
	for _, p := range byCode {
		all = append(all, p)
	}

	roles := map[string][]model.Permission{
		"admin": all,
	}
	for name, codes := range rolePermissions {
		perms := make([]model.Permission, 0, len(codes))
		for _, code := range codes {
			perms = append(perms, byCode[code])
		}
		roles[name] = perms
	}

	for name, perms := range roles {
		var role model.Role
		err := db.Where("name = ?", name).First(&role).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			role = model.Role{Name: name, IsSystem: true, Permissions: perms}
			if err := db.Create(&role).Error; err != nil {
				return err
			}
			log.Printf("Seeded role %q with %d permissions", name, len(perms))
			continue
		}
		if err != nil {
			return err
		}
	}
	return nil
}
