package database

import (
	"log"

	"github.com/SaneeshInter/project-management-sub002/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	// TranslateError turns driver unique-violation errors into
	// gorm.ErrDuplicatedKey so services can map races onto domain errors.
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Role{},
		&model.Permission{},
		&model.Department{},
		&model.ApprovalGate{},
		&model.ProjectCategory{},
		&model.CategoryDepartmentMapping{},
		&model.Project{},
		&model.DepartmentHistoryEntry{},
		&model.ApprovalRequest{},
		&model.QATestingRound{},
		&model.QABug{},
		&model.Task{},
		&model.Comment{},
		&model.AuditLog{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
