package model

import (
	"time"

	"github.com/google/uuid"
)

// ProjectCategory selects which workflow graph applies to a project. A
// category without mappings falls back to the default department sequence.
type ProjectCategory struct {
	ID          uuid.UUID                   `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name        string                      `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
	Description string                      `gorm:"type:text" json:"description"`
	Mappings    []CategoryDepartmentMapping `gorm:"foreignKey:CategoryID" json:"mappings,omitempty"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
}

// CategoryDepartmentMapping is one row of a category's ordered department
// sequence. Sequence order defines adjacency: row N's only successor is row
// N+1. Rows are validated as a whole when the mapping is written, so a
// malformed sequence can never reach transition time.
type CategoryDepartmentMapping struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	CategoryID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"category_id"`
	DepartmentID  string     `gorm:"type:varchar(20);not null" json:"department_id"`
	Department    Department `gorm:"foreignKey:DepartmentID" json:"-"`
	Sequence      int        `gorm:"not null" json:"sequence"`
	IsRequired    bool       `gorm:"default:true" json:"is_required"`
	EstimatedDays int        `json:"estimated_days"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}
