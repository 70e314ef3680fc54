package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Task statuses.
const (
	TaskTodo       = "TODO"
	TaskInProgress = "IN_PROGRESS"
	TaskDone       = "DONE"
)

// Task is a unit of work inside a project, optionally pinned to a department.
type Task struct {
	ID           uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"project_id"`
	Project      *Project       `gorm:"foreignKey:ProjectID" json:"-"`
	DepartmentID *string        `gorm:"type:varchar(20);index" json:"department_id"`
	Title        string         `gorm:"type:varchar(255);not null" json:"title"`
	Description  string         `gorm:"type:text" json:"description"`
	Status       string         `gorm:"type:varchar(20);not null;default:'TODO';index" json:"status"`
	AssigneeID   *uuid.UUID     `gorm:"type:uuid;index" json:"assignee_id"`
	Assignee     *User          `gorm:"foreignKey:AssigneeID" json:"assignee,omitempty"`
	DueDate      *time.Time     `json:"due_date"`
	CreatedBy    *uuid.UUID     `gorm:"type:uuid" json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"-"`
}
