package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Project lifecycle statuses (coarse, independent of the workflow position).
const (
	ProjectActive    = "ACTIVE"
	ProjectOnHold    = "ON_HOLD"
	ProjectDelivered = "DELIVERED"
	ProjectArchived  = "ARCHIVED"
)

// Project is the tracked unit of work. CurrentDepartment must always equal
// the ToDepartment of the latest history entry; the transition coordinator
// enforces that within a single transaction. ProjectCode is a cached
// projection over completed history entries, never authoritative.
type Project struct {
	ID                uuid.UUID        `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name              string           `gorm:"type:varchar(255);not null" json:"name"`
	ClientName        string           `gorm:"type:varchar(255)" json:"client_name"`
	Description       string           `gorm:"type:text" json:"description"`
	CategoryID        *uuid.UUID       `gorm:"type:uuid;index" json:"category_id"`
	Category          *ProjectCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Status            string           `gorm:"type:varchar(20);not null;default:'ACTIVE'" json:"status"`
	CurrentDepartment string           `gorm:"type:varchar(20);not null;index" json:"current_department"`
	NextDepartment    *string          `gorm:"type:varchar(20)" json:"next_department"`
	ProjectCode       string           `gorm:"type:varchar(50)" json:"project_code"`
	Budget            decimal.Decimal  `gorm:"type:numeric(14,2);default:0" json:"budget"`
	StartDate         *time.Time       `json:"start_date"`
	TargetDate        *time.Time       `json:"target_date"`
	CreatedBy         *uuid.UUID       `gorm:"type:uuid" json:"created_by"`
	Creator           *User            `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	CreatedAt         time.Time        `json:"created_at"`
	UpdatedAt         time.Time        `json:"updated_at"`
	DeletedAt         gorm.DeletedAt   `gorm:"index" json:"-"`
}
