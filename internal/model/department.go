package model

import "time"

// Department identifiers form a closed catalog. They are seeded once and are
// immutable after any history entry references them.
const (
	DeptPMO       = "PMO"
	DeptDesign    = "DESIGN"
	DeptHTML      = "HTML"
	DeptPHP       = "PHP"
	DeptReact     = "REACT"
	DeptWordpress = "WORDPRESS"
	DeptQA        = "QA"
	DeptDelivery  = "DELIVERY"
	DeptManager   = "MANAGER"
)

// Department kind controls which work-status branches a visit may take:
// design-type departments submit for client approval, build-type for QA testing.
const (
	DeptKindManagement = "MANAGEMENT"
	DeptKindDesign     = "DESIGN"
	DeptKindBuild      = "BUILD"
	DeptKindQA         = "QA"
)

// Department is one stage of project work. Code is the single letter used for
// project-code derivation, SortOrder its position in the default sequence.
type Department struct {
	ID        string    `gorm:"type:varchar(20);primaryKey" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	Code      string    `gorm:"type:char(1);not null;uniqueIndex" json:"code"`
	Kind      string    `gorm:"type:varchar(20);not null" json:"kind"`
	SortOrder int       `gorm:"not null" json:"sort_order"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ApprovalGate is the per-department exit gate consulted before transitions
// flagged with requiresApproval/requiresQAPassing. A department without a row
// is unconditionally passable once the rule's work status is reached.
type ApprovalGate struct {
	ID                uint       `gorm:"primaryKey" json:"id"`
	DepartmentID      string     `gorm:"type:varchar(20);not null;uniqueIndex" json:"department_id"`
	Department        Department `gorm:"foreignKey:DepartmentID" json:"-"`
	RequiredApprovals []string   `gorm:"serializer:json;type:jsonb" json:"required_approvals"`
	RequiredQAStatus  string     `gorm:"type:varchar(20)" json:"required_qa_status"`
	MinimumWorkStatus WorkStatus `gorm:"type:varchar(30)" json:"minimum_work_status"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}
