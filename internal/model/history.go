package model

import (
	"time"

	"github.com/google/uuid"
)

// WorkStatus is the sub-state of a single department visit. Each new history
// entry starts at NOT_STARTED; the status machine never spans entries.
type WorkStatus string

const (
	StatusNotStarted            WorkStatus = "NOT_STARTED"
	StatusInProgress            WorkStatus = "IN_PROGRESS"
	StatusOnHold                WorkStatus = "ON_HOLD"
	StatusCorrectionsNeeded     WorkStatus = "CORRECTIONS_NEEDED"
	StatusPendingClientApproval WorkStatus = "PENDING_CLIENT_APPROVAL"
	StatusClientRejected        WorkStatus = "CLIENT_REJECTED"
	StatusQATesting             WorkStatus = "QA_TESTING"
	StatusQARejected            WorkStatus = "QA_REJECTED"
	StatusBugfixInProgress      WorkStatus = "BUGFIX_IN_PROGRESS"
	StatusBeforeLiveQA          WorkStatus = "BEFORE_LIVE_QA"
	StatusReadyForDelivery      WorkStatus = "READY_FOR_DELIVERY"
	StatusCompleted             WorkStatus = "COMPLETED"
)

// DepartmentHistoryEntry is one row per department visit. Entries are
// append-only: a superseded entry is never mutated again except for the
// WorkEndDate/ActualDays stamp set when it is closed as COMPLETED.
type DepartmentHistoryEntry struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ProjectID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"project_id"`
	FromDepartment *string    `gorm:"type:varchar(20)" json:"from_department"` // NULL for the first entry
	ToDepartment   string     `gorm:"type:varchar(20);not null" json:"to_department"`
	WorkStatus     WorkStatus `gorm:"type:varchar(30);not null;default:'NOT_STARTED'" json:"work_status"`
	WorkStartDate  *time.Time `json:"work_start_date"`
	WorkEndDate    *time.Time `json:"work_end_date"`
	EstimatedDays  int        `json:"estimated_days"`
	ActualDays     int        `json:"actual_days"`
	MovedBy        *uuid.UUID `gorm:"type:uuid;index" json:"moved_by"`
	Mover          *User      `gorm:"foreignKey:MovedBy" json:"mover,omitempty"`
	Notes          string     `gorm:"type:text" json:"notes"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
