package model

import (
	"time"

	"github.com/google/uuid"
)

// Approval types a gate may require.
const (
	ApprovalTypeClient   = "CLIENT_APPROVAL"
	ApprovalTypeDelivery = "DELIVERY_APPROVAL"
	ApprovalTypeManager  = "MANAGER_APPROVAL"
)

// ApprovalRequest statuses.
const (
	ApprovalPending  = "PENDING"
	ApprovalApproved = "APPROVED"
	ApprovalRejected = "REJECTED"
)

// ApprovalRequest is a human sign-off owned by one history entry. At most one
// PENDING request may exist per (entry, approval type) at a time; requests are
// never moved between entries. The partial unique index makes the database
// enforce the one-pending rule even against concurrent requesters.
type ApprovalRequest struct {
	ID              uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	HistoryEntryID  uuid.UUID               `gorm:"type:uuid;not null;index;uniqueIndex:uniq_pending_approval_per_entry,where:status = 'PENDING'" json:"history_entry_id"`
	HistoryEntry    *DepartmentHistoryEntry `gorm:"foreignKey:HistoryEntryID" json:"-"`
	ApprovalType    string                  `gorm:"type:varchar(30);not null;index;uniqueIndex:uniq_pending_approval_per_entry" json:"approval_type"`
	Status          string                  `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	RequestedBy     *uuid.UUID              `gorm:"type:uuid;index" json:"requested_by"`
	Requester       *User                   `gorm:"foreignKey:RequestedBy" json:"requester,omitempty"`
	ReviewedBy      *uuid.UUID              `gorm:"type:uuid" json:"reviewed_by"`
	Reviewer        *User                   `gorm:"foreignKey:ReviewedBy" json:"reviewer,omitempty"`
	ReviewedAt      *time.Time              `json:"reviewed_at"`
	Comments        string                  `gorm:"type:text" json:"comments"`
	RejectionReason string                  `gorm:"type:text" json:"rejection_reason"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}
