package model

import (
	"time"

	"github.com/google/uuid"
)

// QA round types and outcomes.
const (
	QATypeFunctional = "FUNCTIONAL"
	QATypeRegression = "REGRESSION"
	QATypeBeforeLive = "BEFORE_LIVE"

	QARoundInProgress = "IN_PROGRESS"
	QARoundPassed     = "PASSED"
	QARoundFailed     = "FAILED"
)

// QA bug severities.
const (
	BugSeverityLow      = "LOW"
	BugSeverityMedium   = "MEDIUM"
	BugSeverityHigh     = "HIGH"
	BugSeverityCritical = "CRITICAL"
)

// QATestingRound is one testing pass over a history entry. RoundNumber is
// monotonically increasing per entry; a FAILED round may spawn QABug rows and
// a follow-up round once bugfixing finishes. The unique index on
// (history_entry_id, round_number) rejects two testers landing the same
// number concurrently.
type QATestingRound struct {
	ID             uuid.UUID               `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	HistoryEntryID uuid.UUID               `gorm:"type:uuid;not null;index;uniqueIndex:uniq_round_number_per_entry" json:"history_entry_id"`
	HistoryEntry   *DepartmentHistoryEntry `gorm:"foreignKey:HistoryEntryID" json:"-"`
	QAType         string                  `gorm:"type:varchar(20);not null" json:"qa_type"`
	RoundNumber    int                     `gorm:"not null;uniqueIndex:uniq_round_number_per_entry" json:"round_number"`
	Status         string                  `gorm:"type:varchar(20);not null;default:'IN_PROGRESS';index" json:"status"`
	BugsFound      int                     `json:"bugs_found"`
	CriticalBugs   int                     `json:"critical_bugs"`
	TestedBy       *uuid.UUID              `gorm:"type:uuid" json:"tested_by"`
	Tester         *User                   `gorm:"foreignKey:TestedBy" json:"tester,omitempty"`
	StartedAt      time.Time               `json:"started_at"`
	FinishedAt     *time.Time              `json:"finished_at"`
	CreatedAt      time.Time               `json:"created_at"`
	UpdatedAt      time.Time               `json:"updated_at"`
}

// QABug is a defect recorded against a failed QA round.
type QABug struct {
	ID          uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QARoundID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"qa_round_id"`
	QARound     *QATestingRound `gorm:"foreignKey:QARoundID" json:"-"`
	Title       string          `gorm:"type:varchar(255);not null" json:"title"`
	Description string          `gorm:"type:text" json:"description"`
	Severity    string          `gorm:"type:varchar(20);not null;default:'MEDIUM'" json:"severity"`
	Resolved    bool            `gorm:"default:false" json:"resolved"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}
