package workflow

import (
	"testing"
	"time"

	"github.com/SaneeshInter/project-management-sub002/internal/model"

	"github.com/stretchr/testify/assert"
)

var letterCodes = map[string]string{
	model.DeptPMO:       "P",
	model.DeptDesign:    "D",
	model.DeptHTML:      "H",
	model.DeptPHP:       "B",
	model.DeptReact:     "R",
	model.DeptWordpress: "W",
	model.DeptQA:        "Q",
	model.DeptDelivery:  "L",
	model.DeptManager:   "M",
}

func entry(dept string, status model.WorkStatus, createdAt time.Time) model.DepartmentHistoryEntry {
	return model.DepartmentHistoryEntry{ToDepartment: dept, WorkStatus: status, CreatedAt: createdAt}
}

func TestProjectCodeEmptyHistory(t *testing.T) {
	assert.Equal(t, "", ProjectCode(nil, letterCodes))
	assert.Equal(t, "", ProjectCode([]model.DepartmentHistoryEntry{}, letterCodes))
}

func TestProjectCodeOnlyCompletedVisits(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// PMO and DESIGN done, HTML still in progress: code is "PD".
	entries := []model.DepartmentHistoryEntry{
		entry(model.DeptPMO, model.StatusCompleted, base),
		entry(model.DeptDesign, model.StatusCompleted, base.Add(24*time.Hour)),
		entry(model.DeptHTML, model.StatusInProgress, base.Add(48*time.Hour)),
	}
	assert.Equal(t, "PD", ProjectCode(entries, letterCodes))
}

func TestProjectCodeFullRun(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	entries := []model.DepartmentHistoryEntry{}
	for i, dept := range []string{
		model.DeptPMO, model.DeptDesign, model.DeptHTML, model.DeptReact,
		model.DeptQA, model.DeptDelivery, model.DeptManager,
	} {
		entries = append(entries, entry(dept, model.StatusCompleted, base.Add(time.Duration(i)*time.Hour)))
	}

	assert.Equal(t, "PDHRQLM", ProjectCode(entries, letterCodes))
}

func TestProjectCodeCreationOrderNotInputOrder(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	entries := []model.DepartmentHistoryEntry{
		entry(model.DeptDesign, model.StatusCompleted, base.Add(time.Hour)),
		entry(model.DeptPMO, model.StatusCompleted, base),
	}
	assert.Equal(t, "PD", ProjectCode(entries, letterCodes))
}

func TestProjectCodeRevisitRepeatsLetter(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	// A project sent back to DESIGN that completes the revisit carries the
	// letter twice: the ledger keeps both visits.
	entries := []model.DepartmentHistoryEntry{
		entry(model.DeptPMO, model.StatusCompleted, base),
		entry(model.DeptDesign, model.StatusCompleted, base.Add(1*time.Hour)),
		entry(model.DeptHTML, model.StatusCompleted, base.Add(2*time.Hour)),
		entry(model.DeptDesign, model.StatusCompleted, base.Add(3*time.Hour)),
	}
	assert.Equal(t, "PDHD", ProjectCode(entries, letterCodes))
}

func TestProjectCodeIsIdempotent(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	entries := []model.DepartmentHistoryEntry{
		entry(model.DeptPMO, model.StatusCompleted, base),
		entry(model.DeptDesign, model.StatusInProgress, base.Add(time.Hour)),
	}

	first := ProjectCode(entries, letterCodes)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ProjectCode(entries, letterCodes))
	}
}

func TestProjectCodeGrowsMonotonically(t *testing.T) {
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	entries := []model.DepartmentHistoryEntry{
		entry(model.DeptPMO, model.StatusCompleted, base),
	}
	prev := ProjectCode(entries, letterCodes)

	for i, dept := range []string{model.DeptDesign, model.DeptHTML, model.DeptPHP} {
		entries = append(entries, entry(dept, model.StatusCompleted, base.Add(time.Duration(i+1)*time.Hour)))
		code := ProjectCode(entries, letterCodes)
		assert.True(t, len(code) > len(prev))
		assert.Equal(t, prev, code[:len(prev)], "completing a visit must only append")
		prev = code
	}
}
