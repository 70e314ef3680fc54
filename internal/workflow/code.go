package workflow

import (
	"sort"
	"strings"

	"github.com/SaneeshInter/project-management-sub002/internal/model"
)

// ProjectCode derives the display code for a project from its history: one
// letter per COMPLETED visit, in creation order. Creation order is used
// rather than sequence position because revisits and branches can complete
// out of workflow order. Pure projection — never authoritative state.
// An empty history yields the empty string.
func ProjectCode(entries []model.DepartmentHistoryEntry, codes map[string]string) string {
	if len(entries) == 0 {
		return ""
	}

	completed := make([]model.DepartmentHistoryEntry, 0, len(entries))
	for _, e := range entries {
		if e.WorkStatus == model.StatusCompleted {
			completed = append(completed, e)
		}
	}
	sort.SliceStable(completed, func(i, j int) bool {
		return completed[i].CreatedAt.Before(completed[j].CreatedAt)
	})

	var b strings.Builder
	for _, e := range completed {
		b.WriteString(codes[e.ToDepartment])
	}
	return b.String()
}
