package pagination

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// Listing endpoints (projects, approvals, audit log) share one page model.
// The cap keeps a single request from dragging the whole projects table or
// audit history through the API.
const (
	DefaultPage  = 1
	DefaultLimit = 20
	MaxLimit     = 100
)

// Params is a validated page window.
type Params struct {
	Page   int
	Limit  int
	Offset int
}

// Parse reads page/limit from the query string. Anything missing, garbled,
// or out of range falls back to the defaults rather than erroring: a bad
// page number is never worth failing a list request over.
func Parse(c *gin.Context) Params {
	page, err := strconv.Atoi(c.Query("page"))
	if err != nil || page < 1 {
		page = DefaultPage
	}
	limit, err := strconv.Atoi(c.Query("limit"))
	if err != nil || limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit, Offset: (page - 1) * limit}
}

// Pages returns how many pages the given row count spans under this window.
func (p Params) Pages(total int64) int64 {
	if total <= 0 {
		return 0
	}
	return (total + int64(p.Limit) - 1) / int64(p.Limit)
}

// Meta builds the pagination portion of a list response. Handlers add their
// item slice to the returned map before wrapping it in the envelope.
func (p Params) Meta(total int64) map[string]interface{} {
	return map[string]interface{}{
		"page":        p.Page,
		"limit":       p.Limit,
		"total":       total,
		"total_pages": p.Pages(total),
	}
}
