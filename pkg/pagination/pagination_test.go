package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paramsFor(query string) Params {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?"+query, nil)
	return Parse(c)
}

func TestParseDefaults(t *testing.T) {
	p := paramsFor("")
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestParseExplicitValues(t *testing.T) {
	p := paramsFor("page=3&limit=25")
	assert.Equal(t, 3, p.Page)
	assert.Equal(t, 25, p.Limit)
	assert.Equal(t, 50, p.Offset)
}

func TestParseClampsLimit(t *testing.T) {
	p := paramsFor("limit=5000")
	assert.Equal(t, MaxLimit, p.Limit)
}

func TestParseRejectsGarbage(t *testing.T) {
	p := paramsFor("page=-2&limit=abc")
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Equal(t, 0, p.Offset)
}

func TestPages(t *testing.T) {
	p := Params{Page: 1, Limit: 20}
	assert.EqualValues(t, 0, p.Pages(0))
	assert.EqualValues(t, 1, p.Pages(1))
	assert.EqualValues(t, 1, p.Pages(20))
	assert.EqualValues(t, 2, p.Pages(21))
}

func TestMeta(t *testing.T) {
	p := Params{Page: 2, Limit: 10}
	meta := p.Meta(35)
	assert.Equal(t, 2, meta["page"])
	assert.Equal(t, 10, meta["limit"])
	assert.EqualValues(t, 35, meta["total"])
	assert.EqualValues(t, 4, meta["total_pages"])
}
