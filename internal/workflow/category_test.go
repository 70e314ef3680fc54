package workflow

import (
	"testing"

	"github.com/SaneeshInter/project-management-sub002/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() map[string]model.Department {
	return map[string]model.Department{
		model.DeptPMO:      {ID: model.DeptPMO, Code: "P", Kind: model.DeptKindManagement},
		model.DeptDesign:   {ID: model.DeptDesign, Code: "D", Kind: model.DeptKindDesign},
		model.DeptHTML:     {ID: model.DeptHTML, Code: "H", Kind: model.DeptKindBuild},
		model.DeptQA:       {ID: model.DeptQA, Code: "Q", Kind: model.DeptKindQA},
		model.DeptDelivery: {ID: model.DeptDelivery, Code: "L", Kind: model.DeptKindManagement},
	}
}

func mapping(dept string, seq int) model.CategoryDepartmentMapping {
	return model.CategoryDepartmentMapping{DepartmentID: dept, Sequence: seq}
}

func TestBuildCategoryGraph(t *testing.T) {
	g, err := BuildCategoryGraph("LANDING_PAGE", []model.CategoryDepartmentMapping{
		mapping(model.DeptPMO, 1),
		mapping(model.DeptDesign, 2),
		mapping(model.DeptDelivery, 3),
	}, nil, testCatalog())
	require.NoError(t, err)

	assert.Equal(t, model.DeptPMO, g.Start())
	assert.True(t, g.ValidTransition(model.DeptPMO, model.DeptDesign))
	assert.True(t, g.ValidTransition(model.DeptDesign, model.DeptDelivery))
	assert.False(t, g.ValidTransition(model.DeptPMO, model.DeptDelivery))
	assert.False(t, g.ValidTransition(model.DeptDesign, model.DeptHTML))
}

func TestBuildCategoryGraphUnsortedInput(t *testing.T) {
	// Rows arrive in arbitrary order; sequence decides adjacency.
	g, err := BuildCategoryGraph("LANDING_PAGE", []model.CategoryDepartmentMapping{
		mapping(model.DeptDelivery, 30),
		mapping(model.DeptPMO, 10),
		mapping(model.DeptDesign, 20),
	}, nil, testCatalog())
	require.NoError(t, err)

	assert.Equal(t, model.DeptPMO, g.Start())
	assert.True(t, g.ValidTransition(model.DeptDesign, model.DeptDelivery))
}

func TestBuildCategoryGraphAppliesGates(t *testing.T) {
	gates := map[string]model.ApprovalGate{
		model.DeptDesign: {
			DepartmentID:      model.DeptDesign,
			RequiredApprovals: []string{model.ApprovalTypeClient},
			MinimumWorkStatus: model.StatusCompleted,
		},
		model.DeptQA: {
			DepartmentID:      model.DeptQA,
			RequiredApprovals: []string{model.ApprovalTypeDelivery},
			MinimumWorkStatus: model.StatusReadyForDelivery,
		},
	}

	g, err := BuildCategoryGraph("WEBSITE", []model.CategoryDepartmentMapping{
		mapping(model.DeptDesign, 1),
		mapping(model.DeptQA, 2),
		mapping(model.DeptDelivery, 3),
	}, gates, testCatalog())
	require.NoError(t, err)

	rule, ok := g.RequirementsFor(model.DeptDesign, model.DeptQA)
	require.True(t, ok)
	assert.True(t, rule.RequiresApproval)
	assert.Equal(t, model.StatusCompleted, rule.RequiredStatus)

	rule, ok = g.RequirementsFor(model.DeptQA, model.DeptDelivery)
	require.True(t, ok)
	assert.True(t, rule.RequiresApproval)
	assert.Equal(t, model.StatusReadyForDelivery, rule.RequiredStatus)
}

func TestBuildCategoryGraphRejections(t *testing.T) {
	catalog := testCatalog()

	tests := []struct {
		name     string
		mappings []model.CategoryDepartmentMapping
		reason   string
	}{
		{
			name:     "empty mapping",
			mappings: nil,
			reason:   "no department mappings defined",
		},
		{
			name: "unknown department",
			mappings: []model.CategoryDepartmentMapping{
				mapping(model.DeptPMO, 1),
				mapping("LEGAL", 2),
			},
			reason: "department LEGAL is not in the catalog",
		},
		{
			name: "duplicate sequence",
			mappings: []model.CategoryDepartmentMapping{
				mapping(model.DeptPMO, 1),
				mapping(model.DeptDesign, 1),
			},
			reason: "duplicate sequence 1",
		},
		{
			name: "duplicate department",
			mappings: []model.CategoryDepartmentMapping{
				mapping(model.DeptPMO, 1),
				mapping(model.DeptDesign, 2),
				mapping(model.DeptPMO, 3),
			},
			reason: "appears more than once",
		},
		{
			name: "single department",
			mappings: []model.CategoryDepartmentMapping{
				mapping(model.DeptPMO, 1),
			},
			reason: "at least two departments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := BuildCategoryGraph("BROKEN", tt.mappings, nil, catalog)
			assert.Nil(t, g)

			var configErr *ConfigurationError
			require.ErrorAs(t, err, &configErr)
			assert.Equal(t, "BROKEN", configErr.Category)
			assert.Contains(t, configErr.Reason, tt.reason)
		})
	}
}
