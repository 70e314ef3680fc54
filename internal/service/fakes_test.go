package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/SaneeshInter/project-management-sub002/internal/model"
	"github.com/SaneeshInter/project-management-sub002/internal/repository"
)

// In-memory repository doubles for service tests. They keep the same
// contracts as the gorm-backed implementations: lookups miss with
// gorm.ErrRecordNotFound, reads hand out copies, and the history store
// orders entries by CreatedAt.

type fakeTxManager struct {
	// begin snapshots the mutable stores and returns a restore hook, so a
	// failing callback rolls its writes back the way the gorm transaction
	// manager does. A zero fakeTxManager runs the callback straight through.
	begin func() (rollback func())
}

func (m fakeTxManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if m.begin == nil {
		return fn(ctx)
	}
	rollback := m.begin()
	if err := fn(ctx); err != nil {
		rollback()
		return err
	}
	return nil
}

// --- projects ---

type fakeProjectRepo struct {
	projects map[uuid.UUID]*model.Project
	// beforeCutOver runs just before the conditional update, letting a test
	// slip a competing writer between validation and cut-over.
	beforeCutOver func()
}

func newFakeProjectRepo() *fakeProjectRepo {
	return &fakeProjectRepo{projects: make(map[uuid.UUID]*model.Project)}
}

func (r *fakeProjectRepo) Create(_ context.Context, project *model.Project) error {
	if project.ID == uuid.Nil {
		project.ID = uuid.New()
	}
	project.CreatedAt = time.Now()
	cp := *project
	r.projects[project.ID] = &cp
	return nil
}

func (r *fakeProjectRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Project, error) {
	p, ok := r.projects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *p
	return &cp, nil
}

func (r *fakeProjectRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.Project, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeProjectRepo) List(_ context.Context, _ repository.ProjectFilter, _, _ int) ([]model.Project, int64, error) {
	out := make([]model.Project, 0, len(r.projects))
	for _, p := range r.projects {
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

func (r *fakeProjectRepo) Update(_ context.Context, project *model.Project) error {
	if _, ok := r.projects[project.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *project
	r.projects[project.ID] = &cp
	return nil
}

func (r *fakeProjectRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.projects, id)
	return nil
}

func (r *fakeProjectRepo) CutOverDepartment(_ context.Context, id uuid.UUID, expectedCurrent, newCurrent string, nextDepartment *string, projectCode string) (bool, error) {
	if r.beforeCutOver != nil {
		r.beforeCutOver()
	}
	p, ok := r.projects[id]
	if !ok || p.CurrentDepartment != expectedCurrent {
		return false, nil
	}
	p.CurrentDepartment = newCurrent
	p.NextDepartment = nextDepartment
	p.ProjectCode = projectCode
	return true, nil
}

func (r *fakeProjectRepo) CountByDepartment(_ context.Context) (map[string]int64, error) {
	counts := make(map[string]int64)
	for _, p := range r.projects {
		counts[p.CurrentDepartment]++
	}
	return counts, nil
}

// --- history ---

type fakeHistoryRepo struct {
	entries []model.DepartmentHistoryEntry
	clock   time.Time
}

func newFakeHistoryRepo() *fakeHistoryRepo {
	return &fakeHistoryRepo{clock: time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)}
}

func (r *fakeHistoryRepo) Create(_ context.Context, entry *model.DepartmentHistoryEntry) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	r.clock = r.clock.Add(time.Minute)
	entry.CreatedAt = r.clock
	r.entries = append(r.entries, *entry)
	return nil
}

func (r *fakeHistoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.DepartmentHistoryEntry, error) {
	for i := range r.entries {
		if r.entries[i].ID == id {
			cp := r.entries[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeHistoryRepo) LatestForProject(_ context.Context, projectID uuid.UUID) (*model.DepartmentHistoryEntry, error) {
	var latest *model.DepartmentHistoryEntry
	for i := range r.entries {
		e := r.entries[i]
		if e.ProjectID != projectID {
			continue
		}
		if latest == nil || e.CreatedAt.After(latest.CreatedAt) {
			cp := e
			latest = &cp
		}
	}
	if latest == nil {
		return nil, gorm.ErrRecordNotFound
	}
	return latest, nil
}

func (r *fakeHistoryRepo) ListForProject(_ context.Context, projectID uuid.UUID) ([]model.DepartmentHistoryEntry, error) {
	var out []model.DepartmentHistoryEntry
	for i := range r.entries {
		if r.entries[i].ProjectID == projectID {
			out = append(out, r.entries[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *fakeHistoryRepo) Update(_ context.Context, entry *model.DepartmentHistoryEntry) error {
	for i := range r.entries {
		if r.entries[i].ID == entry.ID {
			created := r.entries[i].CreatedAt
			r.entries[i] = *entry
			r.entries[i].CreatedAt = created
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeHistoryRepo) CountForProject(_ context.Context, projectID uuid.UUID) (int64, error) {
	var n int64
	for i := range r.entries {
		if r.entries[i].ProjectID == projectID {
			n++
		}
	}
	return n, nil
}

// --- approvals ---

type fakeApprovalRepo struct {
	approvals []model.ApprovalRequest
	// beforeCreate runs just before the insert, letting a test slip a rival
	// request between the pending check and the write.
	beforeCreate func()
}

func (r *fakeApprovalRepo) Create(_ context.Context, req *model.ApprovalRequest) error {
	if r.beforeCreate != nil {
		r.beforeCreate()
	}
	// Mirrors the partial unique index on (entry, type) where PENDING.
	if req.Status == model.ApprovalPending {
		for i := range r.approvals {
			a := r.approvals[i]
			if a.HistoryEntryID == req.HistoryEntryID && a.ApprovalType == req.ApprovalType && a.Status == model.ApprovalPending {
				return gorm.ErrDuplicatedKey
			}
		}
	}
	if req.ID == uuid.Nil {
		req.ID = uuid.New()
	}
	req.CreatedAt = time.Now()
	r.approvals = append(r.approvals, *req)
	return nil
}

func (r *fakeApprovalRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	for i := range r.approvals {
		if r.approvals[i].ID == id {
			cp := r.approvals[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeApprovalRepo) FindByIDWithRelations(ctx context.Context, id uuid.UUID) (*model.ApprovalRequest, error) {
	return r.FindByID(ctx, id)
}

func (r *fakeApprovalRepo) ListForEntry(_ context.Context, entryID uuid.UUID) ([]model.ApprovalRequest, error) {
	var out []model.ApprovalRequest
	for i := range r.approvals {
		if r.approvals[i].HistoryEntryID == entryID {
			out = append(out, r.approvals[i])
		}
	}
	return out, nil
}

func (r *fakeApprovalRepo) FindPending(_ context.Context, entryID uuid.UUID, approvalType string) (*model.ApprovalRequest, error) {
	for i := range r.approvals {
		a := r.approvals[i]
		if a.HistoryEntryID == entryID && a.ApprovalType == approvalType && a.Status == model.ApprovalPending {
			cp := a
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeApprovalRepo) List(_ context.Context, status string, _, _ int) ([]model.ApprovalRequest, int64, error) {
	var out []model.ApprovalRequest
	for i := range r.approvals {
		if status == "" || r.approvals[i].Status == status {
			out = append(out, r.approvals[i])
		}
	}
	return out, int64(len(out)), nil
}

func (r *fakeApprovalRepo) Update(_ context.Context, req *model.ApprovalRequest) error {
	for i := range r.approvals {
		if r.approvals[i].ID == req.ID {
			r.approvals[i] = *req
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// --- QA ---

type fakeQARepo struct {
	rounds []model.QATestingRound
	bugs   []model.QABug
	// beforeCreateRound runs just before the insert, letting a test slip a
	// rival round between the number lookup and the write.
	beforeCreateRound func()
}

func (r *fakeQARepo) CreateRound(_ context.Context, round *model.QATestingRound) error {
	if r.beforeCreateRound != nil {
		r.beforeCreateRound()
	}
	// Mirrors the unique index on (entry, round number).
	for i := range r.rounds {
		if r.rounds[i].HistoryEntryID == round.HistoryEntryID && r.rounds[i].RoundNumber == round.RoundNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	if round.ID == uuid.Nil {
		round.ID = uuid.New()
	}
	round.CreatedAt = time.Now()
	r.rounds = append(r.rounds, *round)
	return nil
}

func (r *fakeQARepo) FindRoundByID(_ context.Context, id uuid.UUID) (*model.QATestingRound, error) {
	for i := range r.rounds {
		if r.rounds[i].ID == id {
			cp := r.rounds[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeQARepo) ListRoundsForEntry(_ context.Context, entryID uuid.UUID) ([]model.QATestingRound, error) {
	var out []model.QATestingRound
	for i := range r.rounds {
		if r.rounds[i].HistoryEntryID == entryID {
			out = append(out, r.rounds[i])
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoundNumber < out[j].RoundNumber })
	return out, nil
}

func (r *fakeQARepo) MaxRoundNumber(_ context.Context, entryID uuid.UUID) (int, error) {
	max := 0
	for i := range r.rounds {
		if r.rounds[i].HistoryEntryID == entryID && r.rounds[i].RoundNumber > max {
			max = r.rounds[i].RoundNumber
		}
	}
	return max, nil
}

func (r *fakeQARepo) UpdateRound(_ context.Context, round *model.QATestingRound) error {
	for i := range r.rounds {
		if r.rounds[i].ID == round.ID {
			r.rounds[i] = *round
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *fakeQARepo) CreateBug(_ context.Context, bug *model.QABug) error {
	if bug.ID == uuid.Nil {
		bug.ID = uuid.New()
	}
	r.bugs = append(r.bugs, *bug)
	return nil
}

func (r *fakeQARepo) ListBugsForRound(_ context.Context, roundID uuid.UUID) ([]model.QABug, error) {
	var out []model.QABug
	for i := range r.bugs {
		if r.bugs[i].QARoundID == roundID {
			out = append(out, r.bugs[i])
		}
	}
	return out, nil
}

// --- departments ---

type fakeDeptRepo struct {
	catalog map[string]model.Department
	gates   map[string]model.ApprovalGate
}

func newFakeDeptRepo() *fakeDeptRepo {
	catalog := map[string]model.Department{
		model.DeptPMO:       {ID: model.DeptPMO, Name: "PMO", Code: "P", Kind: model.DeptKindManagement, SortOrder: 1},
		model.DeptDesign:    {ID: model.DeptDesign, Name: "Design", Code: "D", Kind: model.DeptKindDesign, SortOrder: 2},
		model.DeptHTML:      {ID: model.DeptHTML, Name: "HTML", Code: "H", Kind: model.DeptKindBuild, SortOrder: 3},
		model.DeptPHP:       {ID: model.DeptPHP, Name: "PHP", Code: "B", Kind: model.DeptKindBuild, SortOrder: 4},
		model.DeptReact:     {ID: model.DeptReact, Name: "React", Code: "R", Kind: model.DeptKindBuild, SortOrder: 5},
		model.DeptWordpress: {ID: model.DeptWordpress, Name: "WordPress", Code: "W", Kind: model.DeptKindBuild, SortOrder: 6},
		model.DeptQA:        {ID: model.DeptQA, Name: "QA", Code: "Q", Kind: model.DeptKindQA, SortOrder: 7},
		model.DeptDelivery:  {ID: model.DeptDelivery, Name: "Delivery", Code: "L", Kind: model.DeptKindManagement, SortOrder: 8},
		model.DeptManager:   {ID: model.DeptManager, Name: "Manager", Code: "M", Kind: model.DeptKindManagement, SortOrder: 9},
	}
	gates := map[string]model.ApprovalGate{
		model.DeptDesign: {
			DepartmentID:      model.DeptDesign,
			RequiredApprovals: []string{model.ApprovalTypeClient},
			MinimumWorkStatus: model.StatusCompleted,
		},
		model.DeptHTML: {
			DepartmentID:     model.DeptHTML,
			RequiredQAStatus: model.QARoundPassed,
		},
		model.DeptQA: {
			DepartmentID:      model.DeptQA,
			RequiredApprovals: []string{model.ApprovalTypeDelivery},
			MinimumWorkStatus: model.StatusReadyForDelivery,
		},
	}
	return &fakeDeptRepo{catalog: catalog, gates: gates}
}

func (r *fakeDeptRepo) List(_ context.Context) ([]model.Department, error) {
	out := make([]model.Department, 0, len(r.catalog))
	for _, d := range r.catalog {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (r *fakeDeptRepo) FindByID(_ context.Context, id string) (*model.Department, error) {
	d, ok := r.catalog[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (r *fakeDeptRepo) Catalog(_ context.Context) (map[string]model.Department, error) {
	out := make(map[string]model.Department, len(r.catalog))
	for k, v := range r.catalog {
		out[k] = v
	}
	return out, nil
}

func (r *fakeDeptRepo) Gates(_ context.Context) (map[string]model.ApprovalGate, error) {
	out := make(map[string]model.ApprovalGate, len(r.gates))
	for k, v := range r.gates {
		out[k] = v
	}
	return out, nil
}

func (r *fakeDeptRepo) GateFor(_ context.Context, departmentID string) (*model.ApprovalGate, error) {
	g, ok := r.gates[departmentID]
	if !ok {
		return nil, nil
	}
	return &g, nil
}

// --- categories ---

type fakeCategoryRepo struct {
	categories map[uuid.UUID]model.ProjectCategory
	mappings   map[uuid.UUID][]model.CategoryDepartmentMapping
}

func newFakeCategoryRepo() *fakeCategoryRepo {
	return &fakeCategoryRepo{
		categories: make(map[uuid.UUID]model.ProjectCategory),
		mappings:   make(map[uuid.UUID][]model.CategoryDepartmentMapping),
	}
}

func (r *fakeCategoryRepo) Create(_ context.Context, category *model.ProjectCategory) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	r.categories[category.ID] = *category
	return nil
}

func (r *fakeCategoryRepo) FindByID(_ context.Context, id uuid.UUID) (*model.ProjectCategory, error) {
	c, ok := r.categories[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *fakeCategoryRepo) List(_ context.Context) ([]model.ProjectCategory, error) {
	out := make([]model.ProjectCategory, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	return out, nil
}

func (r *fakeCategoryRepo) Update(_ context.Context, category *model.ProjectCategory) error {
	if _, ok := r.categories[category.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.categories[category.ID] = *category
	return nil
}

func (r *fakeCategoryRepo) ListMappings(_ context.Context, categoryID uuid.UUID) ([]model.CategoryDepartmentMapping, error) {
	return r.mappings[categoryID], nil
}

func (r *fakeCategoryRepo) ReplaceMappings(_ context.Context, categoryID uuid.UUID, mappings []model.CategoryDepartmentMapping) error {
	r.mappings[categoryID] = mappings
	return nil
}

// --- audit ---

type fakeAuditRepo struct {
	logs []model.AuditLog
}

func (r *fakeAuditRepo) Log(_ context.Context, entry *model.AuditLog) error {
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	entry.CreatedAt = time.Now()
	r.logs = append(r.logs, *entry)
	return nil
}

func (r *fakeAuditRepo) List(_ context.Context, filter repository.AuditFilter, _, _ int) ([]model.AuditLog, int64, error) {
	var out []model.AuditLog
	for i := range r.logs {
		l := r.logs[i]
		if filter.Action != "" && l.Action != filter.Action {
			continue
		}
		if filter.EntityID != "" && l.EntityID != filter.EntityID {
			continue
		}
		out = append(out, l)
	}
	return out, int64(len(out)), nil
}
