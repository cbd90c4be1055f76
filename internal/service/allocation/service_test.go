package allocation

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	jwxjwt "github.com/lestrrat-go/jwx/v2/jwt"
	domainalloc "github.com/manhour-hq/manhour-backend-go/internal/domain/allocation"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/audit"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/employee"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/project"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/tenant"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTenantID = "tenant-1"

func authedContext(t *testing.T, tenantID string) context.Context {
	t.Helper()
	token := jwxjwt.New()
	require.NoError(t, token.Set("tenant_id", tenantID))
	require.NoError(t, token.Set("user_id", "user-1"))
	return jwtauth.NewContext(context.Background(), token, nil)
}

type fakeAllocationRepo struct {
	allocations     map[string]domainalloc.Allocation
	overlapHours    float64
	lastExcludeID   string
	lastOverlapArgs []time.Time
}

func newFakeAllocationRepo() *fakeAllocationRepo {
	return &fakeAllocationRepo{allocations: make(map[string]domainalloc.Allocation)}
}

func (f *fakeAllocationRepo) Create(_ context.Context, alloc domainalloc.Allocation) (domainalloc.Allocation, error) {
	f.allocations[alloc.ID] = alloc
	return alloc, nil
}

func (f *fakeAllocationRepo) GetByID(_ context.Context, tenantID, id string) (domainalloc.Allocation, error) {
	alloc, ok := f.allocations[id]
	if !ok || alloc.TenantID != tenantID {
		return domainalloc.Allocation{}, domainalloc.ErrAllocationNotFound
	}
	return alloc, nil
}

func (f *fakeAllocationRepo) List(_ context.Context, tenantID string, _ domainalloc.ListFilter) ([]domainalloc.Allocation, int64, error) {
	var result []domainalloc.Allocation
	for _, alloc := range f.allocations {
		if alloc.TenantID == tenantID {
			result = append(result, alloc)
		}
	}
	return result, int64(len(result)), nil
}

func (f *fakeAllocationRepo) Update(_ context.Context, alloc domainalloc.Allocation) (domainalloc.Allocation, error) {
	f.allocations[alloc.ID] = alloc
	return alloc, nil
}

func (f *fakeAllocationRepo) Delete(_ context.Context, tenantID, id string) error {
	alloc, ok := f.allocations[id]
	if !ok || alloc.TenantID != tenantID {
		return domainalloc.ErrAllocationNotFound
	}
	delete(f.allocations, id)
	return nil
}

func (f *fakeAllocationRepo) SumOverlappingPlannedHours(_ context.Context, _, _ string, start, end time.Time, excludeID string) (float64, error) {
	f.lastExcludeID = excludeID
	f.lastOverlapArgs = []time.Time{start, end}
	return f.overlapHours, nil
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
}

func (f *fakeEmployeeRepo) GetByID(_ context.Context, tenantID, id string) (employee.Employee, error) {
	emp, ok := f.employees[id]
	if !ok || emp.TenantID != tenantID {
		return employee.Employee{}, employee.ErrEmployeeNotFound
	}
	return emp, nil
}

func (f *fakeEmployeeRepo) List(_ context.Context, _ string, _ employee.ListFilter) ([]employee.Employee, int64, error) {
	return nil, 0, nil
}

func (f *fakeEmployeeRepo) CountByStatus(_ context.Context, _ string, _ employee.Status) (int64, error) {
	return 0, nil
}

type fakeProjectRepo struct {
	projects map[string]project.Project
}

func (f *fakeProjectRepo) GetByID(_ context.Context, tenantID, id string) (project.Project, error) {
	p, ok := f.projects[id]
	if !ok || p.TenantID != tenantID {
		return project.Project{}, project.ErrProjectNotFound
	}
	return p, nil
}

func (f *fakeProjectRepo) List(_ context.Context, _ string, _ project.ListFilter) ([]project.Project, int64, error) {
	return nil, 0, nil
}

func (f *fakeProjectRepo) CountByStatus(_ context.Context, _ string, _ project.Status) (int64, error) {
	return 0, nil
}

type fakeTenantRepo struct {
	settings tenant.Settings
}

func (f *fakeTenantRepo) GetByID(_ context.Context, _ string) (tenant.Tenant, error) {
	return tenant.Tenant{}, nil
}

func (f *fakeTenantRepo) GetSettings(_ context.Context, _ string) (tenant.Settings, error) {
	return f.settings, nil
}

type fakeAuditRepo struct {
	entries []audit.Entry
}

func (f *fakeAuditRepo) Insert(_ context.Context, entry audit.Entry) error {
	f.entries = append(f.entries, entry)
	return nil
}

type allocationFixture struct {
	svc       *AllocationServiceImpl
	allocRepo *fakeAllocationRepo
	auditRepo *fakeAuditRepo
}

func newFixture() allocationFixture {
	allocRepo := newFakeAllocationRepo()
	auditRepo := &fakeAuditRepo{}
	svc := &AllocationServiceImpl{
		allocationRepo: allocRepo,
		employeeRepo: &fakeEmployeeRepo{employees: map[string]employee.Employee{
			"e1": {ID: "e1", TenantID: testTenantID, Name: "Dana", CapacityPerWeek: 40, Status: employee.StatusActive},
			"e0": {ID: "e0", TenantID: testTenantID, Name: "Unscheduled", CapacityPerWeek: 0, Status: employee.StatusActive},
		}},
		projectRepo: &fakeProjectRepo{projects: map[string]project.Project{
			"p1": {ID: "p1", TenantID: testTenantID, Name: "Apollo", Status: project.StatusActive},
		}},
		tenantRepo: &fakeTenantRepo{},
		auditRepo:  auditRepo,
		defaults:   tenant.Thresholds{Overload: 110, Underutil: 60},
		logger:     slog.Default(),
	}
	return allocationFixture{svc: svc, allocRepo: allocRepo, auditRepo: auditRepo}
}

func date(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestCheckCapacity_WithinThreshold(t *testing.T) {
	fx := newFixture()
	fx.allocRepo.overlapHours = 70

	// Two weeks at 40h/week gives 80h capacity; 70 + 10 is exactly 100%.
	warning, err := fx.svc.CheckCapacity(authedContext(t, testTenantID), testTenantID, "e1",
		date("2026-02-02"), date("2026-02-15"), 10, "")
	require.NoError(t, err)
	assert.Nil(t, warning)
}

func TestCheckCapacity_OverThreshold(t *testing.T) {
	fx := newFixture()
	fx.allocRepo.overlapHours = 70

	// 90/80 is 112.5%, rounded to 113, strictly above the 110 bound.
	warning, err := fx.svc.CheckCapacity(authedContext(t, testTenantID), testTenantID, "e1",
		date("2026-02-02"), date("2026-02-15"), 20, "")
	require.NoError(t, err)
	require.NotNil(t, warning)

	assert.Equal(t, 113, warning.UtilizationPct)
	assert.Equal(t, float64(90), warning.PlannedHours)
	assert.Equal(t, float64(80), warning.CapacityHours)
	assert.Equal(t, "Warning: Employee will be at 113% utilization (90h planned vs 80h capacity)", warning.Message)
}

func TestCheckCapacity_ExactThresholdIsQuiet(t *testing.T) {
	fx := newFixture()
	fx.allocRepo.overlapHours = 68

	// 88/80 is exactly 110%; the comparison is strict.
	warning, err := fx.svc.CheckCapacity(authedContext(t, testTenantID), testTenantID, "e1",
		date("2026-02-02"), date("2026-02-15"), 20, "")
	require.NoError(t, err)
	assert.Nil(t, warning)
}

func TestCheckCapacity_FractionallyOverThresholdWarns(t *testing.T) {
	fx := newFixture()
	fx.allocRepo.overlapHours = 70

	// 88.2/80 is 110.25%: over the threshold before rounding, so a warning
	// is raised even though the displayed percentage rounds back to 110.
	warning, err := fx.svc.CheckCapacity(authedContext(t, testTenantID), testTenantID, "e1",
		date("2026-02-02"), date("2026-02-15"), 18.2, "")
	require.NoError(t, err)
	require.NotNil(t, warning)
	assert.Equal(t, 110, warning.UtilizationPct)
	assert.Equal(t, "Warning: Employee will be at 110% utilization (88.2h planned vs 80h capacity)", warning.Message)
}

func TestCheckCapacity_ZeroCapacityNeverWarns(t *testing.T) {
	fx := newFixture()
	fx.allocRepo.overlapHours = 500

	warning, err := fx.svc.CheckCapacity(authedContext(t, testTenantID), testTenantID, "e0",
		date("2026-02-02"), date("2026-02-15"), 100, "")
	require.NoError(t, err)
	assert.Nil(t, warning)
}

func TestCheckCapacity_PartialWeekRoundsUp(t *testing.T) {
	fx := newFixture()
	fx.allocRepo.overlapHours = 0

	// An eight-day span counts as two weeks, so capacity is 80h and 85h warns.
	warning, err := fx.svc.CheckCapacity(authedContext(t, testTenantID), testTenantID, "e1",
		date("2026-02-02"), date("2026-02-10"), 85, "")
	require.NoError(t, err)
	require.NotNil(t, warning)
	assert.Equal(t, float64(80), warning.CapacityHours)
}

func TestCheckCapacity_TenantOverride(t *testing.T) {
	fx := newFixture()
	overload := 150
	fx.svc.tenantRepo = &fakeTenantRepo{settings: tenant.Settings{OverloadThreshold: &overload}}
	fx.allocRepo.overlapHours = 70

	// 113% warns under the default bound but not under the tenant's 150.
	warning, err := fx.svc.CheckCapacity(authedContext(t, testTenantID), testTenantID, "e1",
		date("2026-02-02"), date("2026-02-15"), 20, "")
	require.NoError(t, err)
	assert.Nil(t, warning)
}

func TestCreateAllocation_AttachesWarningWithoutBlocking(t *testing.T) {
	fx := newFixture()
	fx.allocRepo.overlapHours = 70

	resp, err := fx.svc.CreateAllocation(authedContext(t, testTenantID), domainalloc.CreateAllocationRequest{
		ProjectID:    "p1",
		EmployeeID:   "e1",
		PeriodStart:  "2026-02-02",
		PeriodEnd:    "2026-02-15",
		PlannedHours: 20,
	})
	require.NoError(t, err)

	// The write succeeded despite the overcommit; the warning is advisory.
	require.NotNil(t, resp.Warning)
	assert.Equal(t, 113, resp.Warning.UtilizationPct)
	assert.NotEmpty(t, resp.Allocation.ID)
	assert.Contains(t, fx.allocRepo.allocations, resp.Allocation.ID)
	assert.True(t, resp.Allocation.Billable)

	require.Len(t, fx.auditRepo.entries, 1)
	assert.Equal(t, audit.ActionCreate, fx.auditRepo.entries[0].Action)
	assert.Equal(t, "allocation", fx.auditRepo.entries[0].Entity)
	assert.Equal(t, "user-1", fx.auditRepo.entries[0].PerformedBy)
}

func TestCreateAllocation_Validation(t *testing.T) {
	fx := newFixture()
	ctx := authedContext(t, testTenantID)

	tests := []struct {
		name  string
		req   domainalloc.CreateAllocationRequest
		field string
	}{
		{
			name:  "missing project",
			req:   domainalloc.CreateAllocationRequest{EmployeeID: "e1", PeriodStart: "2026-02-02", PeriodEnd: "2026-02-15", PlannedHours: 10},
			field: "project_id",
		},
		{
			name:  "malformed date",
			req:   domainalloc.CreateAllocationRequest{ProjectID: "p1", EmployeeID: "e1", PeriodStart: "Feb 2 2026", PeriodEnd: "2026-02-15", PlannedHours: 10},
			field: "period_start",
		},
		{
			name:  "negative hours",
			req:   domainalloc.CreateAllocationRequest{ProjectID: "p1", EmployeeID: "e1", PeriodStart: "2026-02-02", PeriodEnd: "2026-02-15", PlannedHours: -1},
			field: "planned_hours",
		},
		{
			name:  "inverted period",
			req:   domainalloc.CreateAllocationRequest{ProjectID: "p1", EmployeeID: "e1", PeriodStart: "2026-02-15", PeriodEnd: "2026-02-02", PlannedHours: 10},
			field: "period_end",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.svc.CreateAllocation(ctx, tt.req)
			var validationErrors validator.ValidationErrors
			require.ErrorAs(t, err, &validationErrors)
			assert.Contains(t, validationErrors.ToMap(), tt.field)
		})
	}
}

func TestCreateAllocation_UnknownEmployee(t *testing.T) {
	fx := newFixture()

	_, err := fx.svc.CreateAllocation(authedContext(t, testTenantID), domainalloc.CreateAllocationRequest{
		ProjectID:    "p1",
		EmployeeID:   "ghost",
		PeriodStart:  "2026-02-02",
		PeriodEnd:    "2026-02-15",
		PlannedHours: 10,
	})
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestUpdateAllocation_ExcludesOwnRowFromRecheck(t *testing.T) {
	fx := newFixture()
	fx.allocRepo.allocations["a1"] = domainalloc.Allocation{
		ID:           "a1",
		TenantID:     testTenantID,
		ProjectID:    "p1",
		EmployeeID:   "e1",
		PeriodStart:  date("2026-02-02"),
		PeriodEnd:    date("2026-02-15"),
		PlannedHours: 40,
	}

	newHours := 60.0
	resp, err := fx.svc.UpdateAllocation(authedContext(t, testTenantID), "a1", domainalloc.UpdateAllocationRequest{
		PlannedHours: &newHours,
	})
	require.NoError(t, err)

	assert.Equal(t, "a1", fx.allocRepo.lastExcludeID)
	assert.Equal(t, float64(60), resp.Allocation.PlannedHours)

	require.Len(t, fx.auditRepo.entries, 1)
	assert.Equal(t, audit.ActionUpdate, fx.auditRepo.entries[0].Action)
}

func TestDeleteAllocation(t *testing.T) {
	fx := newFixture()
	fx.allocRepo.allocations["a1"] = domainalloc.Allocation{ID: "a1", TenantID: testTenantID, EmployeeID: "e1"}

	require.NoError(t, fx.svc.DeleteAllocation(authedContext(t, testTenantID), "a1"))
	assert.NotContains(t, fx.allocRepo.allocations, "a1")

	err := fx.svc.DeleteAllocation(authedContext(t, testTenantID), "a1")
	assert.ErrorIs(t, err, domainalloc.ErrAllocationNotFound)
}

func TestGetAllocation_TenantIsolation(t *testing.T) {
	fx := newFixture()
	fx.allocRepo.allocations["a1"] = domainalloc.Allocation{ID: "a1", TenantID: "other-tenant", EmployeeID: "e9"}

	_, err := fx.svc.GetAllocation(authedContext(t, testTenantID), "a1")
	assert.ErrorIs(t, err, domainalloc.ErrAllocationNotFound)
}
