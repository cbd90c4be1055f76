package dashboard

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	jwxjwt "github.com/lestrrat-go/jwx/v2/jwt"
	domaindashboard "github.com/manhour-hq/manhour-backend-go/internal/domain/dashboard"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/employee"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/project"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/tenant"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/timesheet"
	"github.com/shopspring/decimal"
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

type fakeDashboardRepo struct {
	utilizationRows []domaindashboard.UtilizationRow
	burnRateRows    []domaindashboard.BurnRateRow
	approvedHours   float64
	projectEmpRows  []domaindashboard.ProjectEmployeeHoursRow
	weeklyRows      []domaindashboard.WeeklyHoursRow
	varianceRows    []domaindashboard.AllocationVarianceRow
	projectHours    []domaindashboard.ProjectHoursRow
	dailyRows       []domaindashboard.DailyHoursRow
	err             error
	refreshErr      error
	refreshCalls    int
}

func (f *fakeDashboardRepo) ListUtilizationRows(_ context.Context, _ string, _, _ time.Time) ([]domaindashboard.UtilizationRow, error) {
	return f.utilizationRows, f.err
}

func (f *fakeDashboardRepo) ListBurnRateRows(_ context.Context, _ string) ([]domaindashboard.BurnRateRow, error) {
	return f.burnRateRows, f.err
}

func (f *fakeDashboardRepo) SumApprovedHours(_ context.Context, _ string, _, _ time.Time) (float64, error) {
	return f.approvedHours, f.err
}

func (f *fakeDashboardRepo) ListProjectEmployeeHours(_ context.Context, _, _ string) ([]domaindashboard.ProjectEmployeeHoursRow, error) {
	return f.projectEmpRows, f.err
}

func (f *fakeDashboardRepo) ListProjectWeeklyHours(_ context.Context, _, _ string) ([]domaindashboard.WeeklyHoursRow, error) {
	return f.weeklyRows, f.err
}

func (f *fakeDashboardRepo) ListAllocationVariance(_ context.Context, _, _ string) ([]domaindashboard.AllocationVarianceRow, error) {
	return f.varianceRows, f.err
}

func (f *fakeDashboardRepo) ListEmployeeProjectHours(_ context.Context, _, _ string, _, _ time.Time) ([]domaindashboard.ProjectHoursRow, error) {
	return f.projectHours, f.err
}

func (f *fakeDashboardRepo) ListEmployeeDailyHours(_ context.Context, _, _ string, _, _ time.Time) ([]domaindashboard.DailyHoursRow, error) {
	return f.dailyRows, f.err
}

func (f *fakeDashboardRepo) RefreshAggregates(_ context.Context) error {
	f.refreshCalls++
	return f.refreshErr
}

type fakeEmployeeRepo struct {
	employees map[string]employee.Employee
	count     int64
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
	return f.count, nil
}

type fakeProjectRepo struct {
	projects map[string]project.Project
	count    int64
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
	return f.count, nil
}

type fakePendingCounter struct {
	timesheet.TimesheetRepository
	pending int64
}

func (f *fakePendingCounter) CountPending(_ context.Context, _ string) (int64, error) {
	return f.pending, nil
}

func (f *fakePendingCounter) CountPendingByEmployee(_ context.Context, _, _ string) (int64, error) {
	return f.pending, nil
}

type fakeTenantRepo struct {
	settings tenant.Settings
	err      error
}

func (f *fakeTenantRepo) GetByID(_ context.Context, _ string) (tenant.Tenant, error) {
	return tenant.Tenant{}, f.err
}

func (f *fakeTenantRepo) GetSettings(_ context.Context, _ string) (tenant.Settings, error) {
	return f.settings, f.err
}

func newTestService(repo *fakeDashboardRepo, tenantRepo *fakeTenantRepo) *DashboardServiceImpl {
	return &DashboardServiceImpl{
		dashboardRepo: repo,
		employeeRepo: &fakeEmployeeRepo{count: 4, employees: map[string]employee.Employee{
			"e1": {ID: "e1", TenantID: testTenantID, Name: "Ana Chen", Status: employee.StatusActive, CapacityPerWeek: 40},
			"e9": {ID: "e9", TenantID: testTenantID, Name: "Gone Person", Status: employee.StatusInactive, CapacityPerWeek: 40},
		}},
		projectRepo: &fakeProjectRepo{count: 2, projects: map[string]project.Project{
			"p1": {ID: "p1", TenantID: testTenantID, Name: "Atlas", Status: project.StatusActive},
		}},
		timesheetRepo: &fakePendingCounter{pending: 3},
		tenantRepo:    tenantRepo,
		defaults:      tenant.Thresholds{Overload: 110, Underutil: 60},
		logger:        slog.Default(),
		now:           func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC) },
	}
}

func strPtr(s string) *string { return &s }

func TestEmployeeUtilization_ClassifiesAgainstThresholds(t *testing.T) {
	// 2026-02-02 is a Monday; the period spans exactly five working days,
	// so a 40h/week employee has 40 capacity hours.
	repo := &fakeDashboardRepo{
		utilizationRows: []domaindashboard.UtilizationRow{
			{EmployeeID: "e1", Name: "At Boundary", CapacityPerWeek: 40, ActualHours: 44},
			{EmployeeID: "e2", Name: "Just Over", CapacityPerWeek: 40, ActualHours: 44.5},
			{EmployeeID: "e3", Name: "Idle", CapacityPerWeek: 40, ActualHours: 20},
			{EmployeeID: "e4", Name: "No Capacity", CapacityPerWeek: 0, ActualHours: 10},
		},
	}
	svc := newTestService(repo, &fakeTenantRepo{})

	kpis, err := svc.EmployeeUtilization(authedContext(t, testTenantID), "2026-02-02", "2026-02-06")
	require.NoError(t, err)
	require.Len(t, kpis, 4)

	byID := make(map[string]domaindashboard.UtilizationKPI)
	for _, kpi := range kpis {
		byID[kpi.EmployeeID] = kpi
	}

	// 110% sits exactly on the overload threshold and stays normal.
	assert.Equal(t, 110, byID["e1"].UtilizationPct)
	assert.Equal(t, domaindashboard.StatusNormal, byID["e1"].Status)

	// 111% (rounded from 111.25) is strictly above and flips to overloaded.
	assert.Equal(t, 111, byID["e2"].UtilizationPct)
	assert.Equal(t, domaindashboard.StatusOverloaded, byID["e2"].Status)

	assert.Equal(t, 50, byID["e3"].UtilizationPct)
	assert.Equal(t, domaindashboard.StatusUnderutilized, byID["e3"].Status)

	// Zero configured capacity yields zero utilization, not a division blowup.
	assert.Equal(t, 0, byID["e4"].UtilizationPct)
	assert.Equal(t, float64(0), byID["e4"].CapacityHours)

	// Sorted by utilization descending.
	assert.Equal(t, "e2", kpis[0].EmployeeID)
	assert.Equal(t, "e1", kpis[1].EmployeeID)
}

func TestEmployeeUtilization_TenantOverridesThresholds(t *testing.T) {
	overload, underutil := 120, 40
	repo := &fakeDashboardRepo{
		utilizationRows: []domaindashboard.UtilizationRow{
			{EmployeeID: "e1", Name: "A", CapacityPerWeek: 40, ActualHours: 46}, // 115%
			{EmployeeID: "e2", Name: "B", CapacityPerWeek: 40, ActualHours: 20}, // 50%
		},
	}
	svc := newTestService(repo, &fakeTenantRepo{settings: tenant.Settings{
		OverloadThreshold:  &overload,
		UnderutilThreshold: &underutil,
	}})

	kpis, err := svc.EmployeeUtilization(authedContext(t, testTenantID), "2026-02-02", "2026-02-06")
	require.NoError(t, err)

	// 115% would be overloaded under the default 110 bound but the tenant
	// raised it to 120; 50% is no longer underutilized under the lowered 40.
	assert.Equal(t, domaindashboard.StatusNormal, kpis[0].Status)
	assert.Equal(t, domaindashboard.StatusNormal, kpis[1].Status)
}

func TestEmployeeUtilization_RequiresTenant(t *testing.T) {
	svc := newTestService(&fakeDashboardRepo{}, &fakeTenantRepo{})

	_, err := svc.EmployeeUtilization(context.Background(), "2026-02-02", "2026-02-06")
	assert.Error(t, err)
}

func TestCompanyDashboard_CombinesAggregates(t *testing.T) {
	repo := &fakeDashboardRepo{
		utilizationRows: []domaindashboard.UtilizationRow{
			{EmployeeID: "e1", Name: "Over", CapacityPerWeek: 40, ActualHours: 48}, // 120%
			{EmployeeID: "e2", Name: "Under", CapacityPerWeek: 40, ActualHours: 8}, // 20%
		},
		burnRateRows: []domaindashboard.BurnRateRow{
			{ProjectID: "p1", Name: "Apollo", Status: "active", PlannedHours: 100, ActualHours: 50,
				PlannedCost: decimal.NewFromInt(5000), ActualCost: decimal.NewFromInt(2600)},
		},
		approvedHours: 56,
	}
	svc := newTestService(repo, &fakeTenantRepo{})

	dash, err := svc.CompanyDashboard(authedContext(t, testTenantID), "2026-02-02", "2026-02-06")
	require.NoError(t, err)

	assert.Equal(t, "2026-02-02", dash.Period.Start)
	assert.Equal(t, "2026-02-06", dash.Period.End)
	assert.Equal(t, int64(4), dash.Summary.TotalEmployees)
	assert.Equal(t, int64(2), dash.Summary.ActiveProjects)
	assert.Equal(t, float64(56), dash.Summary.TotalActualHours)
	assert.Equal(t, int64(3), dash.Summary.PendingApprovals)
	// Mean of 120 and 20.
	assert.Equal(t, 70, dash.Summary.AvgUtilization)

	require.Len(t, dash.Alerts.OverloadedEmployees, 1)
	assert.Equal(t, "e1", dash.Alerts.OverloadedEmployees[0].EmployeeID)
	require.Len(t, dash.Alerts.UnderutilizedEmployees, 1)
	assert.Equal(t, "e2", dash.Alerts.UnderutilizedEmployees[0].EmployeeID)

	require.Len(t, dash.ProjectBurnRates, 1)
	assert.Equal(t, 50, dash.ProjectBurnRates[0].BurnRatePct)
	assert.True(t, dash.ProjectBurnRates[0].CostVariance.Equal(decimal.NewFromInt(2400)))
}

func TestCompanyDashboard_DefaultsToCurrentMonth(t *testing.T) {
	svc := newTestService(&fakeDashboardRepo{}, &fakeTenantRepo{})

	dash, err := svc.CompanyDashboard(authedContext(t, testTenantID), "", "")
	require.NoError(t, err)

	assert.Equal(t, "2026-03-01", dash.Period.Start)
	assert.Equal(t, "2026-03-31", dash.Period.End)
	// No employees means average utilization is zero, not NaN.
	assert.Equal(t, 0, dash.Summary.AvgUtilization)
	assert.NotNil(t, dash.Alerts.OverloadedEmployees)
	assert.NotNil(t, dash.ProjectBurnRates)
}

func TestCompanyDashboard_SubQueryFailureAborts(t *testing.T) {
	repo := &fakeDashboardRepo{err: errors.New("connection reset")}
	svc := newTestService(repo, &fakeTenantRepo{})

	_, err := svc.CompanyDashboard(authedContext(t, testTenantID), "2026-02-02", "2026-02-06")
	assert.Error(t, err)
}

func TestCompanyDashboard_RejectsMalformedPeriod(t *testing.T) {
	svc := newTestService(&fakeDashboardRepo{}, &fakeTenantRepo{})

	_, err := svc.CompanyDashboard(authedContext(t, testTenantID), "02/02/2026", "")
	assert.Error(t, err)
}

func TestProjectBurnRates_ZeroPlannedHours(t *testing.T) {
	repo := &fakeDashboardRepo{
		burnRateRows: []domaindashboard.BurnRateRow{
			{ProjectID: "p1", Name: "Unscoped", Status: "planning", PlannedHours: 0, ActualHours: 12,
				PlannedCost: decimal.Zero, ActualCost: decimal.NewFromInt(600)},
			{ProjectID: "p2", Name: "Scoped", Code: strPtr("SCP"), Status: "active", PlannedHours: 80, ActualHours: 90,
				PlannedCost: decimal.NewFromInt(4000), ActualCost: decimal.NewFromInt(4500)},
		},
	}
	svc := newTestService(repo, &fakeTenantRepo{})

	rates, err := svc.ProjectBurnRates(authedContext(t, testTenantID))
	require.NoError(t, err)
	require.Len(t, rates, 2)

	assert.Equal(t, 0, rates[0].BurnRatePct)
	assert.Equal(t, float64(-12), rates[0].PlannedVariance)

	// 90/80 rounds to 113 and the cost variance goes negative.
	assert.Equal(t, 113, rates[1].BurnRatePct)
	assert.True(t, rates[1].CostVariance.Equal(decimal.NewFromInt(-500)))
}

func TestProjectDashboard_CombinesSubAggregations(t *testing.T) {
	repo := &fakeDashboardRepo{
		projectEmpRows: []domaindashboard.ProjectEmployeeHoursRow{
			{EmployeeID: "e1", Name: "Ana Chen", ActualHours: 30, Cost: decimal.NewFromInt(1500)},
			{EmployeeID: "e2", Name: "Ben Ito", ActualHours: 10, Cost: decimal.NewFromInt(400)},
		},
		weeklyRows: []domaindashboard.WeeklyHoursRow{
			{WeekStart: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), TotalHours: 24},
			{WeekStart: time.Date(2026, 2, 9, 0, 0, 0, 0, time.UTC), TotalHours: 16},
		},
		varianceRows: []domaindashboard.AllocationVarianceRow{
			{EmployeeName: "Ana Chen", PlannedHours: 40, ActualHours: 30},
		},
	}
	svc := newTestService(repo, &fakeTenantRepo{})

	result, err := svc.ProjectDashboard(authedContext(t, testTenantID), "p1")
	require.NoError(t, err)

	assert.Equal(t, "Atlas", result.Project.Name)
	require.Len(t, result.HoursByEmployee, 2)
	assert.Equal(t, 30.0, result.HoursByEmployee[0].ActualHours)
	assert.True(t, result.HoursByEmployee[0].Cost.Equal(decimal.NewFromInt(1500)))
	require.Len(t, result.HoursByWeek, 2)
	assert.Equal(t, "2026-02-02", result.HoursByWeek[0].WeekStart)
	require.Len(t, result.AllocationVariance, 1)
	assert.Equal(t, 10.0, result.AllocationVariance[0].Variance)
}

func TestProjectDashboard_EmptyProjectHasNonNilSections(t *testing.T) {
	svc := newTestService(&fakeDashboardRepo{}, &fakeTenantRepo{})

	result, err := svc.ProjectDashboard(authedContext(t, testTenantID), "p1")
	require.NoError(t, err)

	assert.NotNil(t, result.HoursByEmployee)
	assert.NotNil(t, result.HoursByWeek)
	assert.NotNil(t, result.AllocationVariance)
}

func TestProjectDashboard_UnknownProject(t *testing.T) {
	svc := newTestService(&fakeDashboardRepo{}, &fakeTenantRepo{})

	_, err := svc.ProjectDashboard(authedContext(t, testTenantID), "nope")
	assert.ErrorIs(t, err, project.ErrProjectNotFound)
}

func TestEmployeeDashboard_ComputesOwnUtilization(t *testing.T) {
	// 2026-02-02..2026-02-06 is five working days, so the 40h/week
	// employee has 40 capacity hours against 36 from the daily trend.
	repo := &fakeDashboardRepo{
		projectHours: []domaindashboard.ProjectHoursRow{
			{ProjectID: "p1", Name: "Atlas", TotalHours: 28},
			{ProjectID: "p2", Name: "Borealis", TotalHours: 8},
		},
		dailyRows: []domaindashboard.DailyHoursRow{
			{Date: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), TotalHours: 20},
			{Date: time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC), TotalHours: 16},
		},
	}
	svc := newTestService(repo, &fakeTenantRepo{})

	result, err := svc.EmployeeDashboard(authedContext(t, testTenantID), "e1", "2026-02-02", "2026-02-06")
	require.NoError(t, err)

	assert.Equal(t, "Ana Chen", result.Employee.Name)
	assert.Equal(t, domaindashboard.Period{Start: "2026-02-02", End: "2026-02-06"}, result.Period)
	assert.Equal(t, 36.0, result.Utilization.ActualHours)
	assert.Equal(t, 40.0, result.Utilization.CapacityHours)
	assert.Equal(t, 90, result.Utilization.UtilizationPct)
	assert.Equal(t, domaindashboard.StatusNormal, result.Utilization.Status)
	require.Len(t, result.HoursByProject, 2)
	require.Len(t, result.DailyTrend, 2)
	assert.Equal(t, "2026-02-02", result.DailyTrend[0].Date)
	assert.Equal(t, int64(3), result.PendingApprovals)
}

func TestEmployeeDashboard_InactiveEmployeeKeepsZeroKPI(t *testing.T) {
	repo := &fakeDashboardRepo{
		dailyRows: []domaindashboard.DailyHoursRow{
			{Date: time.Date(2026, 2, 2, 0, 0, 0, 0, time.UTC), TotalHours: 8},
		},
	}
	svc := newTestService(repo, &fakeTenantRepo{})

	result, err := svc.EmployeeDashboard(authedContext(t, testTenantID), "e9", "2026-02-02", "2026-02-06")
	require.NoError(t, err)

	assert.Equal(t, 0.0, result.Utilization.CapacityHours)
	assert.Equal(t, 0, result.Utilization.UtilizationPct)
	assert.Equal(t, domaindashboard.StatusUnderutilized, result.Utilization.Status)
}

func TestEmployeeDashboard_DefaultsToCurrentMonth(t *testing.T) {
	svc := newTestService(&fakeDashboardRepo{}, &fakeTenantRepo{})

	result, err := svc.EmployeeDashboard(authedContext(t, testTenantID), "e1", "", "")
	require.NoError(t, err)

	assert.Equal(t, domaindashboard.Period{Start: "2026-03-01", End: "2026-03-31"}, result.Period)
	assert.NotNil(t, result.HoursByProject)
	assert.NotNil(t, result.DailyTrend)
}

func TestEmployeeDashboard_UnknownEmployee(t *testing.T) {
	svc := newTestService(&fakeDashboardRepo{}, &fakeTenantRepo{})

	_, err := svc.EmployeeDashboard(authedContext(t, testTenantID), "nope", "", "")
	assert.ErrorIs(t, err, employee.ErrEmployeeNotFound)
}

func TestRefreshAggregates_SwallowsFailure(t *testing.T) {
	repo := &fakeDashboardRepo{refreshErr: errors.New(`relation "mv_employee_utilization" does not exist`)}
	svc := newTestService(repo, &fakeTenantRepo{})

	err := svc.RefreshAggregates(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, 1, repo.refreshCalls)
}

func TestRefreshAggregates_Idempotent(t *testing.T) {
	repo := &fakeDashboardRepo{}
	svc := newTestService(repo, &fakeTenantRepo{})

	require.NoError(t, svc.RefreshAggregates(context.Background()))
	require.NoError(t, svc.RefreshAggregates(context.Background()))
	assert.Equal(t, 2, repo.refreshCalls)
}
