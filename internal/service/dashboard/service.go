package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/manhour-hq/manhour-backend-go/internal/domain/dashboard"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/employee"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/project"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/tenant"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/timesheet"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/jwt"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/period"
	"golang.org/x/sync/errgroup"
)

type DashboardServiceImpl struct {
	dashboardRepo dashboard.DashboardRepository
	employeeRepo  employee.EmployeeRepository
	projectRepo   project.ProjectRepository
	timesheetRepo timesheet.TimesheetRepository
	tenantRepo    tenant.TenantRepository
	defaults      tenant.Thresholds
	logger        *slog.Logger
	now           func() time.Time
}

func NewDashboardService(
	dashboardRepo dashboard.DashboardRepository,
	employeeRepo employee.EmployeeRepository,
	projectRepo project.ProjectRepository,
	timesheetRepo timesheet.TimesheetRepository,
	tenantRepo tenant.TenantRepository,
	defaults tenant.Thresholds,
	logger *slog.Logger,
) dashboard.DashboardService {
	return &DashboardServiceImpl{
		dashboardRepo: dashboardRepo,
		employeeRepo:  employeeRepo,
		projectRepo:   projectRepo,
		timesheetRepo: timesheetRepo,
		tenantRepo:    tenantRepo,
		defaults:      defaults,
		logger:        logger,
		now:           time.Now,
	}
}

// thresholds resolves the tenant's classification bounds, falling back to
// the configured defaults for anything the tenant has not overridden.
func (s *DashboardServiceImpl) thresholds(ctx context.Context, tenantID string) (tenant.Thresholds, error) {
	settings, err := s.tenantRepo.GetSettings(ctx, tenantID)
	if err != nil {
		return tenant.Thresholds{}, fmt.Errorf("failed to resolve tenant thresholds: %w", err)
	}
	return settings.Resolve(s.defaults), nil
}

// resolvePeriod parses the requested bounds, defaulting to the current
// calendar month when either is absent.
func (s *DashboardServiceImpl) resolvePeriod(periodStart, periodEnd string) (time.Time, time.Time, error) {
	first, last := period.MonthRange(s.now())

	start := first
	if periodStart != "" {
		parsed, err := period.Parse(periodStart)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid period start: %w", err)
		}
		start = parsed
	}

	end := last
	if periodEnd != "" {
		parsed, err := period.Parse(periodEnd)
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("invalid period end: %w", err)
		}
		end = parsed
	}

	return start, end, nil
}

// CompanyDashboard combines counts, utilization KPIs and burn rates into
// the company-wide summary. The six sub-aggregations are independent reads
// and run as a parallel fan-out; the first failure aborts the whole call so
// a partial dashboard is never returned.
func (s *DashboardServiceImpl) CompanyDashboard(ctx context.Context, periodStart, periodEnd string) (*dashboard.CompanyDashboard, error) {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	start, end, err := s.resolvePeriod(periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	thresholds, err := s.thresholds(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var (
		employeeCount  int64
		activeProjects int64
		totalHours     float64
		pendingCount   int64
		utilization    []dashboard.UtilizationKPI
		burnRates      []dashboard.ProjectBurnRate
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		employeeCount, err = s.employeeRepo.CountByStatus(gCtx, tenantID, employee.StatusActive)
		return err
	})

	g.Go(func() error {
		var err error
		activeProjects, err = s.projectRepo.CountByStatus(gCtx, tenantID, project.StatusActive)
		return err
	})

	g.Go(func() error {
		var err error
		totalHours, err = s.dashboardRepo.SumApprovedHours(gCtx, tenantID, start, end)
		return err
	})

	g.Go(func() error {
		var err error
		pendingCount, err = s.timesheetRepo.CountPending(gCtx, tenantID)
		return err
	})

	g.Go(func() error {
		var err error
		utilization, err = s.computeUtilization(gCtx, tenantID, start, end, thresholds)
		return err
	})

	g.Go(func() error {
		var err error
		burnRates, err = s.computeBurnRates(gCtx, tenantID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	avgUtilization := 0
	if len(utilization) > 0 {
		sum := 0
		for _, u := range utilization {
			sum += u.UtilizationPct
		}
		avgUtilization = int(math.Round(float64(sum) / float64(len(utilization))))
	}

	overloaded := make([]dashboard.UtilizationKPI, 0)
	underutilized := make([]dashboard.UtilizationKPI, 0)
	for _, u := range utilization {
		switch u.Status {
		case dashboard.StatusOverloaded:
			overloaded = append(overloaded, u)
		case dashboard.StatusUnderutilized:
			underutilized = append(underutilized, u)
		}
	}

	return &dashboard.CompanyDashboard{
		Period: dashboard.Period{
			Start: period.Format(start),
			End:   period.Format(end),
		},
		Summary: dashboard.Summary{
			TotalEmployees:   employeeCount,
			ActiveProjects:   activeProjects,
			TotalActualHours: totalHours,
			PendingApprovals: pendingCount,
			AvgUtilization:   avgUtilization,
		},
		Alerts: dashboard.Alerts{
			OverloadedEmployees:    overloaded,
			UnderutilizedEmployees: underutilized,
		},
		ProjectBurnRates: burnRates,
	}, nil
}

// EmployeeUtilization returns one KPI per active employee for the period,
// sorted by utilization percentage descending.
func (s *DashboardServiceImpl) EmployeeUtilization(ctx context.Context, periodStart, periodEnd string) ([]dashboard.UtilizationKPI, error) {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	start, end, err := s.resolvePeriod(periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	thresholds, err := s.thresholds(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	return s.computeUtilization(ctx, tenantID, start, end, thresholds)
}

func (s *DashboardServiceImpl) computeUtilization(ctx context.Context, tenantID string, start, end time.Time, thresholds tenant.Thresholds) ([]dashboard.UtilizationKPI, error) {
	rows, err := s.dashboardRepo.ListUtilizationRows(ctx, tenantID, start, end)
	if err != nil {
		return nil, err
	}

	workingDays := period.WorkingDays(start, end)

	result := make([]dashboard.UtilizationKPI, 0, len(rows))
	for _, row := range rows {
		dailyCapacity := float64(row.CapacityPerWeek) / 5
		capacityHours := float64(workingDays) * dailyCapacity

		// Zero capacity means none configured, not infinite utilization.
		utilizationPct := 0
		if capacityHours > 0 {
			utilizationPct = int(math.Round(row.ActualHours / capacityHours * 100))
		}

		status := dashboard.StatusNormal
		if utilizationPct > thresholds.Overload {
			status = dashboard.StatusOverloaded
		} else if utilizationPct < thresholds.Underutil {
			status = dashboard.StatusUnderutilized
		}

		result = append(result, dashboard.UtilizationKPI{
			EmployeeID:     row.EmployeeID,
			Name:           row.Name,
			Department:     row.Department,
			ActualHours:    row.ActualHours,
			CapacityHours:  capacityHours,
			UtilizationPct: utilizationPct,
			Status:         status,
		})
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].UtilizationPct > result[j].UtilizationPct
	})

	return result, nil
}

// ProjectBurnRates returns burn and cost-variance figures for every active
// or planning project, unbounded by period.
func (s *DashboardServiceImpl) ProjectBurnRates(ctx context.Context) ([]dashboard.ProjectBurnRate, error) {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	return s.computeBurnRates(ctx, tenantID)
}

func (s *DashboardServiceImpl) computeBurnRates(ctx context.Context, tenantID string) ([]dashboard.ProjectBurnRate, error) {
	rows, err := s.dashboardRepo.ListBurnRateRows(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	result := make([]dashboard.ProjectBurnRate, 0, len(rows))
	for _, row := range rows {
		// Zero planned hours yields a zero burn rate, never a division error.
		burnRate := 0
		if row.PlannedHours > 0 {
			burnRate = int(math.Round(row.ActualHours / row.PlannedHours * 100))
		}

		result = append(result, dashboard.ProjectBurnRate{
			ProjectID:       row.ProjectID,
			Name:            row.Name,
			Code:            row.Code,
			Status:          row.Status,
			PlannedHours:    row.PlannedHours,
			ActualHours:     row.ActualHours,
			PlannedVariance: row.PlannedHours - row.ActualHours,
			BurnRatePct:     burnRate,
			PlannedCost:     row.PlannedCost,
			ActualCost:      row.ActualCost,
			CostVariance:    row.PlannedCost.Sub(row.ActualCost),
		})
	}

	return result, nil
}

// ProjectDashboard drills into one project. The three sub-aggregations are
// independent reads and run as a parallel fan-out; a missing project is a
// not-found error before any of them start.
func (s *DashboardServiceImpl) ProjectDashboard(ctx context.Context, projectID string) (*dashboard.ProjectDashboard, error) {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	proj, err := s.projectRepo.GetByID(ctx, tenantID, projectID)
	if err != nil {
		return nil, err
	}

	var (
		employeeRows []dashboard.ProjectEmployeeHoursRow
		weeklyRows   []dashboard.WeeklyHoursRow
		varianceRows []dashboard.AllocationVarianceRow
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		employeeRows, err = s.dashboardRepo.ListProjectEmployeeHours(gCtx, tenantID, projectID)
		return err
	})

	g.Go(func() error {
		var err error
		weeklyRows, err = s.dashboardRepo.ListProjectWeeklyHours(gCtx, tenantID, projectID)
		return err
	})

	g.Go(func() error {
		var err error
		varianceRows, err = s.dashboardRepo.ListAllocationVariance(gCtx, tenantID, projectID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	hoursByEmployee := make([]dashboard.ProjectEmployeeHours, 0, len(employeeRows))
	for _, row := range employeeRows {
		hoursByEmployee = append(hoursByEmployee, dashboard.ProjectEmployeeHours{
			EmployeeID:  row.EmployeeID,
			Name:        row.Name,
			ActualHours: row.ActualHours,
			Cost:        row.Cost,
		})
	}

	hoursByWeek := make([]dashboard.WeeklyHours, 0, len(weeklyRows))
	for _, row := range weeklyRows {
		hoursByWeek = append(hoursByWeek, dashboard.WeeklyHours{
			WeekStart:  period.Format(row.WeekStart),
			TotalHours: row.TotalHours,
		})
	}

	variance := make([]dashboard.AllocationVariance, 0, len(varianceRows))
	for _, row := range varianceRows {
		variance = append(variance, dashboard.AllocationVariance{
			EmployeeName: row.EmployeeName,
			PlannedHours: row.PlannedHours,
			ActualHours:  row.ActualHours,
			Variance:     row.PlannedHours - row.ActualHours,
		})
	}

	return &dashboard.ProjectDashboard{
		Project:            proj,
		HoursByEmployee:    hoursByEmployee,
		HoursByWeek:        hoursByWeek,
		AllocationVariance: variance,
	}, nil
}

// EmployeeDashboard drills into one employee for the period. The employee's
// own utilization is computed from the daily trend, so no tenant-wide scan
// is needed; inactive employees keep a zero KPI because they are outside
// the utilization aggregation.
func (s *DashboardServiceImpl) EmployeeDashboard(ctx context.Context, employeeID, periodStart, periodEnd string) (*dashboard.EmployeeDashboard, error) {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return nil, err
	}

	start, end, err := s.resolvePeriod(periodStart, periodEnd)
	if err != nil {
		return nil, err
	}

	emp, err := s.employeeRepo.GetByID(ctx, tenantID, employeeID)
	if err != nil {
		return nil, err
	}

	thresholds, err := s.thresholds(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var (
		projectRows  []dashboard.ProjectHoursRow
		dailyRows    []dashboard.DailyHoursRow
		pendingCount int64
	)

	g, gCtx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		projectRows, err = s.dashboardRepo.ListEmployeeProjectHours(gCtx, tenantID, employeeID, start, end)
		return err
	})

	g.Go(func() error {
		var err error
		dailyRows, err = s.dashboardRepo.ListEmployeeDailyHours(gCtx, tenantID, employeeID, start, end)
		return err
	})

	g.Go(func() error {
		var err error
		pendingCount, err = s.timesheetRepo.CountPendingByEmployee(gCtx, tenantID, employeeID)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	hoursByProject := make([]dashboard.ProjectHours, 0, len(projectRows))
	for _, row := range projectRows {
		hoursByProject = append(hoursByProject, dashboard.ProjectHours{
			ProjectID:  row.ProjectID,
			Name:       row.Name,
			Code:       row.Code,
			TotalHours: row.TotalHours,
		})
	}

	actualHours := 0.0
	dailyTrend := make([]dashboard.DailyHours, 0, len(dailyRows))
	for _, row := range dailyRows {
		actualHours += row.TotalHours
		dailyTrend = append(dailyTrend, dashboard.DailyHours{
			Date:       period.Format(row.Date),
			TotalHours: row.TotalHours,
		})
	}

	util := dashboard.UtilizationKPI{
		EmployeeID: emp.ID,
		Name:       emp.Name,
		Department: emp.Department,
		Status:     dashboard.StatusUnderutilized,
	}
	if emp.Status == employee.StatusActive {
		capacityHours := float64(period.WorkingDays(start, end)) * emp.DailyCapacity()

		utilizationPct := 0
		if capacityHours > 0 {
			utilizationPct = int(math.Round(actualHours / capacityHours * 100))
		}

		status := dashboard.StatusNormal
		if utilizationPct > thresholds.Overload {
			status = dashboard.StatusOverloaded
		} else if utilizationPct < thresholds.Underutil {
			status = dashboard.StatusUnderutilized
		}

		util.ActualHours = actualHours
		util.CapacityHours = capacityHours
		util.UtilizationPct = utilizationPct
		util.Status = status
	}

	return &dashboard.EmployeeDashboard{
		Employee: emp,
		Period: dashboard.Period{
			Start: period.Format(start),
			End:   period.Format(end),
		},
		Utilization:      util,
		HoursByProject:   hoursByProject,
		DailyTrend:       dailyTrend,
		PendingApprovals: pendingCount,
	}, nil
}

// RefreshAggregates recomputes the materialized rollups. The views may not
// exist yet on a fresh database; failure is logged and swallowed because
// the scheduled trigger retries on its next tick and request paths never
// depend on the rollups being fresh.
func (s *DashboardServiceImpl) RefreshAggregates(ctx context.Context) error {
	if err := s.dashboardRepo.RefreshAggregates(ctx); err != nil {
		s.logger.Warn("could not refresh aggregate views", "error", err)
	}
	return nil
}
