package dashboard

import "context"

type DashboardService interface {
	// CompanyDashboard combines counts, utilization KPIs, alert buckets and
	// burn rates. Empty period bounds default to the current calendar month.
	CompanyDashboard(ctx context.Context, periodStart, periodEnd string) (*CompanyDashboard, error)
	EmployeeUtilization(ctx context.Context, periodStart, periodEnd string) ([]UtilizationKPI, error)
	ProjectBurnRates(ctx context.Context) ([]ProjectBurnRate, error)

	// ProjectDashboard drills into one project: hours by contributor,
	// weekly spend and per-allocation variance, all over approved entries.
	ProjectDashboard(ctx context.Context, projectID string) (*ProjectDashboard, error)

	// EmployeeDashboard drills into one employee for a period. Empty
	// period bounds default to the current calendar month.
	EmployeeDashboard(ctx context.Context, employeeID, periodStart, periodEnd string) (*EmployeeDashboard, error)

	// RefreshAggregates recomputes the materialized rollups. Failures are
	// logged and swallowed; the scheduled trigger retries on its next tick.
	RefreshAggregates(ctx context.Context) error
}
