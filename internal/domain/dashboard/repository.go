package dashboard

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// UtilizationRow is one active employee joined with the sum of their
// approved hours inside the period. Employees with no entries appear with
// ActualHours 0.
type UtilizationRow struct {
	EmployeeID      string
	Name            string
	Department      *string
	CapacityPerWeek int
	ActualHours     float64
}

// BurnRateRow is one active-or-planning project joined with its all-time
// approved hours and cost (hours x employee cost_per_hour).
type BurnRateRow struct {
	ProjectID    string
	Name         string
	Code         *string
	Status       string
	PlannedHours float64
	PlannedCost  decimal.Decimal
	ActualHours  float64
	ActualCost   decimal.Decimal
}

// ProjectEmployeeHoursRow is one contributor's all-time approved hours and
// cost on a project.
type ProjectEmployeeHoursRow struct {
	EmployeeID  string
	Name        string
	ActualHours float64
	Cost        decimal.Decimal
}

type WeeklyHoursRow struct {
	WeekStart  time.Time
	TotalHours float64
}

// AllocationVarianceRow pairs an allocation's planned hours with the
// approved hours logged inside its own period.
type AllocationVarianceRow struct {
	EmployeeName string
	PlannedHours float64
	ActualHours  float64
}

type ProjectHoursRow struct {
	ProjectID  string
	Name       string
	Code       *string
	TotalHours float64
}

type DailyHoursRow struct {
	Date       time.Time
	TotalHours float64
}

// DashboardRepository bundles the read queries behind the aggregators.
// Every query is tenant-scoped; a failing query aborts the aggregation
// rather than yielding a partial result.
type DashboardRepository interface {
	ListUtilizationRows(ctx context.Context, tenantID string, periodStart, periodEnd time.Time) ([]UtilizationRow, error)
	ListBurnRateRows(ctx context.Context, tenantID string) ([]BurnRateRow, error)
	SumApprovedHours(ctx context.Context, tenantID string, periodStart, periodEnd time.Time) (float64, error)

	ListProjectEmployeeHours(ctx context.Context, tenantID, projectID string) ([]ProjectEmployeeHoursRow, error)
	ListProjectWeeklyHours(ctx context.Context, tenantID, projectID string) ([]WeeklyHoursRow, error)
	ListAllocationVariance(ctx context.Context, tenantID, projectID string) ([]AllocationVarianceRow, error)
	ListEmployeeProjectHours(ctx context.Context, tenantID, employeeID string, periodStart, periodEnd time.Time) ([]ProjectHoursRow, error)
	ListEmployeeDailyHours(ctx context.Context, tenantID, employeeID string, periodStart, periodEnd time.Time) ([]DailyHoursRow, error)

	// RefreshAggregates rebuilds the materialized rollup views without
	// blocking concurrent readers. Safe to invoke repeatedly and
	// concurrently with itself.
	RefreshAggregates(ctx context.Context) error
}
