package dashboard

import (
	"github.com/manhour-hq/manhour-backend-go/internal/domain/employee"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/project"
	"github.com/shopspring/decimal"
)

type UtilizationStatus string

const (
	StatusOverloaded    UtilizationStatus = "overloaded"
	StatusNormal        UtilizationStatus = "normal"
	StatusUnderutilized UtilizationStatus = "underutilized"
)

// UtilizationKPI is the per-employee utilization row, computed fresh per
// request and never persisted.
type UtilizationKPI struct {
	EmployeeID     string            `json:"employee_id"`
	Name           string            `json:"name"`
	Department     *string           `json:"department"`
	ActualHours    float64           `json:"actual_hours"`
	CapacityHours  float64           `json:"capacity_hours"`
	UtilizationPct int               `json:"utilization_pct"`
	Status         UtilizationStatus `json:"status"`
}

// ProjectBurnRate is the per-project burn and cost-variance row. Actual
// hours and cost are unbounded by period: it is a live snapshot.
type ProjectBurnRate struct {
	ProjectID       string          `json:"project_id"`
	Name            string          `json:"name"`
	Code            *string         `json:"code"`
	Status          string          `json:"status"`
	PlannedHours    float64         `json:"planned_hours"`
	ActualHours     float64         `json:"actual_hours"`
	PlannedVariance float64         `json:"planned_variance"`
	BurnRatePct     int             `json:"burn_rate"`
	PlannedCost     decimal.Decimal `json:"planned_cost"`
	ActualCost      decimal.Decimal `json:"actual_cost"`
	CostVariance    decimal.Decimal `json:"cost_variance"`
}

type Period struct {
	Start string `json:"start"` // YYYY-MM-DD
	End   string `json:"end"`
}

type Summary struct {
	TotalEmployees   int64   `json:"total_employees"`
	ActiveProjects   int64   `json:"active_projects"`
	TotalActualHours float64 `json:"total_actual_hours"`
	PendingApprovals int64   `json:"pending_approvals"`
	AvgUtilization   int     `json:"avg_utilization"`
}

type Alerts struct {
	OverloadedEmployees    []UtilizationKPI `json:"overloaded_employees"`
	UnderutilizedEmployees []UtilizationKPI `json:"underutilized_employees"`
}

// CompanyDashboard is the combined company-wide summary.
type CompanyDashboard struct {
	Period           Period            `json:"period"`
	Summary          Summary           `json:"summary"`
	Alerts           Alerts            `json:"alerts"`
	ProjectBurnRates []ProjectBurnRate `json:"project_burn_rates"`
}

// ProjectEmployeeHours is one contributor's approved hours and cost on a
// project, all-time.
type ProjectEmployeeHours struct {
	EmployeeID  string          `json:"employee_id"`
	Name        string          `json:"name"`
	ActualHours float64         `json:"actual_hours"`
	Cost        decimal.Decimal `json:"cost"`
}

type WeeklyHours struct {
	WeekStart  string  `json:"week_start"` // Monday of the ISO week, YYYY-MM-DD
	TotalHours float64 `json:"total_hours"`
}

// AllocationVariance compares one allocation's planned hours against the
// approved hours the employee actually logged inside the allocation period.
type AllocationVariance struct {
	EmployeeName string  `json:"employee_name"`
	PlannedHours float64 `json:"planned_hours"`
	ActualHours  float64 `json:"actual_hours"`
	Variance     float64 `json:"variance"`
}

// ProjectDashboard is the drill-down view for a single project.
type ProjectDashboard struct {
	Project            project.Project        `json:"project"`
	HoursByEmployee    []ProjectEmployeeHours `json:"hours_by_employee"`
	HoursByWeek        []WeeklyHours          `json:"hours_by_week"`
	AllocationVariance []AllocationVariance   `json:"allocation_variance"`
}

type ProjectHours struct {
	ProjectID  string  `json:"project_id"`
	Name       string  `json:"name"`
	Code       *string `json:"code"`
	TotalHours float64 `json:"total_hours"`
}

type DailyHours struct {
	Date       string  `json:"date"`
	TotalHours float64 `json:"total_hours"`
}

// EmployeeDashboard is the drill-down view for a single employee within a
// period.
type EmployeeDashboard struct {
	Employee         employee.Employee `json:"employee"`
	Period           Period            `json:"period"`
	Utilization      UtilizationKPI    `json:"utilization"`
	HoursByProject   []ProjectHours    `json:"hours_by_project"`
	DailyTrend       []DailyHours      `json:"daily_trend"`
	PendingApprovals int64             `json:"pending_approvals"`
}
