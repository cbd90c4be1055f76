package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/manhour-hq/manhour-backend-go/internal/domain/dashboard"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/database"
)

type dashboardRepositoryImpl struct {
	db *database.DB
}

func NewDashboardRepository(db *database.DB) dashboard.DashboardRepository {
	return &dashboardRepositoryImpl{db: db}
}

// ListUtilizationRows returns one row per active employee with the sum of
// their approved hours inside [periodStart, periodEnd]. The LEFT JOIN keeps
// employees with no entries in the result with a zero sum.
func (r *dashboardRepositoryImpl) ListUtilizationRows(ctx context.Context, tenantID string, periodStart, periodEnd time.Time) ([]dashboard.UtilizationRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			e.id,
			e.name,
			e.department,
			e.capacity_per_week,
			COALESCE(SUM(t.hours) FILTER (
				WHERE t.approval_status = 'approved'
				AND t.date >= $2 AND t.date <= $3
			), 0) AS actual_hours
		FROM employees e
		LEFT JOIN timesheets t ON t.employee_id = e.id AND t.tenant_id = e.tenant_id
		WHERE e.tenant_id = $1 AND e.status = 'active'
		GROUP BY e.id, e.name, e.department, e.capacity_per_week
	`

	rows, err := q.Query(ctx, query, tenantID, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get utilization rows: %w", err)
	}
	defer rows.Close()

	var result []dashboard.UtilizationRow
	for rows.Next() {
		var row dashboard.UtilizationRow
		if err := rows.Scan(&row.EmployeeID, &row.Name, &row.Department, &row.CapacityPerWeek, &row.ActualHours); err != nil {
			return nil, fmt.Errorf("failed to scan utilization row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ListBurnRateRows returns active and planning projects with their all-time
// approved hours and cost. Cost joins each entry to its employee's
// cost_per_hour; no date filter by design.
func (r *dashboardRepositoryImpl) ListBurnRateRows(ctx context.Context, tenantID string) ([]dashboard.BurnRateRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			p.id,
			p.name,
			p.code,
			p.status,
			p.planned_hours,
			p.planned_cost,
			COALESCE(SUM(t.hours) FILTER (WHERE t.approval_status = 'approved'), 0) AS actual_hours,
			COALESCE(SUM(t.hours * e.cost_per_hour) FILTER (WHERE t.approval_status = 'approved'), 0) AS actual_cost
		FROM projects p
		LEFT JOIN timesheets t ON t.project_id = p.id AND t.tenant_id = p.tenant_id
		LEFT JOIN employees e ON e.id = t.employee_id
		WHERE p.tenant_id = $1 AND p.status IN ('active', 'planning')
		GROUP BY p.id, p.name, p.code, p.status, p.planned_hours, p.planned_cost
		ORDER BY p.name ASC
	`

	rows, err := q.Query(ctx, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to get burn rate rows: %w", err)
	}
	defer rows.Close()

	var result []dashboard.BurnRateRow
	for rows.Next() {
		var row dashboard.BurnRateRow
		if err := rows.Scan(&row.ProjectID, &row.Name, &row.Code, &row.Status,
			&row.PlannedHours, &row.PlannedCost, &row.ActualHours, &row.ActualCost); err != nil {
			return nil, fmt.Errorf("failed to scan burn rate row: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *dashboardRepositoryImpl) SumApprovedHours(ctx context.Context, tenantID string, periodStart, periodEnd time.Time) (float64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(hours), 0)
		FROM timesheets
		WHERE tenant_id = $1
		AND approval_status = 'approved'
		AND date >= $2 AND date <= $3
	`

	var total float64
	if err := q.QueryRow(ctx, query, tenantID, periodStart, periodEnd).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum approved hours: %w", err)
	}
	return total, nil
}

// ListProjectEmployeeHours returns each contributor's all-time approved
// hours and cost on the project, busiest first.
func (r *dashboardRepositoryImpl) ListProjectEmployeeHours(ctx context.Context, tenantID, projectID string) ([]dashboard.ProjectEmployeeHoursRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			e.id,
			e.name,
			SUM(t.hours) AS actual_hours,
			SUM(t.hours * e.cost_per_hour) AS cost
		FROM timesheets t
		JOIN employees e ON e.id = t.employee_id
		WHERE t.tenant_id = $1 AND t.project_id = $2 AND t.approval_status = 'approved'
		GROUP BY e.id, e.name
		ORDER BY actual_hours DESC
	`

	rows, err := q.Query(ctx, query, tenantID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project employee hours: %w", err)
	}
	defer rows.Close()

	var result []dashboard.ProjectEmployeeHoursRow
	for rows.Next() {
		var row dashboard.ProjectEmployeeHoursRow
		if err := rows.Scan(&row.EmployeeID, &row.Name, &row.ActualHours, &row.Cost); err != nil {
			return nil, fmt.Errorf("failed to scan project employee hours: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ListProjectWeeklyHours buckets the project's approved hours by calendar
// week (DATE_TRUNC semantics: buckets start on Monday).
func (r *dashboardRepositoryImpl) ListProjectWeeklyHours(ctx context.Context, tenantID, projectID string) ([]dashboard.WeeklyHoursRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			DATE_TRUNC('week', date) AS week_start,
			SUM(hours) AS total_hours
		FROM timesheets
		WHERE tenant_id = $1 AND project_id = $2 AND approval_status = 'approved'
		GROUP BY DATE_TRUNC('week', date)
		ORDER BY week_start ASC
	`

	rows, err := q.Query(ctx, query, tenantID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get project weekly hours: %w", err)
	}
	defer rows.Close()

	var result []dashboard.WeeklyHoursRow
	for rows.Next() {
		var row dashboard.WeeklyHoursRow
		if err := rows.Scan(&row.WeekStart, &row.TotalHours); err != nil {
			return nil, fmt.Errorf("failed to scan project weekly hours: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ListAllocationVariance compares each of the project's allocations against
// the approved hours its employee logged inside the allocation period. The
// timesheet join is bounded per allocation, so the same entry can count
// toward several overlapping allocations, matching the per-allocation view.
func (r *dashboardRepositoryImpl) ListAllocationVariance(ctx context.Context, tenantID, projectID string) ([]dashboard.AllocationVarianceRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			e.name,
			a.planned_hours,
			COALESCE(SUM(t.hours) FILTER (WHERE t.approval_status = 'approved'), 0) AS actual_hours
		FROM allocations a
		JOIN employees e ON e.id = a.employee_id
		LEFT JOIN timesheets t ON t.tenant_id = a.tenant_id
			AND t.project_id = a.project_id
			AND t.employee_id = a.employee_id
			AND t.date >= a.period_start AND t.date <= a.period_end
		WHERE a.tenant_id = $1 AND a.project_id = $2
		GROUP BY a.id, e.name, a.planned_hours
		ORDER BY e.name ASC, a.id ASC
	`

	rows, err := q.Query(ctx, query, tenantID, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to get allocation variance: %w", err)
	}
	defer rows.Close()

	var result []dashboard.AllocationVarianceRow
	for rows.Next() {
		var row dashboard.AllocationVarianceRow
		if err := rows.Scan(&row.EmployeeName, &row.PlannedHours, &row.ActualHours); err != nil {
			return nil, fmt.Errorf("failed to scan allocation variance: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployeeProjectHours returns the employee's approved hours in the
// period grouped by project.
func (r *dashboardRepositoryImpl) ListEmployeeProjectHours(ctx context.Context, tenantID, employeeID string, periodStart, periodEnd time.Time) ([]dashboard.ProjectHoursRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			p.id,
			p.name,
			p.code,
			SUM(t.hours) AS total_hours
		FROM timesheets t
		JOIN projects p ON p.id = t.project_id
		WHERE t.tenant_id = $1 AND t.employee_id = $2 AND t.approval_status = 'approved'
		AND t.date >= $3 AND t.date <= $4
		GROUP BY p.id, p.name, p.code
		ORDER BY total_hours DESC
	`

	rows, err := q.Query(ctx, query, tenantID, employeeID, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee project hours: %w", err)
	}
	defer rows.Close()

	var result []dashboard.ProjectHoursRow
	for rows.Next() {
		var row dashboard.ProjectHoursRow
		if err := rows.Scan(&row.ProjectID, &row.Name, &row.Code, &row.TotalHours); err != nil {
			return nil, fmt.Errorf("failed to scan employee project hours: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// ListEmployeeDailyHours returns the employee's approved hours in the
// period grouped by day, oldest first.
func (r *dashboardRepositoryImpl) ListEmployeeDailyHours(ctx context.Context, tenantID, employeeID string, periodStart, periodEnd time.Time) ([]dashboard.DailyHoursRow, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT date, SUM(hours) AS total
		FROM timesheets
		WHERE tenant_id = $1 AND employee_id = $2 AND approval_status = 'approved'
		AND date >= $3 AND date <= $4
		GROUP BY date
		ORDER BY date ASC
	`

	rows, err := q.Query(ctx, query, tenantID, employeeID, periodStart, periodEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee daily hours: %w", err)
	}
	defer rows.Close()

	var result []dashboard.DailyHoursRow
	for rows.Next() {
		var row dashboard.DailyHoursRow
		if err := rows.Scan(&row.Date, &row.TotalHours); err != nil {
			return nil, fmt.Errorf("failed to scan employee daily hours: %w", err)
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// RefreshAggregates rebuilds the rollup views. CONCURRENTLY keeps readers
// unblocked and makes the call safe alongside itself; it requires the
// unique indexes created by the materialized-view migration.
func (r *dashboardRepositoryImpl) RefreshAggregates(ctx context.Context) error {
	views := []string{"mv_employee_utilization", "mv_project_cost"}
	for _, view := range views {
		if _, err := r.db.Exec(ctx, `REFRESH MATERIALIZED VIEW CONCURRENTLY `+view); err != nil {
			return fmt.Errorf("failed to refresh %s: %w", view, err)
		}
	}
	return nil
}
