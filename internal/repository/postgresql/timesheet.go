package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/timesheet"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/database"
)

type timesheetRepositoryImpl struct {
	db *database.DB
}

func NewTimesheetRepository(db *database.DB) timesheet.TimesheetRepository {
	return &timesheetRepositoryImpl{db: db}
}

const timesheetColumns = `
	id, tenant_id, employee_id, project_id, task_id, date, hours, mode, notes,
	approval_status, approved_by, approved_at, rejection_reason, created_at, updated_at
`

func scanTimesheet(row pgx.Row) (timesheet.Timesheet, error) {
	var ts timesheet.Timesheet
	err := row.Scan(
		&ts.ID, &ts.TenantID, &ts.EmployeeID, &ts.ProjectID, &ts.TaskID, &ts.Date, &ts.Hours, &ts.Mode, &ts.Notes,
		&ts.ApprovalStatus, &ts.ApprovedBy, &ts.ApprovedAt, &ts.RejectionReason, &ts.CreatedAt, &ts.UpdatedAt,
	)
	return ts, err
}

func (r *timesheetRepositoryImpl) Create(ctx context.Context, ts timesheet.Timesheet) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO timesheets (id, tenant_id, employee_id, project_id, task_id, date, hours, mode, notes,
			approval_status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, NOW(), NOW())
		RETURNING ` + timesheetColumns

	created, err := scanTimesheet(q.QueryRow(ctx, query,
		ts.ID, ts.TenantID, ts.EmployeeID, ts.ProjectID, ts.TaskID, ts.Date, ts.Hours, ts.Mode, ts.Notes,
		ts.ApprovalStatus,
	))
	if err != nil {
		return timesheet.Timesheet{}, fmt.Errorf("failed to create timesheet: %w", err)
	}
	return created, nil
}

func (r *timesheetRepositoryImpl) GetByID(ctx context.Context, tenantID, id string) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + timesheetColumns + ` FROM timesheets WHERE tenant_id = $1 AND id = $2`

	ts, err := scanTimesheet(q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
		}
		return timesheet.Timesheet{}, fmt.Errorf("failed to get timesheet: %w", err)
	}
	return ts, nil
}

func (r *timesheetRepositoryImpl) List(ctx context.Context, tenantID string, filter timesheet.ListFilter) ([]timesheet.Timesheet, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := `WHERE tenant_id = $1`
	args := []interface{}{tenantID}

	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += fmt.Sprintf(` AND employee_id = $%d`, len(args))
	}
	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		where += fmt.Sprintf(` AND project_id = $%d`, len(args))
	}
	if filter.DateFrom != "" {
		args = append(args, filter.DateFrom)
		where += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if filter.DateTo != "" {
		args = append(args, filter.DateTo)
		where += fmt.Sprintf(` AND date <= $%d`, len(args))
	}
	if filter.ApprovalStatus != "" {
		args = append(args, filter.ApprovalStatus)
		where += fmt.Sprintf(` AND approval_status = $%d`, len(args))
	}
	if filter.Mode != "" {
		args = append(args, filter.Mode)
		where += fmt.Sprintf(` AND mode = $%d`, len(args))
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM timesheets `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count timesheets: %w", err)
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	args = append(args, limit, (page-1)*limit)
	query := `SELECT ` + timesheetColumns + ` FROM timesheets ` + where +
		fmt.Sprintf(` ORDER BY date DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list timesheets: %w", err)
	}
	defer rows.Close()

	var result []timesheet.Timesheet
	for rows.Next() {
		ts, err := scanTimesheet(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan timesheet: %w", err)
		}
		result = append(result, ts)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return result, total, nil
}

func (r *timesheetRepositoryImpl) Update(ctx context.Context, ts timesheet.Timesheet) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE timesheets
		SET date = $3, hours = $4, mode = $5, notes = $6, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + timesheetColumns

	updated, err := scanTimesheet(q.QueryRow(ctx, query,
		ts.TenantID, ts.ID, ts.Date, ts.Hours, ts.Mode, ts.Notes,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
		}
		return timesheet.Timesheet{}, fmt.Errorf("failed to update timesheet: %w", err)
	}
	return updated, nil
}

func (r *timesheetRepositoryImpl) UpdateApproval(ctx context.Context, ts timesheet.Timesheet) (timesheet.Timesheet, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE timesheets
		SET approval_status = $3, approved_by = $4, approved_at = $5, rejection_reason = $6, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + timesheetColumns

	updated, err := scanTimesheet(q.QueryRow(ctx, query,
		ts.TenantID, ts.ID, ts.ApprovalStatus, ts.ApprovedBy, ts.ApprovedAt, ts.RejectionReason,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timesheet.Timesheet{}, timesheet.ErrTimesheetNotFound
		}
		return timesheet.Timesheet{}, fmt.Errorf("failed to update timesheet approval: %w", err)
	}
	return updated, nil
}

func (r *timesheetRepositoryImpl) Delete(ctx context.Context, tenantID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM timesheets WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete timesheet: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return timesheet.ErrTimesheetNotFound
	}
	return nil
}

func (r *timesheetRepositoryImpl) SumSameDayHours(ctx context.Context, tenantID, employeeID string, date time.Time, excludeID string) (float64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(hours), 0)
		FROM timesheets
		WHERE tenant_id = $1 AND employee_id = $2 AND date = $3
	`
	args := []interface{}{tenantID, employeeID, date}

	if excludeID != "" {
		args = append(args, excludeID)
		query += fmt.Sprintf(` AND id <> $%d`, len(args))
	}

	var total float64
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum same-day hours: %w", err)
	}
	return total, nil
}

// AcquireDayLock takes a transaction-scoped advisory lock keyed by
// (tenant, employee, date). Concurrent writers for the same key serialize
// here, so the sum-then-insert sequence behind the daily ceiling cannot
// interleave. Released automatically at commit or rollback.
func (r *timesheetRepositoryImpl) AcquireDayLock(ctx context.Context, tenantID, employeeID string, date time.Time) error {
	q := GetQuerier(ctx, r.db)

	key := fmt.Sprintf("%s/%s/%s", tenantID, employeeID, date.Format("2006-01-02"))
	_, err := q.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`, key)
	if err != nil {
		return fmt.Errorf("failed to acquire day lock: %w", err)
	}
	return nil
}

func (r *timesheetRepositoryImpl) CountPending(ctx context.Context, tenantID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM timesheets WHERE tenant_id = $1 AND approval_status = 'pending'`,
		tenantID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending timesheets: %w", err)
	}
	return count, nil
}

func (r *timesheetRepositoryImpl) CountPendingByEmployee(ctx context.Context, tenantID, employeeID string) (int64, error) {
	q := GetQuerier(ctx, r.db)

	var count int64
	err := q.QueryRow(ctx,
		`SELECT COUNT(*) FROM timesheets WHERE tenant_id = $1 AND employee_id = $2 AND approval_status = 'pending'`,
		tenantID, employeeID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending timesheets for employee: %w", err)
	}
	return count, nil
}
