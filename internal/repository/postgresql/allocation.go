package postgresql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/allocation"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/database"
)

type allocationRepositoryImpl struct {
	db *database.DB
}

func NewAllocationRepository(db *database.DB) allocation.AllocationRepository {
	return &allocationRepositoryImpl{db: db}
}

const allocationColumns = `
	id, tenant_id, project_id, employee_id, period_start, period_end,
	planned_hours, billable, justification, created_at, updated_at
`

func scanAllocation(row pgx.Row) (allocation.Allocation, error) {
	var a allocation.Allocation
	err := row.Scan(
		&a.ID, &a.TenantID, &a.ProjectID, &a.EmployeeID, &a.PeriodStart, &a.PeriodEnd,
		&a.PlannedHours, &a.Billable, &a.Justification, &a.CreatedAt, &a.UpdatedAt,
	)
	return a, err
}

func (r *allocationRepositoryImpl) Create(ctx context.Context, alloc allocation.Allocation) (allocation.Allocation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO allocations (id, tenant_id, project_id, employee_id, period_start, period_end,
			planned_hours, billable, justification, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING ` + allocationColumns

	created, err := scanAllocation(q.QueryRow(ctx, query,
		alloc.ID, alloc.TenantID, alloc.ProjectID, alloc.EmployeeID, alloc.PeriodStart, alloc.PeriodEnd,
		alloc.PlannedHours, alloc.Billable, alloc.Justification,
	))
	if err != nil {
		return allocation.Allocation{}, fmt.Errorf("failed to create allocation: %w", err)
	}
	return created, nil
}

func (r *allocationRepositoryImpl) GetByID(ctx context.Context, tenantID, id string) (allocation.Allocation, error) {
	q := GetQuerier(ctx, r.db)

	query := `SELECT ` + allocationColumns + ` FROM allocations WHERE tenant_id = $1 AND id = $2`

	a, err := scanAllocation(q.QueryRow(ctx, query, tenantID, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return allocation.Allocation{}, allocation.ErrAllocationNotFound
		}
		return allocation.Allocation{}, fmt.Errorf("failed to get allocation: %w", err)
	}
	return a, nil
}

func (r *allocationRepositoryImpl) List(ctx context.Context, tenantID string, filter allocation.ListFilter) ([]allocation.Allocation, int64, error) {
	q := GetQuerier(ctx, r.db)

	where := `WHERE tenant_id = $1`
	args := []interface{}{tenantID}

	if filter.ProjectID != "" {
		args = append(args, filter.ProjectID)
		where += fmt.Sprintf(` AND project_id = $%d`, len(args))
	}
	if filter.EmployeeID != "" {
		args = append(args, filter.EmployeeID)
		where += fmt.Sprintf(` AND employee_id = $%d`, len(args))
	}
	// Period filters use inclusive-overlap semantics: an allocation matches
	// when its range touches the queried range.
	if filter.PeriodStart != "" {
		args = append(args, filter.PeriodStart)
		where += fmt.Sprintf(` AND period_end >= $%d`, len(args))
	}
	if filter.PeriodEnd != "" {
		args = append(args, filter.PeriodEnd)
		where += fmt.Sprintf(` AND period_start <= $%d`, len(args))
	}

	var total int64
	if err := q.QueryRow(ctx, `SELECT COUNT(*) FROM allocations `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count allocations: %w", err)
	}

	page, limit := normalizePage(filter.Page, filter.Limit)
	args = append(args, limit, (page-1)*limit)
	query := `SELECT ` + allocationColumns + ` FROM allocations ` + where +
		fmt.Sprintf(` ORDER BY period_start ASC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list allocations: %w", err)
	}
	defer rows.Close()

	var result []allocation.Allocation
	for rows.Next() {
		a, err := scanAllocation(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan allocation: %w", err)
		}
		result = append(result, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return result, total, nil
}

func (r *allocationRepositoryImpl) Update(ctx context.Context, alloc allocation.Allocation) (allocation.Allocation, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE allocations
		SET period_start = $3, period_end = $4, planned_hours = $5, billable = $6,
			justification = $7, updated_at = NOW()
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + allocationColumns

	updated, err := scanAllocation(q.QueryRow(ctx, query,
		alloc.TenantID, alloc.ID, alloc.PeriodStart, alloc.PeriodEnd, alloc.PlannedHours,
		alloc.Billable, alloc.Justification,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return allocation.Allocation{}, allocation.ErrAllocationNotFound
		}
		return allocation.Allocation{}, fmt.Errorf("failed to update allocation: %w", err)
	}
	return updated, nil
}

func (r *allocationRepositoryImpl) Delete(ctx context.Context, tenantID, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM allocations WHERE tenant_id = $1 AND id = $2`, tenantID, id)
	if err != nil {
		return fmt.Errorf("failed to delete allocation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return allocation.ErrAllocationNotFound
	}
	return nil
}

func (r *allocationRepositoryImpl) SumOverlappingPlannedHours(ctx context.Context, tenantID, employeeID string, start, end time.Time, excludeID string) (float64, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT COALESCE(SUM(planned_hours), 0)
		FROM allocations
		WHERE tenant_id = $1 AND employee_id = $2
		AND period_end >= $3 AND period_start <= $4
	`
	args := []interface{}{tenantID, employeeID, start, end}

	if excludeID != "" {
		args = append(args, excludeID)
		query += fmt.Sprintf(` AND id <> $%d`, len(args))
	}

	var total float64
	if err := q.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum overlapping planned hours: %w", err)
	}
	return total, nil
}
