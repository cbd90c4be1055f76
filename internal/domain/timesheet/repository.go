package timesheet

import (
	"context"
	"time"
)

type TimesheetRepository interface {
	Create(ctx context.Context, ts Timesheet) (Timesheet, error)
	GetByID(ctx context.Context, tenantID, id string) (Timesheet, error)
	List(ctx context.Context, tenantID string, filter ListFilter) ([]Timesheet, int64, error)
	Update(ctx context.Context, ts Timesheet) (Timesheet, error)
	Delete(ctx context.Context, tenantID, id string) error
	UpdateApproval(ctx context.Context, ts Timesheet) (Timesheet, error)

	// SumSameDayHours totals the employee's logged hours for one calendar
	// date regardless of approval status, optionally excluding the record
	// being re-validated.
	SumSameDayHours(ctx context.Context, tenantID, employeeID string, date time.Time, excludeID string) (float64, error)

	// AcquireDayLock serializes writers for one (tenant, employee, date) key
	// for the remainder of the surrounding transaction, closing the
	// check-then-write race on the daily ceiling. Must be called inside a
	// transaction.
	AcquireDayLock(ctx context.Context, tenantID, employeeID string, date time.Time) error

	CountPending(ctx context.Context, tenantID string) (int64, error)
	CountPendingByEmployee(ctx context.Context, tenantID, employeeID string) (int64, error)
}
