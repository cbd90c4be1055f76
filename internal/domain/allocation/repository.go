package allocation

import (
	"context"
	"time"
)

type AllocationRepository interface {
	Create(ctx context.Context, alloc Allocation) (Allocation, error)
	GetByID(ctx context.Context, tenantID, id string) (Allocation, error)
	List(ctx context.Context, tenantID string, filter ListFilter) ([]Allocation, int64, error)
	Update(ctx context.Context, alloc Allocation) (Allocation, error)
	Delete(ctx context.Context, tenantID, id string) error

	// SumOverlappingPlannedHours returns the total planned hours of the
	// employee's allocations whose period overlaps [start, end] inclusively.
	// excludeID, when non-empty, leaves one allocation out of the sum so an
	// update can be re-checked against its replacement values.
	SumOverlappingPlannedHours(ctx context.Context, tenantID, employeeID string, start, end time.Time, excludeID string) (float64, error)
}
