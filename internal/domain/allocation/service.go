package allocation

import (
	"context"
	"time"
)

type AllocationService interface {
	CreateAllocation(ctx context.Context, req CreateAllocationRequest) (CreateAllocationResponse, error)
	UpdateAllocation(ctx context.Context, id string, req UpdateAllocationRequest) (CreateAllocationResponse, error)
	GetAllocation(ctx context.Context, id string) (Allocation, error)
	ListAllocations(ctx context.Context, filter ListFilter) ([]Allocation, int64, error)
	DeleteAllocation(ctx context.Context, id string) error

	// CheckCapacity evaluates planned commitment against the employee's
	// capacity over the period and returns an advisory warning when the
	// overload threshold is exceeded. A nil warning means no overcommit,
	// or no capacity configured for the employee.
	CheckCapacity(ctx context.Context, tenantID, employeeID string, periodStart, periodEnd time.Time, newPlannedHours float64, excludeID string) (*CapacityWarning, error)
}
