package employee

import "context"

// ListFilter narrows List results. Search matches name, email and
// employee_code with case-insensitive substring semantics.
type ListFilter struct {
	Search     string
	Department string
	Status     Status
	Page       int
	Limit      int
}

// EmployeeRepository is the read port over the employees table. The
// analytics core never mutates employee state.
type EmployeeRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (Employee, error)
	List(ctx context.Context, tenantID string, filter ListFilter) ([]Employee, int64, error)
	CountByStatus(ctx context.Context, tenantID string, status Status) (int64, error)
}
