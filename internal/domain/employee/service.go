package employee

import "context"

type EmployeeService interface {
	GetEmployee(ctx context.Context, id string) (Employee, error)
	ListEmployees(ctx context.Context, filter ListFilter) ([]Employee, int64, error)
}
