package employee

import (
	"context"

	"github.com/manhour-hq/manhour-backend-go/internal/domain/employee"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/jwt"
)

type EmployeeServiceImpl struct {
	employeeRepo employee.EmployeeRepository
}

func NewEmployeeService(employeeRepo employee.EmployeeRepository) employee.EmployeeService {
	return &EmployeeServiceImpl{employeeRepo: employeeRepo}
}

func (s *EmployeeServiceImpl) GetEmployee(ctx context.Context, id string) (employee.Employee, error) {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return employee.Employee{}, err
	}
	return s.employeeRepo.GetByID(ctx, tenantID, id)
}

func (s *EmployeeServiceImpl) ListEmployees(ctx context.Context, filter employee.ListFilter) ([]employee.Employee, int64, error) {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return nil, 0, err
	}
	return s.employeeRepo.List(ctx, tenantID, filter)
}
