package allocation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/allocation"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/audit"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/employee"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/project"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/tenant"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/jwt"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/period"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/validator"
)

type AllocationServiceImpl struct {
	allocationRepo allocation.AllocationRepository
	employeeRepo   employee.EmployeeRepository
	projectRepo    project.ProjectRepository
	tenantRepo     tenant.TenantRepository
	auditRepo      audit.AuditRepository
	defaults       tenant.Thresholds
	logger         *slog.Logger
}

func NewAllocationService(
	allocationRepo allocation.AllocationRepository,
	employeeRepo employee.EmployeeRepository,
	projectRepo project.ProjectRepository,
	tenantRepo tenant.TenantRepository,
	auditRepo audit.AuditRepository,
	defaults tenant.Thresholds,
	logger *slog.Logger,
) allocation.AllocationService {
	return &AllocationServiceImpl{
		allocationRepo: allocationRepo,
		employeeRepo:   employeeRepo,
		projectRepo:    projectRepo,
		tenantRepo:     tenantRepo,
		auditRepo:      auditRepo,
		defaults:       defaults,
		logger:         logger,
	}
}

func (s *AllocationServiceImpl) CreateAllocation(ctx context.Context, req allocation.CreateAllocationRequest) (allocation.CreateAllocationResponse, error) {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return allocation.CreateAllocationResponse{}, err
	}

	var validationErrors validator.ValidationErrors
	if validator.IsEmpty(req.ProjectID) {
		validationErrors = append(validationErrors, validator.ValidationError{Field: "project_id", Message: "project_id is required"})
	}
	if validator.IsEmpty(req.EmployeeID) {
		validationErrors = append(validationErrors, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	periodStart, ok := validator.IsValidDate(req.PeriodStart)
	if !ok {
		validationErrors = append(validationErrors, validator.ValidationError{Field: "period_start", Message: "must be a valid date in YYYY-MM-DD format"})
	}
	periodEnd, ok := validator.IsValidDate(req.PeriodEnd)
	if !ok {
		validationErrors = append(validationErrors, validator.ValidationError{Field: "period_end", Message: "must be a valid date in YYYY-MM-DD format"})
	}
	if !validator.IsValidPlannedHours(req.PlannedHours) {
		validationErrors = append(validationErrors, validator.ValidationError{Field: "planned_hours", Message: "must not be negative"})
	}
	if len(validationErrors) > 0 {
		return allocation.CreateAllocationResponse{}, validationErrors
	}
	if periodEnd.Before(periodStart) {
		return allocation.CreateAllocationResponse{}, validator.ValidationErrors{
			{Field: "period_end", Message: "must not be before period_start"},
		}
	}

	if _, err := s.projectRepo.GetByID(ctx, tenantID, req.ProjectID); err != nil {
		return allocation.CreateAllocationResponse{}, err
	}
	if _, err := s.employeeRepo.GetByID(ctx, tenantID, req.EmployeeID); err != nil {
		return allocation.CreateAllocationResponse{}, err
	}

	warning, err := s.CheckCapacity(ctx, tenantID, req.EmployeeID, periodStart, periodEnd, req.PlannedHours, "")
	if err != nil {
		return allocation.CreateAllocationResponse{}, err
	}

	billable := true
	if req.Billable != nil {
		billable = *req.Billable
	}

	created, err := s.allocationRepo.Create(ctx, allocation.Allocation{
		ID:            uuid.NewString(),
		TenantID:      tenantID,
		ProjectID:     req.ProjectID,
		EmployeeID:    req.EmployeeID,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		PlannedHours:  req.PlannedHours,
		Billable:      billable,
		Justification: req.Justification,
	})
	if err != nil {
		return allocation.CreateAllocationResponse{}, fmt.Errorf("failed to create allocation: %w", err)
	}

	s.writeAudit(ctx, tenantID, created.ID, audit.ActionCreate, nil, created)

	return allocation.CreateAllocationResponse{
		Allocation: toResponse(created),
		Warning:    warning,
	}, nil
}

func (s *AllocationServiceImpl) UpdateAllocation(ctx context.Context, id string, req allocation.UpdateAllocationRequest) (allocation.CreateAllocationResponse, error) {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return allocation.CreateAllocationResponse{}, err
	}

	existing, err := s.allocationRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return allocation.CreateAllocationResponse{}, err
	}

	updated := existing
	if req.PeriodStart != nil {
		parsed, ok := validator.IsValidDate(*req.PeriodStart)
		if !ok {
			return allocation.CreateAllocationResponse{}, validator.ValidationErrors{
				{Field: "period_start", Message: "must be a valid date in YYYY-MM-DD format"},
			}
		}
		updated.PeriodStart = parsed
	}
	if req.PeriodEnd != nil {
		parsed, ok := validator.IsValidDate(*req.PeriodEnd)
		if !ok {
			return allocation.CreateAllocationResponse{}, validator.ValidationErrors{
				{Field: "period_end", Message: "must be a valid date in YYYY-MM-DD format"},
			}
		}
		updated.PeriodEnd = parsed
	}
	if updated.PeriodEnd.Before(updated.PeriodStart) {
		return allocation.CreateAllocationResponse{}, validator.ValidationErrors{
			{Field: "period_end", Message: "must not be before period_start"},
		}
	}
	if req.PlannedHours != nil {
		if !validator.IsValidPlannedHours(*req.PlannedHours) {
			return allocation.CreateAllocationResponse{}, validator.ValidationErrors{
				{Field: "planned_hours", Message: "must not be negative"},
			}
		}
		updated.PlannedHours = *req.PlannedHours
	}
	if req.Billable != nil {
		updated.Billable = *req.Billable
	}
	if req.Justification != nil {
		updated.Justification = req.Justification
	}

	// Re-check against the replacement values, leaving the allocation's own
	// current row out of the overlap sum.
	warning, err := s.CheckCapacity(ctx, tenantID, updated.EmployeeID, updated.PeriodStart, updated.PeriodEnd, updated.PlannedHours, id)
	if err != nil {
		return allocation.CreateAllocationResponse{}, err
	}

	stored, err := s.allocationRepo.Update(ctx, updated)
	if err != nil {
		return allocation.CreateAllocationResponse{}, fmt.Errorf("failed to update allocation: %w", err)
	}

	s.writeAudit(ctx, tenantID, stored.ID, audit.ActionUpdate, existing, stored)

	return allocation.CreateAllocationResponse{
		Allocation: toResponse(stored),
		Warning:    warning,
	}, nil
}

func (s *AllocationServiceImpl) GetAllocation(ctx context.Context, id string) (allocation.Allocation, error) {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return allocation.Allocation{}, err
	}
	return s.allocationRepo.GetByID(ctx, tenantID, id)
}

func (s *AllocationServiceImpl) ListAllocations(ctx context.Context, filter allocation.ListFilter) ([]allocation.Allocation, int64, error) {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return nil, 0, err
	}
	return s.allocationRepo.List(ctx, tenantID, filter)
}

func (s *AllocationServiceImpl) DeleteAllocation(ctx context.Context, id string) error {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return err
	}

	existing, err := s.allocationRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if err := s.allocationRepo.Delete(ctx, tenantID, id); err != nil {
		return fmt.Errorf("failed to delete allocation: %w", err)
	}

	s.writeAudit(ctx, tenantID, id, audit.ActionDelete, existing, nil)
	return nil
}

// CheckCapacity sums the employee's planned hours over allocations
// overlapping the period, adds the incoming hours, and compares the
// resulting utilization against the tenant's overload threshold. Capacity
// is weeks in the period times the employee's weekly capacity.
func (s *AllocationServiceImpl) CheckCapacity(ctx context.Context, tenantID, employeeID string, periodStart, periodEnd time.Time, newPlannedHours float64, excludeID string) (*allocation.CapacityWarning, error) {
	emp, err := s.employeeRepo.GetByID(ctx, tenantID, employeeID)
	if err != nil {
		return nil, err
	}

	capacityHours := float64(period.WeeksInPeriod(periodStart, periodEnd) * emp.CapacityPerWeek)
	if capacityHours <= 0 {
		return nil, nil
	}

	existingHours, err := s.allocationRepo.SumOverlappingPlannedHours(ctx, tenantID, employeeID, periodStart, periodEnd, excludeID)
	if err != nil {
		return nil, fmt.Errorf("failed to sum overlapping allocations: %w", err)
	}

	totalPlanned := existingHours + newPlannedHours
	utilizationPct := totalPlanned / capacityHours * 100

	settings, err := s.tenantRepo.GetSettings(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve tenant thresholds: %w", err)
	}
	thresholds := settings.Resolve(s.defaults)

	// The threshold comparison uses the raw percentage; rounding happens
	// only for presentation inside the warning.
	if utilizationPct > float64(thresholds.Overload) {
		return allocation.NewCapacityWarning(int(math.Round(utilizationPct)), totalPlanned, capacityHours), nil
	}
	return nil, nil
}

// writeAudit records the mutation; a failed audit write is logged but never
// fails the mutation it describes.
func (s *AllocationServiceImpl) writeAudit(ctx context.Context, tenantID, entityID string, action audit.Action, oldData, newData any) {
	err := s.auditRepo.Insert(ctx, audit.Entry{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Entity:      "allocation",
		EntityID:    entityID,
		Action:      action,
		OldData:     oldData,
		NewData:     newData,
		PerformedBy: jwt.UserFromContext(ctx),
	})
	if err != nil {
		s.logger.Warn("could not write audit entry", "entity", "allocation", "entity_id", entityID, "error", err)
	}
}

func toResponse(a allocation.Allocation) allocation.AllocationResponse {
	return allocation.AllocationResponse{
		ID:            a.ID,
		ProjectID:     a.ProjectID,
		EmployeeID:    a.EmployeeID,
		PeriodStart:   period.Format(a.PeriodStart),
		PeriodEnd:     period.Format(a.PeriodEnd),
		PlannedHours:  a.PlannedHours,
		Billable:      a.Billable,
		Justification: a.Justification,
	}
}
