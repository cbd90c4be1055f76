package response

import (
	"errors"
	"net/http"

	"github.com/manhour-hq/manhour-backend-go/internal/domain/allocation"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/employee"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/project"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/tenant"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/timesheet"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/jwt"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	// The daily ceiling is a hard business rule, reported with the exact
	// existing/new totals so the client can show them.
	var dailyErr *timesheet.DailyHoursError
	if errors.As(err, &dailyErr) {
		BadRequest(w, dailyErr.Error(), nil)
		return
	}

	switch {
	case errors.Is(err, jwt.ErrNoTenant):
		Unauthorized(w, "Tenant binding missing from token")

	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, project.ErrProjectNotFound):
		NotFound(w, "Project not found")
	case errors.Is(err, tenant.ErrTenantNotFound):
		NotFound(w, "Tenant not found")
	case errors.Is(err, allocation.ErrAllocationNotFound):
		NotFound(w, "Allocation not found")
	case errors.Is(err, timesheet.ErrTimesheetNotFound):
		NotFound(w, "Timesheet entry not found")

	case errors.Is(err, timesheet.ErrAlreadyProcessed):
		Conflict(w, "Timesheet entry already processed")

	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
