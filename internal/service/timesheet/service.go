package timesheet

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/audit"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/employee"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/project"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/timesheet"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/database"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/jwt"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/validator"
	"github.com/manhour-hq/manhour-backend-go/internal/repository/postgresql"
)

var validModes = []string{
	string(timesheet.ModeNormal),
	string(timesheet.ModeOvertime),
	string(timesheet.ModeHoliday),
}

type TimesheetServiceImpl struct {
	timesheetRepo timesheet.TimesheetRepository
	employeeRepo  employee.EmployeeRepository
	projectRepo   project.ProjectRepository
	auditRepo     audit.AuditRepository
	logger        *slog.Logger

	// withTx brackets the daily-ceiling check and the write in one
	// transaction so the advisory lock holds across both.
	withTx func(ctx context.Context, fn func(txCtx context.Context) error) error
}

func NewTimesheetService(
	db *database.DB,
	timesheetRepo timesheet.TimesheetRepository,
	employeeRepo employee.EmployeeRepository,
	projectRepo project.ProjectRepository,
	auditRepo audit.AuditRepository,
	logger *slog.Logger,
) timesheet.TimesheetService {
	return &TimesheetServiceImpl{
		timesheetRepo: timesheetRepo,
		employeeRepo:  employeeRepo,
		projectRepo:   projectRepo,
		auditRepo:     auditRepo,
		logger:        logger,
		withTx: func(ctx context.Context, fn func(txCtx context.Context) error) error {
			return postgresql.WithTransaction(ctx, db, fn)
		},
	}
}

func validateCreate(req timesheet.CreateTimesheetRequest) (time.Time, error) {
	var validationErrors validator.ValidationErrors
	if validator.IsEmpty(req.EmployeeID) {
		validationErrors = append(validationErrors, validator.ValidationError{Field: "employee_id", Message: "employee_id is required"})
	}
	if validator.IsEmpty(req.ProjectID) {
		validationErrors = append(validationErrors, validator.ValidationError{Field: "project_id", Message: "project_id is required"})
	}
	date, ok := validator.IsValidDate(req.Date)
	if !ok {
		validationErrors = append(validationErrors, validator.ValidationError{Field: "date", Message: "must be a valid date in YYYY-MM-DD format"})
	}
	if !validator.IsValidEntryHours(req.Hours) {
		validationErrors = append(validationErrors, validator.ValidationError{Field: "hours", Message: "must be between 0.25 and 24"})
	}
	if req.Mode != "" && !validator.IsInSlice(string(req.Mode), validModes) {
		validationErrors = append(validationErrors, validator.ValidationError{Field: "mode", Message: "must be one of normal, overtime, holiday"})
	}
	if len(validationErrors) > 0 {
		return time.Time{}, validationErrors
	}
	return date, nil
}

func (s *TimesheetServiceImpl) CreateTimesheet(ctx context.Context, req timesheet.CreateTimesheetRequest) (timesheet.Timesheet, error) {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return timesheet.Timesheet{}, err
	}

	date, err := validateCreate(req)
	if err != nil {
		return timesheet.Timesheet{}, err
	}

	if _, err := s.employeeRepo.GetByID(ctx, tenantID, req.EmployeeID); err != nil {
		return timesheet.Timesheet{}, err
	}
	if _, err := s.projectRepo.GetByID(ctx, tenantID, req.ProjectID); err != nil {
		return timesheet.Timesheet{}, err
	}

	mode := req.Mode
	if mode == "" {
		mode = timesheet.ModeNormal
	}

	entry := timesheet.Timesheet{
		ID:             uuid.NewString(),
		TenantID:       tenantID,
		EmployeeID:     req.EmployeeID,
		ProjectID:      req.ProjectID,
		TaskID:         req.TaskID,
		Date:           date,
		Hours:          req.Hours,
		Mode:           mode,
		Notes:          req.Notes,
		ApprovalStatus: timesheet.StatusPending,
	}

	var created timesheet.Timesheet
	err = s.withTx(ctx, func(txCtx context.Context) error {
		// The advisory lock serializes writers for this (employee, date) so
		// the ceiling check and the insert are atomic against concurrent
		// submissions for the same day.
		if err := s.timesheetRepo.AcquireDayLock(txCtx, tenantID, req.EmployeeID, date); err != nil {
			return err
		}

		existingHours, err := s.timesheetRepo.SumSameDayHours(txCtx, tenantID, req.EmployeeID, date, "")
		if err != nil {
			return err
		}
		if existingHours+req.Hours > timesheet.MaxDailyHours {
			return &timesheet.DailyHoursError{ExistingHours: existingHours, NewHours: req.Hours}
		}

		created, err = s.timesheetRepo.Create(txCtx, entry)
		return err
	})
	if err != nil {
		return timesheet.Timesheet{}, err
	}

	s.writeAudit(ctx, tenantID, created.ID, audit.ActionCreate, nil, created)
	return created, nil
}

// BulkCreateTimesheets submits entries independently: each failure is
// reported by index and does not abort the rest of the batch.
func (s *TimesheetServiceImpl) BulkCreateTimesheets(ctx context.Context, entries []timesheet.CreateTimesheetRequest) (timesheet.BulkCreateResult, error) {
	result := timesheet.BulkCreateResult{Errors: make([]timesheet.BulkItemError, 0)}
	for i, req := range entries {
		if _, err := s.CreateTimesheet(ctx, req); err != nil {
			result.Errors = append(result.Errors, timesheet.BulkItemError{Index: i, Message: err.Error()})
			continue
		}
		result.Created++
	}
	return result, nil
}

func (s *TimesheetServiceImpl) GetTimesheet(ctx context.Context, id string) (timesheet.Timesheet, error) {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return timesheet.Timesheet{}, err
	}
	return s.timesheetRepo.GetByID(ctx, tenantID, id)
}

func (s *TimesheetServiceImpl) ListTimesheets(ctx context.Context, filter timesheet.ListFilter) ([]timesheet.Timesheet, int64, error) {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return nil, 0, err
	}
	return s.timesheetRepo.List(ctx, tenantID, filter)
}

func (s *TimesheetServiceImpl) UpdateTimesheet(ctx context.Context, id string, req timesheet.UpdateTimesheetRequest) (timesheet.Timesheet, error) {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return timesheet.Timesheet{}, err
	}

	existing, err := s.timesheetRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return timesheet.Timesheet{}, err
	}
	if existing.ApprovalStatus != timesheet.StatusPending {
		return timesheet.Timesheet{}, timesheet.ErrAlreadyProcessed
	}

	updated := existing
	if req.Date != nil {
		parsed, ok := validator.IsValidDate(*req.Date)
		if !ok {
			return timesheet.Timesheet{}, validator.ValidationErrors{
				{Field: "date", Message: "must be a valid date in YYYY-MM-DD format"},
			}
		}
		updated.Date = parsed
	}
	if req.Hours != nil {
		if !validator.IsValidEntryHours(*req.Hours) {
			return timesheet.Timesheet{}, validator.ValidationErrors{
				{Field: "hours", Message: "must be between 0.25 and 24"},
			}
		}
		updated.Hours = *req.Hours
	}
	if req.Mode != nil {
		if !validator.IsInSlice(string(*req.Mode), validModes) {
			return timesheet.Timesheet{}, validator.ValidationErrors{
				{Field: "mode", Message: "must be one of normal, overtime, holiday"},
			}
		}
		updated.Mode = *req.Mode
	}
	if req.Notes != nil {
		updated.Notes = req.Notes
	}

	var stored timesheet.Timesheet
	err = s.withTx(ctx, func(txCtx context.Context) error {
		if err := s.timesheetRepo.AcquireDayLock(txCtx, tenantID, updated.EmployeeID, updated.Date); err != nil {
			return err
		}

		// The entry's own current hours are excluded so a same-day edit is
		// checked against its replacement value, not double-counted.
		existingHours, err := s.timesheetRepo.SumSameDayHours(txCtx, tenantID, updated.EmployeeID, updated.Date, id)
		if err != nil {
			return err
		}
		if existingHours+updated.Hours > timesheet.MaxDailyHours {
			return &timesheet.DailyHoursError{ExistingHours: existingHours, NewHours: updated.Hours}
		}

		stored, err = s.timesheetRepo.Update(txCtx, updated)
		return err
	})
	if err != nil {
		return timesheet.Timesheet{}, err
	}

	s.writeAudit(ctx, tenantID, stored.ID, audit.ActionUpdate, existing, stored)
	return stored, nil
}

func (s *TimesheetServiceImpl) ApproveTimesheet(ctx context.Context, id string, req timesheet.ApproveTimesheetRequest) (timesheet.Timesheet, error) {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return timesheet.Timesheet{}, err
	}

	if req.Status != timesheet.StatusApproved && req.Status != timesheet.StatusRejected {
		return timesheet.Timesheet{}, validator.ValidationErrors{
			{Field: "status", Message: "must be approved or rejected"},
		}
	}
	if req.Status == timesheet.StatusRejected && (req.RejectionReason == nil || validator.IsEmpty(*req.RejectionReason)) {
		return timesheet.Timesheet{}, validator.ValidationErrors{
			{Field: "rejection_reason", Message: "rejection_reason is required when rejecting"},
		}
	}

	existing, err := s.timesheetRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return timesheet.Timesheet{}, err
	}
	if existing.ApprovalStatus != timesheet.StatusPending {
		return timesheet.Timesheet{}, timesheet.ErrAlreadyProcessed
	}

	updated := existing
	updated.ApprovalStatus = req.Status
	approver := jwt.UserFromContext(ctx)
	now := time.Now()
	updated.ApprovedBy = &approver
	updated.ApprovedAt = &now
	if req.Status == timesheet.StatusRejected {
		updated.RejectionReason = req.RejectionReason
	}

	stored, err := s.timesheetRepo.UpdateApproval(ctx, updated)
	if err != nil {
		return timesheet.Timesheet{}, fmt.Errorf("failed to update approval: %w", err)
	}

	action := audit.ActionApprove
	if req.Status == timesheet.StatusRejected {
		action = audit.ActionReject
	}
	s.writeAudit(ctx, tenantID, stored.ID, action, existing, stored)
	return stored, nil
}

func (s *TimesheetServiceImpl) DeleteTimesheet(ctx context.Context, id string) error {
	tenantID, err := jwt.TenantFromContext(ctx)
	if err != nil {
		return err
	}

	existing, err := s.timesheetRepo.GetByID(ctx, tenantID, id)
	if err != nil {
		return err
	}
	if existing.ApprovalStatus != timesheet.StatusPending {
		return timesheet.ErrAlreadyProcessed
	}

	if err := s.timesheetRepo.Delete(ctx, tenantID, id); err != nil {
		return fmt.Errorf("failed to delete timesheet: %w", err)
	}

	s.writeAudit(ctx, tenantID, id, audit.ActionDelete, existing, nil)
	return nil
}

func (s *TimesheetServiceImpl) writeAudit(ctx context.Context, tenantID, entityID string, action audit.Action, oldData, newData any) {
	err := s.auditRepo.Insert(ctx, audit.Entry{
		ID:          uuid.NewString(),
		TenantID:    tenantID,
		Entity:      "timesheet",
		EntityID:    entityID,
		Action:      action,
		OldData:     oldData,
		NewData:     newData,
		PerformedBy: jwt.UserFromContext(ctx),
	})
	if err != nil {
		s.logger.Warn("could not write audit entry", "entity", "timesheet", "entity_id", entityID, "error", err)
	}
}
