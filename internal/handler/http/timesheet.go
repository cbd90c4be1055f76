package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/timesheet"
	"github.com/manhour-hq/manhour-backend-go/internal/handler/http/response"
)

type TimesheetHandler interface {
	CreateTimesheet(w http.ResponseWriter, r *http.Request)
	BulkCreateTimesheets(w http.ResponseWriter, r *http.Request)
	GetTimesheet(w http.ResponseWriter, r *http.Request)
	ListTimesheets(w http.ResponseWriter, r *http.Request)
	UpdateTimesheet(w http.ResponseWriter, r *http.Request)
	ApproveTimesheet(w http.ResponseWriter, r *http.Request)
	DeleteTimesheet(w http.ResponseWriter, r *http.Request)
}

type timesheetHandlerImpl struct {
	timesheetService timesheet.TimesheetService
}

func NewTimesheetHandler(timesheetService timesheet.TimesheetService) TimesheetHandler {
	return &timesheetHandlerImpl{timesheetService: timesheetService}
}

// CreateTimesheet handles POST /timesheets
func (h *timesheetHandlerImpl) CreateTimesheet(w http.ResponseWriter, r *http.Request) {
	var req timesheet.CreateTimesheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.timesheetService.CreateTimesheet(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Timesheet entry created", result)
}

// BulkCreateTimesheets handles POST /timesheets/bulk
func (h *timesheetHandlerImpl) BulkCreateTimesheets(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Entries []timesheet.CreateTimesheetRequest `json:"entries"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}
	if len(req.Entries) == 0 {
		response.BadRequest(w, "At least one entry is required", nil)
		return
	}

	result, err := h.timesheetService.BulkCreateTimesheets(r.Context(), req.Entries)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// Per-entry failures are part of the result, not an HTTP error.
	response.Success(w, result)
}

// GetTimesheet handles GET /timesheets/{id}
func (h *timesheetHandlerImpl) GetTimesheet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Timesheet ID is required", nil)
		return
	}

	result, err := h.timesheetService.GetTimesheet(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListTimesheets handles GET /timesheets
func (h *timesheetHandlerImpl) ListTimesheets(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	filter := timesheet.ListFilter{
		EmployeeID:     r.URL.Query().Get("employee_id"),
		ProjectID:      r.URL.Query().Get("project_id"),
		DateFrom:       r.URL.Query().Get("date_from"),
		DateTo:         r.URL.Query().Get("date_to"),
		ApprovalStatus: timesheet.ApprovalStatus(r.URL.Query().Get("approval_status")),
		Mode:           timesheet.Mode(r.URL.Query().Get("mode")),
		Page:           page,
		Limit:          limit,
	}

	results, total, err := h.timesheetService.ListTimesheets(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, response.NewMeta(page, limit, total))
}

// UpdateTimesheet handles PUT /timesheets/{id}
func (h *timesheetHandlerImpl) UpdateTimesheet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Timesheet ID is required", nil)
		return
	}

	var req timesheet.UpdateTimesheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.timesheetService.UpdateTimesheet(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet entry updated", result)
}

// ApproveTimesheet handles POST /timesheets/{id}/approval
func (h *timesheetHandlerImpl) ApproveTimesheet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Timesheet ID is required", nil)
		return
	}

	var req timesheet.ApproveTimesheetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.timesheetService.ApproveTimesheet(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Approval decision recorded", result)
}

// DeleteTimesheet handles DELETE /timesheets/{id}
func (h *timesheetHandlerImpl) DeleteTimesheet(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Timesheet ID is required", nil)
		return
	}

	if err := h.timesheetService.DeleteTimesheet(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet entry deleted", nil)
}
