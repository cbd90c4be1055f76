package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/allocation"
	"github.com/manhour-hq/manhour-backend-go/internal/handler/http/response"
)

type AllocationHandler interface {
	CreateAllocation(w http.ResponseWriter, r *http.Request)
	GetAllocation(w http.ResponseWriter, r *http.Request)
	ListAllocations(w http.ResponseWriter, r *http.Request)
	UpdateAllocation(w http.ResponseWriter, r *http.Request)
	DeleteAllocation(w http.ResponseWriter, r *http.Request)
}

type allocationHandlerImpl struct {
	allocationService allocation.AllocationService
}

func NewAllocationHandler(allocationService allocation.AllocationService) AllocationHandler {
	return &allocationHandlerImpl{allocationService: allocationService}
}

// CreateAllocation handles POST /allocations
func (h *allocationHandlerImpl) CreateAllocation(w http.ResponseWriter, r *http.Request) {
	var req allocation.CreateAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.allocationService.CreateAllocation(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	// A capacity warning rides along with the created allocation; it never
	// turns the response into an error.
	response.Created(w, "Allocation created", result)
}

// GetAllocation handles GET /allocations/{id}
func (h *allocationHandlerImpl) GetAllocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Allocation ID is required", nil)
		return
	}

	result, err := h.allocationService.GetAllocation(r.Context(), id)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// ListAllocations handles GET /allocations
func (h *allocationHandlerImpl) ListAllocations(w http.ResponseWriter, r *http.Request) {
	page, limit := parsePagination(r)
	filter := allocation.ListFilter{
		ProjectID:   r.URL.Query().Get("project_id"),
		EmployeeID:  r.URL.Query().Get("employee_id"),
		PeriodStart: r.URL.Query().Get("period_start"),
		PeriodEnd:   r.URL.Query().Get("period_end"),
		Page:        page,
		Limit:       limit,
	}

	results, total, err := h.allocationService.ListAllocations(r.Context(), filter)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMeta(w, results, response.NewMeta(page, limit, total))
}

// UpdateAllocation handles PUT /allocations/{id}
func (h *allocationHandlerImpl) UpdateAllocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Allocation ID is required", nil)
		return
	}

	var req allocation.UpdateAllocationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	result, err := h.allocationService.UpdateAllocation(r.Context(), id, req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Allocation updated", result)
}

// DeleteAllocation handles DELETE /allocations/{id}
func (h *allocationHandlerImpl) DeleteAllocation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		response.BadRequest(w, "Allocation ID is required", nil)
		return
	}

	if err := h.allocationService.DeleteAllocation(r.Context(), id); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Allocation deleted", nil)
}
