package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/dashboard"
	"github.com/manhour-hq/manhour-backend-go/internal/handler/http/response"
)

type DashboardHandler interface {
	// GetCompanyDashboard returns the combined company summary
	GetCompanyDashboard(w http.ResponseWriter, r *http.Request)
	// GetEmployeeUtilization returns per-employee utilization KPIs
	GetEmployeeUtilization(w http.ResponseWriter, r *http.Request)
	// GetProjectBurnRates returns per-project burn and cost variance
	GetProjectBurnRates(w http.ResponseWriter, r *http.Request)
	// GetProjectDashboard returns the drill-down view for one project
	GetProjectDashboard(w http.ResponseWriter, r *http.Request)
	// GetEmployeeDashboard returns the drill-down view for one employee
	GetEmployeeDashboard(w http.ResponseWriter, r *http.Request)
	// RefreshAggregates triggers a materialized view refresh
	RefreshAggregates(w http.ResponseWriter, r *http.Request)
}

type dashboardHandlerImpl struct {
	dashboardService dashboard.DashboardService
}

func NewDashboardHandler(dashboardService dashboard.DashboardService) DashboardHandler {
	return &dashboardHandlerImpl{dashboardService: dashboardService}
}

// GetCompanyDashboard handles GET /dashboard/company
func (h *dashboardHandlerImpl) GetCompanyDashboard(w http.ResponseWriter, r *http.Request) {
	periodStart := r.URL.Query().Get("period_start") // format: YYYY-MM-DD, default: first of current month
	periodEnd := r.URL.Query().Get("period_end")     // format: YYYY-MM-DD, default: last of current month

	result, err := h.dashboardService.CompanyDashboard(r.Context(), periodStart, periodEnd)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetEmployeeUtilization handles GET /dashboard/utilization
func (h *dashboardHandlerImpl) GetEmployeeUtilization(w http.ResponseWriter, r *http.Request) {
	periodStart := r.URL.Query().Get("period_start")
	periodEnd := r.URL.Query().Get("period_end")

	result, err := h.dashboardService.EmployeeUtilization(r.Context(), periodStart, periodEnd)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetProjectBurnRates handles GET /dashboard/projects
func (h *dashboardHandlerImpl) GetProjectBurnRates(w http.ResponseWriter, r *http.Request) {
	result, err := h.dashboardService.ProjectBurnRates(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetProjectDashboard handles GET /dashboard/projects/{projectId}
func (h *dashboardHandlerImpl) GetProjectDashboard(w http.ResponseWriter, r *http.Request) {
	projectID := chi.URLParam(r, "projectId")
	if projectID == "" {
		response.BadRequest(w, "Project ID is required", nil)
		return
	}

	result, err := h.dashboardService.ProjectDashboard(r.Context(), projectID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// GetEmployeeDashboard handles GET /dashboard/employees/{employeeId}
func (h *dashboardHandlerImpl) GetEmployeeDashboard(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "employeeId")
	if employeeID == "" {
		response.BadRequest(w, "Employee ID is required", nil)
		return
	}
	periodStart := r.URL.Query().Get("period_start")
	periodEnd := r.URL.Query().Get("period_end")

	result, err := h.dashboardService.EmployeeDashboard(r.Context(), employeeID, periodStart, periodEnd)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

// RefreshAggregates handles POST /dashboard/refresh
func (h *dashboardHandlerImpl) RefreshAggregates(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboardService.RefreshAggregates(r.Context()); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Aggregate refresh triggered", nil)
}
