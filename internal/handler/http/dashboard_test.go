package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/dashboard"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/employee"
	"github.com/manhour-hq/manhour-backend-go/internal/handler/http/response"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubDashboardService struct {
	dashboard         *dashboard.CompanyDashboard
	utilization       []dashboard.UtilizationKPI
	projectDashboard  *dashboard.ProjectDashboard
	employeeDashboard *dashboard.EmployeeDashboard
	err               error
}

func (s *stubDashboardService) CompanyDashboard(_ context.Context, _, _ string) (*dashboard.CompanyDashboard, error) {
	return s.dashboard, s.err
}

func (s *stubDashboardService) EmployeeUtilization(_ context.Context, _, _ string) ([]dashboard.UtilizationKPI, error) {
	return s.utilization, s.err
}

func (s *stubDashboardService) ProjectBurnRates(_ context.Context) ([]dashboard.ProjectBurnRate, error) {
	return nil, s.err
}

func (s *stubDashboardService) ProjectDashboard(_ context.Context, _ string) (*dashboard.ProjectDashboard, error) {
	return s.projectDashboard, s.err
}

func (s *stubDashboardService) EmployeeDashboard(_ context.Context, _, _, _ string) (*dashboard.EmployeeDashboard, error) {
	return s.employeeDashboard, s.err
}

func (s *stubDashboardService) RefreshAggregates(_ context.Context) error {
	return s.err
}

func TestDashboardHandler_GetCompanyDashboard(t *testing.T) {
	handler := NewDashboardHandler(&stubDashboardService{
		dashboard: &dashboard.CompanyDashboard{
			Period:  dashboard.Period{Start: "2026-02-01", End: "2026-02-28"},
			Summary: dashboard.Summary{TotalEmployees: 12, AvgUtilization: 84},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/dashboard/company?period_start=2026-02-01&period_end=2026-02-28", nil)
	rec := httptest.NewRecorder()
	handler.GetCompanyDashboard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)

	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	summary := data["summary"].(map[string]interface{})
	assert.Equal(t, float64(12), summary["total_employees"])
	assert.Equal(t, float64(84), summary["avg_utilization"])
}

func TestDashboardHandler_MissingTenantIsUnauthorized(t *testing.T) {
	handler := NewDashboardHandler(&stubDashboardService{err: jwt.ErrNoTenant})

	req := httptest.NewRequest(http.MethodGet, "/dashboard/utilization", nil)
	rec := httptest.NewRecorder()
	handler.GetEmployeeUtilization(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestDashboardHandler_UnexpectedErrorIsInternal(t *testing.T) {
	handler := NewDashboardHandler(&stubDashboardService{err: errors.New("connection reset")})

	req := httptest.NewRequest(http.MethodGet, "/dashboard/projects", nil)
	rec := httptest.NewRecorder()
	handler.GetProjectBurnRates(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.False(t, body.Success)
	require.NotNil(t, body.Error)
	// Internal details never leak into the response body.
	assert.NotContains(t, body.Error.Message, "connection reset")
}

func TestDashboardHandler_GetProjectDashboard(t *testing.T) {
	handler := NewDashboardHandler(&stubDashboardService{
		projectDashboard: &dashboard.ProjectDashboard{
			HoursByEmployee: []dashboard.ProjectEmployeeHours{
				{EmployeeID: "e1", Name: "Ana Chen", ActualHours: 30},
			},
			HoursByWeek:        []dashboard.WeeklyHours{},
			AllocationVariance: []dashboard.AllocationVariance{},
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/dashboard/projects/p1", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("projectId", "p1")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	handler.GetProjectDashboard(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.True(t, body.Success)

	data, ok := body.Data.(map[string]interface{})
	require.True(t, ok)
	rows, ok := data["hours_by_employee"].([]interface{})
	require.True(t, ok)
	require.Len(t, rows, 1)
}

func TestDashboardHandler_GetEmployeeDashboard_NotFound(t *testing.T) {
	handler := NewDashboardHandler(&stubDashboardService{err: employee.ErrEmployeeNotFound})

	req := httptest.NewRequest(http.MethodGet, "/dashboard/employees/nope", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("employeeId", "nope")
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	rec := httptest.NewRecorder()
	handler.GetEmployeeDashboard(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDashboardHandler_RefreshAggregates(t *testing.T) {
	handler := NewDashboardHandler(&stubDashboardService{})

	req := httptest.NewRequest(http.MethodPost, "/dashboard/refresh", nil)
	rec := httptest.NewRecorder()
	handler.RefreshAggregates(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}
