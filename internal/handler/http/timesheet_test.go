package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/manhour-hq/manhour-backend-go/internal/domain/timesheet"
	"github.com/manhour-hq/manhour-backend-go/internal/handler/http/response"
	"github.com/manhour-hq/manhour-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTimesheetService struct {
	created timesheet.Timesheet
	err     error
}

func (s *stubTimesheetService) CreateTimesheet(_ context.Context, _ timesheet.CreateTimesheetRequest) (timesheet.Timesheet, error) {
	return s.created, s.err
}

func (s *stubTimesheetService) BulkCreateTimesheets(_ context.Context, _ []timesheet.CreateTimesheetRequest) (timesheet.BulkCreateResult, error) {
	return timesheet.BulkCreateResult{}, s.err
}

func (s *stubTimesheetService) GetTimesheet(_ context.Context, _ string) (timesheet.Timesheet, error) {
	return s.created, s.err
}

func (s *stubTimesheetService) ListTimesheets(_ context.Context, _ timesheet.ListFilter) ([]timesheet.Timesheet, int64, error) {
	return nil, 0, s.err
}

func (s *stubTimesheetService) UpdateTimesheet(_ context.Context, _ string, _ timesheet.UpdateTimesheetRequest) (timesheet.Timesheet, error) {
	return s.created, s.err
}

func (s *stubTimesheetService) ApproveTimesheet(_ context.Context, _ string, _ timesheet.ApproveTimesheetRequest) (timesheet.Timesheet, error) {
	return s.created, s.err
}

func (s *stubTimesheetService) DeleteTimesheet(_ context.Context, _ string) error {
	return s.err
}

func postJSON(t *testing.T, handler http.HandlerFunc, target, body string, urlParams map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(body))

	rctx := chi.NewRouteContext()
	for key, value := range urlParams {
		rctx.URLParams.Add(key, value)
	}
	req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

func TestTimesheetHandler_DailyCeilingIsBadRequest(t *testing.T) {
	svc := &stubTimesheetService{err: &timesheet.DailyHoursError{ExistingHours: 20, NewHours: 5}}
	handler := NewTimesheetHandler(svc)

	rec := postJSON(t, handler.CreateTimesheet, "/timesheets",
		`{"employee_id":"e1","project_id":"p1","date":"2026-02-02","hours":5}`, nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Equal(t, "Daily hours exceeded. Existing: 20h, New: 5h, Max: 24h", body.Error.Message)
}

func TestTimesheetHandler_ValidationIsUnprocessable(t *testing.T) {
	svc := &stubTimesheetService{err: validator.ValidationErrors{
		{Field: "hours", Message: "must be between 0.25 and 24"},
	}}
	handler := NewTimesheetHandler(svc)

	rec := postJSON(t, handler.CreateTimesheet, "/timesheets",
		`{"employee_id":"e1","project_id":"p1","date":"2026-02-02","hours":0.1}`, nil)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var body response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.NotNil(t, body.Error)
	assert.Contains(t, body.Error.Details, "hours")
}

func TestTimesheetHandler_AlreadyProcessedIsConflict(t *testing.T) {
	svc := &stubTimesheetService{err: timesheet.ErrAlreadyProcessed}
	handler := NewTimesheetHandler(svc)

	rec := postJSON(t, handler.ApproveTimesheet, "/timesheets/t1/approval",
		`{"status":"approved"}`, map[string]string{"id": "t1"})

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTimesheetHandler_MalformedBodyIsBadRequest(t *testing.T) {
	handler := NewTimesheetHandler(&stubTimesheetService{})

	rec := postJSON(t, handler.CreateTimesheet, "/timesheets", `{not json`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTimesheetHandler_BulkRequiresEntries(t *testing.T) {
	handler := NewTimesheetHandler(&stubTimesheetService{})

	rec := postJSON(t, handler.BulkCreateTimesheets, "/timesheets/bulk", `{"entries":[]}`, nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
