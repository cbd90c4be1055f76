package allocation

import "fmt"

type CreateAllocationRequest struct {
	ProjectID     string  `json:"project_id"`
	EmployeeID    string  `json:"employee_id"`
	PeriodStart   string  `json:"period_start"` // YYYY-MM-DD
	PeriodEnd     string  `json:"period_end"`   // YYYY-MM-DD
	PlannedHours  float64 `json:"planned_hours"`
	Billable      *bool   `json:"billable"`
	Justification *string `json:"justification"`
}

type UpdateAllocationRequest struct {
	PeriodStart   *string  `json:"period_start"`
	PeriodEnd     *string  `json:"period_end"`
	PlannedHours  *float64 `json:"planned_hours"`
	Billable      *bool    `json:"billable"`
	Justification *string  `json:"justification"`
}

type ListFilter struct {
	ProjectID   string
	EmployeeID  string
	PeriodStart string
	PeriodEnd   string
	Page        int
	Limit       int
}

// CapacityWarning is the advisory overallocation signal. It never blocks
// the write; callers attach it to the success response.
type CapacityWarning struct {
	UtilizationPct int     `json:"utilization_pct"`
	PlannedHours   float64 `json:"planned_hours"`
	CapacityHours  float64 `json:"capacity_hours"`
	Message        string  `json:"message"`
}

func NewCapacityWarning(pct int, planned, capacity float64) *CapacityWarning {
	return &CapacityWarning{
		UtilizationPct: pct,
		PlannedHours:   planned,
		CapacityHours:  capacity,
		Message: fmt.Sprintf("Warning: Employee will be at %d%% utilization (%gh planned vs %gh capacity)",
			pct, planned, capacity),
	}
}

// CreateAllocationResponse pairs the stored allocation with the optional
// capacity warning raised during the check.
type CreateAllocationResponse struct {
	Allocation AllocationResponse `json:"allocation"`
	Warning    *CapacityWarning   `json:"warning,omitempty"`
}

type AllocationResponse struct {
	ID            string  `json:"id"`
	ProjectID     string  `json:"project_id"`
	EmployeeID    string  `json:"employee_id"`
	PeriodStart   string  `json:"period_start"`
	PeriodEnd     string  `json:"period_end"`
	PlannedHours  float64 `json:"planned_hours"`
	Billable      bool    `json:"billable"`
	Justification *string `json:"justification,omitempty"`
}
