package allocation

import "time"

// Allocation is a planned commitment of an employee to a project over a
// date range. Overlapping allocations for the same employee are allowed;
// overcommitment only raises an advisory warning.
type Allocation struct {
	ID            string
	TenantID      string
	ProjectID     string
	EmployeeID    string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	PlannedHours  float64
	Billable      bool
	Justification *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
