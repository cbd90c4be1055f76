package timesheet

import "time"

type Mode string

const (
	ModeNormal   Mode = "normal"
	ModeOvertime Mode = "overtime"
	ModeHoliday  Mode = "holiday"
)

type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

const (
	// MaxDailyHours is the hard per-employee, per-day ceiling. The total for
	// a day may equal it but never exceed it.
	MaxDailyHours = 24
	// MinEntryHours is the smallest loggable increment.
	MinEntryHours = 0.25
)

// Timesheet is a single logged entry. Lifecycle: created pending, then one
// terminal transition to approved or rejected; non-pending entries cannot
// be edited or deleted. Only approved entries count toward aggregation.
type Timesheet struct {
	ID         string
	TenantID   string
	EmployeeID string
	ProjectID  string
	TaskID     *string

	Date  time.Time
	Hours float64
	Mode  Mode
	Notes *string

	ApprovalStatus  ApprovalStatus
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string

	CreatedAt time.Time
	UpdatedAt time.Time
}
