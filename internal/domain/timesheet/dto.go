package timesheet

type CreateTimesheetRequest struct {
	EmployeeID string  `json:"employee_id"`
	ProjectID  string  `json:"project_id"`
	TaskID     *string `json:"task_id"`
	Date       string  `json:"date"` // YYYY-MM-DD
	Hours      float64 `json:"hours"`
	Mode       Mode    `json:"mode"`
	Notes      *string `json:"notes"`
}

type UpdateTimesheetRequest struct {
	Date  *string  `json:"date"`
	Hours *float64 `json:"hours"`
	Mode  *Mode    `json:"mode"`
	Notes *string  `json:"notes"`
}

type ApproveTimesheetRequest struct {
	Status          ApprovalStatus `json:"status"` // approved or rejected
	RejectionReason *string        `json:"rejection_reason"`
}

type ListFilter struct {
	EmployeeID     string
	ProjectID      string
	DateFrom       string
	DateTo         string
	ApprovalStatus ApprovalStatus
	Mode           Mode
	Page           int
	Limit          int
}

// BulkCreateResult reports per-entry outcomes of a bulk submission. Entries
// fail independently; one rejection does not abort the batch.
type BulkCreateResult struct {
	Created int             `json:"created"`
	Errors  []BulkItemError `json:"errors"`
}

type BulkItemError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}
