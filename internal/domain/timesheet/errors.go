package timesheet

import (
	"errors"
	"fmt"
)

var (
	ErrTimesheetNotFound = errors.New("timesheet entry not found")
	// ErrAlreadyProcessed guards the terminal lifecycle: approved or
	// rejected entries cannot be edited, deleted or re-approved.
	ErrAlreadyProcessed = errors.New("timesheet already processed")
)

// DailyHoursError is the hard violation raised when an insert or update
// would push an employee's total for one calendar date past MaxDailyHours.
type DailyHoursError struct {
	ExistingHours float64
	NewHours      float64
}

func (e *DailyHoursError) Error() string {
	return fmt.Sprintf("Daily hours exceeded. Existing: %gh, New: %gh, Max: %dh",
		e.ExistingHours, e.NewHours, MaxDailyHours)
}
