package timesheet

import "context"

type TimesheetService interface {
	CreateTimesheet(ctx context.Context, req CreateTimesheetRequest) (Timesheet, error)
	BulkCreateTimesheets(ctx context.Context, entries []CreateTimesheetRequest) (BulkCreateResult, error)
	GetTimesheet(ctx context.Context, id string) (Timesheet, error)
	ListTimesheets(ctx context.Context, filter ListFilter) ([]Timesheet, int64, error)
	UpdateTimesheet(ctx context.Context, id string, req UpdateTimesheetRequest) (Timesheet, error)
	ApproveTimesheet(ctx context.Context, id string, req ApproveTimesheetRequest) (Timesheet, error)
	DeleteTimesheet(ctx context.Context, id string) error
}
