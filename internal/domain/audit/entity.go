package audit

import "time"

type Action string

const (
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Entry is an audit record emitted as a side effect of allocation and
// timesheet mutations. OldData/NewData are stored as jsonb snapshots.
type Entry struct {
	ID          string
	TenantID    string
	Entity      string
	EntityID    string
	Action      Action
	OldData     any
	NewData     any
	PerformedBy string
	CreatedAt   time.Time
}
