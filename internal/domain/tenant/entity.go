package tenant

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusSuspended Status = "suspended"
	StatusTrial     Status = "trial"
)

type Tenant struct {
	ID        string
	Name      string
	Slug      string
	Settings  Settings
	Status    Status
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Settings is the tenants.settings jsonb payload. Threshold overrides are
// optional; absent values fall back to the configured defaults.
type Settings struct {
	OverloadThreshold  *int `json:"overload_threshold,omitempty"`
	UnderutilThreshold *int `json:"underutil_threshold,omitempty"`
}

// Thresholds are the effective utilization classification bounds for a
// tenant: overloaded strictly above Overload, underutilized strictly below
// Underutil.
type Thresholds struct {
	Overload  int
	Underutil int
}

// Resolve applies tenant overrides on top of the given defaults.
func (s Settings) Resolve(defaults Thresholds) Thresholds {
	t := defaults
	if s.OverloadThreshold != nil {
		t.Overload = *s.OverloadThreshold
	}
	if s.UnderutilThreshold != nil {
		t.Underutil = *s.UnderutilThreshold
	}
	return t
}
