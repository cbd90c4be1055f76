package project

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusPlanning  Status = "planning"
	StatusActive    Status = "active"
	StatusOnHold    Status = "on_hold"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// BurnRateStatuses are the project states considered by the burn-rate
// aggregation. Completed, cancelled and on-hold projects are excluded.
var BurnRateStatuses = []Status{StatusActive, StatusPlanning}

type Priority string

const (
	PriorityLow      Priority = "low"
	PriorityMedium   Priority = "medium"
	PriorityHigh     Priority = "high"
	PriorityCritical Priority = "critical"
)

type Project struct {
	ID          string
	TenantID    string
	Code        *string
	Name        string
	Client      *string
	Description *string

	PlannedHours float64
	PlannedCost  decimal.Decimal

	ProjectManagerID *string
	StartDate        *time.Time
	EndDate          *time.Time
	Priority         Priority
	Status           Status

	CreatedAt time.Time
	UpdatedAt time.Time
}
