package employee

import (
	"time"

	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive   Status = "active"
	StatusInactive Status = "inactive"
	StatusOnLeave  Status = "on_leave"
)

// Employee is the resource master record. Cost and capacity drive the
// utilization and burn-rate aggregations; only active employees participate.
type Employee struct {
	ID           string
	TenantID     string
	EmployeeCode *string
	Name         string
	Email        string
	Department   *string
	Position     *string

	CostPerHour     decimal.Decimal
	CapacityPerWeek int // hours per 5-day week
	Status          Status

	JoinedAt  *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DailyCapacity derives expected hours per working day from the weekly
// capacity, which is expressed against a 5-day week.
func (e Employee) DailyCapacity() float64 {
	return float64(e.CapacityPerWeek) / 5
}
