package entity

import (
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	Id         uuid.UUID
	Code       string // external employee id, e.g. "emp001"
	Name       string
	Position   string
	HourlyRate float64
	AccountID  string
	LocationID string
	// Code of the supervisor this employee reports to, empty at top level.
	SupervisorCode string
	CreatedAt      time.Time
	UpdatedAt      *time.Time
}

type Shift struct {
	Id             uuid.UUID
	EmployeeCode   string
	EmployeeName   string
	Position       string
	Department     string
	AccountID      string
	LocationID     string
	Date           time.Time
	StartTime      string
	EndTime        string
	ScheduledHours float64
	AttendedHours  float64
	CreatedAt      time.Time
}

type Sale struct {
	Id           uuid.UUID
	AccountID    string
	LocationID   string
	EmployeeCode string // empty for store-level totals
	Date         time.Time
	Amount       float64
	Category     string
	CreatedAt    time.Time
}

// LaborCost is an aggregate row (date bucket, summed cost).
type LaborCost struct {
	Date time.Time
	Cost float64
}
