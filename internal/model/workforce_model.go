package model

import (
	"time"

	"github.com/google/uuid"
)

type Employee struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code           string    `gorm:"type:varchar(64);not null;uniqueIndex"`
	Name           string    `gorm:"type:varchar(255);not null"`
	Position       string    `gorm:"type:varchar(128)"`
	HourlyRate     float64   `gorm:"type:numeric(10,2)"`
	AccountId      string    `gorm:"type:varchar(64);not null;index"`
	LocationId     string    `gorm:"type:varchar(64);index"`
	SupervisorCode string    `gorm:"type:varchar(64);index"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (Employee) TableName() string {
	return "employees"
}

type Shift struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EmployeeCode   string    `gorm:"type:varchar(64);not null;index"`
	EmployeeName   string    `gorm:"type:varchar(255)"`
	Position       string    `gorm:"type:varchar(128);index"`
	Department     string    `gorm:"type:varchar(128)"`
	AccountId      string    `gorm:"type:varchar(64);not null;index"`
	LocationId     string    `gorm:"type:varchar(64);index"`
	Date           time.Time `gorm:"type:date;not null;index"`
	StartTime      string    `gorm:"type:varchar(16)"`
	EndTime        string    `gorm:"type:varchar(16)"`
	ScheduledHours float64   `gorm:"type:numeric(6,2)"`
	AttendedHours  float64   `gorm:"type:numeric(6,2)"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (Shift) TableName() string {
	return "shifts"
}

type Sale struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	AccountId    string    `gorm:"type:varchar(64);not null;index"`
	LocationId   string    `gorm:"type:varchar(64);index"`
	EmployeeCode string    `gorm:"type:varchar(64);index"`
	Date         time.Time `gorm:"type:date;not null;index"`
	Amount       float64   `gorm:"type:numeric(12,2);not null"`
	Category     string    `gorm:"type:varchar(128)"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
}

func (Sale) TableName() string {
	return "sales"
}
