package specification

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/qainatsaeed/BlackBox-LLM/internal/policy"
)

// ByAccount pins rows to one account. Untagged rows (empty account_id) pass,
// the orchestrator's post-filter decides their fate.
type ByAccount struct {
	AccountID string
}

func (s ByAccount) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("account_id = ? OR account_id = ''", s.AccountID)
}

// EmployeeIn bounds rows to a set of employee codes. Column defaults to
// employee_code; the employees table itself stores the code as "code".
type EmployeeIn struct {
	Codes  []string
	Column string
}

func (s EmployeeIn) Apply(db *gorm.DB) *gorm.DB {
	column := s.Column
	if column == "" {
		column = "employee_code"
	}
	return db.Where(fmt.Sprintf("LOWER(%s) IN ?", column), s.Codes)
}

// LocationIn bounds rows to a set of location ids. Rows without a location
// (account-wide records) pass.
type LocationIn struct {
	IDs []string
}

func (s LocationIn) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(location_id) IN ? OR location_id = ''", s.IDs)
}

// EmployeeInOrUnattributed bounds rows to a set of employee codes while
// letting unattributed rows (store-level aggregates, empty code) through.
type EmployeeInOrUnattributed struct {
	Codes []string
}

func (s EmployeeInOrUnattributed) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("LOWER(employee_code) IN ? OR employee_code = ''", s.Codes)
}

// WithinScope translates a policy scope into SQL conditions. This is the
// retrieval-level enforcement; the orchestrator re-checks every row anyway.
// EmployeeColumn overrides the employee code column for tables that name it
// differently (the employees table uses "code").
type WithinScope struct {
	Scope          policy.Scope
	EmployeeColumn string
}

func (s WithinScope) Apply(db *gorm.DB) *gorm.DB {
	if s.Scope.AllAccounts {
		return db
	}
	db = ByAccount{AccountID: s.Scope.AccountID}.Apply(db)
	if employees := s.Scope.EmployeeList(); employees != nil {
		db = EmployeeIn{Codes: employees, Column: s.EmployeeColumn}.Apply(db)
	}
	if locations := s.Scope.LocationList(); locations != nil {
		db = LocationIn{IDs: locations}.Apply(db)
	}
	return db
}
