package policy

import (
	"fmt"
	"strings"
)

// Role is the closed set of access levels. The ordering is total: each higher
// role sees a superset of what every lower role sees in the same account.
type Role int

const (
	RoleEmployee Role = iota + 1
	RoleSupervisor
	RoleManager
	RoleAdmin
)

func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "employee":
		return RoleEmployee, nil
	case "supervisor":
		return RoleSupervisor, nil
	case "manager":
		return RoleManager, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return 0, fmt.Errorf("unknown role: %q", s)
	}
}

func (r Role) String() string {
	switch r {
	case RoleEmployee:
		return "employee"
	case RoleSupervisor:
		return "supervisor"
	case RoleManager:
		return "manager"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

// Level exposes the ordering for comparisons (higher = wider scope).
func (r Role) Level() int { return int(r) }

// Requester is the identity attached to a request envelope.
type Requester struct {
	UserID          string
	Role            Role
	AccountID       string
	LocationIDs     []string
	TeamEmployeeIDs []string
}

// Aggregate record categories (store-level totals, labor cost rollups,
// public notices) carry no individual attribution and are visible to every
// role within the account.
var aggregateDataTypes = map[string]bool{
	"sales_breakdown": true,
	"labor_cost":      true,
	"public":          true,
}

// Scope is the per-request visibility predicate derived from a Requester.
// It is a plain value: computing it performs no I/O and never fails.
type Scope struct {
	AllAccounts  bool
	AccountID    string
	AllLocations bool
	LocationIDs  map[string]bool
	AllEmployees bool
	EmployeeIDs  map[string]bool
}

// ScopeFor derives the visibility scope for a requester. Pure and total.
func ScopeFor(req Requester) Scope {
	switch req.Role {
	case RoleAdmin:
		return Scope{
			AllAccounts:  true,
			AllLocations: true,
			AllEmployees: true,
		}
	case RoleManager:
		return Scope{
			AccountID:    req.AccountID,
			LocationIDs:  toSet(req.LocationIDs),
			AllEmployees: true,
		}
	case RoleSupervisor:
		ids := toSet(req.TeamEmployeeIDs)
		ids[strings.ToLower(req.UserID)] = true
		return Scope{
			AccountID:    req.AccountID,
			AllLocations: true,
			EmployeeIDs:  ids,
		}
	default:
		// Employees see only their own records plus aggregates.
		return Scope{
			AccountID:    req.AccountID,
			AllLocations: true,
			EmployeeIDs:  map[string]bool{strings.ToLower(req.UserID): true},
		}
	}
}

// AllowsRecord decides whether a record with the given coordinates may enter
// the grounding context. Empty locationID or employeeID means the record is
// not attributed at that level.
func (s Scope) AllowsRecord(accountID, locationID, employeeID, dataType string) bool {
	if s.AllAccounts {
		return true
	}
	if accountID != "" && !strings.EqualFold(accountID, s.AccountID) {
		return false
	}
	if aggregateDataTypes[strings.ToLower(dataType)] {
		return true
	}
	if !s.AllLocations {
		if locationID != "" && !s.LocationIDs[strings.ToLower(locationID)] {
			return false
		}
	}
	if s.AllEmployees {
		return true
	}
	return employeeID != "" && s.EmployeeIDs[strings.ToLower(employeeID)]
}

// AllowsEmployee reports whether records attributed to an employee id are in
// scope. Used by the structured gateway to bound SQL parameters.
func (s Scope) AllowsEmployee(id string) bool {
	if s.AllEmployees || s.AllAccounts {
		return true
	}
	return s.EmployeeIDs[strings.ToLower(id)]
}

// AllowsLocation reports whether a location id is in scope.
func (s Scope) AllowsLocation(id string) bool {
	if s.AllLocations || s.AllAccounts {
		return true
	}
	return s.LocationIDs[strings.ToLower(id)]
}

// EmployeeList returns the bounded employee id set, nil when unbounded.
func (s Scope) EmployeeList() []string {
	if s.AllEmployees || s.AllAccounts {
		return nil
	}
	out := make([]string, 0, len(s.EmployeeIDs))
	for id := range s.EmployeeIDs {
		out = append(out, id)
	}
	return out
}

// LocationList returns the bounded location id set, nil when unbounded.
func (s Scope) LocationList() []string {
	if s.AllLocations || s.AllAccounts {
		return nil
	}
	out := make([]string, 0, len(s.LocationIDs))
	for id := range s.LocationIDs {
		out = append(out, id)
	}
	return out
}

func toSet(ids []string) map[string]bool {
	set := make(map[string]bool, len(ids))
	for _, id := range ids {
		if id == "" {
			continue
		}
		set[strings.ToLower(id)] = true
	}
	return set
}
