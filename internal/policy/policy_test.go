package policy

import (
	"fmt"
	"math/rand"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		in      string
		want    Role
		wantErr bool
	}{
		{"employee", RoleEmployee, false},
		{"Supervisor", RoleSupervisor, false},
		{" manager ", RoleManager, false},
		{"ADMIN", RoleAdmin, false},
		{"superuser", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRole(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseRole(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseRole(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestEmployeeSeesOnlyOwnRecords(t *testing.T) {
	scope := ScopeFor(Requester{
		UserID:    "e1",
		Role:      RoleEmployee,
		AccountID: "acc1",
	})

	if !scope.AllowsRecord("acc1", "loc1", "e1", "shift") {
		t.Error("employee should see their own shift")
	}
	if scope.AllowsRecord("acc1", "loc1", "e2", "shift") {
		t.Error("employee must not see another employee's shift")
	}
	if scope.AllowsRecord("acc2", "loc1", "e1", "shift") {
		t.Error("employee must not see records from another account")
	}
	// Aggregate, non-personal data stays visible.
	if !scope.AllowsRecord("acc1", "loc1", "", "sales_breakdown") {
		t.Error("employee should see aggregate sales data")
	}
	if !scope.AllowsRecord("acc1", "", "", "public") {
		t.Error("employee should see public records")
	}
	if !scope.AllowsRecord("acc1", "", "", "labor_cost") {
		t.Error("employee should see labor cost rollups")
	}
}

func TestSupervisorSeesTeam(t *testing.T) {
	scope := ScopeFor(Requester{
		UserID:          "s1",
		Role:            RoleSupervisor,
		AccountID:       "acc1",
		TeamEmployeeIDs: []string{"e1", "e2"},
	})

	for _, id := range []string{"s1", "e1", "e2"} {
		if !scope.AllowsRecord("acc1", "loc1", id, "shift") {
			t.Errorf("supervisor should see records of %s", id)
		}
	}
	if scope.AllowsRecord("acc1", "loc1", "e9", "shift") {
		t.Error("supervisor must not see records outside their team")
	}
	if scope.AllowsRecord("acc2", "loc1", "e1", "shift") {
		t.Error("supervisor must not cross account boundaries")
	}
}

func TestManagerScopedToLocations(t *testing.T) {
	scope := ScopeFor(Requester{
		UserID:      "m1",
		Role:        RoleManager,
		AccountID:   "acc1",
		LocationIDs: []string{"loc1"},
	})

	if !scope.AllowsRecord("acc1", "loc1", "e42", "shift") {
		t.Error("manager should see any employee at an accessible location")
	}
	if scope.AllowsRecord("acc1", "loc2", "e42", "shift") {
		t.Error("manager must not see records at inaccessible locations")
	}
	if !scope.AllowsRecord("acc1", "loc2", "", "sales_breakdown") {
		t.Error("aggregate data is not location restricted")
	}
}

func TestAdminUnrestricted(t *testing.T) {
	scope := ScopeFor(Requester{UserID: "a1", Role: RoleAdmin})

	if !scope.AllowsRecord("acc7", "loc9", "e99", "shift") {
		t.Error("admin scope should accept everything")
	}
}

// Monotonic widening: for the same identity, every record a lower role
// accepts must be accepted by each higher role. Managers are compared modulo
// their location restriction, so generated records stay inside it.
func TestScopeWideningIsMonotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	locations := []string{"loc1", "loc2"}
	team := []string{"e1", "e2", "e3"}

	base := Requester{
		UserID:          "u1",
		AccountID:       "acc1",
		LocationIDs:     locations,
		TeamEmployeeIDs: team,
	}

	ordered := []Role{RoleEmployee, RoleSupervisor, RoleManager, RoleAdmin}
	dataTypes := []string{"shift", "sales", "attendance", "sales_breakdown", "public"}
	employees := append([]string{"u1", "e9", ""}, team...)

	for trial := 0; trial < 500; trial++ {
		record := struct {
			account, location, employee, dataType string
		}{
			account:  []string{"acc1", "acc2"}[rng.Intn(2)],
			location: locations[rng.Intn(len(locations))],
			employee: employees[rng.Intn(len(employees))],
			dataType: dataTypes[rng.Intn(len(dataTypes))],
		}

		for i := 0; i < len(ordered)-1; i++ {
			lower, higher := base, base
			lower.Role = ordered[i]
			higher.Role = ordered[i+1]

			lowAllows := ScopeFor(lower).AllowsRecord(record.account, record.location, record.employee, record.dataType)
			highAllows := ScopeFor(higher).AllowsRecord(record.account, record.location, record.employee, record.dataType)

			if lowAllows && !highAllows {
				t.Fatalf("monotonicity violated: %s accepts %+v but %s rejects it",
					ordered[i], record, ordered[i+1])
			}
		}
	}
}

func TestScopeForIsTotal(t *testing.T) {
	// Zero-value and garbage requesters still yield a usable scope.
	for _, req := range []Requester{
		{},
		{Role: Role(99)},
		{UserID: "x", Role: RoleManager},
	} {
		scope := ScopeFor(req)
		// Must not panic and must deny by default for foreign records.
		if scope.AllowsRecord("other-acc", "loc", "someone", "shift") {
			t.Errorf("degenerate requester %+v leaked a foreign record", req)
		}
	}
}

func TestEmployeeAndLocationLists(t *testing.T) {
	sup := ScopeFor(Requester{UserID: "s1", Role: RoleSupervisor, AccountID: "a", TeamEmployeeIDs: []string{"e1"}})
	if got := len(sup.EmployeeList()); got != 2 {
		t.Errorf("supervisor employee list = %d ids, want 2", got)
	}
	if sup.LocationList() != nil {
		t.Error("supervisor location list should be unbounded")
	}

	mgr := ScopeFor(Requester{UserID: "m1", Role: RoleManager, AccountID: "a", LocationIDs: []string{"loc1", "loc2"}})
	if mgr.EmployeeList() != nil {
		t.Error("manager employee list should be unbounded")
	}
	if got := len(mgr.LocationList()); got != 2 {
		t.Errorf("manager location list = %d ids, want 2", got)
	}

	admin := ScopeFor(Requester{UserID: "a1", Role: RoleAdmin})
	if admin.EmployeeList() != nil || admin.LocationList() != nil {
		t.Error("admin lists should be unbounded")
	}
}

func ExampleScopeFor() {
	scope := ScopeFor(Requester{UserID: "e1", Role: RoleEmployee, AccountID: "acc1"})
	fmt.Println(scope.AllowsRecord("acc1", "loc1", "e1", "shift"))
	fmt.Println(scope.AllowsRecord("acc1", "loc1", "e2", "shift"))
	// Output:
	// true
	// false
}
