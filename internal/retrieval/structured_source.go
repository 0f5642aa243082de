package retrieval

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/qainatsaeed/BlackBox-LLM/internal/pkg/logger"
	"github.com/qainatsaeed/BlackBox-LLM/internal/policy"
	"github.com/qainatsaeed/BlackBox-LLM/internal/repository/contract"
	"github.com/qainatsaeed/BlackBox-LLM/internal/repository/specification"
)

// StructuredSource answers classified queries from the relational store.
// Scope is pushed into every query so rows outside the requester's reach
// never leave the database.
type StructuredSource interface {
	Retrieve(ctx context.Context, cls Classification, scope policy.Scope) ([]Fragment, error)
}

type sqlSource struct {
	employees contract.EmployeeRepository
	shifts    contract.ShiftRepository
	sales     contract.SaleRepository
	log       logger.ILogger
}

func NewSQLSource(
	employees contract.EmployeeRepository,
	shifts contract.ShiftRepository,
	sales contract.SaleRepository,
	log logger.ILogger,
) StructuredSource {
	return &sqlSource{
		employees: employees,
		shifts:    shifts,
		sales:     sales,
		log:       log,
	}
}

func (s *sqlSource) Retrieve(ctx context.Context, cls Classification, scope policy.Scope) ([]Fragment, error) {
	q := cls.Structured
	switch q.Intent {
	case IntentShiftsOnDate:
		return s.shiftsOnDate(ctx, q, scope)
	case IntentEmployeeByCode:
		return s.employeeByCode(ctx, q, scope)
	case IntentShiftsByPosition:
		return s.employeesByPosition(ctx, q, scope)
	case IntentLaborCost:
		return s.laborCost(ctx, q, scope)
	case IntentSalesTotal:
		return s.salesTotal(ctx, q, scope)
	default:
		return nil, nil
	}
}

func (s *sqlSource) shiftsOnDate(ctx context.Context, q StructuredQuery, scope policy.Scope) ([]Fragment, error) {
	specs := []specification.Specification{
		specification.WithinScope{Scope: scope},
		specification.OnDate{Date: q.Date},
		specification.OrderBy{Field: "start_time"},
	}
	if q.EmployeeCode != "" {
		if !scope.AllowsEmployee(q.EmployeeCode) {
			return nil, nil
		}
		specs = append(specs, specification.EmployeeIn{Codes: []string{strings.ToLower(q.EmployeeCode)}})
	}

	shifts, err := s.shifts.FindAll(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("shifts on date: %w", err)
	}

	fragments := make([]Fragment, 0, len(shifts))
	for _, sh := range shifts {
		fragments = append(fragments, Fragment{
			Text: fmt.Sprintf("shift: employee_code: %s, date: %s, start_time: %s, end_time: %s, position: %s, location_id: %s",
				sh.EmployeeCode, sh.Date.Format("2006-01-02"), sh.StartTime, sh.EndTime, sh.Position, sh.LocationID),
			Score:        1.0,
			Source:       SourceStructured,
			SourceID:     sh.Id.String(),
			AccountID:    sh.AccountID,
			LocationID:   sh.LocationID,
			EmployeeCode: sh.EmployeeCode,
			DataType:     "shift",
		})
	}
	return fragments, nil
}

func (s *sqlSource) employeeByCode(ctx context.Context, q StructuredQuery, scope policy.Scope) ([]Fragment, error) {
	if q.EmployeeCode == "" {
		return nil, nil
	}
	if !scope.AllowsEmployee(q.EmployeeCode) {
		// Out-of-scope lookups yield nothing rather than an error. The
		// requester cannot distinguish a missing record from a denied one.
		return nil, nil
	}

	emp, err := s.employees.FindOne(ctx,
		specification.WithinScope{Scope: scope, EmployeeColumn: "code"},
		specification.EmployeeIn{Codes: []string{strings.ToLower(q.EmployeeCode)}, Column: "code"},
	)
	if err != nil {
		return nil, fmt.Errorf("employee by id: %w", err)
	}
	if emp == nil {
		return nil, nil
	}

	return []Fragment{{
		Text: fmt.Sprintf("employee: code: %s, name: %s, position: %s, location_id: %s, hourly_rate: %.2f",
			emp.Code, emp.Name, emp.Position, emp.LocationID, emp.HourlyRate),
		Score:        1.0,
		Source:       SourceStructured,
		SourceID:     emp.Id.String(),
		AccountID:    emp.AccountID,
		LocationID:   emp.LocationID,
		EmployeeCode: emp.Code,
		DataType:     "employee",
	}}, nil
}

func (s *sqlSource) employeesByPosition(ctx context.Context, q StructuredQuery, scope policy.Scope) ([]Fragment, error) {
	specs := []specification.Specification{
		specification.WithinScope{Scope: scope, EmployeeColumn: "code"},
		specification.OrderBy{Field: "name"},
	}
	if q.Position != "" {
		specs = append(specs, specification.Filter("LOWER(position)", strings.ToLower(q.Position)))
	}
	if q.LocationID != "" {
		if !scope.AllowsLocation(q.LocationID) {
			return nil, nil
		}
		specs = append(specs, specification.LocationIn{IDs: []string{strings.ToLower(q.LocationID)}})
	}

	employees, err := s.employees.FindAll(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("employees by position: %w", err)
	}

	fragments := make([]Fragment, 0, len(employees))
	for _, emp := range employees {
		fragments = append(fragments, Fragment{
			Text: fmt.Sprintf("employee: code: %s, name: %s, position: %s, location_id: %s",
				emp.Code, emp.Name, emp.Position, emp.LocationID),
			Score:        1.0,
			Source:       SourceStructured,
			SourceID:     emp.Id.String(),
			AccountID:    emp.AccountID,
			LocationID:   emp.LocationID,
			EmployeeCode: emp.Code,
			DataType:     "employee",
		})
	}
	return fragments, nil
}

func (s *sqlSource) laborCost(ctx context.Context, q StructuredQuery, scope policy.Scope) ([]Fragment, error) {
	from, to := q.From, q.To
	if from.IsZero() {
		from = q.Date
	}
	if to.IsZero() {
		to = q.Date
	}

	costs, err := s.shifts.LaborCostByDate(ctx, from, to, scope)
	if err != nil {
		return nil, fmt.Errorf("labor cost: %w", err)
	}

	// The per-date costs are already narrowed to the requester's scope by
	// the SQL query and carry no individual attribution, so the fragments
	// ride the aggregate visibility rule like sales totals do.
	fragments := make([]Fragment, 0, len(costs)+1)
	var total float64
	for _, c := range costs {
		total += c.Cost
		fragments = append(fragments, Fragment{
			Text: fmt.Sprintf("labor_cost: date: %s, cost: %.2f",
				c.Date.Format("2006-01-02"), c.Cost),
			Score:     1.0,
			Source:    SourceStructured,
			AccountID: scope.AccountID,
			DataType:  "labor_cost",
		})
	}
	if len(costs) > 0 {
		fragments = append(fragments, Fragment{
			Text: fmt.Sprintf("labor_cost_total: from: %s, to: %s, total: %.2f",
				from.Format("2006-01-02"), to.Format("2006-01-02"), total),
			Score:     1.0,
			Source:    SourceStructured,
			AccountID: scope.AccountID,
			DataType:  "labor_cost",
		})
	}
	return fragments, nil
}

func (s *sqlSource) salesTotal(ctx context.Context, q StructuredQuery, scope policy.Scope) ([]Fragment, error) {
	from, to := q.From, q.To
	if from.IsZero() {
		from = q.Date
	}
	if to.IsZero() {
		to = q.Date
	}

	specs := []specification.Specification{
		specification.DateBetween{From: from, To: to},
	}
	// Sales rows are account-wide aggregates, so scope narrows them to the
	// account only. Employee and location bounds do not apply here.
	if !scope.AllAccounts {
		specs = append(specs, specification.ByAccount{AccountID: scope.AccountID})
	}
	if q.LocationID != "" {
		if !scope.AllowsLocation(q.LocationID) {
			return nil, nil
		}
		specs = append(specs, specification.LocationIn{IDs: []string{strings.ToLower(q.LocationID)}})
	}

	rows, err := s.sales.FindAll(ctx, specs...)
	if err != nil {
		return nil, fmt.Errorf("sales total: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Date.Before(rows[j].Date) })

	fragments := make([]Fragment, 0, len(rows)+1)
	var total float64
	for _, row := range rows {
		total += row.Amount
		attribution := row.EmployeeCode
		if attribution == "" {
			attribution = "store"
		}
		fragments = append(fragments, Fragment{
			Text: fmt.Sprintf("sale: date: %s, amount: %.2f, location_id: %s, attributed_to: %s",
				row.Date.Format("2006-01-02"), row.Amount, row.LocationID, attribution),
			Score:        1.0,
			Source:       SourceStructured,
			SourceID:     row.Id.String(),
			AccountID:    row.AccountID,
			LocationID:   row.LocationID,
			EmployeeCode: row.EmployeeCode,
			DataType:     "sales_breakdown",
		})
	}
	fragments = append(fragments, Fragment{
		Text: fmt.Sprintf("sales_total: from: %s, to: %s, total: %.2f",
			from.Format("2006-01-02"), to.Format("2006-01-02"), total),
		Score:    1.0,
		Source:   SourceStructured,
		DataType: "sales_breakdown",
	})
	return fragments, nil
}
