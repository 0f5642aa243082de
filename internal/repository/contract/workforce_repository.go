package contract

import (
	"context"
	"time"

	"github.com/qainatsaeed/BlackBox-LLM/internal/entity"
	"github.com/qainatsaeed/BlackBox-LLM/internal/policy"
	"github.com/qainatsaeed/BlackBox-LLM/internal/repository/specification"
)

type EmployeeRepository interface {
	Create(ctx context.Context, employee *entity.Employee) error
	CreateBulk(ctx context.Context, employees []*entity.Employee) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Employee, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Employee, error)
	// FindTeam returns the employees reporting to the given supervisor code.
	FindTeam(ctx context.Context, accountID, supervisorCode string) ([]*entity.Employee, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type ShiftRepository interface {
	Create(ctx context.Context, shift *entity.Shift) error
	CreateBulk(ctx context.Context, shifts []*entity.Shift) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Shift, error)
	// LaborCostByDate sums hours*rate per date over the given range, joining
	// the employees table for rates. Scope is applied with qualified columns
	// because of the join.
	LaborCostByDate(ctx context.Context, from, to time.Time, scope policy.Scope) ([]*entity.LaborCost, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

type SaleRepository interface {
	Create(ctx context.Context, sale *entity.Sale) error
	CreateBulk(ctx context.Context, sales []*entity.Sale) error
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Sale, error)
	SumAmount(ctx context.Context, specs ...specification.Specification) (float64, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}
