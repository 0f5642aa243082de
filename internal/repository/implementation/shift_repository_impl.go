package implementation

import (
	"context"
	"time"

	"github.com/qainatsaeed/BlackBox-LLM/internal/entity"
	"github.com/qainatsaeed/BlackBox-LLM/internal/mapper"
	"github.com/qainatsaeed/BlackBox-LLM/internal/model"
	"github.com/qainatsaeed/BlackBox-LLM/internal/policy"
	"github.com/qainatsaeed/BlackBox-LLM/internal/repository/contract"
	"github.com/qainatsaeed/BlackBox-LLM/internal/repository/specification"

	"gorm.io/gorm"
)

type ShiftRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkforceMapper
}

func NewShiftRepository(db *gorm.DB) contract.ShiftRepository {
	return &ShiftRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkforceMapper(),
	}
}

func (r *ShiftRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ShiftRepositoryImpl) Create(ctx context.Context, shift *entity.Shift) error {
	m := r.mapper.ShiftToModel(shift)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*shift = *r.mapper.ShiftToEntity(m)
	return nil
}

func (r *ShiftRepositoryImpl) CreateBulk(ctx context.Context, shifts []*entity.Shift) error {
	if len(shifts) == 0 {
		return nil
	}
	models := make([]*model.Shift, len(shifts))
	for i, s := range shifts {
		models[i] = r.mapper.ShiftToModel(s)
	}
	return r.db.WithContext(ctx).CreateInBatches(models, 100).Error
}

func (r *ShiftRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Shift, error) {
	var models []*model.Shift
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Order("date, employee_name").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.ShiftsToEntities(models), nil
}

func (r *ShiftRepositoryImpl) LaborCostByDate(ctx context.Context, from, to time.Time, scope policy.Scope) ([]*entity.LaborCost, error) {
	type row struct {
		Date time.Time
		Cost float64
	}
	var rows []row

	query := r.db.WithContext(ctx).
		Table("shifts").
		Select("shifts.date as date, SUM(shifts.attended_hours * employees.hourly_rate) as cost").
		Joins("JOIN employees ON employees.code = shifts.employee_code").
		Where("shifts.date BETWEEN ? AND ?", from.Format("2006-01-02"), to.Format("2006-01-02"))

	// Columns must be qualified here, the generic scope specification can't be
	// reused across the join.
	if !scope.AllAccounts {
		query = query.Where("shifts.account_id = ? OR shifts.account_id = ''", scope.AccountID)
		if employees := scope.EmployeeList(); employees != nil {
			query = query.Where("LOWER(shifts.employee_code) IN ?", employees)
		}
		if locations := scope.LocationList(); locations != nil {
			query = query.Where("LOWER(shifts.location_id) IN ? OR shifts.location_id = ''", locations)
		}
	}

	if err := query.Group("shifts.date").Order("shifts.date").Scan(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]*entity.LaborCost, len(rows))
	for i, rw := range rows {
		out[i] = &entity.LaborCost{Date: rw.Date, Cost: rw.Cost}
	}
	return out, nil
}

func (r *ShiftRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Shift{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
