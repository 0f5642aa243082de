package implementation

import (
	"context"
	"errors"

	"github.com/qainatsaeed/BlackBox-LLM/internal/entity"
	"github.com/qainatsaeed/BlackBox-LLM/internal/mapper"
	"github.com/qainatsaeed/BlackBox-LLM/internal/model"
	"github.com/qainatsaeed/BlackBox-LLM/internal/repository/contract"
	"github.com/qainatsaeed/BlackBox-LLM/internal/repository/specification"

	"gorm.io/gorm"
)

type EmployeeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkforceMapper
}

func NewEmployeeRepository(db *gorm.DB) contract.EmployeeRepository {
	return &EmployeeRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkforceMapper(),
	}
}

func (r *EmployeeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *EmployeeRepositoryImpl) Create(ctx context.Context, employee *entity.Employee) error {
	m := r.mapper.EmployeeToModel(employee)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*employee = *r.mapper.EmployeeToEntity(m)
	return nil
}

func (r *EmployeeRepositoryImpl) CreateBulk(ctx context.Context, employees []*entity.Employee) error {
	if len(employees) == 0 {
		return nil
	}
	models := make([]*model.Employee, len(employees))
	for i, e := range employees {
		models[i] = r.mapper.EmployeeToModel(e)
	}
	return r.db.WithContext(ctx).CreateInBatches(models, 100).Error
}

func (r *EmployeeRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Employee, error) {
	var m model.Employee
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.EmployeeToEntity(&m), nil
}

func (r *EmployeeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Employee, error) {
	var models []*model.Employee
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.EmployeesToEntities(models), nil
}

func (r *EmployeeRepositoryImpl) FindTeam(ctx context.Context, accountID, supervisorCode string) ([]*entity.Employee, error) {
	var models []*model.Employee
	err := r.db.WithContext(ctx).
		Where("account_id = ?", accountID).
		Where("supervisor_code = ?", supervisorCode).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.EmployeesToEntities(models), nil
}

func (r *EmployeeRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Employee{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
