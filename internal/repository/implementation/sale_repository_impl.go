package implementation

import (
	"context"

	"github.com/qainatsaeed/BlackBox-LLM/internal/entity"
	"github.com/qainatsaeed/BlackBox-LLM/internal/mapper"
	"github.com/qainatsaeed/BlackBox-LLM/internal/model"
	"github.com/qainatsaeed/BlackBox-LLM/internal/repository/contract"
	"github.com/qainatsaeed/BlackBox-LLM/internal/repository/specification"

	"gorm.io/gorm"
)

type SaleRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.WorkforceMapper
}

func NewSaleRepository(db *gorm.DB) contract.SaleRepository {
	return &SaleRepositoryImpl{
		db:     db,
		mapper: mapper.NewWorkforceMapper(),
	}
}

func (r *SaleRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *SaleRepositoryImpl) Create(ctx context.Context, sale *entity.Sale) error {
	m := r.mapper.SaleToModel(sale)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*sale = *r.mapper.SaleToEntity(m)
	return nil
}

func (r *SaleRepositoryImpl) CreateBulk(ctx context.Context, sales []*entity.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	models := make([]*model.Sale, len(sales))
	for i, s := range sales {
		models[i] = r.mapper.SaleToModel(s)
	}
	return r.db.WithContext(ctx).CreateInBatches(models, 100).Error
}

func (r *SaleRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Sale, error) {
	var models []*model.Sale
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.Order("date").Find(&models).Error; err != nil {
		return nil, err
	}
	return r.mapper.SalesToEntities(models), nil
}

func (r *SaleRepositoryImpl) SumAmount(ctx context.Context, specs ...specification.Specification) (float64, error) {
	var total *float64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Sale{}), specs...)
	if err := query.Select("SUM(amount)").Scan(&total).Error; err != nil {
		return 0, err
	}
	if total == nil {
		return 0, nil
	}
	return *total, nil
}

func (r *SaleRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.Sale{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
