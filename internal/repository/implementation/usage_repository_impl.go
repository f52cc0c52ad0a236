package implementation

import (
	"context"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/mapper"
	"pagecraft-be/internal/model"
	"pagecraft-be/internal/repository/contract"
	"pagecraft-be/internal/repository/specification"

	"gorm.io/gorm"
)

type UsageRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UsageMapper
}

func NewUsageRepository(db *gorm.DB) contract.UsageRepository {
	return &UsageRepositoryImpl{
		db:     db,
		mapper: mapper.NewUsageMapper(),
	}
}

func (r *UsageRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UsageRepositoryImpl) Create(ctx context.Context, record *entity.UsageRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *UsageRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UsageRecord, error) {
	var ms []*model.UsageRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(ms), nil
}

func (r *UsageRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.UsageRecord{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
