package implementation

import (
	"context"
	"errors"
	"time"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/mapper"
	"pagecraft-be/internal/model"
	"pagecraft-be/internal/repository/contract"
	"pagecraft-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type RechargeCodeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.RechargeCodeMapper
}

func NewRechargeCodeRepository(db *gorm.DB) contract.RechargeCodeRepository {
	return &RechargeCodeRepositoryImpl{
		db:     db,
		mapper: mapper.NewRechargeCodeMapper(),
	}
}

func (r *RechargeCodeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *RechargeCodeRepositoryImpl) Create(ctx context.Context, code *entity.RechargeCode) error {
	m := r.mapper.ToModel(code)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*code = *r.mapper.ToEntity(m)
	return nil
}

func (r *RechargeCodeRepositoryImpl) CreateMany(ctx context.Context, codes []*entity.RechargeCode) error {
	if len(codes) == 0 {
		return nil
	}
	ms := r.mapper.ToModels(codes)
	if err := r.db.WithContext(ctx).Create(&ms).Error; err != nil {
		return err
	}
	for i, m := range ms {
		*codes[i] = *r.mapper.ToEntity(m)
	}
	return nil
}

func (r *RechargeCodeRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RechargeCode, error) {
	var m model.RechargeCode
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&m), nil
}

func (r *RechargeCodeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RechargeCode, error) {
	var ms []*model.RechargeCode
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(ms), nil
}

func (r *RechargeCodeRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.RechargeCode{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// MarkUsed only lands while used_at is still NULL, so two racing redemptions
// cannot both claim the code.
func (r *RechargeCodeRepositoryImpl) MarkUsed(ctx context.Context, codeId uuid.UUID, userId uuid.UUID, usedAt time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Model(&model.RechargeCode{}).
		Where("id = ? AND used_at IS NULL", codeId).
		Updates(map[string]interface{}{
			"used_by": userId,
			"used_at": usedAt,
		})
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
