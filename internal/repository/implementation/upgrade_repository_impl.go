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

type UpgradeRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.UpgradeMapper
}

func NewUpgradeRepository(db *gorm.DB) contract.UpgradeRepository {
	return &UpgradeRepositoryImpl{
		db:     db,
		mapper: mapper.NewUpgradeMapper(),
	}
}

func (r *UpgradeRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *UpgradeRepositoryImpl) Create(ctx context.Context, order *entity.UpgradeOrder) error {
	m := r.mapper.ToModel(order)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*order = *r.mapper.ToEntity(m)
	return nil
}

func (r *UpgradeRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UpgradeOrder, error) {
	var m model.UpgradeOrder
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&m), nil
}

func (r *UpgradeRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UpgradeOrder, error) {
	var ms []*model.UpgradeOrder
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(ms), nil
}

func (r *UpgradeRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.UpgradeOrder{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *UpgradeRepositoryImpl) SetSnapToken(ctx context.Context, orderId uuid.UUID, token string) error {
	return r.db.WithContext(ctx).Model(&model.UpgradeOrder{}).
		Where("id = ?", orderId).
		Updates(map[string]interface{}{
			"snap_token": token,
		}).Error
}

func (r *UpgradeRepositoryImpl) MarkPaid(ctx context.Context, orderId uuid.UUID, paidAt time.Time) error {
	return r.db.WithContext(ctx).Model(&model.UpgradeOrder{}).
		Where("id = ?", orderId).
		Updates(map[string]interface{}{
			"status":  string(entity.UpgradeOrderPaid),
			"paid_at": paidAt,
		}).Error
}

func (r *UpgradeRepositoryImpl) MarkFailed(ctx context.Context, orderId uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.UpgradeOrder{}).
		Where("id = ?", orderId).
		Updates(map[string]interface{}{
			"status": string(entity.UpgradeOrderFailed),
		}).Error
}
