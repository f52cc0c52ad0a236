package implementation

import (
	"context"
	"errors"
	"fmt"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/mapper"
	"pagecraft-be/internal/model"
	"pagecraft-be/internal/repository/contract"
	"pagecraft-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReferralRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.ReferralMapper
}

func NewReferralRepository(db *gorm.DB) contract.ReferralRepository {
	return &ReferralRepositoryImpl{
		db:     db,
		mapper: mapper.NewReferralMapper(),
	}
}

func (r *ReferralRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *ReferralRepositoryImpl) Create(ctx context.Context, record *entity.ReferralRecord) error {
	m := r.mapper.ToModel(record)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*record = *r.mapper.ToEntity(m)
	return nil
}

func (r *ReferralRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ReferralRecord, error) {
	var m model.ReferralRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&m), nil
}

func (r *ReferralRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReferralRecord, error) {
	var ms []*model.ReferralRecord
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(ms), nil
}

func (r *ReferralRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.ReferralRecord{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *ReferralRepositoryImpl) MarkRewarded(ctx context.Context, recordId uuid.UUID, reward entity.ReferralRewardType) error {
	var column string
	switch reward {
	case entity.ReferralRewardInviterRegister:
		column = "inviter_register_rewarded"
	case entity.ReferralRewardInviteeRegister:
		column = "invitee_register_rewarded"
	case entity.ReferralRewardInviterUpgrade:
		column = "inviter_upgrade_rewarded"
	default:
		return fmt.Errorf("unknown referral reward type: %s", reward)
	}

	return r.db.WithContext(ctx).Model(&model.ReferralRecord{}).
		Where("id = ?", recordId).
		Updates(map[string]interface{}{
			column: true,
		}).Error
}
