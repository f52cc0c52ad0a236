package implementation

import (
	"context"
	"errors"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/mapper"
	"pagecraft-be/internal/model"
	"pagecraft-be/internal/repository/contract"
	"pagecraft-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GenerationRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.GenerationMapper
}

func NewGenerationRepository(db *gorm.DB) contract.GenerationRepository {
	return &GenerationRepositoryImpl{
		db:     db,
		mapper: mapper.NewGenerationMapper(),
	}
}

func (r *GenerationRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *GenerationRepositoryImpl) Create(ctx context.Context, job *entity.GenerationJob) error {
	m := r.mapper.ToModel(job)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*job = *r.mapper.ToEntity(m)
	return nil
}

func (r *GenerationRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GenerationJob, error) {
	var m model.GenerationJob
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&m), nil
}

func (r *GenerationRepositoryImpl) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GenerationJob, error) {
	var ms []*model.GenerationJob
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(ms), nil
}

func (r *GenerationRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.GenerationJob{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GenerationRepositoryImpl) UpdateStatus(ctx context.Context, jobId uuid.UUID, status string, failureReason string) error {
	updates := map[string]interface{}{
		"status": status,
	}
	if failureReason != "" {
		updates["failure_reason"] = failureReason
	}
	return r.db.WithContext(ctx).Model(&model.GenerationJob{}).
		Where("id = ?", jobId).
		Updates(updates).Error
}

func (r *GenerationRepositoryImpl) IncrementPagesCompleted(ctx context.Context, jobId uuid.UUID) error {
	return r.db.WithContext(ctx).Model(&model.GenerationJob{}).
		Where("id = ?", jobId).
		Update("pages_completed", gorm.Expr("pages_completed + 1")).Error
}
