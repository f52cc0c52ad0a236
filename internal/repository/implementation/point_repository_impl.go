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
	"gorm.io/gorm/clause"
)

type PointRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.PointMapper
}

func NewPointRepository(db *gorm.DB) contract.PointRepository {
	return &PointRepositoryImpl{
		db:     db,
		mapper: mapper.NewPointMapper(),
	}
}

func (r *PointRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *PointRepositoryImpl) CreateBatch(ctx context.Context, batch *entity.PointBatch) error {
	if batch.Remaining < 0 || batch.Remaining > batch.Amount {
		return contract.ErrBatchBounds
	}
	m := r.mapper.ToModel(batch)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*batch = *r.mapper.ToEntity(m)
	return nil
}

func (r *PointRepositoryImpl) FindOneBatch(ctx context.Context, specs ...specification.Specification) (*entity.PointBatch, error) {
	var m model.PointBatch
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return r.mapper.ToEntity(&m), nil
}

func (r *PointRepositoryImpl) FindBatches(ctx context.Context, specs ...specification.Specification) ([]*entity.PointBatch, error) {
	var ms []*model.PointBatch
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(ms), nil
}

func (r *PointRepositoryImpl) CountBatches(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.PointBatch{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// FindValidBatchesForUpdate locks the user's spendable batches in drain order.
// Must run inside a transaction; the row locks are what serialize concurrent
// deductions against the same user.
func (r *PointRepositoryImpl) FindValidBatchesForUpdate(ctx context.Context, userId uuid.UUID, now time.Time) ([]*entity.PointBatch, error) {
	var ms []*model.PointBatch

	query := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userId)
	query = specification.ValidBatches{Now: now}.Apply(query)
	query = specification.DrainOrder{}.Apply(query)

	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}

	return r.mapper.ToEntities(ms), nil
}

func (r *PointRepositoryImpl) SumValidRemaining(ctx context.Context, userId uuid.UUID, now time.Time) (int64, error) {
	var total int64
	query := r.db.WithContext(ctx).
		Model(&model.PointBatch{}).
		Select("COALESCE(SUM(remaining), 0)").
		Where("user_id = ?", userId)
	query = specification.ValidBatches{Now: now}.Apply(query)

	if err := query.Scan(&total).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// DrainBatch is the guarded decrement. The remaining = expected predicate
// means a batch touched by anyone else since it was read stays untouched and
// the caller sees zero rows.
func (r *PointRepositoryImpl) DrainBatch(ctx context.Context, batchId uuid.UUID, take int64, expected int64) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&model.PointBatch{}).
		Where("id = ? AND remaining = ?", batchId, expected).
		Update("remaining", gorm.Expr("remaining - ?", take))
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// Transaction Implementations

func (r *PointRepositoryImpl) CreateTransaction(ctx context.Context, tx *entity.PointTransaction) error {
	m := r.mapper.TransactionToModel(tx)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*tx = *r.mapper.TransactionToEntity(m)
	return nil
}

func (r *PointRepositoryImpl) FindTransactions(ctx context.Context, specs ...specification.Specification) ([]*entity.PointTransaction, error) {
	var ms []*model.PointTransaction
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)

	if err := query.Find(&ms).Error; err != nil {
		return nil, err
	}

	return r.mapper.TransactionsToEntities(ms), nil
}

func (r *PointRepositoryImpl) CountTransactions(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx).Model(&model.PointTransaction{}), specs...)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
