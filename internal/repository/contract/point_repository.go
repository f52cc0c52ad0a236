package contract

import (
	"context"
	"errors"
	"time"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"

	"github.com/google/uuid"
)

// ErrBatchBounds rejects a batch whose remaining falls outside [0, amount].
// The database CHECK constraints back the same rule; this keeps every
// implementation of the contract behaving identically.
var ErrBatchBounds = errors.New("point batch remaining out of bounds")

type PointRepository interface {
	// Batches

	// CreateBatch persists a new batch. Batches violating the remaining
	// bounds are rejected with ErrBatchBounds.
	CreateBatch(ctx context.Context, batch *entity.PointBatch) error
	FindOneBatch(ctx context.Context, specs ...specification.Specification) (*entity.PointBatch, error)
	FindBatches(ctx context.Context, specs ...specification.Specification) ([]*entity.PointBatch, error)
	CountBatches(ctx context.Context, specs ...specification.Specification) (int64, error)

	// FindValidBatchesForUpdate returns the user's spendable batches in drain
	// order, row-locked for the rest of the transaction.
	FindValidBatchesForUpdate(ctx context.Context, userId uuid.UUID, now time.Time) ([]*entity.PointBatch, error)

	// SumValidRemaining totals the spendable points at the given instant.
	SumValidRemaining(ctx context.Context, userId uuid.UUID, now time.Time) (int64, error)

	// DrainBatch subtracts take from a batch only if remaining still equals
	// expected. Returns the number of rows changed; zero means the guard
	// failed and the caller must abort.
	DrainBatch(ctx context.Context, batchId uuid.UUID, take int64, expected int64) (int64, error)

	// Transactions (append-only)
	CreateTransaction(ctx context.Context, tx *entity.PointTransaction) error
	FindTransactions(ctx context.Context, specs ...specification.Specification) ([]*entity.PointTransaction, error)
	CountTransactions(ctx context.Context, specs ...specification.Specification) (int64, error)
}
