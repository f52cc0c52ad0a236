package memory

import (
	"context"
	"testing"
	"time"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/contract"
	"pagecraft-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRollbackDiscardsWrites(t *testing.T) {
	store := NewStore()
	factory := NewFactory(store)
	ctx := context.Background()

	userId := uuid.New()

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))

	require.NoError(t, uow.PointRepository().CreateBatch(ctx, &entity.PointBatch{
		UserId: userId, Amount: 100, Remaining: 100,
	}))

	sum, err := uow.PointRepository().SumValidRemaining(ctx, userId, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(100), sum, "write must be visible inside its own transaction")

	require.NoError(t, uow.Rollback())

	sum, err = factory.NewUnitOfWork(ctx).PointRepository().SumValidRemaining(ctx, userId, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), sum, "rolled back write must be gone")
}

func TestCommitKeepsWrites(t *testing.T) {
	store := NewStore()
	factory := NewFactory(store)
	ctx := context.Background()

	userId := uuid.New()

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))
	require.NoError(t, uow.PointRepository().CreateBatch(ctx, &entity.PointBatch{
		UserId: userId, Amount: 50, Remaining: 50,
	}))
	require.NoError(t, uow.Commit())

	sum, err := factory.NewUnitOfWork(ctx).PointRepository().SumValidRemaining(ctx, userId, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(50), sum)
}

func TestRollbackRestoresUpdatesNotJustInserts(t *testing.T) {
	store := NewStore()
	factory := NewFactory(store)
	ctx := context.Background()

	batch := &entity.PointBatch{Id: uuid.New(), UserId: uuid.New(), Amount: 100, Remaining: 100}
	require.NoError(t, factory.NewUnitOfWork(ctx).PointRepository().CreateBatch(ctx, batch))

	uow := factory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))

	affected, err := uow.PointRepository().DrainBatch(ctx, batch.Id, 40, 100)
	require.NoError(t, err)
	require.Equal(t, int64(1), affected)

	require.NoError(t, uow.Rollback())

	restored, err := factory.NewUnitOfWork(ctx).PointRepository().FindOneBatch(ctx, specification.ByID{ID: batch.Id})
	require.NoError(t, err)
	assert.Equal(t, int64(100), restored.Remaining, "drain inside a rolled back transaction must not stick")
}

func TestRepositoriesReturnClones(t *testing.T) {
	store := NewStore()
	factory := NewFactory(store)
	ctx := context.Background()

	batch := &entity.PointBatch{Id: uuid.New(), UserId: uuid.New(), Amount: 100, Remaining: 100}
	require.NoError(t, factory.NewUnitOfWork(ctx).PointRepository().CreateBatch(ctx, batch))

	loaded, err := factory.NewUnitOfWork(ctx).PointRepository().FindOneBatch(ctx, specification.ByID{ID: batch.Id})
	require.NoError(t, err)

	// Mutating the returned entity must not leak into the store
	loaded.Remaining = 1

	fresh, err := factory.NewUnitOfWork(ctx).PointRepository().FindOneBatch(ctx, specification.ByID{ID: batch.Id})
	require.NoError(t, err)
	assert.Equal(t, int64(100), fresh.Remaining)
}

func TestCreateBatchRejectsOutOfBoundsRemaining(t *testing.T) {
	store := NewStore()
	factory := NewFactory(store)
	ctx := context.Background()

	repo := factory.NewUnitOfWork(ctx).PointRepository()

	err := repo.CreateBatch(ctx, &entity.PointBatch{UserId: uuid.New(), Amount: 100, Remaining: 101})
	assert.ErrorIs(t, err, contract.ErrBatchBounds)

	err = repo.CreateBatch(ctx, &entity.PointBatch{UserId: uuid.New(), Amount: 100, Remaining: -1})
	assert.ErrorIs(t, err, contract.ErrBatchBounds)

	count, err := repo.CountBatches(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestDrainBatchOptimisticCheck(t *testing.T) {
	store := NewStore()
	factory := NewFactory(store)
	ctx := context.Background()

	batch := &entity.PointBatch{Id: uuid.New(), UserId: uuid.New(), Amount: 100, Remaining: 100}
	require.NoError(t, factory.NewUnitOfWork(ctx).PointRepository().CreateBatch(ctx, batch))

	repo := factory.NewUnitOfWork(ctx).PointRepository()

	// Stale expectation matches zero rows, exactly like the SQL UPDATE
	affected, err := repo.DrainBatch(ctx, batch.Id, 10, 55)
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected)

	affected, err = repo.DrainBatch(ctx, batch.Id, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)
}

func TestFindValidBatchesForUpdateOrder(t *testing.T) {
	store := NewStore()
	factory := NewFactory(store)
	ctx := context.Background()

	userId := uuid.New()
	now := time.Now()
	soon := now.Add(24 * time.Hour)
	later := now.Add(72 * time.Hour)
	past := now.Add(-time.Hour)

	repo := factory.NewUnitOfWork(ctx).PointRepository()

	// Insert out of order on purpose
	require.NoError(t, repo.CreateBatch(ctx, &entity.PointBatch{UserId: userId, Amount: 1, Remaining: 1, ExpiresAt: nil, CreatedAt: now.Add(-3 * time.Hour)}))
	require.NoError(t, repo.CreateBatch(ctx, &entity.PointBatch{UserId: userId, Amount: 2, Remaining: 2, ExpiresAt: &later, CreatedAt: now.Add(-2 * time.Hour)}))
	require.NoError(t, repo.CreateBatch(ctx, &entity.PointBatch{UserId: userId, Amount: 3, Remaining: 3, ExpiresAt: &soon, CreatedAt: now.Add(-1 * time.Hour)}))
	require.NoError(t, repo.CreateBatch(ctx, &entity.PointBatch{UserId: userId, Amount: 4, Remaining: 4, ExpiresAt: &past, CreatedAt: now.Add(-4 * time.Hour)}))
	require.NoError(t, repo.CreateBatch(ctx, &entity.PointBatch{UserId: userId, Amount: 5, Remaining: 0, ExpiresAt: nil, CreatedAt: now.Add(-5 * time.Hour)}))

	batches, err := repo.FindValidBatchesForUpdate(ctx, userId, now)
	require.NoError(t, err)

	// Expired and drained batches are filtered; soonest expiry first,
	// never-expiring last.
	require.Len(t, batches, 3)
	assert.Equal(t, int64(3), batches[0].Amount)
	assert.Equal(t, int64(2), batches[1].Amount)
	assert.Equal(t, int64(1), batches[2].Amount)
}

func TestMarkUsedClaimsOnlyOnce(t *testing.T) {
	store := NewStore()
	factory := NewFactory(store)
	ctx := context.Background()

	code := &entity.RechargeCode{Id: uuid.New(), Code: "PC-TEST-TEST-TEST", Points: 100}
	require.NoError(t, factory.NewUnitOfWork(ctx).RechargeCodeRepository().Create(ctx, code))

	repo := factory.NewUnitOfWork(ctx).RechargeCodeRepository()

	affected, err := repo.MarkUsed(ctx, code.Id, uuid.New(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), affected)

	affected, err = repo.MarkUsed(ctx, code.Id, uuid.New(), time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(0), affected, "second claim must lose")
}
