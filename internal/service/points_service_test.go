package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsumeDrainsByExpiryOrder(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t)

	now := time.Now()
	// B was granted first but never expires; A expires in two days. A must
	// drain first regardless of creation order.
	batchB := env.seedBatch(t, user.Id, 200, 200, nil, now.Add(-2*time.Hour))
	batchA := env.seedBatch(t, user.Id, 100, 100, timePtr(now.Add(48*time.Hour)), now.Add(-1*time.Hour))

	res, err := env.points.Consume(ctx, user.Id, 150, "render 15 pages")
	require.NoError(t, err)
	require.True(t, res.Ok)
	assert.Equal(t, int64(150), res.PointsCharged)
	assert.Equal(t, int64(150), res.RemainingValid)

	// A fully drained, B down to 150
	assert.Equal(t, int64(0), env.batchById(t, batchA.Id).Remaining)
	assert.Equal(t, int64(150), env.batchById(t, batchB.Id).Remaining)

	// One expense row per touched batch, expiring batch first
	uow := env.uowFactory.NewUnitOfWork(ctx)
	txs, err := uow.PointRepository().FindTransactions(ctx,
		specification.UserOwnedBy{UserID: user.Id},
		specification.ByTransactionType{Type: string(entity.PointTransactionExpense)},
	)
	require.NoError(t, err)
	require.Len(t, txs, 2)

	assert.Equal(t, batchA.Id, *txs[0].BatchId)
	assert.Equal(t, int64(100), txs[0].Amount)
	assert.Equal(t, int64(0), txs[0].BalanceAfter)

	assert.Equal(t, batchB.Id, *txs[1].BatchId)
	assert.Equal(t, int64(50), txs[1].Amount)
	assert.Equal(t, int64(150), txs[1].BalanceAfter)
}

func TestConsumeInsufficientIsAllOrNothing(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t)

	batch := env.seedBatch(t, user.Id, 100, 100, nil, time.Now())

	res, err := env.points.Consume(ctx, user.Id, 150, "too expensive")
	require.NoError(t, err)
	assert.False(t, res.Ok)
	assert.Equal(t, int64(100), res.RemainingValid)
	assert.Equal(t, ErrInsufficientPoints.Error(), res.Message)

	// Nothing was written: the batch is untouched and no expense row exists
	assert.Equal(t, int64(100), env.batchById(t, batch.Id).Remaining)

	uow := env.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.PointRepository().CountTransactions(ctx, specification.UserOwnedBy{UserID: user.Id})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestConsumeZeroAmountIsNoOp(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t)
	env.seedBatch(t, user.Id, 80, 80, nil, time.Now())

	for _, amount := range []int64{0, -5} {
		res, err := env.points.Consume(ctx, user.Id, amount, "noop")
		require.NoError(t, err)
		assert.True(t, res.Ok)
		assert.Equal(t, int64(0), res.PointsCharged)
		assert.Equal(t, int64(80), res.RemainingValid)
	}

	uow := env.uowFactory.NewUnitOfWork(ctx)
	count, err := uow.PointRepository().CountTransactions(ctx, specification.UserOwnedBy{UserID: user.Id})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}

func TestConsumeIgnoresExpiredAndForeignBatches(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t)
	other := env.seedUser(t)

	now := time.Now()
	// 500 expired points and 500 belonging to someone else must not fund this
	env.seedBatch(t, user.Id, 500, 500, timePtr(now.Add(-time.Hour)), now.Add(-48*time.Hour))
	env.seedBatch(t, other.Id, 500, 500, nil, now)
	live := env.seedBatch(t, user.Id, 30, 30, nil, now)

	res, err := env.points.Consume(ctx, user.Id, 50, "overdraw")
	require.NoError(t, err)
	assert.False(t, res.Ok)
	assert.Equal(t, int64(30), res.RemainingValid)

	res, err = env.points.Consume(ctx, user.Id, 30, "exact")
	require.NoError(t, err)
	assert.True(t, res.Ok)
	assert.Equal(t, int64(0), res.RemainingValid)
	assert.Equal(t, int64(0), env.batchById(t, live.Id).Remaining)

	// The other user's balance is untouched
	assert.Equal(t, int64(500), env.validPoints(t, other.Id))
}

func TestConcurrentConsumesNeverOversell(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t)

	const workers = 8
	const perWorker = int64(25)
	now := time.Now()
	env.seedBatch(t, user.Id, 100, 100, timePtr(now.Add(24*time.Hour)), now.Add(-time.Hour))
	env.seedBatch(t, user.Id, 100, 100, nil, now)

	// Exactly workers*perWorker points exist, so every consume must succeed
	// and the last one must land on zero.
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := env.points.Consume(ctx, user.Id, perWorker, "race")
			if err != nil {
				errs <- err
				return
			}
			if !res.Ok {
				errs <- ErrInsufficientPoints
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("concurrent consume failed: %v", err)
	}

	assert.Equal(t, int64(0), env.validPoints(t, user.Id))

	// No batch went negative and the expenses sum to exactly the total
	uow := env.uowFactory.NewUnitOfWork(ctx)
	batches, err := uow.PointRepository().FindBatches(ctx, specification.UserOwnedBy{UserID: user.Id})
	require.NoError(t, err)
	for _, b := range batches {
		assert.GreaterOrEqual(t, b.Remaining, int64(0))
		assert.LessOrEqual(t, b.Remaining, b.Amount)
	}

	txs, err := uow.PointRepository().FindTransactions(ctx,
		specification.UserOwnedBy{UserID: user.Id},
		specification.ByTransactionType{Type: string(entity.PointTransactionExpense)},
	)
	require.NoError(t, err)
	var spent int64
	for _, tx := range txs {
		spent += tx.Amount
	}
	assert.Equal(t, workers*perWorker, spent)
}

func TestTransactionReplayReconstructsRemaining(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t)

	env.grant(t, user.Id, 120, nil)
	env.grant(t, user.Id, 80, nil)

	_, err := env.points.Consume(ctx, user.Id, 50, "first job")
	require.NoError(t, err)
	_, err = env.points.Consume(ctx, user.Id, 90, "second job")
	require.NoError(t, err)

	// Replay the ledger per batch: income opens it, each row's BalanceAfter
	// must chain from the previous one, and the final row must equal the
	// batch's stored remaining.
	uow := env.uowFactory.NewUnitOfWork(ctx)
	txs, err := uow.PointRepository().FindTransactions(ctx, specification.UserOwnedBy{UserID: user.Id})
	require.NoError(t, err)

	replayed := map[string]int64{}
	for _, tx := range txs {
		require.NotNil(t, tx.BatchId)
		key := tx.BatchId.String()
		switch tx.Type {
		case entity.PointTransactionIncome:
			assert.Equal(t, tx.Amount, tx.BalanceAfter)
			replayed[key] = tx.BalanceAfter
		case entity.PointTransactionExpense:
			assert.Equal(t, replayed[key]-tx.Amount, tx.BalanceAfter)
			replayed[key] = tx.BalanceAfter
		}
	}

	batches, err := uow.PointRepository().FindBatches(ctx, specification.UserOwnedBy{UserID: user.Id})
	require.NoError(t, err)
	require.Len(t, batches, 2)
	for _, b := range batches {
		assert.Equal(t, replayed[b.Id.String()], b.Remaining, "replayed remaining diverged for batch %s", b.Id)
	}

	assert.Equal(t, int64(60), env.validPoints(t, user.Id))
}

func TestGetBalanceStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("regular user with expiring points", func(t *testing.T) {
		user := env.seedUser(t)
		now := time.Now()
		env.seedBatch(t, user.Id, 40, 40, timePtr(now.Add(3*24*time.Hour)), now)
		env.seedBatch(t, user.Id, 100, 100, nil, now)

		status, err := env.points.GetBalanceStatus(ctx, user.Id)
		require.NoError(t, err)

		assert.Equal(t, int64(140), status.ValidPoints)
		assert.Equal(t, "free", status.Tier)
		assert.False(t, status.IsAdmin)
		assert.Equal(t, int64(10), status.PointsPerPage)
		assert.Equal(t, int64(14), status.CanGeneratePages)

		require.NotNil(t, status.ExpiringSoon)
		assert.Equal(t, int64(40), status.ExpiringSoon.Points)
		assert.Equal(t, 3, status.ExpiringSoon.Days)
	})

	t.Run("nothing expiring soon", func(t *testing.T) {
		user := env.seedUser(t)
		env.seedBatch(t, user.Id, 100, 100, timePtr(time.Now().Add(30*24*time.Hour)), time.Now())

		status, err := env.points.GetBalanceStatus(ctx, user.Id)
		require.NoError(t, err)
		assert.Nil(t, status.ExpiringSoon)
		assert.Equal(t, int64(10), status.CanGeneratePages)
	})

	t.Run("admin is flagged", func(t *testing.T) {
		admin := env.seedUser(t, func(u *entity.User) {
			u.Role = entity.UserRoleAdmin
			u.Tier = entity.UserTierPremium
		})

		status, err := env.points.GetBalanceStatus(ctx, admin.Id)
		require.NoError(t, err)
		assert.True(t, status.IsAdmin)
		assert.Equal(t, "premium", status.Tier)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.points.GetBalanceStatus(ctx, uuid.New())
		require.Error(t, err)
		assert.Equal(t, "user not found", err.Error())
	})
}

func TestGetBalancesIncludeExpired(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t)

	now := time.Now()
	env.seedBatch(t, user.Id, 100, 100, nil, now)                             // valid
	env.seedBatch(t, user.Id, 50, 0, nil, now.Add(-time.Hour))                // drained
	env.seedBatch(t, user.Id, 70, 70, timePtr(now.Add(-time.Minute)), now.Add(-2*time.Hour)) // expired

	res, err := env.points.GetBalances(ctx, user.Id, false)
	require.NoError(t, err)
	assert.Equal(t, int64(100), res.ValidPoints)
	require.Len(t, res.Balances, 1)
	assert.Equal(t, int64(100), res.Balances[0].Remaining)

	all, err := env.points.GetBalances(ctx, user.Id, true)
	require.NoError(t, err)
	assert.Equal(t, int64(100), all.ValidPoints)
	require.Len(t, all.Balances, 3)

	var expired int
	for _, b := range all.Balances {
		if b.IsExpired {
			expired++
		}
	}
	assert.Equal(t, 1, expired)
}

func TestCanConsumeIsAdvisory(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t)
	env.seedBatch(t, user.Id, 100, 100, nil, time.Now())

	res, err := env.points.CanConsume(ctx, user.Id, 100)
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(100), res.ValidPoints)
	assert.Empty(t, res.Reason)

	res, err = env.points.CanConsume(ctx, user.Id, 101)
	require.NoError(t, err)
	assert.False(t, res.Allowed)
	assert.Equal(t, ErrInsufficientPoints.Error(), res.Reason)

	// The check writes nothing, balance is untouched
	assert.Equal(t, int64(100), env.validPoints(t, user.Id))
}

func TestGetTransactionsPagination(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t)

	for i := 0; i < 5; i++ {
		env.grant(t, user.Id, int64(10*(i+1)), nil)
	}
	_, err := env.points.Consume(ctx, user.Id, 15, "spend")
	require.NoError(t, err)

	t.Run("filter by type", func(t *testing.T) {
		res, err := env.points.GetTransactions(ctx, user.Id, 1, 10, "income")
		require.NoError(t, err)
		assert.Equal(t, int64(5), res.Total)
		assert.Len(t, res.Transactions, 5)
		for _, tx := range res.Transactions {
			assert.Equal(t, "income", tx.Type)
		}
	})

	t.Run("page size respected", func(t *testing.T) {
		res, err := env.points.GetTransactions(ctx, user.Id, 1, 3, "")
		require.NoError(t, err)
		assert.Len(t, res.Transactions, 3)
		assert.Equal(t, 1, res.Page)
		assert.Equal(t, 3, res.PerPage)
		// Expense rows for a 15 point spend: 10 from the first batch, 5 from
		// the next. Total rows = 5 income + 2 expense.
		assert.Equal(t, int64(7), res.Total)
	})

	t.Run("out of range page is empty", func(t *testing.T) {
		res, err := env.points.GetTransactions(ctx, user.Id, 99, 10, "")
		require.NoError(t, err)
		assert.Empty(t, res.Transactions)
		assert.Equal(t, int64(7), res.Total)
	})
}

func TestGetConfig(t *testing.T) {
	env := newTestEnv(t)

	cfg := env.points.GetConfig()
	assert.Equal(t, int64(10), cfg.PointsPerPage)
	assert.Equal(t, int64(300), cfg.RegisterBonusPoints)
	assert.Equal(t, 3, cfg.RegisterBonusExpireDays)
	assert.Equal(t, int64(100), cfg.ReferralInviterRegisterPoints)
	assert.Equal(t, int64(100), cfg.ReferralInviteeRegisterPoints)
	assert.Equal(t, int64(500), cfg.ReferralInviterUpgradePoints)
}
