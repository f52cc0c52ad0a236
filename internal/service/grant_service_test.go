package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"pagecraft-be/internal/dto"
	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGrantRegisterBonus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t)

	batch, err := env.grants.GrantRegisterBonus(ctx, user.Id)
	require.NoError(t, err)
	require.NotNil(t, batch)

	assert.Equal(t, int64(300), batch.Amount)
	assert.Equal(t, int64(300), batch.Remaining)
	assert.Equal(t, entity.PointSourceRegisterBonus, batch.Source)

	// Three day lifetime from the config
	require.NotNil(t, batch.ExpiresAt)
	lifetime := time.Until(*batch.ExpiresAt)
	assert.InDelta(t, float64(3*24*time.Hour), float64(lifetime), float64(time.Minute))

	// The matching income row exists
	uow := env.uowFactory.NewUnitOfWork(ctx)
	txs, err := uow.PointRepository().FindTransactions(ctx, specification.UserOwnedBy{UserID: user.Id})
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, entity.PointTransactionIncome, txs[0].Type)
	assert.Equal(t, int64(300), txs[0].Amount)
	assert.Equal(t, int64(300), txs[0].BalanceAfter)
	assert.Equal(t, batch.Id, *txs[0].BatchId)

	// Spending against the bonus works immediately
	res, err := env.points.Consume(ctx, user.Id, 50, "first pages")
	require.NoError(t, err)
	require.True(t, res.Ok)
	assert.Equal(t, int64(250), res.RemainingValid)
	assert.Equal(t, int64(250), env.validPoints(t, user.Id))
}

func TestGrantRegisterBonusDisabled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t)

	cfg := env.cfg
	cfg.RegisterBonusPoints = 0
	grants := NewGrantService(env.uowFactory, cfg, nil, nil)

	batch, err := grants.GrantRegisterBonus(ctx, user.Id)
	require.NoError(t, err)
	assert.Nil(t, batch)
	assert.Equal(t, int64(0), env.validPoints(t, user.Id))
}

func TestGrantAdmin(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedUser(t, func(u *entity.User) { u.Role = entity.UserRoleAdmin })

	t.Run("grants with expiry and note", func(t *testing.T) {
		user := env.seedUser(t)

		res, err := env.grants.GrantAdmin(ctx, admin.Id, &dto.GrantPointsRequest{
			UserId:     user.Id,
			Points:     1000,
			ExpireDays: 30,
			Note:       "support compensation",
		})
		require.NoError(t, err)
		assert.Equal(t, int64(1000), res.Points)
		require.NotNil(t, res.ExpiresAt)
		assert.Equal(t, int64(1000), env.validPoints(t, user.Id))

		batch := env.batchById(t, res.BatchId)
		assert.Equal(t, entity.PointSourceAdminGrant, batch.Source)
		assert.Equal(t, "support compensation", batch.SourceNote)

		// The batch stays attributable to whoever granted it
		require.NotNil(t, batch.SourceId)
		assert.Equal(t, admin.Id, *batch.SourceId)
	})

	t.Run("zero expire days means no deadline", func(t *testing.T) {
		user := env.seedUser(t)

		res, err := env.grants.GrantAdmin(ctx, admin.Id, &dto.GrantPointsRequest{UserId: user.Id, Points: 50})
		require.NoError(t, err)
		assert.Nil(t, res.ExpiresAt)
	})

	t.Run("rejects non-positive amounts", func(t *testing.T) {
		user := env.seedUser(t)

		_, err := env.grants.GrantAdmin(ctx, admin.Id, &dto.GrantPointsRequest{UserId: user.Id, Points: 0})
		assert.ErrorIs(t, err, ErrInvalidGrant)

		_, err = env.grants.GrantAdmin(ctx, admin.Id, &dto.GrantPointsRequest{UserId: user.Id, Points: -10})
		assert.ErrorIs(t, err, ErrInvalidGrant)
		assert.Equal(t, int64(0), env.validPoints(t, user.Id))
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.grants.GrantAdmin(ctx, admin.Id, &dto.GrantPointsRequest{UserId: uuid.New(), Points: 10})
		require.Error(t, err)
		assert.Equal(t, "user not found", err.Error())
	})
}

func TestGenerateCodes(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedUser(t, func(u *entity.User) { u.Role = entity.UserRoleAdmin })

	res, err := env.grants.GenerateCodes(ctx, admin.Id, &dto.GenerateCodesRequest{
		Count:            5,
		Points:           200,
		PointsExpireDays: 30,
	})
	require.NoError(t, err)
	require.Len(t, res.Codes, 5)
	assert.True(t, strings.HasPrefix(res.BatchNo, "BATCH-"))

	seen := map[string]bool{}
	for _, code := range res.Codes {
		assert.True(t, strings.HasPrefix(code, "PC-"), "code %q should carry the voucher prefix", code)
		assert.False(t, seen[code], "duplicate code %q in one batch", code)
		seen[code] = true
	}

	list, err := env.grants.ListCodes(ctx, res.BatchNo, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(5), list.Total)
	require.Len(t, list.Codes, 5)
	for _, item := range list.Codes {
		assert.Equal(t, int64(200), item.Points)
		assert.Nil(t, item.UsedBy)

		rc, err := env.uowFactory.NewUnitOfWork(ctx).RechargeCodeRepository().FindOne(ctx, specification.ByID{ID: item.Id})
		require.NoError(t, err)
		assert.Equal(t, admin.Id, rc.CreatedBy)
	}
}

func TestRedeemCode(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	admin := env.seedUser(t, func(u *entity.User) { u.Role = entity.UserRoleAdmin })

	mint := func(t *testing.T, expireDays, pointsExpireDays int) string {
		t.Helper()
		res, err := env.grants.GenerateCodes(ctx, admin.Id, &dto.GenerateCodesRequest{
			Count:            1,
			Points:           150,
			ExpireDays:       expireDays,
			PointsExpireDays: pointsExpireDays,
		})
		require.NoError(t, err)
		return res.Codes[0]
	}

	t.Run("redeems and grants the carried points", func(t *testing.T) {
		user := env.seedUser(t)
		env.seedBatch(t, user.Id, 40, 40, nil, time.Now())
		code := mint(t, 0, 30)

		res, err := env.grants.RedeemCode(ctx, user.Id, code)
		require.NoError(t, err)
		assert.Equal(t, int64(150), res.PointsGranted)
		require.NotNil(t, res.ExpiresAt)
		assert.Equal(t, int64(190), res.ValidPoints)

		// The voucher is claimed by this user
		rc, err := env.uowFactory.NewUnitOfWork(ctx).RechargeCodeRepository().FindOne(ctx, specification.ByCode{Code: code})
		require.NoError(t, err)
		require.NotNil(t, rc.UsedBy)
		assert.Equal(t, user.Id, *rc.UsedBy)
		assert.NotNil(t, rc.UsedAt)
	})

	t.Run("normalizes case and whitespace", func(t *testing.T) {
		user := env.seedUser(t)
		code := mint(t, 0, 0)

		res, err := env.grants.RedeemCode(ctx, user.Id, "  "+strings.ToLower(code)+" ")
		require.NoError(t, err)
		assert.Equal(t, int64(150), res.PointsGranted)
		assert.Nil(t, res.ExpiresAt)
	})

	t.Run("unknown code", func(t *testing.T) {
		user := env.seedUser(t)
		_, err := env.grants.RedeemCode(ctx, user.Id, "PC-NOPE-NOPE-NOPE")
		assert.ErrorIs(t, err, ErrCodeInvalid)
	})

	t.Run("already used code", func(t *testing.T) {
		first := env.seedUser(t)
		second := env.seedUser(t)
		code := mint(t, 0, 0)

		_, err := env.grants.RedeemCode(ctx, first.Id, code)
		require.NoError(t, err)

		_, err = env.grants.RedeemCode(ctx, second.Id, code)
		assert.ErrorIs(t, err, ErrCodeAlreadyUsed)
		assert.Equal(t, int64(0), env.validPoints(t, second.Id))
	})

	t.Run("expired code", func(t *testing.T) {
		user := env.seedUser(t)

		// Mint directly with a past deadline; GenerateCodes cannot backdate.
		stale := &entity.RechargeCode{
			Id:        uuid.New(),
			Code:      "PC-OLD1-OLD2-OLD3",
			Points:    150,
			BatchNo:   "STALE",
			ExpiresAt: timePtr(time.Now().Add(-time.Hour)),
			CreatedBy: admin.Id,
			CreatedAt: time.Now().Add(-48 * time.Hour),
		}
		uow := env.uowFactory.NewUnitOfWork(ctx)
		require.NoError(t, uow.RechargeCodeRepository().Create(ctx, stale))

		_, err := env.grants.RedeemCode(ctx, user.Id, stale.Code)
		assert.ErrorIs(t, err, ErrCodeExpired)
		assert.Equal(t, int64(0), env.validPoints(t, user.Id))
	})
}
