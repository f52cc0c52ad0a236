package service

import (
	"context"
	"testing"
	"time"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsUsingSystemCredits(t *testing.T) {
	env := newTestEnv(t)
	key := "sk-user-key"

	tests := []struct {
		name string
		user entity.User
		want bool
	}{
		{"regular user", entity.User{Role: entity.UserRoleUser}, true},
		{"user with own key", entity.User{Role: entity.UserRoleUser, ProviderAPIKey: &key}, false},
		{"admin", entity.User{Role: entity.UserRoleAdmin}, true},
		{"admin with own key still on system", entity.User{Role: entity.UserRoleAdmin, ProviderAPIKey: &key}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, env.usage.IsUsingSystemCredits(&tt.user))
		})
	}
}

func TestCheckQuota(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("admin is unlimited", func(t *testing.T) {
		admin := env.seedUser(t, func(u *entity.User) { u.Role = entity.UserRoleAdmin })

		res, err := env.usage.CheckQuota(ctx, admin.Id, 1000)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, UnlimitedPoints, res.ValidPoints)
		assert.Equal(t, int64(10000), res.RequiredPoints)
	})

	t.Run("own key is unlimited", func(t *testing.T) {
		key := "sk-own"
		user := env.seedUser(t, func(u *entity.User) { u.ProviderAPIKey = &key })

		res, err := env.usage.CheckQuota(ctx, user.Id, 5)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, UnlimitedPoints, res.ValidPoints)
	})

	t.Run("ledger user against balance", func(t *testing.T) {
		user := env.seedUser(t)
		env.seedBatch(t, user.Id, 25, 25, nil, time.Now())

		res, err := env.usage.CheckQuota(ctx, user.Id, 2)
		require.NoError(t, err)
		assert.True(t, res.Allowed)
		assert.Equal(t, int64(20), res.RequiredPoints)
		assert.Equal(t, int64(25), res.ValidPoints)

		res, err = env.usage.CheckQuota(ctx, user.Id, 3)
		require.NoError(t, err)
		assert.False(t, res.Allowed)
		assert.Equal(t, ErrInsufficientPoints.Error(), res.Reason)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := env.usage.CheckQuota(ctx, uuid.New(), 1)
		require.Error(t, err)
	})
}

func TestConsumeAndRecordBillsLedgerUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t)
	env.seedBatch(t, user.Id, 100, 100, nil, time.Now())

	res, err := env.usage.ConsumeAndRecord(ctx, user.Id, 3, "page generation", map[string]interface{}{
		"job_id": "j-1",
	})
	require.NoError(t, err)
	require.True(t, res.Ok)
	assert.Equal(t, int64(30), res.PointsCharged)
	assert.Equal(t, int64(70), res.RemainingValid)
	assert.Equal(t, int64(70), env.validPoints(t, user.Id))

	records, err := env.uowFactory.NewUnitOfWork(ctx).UsageRepository().FindAll(ctx, specification.UserOwnedBy{UserID: user.Id})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(3), records[0].Units)
	assert.Equal(t, int64(30), records[0].PointsCharged)
	assert.True(t, records[0].UsedSystemCredits)
	assert.Equal(t, "j-1", records[0].Metadata["job_id"])
}

func TestConsumeAndRecordExemptUsers(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	t.Run("admin is metered but never charged", func(t *testing.T) {
		admin := env.seedUser(t, func(u *entity.User) { u.Role = entity.UserRoleAdmin })
		env.seedBatch(t, admin.Id, 50, 50, nil, time.Now())

		res, err := env.usage.ConsumeAndRecord(ctx, admin.Id, 2, "admin render", nil)
		require.NoError(t, err)
		assert.True(t, res.Ok)
		assert.Equal(t, int64(0), res.PointsCharged)

		// Balance untouched, usage row written
		assert.Equal(t, int64(50), env.validPoints(t, admin.Id))
		records, err := env.uowFactory.NewUnitOfWork(ctx).UsageRepository().FindAll(ctx, specification.UserOwnedBy{UserID: admin.Id})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.True(t, records[0].UsedSystemCredits)
	})

	t.Run("own key user is metered but never charged", func(t *testing.T) {
		key := "sk-own"
		user := env.seedUser(t, func(u *entity.User) { u.ProviderAPIKey = &key })
		env.seedBatch(t, user.Id, 50, 50, nil, time.Now())

		res, err := env.usage.ConsumeAndRecord(ctx, user.Id, 4, "byo render", nil)
		require.NoError(t, err)
		assert.True(t, res.Ok)
		assert.Equal(t, int64(0), res.PointsCharged)

		assert.Equal(t, int64(50), env.validPoints(t, user.Id))
		records, err := env.uowFactory.NewUnitOfWork(ctx).UsageRepository().FindAll(ctx, specification.UserOwnedBy{UserID: user.Id})
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.False(t, records[0].UsedSystemCredits)
		assert.Equal(t, int64(4), records[0].Units)
	})
}

func TestConsumeAndRecordInsufficientStillMeters(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t)
	env.seedBatch(t, user.Id, 10, 10, nil, time.Now())

	res, err := env.usage.ConsumeAndRecord(ctx, user.Id, 5, "big job", nil)
	require.NoError(t, err)
	assert.False(t, res.Ok)
	assert.Equal(t, int64(0), res.PointsCharged)
	assert.Equal(t, int64(10), env.validPoints(t, user.Id))

	// The row records the attempt even though billing refused it
	records, err := env.uowFactory.NewUnitOfWork(ctx).UsageRepository().FindAll(ctx, specification.UserOwnedBy{UserID: user.Id})
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, int64(5), records[0].Units)
	assert.Equal(t, int64(0), records[0].PointsCharged)
}

func TestConsumeAndRecordZeroUnits(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	user := env.seedUser(t)
	env.seedBatch(t, user.Id, 10, 10, nil, time.Now())

	res, err := env.usage.ConsumeAndRecord(ctx, user.Id, 0, "nothing done", nil)
	require.NoError(t, err)
	assert.True(t, res.Ok)
	assert.Equal(t, int64(0), res.PointsCharged)
	assert.Equal(t, int64(10), env.validPoints(t, user.Id))
}
