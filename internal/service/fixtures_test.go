package service

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"pagecraft-be/internal/config"
	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/pkg/logger"
	"pagecraft-be/internal/repository/memory"
	"pagecraft-be/internal/repository/specification"
	"pagecraft-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// testEnv wires the ledger services against the in-memory store the same way
// bootstrap wires them against Postgres. Event publishers stay nil; publishing
// is best effort and guarded in every service.
type testEnv struct {
	store      *memory.Store
	uowFactory unitofwork.RepositoryFactory
	cfg        config.PointsConfig
	points     IPointsService
	grants     IGrantService
	referrals  IReferralService
	usage      IUsageService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := memory.NewStore()
	factory := memory.NewFactory(store)
	cfg := config.PointsConfig{
		PointsPerPage:                 10,
		RegisterBonusPoints:           300,
		RegisterBonusExpireDays:       3,
		ReferralInviterRegisterPoints: 100,
		ReferralInviteeRegisterPoints: 100,
		ReferralInviterUpgradePoints:  500,
		ReferralPointsExpireDays:      0,
	}

	log := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "test.log"))
	points := NewPointsService(factory, cfg, nil, log)

	return &testEnv{
		store:      store,
		uowFactory: factory,
		cfg:        cfg,
		points:     points,
		grants:     NewGrantService(factory, cfg, nil, nil),
		referrals:  NewReferralService(factory, cfg, nil),
		usage:      NewUsageService(factory, points, cfg),
	}
}

func (e *testEnv) seedUser(t *testing.T, mutate ...func(*entity.User)) *entity.User {
	t.Helper()

	id := uuid.New()
	user := &entity.User{
		Id:           id,
		Email:        fmt.Sprintf("user-%s@example.com", id.String()[:8]),
		DisplayName:  "Test User",
		Role:         entity.UserRoleUser,
		Tier:         entity.UserTierFree,
		ReferralCode: id.String()[:8],
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	for _, m := range mutate {
		m(user)
	}

	uow := e.uowFactory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.UserRepository().Create(context.Background(), user))
	return user
}

// seedBatch inserts a batch directly, bypassing the grant path, so tests can
// pin exact remaining, expiry and creation times.
func (e *testEnv) seedBatch(t *testing.T, userId uuid.UUID, amount, remaining int64, expiresAt *time.Time, createdAt time.Time) *entity.PointBatch {
	t.Helper()

	batch := &entity.PointBatch{
		Id:        uuid.New(),
		UserId:    userId,
		Amount:    amount,
		Remaining: remaining,
		Source:    entity.PointSourceAdminGrant,
		ExpiresAt: expiresAt,
		CreatedAt: createdAt,
	}
	uow := e.uowFactory.NewUnitOfWork(context.Background())
	require.NoError(t, uow.PointRepository().CreateBatch(context.Background(), batch))
	return batch
}

// grant runs the real income path: batch plus matching ledger line in one
// transaction.
func (e *testEnv) grant(t *testing.T, userId uuid.UUID, points int64, expiresAt *time.Time) *entity.PointBatch {
	t.Helper()

	ctx := context.Background()
	uow := e.uowFactory.NewUnitOfWork(ctx)
	require.NoError(t, uow.Begin(ctx))

	batch, err := grantPoints(ctx, uow, userId, points, entity.PointSourceAdminGrant, nil, "test grant", expiresAt)
	require.NoError(t, err)
	require.NoError(t, uow.Commit())
	return batch
}

func (e *testEnv) validPoints(t *testing.T, userId uuid.UUID) int64 {
	t.Helper()

	valid, err := e.points.GetValidPoints(context.Background(), userId)
	require.NoError(t, err)
	return valid
}

func (e *testEnv) batchById(t *testing.T, id uuid.UUID) *entity.PointBatch {
	t.Helper()

	uow := e.uowFactory.NewUnitOfWork(context.Background())
	batch, err := uow.PointRepository().FindOneBatch(context.Background(), specification.ByID{ID: id})
	require.NoError(t, err)
	require.NotNil(t, batch)
	return batch
}

func timePtr(t time.Time) *time.Time {
	return &t
}
