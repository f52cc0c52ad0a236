package service

import (
	"context"
	"testing"
	"time"

	"pagecraft-be/internal/dto"
	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"
	"pagecraft-be/pkg/renderer"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testTopic = "TEST_RENDER_JOBS"

// renderPipeline is the generation side wired to a worker over an in-process
// queue, exactly as bootstrap does it.
type renderPipeline struct {
	pubSub      *gochannel.GoChannel
	generations IGenerationService
	worker      IRenderWorkerService
}

func newRenderPipeline(t *testing.T, env *testEnv, persistent bool) *renderPipeline {
	t.Helper()

	pubSub := gochannel.NewGoChannel(
		gochannel.Config{Persistent: persistent},
		watermill.NewStdLogger(false, false),
	)
	t.Cleanup(func() { pubSub.Close() })

	publisher := NewPublisherService(pubSub, testTopic)
	return &renderPipeline{
		pubSub:      pubSub,
		generations: NewGenerationService(env.uowFactory, publisher, env.usage),
		worker:      NewRenderWorkerService(pubSub, testTopic, env.uowFactory, env.usage, renderer.NewLocalRenderer(time.Millisecond)),
	}
}

func TestRenderWorkerCompletesFundedJobs(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipe := newRenderPipeline(t, env, false)
	require.NoError(t, pipe.worker.Consume(ctx))
	time.Sleep(50 * time.Millisecond) // let the subscription attach

	user := env.seedUser(t)
	env.seedBatch(t, user.Id, 100, 100, nil, time.Now())

	res, err := pipe.generations.Create(ctx, user.Id, &dto.GenerateRequest{Pages: 2, Description: "landing page"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.GenerationStatusQueued), res.Status)

	require.Eventually(t, func() bool {
		job, err := pipe.generations.Show(ctx, user.Id, res.JobId)
		return err == nil && job.Status == string(entity.GenerationStatusCompleted)
	}, 5*time.Second, 20*time.Millisecond, "job never completed")

	job, err := pipe.generations.Show(ctx, user.Id, res.JobId)
	require.NoError(t, err)
	assert.Equal(t, 2, job.PagesCompleted)

	// Two pages at 10 points each
	assert.Equal(t, int64(80), env.validPoints(t, user.Id))

	records, err := env.uowFactory.NewUnitOfWork(ctx).UsageRepository().FindAll(ctx, specification.UserOwnedBy{UserID: user.Id})
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, int64(1), rec.Units)
		assert.Equal(t, int64(10), rec.PointsCharged)
	}
}

func TestRenderWorkerStopsWhenBalanceRunsOut(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistent queue: the job is published before the worker starts, so the
	// balance can be drained in between.
	pipe := newRenderPipeline(t, env, true)

	user := env.seedUser(t)
	env.seedBatch(t, user.Id, 30, 30, nil, time.Now())

	res, err := pipe.generations.Create(ctx, user.Id, &dto.GenerateRequest{Pages: 3, Description: "big site"})
	require.NoError(t, err)

	// Something else spends 15 points while the job sits in the queue
	spent, err := env.points.Consume(ctx, user.Id, 15, "competing spend")
	require.NoError(t, err)
	require.True(t, spent.Ok)

	require.NoError(t, pipe.worker.Consume(ctx))

	require.Eventually(t, func() bool {
		job, err := pipe.generations.Show(ctx, user.Id, res.JobId)
		return err == nil && job.Status == string(entity.GenerationStatusInsufficientPoints)
	}, 5*time.Second, 20*time.Millisecond, "job never stopped on balance")

	job, err := pipe.generations.Show(ctx, user.Id, res.JobId)
	require.NoError(t, err)

	// 15 points funded one page; the second page was refused before rendering
	assert.Equal(t, 1, job.PagesCompleted)
	assert.Equal(t, int64(5), env.validPoints(t, user.Id))

	records, err := env.uowFactory.NewUnitOfWork(ctx).UsageRepository().FindAll(ctx, specification.UserOwnedBy{UserID: user.Id})
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestRenderWorkerOwnKeyUserIsNotCharged(t *testing.T) {
	env := newTestEnv(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pipe := newRenderPipeline(t, env, false)
	require.NoError(t, pipe.worker.Consume(ctx))
	time.Sleep(50 * time.Millisecond)

	key := "sk-own-key"
	user := env.seedUser(t, func(u *entity.User) { u.ProviderAPIKey = &key })

	// No points at all; the job still runs on the user's key
	res, err := pipe.generations.Create(ctx, user.Id, &dto.GenerateRequest{Pages: 2, Description: "byo"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		job, err := pipe.generations.Show(ctx, user.Id, res.JobId)
		return err == nil && job.Status == string(entity.GenerationStatusCompleted)
	}, 5*time.Second, 20*time.Millisecond, "byo job never completed")

	assert.Equal(t, int64(0), env.validPoints(t, user.Id))

	records, err := env.uowFactory.NewUnitOfWork(ctx).UsageRepository().FindAll(ctx, specification.UserOwnedBy{UserID: user.Id})
	require.NoError(t, err)
	require.Len(t, records, 2)
	for _, rec := range records {
		assert.Equal(t, int64(0), rec.PointsCharged)
		assert.False(t, rec.UsedSystemCredits)
	}
}

func TestGenerationCreateRefusesUnpayableJobs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	pipe := newRenderPipeline(t, env, false)

	user := env.seedUser(t)
	env.seedBatch(t, user.Id, 15, 15, nil, time.Now())

	_, err := pipe.generations.Create(ctx, user.Id, &dto.GenerateRequest{Pages: 2, Description: "too big"})
	assert.ErrorIs(t, err, ErrInsufficientPoints)

	// Nothing was queued
	count, err := env.uowFactory.NewUnitOfWork(ctx).GenerationRepository().Count(ctx, specification.UserOwnedBy{UserID: user.Id})
	require.NoError(t, err)
	assert.Equal(t, int64(0), count)
}
