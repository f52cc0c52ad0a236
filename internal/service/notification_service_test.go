package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"pagecraft-be/internal/dto"
	"pagecraft-be/internal/pkg/logger"
	"pagecraft-be/pkg/events"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDelivery records pushes instead of writing to websockets.
type fakeDelivery struct {
	mu   sync.Mutex
	sent map[uuid.UUID][]dto.PointsPushMessage
}

func newFakeDelivery() *fakeDelivery {
	return &fakeDelivery{sent: map[uuid.UUID][]dto.PointsPushMessage{}}
}

func (f *fakeDelivery) Send(userID uuid.UUID, msg dto.PointsPushMessage) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[userID] = append(f.sent[userID], msg)
}

func (f *fakeDelivery) Broadcast(msg dto.PointsPushMessage) {}

func (f *fakeDelivery) pushesFor(userID uuid.UUID) []dto.PointsPushMessage {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sent[userID]
}

func newNotifier(t *testing.T, env *testEnv) (*NotificationService, *fakeDelivery) {
	t.Helper()
	delivery := newFakeDelivery()
	log := logger.NewIsolatedLogger(filepath.Join(t.TempDir(), "notify.log"))
	return NewNotificationService(env.uowFactory, nil, delivery, log), delivery
}

func TestHandleEventPushesFreshBalance(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	notifier, delivery := newNotifier(t, env)

	user := env.seedUser(t)
	env.grant(t, user.Id, 120, nil)

	// Subject-style type with a stale remaining in the payload; the push must
	// carry the ledger's answer, not the payload's.
	err := notifier.handleEvent(ctx, events.BaseEvent{
		Type: "points.granted",
		Data: map[string]interface{}{
			"user_id":   user.Id.String(),
			"points":    float64(120),
			"remaining": float64(999),
		},
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	pushes := delivery.pushesFor(user.Id)
	require.Len(t, pushes, 1)
	assert.Equal(t, "granted", pushes[0].Event)
	assert.Equal(t, user.Id, pushes[0].UserId)
	assert.Equal(t, int64(120), pushes[0].ValidPoints)
	assert.Equal(t, float64(120), pushes[0].Detail["points"])
}

func TestHandleEventReferralPushesBothParties(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	notifier, delivery := newNotifier(t, env)

	inviter := env.seedUser(t)
	invitee := env.seedUser(t)
	env.grant(t, inviter.Id, 100, nil)
	env.grant(t, invitee.Id, 100, nil)

	// In-process events carry uuid.UUID values rather than strings
	err := notifier.handleEvent(ctx, events.BaseEvent{
		Type: events.TypeReferralRewarded,
		Data: map[string]interface{}{
			"inviter_id": inviter.Id,
			"invitee_id": invitee.Id,
			"points":     int64(100),
		},
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	require.Len(t, delivery.pushesFor(inviter.Id), 1)
	require.Len(t, delivery.pushesFor(invitee.Id), 1)
	assert.Equal(t, "referral_rewarded", delivery.pushesFor(inviter.Id)[0].Event)
	assert.Equal(t, int64(100), delivery.pushesFor(inviter.Id)[0].ValidPoints)
}

func TestHandleEventWithoutRecipientIsDropped(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	notifier, delivery := newNotifier(t, env)

	// No recipient field at all: swallow, do not ask NATS to redeliver
	err := notifier.handleEvent(ctx, events.BaseEvent{
		Type:       "points.consumed",
		Data:       map[string]interface{}{"amount": float64(10)},
		OccurredAt: time.Now(),
	})
	require.NoError(t, err)

	delivery.mu.Lock()
	defer delivery.mu.Unlock()
	assert.Empty(t, delivery.sent)
}

func TestPayloadUUID(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name   string
		value  interface{}
		wantOk bool
	}{
		{"string form after a NATS round trip", id.String(), true},
		{"uuid form in process", id, true},
		{"garbage string", "not-a-uuid", false},
		{"wrong type", 42, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := payloadUUID(map[string]interface{}{"user_id": tt.value}, "user_id")
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Equal(t, id, got)
			}
		})
	}

	t.Run("absent key", func(t *testing.T) {
		_, ok := payloadUUID(map[string]interface{}{}, "user_id")
		assert.False(t, ok)
	})
}
