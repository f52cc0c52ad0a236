// FILE: internal/service/notification_service.go
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"pagecraft-be/internal/dto"
	"pagecraft-be/internal/pkg/logger"
	"pagecraft-be/internal/repository/unitofwork"
	"pagecraft-be/pkg/events"
	pktNats "pagecraft-be/pkg/nats" // Renamed to avoid collision

	"github.com/google/uuid"
)

// NotificationDelivery defines how to push real-time balance updates.
// Typically implemented by the WebSocket Hub.
type NotificationDelivery interface {
	Send(userID uuid.UUID, msg dto.PointsPushMessage)
	Broadcast(msg dto.PointsPushMessage)
}

// NotificationService bridges ledger events to connected websocket clients.
// It keeps no inbox: pushes are ephemeral, the ledger itself is the history.
type NotificationService struct {
	uowFactory unitofwork.RepositoryFactory
	subscriber *pktNats.Subscriber
	delivery   NotificationDelivery
	logger     logger.ILogger
}

func NewNotificationService(uowFactory unitofwork.RepositoryFactory, sub *pktNats.Subscriber, delivery NotificationDelivery, log logger.ILogger) *NotificationService {
	return &NotificationService{
		uowFactory: uowFactory,
		subscriber: sub,
		delivery:   delivery,
		logger:     log,
	}
}

// Start begins listening to the event bus.
func (s *NotificationService) Start() {
	// Subscribe to all ledger events with a durable consumer
	err := s.subscriber.Subscribe("points.>", "points-notifier-worker", s.handleEvent)
	if err != nil {
		s.logger.Error("NotificationService", "Failed to start notification subscriber", map[string]interface{}{"error": err})
		return
	}
	s.logger.Info("NotificationService", "Notification service started, listening to points.>", nil)
}

func (s *NotificationService) handleEvent(ctx context.Context, event events.Event) error {
	s.logger.Info("NotificationService", fmt.Sprintf("Processing event: %s", event.EventType()), map[string]interface{}{"type": event.EventType()})

	// Strip "points." prefix from type if present (NATS subject includes the stream prefix)
	typeCode := strings.TrimPrefix(event.EventType(), "points.")

	// 1. Resolve Recipients
	recipients := s.resolveRecipients(event)
	if len(recipients) == 0 {
		s.logger.Warn("NotificationService", fmt.Sprintf("No recipient found in payload for event %s", event.EventType()), nil)
		return nil // Malformed payload will not improve on redelivery
	}

	// 2. Push Per Recipient
	for _, userID := range recipients {
		msg, err := s.buildPush(ctx, userID, typeCode, event)
		if err != nil {
			s.logger.Error("NotificationService", fmt.Sprintf("Error building push for user %s", userID), map[string]interface{}{"error": err})
			return err // NATS will retry if we return error
		}

		if s.delivery != nil {
			s.delivery.Send(userID, msg)
		}
	}

	return nil
}

// resolveRecipients extracts the users whose balance the event touched.
func (s *NotificationService) resolveRecipients(event events.Event) []uuid.UUID {
	payload := event.Payload()
	var userIDs []uuid.UUID

	// Most events carry the owner directly.
	if uid, ok := payloadUUID(payload, "user_id"); ok {
		userIDs = append(userIDs, uid)
	}

	// Referral rewards move two balances at once.
	if uid, ok := payloadUUID(payload, "inviter_id"); ok {
		userIDs = append(userIDs, uid)
	}
	if uid, ok := payloadUUID(payload, "invitee_id"); ok {
		userIDs = append(userIDs, uid)
	}

	return userIDs
}

func (s *NotificationService) buildPush(ctx context.Context, userID uuid.UUID, typeCode string, event events.Event) (dto.PointsPushMessage, error) {
	// Recompute the balance from the ledger instead of trusting payload
	// arithmetic; the event may arrive after the balance moved again.
	uow := s.uowFactory.NewUnitOfWork(ctx)
	valid, err := uow.PointRepository().SumValidRemaining(ctx, userID, time.Now())
	if err != nil {
		return dto.PointsPushMessage{}, err
	}

	return dto.PointsPushMessage{
		Event:       typeCode,
		UserId:      userID,
		ValidPoints: valid,
		Detail:      event.Payload(),
		OccurredAt:  event.Timestamp(),
	}, nil
}

// payloadUUID reads a UUID field from an event payload. Values arrive as
// strings after the NATS round trip but are uuid.UUID when handled in-process.
func payloadUUID(payload map[string]interface{}, key string) (uuid.UUID, bool) {
	switch v := payload[key].(type) {
	case string:
		id, err := uuid.Parse(v)
		return id, err == nil
	case uuid.UUID:
		return v, true
	}
	return uuid.Nil, false
}
