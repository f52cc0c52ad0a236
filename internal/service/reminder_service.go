// FILE: internal/service/reminder_service.go
package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/pkg/mailer"
	"pagecraft-be/internal/repository/specification"
	"pagecraft-be/internal/repository/unitofwork"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

type IReminderService interface {
	// Start launches the daily scan loop. It returns immediately.
	Start(ctx context.Context)

	// RunOnce performs a single scan and returns how many reminders went out.
	RunOnce(ctx context.Context) (int, error)
}

type reminderService struct {
	uowFactory   unitofwork.RepositoryFactory
	emailService mailer.IEmailService
	interval     time.Duration
	// sent dedupes reminders: one per user per calendar day, even when the
	// scan runs more often.
	sent *cache.Cache
}

func NewReminderService(uowFactory unitofwork.RepositoryFactory, emailService mailer.IEmailService) IReminderService {
	return &reminderService{
		uowFactory:   uowFactory,
		emailService: emailService,
		interval:     24 * time.Hour,
		sent:         cache.New(48*time.Hour, time.Hour),
	}
}

func (s *reminderService) Start(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if _, err := s.RunOnce(ctx); err != nil {
					log.Printf("[ERROR] Expiry reminder scan failed: %v", err)
				}
			}
		}
	}()
}

type expiringTotal struct {
	points   int64
	earliest time.Time
}

func (s *reminderService) RunOnce(ctx context.Context) (int, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	now := time.Now()

	batches, err := uow.PointRepository().FindBatches(ctx,
		specification.ExpiringWithin{Now: now, Window: entity.ExpiringSoonWindow},
	)
	if err != nil {
		return 0, err
	}
	if len(batches) == 0 {
		return 0, nil
	}

	perUser := make(map[uuid.UUID]*expiringTotal)
	for _, b := range batches {
		agg, ok := perUser[b.UserId]
		if !ok {
			agg = &expiringTotal{earliest: *b.ExpiresAt}
			perUser[b.UserId] = agg
		}
		agg.points += b.Remaining
		if b.ExpiresAt.Before(agg.earliest) {
			agg.earliest = *b.ExpiresAt
		}
	}

	userIds := make([]uuid.UUID, 0, len(perUser))
	for id := range perUser {
		userIds = append(userIds, id)
	}
	users, err := uow.UserRepository().FindAll(ctx, specification.ByIDs{IDs: userIds})
	if err != nil {
		return 0, err
	}

	sent := 0
	day := now.Format("2006-01-02")
	for _, user := range users {
		agg := perUser[user.Id]
		if agg == nil {
			continue
		}

		key := fmt.Sprintf("%s:%s", user.Id, day)
		if _, already := s.sent.Get(key); already {
			continue
		}

		if err := s.emailService.SendExpiryReminder(user.Email, agg.points, daysUntil(now, agg.earliest)); err != nil {
			// Next scan retries; the dedup key is only set on success.
			continue
		}
		s.sent.Set(key, true, cache.DefaultExpiration)
		sent++
	}

	return sent, nil
}
