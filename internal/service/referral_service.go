// FILE: internal/service/referral_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"pagecraft-be/internal/config"
	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"
	"pagecraft-be/internal/repository/unitofwork"
	"pagecraft-be/pkg/events"
	pktNats "pagecraft-be/pkg/nats"

	"github.com/google/uuid"
)

type IReferralService interface {
	// ProcessRegistration links a fresh account to the inviter whose code it
	// registered with and grants both register rewards. An unknown or
	// self-owned code is ignored so registration never fails on it.
	ProcessRegistration(ctx context.Context, inviteeId uuid.UUID, inviteeEmail string, referralCode string) error

	// ProcessUpgradeReward grants the inviter's upgrade reward the first time
	// the invitee pays. Later payments are no-ops.
	ProcessUpgradeReward(ctx context.Context, inviteeId uuid.UUID) error
}

type referralService struct {
	uowFactory     unitofwork.RepositoryFactory
	cfg            config.PointsConfig
	eventPublisher *pktNats.Publisher
}

func NewReferralService(uowFactory unitofwork.RepositoryFactory, cfg config.PointsConfig, eventPublisher *pktNats.Publisher) IReferralService {
	return &referralService{
		uowFactory:     uowFactory,
		cfg:            cfg,
		eventPublisher: eventPublisher,
	}
}

func (s *referralService) publishRewarded(ctx context.Context, record *entity.ReferralRecord, reward entity.ReferralRewardType, points int64) {
	if s.eventPublisher == nil {
		return
	}
	event := events.BaseEvent{
		Type: events.TypeReferralRewarded,
		Data: map[string]interface{}{
			"record_id":  record.Id,
			"inviter_id": record.InviterId,
			"invitee_id": record.InviteeId,
			"reward":     string(reward),
			"points":     points,
		},
		OccurredAt: time.Now(),
	}
	if err := s.eventPublisher.Publish(ctx, event); err != nil {
		fmt.Printf("[WARN] Failed to publish referral rewarded event: %v\n", err)
	}
}

func (s *referralService) ProcessRegistration(ctx context.Context, inviteeId uuid.UUID, inviteeEmail string, referralCode string) error {
	if referralCode == "" {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	// 1. Resolve the code to its owner
	inviter, err := uow.UserRepository().FindOne(ctx, specification.ByReferralCode{Code: referralCode})
	if err != nil {
		return err
	}
	if inviter == nil || inviter.Id == inviteeId {
		// Unknown code or someone pasting their own. Not an error.
		return nil
	}

	// 2. One referral record per invitee, ever
	existing, err := uow.ReferralRepository().FindOne(ctx, specification.ByInviteeID{InviteeID: inviteeId})
	if err != nil {
		return err
	}
	if existing != nil {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	record := &entity.ReferralRecord{
		Id:        uuid.New(),
		InviterId: inviter.Id,
		InviteeId: inviteeId,
		Code:      referralCode,
		CreatedAt: time.Now(),
	}
	if err := uow.ReferralRepository().Create(ctx, record); err != nil {
		return err
	}

	expiry := expiryFromDays(time.Now(), s.cfg.ReferralPointsExpireDays)

	// 3. Reward both sides, flags set in the same transaction as the grants
	if s.cfg.ReferralInviterRegisterPoints > 0 {
		_, err := grantPoints(ctx, uow, inviter.Id,
			s.cfg.ReferralInviterRegisterPoints,
			entity.PointSourceReferralInviterRegister,
			&record.Id,
			fmt.Sprintf("referral reward: invited %s", inviteeEmail),
			expiry,
		)
		if err != nil {
			return err
		}
		if err := uow.ReferralRepository().MarkRewarded(ctx, record.Id, entity.ReferralRewardInviterRegister); err != nil {
			return err
		}
	}

	if s.cfg.ReferralInviteeRegisterPoints > 0 {
		_, err := grantPoints(ctx, uow, inviteeId,
			s.cfg.ReferralInviteeRegisterPoints,
			entity.PointSourceReferralInviteeRegister,
			&record.Id,
			fmt.Sprintf("referral bonus: joined with code %s", referralCode),
			expiry,
		)
		if err != nil {
			return err
		}
		if err := uow.ReferralRepository().MarkRewarded(ctx, record.Id, entity.ReferralRewardInviteeRegister); err != nil {
			return err
		}
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.publishRewarded(ctx, record, entity.ReferralRewardInviterRegister, s.cfg.ReferralInviterRegisterPoints)
	return nil
}

func (s *referralService) ProcessUpgradeReward(ctx context.Context, inviteeId uuid.UUID) error {
	if s.cfg.ReferralInviterUpgradePoints <= 0 {
		return nil
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)

	record, err := uow.ReferralRepository().FindOne(ctx, specification.ByInviteeID{InviteeID: inviteeId})
	if err != nil {
		return err
	}
	if record == nil || record.InviterUpgradeRewarded {
		return nil
	}

	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	_, err = grantPoints(ctx, uow, record.InviterId,
		s.cfg.ReferralInviterUpgradePoints,
		entity.PointSourceReferralInviterUpgrade,
		&record.Id,
		"referral reward: invitee upgraded to premium",
		expiryFromDays(time.Now(), s.cfg.ReferralPointsExpireDays),
	)
	if err != nil {
		return err
	}

	if err := uow.ReferralRepository().MarkRewarded(ctx, record.Id, entity.ReferralRewardInviterUpgrade); err != nil {
		return err
	}

	if err := uow.Commit(); err != nil {
		return err
	}

	s.publishRewarded(ctx, record, entity.ReferralRewardInviterUpgrade, s.cfg.ReferralInviterUpgradePoints)
	return nil
}
