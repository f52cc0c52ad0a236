package entity

import (
	"time"

	"github.com/google/uuid"
)

type ReferralRewardType string

const (
	ReferralRewardInviterRegister ReferralRewardType = "inviter_register"
	ReferralRewardInviteeRegister ReferralRewardType = "invitee_register"
	ReferralRewardInviterUpgrade  ReferralRewardType = "inviter_upgrade"
)

// ReferralRecord links an invitee to the inviter whose code they registered
// with. The Rewarded flags are the idempotency guard: each reward is granted
// at most once per record.
type ReferralRecord struct {
	Id                      uuid.UUID
	InviterId               uuid.UUID
	InviteeId               uuid.UUID
	Code                    string
	InviterRegisterRewarded bool
	InviteeRegisterRewarded bool
	InviterUpgradeRewarded  bool
	CreatedAt               time.Time
}
