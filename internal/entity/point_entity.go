// FILE: internal/entity/point_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type PointSource string
type PointTransactionType string

const (
	PointSourceRegisterBonus           PointSource = "register_bonus"
	PointSourceReferralInviterRegister PointSource = "referral_inviter_register"
	PointSourceReferralInviteeRegister PointSource = "referral_invitee_register"
	PointSourceReferralInviterUpgrade  PointSource = "referral_inviter_upgrade"
	PointSourceRechargeCode            PointSource = "recharge_code"
	PointSourceAdminGrant              PointSource = "admin_grant"
	PointSourceMigration               PointSource = "migration"

	PointTransactionIncome  PointTransactionType = "income"
	PointTransactionExpense PointTransactionType = "expense"
)

// ExpiringSoonWindow is the horizon used for "expiring soon" badges on
// balances and for the reminder emails.
const ExpiringSoonWindow = 7 * 24 * time.Hour

// PointBatch is a single grant of points. Amount never changes after the
// grant; Remaining is drained by consumption and stays within [0, Amount].
// Batches are never deleted, expired or emptied ones remain for audit.
type PointBatch struct {
	Id         uuid.UUID
	UserId     uuid.UUID
	Amount     int64
	Remaining  int64
	Source     PointSource
	SourceId   *uuid.UUID
	SourceNote string
	ExpiresAt  *time.Time // nil = never expires
	CreatedAt  time.Time
}

func (b *PointBatch) IsExpired(now time.Time) bool {
	return b.ExpiresAt != nil && !b.ExpiresAt.After(now)
}

// IsValid reports whether the batch still contributes to the spendable balance.
func (b *PointBatch) IsValid(now time.Time) bool {
	return b.Remaining > 0 && !b.IsExpired(now)
}

func (b *PointBatch) IsExpiringSoon(now time.Time) bool {
	if b.ExpiresAt == nil || !b.IsValid(now) {
		return false
	}
	return b.ExpiresAt.Before(now.Add(ExpiringSoonWindow))
}

// PointTransaction is one append-only ledger line. Amount is always the
// positive magnitude; Type carries the direction. BalanceAfter is the batch
// remaining right after the change, so replaying a batch's transactions
// reconstructs its remaining exactly.
type PointTransaction struct {
	Id           uuid.UUID
	UserId       uuid.UUID
	Type         PointTransactionType
	Amount       int64
	BalanceAfter int64
	BatchId      *uuid.UUID
	Description  string
	CreatedAt    time.Time
}
