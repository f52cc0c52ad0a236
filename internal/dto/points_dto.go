// FILE: internal/dto/points_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Balance DTOs ---

// BalanceStatusResponse is returned by GET /api/points.
type BalanceStatusResponse struct {
	ValidPoints      int64                `json:"valid_points"`
	Tier             string               `json:"tier"`
	IsAdmin          bool                 `json:"is_admin"`
	ExpiringSoon     *ExpiringSoonSummary `json:"expiring_soon,omitempty"`
	PointsPerPage    int64                `json:"points_per_page"`
	CanGeneratePages int64                `json:"can_generate_pages"`
}

// ExpiringSoonSummary aggregates the batches that will lapse within the
// horizon. Absent from the response when nothing qualifies.
type ExpiringSoonSummary struct {
	Points         int64     `json:"points"`
	Days           int       `json:"days"` // days until the earliest expiry, rounded up
	EarliestExpire time.Time `json:"earliest_expire"`
}

// BalanceItem is one point batch as shown to the user. With include_expired,
// drained and expired batches stay listed so the history adds up.
type BalanceItem struct {
	Id             uuid.UUID  `json:"id"`
	Amount         int64      `json:"amount"`
	Remaining      int64      `json:"remaining"`
	Source         string     `json:"source"`
	SourceNote     string     `json:"source_note,omitempty"`
	ExpiresAt      *time.Time `json:"expires_at"` // null = never expires
	IsExpired      bool       `json:"is_expired"`
	IsExpiringSoon bool       `json:"is_expiring_soon"`
	CreatedAt      time.Time  `json:"created_at"`
}

type BalanceListResponse struct {
	Balances    []BalanceItem `json:"balances"`
	ValidPoints int64         `json:"valid_points"`
}

// --- Transaction DTOs ---

type TransactionItem struct {
	Id           uuid.UUID  `json:"id"`
	Type         string     `json:"type"` // income | expense
	Amount       int64      `json:"amount"`
	BalanceAfter int64      `json:"balance_after"`
	BatchId      *uuid.UUID `json:"batch_id,omitempty"`
	Description  string     `json:"description"`
	CreatedAt    time.Time  `json:"created_at"`
}

type TransactionListResponse struct {
	Transactions []TransactionItem `json:"transactions"`
	Total        int64             `json:"total"`
	Page         int               `json:"page"`
	PerPage      int               `json:"per_page"`
}

// --- Config DTOs ---

// PointsConfigResponse exposes the pricing knobs the frontend needs to
// render cost hints. Returned by GET /api/points/config.
type PointsConfigResponse struct {
	PointsPerPage                 int64 `json:"points_per_page"`
	RegisterBonusPoints           int64 `json:"register_bonus_points"`
	RegisterBonusExpireDays       int   `json:"register_bonus_expire_days"`
	ReferralInviterRegisterPoints int64 `json:"referral_inviter_register_points"`
	ReferralInviteeRegisterPoints int64 `json:"referral_invitee_register_points"`
	ReferralInviterUpgradePoints  int64 `json:"referral_inviter_upgrade_points"`
}

// --- Redeem DTOs ---

type RedeemRequest struct {
	Code string `json:"code" validate:"required,min=4,max=64"`
}

type RedeemResponse struct {
	PointsGranted int64      `json:"points_granted"`
	ExpiresAt     *time.Time `json:"expires_at"` // null = never expires
	ValidPoints   int64      `json:"valid_points"`
}

// --- Consumption DTOs ---

// ConsumeResult reports the outcome of a deduction attempt. Ok=false is a
// business outcome (not enough points), not a transport error.
type ConsumeResult struct {
	Ok             bool   `json:"ok"`
	PointsCharged  int64  `json:"points_charged"`
	RemainingValid int64  `json:"remaining_valid"`
	Message        string `json:"message,omitempty"`
}

// QuotaCheckResponse is the advisory pre-check. It can go stale immediately;
// the deduction itself stays authoritative.
type QuotaCheckResponse struct {
	Allowed        bool   `json:"allowed"`
	RequiredPoints int64  `json:"required_points"`
	ValidPoints    int64  `json:"valid_points"`
	Reason         string `json:"reason,omitempty"`
}

// --- Realtime DTOs ---

// PointsPushMessage is pushed over the websocket whenever a user's balance
// changes, so the frontend can refresh without polling.
type PointsPushMessage struct {
	Event       string                 `json:"event"` // granted | consumed | code_redeemed | ...
	UserId      uuid.UUID              `json:"user_id"`
	ValidPoints int64                  `json:"valid_points"`
	Detail      map[string]interface{} `json:"detail,omitempty"`
	OccurredAt  time.Time              `json:"occurred_at"`
}
