// FILE: internal/entity/recharge_code_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

// RechargeCode is a one-shot voucher. The code itself can carry a redemption
// deadline (ExpiresAt); PointsExpireDays controls how long the granted batch
// lives after redemption. The two are independent.
type RechargeCode struct {
	Id               uuid.UUID
	Code             string
	Points           int64
	BatchNo          string // generation batch label, set by the admin run that minted the code
	ExpiresAt        *time.Time
	PointsExpireDays int // <= 0 means the granted points never expire
	UsedBy           *uuid.UUID
	UsedAt           *time.Time
	CreatedBy        uuid.UUID
	CreatedAt        time.Time
}

func (c *RechargeCode) IsRedeemed() bool {
	return c.UsedAt != nil
}

func (c *RechargeCode) IsExpired(now time.Time) bool {
	return c.ExpiresAt != nil && !c.ExpiresAt.After(now)
}
