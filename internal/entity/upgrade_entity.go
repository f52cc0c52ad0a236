package entity

import (
	"time"

	"github.com/google/uuid"
)

type UpgradeOrderStatus string

const (
	UpgradeOrderPending UpgradeOrderStatus = "pending"
	UpgradeOrderPaid    UpgradeOrderStatus = "paid"
	UpgradeOrderFailed  UpgradeOrderStatus = "failed"
)

// UpgradeOrder is a one-time premium upgrade purchase. The order Id doubles
// as the Midtrans order id, so the webhook can find it back.
type UpgradeOrder struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Amount    int64 // gross amount in IDR
	Status    UpgradeOrderStatus
	SnapToken string
	PaidAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
