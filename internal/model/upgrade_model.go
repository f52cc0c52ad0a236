package model

import (
	"time"

	"github.com/google/uuid"
)

// UpgradeOrder's id doubles as the Midtrans order id, so webhook
// notifications can be matched without a lookup table.
type UpgradeOrder struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	Amount    int64     `gorm:"not null"`
	Status    string    `gorm:"type:varchar(50);default:'pending';not null"`
	SnapToken string    `gorm:"type:text"`
	PaidAt    *time.Time
	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (UpgradeOrder) TableName() string {
	return "upgrade_orders"
}
