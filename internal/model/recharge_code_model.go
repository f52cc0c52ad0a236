package model

import (
	"time"

	"github.com/google/uuid"
)

type RechargeCode struct {
	Id               uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Code             string     `gorm:"type:varchar(64);uniqueIndex;not null"`
	Points           int64      `gorm:"not null"`
	BatchNo          string     `gorm:"type:varchar(64);index"`
	ExpiresAt        *time.Time
	PointsExpireDays int        `gorm:"default:0"`
	UsedBy           *uuid.UUID `gorm:"type:uuid;index"`
	UsedAt           *time.Time
	CreatedBy        uuid.UUID  `gorm:"type:uuid;not null"`
	CreatedAt        time.Time  `gorm:"default:now();not null"`
}

func (RechargeCode) TableName() string {
	return "recharge_codes"
}
