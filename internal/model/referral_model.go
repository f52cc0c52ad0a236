package model

import (
	"time"

	"github.com/google/uuid"
)

type ReferralRecord struct {
	Id                      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	InviterId               uuid.UUID `gorm:"type:uuid;not null;index"`
	InviteeId               uuid.UUID `gorm:"type:uuid;not null;uniqueIndex"`
	Code                    string    `gorm:"type:varchar(32);not null"`
	InviterRegisterRewarded bool      `gorm:"default:false"`
	InviteeRegisterRewarded bool      `gorm:"default:false"`
	InviterUpgradeRewarded  bool      `gorm:"default:false"`
	CreatedAt               time.Time `gorm:"default:now();not null"`
}

func (ReferralRecord) TableName() string {
	return "referral_records"
}
