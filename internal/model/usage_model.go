package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type UsageRecord struct {
	Id                uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId            uuid.UUID      `gorm:"type:uuid;not null;index"`
	Units             int64          `gorm:"not null"`
	PointsCharged     int64          `gorm:"not null"`
	UsedSystemCredits bool           `gorm:"default:true"`
	Description       string         `gorm:"type:text"`
	Metadata          datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt         time.Time      `gorm:"default:now();not null"`
}

func (UsageRecord) TableName() string {
	return "usage_records"
}
