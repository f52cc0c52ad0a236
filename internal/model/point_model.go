package model

import (
	"time"

	"github.com/google/uuid"
)

type PointBatch struct {
	Id         uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId     uuid.UUID  `gorm:"type:uuid;not null;index:idx_point_batches_user"`
	Amount     int64      `gorm:"not null"`
	Remaining  int64      `gorm:"not null"`
	Source     string     `gorm:"type:point_source;not null"`
	SourceId   *uuid.UUID `gorm:"type:uuid"`
	SourceNote string     `gorm:"type:text"`
	ExpiresAt  *time.Time `gorm:"index:idx_point_batches_expiry"`
	CreatedAt  time.Time  `gorm:"default:now();not null"`
}

func (PointBatch) TableName() string {
	return "point_batches"
}

type PointTransaction struct {
	Id           uuid.UUID  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId       uuid.UUID  `gorm:"type:uuid;not null;index:idx_point_transactions_user"`
	Type         string     `gorm:"type:point_transaction_type;not null"`
	Amount       int64      `gorm:"not null"`
	BalanceAfter int64      `gorm:"not null"`
	BatchId      *uuid.UUID `gorm:"type:uuid;index"`
	Description  string     `gorm:"type:text"`
	CreatedAt    time.Time  `gorm:"default:now();not null"`
}

func (PointTransaction) TableName() string {
	return "point_transactions"
}
