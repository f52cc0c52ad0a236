package model

import (
	"time"

	"github.com/google/uuid"
)

type GenerationJob struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index"`
	PagesRequested int       `gorm:"not null"`
	PagesCompleted int       `gorm:"default:0;not null"`
	Status         string    `gorm:"type:varchar(50);default:'queued';not null;index"`
	Description    string    `gorm:"type:text"`
	FailureReason  string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
	UpdatedAt      time.Time `gorm:"autoUpdateTime"`
}

func (GenerationJob) TableName() string {
	return "generation_jobs"
}
