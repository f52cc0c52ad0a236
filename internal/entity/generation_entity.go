// FILE: internal/entity/generation_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type GenerationStatus string

const (
	GenerationStatusQueued             GenerationStatus = "queued"
	GenerationStatusRunning            GenerationStatus = "running"
	GenerationStatusCompleted          GenerationStatus = "completed"
	GenerationStatusFailed             GenerationStatus = "failed"
	GenerationStatusInsufficientPoints GenerationStatus = "insufficient_points"
)

// GenerationJob tracks a queued page-generation request. Billing happens per
// page as the worker completes it, so PagesCompleted can be less than
// PagesRequested when the balance runs out mid-job.
type GenerationJob struct {
	Id             uuid.UUID
	UserId         uuid.UUID
	PagesRequested int
	PagesCompleted int
	Status         GenerationStatus
	Description    string
	FailureReason  string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (j *GenerationJob) IsTerminal() bool {
	switch j.Status {
	case GenerationStatusCompleted, GenerationStatusFailed, GenerationStatusInsufficientPoints:
		return true
	}
	return false
}
