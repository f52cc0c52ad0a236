// FILE: internal/dto/generation_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Generation DTOs ---

type GenerateRequest struct {
	Pages       int    `json:"pages" validate:"required,gt=0,lte=100"`
	Description string `json:"description" validate:"omitempty,max=500"`
}

type GenerateResponse struct {
	JobId          uuid.UUID `json:"job_id"`
	Status         string    `json:"status"`
	PagesRequested int       `json:"pages_requested"`
}

type GenerationJobResponse struct {
	Id             uuid.UUID `json:"id"`
	Status         string    `json:"status"`
	PagesRequested int       `json:"pages_requested"`
	PagesCompleted int       `json:"pages_completed"`
	Description    string    `json:"description,omitempty"`
	FailureReason  string    `json:"failure_reason,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type GenerationJobListResponse struct {
	Jobs  []GenerationJobResponse `json:"jobs"`
	Total int64                   `json:"total"`
}

// RenderJobMessage is the queue payload handed to the render worker. The
// worker reloads the job row, so the message only carries identifiers.
type RenderJobMessage struct {
	JobId  uuid.UUID `json:"job_id"`
	UserId uuid.UUID `json:"user_id"`
}
