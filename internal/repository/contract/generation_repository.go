package contract

import (
	"context"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"

	"github.com/google/uuid"
)

type GenerationRepository interface {
	Create(ctx context.Context, job *entity.GenerationJob) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GenerationJob, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GenerationJob, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	UpdateStatus(ctx context.Context, jobId uuid.UUID, status string, failureReason string) error
	IncrementPagesCompleted(ctx context.Context, jobId uuid.UUID) error
}
