package contract

import (
	"context"
	"time"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UpgradeRepository interface {
	Create(ctx context.Context, order *entity.UpgradeOrder) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UpgradeOrder, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UpgradeOrder, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	SetSnapToken(ctx context.Context, orderId uuid.UUID, token string) error
	MarkPaid(ctx context.Context, orderId uuid.UUID, paidAt time.Time) error
	MarkFailed(ctx context.Context, orderId uuid.UUID) error
}
