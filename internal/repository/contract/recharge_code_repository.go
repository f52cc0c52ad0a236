package contract

import (
	"context"
	"time"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"

	"github.com/google/uuid"
)

type RechargeCodeRepository interface {
	Create(ctx context.Context, code *entity.RechargeCode) error
	CreateMany(ctx context.Context, codes []*entity.RechargeCode) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RechargeCode, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RechargeCode, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// MarkUsed stamps the redeemer only while the code is still unused.
	// Returns the number of rows changed; zero means someone else won the
	// race and the redemption must abort.
	MarkUsed(ctx context.Context, codeId uuid.UUID, userId uuid.UUID, usedAt time.Time) (int64, error)
}
