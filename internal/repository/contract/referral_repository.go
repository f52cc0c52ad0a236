package contract

import (
	"context"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ReferralRepository interface {
	Create(ctx context.Context, record *entity.ReferralRecord) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ReferralRecord, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReferralRecord, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// MarkRewarded flips the flag for one reward type. Each flag only ever
	// goes false -> true, which is what makes rewards single-shot.
	MarkRewarded(ctx context.Context, recordId uuid.UUID, reward entity.ReferralRewardType) error
}
