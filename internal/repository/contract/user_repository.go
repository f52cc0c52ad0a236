package contract

import (
	"context"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	Update(ctx context.Context, user *entity.User) error
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error)
	FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)

	// Targeted updates
	UpdateTier(ctx context.Context, userId uuid.UUID, tier string) error
	UpdateProviderKey(ctx context.Context, userId uuid.UUID, key *string) error
	UpdateProfile(ctx context.Context, userId uuid.UUID, displayName string) error
}
