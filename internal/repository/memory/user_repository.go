package memory

import (
	"context"
	"fmt"
	"time"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UserRepository struct {
	u *UnitOfWork
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	r.u.lock()
	defer r.u.unlock()

	if user.Id == uuid.Nil {
		user.Id = uuid.New()
	}
	now := time.Now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	if user.UpdatedAt.IsZero() {
		user.UpdatedAt = now
	}
	r.u.store.users = append(r.u.store.users, clone(user))
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	r.u.lock()
	defer r.u.unlock()

	user.UpdatedAt = time.Now()
	for i, existing := range r.u.store.users {
		if existing.Id == user.Id {
			r.u.store.users[i] = clone(user)
			return nil
		}
	}
	r.u.store.users = append(r.u.store.users, clone(user))
	return nil
}

func (r *UserRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.User, error) {
	users, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(users) == 0 {
		return nil, nil
	}
	return users[0], nil
}

func (r *UserRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.User, error) {
	r.u.lock()
	defer r.u.unlock()

	filters, opts := splitSpecs(specs)

	var out []*entity.User
	for _, u := range r.u.store.users {
		if matchUser(u, filters) {
			out = append(out, clone(u))
		}
	}
	return paginate(out, opts.page), nil
}

func (r *UserRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.u.lock()
	defer r.u.unlock()

	filters, _ := splitSpecs(specs)

	var count int64
	for _, u := range r.u.store.users {
		if matchUser(u, filters) {
			count++
		}
	}
	return count, nil
}

func (r *UserRepository) UpdateTier(ctx context.Context, userId uuid.UUID, tier string) error {
	r.u.lock()
	defer r.u.unlock()

	for _, u := range r.u.store.users {
		if u.Id == userId {
			u.Tier = entity.UserTier(tier)
			u.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (r *UserRepository) UpdateProviderKey(ctx context.Context, userId uuid.UUID, key *string) error {
	r.u.lock()
	defer r.u.unlock()

	for _, u := range r.u.store.users {
		if u.Id == userId {
			u.ProviderAPIKey = key
			u.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, userId uuid.UUID, displayName string) error {
	r.u.lock()
	defer r.u.unlock()

	for _, u := range r.u.store.users {
		if u.Id == userId {
			u.DisplayName = displayName
			u.UpdatedAt = time.Now()
		}
	}
	return nil
}

func matchUser(u *entity.User, filters []specification.Specification) bool {
	for _, spec := range filters {
		switch s := spec.(type) {
		case specification.ByID:
			if u.Id != s.ID {
				return false
			}
		case specification.ByIDs:
			found := false
			for _, id := range s.IDs {
				if u.Id == id {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case specification.ByEmail:
			if u.Email != s.Email {
				return false
			}
		case specification.ByReferralCode:
			if u.ReferralCode != s.Code {
				return false
			}
		case specification.FilterBy:
			switch s.Field {
			case "role":
				if string(u.Role) != fmt.Sprint(s.Value) {
					return false
				}
			case "tier":
				if string(u.Tier) != fmt.Sprint(s.Value) {
					return false
				}
			default:
				panic(unsupportedSpec("UserRepository", s))
			}
		default:
			panic(unsupportedSpec("UserRepository", spec))
		}
	}
	return true
}
