package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"

	"github.com/google/uuid"
)

type UsageRepository struct {
	u *UnitOfWork
}

func (r *UsageRepository) Create(ctx context.Context, record *entity.UsageRecord) error {
	r.u.lock()
	defer r.u.unlock()

	if record.Id == uuid.Nil {
		record.Id = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	r.u.store.usage = append(r.u.store.usage, cloneUsage(record))
	return nil
}

func (r *UsageRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UsageRecord, error) {
	r.u.lock()
	defer r.u.unlock()

	filters, opts := splitSpecs(specs)

	var out []*entity.UsageRecord
	for _, rec := range r.u.store.usage {
		if matchUsage(rec, filters) {
			out = append(out, cloneUsage(rec))
		}
	}

	for _, o := range opts.orders {
		if o.Field != "created_at" {
			panic(unsupportedOrder("UsageRepository", o.Field))
		}
		sort.SliceStable(out, func(i, j int) bool {
			if o.Desc {
				return out[j].CreatedAt.Before(out[i].CreatedAt)
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return paginate(out, opts.page), nil
}

func (r *UsageRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.u.lock()
	defer r.u.unlock()

	filters, _ := splitSpecs(specs)

	var count int64
	for _, rec := range r.u.store.usage {
		if matchUsage(rec, filters) {
			count++
		}
	}
	return count, nil
}

func matchUsage(rec *entity.UsageRecord, filters []specification.Specification) bool {
	for _, spec := range filters {
		switch s := spec.(type) {
		case specification.ByID:
			if rec.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if rec.UserId != s.UserID {
				return false
			}
		case specification.FilterBy:
			switch s.Field {
			case "used_system_credits":
				want := fmt.Sprint(s.Value) == "true"
				if rec.UsedSystemCredits != want {
					return false
				}
			default:
				panic(unsupportedSpec("UsageRepository", s))
			}
		default:
			panic(unsupportedSpec("UsageRepository", spec))
		}
	}
	return true
}
