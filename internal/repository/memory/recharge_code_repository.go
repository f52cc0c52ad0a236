package memory

import (
	"context"
	"sort"
	"time"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"

	"github.com/google/uuid"
)

type RechargeCodeRepository struct {
	u *UnitOfWork
}

func (r *RechargeCodeRepository) Create(ctx context.Context, code *entity.RechargeCode) error {
	r.u.lock()
	defer r.u.unlock()

	r.insert(code)
	return nil
}

func (r *RechargeCodeRepository) CreateMany(ctx context.Context, codes []*entity.RechargeCode) error {
	r.u.lock()
	defer r.u.unlock()

	for _, code := range codes {
		r.insert(code)
	}
	return nil
}

func (r *RechargeCodeRepository) insert(code *entity.RechargeCode) {
	if code.Id == uuid.Nil {
		code.Id = uuid.New()
	}
	if code.CreatedAt.IsZero() {
		code.CreatedAt = time.Now()
	}
	r.u.store.codes = append(r.u.store.codes, clone(code))
}

func (r *RechargeCodeRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.RechargeCode, error) {
	codes, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(codes) == 0 {
		return nil, nil
	}
	return codes[0], nil
}

func (r *RechargeCodeRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RechargeCode, error) {
	r.u.lock()
	defer r.u.unlock()

	filters, opts := splitSpecs(specs)

	var out []*entity.RechargeCode
	for _, c := range r.u.store.codes {
		if matchCode(c, filters) {
			out = append(out, clone(c))
		}
	}

	for _, o := range opts.orders {
		if o.Field != "created_at" {
			panic(unsupportedOrder("RechargeCodeRepository", o.Field))
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

func (r *RechargeCodeRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.u.lock()
	defer r.u.unlock()

	filters, _ := splitSpecs(specs)

	var count int64
	for _, c := range r.u.store.codes {
		if matchCode(c, filters) {
			count++
		}
	}
	return count, nil
}

func (r *RechargeCodeRepository) MarkUsed(ctx context.Context, codeId uuid.UUID, userId uuid.UUID, usedAt time.Time) (int64, error) {
	r.u.lock()
	defer r.u.unlock()

	for _, c := range r.u.store.codes {
		if c.Id == codeId {
			if c.UsedAt != nil {
				return 0, nil
			}
			uid := userId
			at := usedAt
			c.UsedBy = &uid
			c.UsedAt = &at
			return 1, nil
		}
	}
	return 0, nil
}

func matchCode(c *entity.RechargeCode, filters []specification.Specification) bool {
	for _, spec := range filters {
		switch s := spec.(type) {
		case specification.ByID:
			if c.Id != s.ID {
				return false
			}
		case specification.ByCode:
			if c.Code != s.Code {
				return false
			}
		case specification.ByBatchNo:
			if c.BatchNo != s.BatchNo {
				return false
			}
		case specification.UnredeemedOnly:
			if c.UsedAt != nil {
				return false
			}
		default:
			panic(unsupportedSpec("RechargeCodeRepository", spec))
		}
	}
	return true
}
