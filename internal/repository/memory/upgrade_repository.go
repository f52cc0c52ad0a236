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

type UpgradeRepository struct {
	u *UnitOfWork
}

func (r *UpgradeRepository) Create(ctx context.Context, order *entity.UpgradeOrder) error {
	r.u.lock()
	defer r.u.unlock()

	if order.Id == uuid.Nil {
		order.Id = uuid.New()
	}
	now := time.Now()
	if order.CreatedAt.IsZero() {
		order.CreatedAt = now
	}
	if order.UpdatedAt.IsZero() {
		order.UpdatedAt = now
	}
	r.u.store.orders = append(r.u.store.orders, clone(order))
	return nil
}

func (r *UpgradeRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.UpgradeOrder, error) {
	orders, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, nil
	}
	return orders[0], nil
}

func (r *UpgradeRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.UpgradeOrder, error) {
	r.u.lock()
	defer r.u.unlock()

	filters, opts := splitSpecs(specs)

	var out []*entity.UpgradeOrder
	for _, o := range r.u.store.orders {
		if matchOrder(o, filters) {
			out = append(out, clone(o))
		}
	}

	for _, ord := range opts.orders {
		if ord.Field != "created_at" {
			panic(unsupportedOrder("UpgradeRepository", ord.Field))
		}
		sort.SliceStable(out, func(i, j int) bool {
			if ord.Desc {
				return out[j].CreatedAt.Before(out[i].CreatedAt)
			}
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	}
	return paginate(out, opts.page), nil
}

func (r *UpgradeRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.u.lock()
	defer r.u.unlock()

	filters, _ := splitSpecs(specs)

	var count int64
	for _, o := range r.u.store.orders {
		if matchOrder(o, filters) {
			count++
		}
	}
	return count, nil
}

func (r *UpgradeRepository) SetSnapToken(ctx context.Context, orderId uuid.UUID, token string) error {
	r.u.lock()
	defer r.u.unlock()

	for _, o := range r.u.store.orders {
		if o.Id == orderId {
			o.SnapToken = token
			o.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (r *UpgradeRepository) MarkPaid(ctx context.Context, orderId uuid.UUID, paidAt time.Time) error {
	r.u.lock()
	defer r.u.unlock()

	for _, o := range r.u.store.orders {
		if o.Id == orderId {
			at := paidAt
			o.Status = entity.UpgradeOrderPaid
			o.PaidAt = &at
			o.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (r *UpgradeRepository) MarkFailed(ctx context.Context, orderId uuid.UUID) error {
	r.u.lock()
	defer r.u.unlock()

	for _, o := range r.u.store.orders {
		if o.Id == orderId {
			o.Status = entity.UpgradeOrderFailed
			o.UpdatedAt = time.Now()
		}
	}
	return nil
}

func matchOrder(o *entity.UpgradeOrder, filters []specification.Specification) bool {
	for _, spec := range filters {
		switch s := spec.(type) {
		case specification.ByID:
			if o.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if o.UserId != s.UserID {
				return false
			}
		case specification.FilterBy:
			switch s.Field {
			case "status":
				if string(o.Status) != fmt.Sprint(s.Value) {
					return false
				}
			default:
				panic(unsupportedSpec("UpgradeRepository", s))
			}
		default:
			panic(unsupportedSpec("UpgradeRepository", spec))
		}
	}
	return true
}
