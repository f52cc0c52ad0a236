package memory

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"time"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/contract"
	"pagecraft-be/internal/repository/specification"

	"github.com/google/uuid"
)

type PointRepository struct {
	u *UnitOfWork
}

func (r *PointRepository) CreateBatch(ctx context.Context, batch *entity.PointBatch) error {
	if batch.Remaining < 0 || batch.Remaining > batch.Amount {
		return contract.ErrBatchBounds
	}

	r.u.lock()
	defer r.u.unlock()

	if batch.Id == uuid.Nil {
		batch.Id = uuid.New()
	}
	if batch.CreatedAt.IsZero() {
		batch.CreatedAt = time.Now()
	}
	r.u.store.batches = append(r.u.store.batches, clone(batch))
	return nil
}

func (r *PointRepository) FindOneBatch(ctx context.Context, specs ...specification.Specification) (*entity.PointBatch, error) {
	batches, err := r.FindBatches(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(batches) == 0 {
		return nil, nil
	}
	return batches[0], nil
}

func (r *PointRepository) FindBatches(ctx context.Context, specs ...specification.Specification) ([]*entity.PointBatch, error) {
	r.u.lock()
	defer r.u.unlock()

	filters, opts := splitSpecs(specs)

	var out []*entity.PointBatch
	for _, b := range r.u.store.batches {
		if matchBatch(b, filters) {
			out = append(out, clone(b))
		}
	}

	if opts.drain {
		sortBatchesDrainOrder(out)
	}
	for _, o := range opts.orders {
		sortBatches(out, o)
	}
	return paginate(out, opts.page), nil
}

func (r *PointRepository) CountBatches(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.u.lock()
	defer r.u.unlock()

	filters, _ := splitSpecs(specs)

	var count int64
	for _, b := range r.u.store.batches {
		if matchBatch(b, filters) {
			count++
		}
	}
	return count, nil
}

func (r *PointRepository) FindValidBatchesForUpdate(ctx context.Context, userId uuid.UUID, now time.Time) ([]*entity.PointBatch, error) {
	r.u.lock()
	defer r.u.unlock()

	var out []*entity.PointBatch
	for _, b := range r.u.store.batches {
		if b.UserId == userId && b.IsValid(now) {
			out = append(out, clone(b))
		}
	}
	sortBatchesDrainOrder(out)
	return out, nil
}

func (r *PointRepository) SumValidRemaining(ctx context.Context, userId uuid.UUID, now time.Time) (int64, error) {
	r.u.lock()
	defer r.u.unlock()

	var total int64
	for _, b := range r.u.store.batches {
		if b.UserId == userId && b.IsValid(now) {
			total += b.Remaining
		}
	}
	return total, nil
}

func (r *PointRepository) DrainBatch(ctx context.Context, batchId uuid.UUID, take int64, expected int64) (int64, error) {
	r.u.lock()
	defer r.u.unlock()

	for _, b := range r.u.store.batches {
		if b.Id == batchId {
			if b.Remaining != expected {
				return 0, nil
			}
			b.Remaining -= take
			return 1, nil
		}
	}
	return 0, nil
}

func (r *PointRepository) CreateTransaction(ctx context.Context, tx *entity.PointTransaction) error {
	r.u.lock()
	defer r.u.unlock()

	if tx.Id == uuid.Nil {
		tx.Id = uuid.New()
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	r.u.store.transactions = append(r.u.store.transactions, clone(tx))
	return nil
}

func (r *PointRepository) FindTransactions(ctx context.Context, specs ...specification.Specification) ([]*entity.PointTransaction, error) {
	r.u.lock()
	defer r.u.unlock()

	filters, opts := splitSpecs(specs)

	var out []*entity.PointTransaction
	for _, t := range r.u.store.transactions {
		if matchTransaction(t, filters) {
			out = append(out, clone(t))
		}
	}

	for _, o := range opts.orders {
		sortTransactions(out, o)
	}
	return paginate(out, opts.page), nil
}

func (r *PointRepository) CountTransactions(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.u.lock()
	defer r.u.unlock()

	filters, _ := splitSpecs(specs)

	var count int64
	for _, t := range r.u.store.transactions {
		if matchTransaction(t, filters) {
			count++
		}
	}
	return count, nil
}

// Matching and ordering

func matchBatch(b *entity.PointBatch, filters []specification.Specification) bool {
	for _, spec := range filters {
		switch s := spec.(type) {
		case specification.ByID:
			if b.Id != s.ID {
				return false
			}
		case specification.ByIDs:
			found := false
			for _, id := range s.IDs {
				if b.Id == id {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		case specification.UserOwnedBy:
			if b.UserId != s.UserID {
				return false
			}
		case specification.ValidBatches:
			if !b.IsValid(s.Now) {
				return false
			}
		case specification.ExpiringWithin:
			if !b.IsValid(s.Now) || b.ExpiresAt == nil || !b.ExpiresAt.Before(s.Now.Add(s.Window)) {
				return false
			}
		case specification.FilterBy:
			if !matchBatchField(b, s) {
				return false
			}
		default:
			panic(unsupportedSpec("PointRepository", spec))
		}
	}
	return true
}

func matchBatchField(b *entity.PointBatch, s specification.FilterBy) bool {
	switch s.Field {
	case "user_id":
		return fmt.Sprint(b.UserId) == fmt.Sprint(s.Value)
	case "source":
		return string(b.Source) == fmt.Sprint(s.Value)
	default:
		panic(unsupportedSpec("PointRepository", s))
	}
}

func matchTransaction(t *entity.PointTransaction, filters []specification.Specification) bool {
	for _, spec := range filters {
		switch s := spec.(type) {
		case specification.ByID:
			if t.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if t.UserId != s.UserID {
				return false
			}
		case specification.ByTransactionType:
			if string(t.Type) != s.Type {
				return false
			}
		case specification.FilterBy:
			switch s.Field {
			case "user_id":
				if fmt.Sprint(t.UserId) != fmt.Sprint(s.Value) {
					return false
				}
			case "type":
				if string(t.Type) != fmt.Sprint(s.Value) {
					return false
				}
			default:
				panic(unsupportedSpec("PointRepository", s))
			}
		default:
			panic(unsupportedSpec("PointRepository", spec))
		}
	}
	return true
}

// sortBatchesDrainOrder applies the deduction order: soonest expiry first,
// never-expiring last, then creation time, then id.
func sortBatchesDrainOrder(batches []*entity.PointBatch) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		switch {
		case a.ExpiresAt == nil && b.ExpiresAt != nil:
			return false
		case a.ExpiresAt != nil && b.ExpiresAt == nil:
			return true
		case a.ExpiresAt != nil && b.ExpiresAt != nil && !a.ExpiresAt.Equal(*b.ExpiresAt):
			return a.ExpiresAt.Before(*b.ExpiresAt)
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return bytes.Compare(a.Id[:], b.Id[:]) < 0
	})
}

func sortBatches(batches []*entity.PointBatch, o specification.OrderBy) {
	sort.SliceStable(batches, func(i, j int) bool {
		a, b := batches[i], batches[j]
		if o.Desc {
			a, b = b, a
		}
		switch o.Field {
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt)
		case "expires_at":
			switch {
			case a.ExpiresAt == nil:
				return false
			case b.ExpiresAt == nil:
				return true
			default:
				return a.ExpiresAt.Before(*b.ExpiresAt)
			}
		default:
			panic(unsupportedOrder("PointRepository", o.Field))
		}
	})
}

func sortTransactions(txs []*entity.PointTransaction, o specification.OrderBy) {
	if o.Field != "created_at" {
		panic(unsupportedOrder("PointRepository", o.Field))
	}
	sort.SliceStable(txs, func(i, j int) bool {
		if o.Desc {
			return txs[j].CreatedAt.Before(txs[i].CreatedAt)
		}
		return txs[i].CreatedAt.Before(txs[j].CreatedAt)
	})
}
