package memory

import (
	"context"
	"fmt"
	"time"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"

	"github.com/google/uuid"
)

type ReferralRepository struct {
	u *UnitOfWork
}

func (r *ReferralRepository) Create(ctx context.Context, record *entity.ReferralRecord) error {
	r.u.lock()
	defer r.u.unlock()

	if record.Id == uuid.Nil {
		record.Id = uuid.New()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}
	r.u.store.referrals = append(r.u.store.referrals, clone(record))
	return nil
}

func (r *ReferralRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.ReferralRecord, error) {
	records, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[0], nil
}

func (r *ReferralRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.ReferralRecord, error) {
	r.u.lock()
	defer r.u.unlock()

	filters, opts := splitSpecs(specs)

	var out []*entity.ReferralRecord
	for _, rec := range r.u.store.referrals {
		if matchReferral(rec, filters) {
			out = append(out, clone(rec))
		}
	}
	return paginate(out, opts.page), nil
}

func (r *ReferralRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.u.lock()
	defer r.u.unlock()

	filters, _ := splitSpecs(specs)

	var count int64
	for _, rec := range r.u.store.referrals {
		if matchReferral(rec, filters) {
			count++
		}
	}
	return count, nil
}

func (r *ReferralRepository) MarkRewarded(ctx context.Context, recordId uuid.UUID, reward entity.ReferralRewardType) error {
	r.u.lock()
	defer r.u.unlock()

	for _, rec := range r.u.store.referrals {
		if rec.Id != recordId {
			continue
		}
		switch reward {
		case entity.ReferralRewardInviterRegister:
			rec.InviterRegisterRewarded = true
		case entity.ReferralRewardInviteeRegister:
			rec.InviteeRegisterRewarded = true
		case entity.ReferralRewardInviterUpgrade:
			rec.InviterUpgradeRewarded = true
		default:
			return fmt.Errorf("unknown referral reward type: %s", reward)
		}
	}
	return nil
}

func matchReferral(rec *entity.ReferralRecord, filters []specification.Specification) bool {
	for _, spec := range filters {
		switch s := spec.(type) {
		case specification.ByID:
			if rec.Id != s.ID {
				return false
			}
		case specification.ByInviteeID:
			if rec.InviteeId != s.InviteeID {
				return false
			}
		case specification.ByInviterID:
			if rec.InviterId != s.InviterID {
				return false
			}
		default:
			panic(unsupportedSpec("ReferralRepository", spec))
		}
	}
	return true
}
