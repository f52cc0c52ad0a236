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

type GenerationRepository struct {
	u *UnitOfWork
}

func (r *GenerationRepository) Create(ctx context.Context, job *entity.GenerationJob) error {
	r.u.lock()
	defer r.u.unlock()

	if job.Id == uuid.Nil {
		job.Id = uuid.New()
	}
	now := time.Now()
	if job.CreatedAt.IsZero() {
		job.CreatedAt = now
	}
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = now
	}
	r.u.store.jobs = append(r.u.store.jobs, clone(job))
	return nil
}

func (r *GenerationRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.GenerationJob, error) {
	jobs, err := r.FindAll(ctx, specs...)
	if err != nil {
		return nil, err
	}
	if len(jobs) == 0 {
		return nil, nil
	}
	return jobs[0], nil
}

func (r *GenerationRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.GenerationJob, error) {
	r.u.lock()
	defer r.u.unlock()

	filters, opts := splitSpecs(specs)

	var out []*entity.GenerationJob
	for _, j := range r.u.store.jobs {
		if matchJob(j, filters) {
			out = append(out, clone(j))
		}
	}

	for _, o := range opts.orders {
		if o.Field != "created_at" {
			panic(unsupportedOrder("GenerationRepository", o.Field))
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

func (r *GenerationRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	r.u.lock()
	defer r.u.unlock()

	filters, _ := splitSpecs(specs)

	var count int64
	for _, j := range r.u.store.jobs {
		if matchJob(j, filters) {
			count++
		}
	}
	return count, nil
}

func (r *GenerationRepository) UpdateStatus(ctx context.Context, jobId uuid.UUID, status string, failureReason string) error {
	r.u.lock()
	defer r.u.unlock()

	for _, j := range r.u.store.jobs {
		if j.Id == jobId {
			j.Status = entity.GenerationStatus(status)
			if failureReason != "" {
				j.FailureReason = failureReason
			}
			j.UpdatedAt = time.Now()
		}
	}
	return nil
}

func (r *GenerationRepository) IncrementPagesCompleted(ctx context.Context, jobId uuid.UUID) error {
	r.u.lock()
	defer r.u.unlock()

	for _, j := range r.u.store.jobs {
		if j.Id == jobId {
			j.PagesCompleted++
			j.UpdatedAt = time.Now()
		}
	}
	return nil
}

func matchJob(j *entity.GenerationJob, filters []specification.Specification) bool {
	for _, spec := range filters {
		switch s := spec.(type) {
		case specification.ByID:
			if j.Id != s.ID {
				return false
			}
		case specification.UserOwnedBy:
			if j.UserId != s.UserID {
				return false
			}
		case specification.FilterBy:
			switch s.Field {
			case "status":
				if string(j.Status) != fmt.Sprint(s.Value) {
					return false
				}
			default:
				panic(unsupportedSpec("GenerationRepository", s))
			}
		default:
			panic(unsupportedSpec("GenerationRepository", spec))
		}
	}
	return true
}
