// FILE: internal/service/generation_service.go
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"pagecraft-be/internal/dto"
	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"
	"pagecraft-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IGenerationService interface {
	Create(ctx context.Context, userId uuid.UUID, req *dto.GenerateRequest) (*dto.GenerateResponse, error)
	Show(ctx context.Context, userId uuid.UUID, jobId uuid.UUID) (*dto.GenerationJobResponse, error)
	List(ctx context.Context, userId uuid.UUID, page int, perPage int) (*dto.GenerationJobListResponse, error)
}

type generationService struct {
	uowFactory       unitofwork.RepositoryFactory
	publisherService IPublisherService
	usageService     IUsageService
}

func NewGenerationService(
	uowFactory unitofwork.RepositoryFactory,
	publisherService IPublisherService,
	usageService IUsageService,
) IGenerationService {
	return &generationService{
		uowFactory:       uowFactory,
		publisherService: publisherService,
		usageService:     usageService,
	}
}

func (s *generationService) Create(ctx context.Context, userId uuid.UUID, req *dto.GenerateRequest) (*dto.GenerateResponse, error) {
	// 1. Advisory affordability check. The worker re-checks on every page,
	// this just refuses jobs that are clearly unpayable now.
	quota, err := s.usageService.CheckQuota(ctx, userId, int64(req.Pages))
	if err != nil {
		return nil, err
	}
	if !quota.Allowed {
		return nil, ErrInsufficientPoints
	}

	job := &entity.GenerationJob{
		Id:             uuid.New(),
		UserId:         userId,
		PagesRequested: req.Pages,
		Status:         entity.GenerationStatusQueued,
		Description:    req.Description,
		CreatedAt:      time.Now(),
		UpdatedAt:      time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.GenerationRepository().Create(ctx, job); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, err
	}

	// 2. Hand the job to the render worker
	msgPayload := dto.RenderJobMessage{
		JobId:  job.Id,
		UserId: userId,
	}
	msgJson, err := json.Marshal(msgPayload)
	if err != nil {
		return nil, err
	}
	if err := s.publisherService.Publish(ctx, msgJson); err != nil {
		return nil, err
	}

	return &dto.GenerateResponse{
		JobId:          job.Id,
		Status:         string(job.Status),
		PagesRequested: job.PagesRequested,
	}, nil
}

func (s *generationService) Show(ctx context.Context, userId uuid.UUID, jobId uuid.UUID) (*dto.GenerationJobResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	job, err := uow.GenerationRepository().FindOne(ctx,
		specification.ByID{ID: jobId},
		specification.UserOwnedBy{UserID: userId},
	)
	if err != nil {
		return nil, err
	}
	if job == nil {
		return nil, errors.New("generation job not found")
	}

	res := toGenerationJobResponse(job)
	return &res, nil
}

func (s *generationService) List(ctx context.Context, userId uuid.UUID, page int, perPage int) (*dto.GenerationJobListResponse, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}
	if perPage > 100 {
		perPage = 100
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	repo := uow.GenerationRepository()

	total, err := repo.Count(ctx, specification.UserOwnedBy{UserID: userId})
	if err != nil {
		return nil, err
	}

	jobs, err := repo.FindAll(ctx,
		specification.UserOwnedBy{UserID: userId},
		specification.OrderBy{Field: "created_at", Desc: true},
		specification.Pagination{Limit: perPage, Offset: (page - 1) * perPage},
	)
	if err != nil {
		return nil, err
	}

	res := &dto.GenerationJobListResponse{
		Jobs:  make([]dto.GenerationJobResponse, 0, len(jobs)),
		Total: total,
	}
	for _, job := range jobs {
		res.Jobs = append(res.Jobs, toGenerationJobResponse(job))
	}
	return res, nil
}

func toGenerationJobResponse(job *entity.GenerationJob) dto.GenerationJobResponse {
	return dto.GenerationJobResponse{
		Id:             job.Id,
		Status:         string(job.Status),
		PagesRequested: job.PagesRequested,
		PagesCompleted: job.PagesCompleted,
		Description:    job.Description,
		FailureReason:  job.FailureReason,
		CreatedAt:      job.CreatedAt,
		UpdatedAt:      job.UpdatedAt,
	}
}
