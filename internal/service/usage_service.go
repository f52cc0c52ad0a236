// FILE: internal/service/usage_service.go
package service

import (
	"context"
	"errors"
	"time"

	"pagecraft-be/internal/config"
	"pagecraft-be/internal/dto"
	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/repository/specification"
	"pagecraft-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

// UnlimitedPoints marks a quota answer for accounts the ledger does not
// constrain (admins, bring-your-own-key users).
const UnlimitedPoints int64 = -1

type IUsageService interface {
	IsUsingSystemCredits(user *entity.User) bool
	CheckQuota(ctx context.Context, userId uuid.UUID, unitsRequested int64) (*dto.QuotaCheckResponse, error)

	// ConsumeAndRecord bills completed units against the ledger when the user
	// is billed at all, and always appends a usage row for statistics.
	ConsumeAndRecord(ctx context.Context, userId uuid.UUID, unitsCompleted int64, description string, metadata map[string]interface{}) (*dto.ConsumeResult, error)
}

type usageService struct {
	uowFactory    unitofwork.RepositoryFactory
	pointsService IPointsService
	cfg           config.PointsConfig
}

func NewUsageService(uowFactory unitofwork.RepositoryFactory, pointsService IPointsService, cfg config.PointsConfig) IUsageService {
	return &usageService{
		uowFactory:    uowFactory,
		pointsService: pointsService,
		cfg:           cfg,
	}
}

// IsUsingSystemCredits reports whether the upstream call rides on the
// platform's credentials. Admins always do; a personal provider key opts the
// account out.
func (s *usageService) IsUsingSystemCredits(user *entity.User) bool {
	if user.IsAdmin() {
		return true
	}
	return !user.HasOwnProviderKey()
}

// billedFromLedger is the billing rule proper. Admins use system credits but
// are never charged; key owners pay their provider directly.
func billedFromLedger(user *entity.User) bool {
	return !user.IsAdmin() && !user.HasOwnProviderKey()
}

func (s *usageService) costFor(units int64) int64 {
	perPage := s.cfg.PointsPerPage
	if perPage < 1 {
		perPage = 1
	}
	return units * perPage
}

func (s *usageService) loadUser(ctx context.Context, userId uuid.UUID) (*entity.User, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, errors.New("user not found")
	}
	return user, nil
}

func (s *usageService) CheckQuota(ctx context.Context, userId uuid.UUID, unitsRequested int64) (*dto.QuotaCheckResponse, error) {
	user, err := s.loadUser(ctx, userId)
	if err != nil {
		return nil, err
	}

	if unitsRequested < 0 {
		unitsRequested = 0
	}
	required := s.costFor(unitsRequested)

	if !billedFromLedger(user) {
		return &dto.QuotaCheckResponse{
			Allowed:        true,
			RequiredPoints: required,
			ValidPoints:    UnlimitedPoints,
		}, nil
	}

	return s.pointsService.CanConsume(ctx, userId, required)
}

func (s *usageService) ConsumeAndRecord(ctx context.Context, userId uuid.UUID, unitsCompleted int64, description string, metadata map[string]interface{}) (*dto.ConsumeResult, error) {
	user, err := s.loadUser(ctx, userId)
	if err != nil {
		return nil, err
	}
	if unitsCompleted < 0 {
		unitsCompleted = 0
	}

	result := &dto.ConsumeResult{Ok: true}
	if billedFromLedger(user) && unitsCompleted > 0 {
		result, err = s.pointsService.Consume(ctx, userId, s.costFor(unitsCompleted), description)
		if err != nil {
			return nil, err
		}
	}

	// The metering row is written even when billing failed or was skipped.
	record := &entity.UsageRecord{
		Id:                uuid.New(),
		UserId:            userId,
		Units:             unitsCompleted,
		PointsCharged:     result.PointsCharged,
		UsedSystemCredits: s.IsUsingSystemCredits(user),
		Description:       description,
		Metadata:          metadata,
		CreatedAt:         time.Now(),
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer uow.Rollback()

	if err := uow.UsageRepository().Create(ctx, record); err != nil {
		return nil, err
	}
	if err := uow.Commit(); err != nil {
		return nil, err
	}

	return result, nil
}
