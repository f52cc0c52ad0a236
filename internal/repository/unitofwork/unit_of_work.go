package unitofwork

import (
	"context"

	"pagecraft-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	UserRepository() contract.UserRepository
	PointRepository() contract.PointRepository
	RechargeCodeRepository() contract.RechargeCodeRepository
	ReferralRepository() contract.ReferralRepository
	UsageRepository() contract.UsageRepository
	GenerationRepository() contract.GenerationRepository
	UpgradeRepository() contract.UpgradeRepository
}
