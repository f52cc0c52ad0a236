package unitofwork

import (
	"context"
	"fmt"

	"pagecraft-be/internal/repository/contract"
	"pagecraft-be/internal/repository/implementation"

	"gorm.io/gorm"
)

type UnitOfWorkImpl struct {
	db *gorm.DB
	tx *gorm.DB // The active transaction, nil outside Begin/Commit
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &UnitOfWorkImpl{
		db: db,
	}
}

func (u *UnitOfWorkImpl) getDB() *gorm.DB {
	if u.tx != nil {
		return u.tx
	}
	return u.db
}

func (u *UnitOfWorkImpl) Begin(ctx context.Context) error {
	if u.tx != nil {
		return fmt.Errorf("transaction already started")
	}
	u.tx = u.db.WithContext(ctx).Begin()
	return u.tx.Error
}

func (u *UnitOfWorkImpl) Commit() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to commit")
	}
	err := u.tx.Commit().Error
	u.tx = nil
	return err
}

func (u *UnitOfWorkImpl) Rollback() error {
	if u.tx == nil {
		return fmt.Errorf("no transaction to rollback")
	}
	err := u.tx.Rollback().Error
	u.tx = nil
	return err
}

// Repository Accessors

func (u *UnitOfWorkImpl) UserRepository() contract.UserRepository {
	return implementation.NewUserRepository(u.getDB())
}

func (u *UnitOfWorkImpl) PointRepository() contract.PointRepository {
	return implementation.NewPointRepository(u.getDB())
}

func (u *UnitOfWorkImpl) RechargeCodeRepository() contract.RechargeCodeRepository {
	return implementation.NewRechargeCodeRepository(u.getDB())
}

func (u *UnitOfWorkImpl) ReferralRepository() contract.ReferralRepository {
	return implementation.NewReferralRepository(u.getDB())
}

func (u *UnitOfWorkImpl) UsageRepository() contract.UsageRepository {
	return implementation.NewUsageRepository(u.getDB())
}

func (u *UnitOfWorkImpl) GenerationRepository() contract.GenerationRepository {
	return implementation.NewGenerationRepository(u.getDB())
}

func (u *UnitOfWorkImpl) UpgradeRepository() contract.UpgradeRepository {
	return implementation.NewUpgradeRepository(u.getDB())
}
