package memory

import (
	"context"
	"fmt"

	"pagecraft-be/internal/repository/contract"
	"pagecraft-be/internal/repository/unitofwork"
)

// UnitOfWork mirrors the GORM unit of work against the in-process store.
// Begin takes the store mutex and a snapshot; Rollback restores it, Commit
// keeps the writes. Each instance belongs to a single goroutine.
type UnitOfWork struct {
	store    *Store
	txActive bool
	snapshot *storeSnapshot
}

func NewUnitOfWork(store *Store) unitofwork.UnitOfWork {
	return &UnitOfWork{store: store}
}

func (u *UnitOfWork) Begin(ctx context.Context) error {
	if u.txActive {
		return fmt.Errorf("transaction already started")
	}
	u.store.mu.Lock()
	u.snapshot = u.store.snapshot()
	u.txActive = true
	return nil
}

func (u *UnitOfWork) Commit() error {
	if !u.txActive {
		return fmt.Errorf("no transaction to commit")
	}
	u.snapshot = nil
	u.txActive = false
	u.store.mu.Unlock()
	return nil
}

func (u *UnitOfWork) Rollback() error {
	if !u.txActive {
		return fmt.Errorf("no transaction to rollback")
	}
	u.store.restore(u.snapshot)
	u.snapshot = nil
	u.txActive = false
	u.store.mu.Unlock()
	return nil
}

// lock guards single operations outside a transaction. Inside one, Begin
// already holds the mutex.
func (u *UnitOfWork) lock() {
	if !u.txActive {
		u.store.mu.Lock()
	}
}

func (u *UnitOfWork) unlock() {
	if !u.txActive {
		u.store.mu.Unlock()
	}
}

// Repository Accessors

func (u *UnitOfWork) UserRepository() contract.UserRepository {
	return &UserRepository{u: u}
}

func (u *UnitOfWork) PointRepository() contract.PointRepository {
	return &PointRepository{u: u}
}

func (u *UnitOfWork) RechargeCodeRepository() contract.RechargeCodeRepository {
	return &RechargeCodeRepository{u: u}
}

func (u *UnitOfWork) ReferralRepository() contract.ReferralRepository {
	return &ReferralRepository{u: u}
}

func (u *UnitOfWork) UsageRepository() contract.UsageRepository {
	return &UsageRepository{u: u}
}

func (u *UnitOfWork) GenerationRepository() contract.GenerationRepository {
	return &GenerationRepository{u: u}
}

func (u *UnitOfWork) UpgradeRepository() contract.UpgradeRepository {
	return &UpgradeRepository{u: u}
}

// Factory hands out units of work sharing one store.
type Factory struct {
	store *Store
}

func NewFactory(store *Store) unitofwork.RepositoryFactory {
	return &Factory{store: store}
}

func (f *Factory) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return NewUnitOfWork(f.store)
}
