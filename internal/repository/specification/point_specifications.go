package specification

import (
	"time"

	"gorm.io/gorm"
)

// ValidBatches keeps only batches that can still be spent: some remaining
// points and not yet expired at the given instant.
type ValidBatches struct {
	Now time.Time
}

func (s ValidBatches) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("remaining > 0 AND (expires_at IS NULL OR expires_at > ?)", s.Now)
}

// ExpiringWithin narrows valid batches to those whose expiry falls inside
// the window. Batches that never expire are excluded by definition.
type ExpiringWithin struct {
	Now    time.Time
	Window time.Duration
}

func (s ExpiringWithin) Apply(db *gorm.DB) *gorm.DB {
	deadline := s.Now.Add(s.Window)
	return db.Where("remaining > 0 AND expires_at IS NOT NULL AND expires_at > ? AND expires_at < ?", s.Now, deadline)
}

// DrainOrder is the deduction order: soonest expiry first, never-expiring
// last, then oldest first. The id column breaks exact ties so the order is
// stable across replicas.
type DrainOrder struct{}

func (s DrainOrder) Apply(db *gorm.DB) *gorm.DB {
	return db.Order("expires_at ASC NULLS LAST, created_at ASC, id ASC")
}

type ByTransactionType struct {
	Type string
}

func (s ByTransactionType) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("type = ?", s.Type)
}
