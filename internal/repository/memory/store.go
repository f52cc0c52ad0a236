// Package memory implements the repository contracts against a single
// in-process store. Service tests run the real unit-of-work choreography
// against it without a database.
package memory

import (
	"sync"

	"pagecraft-be/internal/entity"
)

// Store holds every table as a slice in insertion order. The mutex is held
// for the whole lifetime of a transaction, so concurrent units of work
// serialize the same way row locks do in Postgres.
//
// Stored entities are cloned at the repository boundary. Pointer fields are
// replaced by callers, never written through, so clones only need to copy
// the struct value (plus maps).
type Store struct {
	mu sync.Mutex

	users        []*entity.User
	batches      []*entity.PointBatch
	transactions []*entity.PointTransaction
	codes        []*entity.RechargeCode
	referrals    []*entity.ReferralRecord
	usage        []*entity.UsageRecord
	jobs         []*entity.GenerationJob
	orders       []*entity.UpgradeOrder
}

func NewStore() *Store {
	return &Store{}
}

type storeSnapshot struct {
	users        []*entity.User
	batches      []*entity.PointBatch
	transactions []*entity.PointTransaction
	codes        []*entity.RechargeCode
	referrals    []*entity.ReferralRecord
	usage        []*entity.UsageRecord
	jobs         []*entity.GenerationJob
	orders       []*entity.UpgradeOrder
}

// snapshot deep-copies the store. Caller must hold the mutex.
func (s *Store) snapshot() *storeSnapshot {
	return &storeSnapshot{
		users:        cloneSlice(s.users),
		batches:      cloneSlice(s.batches),
		transactions: cloneSlice(s.transactions),
		codes:        cloneSlice(s.codes),
		referrals:    cloneSlice(s.referrals),
		usage:        cloneUsageSlice(s.usage),
		jobs:         cloneSlice(s.jobs),
		orders:       cloneSlice(s.orders),
	}
}

// restore discards everything written since the snapshot was taken. Caller
// must hold the mutex.
func (s *Store) restore(sn *storeSnapshot) {
	s.users = sn.users
	s.batches = sn.batches
	s.transactions = sn.transactions
	s.codes = sn.codes
	s.referrals = sn.referrals
	s.usage = sn.usage
	s.jobs = sn.jobs
	s.orders = sn.orders
}

func clone[T any](in *T) *T {
	if in == nil {
		return nil
	}
	cp := *in
	return &cp
}

func cloneSlice[T any](in []*T) []*T {
	out := make([]*T, len(in))
	for i, item := range in {
		out[i] = clone(item)
	}
	return out
}

func cloneUsage(in *entity.UsageRecord) *entity.UsageRecord {
	if in == nil {
		return nil
	}
	cp := *in
	if in.Metadata != nil {
		cp.Metadata = make(map[string]interface{}, len(in.Metadata))
		for k, v := range in.Metadata {
			cp.Metadata[k] = v
		}
	}
	return &cp
}

func cloneUsageSlice(in []*entity.UsageRecord) []*entity.UsageRecord {
	out := make([]*entity.UsageRecord, len(in))
	for i, item := range in {
		out[i] = cloneUsage(item)
	}
	return out
}
