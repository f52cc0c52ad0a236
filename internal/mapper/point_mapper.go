package mapper

import (
	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/model"
)

type PointMapper struct{}

func NewPointMapper() *PointMapper {
	return &PointMapper{}
}

func (m *PointMapper) ToEntity(b *model.PointBatch) *entity.PointBatch {
	if b == nil {
		return nil
	}
	return &entity.PointBatch{
		Id:         b.Id,
		UserId:     b.UserId,
		Amount:     b.Amount,
		Remaining:  b.Remaining,
		Source:     entity.PointSource(b.Source),
		SourceId:   b.SourceId,
		SourceNote: b.SourceNote,
		ExpiresAt:  b.ExpiresAt,
		CreatedAt:  b.CreatedAt,
	}
}

func (m *PointMapper) ToModel(b *entity.PointBatch) *model.PointBatch {
	if b == nil {
		return nil
	}
	return &model.PointBatch{
		Id:         b.Id,
		UserId:     b.UserId,
		Amount:     b.Amount,
		Remaining:  b.Remaining,
		Source:     string(b.Source),
		SourceId:   b.SourceId,
		SourceNote: b.SourceNote,
		ExpiresAt:  b.ExpiresAt,
		CreatedAt:  b.CreatedAt,
	}
}

func (m *PointMapper) ToEntities(batches []*model.PointBatch) []*entity.PointBatch {
	entities := make([]*entity.PointBatch, len(batches))
	for i, b := range batches {
		entities[i] = m.ToEntity(b)
	}
	return entities
}

func (m *PointMapper) ToModels(batches []*entity.PointBatch) []*model.PointBatch {
	models := make([]*model.PointBatch, len(batches))
	for i, b := range batches {
		models[i] = m.ToModel(b)
	}
	return models
}

// Transaction Mappers

func (m *PointMapper) TransactionToEntity(t *model.PointTransaction) *entity.PointTransaction {
	if t == nil {
		return nil
	}
	return &entity.PointTransaction{
		Id:           t.Id,
		UserId:       t.UserId,
		Type:         entity.PointTransactionType(t.Type),
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		BatchId:      t.BatchId,
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
	}
}

func (m *PointMapper) TransactionToModel(t *entity.PointTransaction) *model.PointTransaction {
	if t == nil {
		return nil
	}
	return &model.PointTransaction{
		Id:           t.Id,
		UserId:       t.UserId,
		Type:         string(t.Type),
		Amount:       t.Amount,
		BalanceAfter: t.BalanceAfter,
		BatchId:      t.BatchId,
		Description:  t.Description,
		CreatedAt:    t.CreatedAt,
	}
}

func (m *PointMapper) TransactionsToEntities(txs []*model.PointTransaction) []*entity.PointTransaction {
	entities := make([]*entity.PointTransaction, len(txs))
	for i, t := range txs {
		entities[i] = m.TransactionToEntity(t)
	}
	return entities
}

func (m *PointMapper) TransactionsToModels(txs []*entity.PointTransaction) []*model.PointTransaction {
	models := make([]*model.PointTransaction, len(txs))
	for i, t := range txs {
		models[i] = m.TransactionToModel(t)
	}
	return models
}
