package mapper

import (
	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/model"
)

type UpgradeMapper struct{}

func NewUpgradeMapper() *UpgradeMapper {
	return &UpgradeMapper{}
}

func (m *UpgradeMapper) ToEntity(o *model.UpgradeOrder) *entity.UpgradeOrder {
	if o == nil {
		return nil
	}
	return &entity.UpgradeOrder{
		Id:        o.Id,
		UserId:    o.UserId,
		Amount:    o.Amount,
		Status:    entity.UpgradeOrderStatus(o.Status),
		SnapToken: o.SnapToken,
		PaidAt:    o.PaidAt,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func (m *UpgradeMapper) ToModel(o *entity.UpgradeOrder) *model.UpgradeOrder {
	if o == nil {
		return nil
	}
	return &model.UpgradeOrder{
		Id:        o.Id,
		UserId:    o.UserId,
		Amount:    o.Amount,
		Status:    string(o.Status),
		SnapToken: o.SnapToken,
		PaidAt:    o.PaidAt,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
	}
}

func (m *UpgradeMapper) ToEntities(orders []*model.UpgradeOrder) []*entity.UpgradeOrder {
	entities := make([]*entity.UpgradeOrder, len(orders))
	for i, o := range orders {
		entities[i] = m.ToEntity(o)
	}
	return entities
}

func (m *UpgradeMapper) ToModels(orders []*entity.UpgradeOrder) []*model.UpgradeOrder {
	models := make([]*model.UpgradeOrder, len(orders))
	for i, o := range orders {
		models[i] = m.ToModel(o)
	}
	return models
}
