package mapper

import (
	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/model"
)

type RechargeCodeMapper struct{}

func NewRechargeCodeMapper() *RechargeCodeMapper {
	return &RechargeCodeMapper{}
}

func (m *RechargeCodeMapper) ToEntity(c *model.RechargeCode) *entity.RechargeCode {
	if c == nil {
		return nil
	}
	return &entity.RechargeCode{
		Id:               c.Id,
		Code:             c.Code,
		Points:           c.Points,
		BatchNo:          c.BatchNo,
		ExpiresAt:        c.ExpiresAt,
		PointsExpireDays: c.PointsExpireDays,
		UsedBy:           c.UsedBy,
		UsedAt:           c.UsedAt,
		CreatedBy:        c.CreatedBy,
		CreatedAt:        c.CreatedAt,
	}
}

func (m *RechargeCodeMapper) ToModel(c *entity.RechargeCode) *model.RechargeCode {
	if c == nil {
		return nil
	}
	return &model.RechargeCode{
		Id:               c.Id,
		Code:             c.Code,
		Points:           c.Points,
		BatchNo:          c.BatchNo,
		ExpiresAt:        c.ExpiresAt,
		PointsExpireDays: c.PointsExpireDays,
		UsedBy:           c.UsedBy,
		UsedAt:           c.UsedAt,
		CreatedBy:        c.CreatedBy,
		CreatedAt:        c.CreatedAt,
	}
}

func (m *RechargeCodeMapper) ToEntities(codes []*model.RechargeCode) []*entity.RechargeCode {
	entities := make([]*entity.RechargeCode, len(codes))
	for i, c := range codes {
		entities[i] = m.ToEntity(c)
	}
	return entities
}

func (m *RechargeCodeMapper) ToModels(codes []*entity.RechargeCode) []*model.RechargeCode {
	models := make([]*model.RechargeCode, len(codes))
	for i, c := range codes {
		models[i] = m.ToModel(c)
	}
	return models
}
