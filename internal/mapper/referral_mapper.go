package mapper

import (
	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/model"
)

type ReferralMapper struct{}

func NewReferralMapper() *ReferralMapper {
	return &ReferralMapper{}
}

func (m *ReferralMapper) ToEntity(r *model.ReferralRecord) *entity.ReferralRecord {
	if r == nil {
		return nil
	}
	return &entity.ReferralRecord{
		Id:                      r.Id,
		InviterId:               r.InviterId,
		InviteeId:               r.InviteeId,
		Code:                    r.Code,
		InviterRegisterRewarded: r.InviterRegisterRewarded,
		InviteeRegisterRewarded: r.InviteeRegisterRewarded,
		InviterUpgradeRewarded:  r.InviterUpgradeRewarded,
		CreatedAt:               r.CreatedAt,
	}
}

func (m *ReferralMapper) ToModel(r *entity.ReferralRecord) *model.ReferralRecord {
	if r == nil {
		return nil
	}
	return &model.ReferralRecord{
		Id:                      r.Id,
		InviterId:               r.InviterId,
		InviteeId:               r.InviteeId,
		Code:                    r.Code,
		InviterRegisterRewarded: r.InviterRegisterRewarded,
		InviteeRegisterRewarded: r.InviteeRegisterRewarded,
		InviterUpgradeRewarded:  r.InviterUpgradeRewarded,
		CreatedAt:               r.CreatedAt,
	}
}

func (m *ReferralMapper) ToEntities(records []*model.ReferralRecord) []*entity.ReferralRecord {
	entities := make([]*entity.ReferralRecord, len(records))
	for i, r := range records {
		entities[i] = m.ToEntity(r)
	}
	return entities
}

func (m *ReferralMapper) ToModels(records []*entity.ReferralRecord) []*model.ReferralRecord {
	models := make([]*model.ReferralRecord, len(records))
	for i, r := range records {
		models[i] = m.ToModel(r)
	}
	return models
}
