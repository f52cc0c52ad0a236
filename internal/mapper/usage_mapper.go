package mapper

import (
	"encoding/json"

	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/model"

	"gorm.io/datatypes"
)

type UsageMapper struct{}

func NewUsageMapper() *UsageMapper {
	return &UsageMapper{}
}

func (m *UsageMapper) ToEntity(u *model.UsageRecord) *entity.UsageRecord {
	if u == nil {
		return nil
	}

	var metadata map[string]interface{}
	if len(u.Metadata) > 0 {
		// Metadata is free-form jsonb; a decode failure leaves it nil rather
		// than failing the whole read.
		_ = json.Unmarshal(u.Metadata, &metadata)
	}

	return &entity.UsageRecord{
		Id:                u.Id,
		UserId:            u.UserId,
		Units:             u.Units,
		PointsCharged:     u.PointsCharged,
		UsedSystemCredits: u.UsedSystemCredits,
		Description:       u.Description,
		Metadata:          metadata,
		CreatedAt:         u.CreatedAt,
	}
}

func (m *UsageMapper) ToModel(u *entity.UsageRecord) *model.UsageRecord {
	if u == nil {
		return nil
	}

	var metadata datatypes.JSON
	if len(u.Metadata) > 0 {
		if raw, err := json.Marshal(u.Metadata); err == nil {
			metadata = datatypes.JSON(raw)
		}
	}

	return &model.UsageRecord{
		Id:                u.Id,
		UserId:            u.UserId,
		Units:             u.Units,
		PointsCharged:     u.PointsCharged,
		UsedSystemCredits: u.UsedSystemCredits,
		Description:       u.Description,
		Metadata:          metadata,
		CreatedAt:         u.CreatedAt,
	}
}

func (m *UsageMapper) ToEntities(records []*model.UsageRecord) []*entity.UsageRecord {
	entities := make([]*entity.UsageRecord, len(records))
	for i, u := range records {
		entities[i] = m.ToEntity(u)
	}
	return entities
}

func (m *UsageMapper) ToModels(records []*entity.UsageRecord) []*model.UsageRecord {
	models := make([]*model.UsageRecord, len(records))
	for i, u := range records {
		models[i] = m.ToModel(u)
	}
	return models
}
