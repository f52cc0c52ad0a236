package mapper

import (
	"pagecraft-be/internal/entity"
	"pagecraft-be/internal/model"
)

type GenerationMapper struct{}

func NewGenerationMapper() *GenerationMapper {
	return &GenerationMapper{}
}

func (m *GenerationMapper) ToEntity(j *model.GenerationJob) *entity.GenerationJob {
	if j == nil {
		return nil
	}
	return &entity.GenerationJob{
		Id:             j.Id,
		UserId:         j.UserId,
		PagesRequested: j.PagesRequested,
		PagesCompleted: j.PagesCompleted,
		Status:         entity.GenerationStatus(j.Status),
		Description:    j.Description,
		FailureReason:  j.FailureReason,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

func (m *GenerationMapper) ToModel(j *entity.GenerationJob) *model.GenerationJob {
	if j == nil {
		return nil
	}
	return &model.GenerationJob{
		Id:             j.Id,
		UserId:         j.UserId,
		PagesRequested: j.PagesRequested,
		PagesCompleted: j.PagesCompleted,
		Status:         string(j.Status),
		Description:    j.Description,
		FailureReason:  j.FailureReason,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

func (m *GenerationMapper) ToEntities(jobs []*model.GenerationJob) []*entity.GenerationJob {
	entities := make([]*entity.GenerationJob, len(jobs))
	for i, j := range jobs {
		entities[i] = m.ToEntity(j)
	}
	return entities
}

func (m *GenerationMapper) ToModels(jobs []*entity.GenerationJob) []*model.GenerationJob {
	models := make([]*model.GenerationJob, len(jobs))
	for i, j := range jobs {
		models[i] = m.ToModel(j)
	}
	return models
}
