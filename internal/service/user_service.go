// FILE: internal/service/user_service.go
package service

import (
	"context"
	"fmt"
	"strings"

	"pagecraft-be/internal/dto"
	"pagecraft-be/internal/repository/specification"
	"pagecraft-be/internal/repository/unitofwork"

	"github.com/google/uuid"
)

type IUserService interface {
	GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error)
	UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) error

	// SetProviderKey stores the user's own upstream credential. An empty key
	// clears it and puts the account back on system credits.
	SetProviderKey(ctx context.Context, userId uuid.UUID, req *dto.UpdateProviderKeyRequest) error
}

type userService struct {
	uowFactory unitofwork.RepositoryFactory
}

func NewUserService(uowFactory unitofwork.RepositoryFactory) IUserService {
	return &userService{uowFactory: uowFactory}
}

func (s *userService) GetProfile(ctx context.Context, userId uuid.UUID) (*dto.UserProfileResponse, error) {
	uow := s.uowFactory.NewUnitOfWork(ctx)

	user, err := uow.UserRepository().FindOne(ctx, specification.ByID{ID: userId})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user not found")
	}

	return &dto.UserProfileResponse{
		Id:             user.Id,
		Email:          user.Email,
		DisplayName:    user.DisplayName,
		Role:           string(user.Role),
		Tier:           string(user.Tier),
		ReferralCode:   user.ReferralCode,
		HasProviderKey: user.HasOwnProviderKey(),
		CreatedAt:      user.CreatedAt,
	}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userId uuid.UUID, req *dto.UpdateProfileRequest) error {
	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().UpdateProfile(ctx, userId, req.DisplayName); err != nil {
		return err
	}

	return uow.Commit()
}

func (s *userService) SetProviderKey(ctx context.Context, userId uuid.UUID, req *dto.UpdateProviderKeyRequest) error {
	var key *string
	if trimmed := strings.TrimSpace(req.ProviderAPIKey); trimmed != "" {
		key = &trimmed
	}

	uow := s.uowFactory.NewUnitOfWork(ctx)
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer uow.Rollback()

	if err := uow.UserRepository().UpdateProviderKey(ctx, userId, key); err != nil {
		return err
	}

	return uow.Commit()
}
