// FILE: internal/dto/auth_dto.go
package dto

import (
	"github.com/google/uuid"
)

// --- Auth DTOs ---

type RegisterRequest struct {
	DisplayName  string `json:"display_name" validate:"required,min=3"`
	Email        string `json:"email" validate:"required,email"`
	Password     string `json:"password" validate:"required,min=8"`
	ReferralCode string `json:"referral_code" validate:"omitempty,min=4,max=32"`
}

type RegisterResponse struct {
	Id            uuid.UUID `json:"id"`
	Email         string    `json:"email"`
	ReferralCode  string    `json:"referral_code"`
	WelcomePoints int64     `json:"welcome_points"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string  `json:"access_token"`
	User        UserDTO `json:"user"`
}

type UserDTO struct {
	Id           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	DisplayName  string    `json:"display_name"`
	Role         string    `json:"role"`
	Tier         string    `json:"tier"`
	ReferralCode string    `json:"referral_code"`
}
