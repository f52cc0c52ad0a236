// FILE: internal/dto/user_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

type UserProfileResponse struct {
	Id             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	DisplayName    string    `json:"display_name"`
	Role           string    `json:"role"`
	Tier           string    `json:"tier"`
	ReferralCode   string    `json:"referral_code"`
	HasProviderKey bool      `json:"has_provider_key"`
	CreatedAt      time.Time `json:"created_at"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"display_name" validate:"required,min=3"`
}

// UpdateProviderKeyRequest sets or clears the user's own upstream API key.
// An empty key switches the account back to system credits.
type UpdateProviderKeyRequest struct {
	ProviderAPIKey string `json:"provider_api_key" validate:"omitempty,min=8,max=255"`
}
