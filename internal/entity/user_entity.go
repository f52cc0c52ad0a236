// FILE: internal/entity/user_entity.go
package entity

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string
type UserTier string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"

	UserTierFree    UserTier = "free"
	UserTierPremium UserTier = "premium"
)

type User struct {
	Id           uuid.UUID
	Email        string
	PasswordHash *string
	DisplayName  string
	Role         UserRole
	Tier         UserTier
	// ReferralCode is this user's own share code, issued at registration.
	ReferralCode string
	// ProviderAPIKey is a user-supplied upstream key. When present the render
	// pipeline runs on the user's own credentials and the ledger is bypassed.
	ProviderAPIKey *string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

func (u *User) HasOwnProviderKey() bool {
	return u.ProviderAPIKey != nil && *u.ProviderAPIKey != ""
}
