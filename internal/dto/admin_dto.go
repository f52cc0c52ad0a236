// FILE: internal/dto/admin_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Admin Grant DTOs ---

type GrantPointsRequest struct {
	UserId     uuid.UUID `json:"user_id" validate:"required"`
	Points     int64     `json:"points" validate:"required,gt=0"`
	ExpireDays int       `json:"expire_days" validate:"omitempty,gte=0"` // 0 = never expires
	Note       string    `json:"note" validate:"omitempty,max=255"`
}

type GrantPointsResponse struct {
	BatchId   uuid.UUID  `json:"batch_id"`
	Points    int64      `json:"points"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// --- Recharge Code DTOs ---

type GenerateCodesRequest struct {
	Count            int    `json:"count" validate:"required,gt=0,lte=1000"`
	Points           int64  `json:"points" validate:"required,gt=0"`
	BatchNo          string `json:"batch_no" validate:"omitempty,max=64"`
	ExpireDays       int    `json:"expire_days" validate:"omitempty,gte=0"`        // redemption window, 0 = no deadline
	PointsExpireDays int    `json:"points_expire_days" validate:"omitempty,gte=0"` // lifetime of the granted batch, 0 = never
}

type GenerateCodesResponse struct {
	BatchNo string   `json:"batch_no"`
	Codes   []string `json:"codes"`
}

type RechargeCodeItem struct {
	Id        uuid.UUID  `json:"id"`
	Code      string     `json:"code"`
	Points    int64      `json:"points"`
	BatchNo   string     `json:"batch_no"`
	ExpiresAt *time.Time `json:"expires_at"`
	UsedBy    *uuid.UUID `json:"used_by,omitempty"`
	UsedAt    *time.Time `json:"used_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type RechargeCodeListResponse struct {
	Codes   []RechargeCodeItem `json:"codes"`
	Total   int64              `json:"total"`
	Page    int                `json:"page"`
	PerPage int                `json:"per_page"`
}
