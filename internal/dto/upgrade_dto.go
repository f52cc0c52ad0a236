// FILE: internal/dto/upgrade_dto.go
package dto

import (
	"time"

	"github.com/google/uuid"
)

// --- Premium Upgrade DTOs ---

type UpgradeCheckoutRequest struct {
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"omitempty"`
	Email     string `json:"email" validate:"required,email"`
	Phone     string `json:"phone" validate:"omitempty"`
}

type UpgradeCheckoutResponse struct {
	OrderId         uuid.UUID `json:"order_id"`
	SnapToken       string    `json:"snap_token"`
	SnapRedirectUrl string    `json:"snap_redirect_url"`
}

type UpgradeStatusResponse struct {
	OrderId   uuid.UUID  `json:"order_id"`
	Status    string     `json:"status"`
	Amount    int64      `json:"amount"`
	PaidAt    *time.Time `json:"paid_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

type MidtransWebhookRequest struct {
	TransactionStatus string `json:"transaction_status"`
	OrderId           string `json:"order_id"`
	FraudStatus       string `json:"fraud_status"`
	// Signature validation fields
	SignatureKey string `json:"signature_key"`
	StatusCode   string `json:"status_code"`
	GrossAmount  string `json:"gross_amount"`
}
