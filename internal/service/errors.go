// FILE: internal/service/errors.go
package service

import "errors"

// Business failures callers are expected to branch on.
var (
	ErrInsufficientPoints = errors.New("insufficient points")
	ErrContention         = errors.New("deduction retries exhausted")
	ErrInvalidGrant       = errors.New("grant amount must be positive")
	ErrCodeInvalid        = errors.New("recharge code not found")
	ErrCodeAlreadyUsed    = errors.New("recharge code already used")
	ErrCodeExpired        = errors.New("recharge code expired")

	// ErrIntegrity means a guarded write found the row changed underneath a
	// held lock. It should never fire; when it does the transaction aborts
	// with nothing written.
	ErrIntegrity = errors.New("point batch changed underneath lock")
)
