// Package renderer is the boundary to the upstream page-generation engine.
package renderer

import (
	"context"

	"github.com/google/uuid"
)

// PageRequest describes one page to produce.
type PageRequest struct {
	JobId       uuid.UUID
	UserId      uuid.UUID
	PageIndex   int
	Description string
	// APIKey overrides the system credential when the user brings their own.
	APIKey string
}

type PageResult struct {
	PageIndex int
	Content   string
}

// PageRenderer defines the contract for any page-generation backend.
type PageRenderer interface {
	RenderPage(ctx context.Context, req *PageRequest) (*PageResult, error)
}
