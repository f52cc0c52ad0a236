package renderer

import (
	"context"
	"fmt"
	"time"
)

// LocalRenderer produces placeholder pages without calling any upstream.
// Used in development and tests; the worker pipeline around it is identical
// either way.
type LocalRenderer struct {
	delay time.Duration
}

func NewLocalRenderer(delay time.Duration) *LocalRenderer {
	return &LocalRenderer{delay: delay}
}

func (r *LocalRenderer) RenderPage(ctx context.Context, req *PageRequest) (*PageResult, error) {
	if r.delay > 0 {
		select {
		case <-time.After(r.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	content := fmt.Sprintf(
		"<article data-job=%q data-page=\"%d\"><h1>Page %d</h1><p>%s</p></article>",
		req.JobId, req.PageIndex, req.PageIndex+1, req.Description,
	)

	return &PageResult{
		PageIndex: req.PageIndex,
		Content:   content,
	}, nil
}
