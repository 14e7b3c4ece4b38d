package newstrack

import (
	"context"

	"github.com/newstrack/newstrack/browser"
	"github.com/newstrack/newstrack/extract"
)

// poolSession adapts a browser pool to the extractor's session interface.
type poolSession struct {
	pool *browser.Pool
}

// NewPoolSession wraps a browser pool so the extractor can borrow rendered
// pages from it.
func NewPoolSession(pool *browser.Pool) extract.Session {
	return &poolSession{pool: pool}
}

func (s *poolSession) WithPage(ctx context.Context, fn func(extract.Pager) error) error {
	return s.pool.WithPage(ctx, func(page *browser.Page) error {
		return fn(page)
	})
}
