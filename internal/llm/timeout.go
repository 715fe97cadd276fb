package llm

import (
	"context"
	"time"
)

// TimeoutClient bounds every completion with a deadline so callers can move
// on to cheaper strategies when the provider is slow or down.
type TimeoutClient struct {
	next    Client
	timeout time.Duration
}

// WithTimeout wraps next. A non-positive timeout returns next unchanged.
func WithTimeout(next Client, timeout time.Duration) Client {
	if next == nil || timeout <= 0 {
		return next
	}
	return &TimeoutClient{next: next, timeout: timeout}
}

func (c *TimeoutClient) Complete(ctx context.Context, req Request) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.next.Complete(ctx, req)
}
