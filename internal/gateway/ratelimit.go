package gateway

import (
	"context"
	"io"
	"time"

	"golang.org/x/time/rate"

	"github.com/valpere/agentran/internal/failure"
)

// RateLimited spaces calls to the wrapped gateway so no more than the
// configured number start per minute.
type RateLimited struct {
	next    Gateway
	limiter *rate.Limiter
}

// NewRateLimited wraps next. perMinute <= 0 disables throttling and
// returns next unchanged.
func NewRateLimited(next Gateway, perMinute int) Gateway {
	if perMinute <= 0 {
		return next
	}
	return &RateLimited{
		next:    next,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1),
	}
}

func (r *RateLimited) Call(ctx context.Context, messages []Message, opts Options) (Reply, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return Reply{}, failure.New(failure.ExternalCall, "wait for rate limiter", err)
	}
	return r.next.Call(ctx, messages, opts)
}

func (r *RateLimited) Close() error {
	if c, ok := r.next.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
