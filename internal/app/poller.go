package app

import (
	"context"
	"time"
)

const (
	defaultPollInterval   = 3 * time.Second
	defaultRequestTimeout = 5 * time.Second
)

// Refresher is anything that can re-read the authoritative state.
type Refresher interface {
	Refresh(ctx context.Context) error
}

// RunPoller refreshes immediately and then every interval until ctx is
// cancelled. Each refresh is bounded by timeout. Failures are the refresher's
// business; the cadence never changes. It returns ctx.Err().
func RunPoller(ctx context.Context, r Refresher, interval, timeout time.Duration) error {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		refresh(ctx, r, timeout)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func refresh(ctx context.Context, r Refresher, timeout time.Duration) {
	if ctx.Err() != nil {
		return
	}
	rctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	_ = r.Refresh(rctx)
}
