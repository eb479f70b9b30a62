// Package quota enforces a hard "at most N calls in any window of length T"
// ceiling on outbound API calls. The upstream api.metamob.fr boundary allows
// 60 calls per minute and bans keys that exceed it, so this is a strict
// sliding window, not a best-effort average.
package quota

import (
	"context"
	"errors"
	"sync"
	"time"
)

var ErrBadConfig = errors.New("quota: limit and window must be positive")

const (
	DefaultLimit  = 60
	DefaultWindow = time.Minute
)

// Governor admits calls one at a time. Acquire blocks the caller until one
// more admission cannot push the count over the limit within any window;
// it never fails on its own, only when the context ends.
//
// An instance is owned by whoever constructs it and passed explicitly to
// every caller. There is no package-level state.
type Governor struct {
	limit  int
	window time.Duration

	mu       sync.Mutex
	admitted []time.Time

	// overridable in tests for a controllable clock
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(limit int, window time.Duration) (*Governor, error) {
	if limit <= 0 || window <= 0 {
		return nil, ErrBadConfig
	}
	return &Governor{
		limit:  limit,
		window: window,
		now:    time.Now,
		sleep:  sleepContext,
	}, nil
}

// Acquire blocks until admitting one more call keeps every window of the
// configured duration at or under the limit. The only error it returns is
// ctx.Err() when the caller's context ends while waiting.
func (g *Governor) Acquire(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		g.mu.Lock()
		now := g.now()
		g.prune(now)
		if len(g.admitted) < g.limit {
			g.admitted = append(g.admitted, now)
			g.mu.Unlock()
			return nil
		}
		// the oldest admission leaving the window frees one slot
		wait := g.window - now.Sub(g.admitted[0])
		g.mu.Unlock()

		if wait <= 0 {
			continue
		}
		if err := g.sleep(ctx, wait); err != nil {
			return err
		}
	}
}

// prune drops admissions that have aged out of the window. Callers hold mu.
func (g *Governor) prune(now time.Time) {
	cut := 0
	for cut < len(g.admitted) && now.Sub(g.admitted[cut]) >= g.window {
		cut++
	}
	if cut > 0 {
		g.admitted = append(g.admitted[:0], g.admitted[cut:]...)
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
