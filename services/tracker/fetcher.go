package tracker

import (
	"context"
	"log/slog"
	"time"

	"metamob-tracker/lib/metamob"
	"metamob-tracker/lib/quota"
)

// Remote is the slice of the metamob API the fetcher needs.
// *metamob.Client satisfies it.
type Remote interface {
	UserMonsters(ctx context.Context, pseudo string) ([]metamob.UserMonster, error)
	User(ctx context.Context, pseudo string) (metamob.UserProfile, error)
}

const (
	DefaultMaxAttempts = 3
	DefaultBackoff     = 2 * time.Second
)

// Fetcher wraps the API client with admission control and retries.
// Transient failures are retried with exponential backoff up to
// MaxAttempts, each attempt going through the governor again; permanent
// failures are returned immediately. It never writes to the store.
type Fetcher struct {
	Remote      Remote
	Governor    *quota.Governor
	MaxAttempts int
	Backoff     time.Duration

	// overridable in tests
	sleep func(ctx context.Context, d time.Duration) error
}

// Fetch retrieves a user's inventory records, filtered to the rare subset
// when rareOnly is set.
func (f *Fetcher) Fetch(ctx context.Context, pseudo string, rareOnly bool) ([]metamob.UserMonster, error) {
	var monsters []metamob.UserMonster
	err := f.withRetry(ctx, "monsters", pseudo, func(ctx context.Context) error {
		var err error
		monsters, err = f.Remote.UserMonsters(ctx, pseudo)
		return err
	})
	if err != nil {
		return nil, err
	}

	if !rareOnly {
		return monsters, nil
	}
	rare := monsters[:0]
	for _, m := range monsters {
		if m.Rare() {
			rare = append(rare, m)
		}
	}
	return rare, nil
}

// Profile retrieves a user's public profile under the same admission and
// retry rules as Fetch.
func (f *Fetcher) Profile(ctx context.Context, pseudo string) (metamob.UserProfile, error) {
	var profile metamob.UserProfile
	err := f.withRetry(ctx, "profile", pseudo, func(ctx context.Context) error {
		var err error
		profile, err = f.Remote.User(ctx, pseudo)
		return err
	})
	return profile, err
}

func (f *Fetcher) withRetry(ctx context.Context, what, pseudo string, call func(ctx context.Context) error) error {
	maxAttempts := f.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = DefaultMaxAttempts
	}
	backoff := f.Backoff
	if backoff <= 0 {
		backoff = DefaultBackoff
	}
	sleep := f.sleep
	if sleep == nil {
		sleep = sleepContext
	}

	var err error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if acquireErr := f.Governor.Acquire(ctx); acquireErr != nil {
			return acquireErr
		}

		err = call(ctx)
		if err == nil {
			return nil
		}
		if !metamob.IsTransient(err) {
			return err
		}
		if attempt == maxAttempts {
			break
		}

		slog.WarnContext(
			ctx, "retrying fetch",
			"what", what,
			"pseudo", pseudo,
			"attempt", attempt,
			"err", err,
		)
		if sleepErr := sleep(ctx, backoff); sleepErr != nil {
			return sleepErr
		}
		backoff *= 2
	}
	return err
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
