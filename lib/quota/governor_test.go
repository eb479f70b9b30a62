package quota

import (
	"context"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeClock advances only when the governor sleeps, so a test can run
// thousands of admissions without waiting in real time.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
	return ctx.Err()
}

func newFakeGovernor(t *testing.T, limit int, window time.Duration) (*Governor, *fakeClock) {
	g, err := New(limit, window)
	require.NoError(t, err)
	clock := &fakeClock{t: time.Unix(1700000000, 0)}
	g.now = clock.now
	g.sleep = clock.sleep
	return g, clock
}

func assertWindowCeiling(t *testing.T, admits []time.Time, limit int, window time.Duration) {
	t.Helper()
	sort.Slice(admits, func(i, j int) bool { return admits[i].Before(admits[j]) })
	for i := 0; i+limit < len(admits); i++ {
		span := admits[i+limit].Sub(admits[i])
		require.GreaterOrEqual(
			t, span, window,
			"admissions %d..%d fit inside one window", i, i+limit,
		)
	}
}

func TestAcquireNeverExceedsWindowCeiling(t *testing.T) {
	const limit = 5
	const window = time.Minute
	g, clock := newFakeGovernor(t, limit, window)

	ctx := context.Background()
	var admits []time.Time
	for i := 0; i < 200; i++ {
		require.NoError(t, g.Acquire(ctx))
		admits = append(admits, clock.now())
	}

	assertWindowCeiling(t, admits, limit, window)
}

func TestThroughputConvergesToLimit(t *testing.T) {
	const limit = 60
	const window = time.Minute
	g, clock := newFakeGovernor(t, limit, window)

	start := clock.now()
	ctx := context.Background()
	for i := 0; i < 10*limit; i++ {
		require.NoError(t, g.Acquire(ctx))
	}
	elapsed := clock.now().Sub(start)

	// 600 admissions at 60/min need at least 9 full windows beyond the
	// first burst, and sustained demand should not need much more.
	require.GreaterOrEqual(t, elapsed, 9*window)
	require.Less(t, elapsed, 10*window)
}

func TestAcquireConcurrent(t *testing.T) {
	const limit = 10
	const window = 100 * time.Millisecond
	g, err := New(limit, window)
	require.NoError(t, err)

	var mu sync.Mutex
	var admits []time.Time

	ctx := context.Background()
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 8; j++ {
				if err := g.Acquire(ctx); err != nil {
					t.Error(err)
					return
				}
				mu.Lock()
				admits = append(admits, time.Now())
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	require.Len(t, admits, 32)
	// recorded timestamps trail the admission instants slightly, so allow
	// a small scheduling tolerance on the window check
	assertWindowCeiling(t, admits, limit, window-20*time.Millisecond)
}

func TestAcquireHonorsContext(t *testing.T) {
	g, _ := newFakeGovernor(t, 1, time.Minute)

	require.NoError(t, g.Acquire(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := g.Acquire(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestNewRejectsBadConfig(t *testing.T) {
	_, err := New(0, time.Minute)
	require.ErrorIs(t, err, ErrBadConfig)
	_, err = New(60, 0)
	require.ErrorIs(t, err, ErrBadConfig)
	_, err = New(-1, -time.Second)
	require.ErrorIs(t, err, ErrBadConfig)
}
