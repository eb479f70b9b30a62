package tracker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"metamob-tracker/lib/metamob"

	"github.com/stretchr/testify/require"
)

func crawlFetcher(t *testing.T, monsters func(pseudo string, call int) ([]metamob.UserMonster, error)) *Fetcher {
	return &Fetcher{
		Remote:      &fakeRemote{monsters: monsters},
		Governor:    looseGovernor(t),
		MaxAttempts: 1,
	}
}

func TestCrawlMergesAllUsers(t *testing.T) {
	store := setupStore(t)
	fetcher := crawlFetcher(t, func(pseudo string, call int) ([]metamob.UserMonster, error) {
		return []metamob.UserMonster{
			{ID: 1, Name: "Tronquette la Réduite", Type: "archimonstre", Owned: 1},
		}, nil
	})

	crawler := Crawler{Fetcher: fetcher, Store: store, Workers: 4}
	summary, err := crawler.Run(context.Background(), []string{"Abra", "Chafer", "Kerman"}, false)
	require.NoError(t, err)
	require.Equal(t, 3, summary.Merged)
	require.Empty(t, summary.Failed)
	for _, pseudo := range []string{"Abra", "Chafer", "Kerman"} {
		require.Equal(t, StateMerged, summary.States[pseudo])
	}

	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	require.Len(t, snap.Holdings, 3)
}

func TestCrawlUserFailureIsNotFatal(t *testing.T) {
	store := setupStore(t)

	// the failing user keeps whatever was merged before this run
	require.NoError(t, store.ReplaceHoldings(context.Background(), "Chafer", []metamob.UserMonster{
		{ID: 2, Name: "Bouftou", Type: "monstre", Owned: 7},
	}))

	fetcher := crawlFetcher(t, func(pseudo string, call int) ([]metamob.UserMonster, error) {
		if pseudo == "Chafer" {
			return nil, &metamob.Error{Kind: metamob.KindPermanent, Op: "test", Err: metamob.ErrNotFound}
		}
		return []metamob.UserMonster{
			{ID: 1, Name: "Tronquette la Réduite", Type: "archimonstre", Owned: 1},
		}, nil
	})

	crawler := Crawler{Fetcher: fetcher, Store: store}
	summary, err := crawler.Run(context.Background(), []string{"Abra", "Chafer", "Kerman"}, false)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Merged)
	require.Len(t, summary.Failed, 1)
	require.Equal(t, "Chafer", summary.Failed[0].Pseudo)
	require.Equal(t, StateFailed, summary.States["Chafer"])

	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, Holding{Owned: 7}, snap.Holdings["Chafer"][2])
}

func TestCrawlCancellation(t *testing.T) {
	store := setupStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	var fetched int
	fetcher := crawlFetcher(t, func(pseudo string, call int) ([]metamob.UserMonster, error) {
		fetched++
		if fetched == 2 {
			cancel()
			// let the feeder goroutine observe the cancellation
			time.Sleep(10 * time.Millisecond)
		}
		return nil, nil
	})

	pseudos := []string{"Abra", "Chafer", "Kerman", "Osurc", "Wobot"}
	crawler := Crawler{Fetcher: fetcher, Store: store}
	summary, err := crawler.Run(ctx, pseudos, false)
	require.NoError(t, err)

	// everything handed out before the cancel was still merged, the rest
	// is reported failed with the context error
	require.Less(t, summary.Merged, len(pseudos))
	require.Equal(t, len(pseudos), summary.Merged+len(summary.Failed))
	for _, failure := range summary.Failed {
		require.Equal(t, context.Canceled.Error(), failure.Reason)
	}
}

// brokenStore fails every write after the first.
type brokenStore struct {
	Store
	writes int
}

func (b *brokenStore) ReplaceHoldings(ctx context.Context, pseudo string, records []metamob.UserMonster) error {
	b.writes++
	if b.writes > 1 {
		return errors.New("disk full")
	}
	return b.Store.ReplaceHoldings(ctx, pseudo, records)
}

func TestCrawlStoreFailureAborts(t *testing.T) {
	store := &brokenStore{Store: setupStore(t)}
	fetcher := crawlFetcher(t, func(pseudo string, call int) ([]metamob.UserMonster, error) {
		return nil, nil
	})

	crawler := Crawler{Fetcher: fetcher, Store: store}
	summary, err := crawler.Run(context.Background(), []string{"Abra", "Chafer", "Kerman"}, false)
	require.Error(t, err)
	require.ErrorContains(t, err, "disk full")
	require.Equal(t, 1, summary.Merged)
	require.Len(t, summary.Failed, 2)
}

func TestCrawlStoreFailureStopsFetching(t *testing.T) {
	store := &brokenStore{Store: setupStore(t)}

	var fetched int
	fetcher := crawlFetcher(t, func(pseudo string, call int) ([]metamob.UserMonster, error) {
		fetched++
		return nil, nil
	})

	pseudos := make([]string, 20)
	for i := range pseudos {
		pseudos[i] = fmt.Sprintf("user%02d", i)
	}

	crawler := Crawler{Fetcher: fetcher, Store: store}
	summary, err := crawler.Run(context.Background(), pseudos, false)
	require.Error(t, err)
	require.Equal(t, 1, summary.Merged)
	require.Len(t, summary.Failed, len(pseudos)-1)

	// the second write failed, so the bulk of the list must never have
	// been fetched at all
	require.Less(t, fetched, len(pseudos))
	for _, failure := range summary.Failed {
		// a user handed to a worker right at the stop races between the
		// cancelled admission and the unavailable store
		require.Contains(
			t,
			[]string{"store: disk full", "store unavailable", context.Canceled.Error()},
			failure.Reason,
		)
	}
}

func TestCrawlRerunAfterPartialFailure(t *testing.T) {
	store := setupStore(t)
	pseudos := []string{"Abra", "Kerman"}

	var failFirst = true
	fetch := func(pseudo string, call int) ([]metamob.UserMonster, error) {
		if failFirst && pseudo == "Abra" {
			return nil, transientErr()
		}
		return []metamob.UserMonster{
			{ID: 1, Name: "Tronquette la Réduite", Type: "archimonstre", Owned: 3},
		}, nil
	}

	crawler := Crawler{Fetcher: crawlFetcher(t, fetch), Store: store}
	summary, err := crawler.Run(context.Background(), pseudos, false)
	require.NoError(t, err)
	require.Equal(t, 1, summary.Merged)

	// a plain re-run converges without duplicating anything
	failFirst = false
	crawler.Fetcher = crawlFetcher(t, fetch)
	summary, err = crawler.Run(context.Background(), pseudos, false)
	require.NoError(t, err)
	require.Equal(t, 2, summary.Merged)

	snap, err := store.Snapshot(context.Background())
	require.NoError(t, err)
	require.Equal(t, Holding{Owned: 3}, snap.Holdings["Abra"][1])
	require.Equal(t, Holding{Owned: 3}, snap.Holdings["Kerman"][1])
}
