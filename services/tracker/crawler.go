package tracker

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"metamob-tracker/lib/metamob"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/tracker")

// UserState tracks one pseudo through a crawl run.
type UserState int

const (
	StatePending UserState = iota
	StateInFlight
	StateMerged
	StateFailed
)

func (s UserState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateInFlight:
		return "in-flight"
	case StateMerged:
		return "merged"
	case StateFailed:
		return "failed"
	}
	return "unknown"
}

type UserFailure struct {
	Pseudo string
	Reason string
}

// Summary is the run-level report. A crawl always ends with a summary,
// per-user failures never abort the run.
type Summary struct {
	Merged int
	Failed []UserFailure
	States map[string]UserState
}

// InventoryFetcher is what the crawler needs from the fetcher.
type InventoryFetcher interface {
	Fetch(ctx context.Context, pseudo string, rareOnly bool) ([]metamob.UserMonster, error)
}

// HoldingsWriter is the store slice the crawler writes through. Store
// satisfies it.
type HoldingsWriter interface {
	ReplaceHoldings(ctx context.Context, pseudo string, records []metamob.UserMonster) error
}

// Crawler drives the fetcher across the full user list and merges results
// into the store. Each user's merge is independent and atomic, so a
// partially failed run can simply be re-run.
type Crawler struct {
	Fetcher InventoryFetcher
	Store   HoldingsWriter
	// Workers defaults to 1. The governor is the real throughput
	// limiter, more workers only help when retries back off.
	Workers int
}

type crawlResult struct {
	pseudo  string
	records []metamob.UserMonster
	err     error
}

// Run crawls every given pseudo. A store write failure aborts the run and
// is returned alongside the summary of what had been merged until then;
// context cancellation marks the unprocessed users failed and keeps
// everything already merged.
func (c Crawler) Run(ctx context.Context, pseudos []string, rareOnly bool) (Summary, error) {
	ctx, span := tracer.Start(ctx, "crawler:Run")
	defer span.End()

	// a store failure cancels the remaining fetches, there is no point
	// spending quota on results that can no longer be written
	ctx, stop := context.WithCancel(ctx)
	defer stop()

	summary := Summary{States: make(map[string]UserState, len(pseudos))}
	for _, pseudo := range pseudos {
		summary.States[pseudo] = StatePending
	}

	workers := c.Workers
	if workers <= 0 {
		workers = 1
	}

	jobs := make(chan string)
	results := make(chan crawlResult)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for pseudo := range jobs {
				records, err := c.Fetcher.Fetch(ctx, pseudo, rareOnly)
				results <- crawlResult{pseudo: pseudo, records: records, err: err}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, pseudo := range pseudos {
			select {
			case jobs <- pseudo:
			case <-ctx.Done():
				return
			}
		}
	}()
	go func() {
		wg.Wait()
		close(results)
	}()

	var storeErr error
	for result := range results {
		summary.States[result.pseudo] = StateInFlight

		if result.err != nil {
			slog.WarnContext(
				ctx, "user fetch failed",
				"pseudo", result.pseudo,
				"err", result.err,
			)
			c.fail(&summary, result.pseudo, result.err.Error())
			continue
		}
		if storeErr != nil {
			// the store already failed, do not attempt more writes
			c.fail(&summary, result.pseudo, "store unavailable")
			continue
		}

		// a cancel mid-run must not corrupt the merge of the user whose
		// fetch already completed
		err := c.Store.ReplaceHoldings(context.WithoutCancel(ctx), result.pseudo, result.records)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "store write failed")
			storeErr = err
			stop()
			c.fail(&summary, result.pseudo, "store: "+err.Error())
			continue
		}

		summary.States[result.pseudo] = StateMerged
		summary.Merged++
		slog.DebugContext(
			ctx, "merged user",
			"pseudo", result.pseudo,
			"records", len(result.records),
		)
	}

	// users never handed to a worker, e.g. after cancellation
	for pseudo, state := range summary.States {
		if state != StatePending {
			continue
		}
		reason := "not processed"
		if storeErr != nil {
			reason = "store unavailable"
		} else if err := ctx.Err(); err != nil {
			reason = err.Error()
		}
		c.fail(&summary, pseudo, reason)
	}

	sort.Slice(summary.Failed, func(i, j int) bool {
		return summary.Failed[i].Pseudo < summary.Failed[j].Pseudo
	})

	slog.InfoContext(
		ctx, "crawl finished",
		"merged", summary.Merged,
		"failed", len(summary.Failed),
	)
	return summary, storeErr
}

func (c Crawler) fail(summary *Summary, pseudo, reason string) {
	summary.States[pseudo] = StateFailed
	summary.Failed = append(summary.Failed, UserFailure{Pseudo: pseudo, Reason: reason})
}
