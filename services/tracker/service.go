package tracker

import (
	"context"
	"log/slog"

	"metamob-tracker/lib/metamob"
)

// Listing produces the recently-active account list. *metamob.SiteClient
// satisfies it.
type Listing interface {
	RecentUsers(ctx context.Context) ([]string, error)
}

// ProfileFetcher refreshes one user's roster data. *Fetcher satisfies it.
type ProfileFetcher interface {
	Profile(ctx context.Context, pseudo string) (metamob.UserProfile, error)
}

// Service exposes the command surface as structured-result operations; the
// CLI layer only renders what comes back.
type Service struct {
	Store   Store
	Listing Listing
	Fetcher *Fetcher
	Workers int
}

// RefreshUsersResult summarizes a roster refresh.
type RefreshUsersResult struct {
	// Listed is how many accounts the listing page showed.
	Listed int
	// Added are the pseudos seen for the first time.
	Added []string
	// Refreshed counts profiles fetched successfully.
	Refreshed int
	Failed    []UserFailure
}

// RefreshUsers scrapes the recent-user listing, registers unknown pseudos,
// then refreshes every known user's profile through the governed API.
// Per-user profile failures are recorded, not fatal.
func (s Service) RefreshUsers(ctx context.Context) (RefreshUsersResult, error) {
	ctx, span := tracer.Start(ctx, "service:RefreshUsers")
	defer span.End()

	listed, err := s.Listing.RecentUsers(ctx)
	if err != nil {
		return RefreshUsersResult{}, err
	}
	slog.InfoContext(ctx, "fetched user listing", "count", len(listed))

	added, err := s.Store.AddUsers(ctx, listed)
	if err != nil {
		return RefreshUsersResult{}, err
	}

	result := RefreshUsersResult{Listed: len(listed), Added: added}

	pseudos, err := s.Store.ListUsers(ctx)
	if err != nil {
		return result, err
	}
	for _, pseudo := range pseudos {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, UserFailure{Pseudo: pseudo, Reason: err.Error()})
			continue
		}

		profile, err := s.Fetcher.Profile(ctx, pseudo)
		if err != nil {
			slog.WarnContext(ctx, "profile refresh failed", "pseudo", pseudo, "err", err)
			result.Failed = append(result.Failed, UserFailure{Pseudo: pseudo, Reason: err.Error()})
			continue
		}
		if err := s.Store.UpsertProfile(ctx, profile); err != nil {
			return result, err
		}
		result.Refreshed++
	}
	return result, nil
}

// RefreshInventory crawls every known user's monsters and merges them.
func (s Service) RefreshInventory(ctx context.Context, rareOnly bool) (Summary, error) {
	pseudos, err := s.Store.ListUsers(ctx)
	if err != nil {
		return Summary{}, err
	}

	crawler := Crawler{
		Fetcher: s.Fetcher,
		Store:   s.Store,
		Workers: s.Workers,
	}
	return crawler.Run(ctx, pseudos, rareOnly)
}

// StatsBy selects which quantity a stats query sums.
type StatsBy string

const (
	ByOwned StatsBy = "owned"
	ByTrade StatsBy = "trade"
)

// Stats ranks the catalog by total owned or traded quantity.
func (s Service) Stats(ctx context.Context, by StatsBy, k int, rareOnly bool) (Extremes, error) {
	snap, err := s.Store.Snapshot(ctx)
	if err != nil {
		return Extremes{}, err
	}
	switch by {
	case ByOwned:
		return TopOwned(snap, k, rareOnly)
	case ByTrade:
		return TopTrade(snap, k, rareOnly)
	}
	return Extremes{}, ErrBadQuery
}

// Histogram resolves the monster name and buckets its owners.
func (s Service) Histogram(ctx context.Context, item string, width int64) (Monster, []Bucket, error) {
	snap, err := s.Store.Snapshot(ctx)
	if err != nil {
		return Monster{}, nil, err
	}
	monster, err := ResolveMonster(snap, item)
	if err != nil {
		return Monster{}, nil, err
	}
	buckets, err := Histogram(snap, monster.ID, width)
	return monster, buckets, err
}

// FindTrade resolves the monster name and lists users offering it.
func (s Service) FindTrade(ctx context.Context, item string) (Monster, []TradeOffer, []UserInfo, error) {
	return s.findOffers(ctx, item, FindTrade)
}

// FindResearch resolves the monster name and lists users searching it.
func (s Service) FindResearch(ctx context.Context, item string) (Monster, []TradeOffer, []UserInfo, error) {
	return s.findOffers(ctx, item, FindResearch)
}

func (s Service) findOffers(
	ctx context.Context,
	item string,
	query func(Snapshot, int64) ([]TradeOffer, error),
) (Monster, []TradeOffer, []UserInfo, error) {
	snap, err := s.Store.Snapshot(ctx)
	if err != nil {
		return Monster{}, nil, nil, err
	}
	monster, err := ResolveMonster(snap, item)
	if err != nil {
		return Monster{}, nil, nil, err
	}
	offers, err := query(snap, monster.ID)
	if err != nil {
		return Monster{}, nil, nil, err
	}

	users := make([]UserInfo, len(offers))
	for i, offer := range offers {
		users[i] = snap.Users[offer.Pseudo]
	}
	return monster, offers, users, nil
}

// Unbalanced lists players hoarding some monsters while missing others.
func (s Service) Unbalanced(ctx context.Context, factor float64) ([]UnbalancedPlayer, error) {
	snap, err := s.Store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Unbalanced(snap, factor)
}

// Compare diffs the current database against an older snapshot.
func (s Service) Compare(ctx context.Context, old Snapshot, tradeOnly bool) ([]PlayerDiff, error) {
	snap, err := s.Store.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return Compare(old, snap, tradeOnly), nil
}
