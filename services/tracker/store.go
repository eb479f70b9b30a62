package tracker

import (
	"context"
	"database/sql"
	"time"

	"metamob-tracker/lib/metamob"
	"metamob-tracker/services/tracker/db"
)

// Store persists the user roster, the monster catalog and per-user
// holdings. Crawls and reports are separate invocations, possibly days
// apart, so everything lives in sqlite.
type Store struct {
	db  *sql.DB
	qry *db.Queries
}

func NewStore(database *sql.DB) Store {
	return Store{
		db:  database,
		qry: db.New(database),
	}
}

// AddUsers registers pseudos from a listing refresh, returning the ones
// that were not known before. Existing users are never deleted, accounts
// absent from later refreshes simply go stale.
func (s Store) AddUsers(ctx context.Context, pseudos []string) ([]string, error) {
	var added []string
	for _, pseudo := range pseudos {
		inserted, err := s.qry.CreateUser(ctx, pseudo)
		if err != nil {
			return added, err
		}
		if inserted {
			added = append(added, pseudo)
		}
	}
	return added, nil
}

// UpsertProfile overwrites a user's roster row with the latest profile
// data, last refresh wins.
func (s Store) UpsertProfile(ctx context.Context, profile metamob.UserProfile) error {
	return s.qry.UpsertUser(ctx, db.UpsertUserParams{
		Pseudo:      profile.Pseudo,
		DisplayName: profile.Pseudo,
		ProfileURL:  profile.ProfileURL,
		LastSeen:    profile.LastSeen().Unix(),
	})
}

// ListUsers returns every known pseudo in ascending order.
func (s Store) ListUsers(ctx context.Context) ([]string, error) {
	users, err := s.qry.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	pseudos := make([]string, len(users))
	for i, u := range users {
		pseudos[i] = u.Pseudo
	}
	return pseudos, nil
}

// ReplaceHoldings swaps out a user's entire record set in one transaction.
// A failed replacement leaves the previously stored set untouched; catalog
// rows seen in the records are upserted alongside.
func (s Store) ReplaceHoldings(ctx context.Context, pseudo string, records []metamob.UserMonster) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	txqry := s.qry.WithTx(tx)

	_, err = txqry.CreateUser(ctx, pseudo)
	if err != nil {
		return err
	}
	err = txqry.DeleteHoldings(ctx, pseudo)
	if err != nil {
		return err
	}

	now := time.Now().Unix()
	for _, record := range records {
		err := txqry.UpsertMonster(ctx, db.UpsertMonsterParams{
			ID:         int64(record.ID),
			Name:       record.Name,
			NormalName: record.NormalName,
			Type:       record.Type,
			Zone:       record.Zone,
			Subzone:    record.Subzone,
			Step:       int64(record.Step),
		})
		if err != nil {
			return err
		}

		err = txqry.CreateHolding(ctx, db.CreateHoldingParams{
			Pseudo:    pseudo,
			MonsterID: int64(record.ID),
			Owned:     int64(record.Owned),
			ForTrade:  int64(record.ForTrade),
			Searched:  int64(record.Searched),
			UpdatedAt: now,
		})
		if err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Snapshot materializes the current state for the aggregation queries.
func (s Store) Snapshot(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{
		Users:    map[string]UserInfo{},
		Monsters: map[int64]Monster{},
		Holdings: map[string]map[int64]Holding{},
	}

	users, err := s.qry.ListUsers(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	for _, u := range users {
		snap.Users[u.Pseudo] = UserInfo{
			Pseudo:      u.Pseudo,
			DisplayName: u.DisplayName,
			ProfileURL:  u.ProfileURL,
			LastSeen:    time.Unix(u.LastSeen, 0),
		}
	}

	monsters, err := s.qry.ListMonsters(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	for _, m := range monsters {
		snap.Monsters[m.ID] = Monster{
			ID:         m.ID,
			Name:       m.Name,
			NormalName: m.NormalName,
			Type:       m.Type,
			Zone:       m.Zone,
			Subzone:    m.Subzone,
			Step:       m.Step,
		}
	}

	holdings, err := s.qry.ListHoldings(ctx)
	if err != nil {
		return Snapshot{}, err
	}
	for _, h := range holdings {
		userHoldings, ok := snap.Holdings[h.Pseudo]
		if !ok {
			userHoldings = map[int64]Holding{}
			snap.Holdings[h.Pseudo] = userHoldings
		}
		userHoldings[h.MonsterID] = Holding{
			Owned:    h.Owned,
			ForTrade: h.ForTrade,
			Searched: h.Searched,
		}
	}

	return snap, nil
}
