// Package tracker is the core of the metamob crawler: a quota-governed
// fetcher, the crawl orchestrator, the durable per-user holding store and
// the aggregation queries that run over its snapshots.
package tracker

import (
	"errors"
	"time"
)

var (
	// ErrBadQuery marks invalid query parameters, rejected before any
	// network or database activity.
	ErrBadQuery = errors.New("tracker: invalid query parameter")
	// ErrUnknownMonster is returned when an item identifier or name does
	// not resolve against the catalog.
	ErrUnknownMonster = errors.New("tracker: unknown monster")
)

// Monster is one catalog entry. The catalog is reference data accumulated
// from fetch results; aggregation treats it as read-only.
type Monster struct {
	ID         int64
	Name       string
	NormalName string
	Type       string
	Zone       string
	Subzone    string
	Step       int64
}

// Rare reports whether the monster belongs to the archimonster subset,
// the default filter for crawls and rankings.
func (m Monster) Rare() bool {
	return m.Type == "archimonstre"
}

// UserInfo mirrors one row of the user roster.
type UserInfo struct {
	Pseudo      string
	DisplayName string
	ProfileURL  string
	LastSeen    time.Time
}

// Holding is one (user, monster) inventory record. ForTrade is reported
// independently by the source and is not clamped against Owned.
type Holding struct {
	Owned    int64
	ForTrade int64
	Searched int64
}

// Snapshot is a read-consistent view of the store at one point in time.
// Aggregation queries are pure functions of a Snapshot.
type Snapshot struct {
	Users    map[string]UserInfo
	Monsters map[int64]Monster
	// Holdings maps pseudo -> monster id -> record
	Holdings map[string]map[int64]Holding
}
