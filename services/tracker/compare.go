package tracker

import (
	"sort"
)

// Change is one monster whose value moved between two snapshots. In trade
// mode the values are 0/1 listing flags, otherwise owned quantities.
type Change struct {
	Monster string
	Old     int64
	New     int64
}

// PlayerDiff groups the changes of one player between two snapshots.
type PlayerDiff struct {
	Pseudo string
	// NewPlayer marks a player with no data in the old snapshot.
	NewPlayer bool
	// Gone marks a player present before but absent from the new
	// snapshot.
	Gone    bool
	Changes []Change
}

// Compare diffs two snapshots player by player. With tradeOnly set it
// compares which monsters are listed on the market (for_trade > 0),
// otherwise it compares owned quantities. Players and changes come back
// sorted for stable output.
func Compare(old, new Snapshot, tradeOnly bool) []PlayerDiff {
	var diffs []PlayerDiff

	pseudos := make([]string, 0, len(new.Holdings))
	for pseudo := range new.Holdings {
		pseudos = append(pseudos, pseudo)
	}
	sort.Strings(pseudos)

	for _, pseudo := range pseudos {
		newValues := groupValues(new, pseudo, tradeOnly)
		if len(newValues) == 0 {
			continue
		}
		oldValues := groupValues(old, pseudo, tradeOnly)

		names := map[string]struct{}{}
		for name := range newValues {
			names[name] = struct{}{}
		}
		for name := range oldValues {
			names[name] = struct{}{}
		}
		sorted := make([]string, 0, len(names))
		for name := range names {
			sorted = append(sorted, name)
		}
		sort.Strings(sorted)

		var changes []Change
		for _, name := range sorted {
			oldValue := oldValues[name]
			newValue := newValues[name]
			if oldValue != newValue {
				changes = append(changes, Change{Monster: name, Old: oldValue, New: newValue})
			}
		}
		if len(changes) == 0 {
			continue
		}

		diffs = append(diffs, PlayerDiff{
			Pseudo:    pseudo,
			NewPlayer: len(old.Holdings[pseudo]) == 0,
			Changes:   changes,
		})
	}

	gone := make([]string, 0)
	for pseudo := range old.Holdings {
		if len(new.Holdings[pseudo]) == 0 && len(old.Holdings[pseudo]) > 0 {
			gone = append(gone, pseudo)
		}
	}
	sort.Strings(gone)
	for _, pseudo := range gone {
		diffs = append(diffs, PlayerDiff{Pseudo: pseudo, Gone: true})
	}

	return diffs
}

// groupValues flattens one player's holdings into monster name -> value.
// Trade mode collapses to a 0/1 listing flag.
func groupValues(s Snapshot, pseudo string, tradeOnly bool) map[string]int64 {
	holdings := s.Holdings[pseudo]
	if len(holdings) == 0 {
		return nil
	}

	values := map[string]int64{}
	for id, holding := range holdings {
		name := s.Monsters[id].Name
		if name == "" {
			continue
		}
		if tradeOnly {
			if holding.ForTrade > 0 {
				values[name] = 1
			} else if _, ok := values[name]; !ok {
				values[name] = 0
			}
			continue
		}
		values[name] += holding.Owned
	}
	return values
}
