package tracker

import (
	"fmt"
	"sort"
)

// lastStep is the final soul-stone step; monsters there are no longer
// needed by the player and would skew the balance check.
const lastStep = 14

// MonsterCount pairs a monster name with a player's owned quantity.
type MonsterCount struct {
	Name  string
	Count int64
}

// UnbalancedPlayer reports a player hoarding some monsters while missing
// others completely: at least one monster above factor*average (average
// over monsters they own at all) and at least one at zero.
type UnbalancedPlayer struct {
	Pseudo  string
	Average float64
	High    []MonsterCount
	Missing []string
}

// Unbalanced scans every player for lopsided inventories. Monsters at the
// last step are ignored on both sides of the check.
func Unbalanced(s Snapshot, factor float64) ([]UnbalancedPlayer, error) {
	if factor <= 0 {
		return nil, fmt.Errorf("%w: factor must be positive, got %g", ErrBadQuery, factor)
	}

	fullSet := make([]Monster, 0, len(s.Monsters))
	for _, monster := range s.Monsters {
		if monster.Step == lastStep {
			continue
		}
		fullSet = append(fullSet, monster)
	}
	sort.Slice(fullSet, func(i, j int) bool { return fullSet[i].ID < fullSet[j].ID })

	pseudos := make([]string, 0, len(s.Holdings))
	for pseudo := range s.Holdings {
		pseudos = append(pseudos, pseudo)
	}
	sort.Strings(pseudos)

	var result []UnbalancedPlayer
	for _, pseudo := range pseudos {
		holdings := s.Holdings[pseudo]
		if len(holdings) == 0 {
			continue
		}

		var sum int64
		var nonZero int
		for _, monster := range fullSet {
			count := holdings[monster.ID].Owned
			if count > 0 {
				sum += count
				nonZero++
			}
		}
		if nonZero == 0 {
			continue
		}
		average := float64(sum) / float64(nonZero)

		var high []MonsterCount
		var missing []string
		for _, monster := range fullSet {
			count := holdings[monster.ID].Owned
			if float64(count) > factor*average {
				high = append(high, MonsterCount{Name: monster.Name, Count: count})
			}
			if count == 0 {
				missing = append(missing, monster.Name)
			}
		}

		if len(high) > 0 && len(missing) > 0 {
			result = append(result, UnbalancedPlayer{
				Pseudo:  pseudo,
				Average: average,
				High:    high,
				Missing: missing,
			})
		}
	}
	return result, nil
}
