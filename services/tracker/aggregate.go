package tracker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/antzucaro/matchr"
)

const DefaultTopK = 10

// MonsterTotal is one ranking row: a catalog entry and the quantity summed
// across every user.
type MonsterTotal struct {
	Monster Monster
	Total   int64
}

// Extremes holds the K most common and K most rare entries of a ranking.
type Extremes struct {
	// Top is ordered by descending total, ties broken by ascending
	// monster id.
	Top []MonsterTotal
	// Bottom is ordered by ascending total, ties broken by ascending
	// monster id.
	Bottom []MonsterTotal
}

// TopOwned ranks monsters by total owned quantity across all users.
func TopOwned(s Snapshot, k int, rareOnly bool) (Extremes, error) {
	return extremes(s, k, rareOnly, func(h Holding) int64 { return h.Owned })
}

// TopTrade ranks monsters by total quantity proposed for trade.
func TopTrade(s Snapshot, k int, rareOnly bool) (Extremes, error) {
	return extremes(s, k, rareOnly, func(h Holding) int64 { return h.ForTrade })
}

func extremes(s Snapshot, k int, rareOnly bool, value func(Holding) int64) (Extremes, error) {
	if k <= 0 {
		return Extremes{}, fmt.Errorf("%w: top k must be positive, got %d", ErrBadQuery, k)
	}

	totals := map[int64]int64{}
	for id, monster := range s.Monsters {
		if rareOnly && !monster.Rare() {
			continue
		}
		totals[id] = 0
	}
	for _, userHoldings := range s.Holdings {
		for id, holding := range userHoldings {
			if _, tracked := totals[id]; !tracked {
				continue
			}
			totals[id] += value(holding)
		}
	}

	rows := make([]MonsterTotal, 0, len(totals))
	for id, total := range totals {
		rows = append(rows, MonsterTotal{Monster: s.Monsters[id], Total: total})
	}
	// ascending total with ascending id on ties
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total < rows[j].Total
		}
		return rows[i].Monster.ID < rows[j].Monster.ID
	})

	if k > len(rows) {
		k = len(rows)
	}

	bottom := make([]MonsterTotal, k)
	copy(bottom, rows[:k])

	// descending total, still ascending id on ties
	desc := make([]MonsterTotal, len(rows))
	copy(desc, rows)
	sort.Slice(desc, func(i, j int) bool {
		if desc[i].Total != desc[j].Total {
			return desc[i].Total > desc[j].Total
		}
		return desc[i].Monster.ID < desc[j].Monster.ID
	})

	return Extremes{Top: desc[:k], Bottom: bottom}, nil
}

// Bucket is one histogram bar: users owning a quantity in [Lo, Hi].
type Bucket struct {
	Lo    int64
	Hi    int64
	Count int
}

// Histogram buckets users by how many of the monster they own, using the
// given bucket width (1 puts every distinct quantity in its own bucket).
// Users owning zero are left out, so the counts sum to the number of users
// holding the monster.
func Histogram(s Snapshot, monsterID int64, width int64) ([]Bucket, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: bucket width must be positive, got %d", ErrBadQuery, width)
	}
	if _, ok := s.Monsters[monsterID]; !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownMonster, monsterID)
	}

	counts := map[int64]int{}
	for _, userHoldings := range s.Holdings {
		holding, ok := userHoldings[monsterID]
		if !ok || holding.Owned <= 0 {
			continue
		}
		counts[holding.Owned/width]++
	}

	buckets := make([]Bucket, 0, len(counts))
	for idx, count := range counts {
		buckets = append(buckets, Bucket{
			Lo:    idx * width,
			Hi:    idx*width + width - 1,
			Count: count,
		})
	}
	sort.Slice(buckets, func(i, j int) bool { return buckets[i].Lo < buckets[j].Lo })
	return buckets, nil
}

// TradeOffer is one user's standing quantity for a monster.
type TradeOffer struct {
	Pseudo   string
	Quantity int64
}

// FindTrade returns every user proposing the monster for trade, most
// offered first, ties broken by ascending pseudo.
func FindTrade(s Snapshot, monsterID int64) ([]TradeOffer, error) {
	return findOffers(s, monsterID, func(h Holding) int64 { return h.ForTrade })
}

// FindResearch returns every user searching for the monster.
func FindResearch(s Snapshot, monsterID int64) ([]TradeOffer, error) {
	return findOffers(s, monsterID, func(h Holding) int64 { return h.Searched })
}

func findOffers(s Snapshot, monsterID int64, value func(Holding) int64) ([]TradeOffer, error) {
	if _, ok := s.Monsters[monsterID]; !ok {
		return nil, fmt.Errorf("%w: id %d", ErrUnknownMonster, monsterID)
	}

	var offers []TradeOffer
	for pseudo, userHoldings := range s.Holdings {
		holding, ok := userHoldings[monsterID]
		if !ok {
			continue
		}
		if quantity := value(holding); quantity > 0 {
			offers = append(offers, TradeOffer{Pseudo: pseudo, Quantity: quantity})
		}
	}
	sort.Slice(offers, func(i, j int) bool {
		if offers[i].Quantity != offers[j].Quantity {
			return offers[i].Quantity > offers[j].Quantity
		}
		return offers[i].Pseudo < offers[j].Pseudo
	})
	return offers, nil
}

// minimum similarity for a fuzzy catalog match; below this a typo'd name
// is more likely a different monster entirely
const minNameSimilarity = 0.8

// ResolveMonster maps a user-supplied name to a catalog entry: exact match
// first, then unique substring, then the closest Jaro-Winkler match.
func ResolveMonster(s Snapshot, query string) (Monster, error) {
	needle := strings.ToLower(strings.TrimSpace(query))
	if needle == "" {
		return Monster{}, fmt.Errorf("%w: empty monster name", ErrBadQuery)
	}

	var best Monster
	var bestSimilarity float64
	var substring *Monster

	ids := make([]int64, 0, len(s.Monsters))
	for id := range s.Monsters {
		ids = append(ids, id)
	}
	// iterate in id order so equal similarities resolve the same way
	// every run
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		monster := s.Monsters[id]
		name := strings.ToLower(monster.Name)
		if name == needle {
			return monster, nil
		}
		if substring == nil && strings.Contains(name, needle) {
			m := monster
			substring = &m
		}

		similarity := matchr.JaroWinkler(needle, name, false)
		if similarity > bestSimilarity {
			bestSimilarity = similarity
			best = monster
		}
	}

	if substring != nil {
		return *substring, nil
	}
	if bestSimilarity >= minNameSimilarity {
		return best, nil
	}
	return Monster{}, fmt.Errorf("%w: %q", ErrUnknownMonster, query)
}
