package cooc

import (
	"errors"
	"sort"
)

// ErrNoPairs is returned when no pair reaches the requested support.
var ErrNoPairs = errors.New("no pairs at or above minimum support")

// RankedPair is a pair with its co-occurrence count and association
// strength.
type RankedPair struct {
	Pair
	Count int64
	NPMI  float64
}

// TopPairs returns pairs with Count >= minSupport ordered by count
// (descending), then by pair. limit <= 0 returns every surviving pair.
func TopPairs(s Snapshot, minSupport int64, limit int) ([]RankedPair, error) {
	if minSupport < 1 {
		minSupport = 1
	}
	calc := NewCalculator(1.0)

	var ranked []RankedPair
	for p, n := range s.Edges {
		if n < minSupport {
			continue
		}
		ranked = append(ranked, RankedPair{
			Pair:  p,
			Count: n,
			NPMI:  calc.NPMI(n, s.Nodes[p.A], s.Nodes[p.B], s.Observed),
		})
	}
	if len(ranked) == 0 {
		return nil, ErrNoPairs
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Count != ranked[j].Count {
			return ranked[i].Count > ranked[j].Count
		}
		if ranked[i].A != ranked[j].A {
			return ranked[i].A < ranked[j].A
		}
		return ranked[i].B < ranked[j].B
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked, nil
}

// MaxNPMI returns, per entity, the strongest NPMI with any partner.
// Entities that never co-occurred are absent from the map.
func MaxNPMI(s Snapshot) map[string]float64 {
	calc := NewCalculator(1.0)
	out := make(map[string]float64)
	for p, n := range s.Edges {
		v := calc.NPMI(n, s.Nodes[p.A], s.Nodes[p.B], s.Observed)
		for _, t := range [2]string{p.A, p.B} {
			if cur, ok := out[t]; !ok || v > cur {
				out[t] = v
			}
		}
	}
	return out
}
