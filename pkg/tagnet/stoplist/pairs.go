package stoplist

// PairBlocklist drops specific unordered entity pairs from co-occurrence
// counting. Curated lists remove spam clusters whose members always travel
// together (e.g. fjb + letsgobrandon) without excluding either entity from
// the graph.
type PairBlocklist struct {
	pairs map[[2]string]struct{}
}

// NewPairBlocklist creates a blocklist from configured pairs. Order inside
// each pair does not matter; self pairs are ignored.
func NewPairBlocklist(pairs [][2]string) *PairBlocklist {
	b := &PairBlocklist{pairs: make(map[[2]string]struct{}, len(pairs))}
	for _, p := range pairs {
		b.Add(p[0], p[1])
	}
	return b
}

// Add blocks the pair {a, b}.
func (b *PairBlocklist) Add(a, c string) {
	key, ok := blockKey(normalize(a), normalize(c))
	if !ok {
		return
	}
	b.pairs[key] = struct{}{}
}

// Blocks reports whether the pair {a, b} is blocked. Arguments are expected
// to be normalized entities.
func (b *PairBlocklist) Blocks(a, c string) bool {
	if b == nil || len(b.pairs) == 0 {
		return false
	}
	key, ok := blockKey(a, c)
	if !ok {
		return false
	}
	_, blocked := b.pairs[key]
	return blocked
}

// Len returns the number of blocked pairs.
func (b *PairBlocklist) Len() int {
	if b == nil {
		return 0
	}
	return len(b.pairs)
}

func blockKey(a, b string) ([2]string, bool) {
	if a == "" || b == "" || a == b {
		return [2]string{}, false
	}
	if a > b {
		a, b = b, a
	}
	return [2]string{a, b}, true
}
