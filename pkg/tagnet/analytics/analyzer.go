package analytics

import (
	"sort"

	"github.com/cognicore/tagnet/pkg/tagnet/cooc"
	"github.com/cognicore/tagnet/pkg/tagnet/stoplist"
)

// Analyzer aggregates record-level extraction stats. Unlike cooc.Counter
// it sees every record, including those with fewer than two entities.
type Analyzer struct {
	records    int64 // records extracted after dedup
	duplicates int64 // records dropped by key
	tagged     int64 // records with at least one entity
	multi      int64 // records with at least two entities
	malformed  int64 // list-shaped fields that needed the fallback
	totalTags  int64
	entityDF   map[string]int64
}

// NewAnalyzer creates an empty analyzer.
func NewAnalyzer() *Analyzer {
	return &Analyzer{entityDF: make(map[string]int64)}
}

// Process consumes one record's extracted entities, which must already be
// distinct.
func (a *Analyzer) Process(entities []string) {
	a.records++
	n := 0
	for _, e := range entities {
		if e == "" {
			continue
		}
		a.entityDF[e]++
		n++
	}
	a.totalTags += int64(n)
	if n >= 1 {
		a.tagged++
	}
	if n >= 2 {
		a.multi++
	}
}

// Duplicate records one record dropped by the deduper.
func (a *Analyzer) Duplicate() { a.duplicates++ }

// Malformed records one list-shaped field that failed to parse.
func (a *Analyzer) Malformed() { a.malformed++ }

// Merge folds other into a.
func (a *Analyzer) Merge(other *Analyzer) {
	if other == nil {
		return
	}
	a.records += other.records
	a.duplicates += other.duplicates
	a.tagged += other.tagged
	a.multi += other.multi
	a.malformed += other.malformed
	a.totalTags += other.totalTags
	for e, n := range other.entityDF {
		a.entityDF[e] += n
	}
}

// EntityCount pairs an entity with the number of records containing it.
type EntityCount struct {
	Entity string `json:"entity"`
	Count  int64  `json:"count"`
}

// Summary describes a corpus after extraction.
type Summary struct {
	Records        int64         `json:"records"`
	Duplicates     int64         `json:"duplicates"`
	Tagged         int64         `json:"tagged"`
	MultiTagged    int64         `json:"multi_tagged"`
	Malformed      int64         `json:"malformed"`
	AvgTags        float64       `json:"avg_tags_per_record"`
	UniqueEntities int           `json:"unique_entities"`
	Top            []EntityCount `json:"top_entities"`

	df map[string]int64
}

// Summary returns totals and the topK most frequent entities (all of them
// when topK <= 0), ordered by count then entity.
func (a *Analyzer) Summary(topK int) Summary {
	df := make(map[string]int64, len(a.entityDF))
	top := make([]EntityCount, 0, len(a.entityDF))
	for e, n := range a.entityDF {
		df[e] = n
		top = append(top, EntityCount{Entity: e, Count: n})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].Entity < top[j].Entity
	})
	if topK > 0 && len(top) > topK {
		top = top[:topK]
	}

	var avg float64
	if a.records > 0 {
		avg = float64(a.totalTags) / float64(a.records)
	}

	return Summary{
		Records:        a.records,
		Duplicates:     a.duplicates,
		Tagged:         a.tagged,
		MultiTagged:    a.multi,
		Malformed:      a.malformed,
		AvgTags:        avg,
		UniqueEntities: len(a.entityDF),
		Top:            top,
		df:             df,
	}
}

// Frequency returns the number of records containing entity.
func (s Summary) Frequency(entity string) int64 {
	return s.df[entity]
}

// NoiseStats converts the summary and final pair counts into the input of
// stoplist.SuggestCandidates. DF is taken over tagged records; NPMIMax is
// the strongest association each entity has with any partner.
func (s Summary) NoiseStats(snap cooc.Snapshot) []stoplist.Stats {
	var out []stoplist.Stats
	if s.Tagged == 0 {
		return out
	}

	npmiMax := cooc.MaxNPMI(snap)
	for e, df := range s.df {
		v, ok := npmiMax[e]
		out = append(out, stoplist.Stats{
			Token:     e,
			DF:        df,
			DFPercent: 100 * float64(df) / float64(s.Tagged),
			NPMIMax:   v,
			HasPairs:  ok,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Token < out[j].Token })
	return out
}
