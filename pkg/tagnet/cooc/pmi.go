package cooc

import "math"

// Calculator scores entity pairs by PMI (pointwise mutual information).
//
// Inputs are document frequencies over per-record tag sets: an entity
// counts once per record however often it was written, so N_ab <= min(N_a, N_b).
// Unsmoothed, two entities that share their only record score log N, the
// highest PMI the corpus allows; ε damps such one-off pairs.
type Calculator struct {
	epsilon float64 // smoothing constant
}

// NewCalculator creates a new PMI calculator with the given epsilon
func NewCalculator(epsilon float64) *Calculator {
	if epsilon <= 0 {
		epsilon = 1.0
	}
	return &Calculator{epsilon: epsilon}
}

// PMI calculates the pointwise mutual information between two entities
//
// PMI(a,b) = log((N_ab + ε) * N / ((N_a + ε)(N_b + ε)))
//
// Where:
//   - N_ab = number of records containing both a and b
//   - N_a, N_b = number of records containing each entity
//   - N = total number of contributing records
//   - ε = smoothing constant (default 1.0)
func (c *Calculator) PMI(nAB, nA, nB, N int64) float64 {
	if N == 0 {
		return 0
	}

	numerator := (float64(nAB) + c.epsilon) * float64(N)
	denominator := (float64(nA) + c.epsilon) * (float64(nB) + c.epsilon)

	if denominator == 0 {
		return 0
	}

	return math.Log(numerator / denominator)
}

// NPMI calculates normalized PMI (range: -1 to 1)
// NPMI(a,b) = PMI(a,b) / -log(P(a,b))
func (c *Calculator) NPMI(nAB, nA, nB, N int64) float64 {
	if N == 0 || nAB == 0 {
		return 0
	}

	pmi := c.PMI(nAB, nA, nB, N)
	pAB := (float64(nAB) + c.epsilon) / float64(N)
	logPAB := math.Log(pAB)

	if logPAB == 0 {
		return 0
	}

	npmi := pmi / -logPAB
	// smoothing can push tiny corpora slightly outside the range
	return math.Max(-1, math.Min(1, npmi))
}
