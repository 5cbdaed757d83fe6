package match

import "math"

// DefaultThreshold is the similarity percentage a candidate must reach,
// inclusive, to count as a match.
const DefaultThreshold = 80.0

// Searcher finds the best roster candidate for a query embedding.
// ok is false when there are no candidates at all.
type Searcher interface {
	Best(query []float32) (index int, distance float64, ok bool)
}

// Linear is the exact searcher: a plain O(N) argmin scan. Ties are broken by
// the first-occurring index. This stays fast enough up to a few thousand
// roster entries.
type Linear struct {
	known [][]float32
}

func NewLinear(known [][]float32) *Linear {
	return &Linear{known: known}
}

func (l *Linear) Best(query []float32) (int, float64, bool) {
	bestIndex := -1
	bestDistance := math.Inf(1)

	for i, candidate := range l.known {
		if d := Euclidean(query, candidate); d < bestDistance {
			bestIndex = i
			bestDistance = d
		}
	}

	if bestIndex < 0 {
		return 0, 0, false
	}
	return bestIndex, bestDistance, true
}

// Result describes the best candidate for one query face.
type Result struct {
	Index      int     // roster position of the best candidate
	Distance   float64 // raw distance, kept for logging
	Similarity float64 // (1 - distance) * 100, unclamped
	Matched    bool    // similarity cleared the threshold
}

// Engine pairs a searcher with the acceptance threshold.
type Engine struct {
	searcher  Searcher
	threshold float64
}

func NewEngine(searcher Searcher, threshold float64) *Engine {
	if threshold <= 0 {
		threshold = DefaultThreshold
	}
	return &Engine{searcher: searcher, threshold: threshold}
}

// Threshold returns the configured similarity cutoff.
func (e *Engine) Threshold() float64 {
	return e.threshold
}

// Match finds the best candidate for the query embedding. ok is false only
// when there are no candidates; a below-threshold candidate is still returned
// with Matched set to false so callers can log the distance.
func (e *Engine) Match(query []float32) (Result, bool) {
	index, distance, ok := e.searcher.Best(query)
	if !ok {
		return Result{}, false
	}

	similarity := Similarity(distance)
	return Result{
		Index:      index,
		Distance:   distance,
		Similarity: similarity,
		Matched:    similarity >= e.threshold,
	}, true
}
