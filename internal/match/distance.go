// Package match compares query face embeddings against the roster's known
// embeddings and converts distances into similarity percentages.
package match

import "math"

// Euclidean computes the L2 distance between two embeddings in the provider's
// native metric space. A dimension mismatch or empty input yields +Inf so the
// pair can never match.
func Euclidean(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}

	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// Similarity converts a distance to a percentage. Distances for face
// embeddings lie roughly in [0,1], but the value is deliberately not clamped:
// out-of-range distances produce out-of-range percentages.
func Similarity(distance float64) float64 {
	return (1.0 - distance) * 100.0
}
