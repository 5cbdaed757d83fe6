package match

import (
	"math"
	"testing"
)

func TestEuclidean(t *testing.T) {
	tests := []struct {
		name     string
		a        []float32
		b        []float32
		expected float64
	}{
		{"identical", []float32{0.5, 0.25, 0.75}, []float32{0.5, 0.25, 0.75}, 0},
		{"pythagorean", []float32{0, 0}, []float32{3, 4}, 5},
		{"single dim", []float32{0.25}, []float32{0.5}, 0.25},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Euclidean(tc.a, tc.b); got != tc.expected {
				t.Errorf("Euclidean() = %f; want %f", got, tc.expected)
			}
		})
	}
}

func TestEuclidean_InvalidInput(t *testing.T) {
	if d := Euclidean([]float32{1, 2}, []float32{1, 2, 3}); !math.IsInf(d, 1) {
		t.Errorf("dimension mismatch should yield +Inf, got %f", d)
	}
	if d := Euclidean(nil, nil); !math.IsInf(d, 1) {
		t.Errorf("empty input should yield +Inf, got %f", d)
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		name     string
		distance float64
		expected float64
	}{
		{"identical", 0, 100},
		{"quarter", 0.25, 75},
		{"exact threshold distance", 0.1875, 81.25},
		{"beyond range is not clamped", 1.5, -50},
		{"negative distance is not clamped", -0.25, 125},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Similarity(tc.distance); got != tc.expected {
				t.Errorf("Similarity(%f) = %f; want %f", tc.distance, got, tc.expected)
			}
		})
	}
}

func TestLinear_Best(t *testing.T) {
	known := [][]float32{
		{1, 0},
		{0.5, 0},
		{0, 0},
	}
	l := NewLinear(known)

	index, distance, ok := l.Best([]float32{0.5, 0})
	if !ok {
		t.Fatal("expected a candidate")
	}
	if index != 1 {
		t.Errorf("expected index 1, got %d", index)
	}
	if distance != 0 {
		t.Errorf("expected distance 0, got %f", distance)
	}
}

func TestLinear_Best_TieBreaksOnFirstIndex(t *testing.T) {
	known := [][]float32{
		{0.5, 0},
		{0.25, 0}, // same distance to the query as index 2
		{0.75, 0},
	}
	l := NewLinear(known)

	index, _, ok := l.Best([]float32{0.5, 0})
	if !ok {
		t.Fatal("expected a candidate")
	}
	// Index 0 is an exact hit; remove it and indexes 1 and 2 tie at 0.25.
	if index != 0 {
		t.Errorf("expected exact hit at index 0, got %d", index)
	}

	tied := NewLinear(known[1:])
	index, distance, ok := tied.Best([]float32{0.5, 0})
	if !ok {
		t.Fatal("expected a candidate")
	}
	if distance != 0.25 {
		t.Errorf("expected tie distance 0.25, got %f", distance)
	}
	if index != 0 {
		t.Errorf("tie must resolve to the first-occurring index, got %d", index)
	}
}

func TestLinear_Best_EmptyKnown(t *testing.T) {
	l := NewLinear(nil)
	if _, _, ok := l.Best([]float32{1, 2}); ok {
		t.Fatal("expected ok=false for empty candidate set")
	}
}

func TestEngine_ThresholdInclusive(t *testing.T) {
	// Distance 0.1875 converts to exactly 81.25; both values are exactly
	// representable in binary floating point.
	known := [][]float32{{0.1875}}
	engine := NewEngine(NewLinear(known), 81.25)

	result, ok := engine.Match([]float32{0})
	if !ok {
		t.Fatal("expected a candidate")
	}
	if result.Similarity != 81.25 {
		t.Fatalf("expected similarity 81.25, got %f", result.Similarity)
	}
	if !result.Matched {
		t.Error("similarity equal to the threshold must be accepted")
	}
}

func TestEngine_BelowThresholdRejected(t *testing.T) {
	known := [][]float32{{0.25}} // similarity exactly 75
	engine := NewEngine(NewLinear(known), DefaultThreshold)

	result, ok := engine.Match([]float32{0})
	if !ok {
		t.Fatal("expected a candidate")
	}
	if result.Similarity != 75 {
		t.Fatalf("expected similarity 75, got %f", result.Similarity)
	}
	if result.Matched {
		t.Error("similarity below the threshold must be rejected")
	}
}

func TestEngine_IdenticalEmbeddingIsFullMatch(t *testing.T) {
	query := []float32{0.1, 0.2, 0.3, 0.4}
	known := [][]float32{{1, 1, 1, 1}, append([]float32{}, query...)}
	engine := NewEngine(NewLinear(known), DefaultThreshold)

	result, ok := engine.Match(query)
	if !ok {
		t.Fatal("expected a candidate")
	}
	if result.Index != 1 {
		t.Errorf("expected index 1, got %d", result.Index)
	}
	if result.Similarity != 100 {
		t.Errorf("distance 0 must convert to similarity 100, got %f", result.Similarity)
	}
	if !result.Matched {
		t.Error("identical embedding must match")
	}
}

func TestEngine_NoCandidates(t *testing.T) {
	engine := NewEngine(NewLinear(nil), DefaultThreshold)
	if _, ok := engine.Match([]float32{0.1}); ok {
		t.Fatal("expected ok=false with no candidates")
	}
}

func TestEngine_DefaultThresholdFallback(t *testing.T) {
	engine := NewEngine(NewLinear(nil), 0)
	if engine.Threshold() != DefaultThreshold {
		t.Errorf("expected default threshold %f, got %f", DefaultThreshold, engine.Threshold())
	}
}

func TestHNSW_Best(t *testing.T) {
	known := [][]float32{
		{1, 0, 0, 0},
		{0, 1, 0, 0},
		{0, 0, 1, 0},
	}
	h := NewHNSW(known)

	index, distance, ok := h.Best([]float32{0, 1, 0, 0})
	if !ok {
		t.Fatal("expected a neighbor")
	}
	if index != 1 {
		t.Errorf("expected index 1, got %d", index)
	}
	if distance != 0 {
		t.Errorf("expected distance 0, got %f", distance)
	}
}

func TestHNSW_AgreesWithLinearOnSmallRoster(t *testing.T) {
	known := [][]float32{
		{0.9, 0.1, 0.0},
		{0.1, 0.9, 0.0},
		{0.0, 0.1, 0.9},
		{0.5, 0.5, 0.0},
	}
	h := NewHNSW(known)
	l := NewLinear(known)

	queries := [][]float32{
		{0.85, 0.15, 0.0},
		{0.0, 0.0, 1.0},
		{0.45, 0.55, 0.0},
	}
	for _, q := range queries {
		hi, _, hok := h.Best(q)
		li, _, lok := l.Best(q)
		if hok != lok || hi != li {
			t.Errorf("query %v: hnsw=(%d,%v) linear=(%d,%v)", q, hi, hok, li, lok)
		}
	}
}
