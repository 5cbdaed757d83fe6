package match

import "github.com/coder/hnsw"

const hnswMaxNeighbors = 16

// HNSW is an approximate searcher for rosters too large for a linear scan.
// Results can differ from the exact argmin on rare queries, which is why it
// stays opt-in behind configuration.
type HNSW struct {
	graph *hnsw.Graph[int]
}

// NewHNSW builds the graph over the known embeddings, keyed by roster
// position.
func NewHNSW(known [][]float32) *HNSW {
	g := hnsw.NewGraph[int]()
	g.M = hnswMaxNeighbors
	g.Ml = 1.0 / float64(hnswMaxNeighbors) // Standard HNSW formula
	g.Distance = hnsw.EuclideanDistance

	for i, embedding := range known {
		if len(embedding) == 0 {
			continue
		}
		g.Add(hnsw.MakeNode(i, embedding))
	}

	return &HNSW{graph: g}
}

func (h *HNSW) Best(query []float32) (int, float64, bool) {
	neighbors := h.graph.Search(query, 1)
	if len(neighbors) == 0 {
		return 0, 0, false
	}

	n := neighbors[0]
	// Recompute the distance in float64 so similarity conversion matches the
	// linear path.
	return n.Key, Euclidean(query, n.Value), true
}
