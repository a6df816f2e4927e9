package features

import "context"

// Embeddings turns text into fixed-size vectors.
type Embeddings interface {
	Service
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// SearchResult is a single nearest-neighbour hit. Lower scores are closer.
type SearchResult struct {
	ID       uint64  `json:"id"`
	Score    float64 `json:"score"`
	Metadata string  `json:"metadata,omitempty"`
}

// IndexStats describes a vector index.
type IndexStats struct {
	Vectors   int    `json:"vectors"`
	Dimension int    `json:"dimension"`
	Metric    string `json:"metric"`
}

// VectorSearch stores vectors and answers nearest-neighbour queries.
type VectorSearch interface {
	Service
	// Add inserts vectors, replacing any with the same id.
	Add(ctx context.Context, ids []uint64, vectors [][]float32, metadata []string) error
	Search(ctx context.Context, query []float32, k int) ([]SearchResult, error)
	Remove(ctx context.Context, ids ...uint64) (int, error)
	Stats() IndexStats
}
