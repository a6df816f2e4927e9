package memory

import (
	"cmp"
	"math"
	"slices"
	"strings"
	"sync"

	"gonum.org/v1/gonum/floats"

	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/features"
)

// Metric selects the distance function. Lower scores are always closer.
type Metric uint8

const (
	MetricL2 Metric = iota
	MetricCosine
	MetricInnerProduct
)

var metricNames = [...]string{
	MetricL2:           "l2",
	MetricCosine:       "cosine",
	MetricInnerProduct: "inner_product",
}

func (m Metric) String() string {
	if int(m) < len(metricNames) {
		return metricNames[m]
	}
	return "unknown"
}

// ParseMetric parses a metric name.
func ParseMetric(s string) (Metric, error) {
	for i, name := range metricNames {
		if strings.EqualFold(s, name) {
			return Metric(i), nil
		}
	}
	return 0, errcode.New(errcode.InvalidArgument, "unknown metric %q", s)
}

// cosineEpsilon is the norm product below which two vectors are treated as
// unrelated.
const cosineEpsilon = 1e-8

func (m Metric) distance(a, b []float64) float64 {
	switch m {
	case MetricCosine:
		denom := floats.Norm(a, 2) * floats.Norm(b, 2)
		if denom < cosineEpsilon {
			return 1
		}
		return 1 - floats.Dot(a, b)/denom
	case MetricInnerProduct:
		return -floats.Dot(a, b)
	default:
		d := floats.Distance(a, b, 2)
		return d * d
	}
}

// Index is an exact nearest neighbour index scanning every vector per query.
// Reads run concurrently; writes are exclusive.
type Index struct {
	mu        sync.RWMutex
	dimension int
	metric    Metric
	ids       []uint64
	vectors   [][]float64
	pos       map[uint64]int
	metadata  map[uint64]string
}

// NewIndex creates an empty index.
func NewIndex(dimension int, metric Metric) (*Index, error) {
	if dimension <= 0 {
		return nil, errcode.New(errcode.InvalidArgument, "dimension must be positive, got %d", dimension)
	}
	if int(metric) >= len(metricNames) {
		return nil, errcode.New(errcode.InvalidArgument, "metric %d", metric)
	}
	return &Index{
		dimension: dimension,
		metric:    metric,
		pos:       make(map[uint64]int),
		metadata:  make(map[uint64]string),
	}, nil
}

func (ix *Index) convert(v []float32) ([]float64, error) {
	if len(v) != ix.dimension {
		return nil, errcode.New(errcode.ValidationFailed, "dimension mismatch: got %d, index has %d", len(v), ix.dimension)
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = float64(x)
	}
	return out, nil
}

// Add inserts vectors. An id that is already present is updated in place.
// metadata may be nil or must match ids in length. Nothing is inserted
// unless every vector is valid.
func (ix *Index) Add(ids []uint64, vectors [][]float32, metadata []string) error {
	if len(ids) != len(vectors) {
		return errcode.New(errcode.InvalidArgument, "%d ids for %d vectors", len(ids), len(vectors))
	}
	if metadata != nil && len(metadata) != len(ids) {
		return errcode.New(errcode.InvalidArgument, "%d metadata entries for %d ids", len(metadata), len(ids))
	}

	converted := make([][]float64, len(vectors))
	for i, v := range vectors {
		c, err := ix.convert(v)
		if err != nil {
			return err
		}
		converted[i] = c
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()
	for i, id := range ids {
		if p, ok := ix.pos[id]; ok {
			ix.vectors[p] = converted[i]
		} else {
			ix.pos[id] = len(ix.ids)
			ix.ids = append(ix.ids, id)
			ix.vectors = append(ix.vectors, converted[i])
		}
		if metadata != nil && metadata[i] != "" {
			ix.metadata[id] = metadata[i]
		}
	}
	return nil
}

// Search returns up to k results ordered by ascending score. Ties keep
// their storage order.
func (ix *Index) Search(query []float32, k int) ([]features.SearchResult, error) {
	if k <= 0 {
		return nil, errcode.New(errcode.InvalidArgument, "k must be positive, got %d", k)
	}
	q, err := ix.convert(query)
	if err != nil {
		return nil, err
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	results := make([]features.SearchResult, len(ix.ids))
	for i, id := range ix.ids {
		results[i] = features.SearchResult{ID: id, Score: ix.metric.distance(q, ix.vectors[i])}
	}
	slices.SortStableFunc(results, func(a, b features.SearchResult) int {
		return cmp.Compare(a.Score, b.Score)
	})

	results = results[:min(k, len(results))]
	for i := range results {
		results[i].Metadata = ix.metadata[results[i].ID]
		if math.IsNaN(results[i].Score) {
			results[i].Score = math.Inf(1)
		}
	}
	return results, nil
}

// Remove deletes ids and returns how many were present.
func (ix *Index) Remove(ids ...uint64) int {
	ix.mu.Lock()
	defer ix.mu.Unlock()

	removed := 0
	for _, id := range ids {
		p, ok := ix.pos[id]
		if !ok {
			continue
		}
		last := len(ix.ids) - 1
		if p != last {
			ix.ids[p] = ix.ids[last]
			ix.vectors[p] = ix.vectors[last]
			ix.pos[ix.ids[p]] = p
		}
		ix.ids = ix.ids[:last]
		ix.vectors[last] = nil
		ix.vectors = ix.vectors[:last]
		delete(ix.pos, id)
		delete(ix.metadata, id)
		removed++
	}
	return removed
}

// Len returns the number of stored vectors.
func (ix *Index) Len() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.ids)
}

// Stats describes the index.
func (ix *Index) Stats() features.IndexStats {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return features.IndexStats{
		Vectors:   len(ix.ids),
		Dimension: ix.dimension,
		Metric:    ix.metric.String(),
	}
}
