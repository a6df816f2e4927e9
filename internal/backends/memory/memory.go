// Package memory registers the vector search backend. Unlike the other
// backends it needs no native engine: services are backed by an in-process
// flat index.
package memory

import (
	"context"
	"strconv"

	"go.uber.org/zap"

	"github.com/runanywhere/commons/internal/backends"
	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/features"
	"github.com/runanywhere/commons/internal/infrastructure/logging"
	"github.com/runanywhere/commons/internal/service"
	"github.com/runanywhere/commons/internal/types"
)

const (
	ModuleName   = "memory"
	ProviderName = "MemoryService"
	Priority     = 100
)

// Request options read by the factory.
const (
	OptionDimension = "dimension"
	OptionMetric    = "metric"
	OptionIndexPath = "index_path"
)

// Config holds the defaults for indexes whose request does not say.
type Config struct {
	Dimension int
	Metric    Metric
}

// Backend is the vector search registration unit.
type Backend struct {
	*backends.Unit
	cfg    Config
	logger *logging.Logger
}

// New creates the backend.
func New(deps backends.Deps, cfg Config) *Backend {
	b := &Backend{cfg: cfg, logger: logging.OrNop(deps.Logger).Named(ModuleName)}
	b.Unit = backends.NewUnit(deps,
		types.Module{
			Name:         ModuleName,
			DisplayName:  "Memory",
			Version:      "1.0.0",
			Description:  "Exact vector search over an in-process index",
			Capabilities: types.NewCapabilitySet(types.CapabilityVectorSearch),
		},
		service.Provider{
			Name:       ProviderName,
			Capability: types.CapabilityVectorSearch,
			Priority:   Priority,
			Factory:    service.FactoryFuncs{CanHandleFunc: CanHandle, CreateFunc: b.create},
		},
	)
	return b
}

// CanHandle accepts every vector search request.
func CanHandle(req types.ServiceRequest) bool {
	return req.Capability == types.CapabilityVectorSearch
}

func (b *Backend) create(req types.ServiceRequest) (features.Service, error) {
	if path := req.Option(OptionIndexPath, ""); path != "" {
		ix, err := LoadFile(path)
		if err == nil {
			b.logger.Info("Loaded index snapshot", zap.String("path", path), zap.Int("vectors", ix.Len()))
			return newService(req, ix), nil
		}
		if errcode.CodeOf(err) != errcode.FileNotFound {
			return nil, err
		}
	}

	dim := b.cfg.Dimension
	if v := req.Option(OptionDimension, ""); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, errcode.Wrap(errcode.InvalidArgument, err, "dimension %q", v)
		}
		dim = n
	}
	metric := b.cfg.Metric
	if v := req.Option(OptionMetric, ""); v != "" {
		m, err := ParseMetric(v)
		if err != nil {
			return nil, err
		}
		metric = m
	}

	ix, err := NewIndex(dim, metric)
	if err != nil {
		return nil, err
	}
	return newService(req, ix), nil
}

// Service is a vector search handle over one index.
type Service struct {
	*backends.Handle
	index *Index
	path  string
}

var _ features.VectorSearch = (*Service)(nil)

func newService(req types.ServiceRequest, ix *Index) *Service {
	return &Service{
		Handle: backends.NewHandle(ProviderName, req, nil),
		index:  ix,
		path:   req.Option(OptionIndexPath, ""),
	}
}

func (s *Service) Add(ctx context.Context, ids []uint64, vectors [][]float32, metadata []string) error {
	if err := s.Begin(ctx); err != nil {
		return err
	}
	return s.index.Add(ids, vectors, metadata)
}

func (s *Service) Search(ctx context.Context, query []float32, k int) ([]features.SearchResult, error) {
	if err := s.Begin(ctx); err != nil {
		return nil, err
	}
	return s.index.Search(query, k)
}

func (s *Service) Remove(ctx context.Context, ids ...uint64) (int, error) {
	if err := s.Begin(ctx); err != nil {
		return 0, err
	}
	return s.index.Remove(ids...), nil
}

func (s *Service) Stats() features.IndexStats {
	return s.index.Stats()
}

// Save writes the index to the index_path the service was created with.
func (s *Service) Save() error {
	if err := s.Check(); err != nil {
		return err
	}
	if s.path == "" {
		return errcode.New(errcode.InvalidState, "service has no index_path")
	}
	return s.index.SaveFile(s.path)
}
