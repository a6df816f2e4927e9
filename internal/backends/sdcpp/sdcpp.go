// Package sdcpp registers the stable-diffusion.cpp image generation backend.
package sdcpp

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/runanywhere/commons/internal/backends"
	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/features"
	"github.com/runanywhere/commons/internal/service"
	"github.com/runanywhere/commons/internal/types"
)

const (
	ModuleName   = "sdcpp"
	ProviderName = "SdcppDiffusion"
	Priority     = 90

	// WeightsPattern matches sd.cpp weight files directly inside a model
	// directory.
	WeightsPattern = "*.{safetensors,gguf,ckpt}"

	DefaultSize  = 512
	DefaultSteps = 20
)

// Model is a loaded diffusion pipeline.
type Model interface {
	Generate(ctx context.Context, opts features.DiffusionOptions) (features.Image, error)
	Close() error
}

// Engine loads sd.cpp pipelines from a weight file or model directory.
type Engine interface {
	Load(path string, opts map[string]string) (Model, error)
}

type unavailable struct{}

func (unavailable) Load(string, map[string]string) (Model, error) {
	return nil, backends.Unavailable(ModuleName)
}

// Backend is the sd.cpp registration unit.
type Backend struct {
	*backends.Unit
	engine Engine
}

// New creates the backend. A nil engine fails every load with NotImplemented.
func New(deps backends.Deps, engine Engine) *Backend {
	if engine == nil {
		engine = unavailable{}
	}
	b := &Backend{engine: engine}
	b.Unit = backends.NewUnit(deps,
		types.Module{
			Name:         ModuleName,
			DisplayName:  "stable-diffusion.cpp",
			Version:      "1.0.0",
			Description:  "Image generation with sd.cpp",
			Capabilities: types.NewCapabilitySet(types.CapabilityDiffusion),
		},
		service.Provider{
			Name:       ProviderName,
			Capability: types.CapabilityDiffusion,
			Priority:   Priority,
			Factory:    service.FactoryFuncs{CanHandleFunc: CanHandle, CreateFunc: b.create},
		},
	)
	return b
}

// CanHandle accepts an SDCPP framework hint and refuses any other explicit
// hint. Without a hint the model path, then the identifier, must name a
// weight file or a directory holding one.
func CanHandle(req types.ServiceRequest) bool {
	switch {
	case req.Framework == types.FrameworkSDCPP:
		return true
	case req.Framework.Explicit():
		return false
	}
	return HasModelFiles(req.ModelPath) || HasModelFiles(req.Identifier)
}

// HasModelFiles reports whether path is a weight file or a directory that
// directly contains one.
func HasModelFiles(path string) bool {
	if path == "" {
		return false
	}
	fi, err := os.Stat(path)
	if err != nil {
		return false
	}
	if fi.Mode().IsRegular() {
		ok, _ := doublestar.Match(WeightsPattern, filepath.Base(path))
		return ok
	}
	if !fi.IsDir() {
		return false
	}
	matches, err := doublestar.Glob(os.DirFS(path), WeightsPattern, doublestar.WithFilesOnly())
	return err == nil && len(matches) > 0
}

func (b *Backend) create(req types.ServiceRequest) (features.Service, error) {
	model, err := b.engine.Load(req.Path(), req.Options)
	if err != nil {
		return nil, backends.LoadError(ModuleName, req.Path(), err)
	}
	return &Service{Handle: backends.NewHandle(ProviderName, req, model), model: model}, nil
}

// Service generates images from text prompts.
type Service struct {
	*backends.Handle
	model Model
}

var _ features.Diffusion = (*Service)(nil)

// GenerateImage fills in default size and step count, then checks that the
// image dimensions are multiples of 8.
func (s *Service) GenerateImage(ctx context.Context, opts features.DiffusionOptions) (features.Image, error) {
	if err := s.Begin(ctx); err != nil {
		return features.Image{}, err
	}
	if strings.TrimSpace(opts.Prompt) == "" {
		return features.Image{}, errcode.New(errcode.EmptyInput, "empty prompt")
	}
	if opts.Width == 0 {
		opts.Width = DefaultSize
	}
	if opts.Height == 0 {
		opts.Height = DefaultSize
	}
	if opts.Steps == 0 {
		opts.Steps = DefaultSteps
	}
	if opts.Width < 0 || opts.Height < 0 || opts.Width%8 != 0 || opts.Height%8 != 0 {
		return features.Image{}, errcode.New(errcode.InvalidArgument, "image size %dx%d must be positive multiples of 8", opts.Width, opts.Height)
	}
	if opts.Steps < 0 {
		return features.Image{}, errcode.New(errcode.InvalidArgument, "steps %d", opts.Steps)
	}
	return s.model.Generate(ctx, opts)
}
