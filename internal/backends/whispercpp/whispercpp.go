// Package whispercpp registers the whisper.cpp speech-to-text backend.
//
// It is a lower priority STT provider than ONNX and only claims GGML model
// files, so ONNX wins whenever both could serve a request.
package whispercpp

import (
	"context"

	"github.com/runanywhere/commons/internal/backends"
	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/features"
	"github.com/runanywhere/commons/internal/service"
	"github.com/runanywhere/commons/internal/types"
)

const (
	ModuleName   = "whispercpp"
	ProviderName = "WhisperCPPService"
	Priority     = 50
)

// Model is a loaded whisper.cpp model.
type Model interface {
	Transcribe(ctx context.Context, samples []float32, opts features.STTOptions) (features.Transcript, error)
	Close() error
}

// Engine loads whisper.cpp models.
type Engine interface {
	Load(path string, opts map[string]string) (Model, error)
}

type unavailable struct{}

func (unavailable) Load(string, map[string]string) (Model, error) {
	return nil, backends.Unavailable(ModuleName)
}

// Backend is the whisper.cpp registration unit.
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
			DisplayName:  "whisper.cpp",
			Version:      "1.0.0",
			Description:  "Speech-to-text on GGML whisper models",
			Capabilities: types.NewCapabilitySet(types.CapabilitySTT),
		},
		service.Provider{
			Name:       ProviderName,
			Capability: types.CapabilitySTT,
			Priority:   Priority,
			Factory:    service.FactoryFuncs{CanHandleFunc: CanHandle, CreateFunc: b.create},
		},
	)
	return b
}

// CanHandle accepts GGML whisper model files: a .bin path mentioning whisper
// or ggml. Requests without a path are left to other providers.
func CanHandle(req types.ServiceRequest) bool {
	if req.Path() == "" {
		return false
	}
	return req.PathHasSuffix(".bin") && req.PathContains("whisper", "ggml")
}

func (b *Backend) create(req types.ServiceRequest) (features.Service, error) {
	model, err := b.engine.Load(req.Path(), req.Options)
	if err != nil {
		return nil, backends.LoadError(ModuleName, req.Path(), err)
	}
	return &Service{
		Handle:   backends.NewHandle(ProviderName, req, model),
		model:    model,
		language: req.Option("language", "auto"),
	}, nil
}

// Service transcribes audio with a loaded whisper.cpp model.
type Service struct {
	*backends.Handle
	model    Model
	language string
}

var _ features.STT = (*Service)(nil)

// Transcribe runs the model over mono PCM samples. An empty
// language option falls back to the one the service was created with.
func (s *Service) Transcribe(ctx context.Context, samples []float32, opts features.STTOptions) (features.Transcript, error) {
	if err := s.Begin(ctx); err != nil {
		return features.Transcript{}, err
	}
	if len(samples) == 0 {
		return features.Transcript{}, errcode.New(errcode.EmptyInput, "no audio samples")
	}
	if opts.Language == "" {
		opts.Language = s.language
	}
	return s.model.Transcribe(ctx, samples, opts)
}
