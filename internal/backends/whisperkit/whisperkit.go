// Package whisperkit registers the WhisperKit CoreML speech-to-text backend.
//
// Inference runs in the host platform on the Neural Engine; this package only
// adapts the host's callbacks to a provider. It outranks every other STT
// provider, but without a CoreML framework hint it claims a request only when
// the host says it can.
package whisperkit

import (
	"context"

	"github.com/runanywhere/commons/internal/backends"
	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/features"
	"github.com/runanywhere/commons/internal/service"
	"github.com/runanywhere/commons/internal/types"
)

const (
	ModuleName   = "whisperkit_coreml"
	ProviderName = "WhisperKitCoreMLSTTService"
	Priority     = 200
)

// Model is a WhisperKit pipeline owned by the host.
type Model interface {
	Transcribe(ctx context.Context, samples []float32, opts features.STTOptions) (features.Transcript, error)
	Close() error
}

// Engine is the host side of the backend.
type Engine interface {
	// Available reports whether WhisperKit can run on this device.
	Available() bool
	// CanHandle decides for requests that carry no framework hint.
	CanHandle(identifier string) bool
	Load(path, identifier string) (Model, error)
}

type unavailable struct{}

func (unavailable) Available() bool       { return false }
func (unavailable) CanHandle(string) bool { return false }
func (unavailable) Load(string, string) (Model, error) {
	return nil, backends.Unavailable(ModuleName)
}

// Backend is the WhisperKit registration unit.
type Backend struct {
	*backends.Unit
	engine Engine
}

// New creates the backend. A nil engine declines unhinted requests and
// fails every load with NotImplemented.
func New(deps backends.Deps, engine Engine) *Backend {
	if engine == nil {
		engine = unavailable{}
	}
	b := &Backend{engine: engine}
	b.Unit = backends.NewUnit(deps,
		types.Module{
			Name:         ModuleName,
			DisplayName:  "WhisperKit CoreML",
			Version:      "1.0.0",
			Description:  "Speech-to-text with WhisperKit on the Apple Neural Engine",
			Capabilities: types.NewCapabilitySet(types.CapabilitySTT),
		},
		service.Provider{
			Name:       ProviderName,
			Capability: types.CapabilitySTT,
			Priority:   Priority,
			Factory:    service.FactoryFuncs{CanHandleFunc: b.canHandle, CreateFunc: b.create},
		},
	)
	return b
}

func (b *Backend) canHandle(req types.ServiceRequest) bool {
	switch {
	case req.Framework == types.FrameworkCoreML:
		return true
	case req.Framework.Explicit():
		return false
	}
	return b.engine.Available() && b.engine.CanHandle(req.Identifier)
}

func (b *Backend) create(req types.ServiceRequest) (features.Service, error) {
	model, err := b.engine.Load(req.Path(), req.Identifier)
	if err != nil {
		return nil, backends.LoadError(ModuleName, req.Path(), err)
	}
	if model == nil {
		return nil, errcode.New(errcode.BackendInitFailed, "%s: host returned no model", ModuleName)
	}
	return &Service{Handle: backends.NewHandle(ProviderName, req, model), model: model}, nil
}

// Service transcribes audio through the host's WhisperKit pipeline.
type Service struct {
	*backends.Handle
	model Model
}

var _ features.STT = (*Service)(nil)

func (s *Service) Transcribe(ctx context.Context, samples []float32, opts features.STTOptions) (features.Transcript, error) {
	if err := s.Begin(ctx); err != nil {
		return features.Transcript{}, err
	}
	if len(samples) == 0 {
		return features.Transcript{}, errcode.New(errcode.EmptyInput, "no audio samples")
	}
	return s.model.Transcribe(ctx, samples, opts)
}
