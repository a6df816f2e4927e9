// Package platform registers the services the host operating system provides
// itself: an on-device language model, system speech synthesis and CoreML
// image generation.
//
// Each service is reached through a host interface installed in Engine. A
// provider whose host is missing declines every request that does not carry
// its framework hint, and fails creation with NotImplemented.
package platform

import (
	"context"

	"github.com/runanywhere/commons/internal/backends"
	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/features"
	"github.com/runanywhere/commons/internal/service"
	"github.com/runanywhere/commons/internal/types"
)

const (
	ModuleName = "platform"

	LLMProviderName       = "AppleFoundationModels"
	TTSProviderName       = "SystemTTS"
	DiffusionProviderName = "CoreMLDiffusion"

	LLMPriority       = 50
	TTSPriority       = 10
	DiffusionPriority = 100

	DefaultTemperature = 0.7
	DefaultMaxTokens   = 1000
)

// LLMHost runs the platform language model.
type LLMHost interface {
	CanHandle(identifier string) bool
	Create(modelPath string) (LLMSession, error)
}

// LLMSession is one platform language model session.
type LLMSession interface {
	Generate(ctx context.Context, prompt string, opts features.GenerateOptions) (string, error)
	Close() error
}

// TTSHost runs system speech synthesis.
type TTSHost interface {
	CanHandle(voice string) bool
	Create(voice string) (TTSSession, error)
}

// TTSSession speaks through the system audio output. It produces no samples.
type TTSSession interface {
	Speak(ctx context.Context, text string, opts features.TTSOptions) error
	Stop() error
	Close() error
}

// DiffusionHost runs CoreML stable diffusion.
type DiffusionHost interface {
	CanHandle(identifier string) bool
	Create(modelPath string) (DiffusionSession, error)
}

// DiffusionSession is one loaded CoreML diffusion pipeline.
type DiffusionSession interface {
	Generate(ctx context.Context, opts features.DiffusionOptions) (features.Image, error)
	Cancel() error
	Close() error
}

// Engine holds the host callbacks. Any field may be nil.
type Engine struct {
	LLM       LLMHost
	TTS       TTSHost
	Diffusion DiffusionHost
}

// Backend is the platform registration unit.
type Backend struct {
	*backends.Unit
	engine Engine
}

// New creates the backend with one provider per platform service.
func New(deps backends.Deps, engine Engine) *Backend {
	b := &Backend{engine: engine}
	b.Unit = backends.NewUnit(deps,
		types.Module{
			Name:         ModuleName,
			DisplayName:  "Platform Services",
			Version:      "1.0.0",
			Description:  "Foundation Models, system TTS and CoreML diffusion",
			Capabilities: types.NewCapabilitySet(types.CapabilityLLM, types.CapabilityTTS, types.CapabilityDiffusion),
		},
		service.Provider{
			Name:       LLMProviderName,
			Capability: types.CapabilityLLM,
			Priority:   LLMPriority,
			Factory:    service.FactoryFuncs{CanHandleFunc: b.canHandleLLM, CreateFunc: b.createLLM},
		},
		service.Provider{
			Name:       TTSProviderName,
			Capability: types.CapabilityTTS,
			Priority:   TTSPriority,
			Factory:    service.FactoryFuncs{CanHandleFunc: b.canHandleTTS, CreateFunc: b.createTTS},
		},
		service.Provider{
			Name:       DiffusionProviderName,
			Capability: types.CapabilityDiffusion,
			Priority:   DiffusionPriority,
			Factory:    service.FactoryFuncs{CanHandleFunc: b.canHandleDiffusion, CreateFunc: b.createDiffusion},
		},
	)
	return b
}

// hinted reports the framework decision: claimed, refused, or undecided
// when the request carries no hint.
func hinted(req types.ServiceRequest, own types.Framework) (claim, decided bool) {
	switch {
	case req.Framework == own:
		return true, true
	case req.Framework.Explicit():
		return false, true
	}
	return false, false
}

func (b *Backend) canHandleLLM(req types.ServiceRequest) bool {
	if claim, decided := hinted(req, types.FrameworkPlatform); decided {
		return claim
	}
	return b.engine.LLM != nil && b.engine.LLM.CanHandle(req.Identifier)
}

func (b *Backend) canHandleTTS(req types.ServiceRequest) bool {
	if claim, decided := hinted(req, types.FrameworkPlatform); decided {
		return claim
	}
	return b.engine.TTS != nil && b.engine.TTS.CanHandle(req.Identifier)
}

func (b *Backend) canHandleDiffusion(req types.ServiceRequest) bool {
	if claim, decided := hinted(req, types.FrameworkCoreML); decided {
		return claim
	}
	return b.engine.Diffusion != nil && b.engine.Diffusion.CanHandle(req.Identifier)
}

func (b *Backend) createLLM(req types.ServiceRequest) (features.Service, error) {
	if b.engine.LLM == nil {
		return nil, backends.Unavailable(ModuleName + " llm")
	}
	sess, err := b.engine.LLM.Create(req.Path())
	if err != nil {
		return nil, backends.LoadError(ModuleName, req.Path(), err)
	}
	if sess == nil {
		return nil, errcode.New(errcode.BackendInitFailed, "%s: host returned no llm session", ModuleName)
	}
	return &LLMService{Handle: backends.NewHandle(LLMProviderName, req, sess), session: sess}, nil
}

func (b *Backend) createTTS(req types.ServiceRequest) (features.Service, error) {
	if b.engine.TTS == nil {
		return nil, backends.Unavailable(ModuleName + " tts")
	}
	sess, err := b.engine.TTS.Create(req.Identifier)
	if err != nil {
		return nil, backends.LoadError(ModuleName, req.Identifier, err)
	}
	if sess == nil {
		return nil, errcode.New(errcode.BackendInitFailed, "%s: host returned no tts session", ModuleName)
	}
	return &TTSService{Handle: backends.NewHandle(TTSProviderName, req, sess), session: sess}, nil
}

func (b *Backend) createDiffusion(req types.ServiceRequest) (features.Service, error) {
	if b.engine.Diffusion == nil {
		return nil, backends.Unavailable(ModuleName + " diffusion")
	}
	sess, err := b.engine.Diffusion.Create(req.Path())
	if err != nil {
		return nil, backends.LoadError(ModuleName, req.Path(), err)
	}
	if sess == nil {
		return nil, errcode.New(errcode.BackendInitFailed, "%s: host returned no diffusion session", ModuleName)
	}
	return &DiffusionService{Handle: backends.NewHandle(DiffusionProviderName, req, sess), session: sess}, nil
}
