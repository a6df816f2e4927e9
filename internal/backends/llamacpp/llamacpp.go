// Package llamacpp registers the llama.cpp text generation backend and its
// vision-language sibling. The two are separate registration units so a
// host can enable one without the other.
package llamacpp

import (
	"context"

	"github.com/runanywhere/commons/internal/backends"
	"github.com/runanywhere/commons/internal/features"
	"github.com/runanywhere/commons/internal/service"
	"github.com/runanywhere/commons/internal/types"
)

const (
	LLMModuleName   = "llamacpp"
	LLMProviderName = "LlamaCPPService"

	VLMModuleName   = "llamacpp_vlm"
	VLMProviderName = "LlamaCPPVLMService"

	Priority = 100
)

// TextModel is a loaded GGUF language model.
type TextModel interface {
	Generate(ctx context.Context, prompt string, opts features.GenerateOptions) (features.Generation, error)
	Close() error
}

// VisionModel is a loaded GGUF vision-language model with its projector.
type VisionModel interface {
	Describe(ctx context.Context, image []byte, prompt string, opts features.GenerateOptions) (features.Generation, error)
	Close() error
}

// Engine loads llama.cpp models.
type Engine interface {
	LoadText(path string, opts map[string]string) (TextModel, error)
	LoadVision(path, projector string, opts map[string]string) (VisionModel, error)
}

type unavailable struct{}

func (unavailable) LoadText(string, map[string]string) (TextModel, error) {
	return nil, backends.Unavailable(LLMModuleName)
}

func (unavailable) LoadVision(string, string, map[string]string) (VisionModel, error) {
	return nil, backends.Unavailable(VLMModuleName)
}

// CanHandle is shared by both units. A LlamaCPP framework hint is accepted,
// any other explicit hint is refused, and without a hint the path must be a
// .gguf file.
func CanHandle(req types.ServiceRequest) bool {
	switch {
	case req.Framework == types.FrameworkLlamaCPP:
		return true
	case req.Framework.Explicit():
		return false
	case req.Path() == "":
		return false
	}
	return req.PathHasSuffix(".gguf")
}

// CanHandleVLM additionally requires a vision-language request.
func CanHandleVLM(req types.ServiceRequest) bool {
	return req.Capability == types.CapabilityVLM && CanHandle(req)
}

// LLM is the llama.cpp text generation unit.
type LLM struct {
	*backends.Unit
	engine Engine
}

// NewLLM creates the text generation unit. A nil engine fails every load
// with NotImplemented.
func NewLLM(deps backends.Deps, engine Engine) *LLM {
	if engine == nil {
		engine = unavailable{}
	}
	b := &LLM{engine: engine}
	b.Unit = backends.NewUnit(deps,
		types.Module{
			Name:         LLMModuleName,
			DisplayName:  "LlamaCPP",
			Version:      "1.0.0",
			Description:  "LLM backend using llama.cpp for GGUF models",
			Capabilities: types.NewCapabilitySet(types.CapabilityLLM),
		},
		service.Provider{
			Name:       LLMProviderName,
			Capability: types.CapabilityLLM,
			Priority:   Priority,
			Factory:    service.FactoryFuncs{CanHandleFunc: CanHandle, CreateFunc: b.create},
		},
	)
	return b
}

func (b *LLM) create(req types.ServiceRequest) (features.Service, error) {
	model, err := b.engine.LoadText(req.Path(), req.Options)
	if err != nil {
		return nil, backends.LoadError(LLMModuleName, req.Path(), err)
	}
	return &TextService{
		Handle: backends.NewHandle(LLMProviderName, req, model),
		model:  model,
		system: req.Option("system_prompt", ""),
	}, nil
}

// VLM is the llama.cpp vision-language unit.
type VLM struct {
	*backends.Unit
	engine Engine
}

// NewVLM creates the vision-language unit.
func NewVLM(deps backends.Deps, engine Engine) *VLM {
	if engine == nil {
		engine = unavailable{}
	}
	b := &VLM{engine: engine}
	b.Unit = backends.NewUnit(deps,
		types.Module{
			Name:         VLMModuleName,
			DisplayName:  "LlamaCPP VLM",
			Version:      "1.0.0",
			Description:  "VLM backend using llama.cpp for GGUF vision-language models",
			Capabilities: types.NewCapabilitySet(types.CapabilityVLM),
		},
		service.Provider{
			Name:       VLMProviderName,
			Capability: types.CapabilityVLM,
			Priority:   Priority,
			Factory:    service.FactoryFuncs{CanHandleFunc: CanHandleVLM, CreateFunc: b.create},
		},
	)
	return b
}

func (b *VLM) create(req types.ServiceRequest) (features.Service, error) {
	model, err := b.engine.LoadVision(req.Path(), req.Option("mmproj", ""), req.Options)
	if err != nil {
		return nil, backends.LoadError(VLMModuleName, req.Path(), err)
	}
	return &VisionService{
		Handle: backends.NewHandle(VLMProviderName, req, model),
		model:  model,
	}, nil
}
