// Package onnx registers the ONNX Runtime backend: speech-to-text,
// text-to-speech, voice activity detection and sentence embeddings.
package onnx

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/runanywhere/commons/internal/backends"
	"github.com/runanywhere/commons/internal/features"
	"github.com/runanywhere/commons/internal/service"
	"github.com/runanywhere/commons/internal/types"
)

const (
	ModuleName = "onnx"

	STTProviderName        = "ONNXSTTService"
	TTSProviderName        = "ONNXTTSService"
	VADProviderName        = "ONNXVADService"
	EmbeddingsProviderName = "ONNXEmbeddingsService"

	Priority = 100
)

// STTModel is a loaded speech recognition model.
type STTModel interface {
	Transcribe(ctx context.Context, samples []float32, opts features.STTOptions) (features.Transcript, error)
	Close() error
}

// TTSModel is a loaded speech synthesis model.
type TTSModel interface {
	Synthesize(ctx context.Context, text string, opts features.TTSOptions) (features.Audio, error)
	Close() error
}

// VADModel is a loaded voice activity model.
type VADModel interface {
	ProcessFrame(ctx context.Context, samples []float32) (bool, error)
	Reset() error
	Close() error
}

// EmbeddingModel is a loaded sentence embedding model.
type EmbeddingModel interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
	Close() error
}

// Engine loads ONNX Runtime sessions.
type Engine interface {
	LoadSTT(path string, opts map[string]string) (STTModel, error)
	LoadTTS(path string, opts map[string]string) (TTSModel, error)
	LoadVAD(path string, opts map[string]string) (VADModel, error)
	LoadEmbeddings(path string, opts map[string]string) (EmbeddingModel, error)
}

type unavailable struct{}

func (unavailable) LoadSTT(string, map[string]string) (STTModel, error) {
	return nil, backends.Unavailable(ModuleName)
}

func (unavailable) LoadTTS(string, map[string]string) (TTSModel, error) {
	return nil, backends.Unavailable(ModuleName)
}

func (unavailable) LoadVAD(string, map[string]string) (VADModel, error) {
	return nil, backends.Unavailable(ModuleName)
}

func (unavailable) LoadEmbeddings(string, map[string]string) (EmbeddingModel, error) {
	return nil, backends.Unavailable(ModuleName)
}

// Backend is the ONNX Runtime registration unit.
type Backend struct {
	*backends.Unit
	engine Engine
}

// New creates the backend. A nil engine fails every model load with
// NotImplemented; VAD requests without a model still get the built-in
// energy detector.
func New(deps backends.Deps, engine Engine) *Backend {
	if engine == nil {
		engine = unavailable{}
	}
	b := &Backend{engine: engine}
	b.Unit = backends.NewUnit(deps,
		types.Module{
			Name:        ModuleName,
			DisplayName: "ONNX Runtime",
			Version:     "1.0.0",
			Description: "STT/TTS/VAD/embeddings backend using ONNX Runtime",
			Capabilities: types.NewCapabilitySet(
				types.CapabilitySTT,
				types.CapabilityTTS,
				types.CapabilityVAD,
				types.CapabilityEmbeddings,
			),
		},
		provider(STTProviderName, types.CapabilitySTT, CanHandleSTT, b.createSTT),
		provider(TTSProviderName, types.CapabilityTTS, CanHandleTTS, b.createTTS),
		provider(VADProviderName, types.CapabilityVAD, CanHandleVAD, b.createVAD),
		provider(EmbeddingsProviderName, types.CapabilityEmbeddings, CanHandleEmbeddings, b.createEmbeddings),
	)
	return b
}

func provider(name string, c types.Capability, canHandle func(types.ServiceRequest) bool,
	create func(types.ServiceRequest) (features.Service, error)) service.Provider {
	return service.Provider{
		Name:       name,
		Capability: c,
		Priority:   Priority,
		Factory:    service.FactoryFuncs{CanHandleFunc: canHandle, CreateFunc: create},
	}
}

func identifierContains(req types.ServiceRequest, subs ...string) bool {
	id := strings.ToLower(req.Identifier)
	for _, s := range subs {
		if strings.Contains(id, s) {
			return true
		}
	}
	return false
}

// CanHandleSTT makes ONNX the default STT provider: an empty identifier is
// accepted, as is any whisper, zipformer, paraformer or .onnx identifier.
func CanHandleSTT(req types.ServiceRequest) bool {
	if req.Identifier == "" {
		return true
	}
	return identifierContains(req, "whisper", "zipformer", "paraformer", ".onnx")
}

// CanHandleTTS accepts an empty identifier and piper, vits or .onnx voices.
func CanHandleTTS(req types.ServiceRequest) bool {
	if req.Identifier == "" {
		return true
	}
	return identifierContains(req, "piper", "vits", ".onnx")
}

// CanHandleVAD accepts every request.
func CanHandleVAD(types.ServiceRequest) bool {
	return true
}

// CanHandleEmbeddings accepts the ONNX framework hint, or with no hint a
// .onnx file or a directory holding model.onnx.
func CanHandleEmbeddings(req types.ServiceRequest) bool {
	switch {
	case req.Framework == types.FrameworkONNX:
		return true
	case req.Framework.Explicit():
		return false
	}

	path := req.Path()
	if path == "" {
		return false
	}
	if req.PathHasSuffix(".onnx") {
		return true
	}
	if fi, err := os.Stat(path); err == nil && fi.IsDir() {
		_, err := os.Stat(filepath.Join(path, "model.onnx"))
		return err == nil
	}
	return false
}
