package onnx

import (
	"context"
	"strconv"
	"strings"

	"github.com/runanywhere/commons/internal/backends"
	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/features"
	"github.com/runanywhere/commons/internal/types"
)

func (b *Backend) createSTT(req types.ServiceRequest) (features.Service, error) {
	model, err := b.engine.LoadSTT(req.Path(), req.Options)
	if err != nil {
		return nil, backends.LoadError(ModuleName, req.Path(), err)
	}
	return &STTService{Handle: backends.NewHandle(STTProviderName, req, model), model: model}, nil
}

func (b *Backend) createTTS(req types.ServiceRequest) (features.Service, error) {
	model, err := b.engine.LoadTTS(req.Path(), req.Options)
	if err != nil {
		return nil, backends.LoadError(ModuleName, req.Path(), err)
	}
	return &TTSService{
		Handle: backends.NewHandle(TTSProviderName, req, model),
		model:  model,
		voice:  req.Option("voice", ""),
	}, nil
}

func (b *Backend) createVAD(req types.ServiceRequest) (features.Service, error) {
	if req.Path() == "" {
		threshold := DefaultEnergyThreshold
		if v := req.Option("energy_threshold", ""); v != "" {
			f, err := strconv.ParseFloat(v, 32)
			if err != nil || f <= 0 {
				return nil, errcode.New(errcode.InvalidArgument, "energy_threshold %q", v)
			}
			threshold = float32(f)
		}
		model := NewEnergyDetector(threshold)
		return &VADService{Handle: backends.NewHandle(VADProviderName, req, model), model: model}, nil
	}

	model, err := b.engine.LoadVAD(req.Path(), req.Options)
	if err != nil {
		return nil, backends.LoadError(ModuleName, req.Path(), err)
	}
	return &VADService{Handle: backends.NewHandle(VADProviderName, req, model), model: model}, nil
}

func (b *Backend) createEmbeddings(req types.ServiceRequest) (features.Service, error) {
	model, err := b.engine.LoadEmbeddings(req.Path(), req.Options)
	if err != nil {
		return nil, backends.LoadError(ModuleName, req.Path(), err)
	}
	return &EmbeddingsService{Handle: backends.NewHandle(EmbeddingsProviderName, req, model), model: model}, nil
}

// STTService transcribes audio with an ONNX speech model.
type STTService struct {
	*backends.Handle
	model STTModel
}

func (s *STTService) Transcribe(ctx context.Context, samples []float32, opts features.STTOptions) (features.Transcript, error) {
	if err := s.Begin(ctx); err != nil {
		return features.Transcript{}, err
	}
	if len(samples) == 0 {
		return features.Transcript{}, errcode.New(errcode.EmptyInput, "no audio samples")
	}
	return s.model.Transcribe(ctx, samples, opts)
}

// TTSService synthesizes speech with an ONNX voice.
type TTSService struct {
	*backends.Handle
	model TTSModel
	voice string
}

func (s *TTSService) Synthesize(ctx context.Context, text string, opts features.TTSOptions) (features.Audio, error) {
	if err := s.Begin(ctx); err != nil {
		return features.Audio{}, err
	}
	if strings.TrimSpace(text) == "" {
		return features.Audio{}, errcode.New(errcode.EmptyInput, "no text to synthesize")
	}
	if opts.Voice == "" {
		opts.Voice = s.voice
	}
	return s.model.Synthesize(ctx, text, opts)
}

// VADService detects speech frame by frame.
type VADService struct {
	*backends.Handle
	model VADModel
}

func (s *VADService) ProcessFrame(ctx context.Context, samples []float32) (bool, error) {
	if err := s.Begin(ctx); err != nil {
		return false, err
	}
	return s.model.ProcessFrame(ctx, samples)
}

func (s *VADService) Reset() error {
	if err := s.Check(); err != nil {
		return err
	}
	return s.model.Reset()
}

// EmbeddingsService embeds text with a sentence-transformer model.
type EmbeddingsService struct {
	*backends.Handle
	model EmbeddingModel
}

func (s *EmbeddingsService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := s.Begin(ctx); err != nil {
		return nil, err
	}
	if len(texts) == 0 {
		return nil, errcode.New(errcode.EmptyInput, "no texts to embed")
	}
	return s.model.Embed(ctx, texts)
}

func (s *EmbeddingsService) Dimension() int {
	return s.model.Dimension()
}

var (
	_ features.STT        = (*STTService)(nil)
	_ features.TTS        = (*TTSService)(nil)
	_ features.VAD        = (*VADService)(nil)
	_ features.Embeddings = (*EmbeddingsService)(nil)
)
