package platform

import (
	"context"
	"strings"

	"github.com/runanywhere/commons/internal/backends"
	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/features"
)

// LLMService generates text with the platform language model. Streaming is
// emulated: OnToken receives the whole response once.
type LLMService struct {
	*backends.Handle
	session LLMSession
}

func (s *LLMService) Generate(ctx context.Context, prompt string, opts features.GenerateOptions) (features.Generation, error) {
	if err := s.Begin(ctx); err != nil {
		return features.Generation{}, err
	}
	if strings.TrimSpace(prompt) == "" {
		return features.Generation{}, errcode.New(errcode.EmptyInput, "empty prompt")
	}
	if opts.Temperature == 0 {
		opts.Temperature = DefaultTemperature
	}
	if opts.MaxTokens == 0 {
		opts.MaxTokens = DefaultMaxTokens
	}

	text, err := s.session.Generate(ctx, prompt, opts)
	if err != nil {
		if ctx.Err() != nil {
			return features.Generation{}, errcode.Wrap(errcode.Cancelled, err, "generation stopped")
		}
		return features.Generation{}, err
	}
	gen := features.Generation{Text: text}
	if opts.OnToken != nil && text != "" {
		gen.Stopped = !opts.OnToken(text)
	}
	return gen, nil
}

// Cancel is a no-op; the host stops generation when the context passed to
// Generate is cancelled.
func (s *LLMService) Cancel() error {
	return s.Check()
}

// TTSService speaks text through the system voice.
type TTSService struct {
	*backends.Handle
	session TTSSession
}

// Synthesize plays text on the device. The returned Audio is always empty
// because the system voice writes straight to the audio output.
func (s *TTSService) Synthesize(ctx context.Context, text string, opts features.TTSOptions) (features.Audio, error) {
	if err := s.Begin(ctx); err != nil {
		return features.Audio{}, err
	}
	if strings.TrimSpace(text) == "" {
		return features.Audio{}, errcode.New(errcode.EmptyInput, "empty text")
	}
	if opts.Speed == 0 {
		opts.Speed = 1
	}
	return features.Audio{}, s.session.Speak(ctx, text, opts)
}

// Stop interrupts speech in progress.
func (s *TTSService) Stop() error {
	if err := s.Check(); err != nil {
		return err
	}
	return s.session.Stop()
}

// DiffusionService generates images with CoreML.
type DiffusionService struct {
	*backends.Handle
	session DiffusionSession
}

func (s *DiffusionService) GenerateImage(ctx context.Context, opts features.DiffusionOptions) (features.Image, error) {
	if err := s.Begin(ctx); err != nil {
		return features.Image{}, err
	}
	if strings.TrimSpace(opts.Prompt) == "" {
		return features.Image{}, errcode.New(errcode.EmptyInput, "empty prompt")
	}
	return s.session.Generate(ctx, opts)
}

func (s *DiffusionService) Cancel() error {
	if err := s.Check(); err != nil {
		return err
	}
	return s.session.Cancel()
}

var (
	_ features.LLM       = (*LLMService)(nil)
	_ features.TTS       = (*TTSService)(nil)
	_ features.Diffusion = (*DiffusionService)(nil)
)
