package llamacpp

import (
	"context"
	"strings"
	"sync"

	"github.com/runanywhere/commons/internal/backends"
	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/features"
)

// inflight tracks the running generation so Cancel can stop it from
// another goroutine.
type inflight struct {
	mu     sync.Mutex
	cancel context.CancelFunc
}

func (f *inflight) start(ctx context.Context) (context.Context, func()) {
	ctx, cancel := context.WithCancel(ctx)
	f.mu.Lock()
	f.cancel = cancel
	f.mu.Unlock()
	return ctx, func() {
		f.mu.Lock()
		f.cancel = nil
		f.mu.Unlock()
		cancel()
	}
}

func (f *inflight) Cancel() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cancel != nil {
		f.cancel()
	}
	return nil
}

// cancelled maps a context error from the model to Cancelled.
func cancelled(ctx context.Context, gen features.Generation, err error) (features.Generation, error) {
	if err != nil && ctx.Err() != nil {
		return gen, errcode.Wrap(errcode.Cancelled, err, "generation stopped")
	}
	return gen, err
}

// TextService generates text with a loaded GGUF model.
type TextService struct {
	*backends.Handle
	inflight
	model  TextModel
	system string
}

// Generate runs one completion. Only one generation at a time is tracked
// for Cancel.
func (s *TextService) Generate(ctx context.Context, prompt string, opts features.GenerateOptions) (features.Generation, error) {
	if err := s.Begin(ctx); err != nil {
		return features.Generation{}, err
	}
	if strings.TrimSpace(prompt) == "" {
		return features.Generation{}, errcode.New(errcode.EmptyInput, "empty prompt")
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = s.system
	}

	ctx, done := s.start(ctx)
	defer done()
	gen, err := s.model.Generate(ctx, prompt, opts)
	return cancelled(ctx, gen, err)
}

// VisionService answers prompts about images.
type VisionService struct {
	*backends.Handle
	inflight
	model VisionModel
}

func (s *VisionService) Describe(ctx context.Context, image []byte, prompt string, opts features.GenerateOptions) (features.Generation, error) {
	if err := s.Begin(ctx); err != nil {
		return features.Generation{}, err
	}
	if len(image) == 0 {
		return features.Generation{}, errcode.New(errcode.EmptyInput, "no image data")
	}

	ctx, done := s.start(ctx)
	defer done()
	gen, err := s.model.Describe(ctx, image, prompt, opts)
	return cancelled(ctx, gen, err)
}

var (
	_ features.LLM = (*TextService)(nil)
	_ features.VLM = (*VisionService)(nil)
)
