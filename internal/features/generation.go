package features

import "context"

// GenerateOptions configure text generation.
type GenerateOptions struct {
	MaxTokens    int
	Temperature  float32
	TopP         float32
	SystemPrompt string
	Stop         []string
	// OnToken receives each token as it is produced. Returning false stops
	// generation.
	OnToken func(token string) bool
}

// Generation is the result of a generation call.
type Generation struct {
	Text             string `json:"text"`
	PromptTokens     int    `json:"prompt_tokens"`
	CompletionTokens int    `json:"completion_tokens"`
	Stopped          bool   `json:"stopped"`
}

// LLM generates text.
type LLM interface {
	Service
	Generate(ctx context.Context, prompt string, opts GenerateOptions) (Generation, error)
	Cancel() error
}

// VLM generates text conditioned on an image.
type VLM interface {
	Service
	Describe(ctx context.Context, image []byte, prompt string, opts GenerateOptions) (Generation, error)
	Cancel() error
}

// DiffusionOptions configure image generation.
type DiffusionOptions struct {
	Prompt         string
	NegativePrompt string
	Width          int
	Height         int
	Steps          int
	CFGScale       float32
	Seed           int64
}

// Image is an RGB8 image.
type Image struct {
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Pixels []byte `json:"-"`
}

// Diffusion generates images.
type Diffusion interface {
	Service
	GenerateImage(ctx context.Context, opts DiffusionOptions) (Image, error)
}
