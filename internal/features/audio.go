package features

import (
	"context"
	"time"
)

// STTOptions configure a transcription.
type STTOptions struct {
	Language   string
	SampleRate int
	Timestamps bool
}

// Segment is a timed span of a transcript.
type Segment struct {
	Text  string        `json:"text"`
	Start time.Duration `json:"start"`
	End   time.Duration `json:"end"`
}

// Transcript is the result of a transcription.
type Transcript struct {
	Text       string    `json:"text"`
	Language   string    `json:"language,omitempty"`
	Confidence float32   `json:"confidence"`
	Segments   []Segment `json:"segments,omitempty"`
}

// STT transcribes PCM float32 mono audio.
type STT interface {
	Service
	Transcribe(ctx context.Context, samples []float32, opts STTOptions) (Transcript, error)
}

// TTSOptions configure a synthesis.
type TTSOptions struct {
	Voice      string
	Speed      float32
	SampleRate int
}

// Audio is synthesized PCM float32 mono audio.
type Audio struct {
	Samples    []float32 `json:"-"`
	SampleRate int       `json:"sample_rate"`
}

// Duration returns the playback length.
func (a Audio) Duration() time.Duration {
	if a.SampleRate <= 0 {
		return 0
	}
	return time.Duration(len(a.Samples)) * time.Second / time.Duration(a.SampleRate)
}

// TTS synthesizes speech from text.
type TTS interface {
	Service
	Synthesize(ctx context.Context, text string, opts TTSOptions) (Audio, error)
}

// VAD detects speech in audio frames.
type VAD interface {
	Service
	// ProcessFrame reports whether the frame contains speech.
	ProcessFrame(ctx context.Context, samples []float32) (bool, error)
	Reset() error
}
