package onnx

import (
	"context"
	"sync"
)

const (
	DefaultEnergyThreshold float32 = 0.015

	voiceStartFrames = 2
	voiceEndFrames   = 10
)

// EnergyDetector is a mean-square energy voice detector with hysteresis:
// speech starts after voiceStartFrames loud frames and ends after
// voiceEndFrames quiet ones. It needs no model file.
type EnergyDetector struct {
	mu          sync.Mutex
	thresholdSq float32
	speaking    bool
	voiced      int
	silent      int
}

// NewEnergyDetector creates a detector triggering above the given RMS level.
func NewEnergyDetector(threshold float32) *EnergyDetector {
	return &EnergyDetector{thresholdSq: threshold * threshold}
}

func meanSquare(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}
	var sum float32
	for _, x := range samples {
		sum += x * x
	}
	return sum / float32(len(samples))
}

// ProcessFrame updates the detector with one frame and reports whether
// speech is in progress.
func (d *EnergyDetector) ProcessFrame(_ context.Context, samples []float32) (bool, error) {
	loud := meanSquare(samples) > d.thresholdSq

	d.mu.Lock()
	defer d.mu.Unlock()

	if loud {
		d.voiced++
		d.silent = 0
		if !d.speaking && d.voiced >= voiceStartFrames {
			d.speaking = true
		}
	} else {
		d.silent++
		d.voiced = 0
		if d.speaking && d.silent >= voiceEndFrames {
			d.speaking = false
		}
	}
	return d.speaking, nil
}

func (d *EnergyDetector) Reset() error {
	d.mu.Lock()
	d.speaking, d.voiced, d.silent = false, 0, 0
	d.mu.Unlock()
	return nil
}

func (d *EnergyDetector) Close() error { return nil }
