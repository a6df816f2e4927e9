package monitoring

import (
	"github.com/runanywhere/commons/internal/shared/slot"
)

// ThermalState is the device thermal pressure level.
type ThermalState int32

const (
	ThermalUnavailable ThermalState = -1
	ThermalNominal     ThermalState = 0
	ThermalFair        ThermalState = 1
	ThermalSerious     ThermalState = 2
	ThermalCritical    ThermalState = 3
)

// ExtendedMetrics are device metrics captured alongside benchmark timing.
// Every field starts at -1 (unavailable) and is filled only by what the
// platform provider can measure.
type ExtendedMetrics struct {
	MemoryUsageBytes      int64        `json:"memory_usage_bytes"`
	MemoryPeakBytes       int64        `json:"memory_peak_bytes"`
	CPUTemperatureCelsius float32      `json:"cpu_temperature_celsius"`
	BatteryLevel          float32      `json:"battery_level"`
	GPUUtilizationPercent float32      `json:"gpu_utilization_percent"`
	ThermalState          ThermalState `json:"thermal_state"`
}

// NewExtendedMetrics returns metrics with every field unavailable.
func NewExtendedMetrics() ExtendedMetrics {
	return ExtendedMetrics{
		MemoryUsageBytes:      -1,
		MemoryPeakBytes:       -1,
		CPUTemperatureCelsius: -1.0,
		BatteryLevel:          -1.0,
		GPUUtilizationPercent: -1.0,
		ThermalState:          ThermalUnavailable,
	}
}

// Unavailable reports whether no field was populated.
func (m ExtendedMetrics) Unavailable() bool {
	return m == NewExtendedMetrics()
}

// MetricsProvider fills in whatever device metrics the platform supports.
// It receives a struct pre-initialized to unavailable values.
type MetricsProvider interface {
	CollectMetrics(out *ExtendedMetrics)
}

// MetricsProviderFunc adapts a function to MetricsProvider.
type MetricsProviderFunc func(out *ExtendedMetrics)

func (f MetricsProviderFunc) CollectMetrics(out *ExtendedMetrics) {
	if f != nil {
		f(out)
	}
}

// Benchmark holds the platform metrics provider. Capture is lock-free and
// safe to call from hot paths concurrently with SetMetricsProvider.
type Benchmark struct {
	provider slot.Slot[MetricsProvider]
}

// NewBenchmark creates a Benchmark with no provider.
func NewBenchmark() *Benchmark {
	return &Benchmark{}
}

// SetMetricsProvider installs p, replacing the previous provider. A nil p,
// including a nil MetricsProviderFunc, clears the provider.
func (b *Benchmark) SetMetricsProvider(p MetricsProvider) {
	if f, ok := p.(MetricsProviderFunc); p == nil || ok && f == nil {
		b.provider.Clear()
		return
	}
	b.provider.Set(p)
}

// HasMetricsProvider reports whether a provider is installed.
func (b *Benchmark) HasMetricsProvider() bool {
	return b.provider.Loaded()
}

// CaptureMetrics snapshots device metrics. Without a provider every field is
// unavailable.
func (b *Benchmark) CaptureMetrics() ExtendedMetrics {
	out := NewExtendedMetrics()
	if p, ok := b.provider.Get(); ok {
		p.CollectMetrics(&out)
	}
	return out
}
