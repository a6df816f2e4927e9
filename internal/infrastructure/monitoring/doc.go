/*
Package monitoring provides metrics collection and the platform callback
providers used for benchmarking and error telemetry.

# Overview

Metrics wraps a private Prometheus registry that tracks module and provider
registration, provider lookups, service creation and the introspection HTTP
server. Benchmark and Telemetry each hold a single platform-supplied callback
in a slot that readers access without locking.

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	bench := monitoring.NewBenchmark()
	bench.SetMetricsProvider(monitoring.MetricsProviderFunc(func(m *monitoring.ExtendedMetrics) {
		m.BatteryLevel = 0.8
	}))
	snapshot := bench.CaptureMetrics()

	timer := monitoring.NewTimer(metrics, "stt", "ONNXSTTService")
	// ... call factory ...
	timer.Stop(monitoring.StatusSuccess)
*/
package monitoring
