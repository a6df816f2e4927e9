package monitoring

import (
	"maps"

	"go.uber.org/zap"

	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/infrastructure/logging"
	"github.com/runanywhere/commons/internal/shared/slot"
)

// ErrorTracker receives structured errors for external reporting.
type ErrorTracker interface {
	TrackError(model errcode.ErrorModel, fields map[string]string)
}

// ErrorTrackerFunc adapts a function to ErrorTracker.
type ErrorTrackerFunc func(model errcode.ErrorModel, fields map[string]string)

func (f ErrorTrackerFunc) TrackError(model errcode.ErrorModel, fields map[string]string) {
	if f != nil {
		f(model, fields)
	}
}

// Telemetry holds the error tracker installed by the host platform.
type Telemetry struct {
	tracker slot.Slot[ErrorTracker]
}

// NewTelemetry creates a Telemetry with no tracker.
func NewTelemetry() *Telemetry {
	return &Telemetry{}
}

// SetErrorTracker installs tracker. A nil tracker, including a nil
// ErrorTrackerFunc, clears it.
func (t *Telemetry) SetErrorTracker(tracker ErrorTracker) {
	if f, ok := tracker.(ErrorTrackerFunc); tracker == nil || ok && f == nil {
		t.tracker.Clear()
		return
	}
	t.tracker.Set(tracker)
}

// Track reports err to the tracker. Nil errors and expected outcomes such as
// cancellation are not reported.
func (t *Telemetry) Track(err error, fields map[string]string) {
	if t == nil || err == nil {
		return
	}
	code := errcode.CodeOf(err)
	if errcode.IsExpected(code) {
		return
	}
	tracker, ok := t.tracker.Get()
	if !ok {
		return
	}
	out := make(map[string]string, len(fields)+1)
	maps.Copy(out, fields)
	out["error"] = err.Error()
	tracker.TrackError(errcode.MakeError(code), out)
}

// NewLogTracker returns a tracker that writes errors to logger at warn level.
func NewLogTracker(logger *logging.Logger) ErrorTracker {
	logger = logging.OrNop(logger)
	return ErrorTrackerFunc(func(model errcode.ErrorModel, fields map[string]string) {
		zf := make([]zap.Field, 0, len(fields)+3)
		zf = append(zf,
			zap.Int32("code", int32(model.Code)),
			zap.String("category", model.Category),
			zap.String("message", model.Message),
		)
		for k, v := range fields {
			zf = append(zf, zap.String(k, v))
		}
		logger.Warn("Error tracked", zf...)
	})
}
