package tracing

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/runanywhere/commons/internal/infrastructure/logging"
)

func observed() (*logging.Logger, *observer.ObservedLogs) {
	core, logs := observer.New(zapcore.DebugLevel)
	return logging.Wrap(zap.New(core)), logs
}

func TestStartSpan(t *testing.T) {
	tracer := New("test", nil)
	defer tracer.Close()

	root, ctx := tracer.StartSpan(context.Background(), "root")
	assert.NotEmpty(t, root.TraceID)
	assert.Empty(t, root.ParentID)
	assert.Equal(t, root.TraceID, GetTraceID(ctx))
	assert.Equal(t, root.SpanID, GetSpanID(ctx))

	child, _ := tracer.StartSpan(ctx, "child")
	assert.Equal(t, root.TraceID, child.TraceID)
	assert.Equal(t, root.SpanID, child.ParentID)
	assert.NotEqual(t, root.SpanID, child.SpanID)
}

func TestParseTraceID(t *testing.T) {
	id := NewTraceID()
	got, ok := ParseTraceID(string(id))
	assert.True(t, ok)
	assert.Equal(t, id, got)

	_, ok = ParseTraceID("not-a-uuid")
	assert.False(t, ok)
}

func TestHTTPMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, logs := observed()
	tracer := New("test", logger)

	router := gin.New()
	router.Use(HTTPMiddleware(tracer))
	router.GET("/modules/:name", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	router.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	incoming := NewTraceID()
	req := httptest.NewRequest(http.MethodGet, "/modules/onnx", nil)
	req.Header.Set(HeaderTraceID, string(incoming))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, string(incoming), w.Header().Get(HeaderTraceID))
	assert.NotEmpty(t, w.Header().Get(HeaderSpanID))

	req = httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(HeaderTraceID, "garbage")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	_, ok := ParseTraceID(w.Header().Get(HeaderTraceID))
	assert.True(t, ok, "invalid incoming trace id is replaced")

	tracer.Close()
	require.Equal(t, 1, logs.FilterMessage("Span completed").Len())
	require.Equal(t, 1, logs.FilterMessage("Span completed with error").Len())
	entry := logs.FilterMessage("Span completed").All()[0]
	assert.Equal(t, "GET /modules/:name", entry.ContextMap()["operation"])
}

func TestSubmitAfterClose(t *testing.T) {
	tracer := New("test", nil)
	span, _ := tracer.StartSpan(context.Background(), "late")
	tracer.Close()
	tracer.Close()
	assert.NotPanics(t, func() { tracer.Submit(span) })
}
