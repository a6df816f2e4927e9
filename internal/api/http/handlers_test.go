package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/infrastructure/config"
	"github.com/runanywhere/commons/internal/infrastructure/monitoring"
	"github.com/runanywhere/commons/internal/sdk"
)

type fixture struct {
	sdk    *sdk.SDK
	router *gin.Engine
}

func setup(t *testing.T, mutate func(*config.Config)) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := config.Default()
	cfg.Backends.Enabled = []string{config.BackendONNX, config.BackendWhisperCPP, config.BackendLlamaCPP}
	if mutate != nil {
		mutate(cfg)
	}
	s, err := sdk.New(cfg, sdk.Options{Metrics: monitoring.NewMetrics()})
	require.NoError(t, err)

	router := gin.New()
	NewHandlers(s, "test").Register(router)
	return &fixture{sdk: s, router: router}
}

func (f *fixture) get(t *testing.T, path string, out any) int {
	t.Helper()
	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	if out != nil {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), out), w.Body.String())
	}
	return w.Code
}

func TestHealth(t *testing.T) {
	f := setup(t, nil)

	var body map[string]any
	assert.Equal(t, http.StatusServiceUnavailable, f.get(t, "/health", &body))
	assert.Equal(t, "initializing", body["status"])

	require.NoError(t, f.sdk.Init())
	assert.Equal(t, http.StatusOK, f.get(t, "/health", &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, []any{"onnx", "whispercpp", "llamacpp"}, body["backends"])
}

func TestModules(t *testing.T) {
	f := setup(t, nil)
	require.NoError(t, f.sdk.Init())

	var list struct {
		Modules []struct {
			Name         string   `json:"name"`
			Capabilities []string `json:"capabilities"`
		} `json:"modules"`
		Count int `json:"count"`
	}
	require.Equal(t, http.StatusOK, f.get(t, "/modules", &list))
	assert.Equal(t, 3, list.Count)
	assert.Equal(t, "onnx", list.Modules[0].Name)

	require.Equal(t, http.StatusOK, f.get(t, "/modules?capability=stt", &list))
	assert.Equal(t, 2, list.Count)

	var errBody ErrorResponse
	assert.Equal(t, http.StatusBadRequest, f.get(t, "/modules?capability=telepathy", &errBody))
	assert.Equal(t, errcode.InvalidArgument, errBody.Code)

	var mod struct {
		Name         string   `json:"name"`
		Version      string   `json:"version"`
		Capabilities []string `json:"capabilities"`
	}
	require.Equal(t, http.StatusOK, f.get(t, "/modules/whispercpp", &mod))
	assert.Equal(t, []string{"stt"}, mod.Capabilities)

	assert.Equal(t, http.StatusNotFound, f.get(t, "/modules/coreml", &errBody))
	assert.Equal(t, errcode.ModuleNotFound, errBody.Code)
	assert.Equal(t, errcode.CategoryModuleService, errBody.Category)
}

func TestCapabilities(t *testing.T) {
	f := setup(t, nil)
	require.NoError(t, f.sdk.Init())

	var body struct {
		Available    []string         `json:"available"`
		Capabilities []CapabilityView `json:"capabilities"`
	}
	require.Equal(t, http.StatusOK, f.get(t, "/capabilities", &body))
	assert.Contains(t, body.Available, "llm")
	assert.NotContains(t, body.Available, "diffusion")

	byName := map[string]CapabilityView{}
	for _, v := range body.Capabilities {
		byName[v.Name] = v
	}
	assert.ElementsMatch(t, []string{"onnx", "whispercpp"}, byName["stt"].Modules)
	assert.Equal(t, 2, byName["stt"].Providers)
	assert.False(t, byName["diffusion"].Available)
	assert.Empty(t, byName["diffusion"].Modules)
}

func TestProviders(t *testing.T) {
	f := setup(t, nil)
	require.NoError(t, f.sdk.Init())

	var body struct {
		Capability string `json:"capability"`
		Providers  []struct {
			Name     string `json:"name"`
			Priority int    `json:"priority"`
		} `json:"providers"`
	}
	require.Equal(t, http.StatusOK, f.get(t, "/capabilities/stt/providers", &body))
	require.Len(t, body.Providers, 2)
	assert.Equal(t, "ONNXSTTService", body.Providers[0].Name)
	assert.Equal(t, "WhisperCPPService", body.Providers[1].Name)

	require.Equal(t, http.StatusOK, f.get(t, "/capabilities/diffusion/providers", &body))
	assert.Empty(t, body.Providers)

	assert.Equal(t, http.StatusBadRequest, f.get(t, "/capabilities/telepathy/providers", nil))
}

func TestResolveProvider(t *testing.T) {
	f := setup(t, nil)
	require.NoError(t, f.sdk.Init())

	var body struct {
		Provider struct {
			Name string `json:"name"`
		} `json:"provider"`
	}
	require.Equal(t, http.StatusOK,
		f.get(t, "/capabilities/llm/resolve?model_path=/models/qwen.gguf", &body))
	assert.Equal(t, "LlamaCPPService", body.Provider.Name)

	var errBody ErrorResponse
	assert.Equal(t, http.StatusNotFound,
		f.get(t, "/capabilities/llm/resolve?model_path=/models/qwen.onnx", &errBody))
	assert.Equal(t, errcode.NoCapableProvider, errBody.Code)

	assert.Equal(t, http.StatusBadRequest,
		f.get(t, "/capabilities/llm/resolve?framework=tensorrt", nil))
}

func TestErrors(t *testing.T) {
	f := setup(t, nil)

	var body struct {
		Error         errcode.ErrorModel `json:"error"`
		CommonsError  bool               `json:"commons_error"`
		ExpectedError bool               `json:"expected_error"`
	}
	require.Equal(t, http.StatusOK, f.get(t, "/errors/-400", &body))
	assert.Equal(t, errcode.MakeError(errcode.ModuleNotFound), body.Error)
	assert.True(t, body.CommonsError)

	require.Equal(t, http.StatusOK, f.get(t, "/errors/0", &body))
	assert.Equal(t, errcode.CategorySuccess, body.Error.Category)

	assert.Equal(t, http.StatusBadRequest, f.get(t, "/errors/abc", nil))

	var bands struct {
		Bands []errcode.Band `json:"bands"`
	}
	require.Equal(t, http.StatusOK, f.get(t, "/errors", &bands))
	assert.Len(t, bands.Bands, len(errcode.Bands()))
}

func TestBenchmarkMetrics(t *testing.T) {
	f := setup(t, nil)

	var body struct {
		Metrics     monitoring.ExtendedMetrics `json:"metrics"`
		Available   bool                       `json:"available"`
		ProviderSet bool                       `json:"provider_set"`
	}
	require.Equal(t, http.StatusOK, f.get(t, "/benchmark/metrics", &body))
	assert.False(t, body.Available)
	assert.Equal(t, monitoring.NewExtendedMetrics(), body.Metrics)

	f.sdk.SetMetricsProvider(monitoring.MetricsProviderFunc(func(out *monitoring.ExtendedMetrics) {
		out.MemoryUsageBytes = 1 << 20
	}))
	require.Equal(t, http.StatusOK, f.get(t, "/benchmark/metrics", &body))
	assert.True(t, body.Available)
	assert.True(t, body.ProviderSet)
	assert.Equal(t, int64(1<<20), body.Metrics.MemoryUsageBytes)
}

func TestDiscoveredModels(t *testing.T) {
	f := setup(t, nil)
	var errBody ErrorResponse
	assert.Equal(t, http.StatusNotImplemented, f.get(t, "/models/discovered", &errBody))
	assert.Equal(t, errcode.FeatureNotAvailable, errBody.Code)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ggml-whisper-tiny.bin"), []byte("lmgg"), 0o644))
	f = setup(t, func(cfg *config.Config) { cfg.Backends.ModelsDir = dir })
	require.NoError(t, f.sdk.Init())

	var body struct {
		Models []struct {
			Name      string            `json:"name"`
			Providers map[string]string `json:"providers"`
		} `json:"models"`
		Count int `json:"count"`
	}
	require.Equal(t, http.StatusOK, f.get(t, "/models/discovered", &body))
	require.Equal(t, 1, body.Count)
	assert.Equal(t, "ONNXSTTService", body.Models[0].Providers["stt"])
}

func TestPrometheusMetrics(t *testing.T) {
	f := setup(t, nil)
	require.NoError(t, f.sdk.Init())

	w := httptest.NewRecorder()
	f.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "commons_"), "exposition carries commons metrics")

	var body map[string]any
	require.Equal(t, http.StatusOK, f.get(t, "/metrics/json", &body))
	assert.Contains(t, body, "metrics")
}
