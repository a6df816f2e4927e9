package platform

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runanywhere/commons/internal/backends"
	"github.com/runanywhere/commons/internal/backends/sdcpp"
	"github.com/runanywhere/commons/internal/domain/registry"
	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/features"
	"github.com/runanywhere/commons/internal/service"
	"github.com/runanywhere/commons/internal/types"
)

type fakeLLM struct {
	reply    string
	err      error
	lastOpts features.GenerateOptions
	closed   bool
}

func (f *fakeLLM) CanHandle(identifier string) bool { return identifier == "foundation" }

func (f *fakeLLM) Create(string) (LLMSession, error) { return f, nil }

func (f *fakeLLM) Generate(_ context.Context, _ string, opts features.GenerateOptions) (string, error) {
	f.lastOpts = opts
	return f.reply, f.err
}

func (f *fakeLLM) Close() error {
	f.closed = true
	return nil
}

type fakeTTS struct {
	voice   string
	spoken  []string
	stopped bool
}

func (f *fakeTTS) CanHandle(voice string) bool { return voice != "" }

func (f *fakeTTS) Create(voice string) (TTSSession, error) {
	f.voice = voice
	return f, nil
}

func (f *fakeTTS) Speak(_ context.Context, text string, _ features.TTSOptions) error {
	f.spoken = append(f.spoken, text)
	return nil
}

func (f *fakeTTS) Stop() error {
	f.stopped = true
	return nil
}

func (f *fakeTTS) Close() error { return nil }

func newDeps() backends.Deps {
	return backends.Deps{
		Modules:  registry.NewManager(nil, nil),
		Services: service.NewRegistry(nil, nil, nil),
	}
}

func noop(types.ServiceRequest) (features.Service, error) {
	return nil, errors.New("unused")
}

func TestRegister(t *testing.T) {
	deps := newDeps()
	b := New(deps, Engine{})
	require.NoError(t, b.Register())

	mod, err := deps.Modules.Get(ModuleName)
	require.NoError(t, err)
	assert.True(t, mod.Capabilities.Has(types.CapabilityLLM))
	assert.True(t, mod.Capabilities.Has(types.CapabilityTTS))
	assert.True(t, mod.Capabilities.Has(types.CapabilityDiffusion))

	tests := []struct {
		capability types.Capability
		name       string
		priority   int
	}{
		{types.CapabilityLLM, LLMProviderName, LLMPriority},
		{types.CapabilityTTS, TTSProviderName, TTSPriority},
		{types.CapabilityDiffusion, DiffusionProviderName, DiffusionPriority},
	}
	for _, tt := range tests {
		providers := deps.Services.Providers(tt.capability)
		require.Len(t, providers, 1, tt.capability.String())
		assert.Equal(t, tt.name, providers[0].Name)
		assert.Equal(t, tt.priority, providers[0].Priority)
	}

	require.NoError(t, b.Unregister())
	assert.Zero(t, deps.Services.Count())
	assert.False(t, deps.Modules.Exists(ModuleName))
}

func TestRegisterRollsBack(t *testing.T) {
	tests := []struct {
		name       string
		capability types.Capability
		provider   string
	}{
		{"tts taken", types.CapabilityTTS, TTSProviderName},
		{"diffusion taken", types.CapabilityDiffusion, DiffusionProviderName},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			deps := newDeps()
			require.NoError(t, deps.Services.RegisterProvider(service.Provider{
				Name:       tt.provider,
				Capability: tt.capability,
				Priority:   1,
				Factory:    service.FactoryFuncs{CreateFunc: noop},
			}))

			b := New(deps, Engine{})
			err := b.Register()
			assert.True(t, errors.Is(err, errcode.ErrProviderAlreadyRegistered))
			assert.False(t, b.Registered())

			assert.False(t, deps.Modules.Exists(ModuleName))
			assert.False(t, deps.Services.HasProvider(types.CapabilityLLM, LLMProviderName))
			assert.Equal(t, 1, deps.Services.Count(), "only the foreign provider remains")
			assert.True(t, deps.Services.HasProvider(tt.capability, tt.provider))
		})
	}
}

func TestCanHandle(t *testing.T) {
	b := New(newDeps(), Engine{LLM: &fakeLLM{}, TTS: &fakeTTS{}})

	assert.True(t, b.canHandleLLM(types.ServiceRequest{Framework: types.FrameworkPlatform}))
	assert.False(t, b.canHandleLLM(types.ServiceRequest{Framework: types.FrameworkLlamaCPP, Identifier: "foundation"}))
	assert.True(t, b.canHandleLLM(types.ServiceRequest{Identifier: "foundation"}))
	assert.False(t, b.canHandleLLM(types.ServiceRequest{Identifier: "qwen.gguf"}))

	assert.True(t, b.canHandleTTS(types.ServiceRequest{Identifier: "com.apple.voice.Samantha"}))
	assert.False(t, b.canHandleTTS(types.ServiceRequest{Framework: types.FrameworkONNX, Identifier: "x"}))

	assert.True(t, b.canHandleDiffusion(types.ServiceRequest{Framework: types.FrameworkCoreML}))
	assert.False(t, b.canHandleDiffusion(types.ServiceRequest{Identifier: "sd-1.5"}), "no diffusion host")
}

func TestDiffusionOutranksSDCPP(t *testing.T) {
	deps := newDeps()
	require.NoError(t, sdcpp.New(deps, nil).Register())
	require.NoError(t, New(deps, Engine{}).Register())

	providers := deps.Services.Providers(types.CapabilityDiffusion)
	require.Len(t, providers, 2)
	assert.Equal(t, DiffusionProviderName, providers[0].Name)

	p, err := deps.Services.FindProvider(types.CapabilityDiffusion, types.ServiceRequest{Framework: types.FrameworkCoreML})
	require.NoError(t, err)
	assert.Equal(t, DiffusionProviderName, p.Name)

	p, err = deps.Services.FindProvider(types.CapabilityDiffusion, types.ServiceRequest{Framework: types.FrameworkSDCPP})
	require.NoError(t, err)
	assert.Equal(t, sdcpp.ProviderName, p.Name)

	_, err = deps.Services.CreateService(types.CapabilityDiffusion, types.ServiceRequest{Framework: types.FrameworkCoreML})
	assert.Equal(t, errcode.NotImplemented, errcode.CodeOf(err))
}

func TestLLMService(t *testing.T) {
	deps := newDeps()
	host := &fakeLLM{reply: "Paris"}
	require.NoError(t, New(deps, Engine{LLM: host}).Register())

	llm, err := service.Create[features.LLM](deps.Services, types.CapabilityLLM, types.ServiceRequest{Identifier: "foundation"})
	require.NoError(t, err)

	ctx := context.Background()
	_, err = llm.Generate(ctx, "  ", features.GenerateOptions{})
	assert.Equal(t, errcode.EmptyInput, errcode.CodeOf(err))

	var tokens []string
	gen, err := llm.Generate(ctx, "Capital of France?", features.GenerateOptions{
		OnToken: func(tok string) bool {
			tokens = append(tokens, tok)
			return true
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Paris", gen.Text)
	assert.Equal(t, []string{"Paris"}, tokens)
	assert.InDelta(t, DefaultTemperature, host.lastOpts.Temperature, 1e-6)
	assert.Equal(t, DefaultMaxTokens, host.lastOpts.MaxTokens)

	_, err = llm.Generate(ctx, "again", features.GenerateOptions{Temperature: 0.1, MaxTokens: 5})
	require.NoError(t, err)
	assert.Equal(t, 5, host.lastOpts.MaxTokens)

	require.NoError(t, llm.Cancel())
	require.NoError(t, llm.Close())
	assert.True(t, host.closed)
	assert.Equal(t, errcode.InvalidHandle, errcode.CodeOf(llm.Cancel()))
}

func TestLLMServiceCancelled(t *testing.T) {
	deps := newDeps()
	require.NoError(t, New(deps, Engine{LLM: &fakeLLM{err: context.Canceled}}).Register())

	llm, err := service.Create[features.LLM](deps.Services, types.CapabilityLLM, types.ServiceRequest{Framework: types.FrameworkPlatform})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	// Begin rejects an already cancelled context before the host is called.
	cancel()
	_, err = llm.Generate(ctx, "hi", features.GenerateOptions{})
	assert.Equal(t, errcode.Cancelled, errcode.CodeOf(err))
}

func TestTTSService(t *testing.T) {
	deps := newDeps()
	host := &fakeTTS{}
	require.NoError(t, New(deps, Engine{TTS: host}).Register())

	tts, err := service.Create[features.TTS](deps.Services, types.CapabilityTTS, types.ServiceRequest{Identifier: "com.apple.voice.Samantha"})
	require.NoError(t, err)
	assert.Equal(t, "com.apple.voice.Samantha", host.voice)

	audio, err := tts.Synthesize(context.Background(), "hello", features.TTSOptions{})
	require.NoError(t, err)
	assert.Empty(t, audio.Samples)
	assert.Equal(t, []string{"hello"}, host.spoken)

	require.NoError(t, tts.(*TTSService).Stop())
	assert.True(t, host.stopped)
}
