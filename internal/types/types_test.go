package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCapability(t *testing.T) {
	tests := []struct {
		in      string
		want    Capability
		wantErr bool
	}{
		{"stt", CapabilitySTT, false},
		{"TTS", CapabilityTTS, false},
		{" vad ", CapabilityVAD, false},
		{"vector-search", CapabilityVectorSearch, false},
		{"vector_search", CapabilityVectorSearch, false},
		{"Embeddings", CapabilityEmbeddings, false},
		{"speech", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCapability(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCapabilityStringRoundTrip(t *testing.T) {
	for _, c := range AllCapabilities() {
		parsed, err := ParseCapability(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
	assert.Equal(t, "capability(99)", Capability(99).String())
	assert.False(t, Capability(0).Valid())
}

func TestCapabilitySet(t *testing.T) {
	s := NewCapabilitySet(CapabilityTTS, CapabilitySTT, CapabilityVAD)

	assert.True(t, s.Has(CapabilitySTT))
	assert.True(t, s.Has(CapabilityVAD))
	assert.False(t, s.Has(CapabilityLLM))
	assert.Equal(t, []Capability{CapabilitySTT, CapabilityTTS, CapabilityVAD}, s.List())
	assert.Equal(t, "[stt,tts,vad]", s.String())

	s = s.Without(CapabilityTTS)
	assert.False(t, s.Has(CapabilityTTS))

	assert.True(t, CapabilitySet(0).Empty())
	assert.True(t, NewCapabilitySet(Capability(0), Capability(200)).Empty())
	assert.False(t, CapabilitySet(0).Has(Capability(0)))

	u := NewCapabilitySet(CapabilityLLM).Union(NewCapabilitySet(CapabilityVLM))
	assert.Equal(t, []Capability{CapabilityLLM, CapabilityVLM}, u.List())
}

func TestCapabilitySetJSON(t *testing.T) {
	data, err := json.Marshal(NewCapabilitySet(CapabilityDiffusion, CapabilityVectorSearch))
	require.NoError(t, err)
	assert.JSONEq(t, `["diffusion","vector_search"]`, string(data))

	data, err = json.Marshal(CapabilitySet(0))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestParseFramework(t *testing.T) {
	f, err := ParseFramework("LlamaCPP")
	require.NoError(t, err)
	assert.Equal(t, FrameworkLlamaCPP, f)
	assert.True(t, f.Explicit())

	f, err = ParseFramework("")
	require.NoError(t, err)
	assert.Equal(t, FrameworkUnknown, f)
	assert.False(t, f.Explicit())

	_, err = ParseFramework("tensorflow")
	assert.Error(t, err)
}

func TestServiceRequestPath(t *testing.T) {
	req := ServiceRequest{Identifier: "whisper-base"}
	assert.Equal(t, "whisper-base", req.Path())

	req.ModelPath = "/models/Whisper-Base.BIN"
	assert.Equal(t, "/models/Whisper-Base.BIN", req.Path())
	assert.True(t, req.PathHasSuffix(".bin"))
	assert.True(t, req.PathContains("zipformer", "whisper"))
	assert.False(t, req.PathContains("piper"))

	assert.Equal(t, "en", req.Option("language", "en"))
	req.Options = map[string]string{"language": "de"}
	assert.Equal(t, "de", req.Option("language", "en"))
}

func TestModuleClone(t *testing.T) {
	m := Module{Name: "onnx", Metadata: map[string]string{"k": "v"}}
	c := m.Clone()
	c.Metadata["k"] = "changed"
	assert.Equal(t, "v", m.Metadata["k"])
}
