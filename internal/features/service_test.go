package features

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/types"
)

type fakeVAD struct{}

func (fakeVAD) Info() types.ServiceInfo {
	return types.ServiceInfo{Provider: "fake", Capability: types.CapabilityVAD}
}
func (fakeVAD) Close() error { return nil }
func (fakeVAD) ProcessFrame(context.Context, []float32) (bool, error) {
	return true, nil
}
func (fakeVAD) Reset() error { return nil }

func TestAs(t *testing.T) {
	var svc Service = fakeVAD{}

	vad, err := As[VAD](svc)
	require.NoError(t, err)
	speech, err := vad.ProcessFrame(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, speech)

	_, err = As[STT](svc)
	assert.Equal(t, errcode.NotSupported, errcode.CodeOf(err))

	_, err = As[VAD](nil)
	assert.ErrorIs(t, err, errcode.ErrNullPointer)
}

func TestImplements(t *testing.T) {
	svc := fakeVAD{}
	assert.True(t, Implements(svc, types.CapabilityVAD))
	assert.False(t, Implements(svc, types.CapabilityLLM))
	assert.False(t, Implements(svc, types.Capability(0)))

	assert.NoError(t, Check(svc, types.CapabilityVAD))
	assert.Error(t, Check(svc, types.CapabilityTTS))
	assert.ErrorIs(t, Check(nil, types.CapabilityTTS), errcode.ErrNullPointer)
}

func TestAudioDuration(t *testing.T) {
	a := Audio{Samples: make([]float32, 16000), SampleRate: 16000}
	assert.Equal(t, time.Second, a.Duration())
	assert.Zero(t, Audio{Samples: make([]float32, 10)}.Duration())
}
