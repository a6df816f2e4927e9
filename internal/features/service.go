package features

import (
	"fmt"

	"github.com/runanywhere/commons/internal/errcode"
	"github.com/runanywhere/commons/internal/types"
)

// Service is an opaque, backend-owned handle. The caller owns it and must
// release it with Close.
type Service interface {
	Info() types.ServiceInfo
	Close() error
}

// As asserts svc to the capability interface T.
func As[T Service](svc Service) (T, error) {
	if svc == nil {
		var zero T
		return zero, errcode.New(errcode.NullPointer, "nil service")
	}
	t, ok := svc.(T)
	if !ok {
		var zero T
		return zero, errcode.New(errcode.NotSupported, "service %s does not implement %T", svc.Info().Provider, (*T)(nil))
	}
	return t, nil
}

// Implements reports whether svc satisfies the operation interface for c.
func Implements(svc Service, c types.Capability) bool {
	switch c {
	case types.CapabilitySTT:
		_, ok := svc.(STT)
		return ok
	case types.CapabilityTTS:
		_, ok := svc.(TTS)
		return ok
	case types.CapabilityVAD:
		_, ok := svc.(VAD)
		return ok
	case types.CapabilityLLM:
		_, ok := svc.(LLM)
		return ok
	case types.CapabilityVLM:
		_, ok := svc.(VLM)
		return ok
	case types.CapabilityDiffusion:
		_, ok := svc.(Diffusion)
		return ok
	case types.CapabilityEmbeddings:
		_, ok := svc.(Embeddings)
		return ok
	case types.CapabilityVectorSearch:
		_, ok := svc.(VectorSearch)
		return ok
	default:
		return false
	}
}

// Check returns an error when svc does not satisfy c.
func Check(svc Service, c types.Capability) error {
	if svc == nil {
		return errcode.New(errcode.NullPointer, "nil service")
	}
	if !Implements(svc, c) {
		return fmt.Errorf("service %s: %w", svc.Info().Provider,
			errcode.New(errcode.NotSupported, "does not implement %s", c))
	}
	return nil
}
