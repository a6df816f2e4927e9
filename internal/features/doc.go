// Package features defines the operation interfaces that services created by
// the service registry implement, one per capability.
//
// Every service implements Service. A caller that asked for a capability
// type-asserts the returned handle to the matching interface, or uses As.
//
// Interfaces:
//   - STT: Speech-to-text transcription
//   - TTS: Text-to-speech synthesis
//   - VAD: Voice activity detection
//   - LLM: Text generation
//   - VLM: Vision-language generation
//   - Diffusion: Image generation
//   - Embeddings: Text embedding
//   - VectorSearch: Vector similarity search
//
// Example Usage:
//
//	svc, err := registry.CreateService(types.CapabilitySTT, req)
//	if err != nil {
//	    return err
//	}
//	defer svc.Close()
//	stt, err := features.As[features.STT](svc)
package features
