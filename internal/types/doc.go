// Package types provides the data structures shared by the registries and
// backends.
//
// Core Types:
//   - Capability: Category of AI functionality (stt, tts, vad, llm, ...)
//   - CapabilitySet: Bitset of capabilities declared by a module
//   - Framework: Inference framework hint on a request
//   - ServiceRequest: What a caller wants instantiated
//   - Module: Registered backend package descriptor
//   - ServiceInfo: Description of a created service instance
//
// Example Usage:
//
//	req := types.ServiceRequest{
//	    Identifier: "whisper-tiny",
//	    ModelPath:  "/models/whisper-tiny.onnx",
//	    Capability: types.CapabilitySTT,
//	}
//	caps := types.NewCapabilitySet(types.CapabilitySTT, types.CapabilityTTS)
//	caps.Has(types.CapabilitySTT) // true
package types
