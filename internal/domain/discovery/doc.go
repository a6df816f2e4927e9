// Package discovery finds downloaded model files on disk.
//
// A scan walks the models directory in parallel, classifies each file by
// extension (GGUF, ONNX, GGML whisper, safetensors/ckpt), flags archives
// that still need extraction, fingerprints the file head and records which
// registered provider would currently serve it.
package discovery
