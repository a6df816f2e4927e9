// Package backends holds what the backend registration units share.
//
// Each backend package (llamacpp, onnx, whispercpp, sdcpp, memory,
// whisperkit, platform) builds a Unit: one module descriptor plus the providers serving its capabilities.
// Register installs both or neither. Services created by a provider embed a
// Handle that gives them an instance id and single-shot Close.
//
// Native inference is reached through each backend's Engine interface. The
// engines shipped here are unavailable and fail loading with NotImplemented,
// so an SDK without bindings behaves exactly like one whose model failed to
// load. The whisperkit and platform units run inside the host platform and
// are reached through host callbacks instead.
package backends
