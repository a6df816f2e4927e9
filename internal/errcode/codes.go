package errcode

// Code is a signed result code. Zero is success, negative values are failures.
type Code int32

// Success
const (
	Success Code = 0
)

// Initialization errors (-100 to -109)
const (
	NotInitialized       Code = -100
	AlreadyInitialized   Code = -101
	InitializationFailed Code = -102
	InvalidConfiguration Code = -103
)

// Model errors (-110 to -129)
const (
	ModelNotFound         Code = -110
	ModelLoadFailed       Code = -111
	ModelValidationFailed Code = -112
	ModelIncompatible     Code = -113
	ModelNotLoaded        Code = -114
)

// Generation errors (-130 to -149)
const (
	GenerationFailed Code = -130
	InferenceFailed  Code = -131
	ContextTooLong   Code = -132
)

// Network errors (-150 to -179)
const (
	NetworkUnavailable Code = -150
	RequestFailed      Code = -151
	Timeout            Code = -153
)

// Storage errors (-180 to -219)
const (
	InsufficientStorage Code = -180
	FileNotFound        Code = -183
	FileReadFailed      Code = -184
	FileWriteFailed     Code = -185
)

// Hardware errors (-220 to -229)
const (
	HardwareUnsupported Code = -220
	InsufficientMemory  Code = -221
)

// Component state errors (-230 to -249)
const (
	ComponentNotReady Code = -230
	InvalidState      Code = -231
)

// Validation errors (-250 to -279)
const (
	ValidationFailed Code = -250
	InvalidInput     Code = -251
	InvalidFormat    Code = -252
	EmptyInput       Code = -253
	BufferTooSmall   Code = -254
)

// Audio errors (-280 to -299)
const (
	AudioFormatNotSupported Code = -280
	InvalidAudio            Code = -281
)

// Language and voice errors (-300 to -319)
const (
	LanguageNotSupported Code = -300
	VoiceNotAvailable    Code = -301
)

// Authentication errors (-320 to -329)
const (
	AuthenticationFailed Code = -320
)

// Security errors (-330 to -349)
const (
	SecureStorageFailed Code = -330
)

// Extraction errors (-350 to -369)
const (
	ExtractionFailed   Code = -350
	UnsupportedArchive Code = -351
)

// Calibration errors (-370 to -379)
const (
	CalibrationFailed Code = -370
)

// Module and service errors (-400 to -499)
const (
	ModuleNotFound            Code = -400
	ModuleAlreadyRegistered   Code = -401
	ModuleLoadFailed          Code = -402
	ServiceNotFound           Code = -410
	ServiceNotAvailable       Code = -411
	ServiceBusy               Code = -412
	ProcessingFailed          Code = -413
	ProviderNotFound          Code = -420
	NoCapableProvider         Code = -421
	ProviderAlreadyRegistered Code = -422
)

// Platform adapter errors (-500 to -599)
const (
	PlatformAdapterNotSet Code = -500
)

// Backend errors (-600 to -699)
const (
	BackendNotFound   Code = -600
	BackendNotReady   Code = -601
	BackendInitFailed Code = -602
	BackendBusy       Code = -603
	InvalidHandle     Code = -610
)

// Event errors (-700 to -799)
const (
	EventPublishFailed Code = -700
)

// Other errors (-800 to -899)
const (
	NotImplemented      Code = -800
	FeatureNotAvailable Code = -801
	Cancelled           Code = -802
	NotSupported        Code = -803
	Internal            Code = -804
	Unknown             Code = -805
	NullPointer         Code = -806
	InvalidArgument     Code = -807
)

var messages = map[Code]string{
	Success: "Success",

	NotInitialized:       "Component or service has not been initialized",
	AlreadyInitialized:   "Component or service is already initialized",
	InitializationFailed: "Initialization failed",
	InvalidConfiguration: "Configuration is invalid",

	ModelNotFound:         "Requested model was not found",
	ModelLoadFailed:       "Failed to load the model",
	ModelValidationFailed: "Model validation failed",
	ModelIncompatible:     "Model is incompatible with the current runtime",
	ModelNotLoaded:        "Model is not loaded",

	GenerationFailed: "Generation failed",
	InferenceFailed:  "Inference failed",
	ContextTooLong:   "Input exceeds the model context length",

	NetworkUnavailable: "Network is unavailable",
	RequestFailed:      "Network request failed",
	Timeout:            "Operation timed out",

	InsufficientStorage: "Insufficient storage space",
	FileNotFound:        "File not found",
	FileReadFailed:      "Failed to read file",
	FileWriteFailed:     "Failed to write file",

	HardwareUnsupported: "Hardware is not supported",
	InsufficientMemory:  "Insufficient memory",

	ComponentNotReady: "Component is not ready",
	InvalidState:      "Component is in an invalid state",

	ValidationFailed: "Validation failed",
	InvalidInput:     "Invalid input",
	InvalidFormat:    "Invalid format",
	EmptyInput:       "Input is empty",
	BufferTooSmall:   "Buffer is too small",

	AudioFormatNotSupported: "Audio format is not supported",
	InvalidAudio:            "Invalid audio data",

	LanguageNotSupported: "Language is not supported",
	VoiceNotAvailable:    "Voice is not available",

	AuthenticationFailed: "Authentication failed",

	SecureStorageFailed: "Secure storage operation failed",

	ExtractionFailed:   "Archive extraction failed",
	UnsupportedArchive: "Archive format is not supported",

	CalibrationFailed: "Calibration failed",

	ModuleNotFound:            "Module not found",
	ModuleAlreadyRegistered:   "Module is already registered",
	ModuleLoadFailed:          "Failed to load module",
	ServiceNotFound:           "Service not found",
	ServiceNotAvailable:       "Service is not available",
	ServiceBusy:               "Service is busy",
	ProcessingFailed:          "Processing failed",
	ProviderNotFound:          "Service provider not found",
	NoCapableProvider:         "No registered provider can handle the request",
	ProviderAlreadyRegistered: "Service provider is already registered for this capability",

	PlatformAdapterNotSet: "Platform adapter has not been set",

	BackendNotFound:   "Backend not found",
	BackendNotReady:   "Backend is not ready",
	BackendInitFailed: "Backend initialization failed",
	BackendBusy:       "Backend is busy",
	InvalidHandle:     "Invalid handle",

	EventPublishFailed: "Failed to publish event",

	NotImplemented:      "Not implemented",
	FeatureNotAvailable: "Feature is not available",
	Cancelled:           "Operation was cancelled",
	NotSupported:        "Operation is not supported",
	Internal:            "Internal error",
	Unknown:             "Unknown error",
	NullPointer:         "Required value is nil",
	InvalidArgument:     "Invalid argument",
}
