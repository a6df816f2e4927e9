// Package errcode provides the result code space shared by every registry and
// backend.
//
// Codes are signed 32-bit integers. Zero is success and negative values are
// failures partitioned into contiguous, non-overlapping category bands:
//
//	-100 .. -109  Initialization
//	-110 .. -129  Model
//	-130 .. -149  Generation
//	-150 .. -179  Network
//	-180 .. -219  Storage
//	-220 .. -229  Hardware
//	-230 .. -249  ComponentState
//	-250 .. -279  Validation
//	-280 .. -299  Audio
//	-300 .. -319  LanguageVoice
//	-320 .. -329  Authentication
//	-330 .. -349  Security
//	-350 .. -369  Extraction
//	-370 .. -379  Calibration
//	-400 .. -499  ModuleService
//	-500 .. -599  PlatformAdapter
//	-600 .. -699  Backend
//	-700 .. -799  Event
//	-800 .. -899  Other
//
// Any other non-zero code is Unknown. Consumers must treat unknown negative
// codes as a generic failure.
//
// Example Usage:
//
//	err := errcode.New(errcode.ModuleNotFound, "module %q", name)
//	errors.Is(err, errcode.ErrModuleNotFound) // true
//	errcode.CodeOf(err)                        // -400
//	errcode.MakeError(errcode.CodeOf(err))     // {Code, Message, Category}
package errcode
