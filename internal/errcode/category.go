package errcode

import "fmt"

// Category names
const (
	CategorySuccess         = "Success"
	CategoryUnknown         = "Unknown"
	CategoryInitialization  = "Initialization"
	CategoryModel           = "Model"
	CategoryGeneration      = "Generation"
	CategoryNetwork         = "Network"
	CategoryStorage         = "Storage"
	CategoryHardware        = "Hardware"
	CategoryComponentState  = "ComponentState"
	CategoryValidation      = "Validation"
	CategoryAudio           = "Audio"
	CategoryLanguageVoice   = "LanguageVoice"
	CategoryAuthentication  = "Authentication"
	CategorySecurity        = "Security"
	CategoryExtraction      = "Extraction"
	CategoryCalibration     = "Calibration"
	CategoryModuleService   = "ModuleService"
	CategoryPlatformAdapter = "PlatformAdapter"
	CategoryBackend         = "Backend"
	CategoryEvent           = "Event"
	CategoryOther           = "Other"
)

// Band is an inclusive range of codes that share a category.
type Band struct {
	Category string
	Min      Code
	Max      Code
}

// Contains reports whether code falls inside the band.
func (b Band) Contains(code Code) bool {
	return code >= b.Min && code <= b.Max
}

// bands is ordered from -100 downward. Gaps between bands are intentional
// and map to Unknown.
var bands = []Band{
	{CategoryInitialization, -109, -100},
	{CategoryModel, -129, -110},
	{CategoryGeneration, -149, -130},
	{CategoryNetwork, -179, -150},
	{CategoryStorage, -219, -180},
	{CategoryHardware, -229, -220},
	{CategoryComponentState, -249, -230},
	{CategoryValidation, -279, -250},
	{CategoryAudio, -299, -280},
	{CategoryLanguageVoice, -319, -300},
	{CategoryAuthentication, -329, -320},
	{CategorySecurity, -349, -330},
	{CategoryExtraction, -369, -350},
	{CategoryCalibration, -379, -370},
	{CategoryModuleService, -499, -400},
	{CategoryPlatformAdapter, -599, -500},
	{CategoryBackend, -699, -600},
	{CategoryEvent, -799, -700},
	{CategoryOther, -899, -800},
}

// Bands returns a copy of the category bands.
func Bands() []Band {
	out := make([]Band, len(bands))
	copy(out, bands)
	return out
}

// CategoryOf maps a code to its category name.
func CategoryOf(code Code) string {
	if code == Success {
		return CategorySuccess
	}
	for _, b := range bands {
		if b.Contains(code) {
			return b.Category
		}
	}
	return CategoryUnknown
}

// MessageOf returns a human-readable message for code. It never returns an
// empty string.
func MessageOf(code Code) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return fmt.Sprintf("Unknown error (code %d)", code)
}

// ErrorModel is the structured view of a result code.
type ErrorModel struct {
	Code     Code   `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
}

// MakeError builds the structured model for code.
func MakeError(code Code) ErrorModel {
	return ErrorModel{
		Code:     code,
		Message:  MessageOf(code),
		Category: CategoryOf(code),
	}
}

// IsCommonsError reports whether code lies in the range reserved for this
// library (-100 through -999).
func IsCommonsError(code Code) bool {
	return code <= -100 && code >= -999
}

// IsExpected reports whether code is a normal outcome that should not be
// reported as a failure, such as a user cancellation.
func IsExpected(code Code) bool {
	return code == Cancelled
}
