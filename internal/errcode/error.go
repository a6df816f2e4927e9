package errcode

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is checks. Each matches any *Error carrying the
// same code.
var (
	ErrNotInitialized            = &Error{Code: NotInitialized}
	ErrAlreadyInitialized        = &Error{Code: AlreadyInitialized}
	ErrModuleNotFound            = &Error{Code: ModuleNotFound}
	ErrModuleAlreadyRegistered   = &Error{Code: ModuleAlreadyRegistered}
	ErrProviderNotFound          = &Error{Code: ProviderNotFound}
	ErrProviderAlreadyRegistered = &Error{Code: ProviderAlreadyRegistered}
	ErrNoCapableProvider         = &Error{Code: NoCapableProvider}
	ErrInvalidArgument           = &Error{Code: InvalidArgument}
	ErrNullPointer               = &Error{Code: NullPointer}
	ErrNotImplemented            = &Error{Code: NotImplemented}
	ErrValidationFailed          = &Error{Code: ValidationFailed}
	ErrBackendInitFailed         = &Error{Code: BackendInitFailed}
)

// ErrBackendFactoryFailed classifies failures that originate inside a
// provider's factory. It carries no code of its own; the backend's code is
// preserved on the wrapped error.
var ErrBackendFactoryFailed = errors.New("backend factory failed")

// Error is an error carrying a result code.
type Error struct {
	Code    Code
	Details string
	Err     error
}

// New creates an error for code with optional formatted details.
func New(code Code, format string, args ...any) *Error {
	e := &Error{Code: code}
	if format != "" {
		e.Details = fmt.Sprintf(format, args...)
	}
	return e
}

// Wrap creates an error for code that wraps err.
func Wrap(code Code, err error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Err = err
	return e
}

func (e *Error) Error() string {
	msg := MessageOf(e.Code)
	if e.Details != "" {
		msg = msg + ": " + e.Details
	}
	if e.Err != nil {
		msg = msg + ": " + e.Err.Error()
	}
	return fmt.Sprintf("%s (code %d)", msg, e.Code)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error with the same code.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// Model returns the structured view of the error.
func (e *Error) Model() ErrorModel {
	return MakeError(e.Code)
}

// CodeOf extracts the result code from err. Nil yields Success; an error
// without a code in its chain yields Unknown.
func CodeOf(err error) Code {
	if err == nil {
		return Success
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return Unknown
}

// FromCode converts a code back into an error. Success yields nil.
func FromCode(code Code) error {
	if code == Success {
		return nil
	}
	return &Error{Code: code}
}
