package backends

import (
	"fmt"

	"github.com/runanywhere/commons/internal/errcode"
)

// Unavailable is the load error of an engine without native bindings.
func Unavailable(backend string) error {
	return errcode.New(errcode.NotImplemented, "%s engine is not available in this build", backend)
}

// LoadError annotates an engine load failure. Errors that already carry a
// result code keep it; anything else becomes ModelLoadFailed.
func LoadError(backend, path string, err error) error {
	if errcode.CodeOf(err) == errcode.Unknown {
		return errcode.Wrap(errcode.ModelLoadFailed, err, "%s: %s", backend, path)
	}
	return fmt.Errorf("%s: load %s: %w", backend, path, err)
}
