package types

import (
	"fmt"
	"strings"
)

// Framework is the inference framework hint carried on a request.
type Framework uint8

const (
	FrameworkUnknown Framework = iota
	FrameworkLlamaCPP
	FrameworkONNX
	FrameworkWhisperCPP
	FrameworkSDCPP
	FrameworkCoreML
	FrameworkPlatform
)

var frameworkNames = map[Framework]string{
	FrameworkUnknown:    "unknown",
	FrameworkLlamaCPP:   "llamacpp",
	FrameworkONNX:       "onnx",
	FrameworkWhisperCPP: "whispercpp",
	FrameworkSDCPP:      "sdcpp",
	FrameworkCoreML:     "coreml",
	FrameworkPlatform:   "platform",
}

func (f Framework) String() string {
	if name, ok := frameworkNames[f]; ok {
		return name
	}
	return fmt.Sprintf("framework(%d)", uint8(f))
}

// Explicit reports whether the caller named a framework.
func (f Framework) Explicit() bool {
	return f != FrameworkUnknown
}

// ParseFramework parses a framework name. An empty string is FrameworkUnknown.
func ParseFramework(s string) (Framework, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	if key == "" {
		return FrameworkUnknown, nil
	}
	for f, name := range frameworkNames {
		if name == key {
			return f, nil
		}
	}
	return FrameworkUnknown, fmt.Errorf("unknown framework %q", s)
}

// MarshalText encodes the framework by name.
func (f Framework) MarshalText() ([]byte, error) {
	return []byte(f.String()), nil
}

// UnmarshalText decodes a framework name.
func (f *Framework) UnmarshalText(text []byte) error {
	parsed, err := ParseFramework(string(text))
	if err != nil {
		return err
	}
	*f = parsed
	return nil
}
