package types

import (
	"fmt"
	"strings"
)

// Capability is a category of AI functionality a backend can provide.
type Capability uint8

const (
	CapabilitySTT Capability = iota + 1
	CapabilityTTS
	CapabilityVAD
	CapabilityLLM
	CapabilityVLM
	CapabilityDiffusion
	CapabilityVectorSearch
	CapabilityEmbeddings

	capabilityEnd
)

var capabilityNames = map[Capability]string{
	CapabilitySTT:          "stt",
	CapabilityTTS:          "tts",
	CapabilityVAD:          "vad",
	CapabilityLLM:          "llm",
	CapabilityVLM:          "vlm",
	CapabilityDiffusion:    "diffusion",
	CapabilityVectorSearch: "vector_search",
	CapabilityEmbeddings:   "embeddings",
}

// AllCapabilities returns every known capability in declaration order.
func AllCapabilities() []Capability {
	caps := make([]Capability, 0, len(capabilityNames))
	for c := CapabilitySTT; c < capabilityEnd; c++ {
		caps = append(caps, c)
	}
	return caps
}

// Valid reports whether c is a known capability.
func (c Capability) Valid() bool {
	return c >= CapabilitySTT && c < capabilityEnd
}

func (c Capability) String() string {
	if name, ok := capabilityNames[c]; ok {
		return name
	}
	return fmt.Sprintf("capability(%d)", uint8(c))
}

// MarshalText encodes the capability by name.
func (c Capability) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid capability %d", uint8(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText decodes a capability name.
func (c *Capability) UnmarshalText(text []byte) error {
	parsed, err := ParseCapability(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCapability parses a capability name case-insensitively. Dashes are
// accepted in place of underscores.
func ParseCapability(s string) (Capability, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "_")
	for c, name := range capabilityNames {
		if name == key {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown capability %q", s)
}

// CapabilitySet is a bitset of capabilities declared by a module.
type CapabilitySet uint32

// NewCapabilitySet builds a set from caps. Invalid capabilities are ignored.
func NewCapabilitySet(caps ...Capability) CapabilitySet {
	var s CapabilitySet
	for _, c := range caps {
		s = s.With(c)
	}
	return s
}

func bit(c Capability) CapabilitySet {
	return 1 << (uint(c) - 1)
}

// With returns the set with c added.
func (s CapabilitySet) With(c Capability) CapabilitySet {
	if !c.Valid() {
		return s
	}
	return s | bit(c)
}

// Without returns the set with c removed.
func (s CapabilitySet) Without(c Capability) CapabilitySet {
	if !c.Valid() {
		return s
	}
	return s &^ bit(c)
}

// Has reports whether c is in the set.
func (s CapabilitySet) Has(c Capability) bool {
	return c.Valid() && s&bit(c) != 0
}

// Union returns the union of both sets.
func (s CapabilitySet) Union(o CapabilitySet) CapabilitySet {
	return s | o
}

// Empty reports whether no valid capability is set.
func (s CapabilitySet) Empty() bool {
	return len(s.List()) == 0
}

// List returns the capabilities in ascending order.
func (s CapabilitySet) List() []Capability {
	var caps []Capability
	for c := CapabilitySTT; c < capabilityEnd; c++ {
		if s.Has(c) {
			caps = append(caps, c)
		}
	}
	return caps
}

func (s CapabilitySet) String() string {
	caps := s.List()
	names := make([]string, len(caps))
	for i, c := range caps {
		names[i] = c.String()
	}
	return "[" + strings.Join(names, ",") + "]"
}

// MarshalJSON encodes the set as a list of names.
func (s CapabilitySet) MarshalJSON() ([]byte, error) {
	caps := s.List()
	var sb strings.Builder
	sb.WriteByte('[')
	for i, c := range caps {
		if i > 0 {
			sb.WriteByte(',')
		}
		fmt.Fprintf(&sb, "%q", c.String())
	}
	sb.WriteByte(']')
	return []byte(sb.String()), nil
}
