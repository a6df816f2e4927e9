package types

import (
	"maps"
	"time"
)

// Module describes a backend package and the capabilities it declares.
type Module struct {
	Name         string            `json:"name"`
	DisplayName  string            `json:"display_name,omitempty"`
	Version      string            `json:"version,omitempty"`
	Description  string            `json:"description,omitempty"`
	Capabilities CapabilitySet     `json:"capabilities"`
	Metadata     map[string]string `json:"metadata,omitempty"`
	RegisteredAt time.Time         `json:"registered_at"`
}

// Clone returns a deep copy.
func (m Module) Clone() Module {
	if m.Metadata != nil {
		m.Metadata = maps.Clone(m.Metadata)
	}
	return m
}
