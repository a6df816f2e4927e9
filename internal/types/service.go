package types

import "strings"

// ServiceRequest describes what a caller wants instantiated. Backends inspect
// it in CanHandle and again when creating the service.
type ServiceRequest struct {
	Identifier string            `json:"identifier,omitempty"`
	ModelPath  string            `json:"model_path,omitempty"`
	Capability Capability        `json:"capability"`
	Framework  Framework         `json:"framework,omitempty"`
	Options    map[string]string `json:"options,omitempty"`
}

// Path returns the model path, falling back to the identifier.
func (r ServiceRequest) Path() string {
	if r.ModelPath != "" {
		return r.ModelPath
	}
	return r.Identifier
}

// Option returns a request option or def when unset.
func (r ServiceRequest) Option(key, def string) string {
	if v, ok := r.Options[key]; ok {
		return v
	}
	return def
}

// PathHasSuffix reports whether Path ends with suffix, ignoring case.
func (r ServiceRequest) PathHasSuffix(suffix string) bool {
	return strings.HasSuffix(strings.ToLower(r.Path()), strings.ToLower(suffix))
}

// PathContains reports whether Path contains any of subs, ignoring case.
func (r ServiceRequest) PathContains(subs ...string) bool {
	p := strings.ToLower(r.Path())
	for _, s := range subs {
		if strings.Contains(p, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// ServiceInfo describes a created service instance.
type ServiceInfo struct {
	ID         string     `json:"id"`
	Provider   string     `json:"provider"`
	Capability Capability `json:"capability"`
	ModelPath  string     `json:"model_path,omitempty"`
}
