package codec

import "gopkg.in/yaml.v3"

// YAML is a human-readable codec using gopkg.in/yaml.v3, for callers who
// want the persisted file to be hand-editable config-style text.
type YAML struct{}

// Marshal serializes v to YAML bytes.
func (YAML) Marshal(v any) ([]byte, error) {
	return yaml.Marshal(v)
}

// Unmarshal deserializes YAML bytes into v.
func (YAML) Unmarshal(data []byte, v any) error {
	return yaml.Unmarshal(data, v)
}

// Name returns "yaml".
func (YAML) Name() string { return "yaml" }
