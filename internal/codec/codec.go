// Package codec provides encode/decode interfaces for payload serialization.
package codec

// Codec encodes and decodes the database payload. Implementations are
// stateless and safe for any number of concurrent callers. A Codec either
// produces a complete byte sequence / fully populated value or an error,
// never a truncated result.
type Codec interface {
	// Marshal serializes v into bytes.
	Marshal(v any) ([]byte, error)
	// Unmarshal deserializes data into v (must be a pointer).
	Unmarshal(data []byte, v any) error
	// Name returns the codec identifier used for diagnostics.
	Name() string
}
