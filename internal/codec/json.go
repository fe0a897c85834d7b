package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"infragraph/internal/domain"
)

// JSONCodec handles JSON stores
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return "json"
}

// Parse decodes a JSON store. Numbers are kept as json.Number so values
// written by collectors are re-emitted without float rounding.
func (c *JSONCodec) Parse(r io.Reader) (*domain.Snapshot, error) {
	var raw map[string]any
	decoder := json.NewDecoder(r)
	decoder.UseNumber()
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("failed to parse JSON: store is null")
	}

	snap, err := domain.SnapshotFromMap(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid store layout: %w", err)
	}
	return snap, nil
}

// Export encodes the store as indented JSON
func (c *JSONCodec) Export(snap *domain.Snapshot, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(snap.ToMap()); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}
