package codec

import (
	"errors"
	"fmt"
	"io"

	"infragraph/internal/domain"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles YAML stores
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return "yaml"
}

// Parse decodes a YAML store
func (c *YAMLCodec) Parse(r io.Reader) (*domain.Snapshot, error) {
	var raw map[string]any
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to parse YAML: store is empty")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("failed to parse YAML: store is null")
	}

	snap, err := domain.SnapshotFromMap(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid store layout: %w", err)
	}
	return snap, nil
}

// Export encodes the store as YAML
func (c *YAMLCodec) Export(snap *domain.Snapshot, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(snap.ToMap()); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}
