package sqlite

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"

	"infragraph/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ============================================================================
// JSON Marshaling Helpers
// ============================================================================

// marshalJSON encodes v for a JSON column
func marshalJSON(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// unmarshalValue decodes a JSON column, keeping numbers as json.Number
func unmarshalValue(s string) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader([]byte(s)))
	decoder.UseNumber()
	var v any
	if err := decoder.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// unmarshalObject decodes a JSON column that must hold an object
func unmarshalObject(s string) (map[string]any, error) {
	v, err := unmarshalValue(s)
	if err != nil {
		return nil, err
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected JSON object, got %T", v)
	}
	return m, nil
}

// ============================================================================
// Relationship Write Helpers
// ============================================================================

// relationshipInsertArgs prepares arguments for relationship INSERT.
// Indexed columns are only filled from well-typed fields; the body column
// always carries the edge exactly as given.
// Returns: id, type, source_id, target_id, body
func relationshipInsertArgs(rel domain.RawRelationship, body string) []any {
	return []any{
		stringToNull(rel.ID()),
		stringToNull(string(rel.Type())),
		stringToNull(rel.SourceID()),
		stringToNull(rel.TargetID()),
		body,
	}
}
