package domain

import "strconv"

// RawRelationship is an edge as it appears in a persisted store. Edges may
// be written by collectors as well as by this module, so no field is
// guaranteed to be present or correctly typed.
type RawRelationship map[string]any

// StringField returns a field when it is present and a string
func (r RawRelationship) StringField(key string) (string, bool) {
	return asString(r[key])
}

// field returns a string field or "" when absent or mistyped
func (r RawRelationship) field(key string) string {
	s, _ := asString(r[key])
	return s
}

// ID returns the edge id
func (r RawRelationship) ID() string { return r.field("id") }

// Type returns the relation type
func (r RawRelationship) Type() RelationType { return RelationType(r.field("type")) }

// SourceID returns the source entity id
func (r RawRelationship) SourceID() string { return r.field("source_id") }

// SourceType returns the declared source entity type
func (r RawRelationship) SourceType() EntityType { return EntityType(r.field("source_type")) }

// TargetID returns the target entity id
func (r RawRelationship) TargetID() string { return r.field("target_id") }

// TargetType returns the declared target entity type
func (r RawRelationship) TargetType() EntityType { return EntityType(r.field("target_type")) }

// Metadata returns the metadata mapping, or nil when absent or mistyped
func (r RawRelationship) Metadata() map[string]any {
	m, _ := asMap(r["metadata"])
	return m
}

// CreatedAt returns metadata.created_at when it is a string
func (r RawRelationship) CreatedAt() string {
	s, _ := asString(r.Metadata()[MetaCreatedAt])
	return s
}

// Label returns the edge id, or a positional label for edges without one
func (r RawRelationship) Label(index int) string {
	if id, ok := r.StringField("id"); ok && id != "" {
		return id
	}
	return "relationship[" + strconv.Itoa(index) + "]"
}
