package domain

import (
	"fmt"
	"strings"
	"time"
)

// RelationType represents the type of a relationship between entities
type RelationType string

const (
	RelationRoutesTo           RelationType = "ROUTES_TO"
	RelationRoutesFrom         RelationType = "ROUTES_FROM"
	RelationProxies            RelationType = "PROXIES"
	RelationProxiedBy          RelationType = "PROXIED_BY"
	RelationHostedBy           RelationType = "HOSTED_BY"
	RelationHosts              RelationType = "HOSTS"
	RelationRunsOn             RelationType = "RUNS_ON"
	RelationRuns               RelationType = "RUNS"
	RelationStoresDataOn       RelationType = "STORES_DATA_ON"
	RelationProvidesStorageFor RelationType = "PROVIDES_STORAGE_FOR"
	RelationUses               RelationType = "USES"
	RelationUsedBy             RelationType = "USED_BY"
	RelationDependsOn          RelationType = "DEPENDS_ON"
	RelationSupports           RelationType = "SUPPORTS"
	RelationPartOf             RelationType = "PART_OF"
	RelationContains           RelationType = "CONTAINS"
	RelationManagedBy          RelationType = "MANAGED_BY"
	RelationManages            RelationType = "MANAGES"
	RelationConnectsTo         RelationType = "CONNECTS_TO"
)

// forwardTypes lists each pair once, forward direction first
var forwardTypes = []struct{ forward, reverse RelationType }{
	{RelationRoutesTo, RelationRoutesFrom},
	{RelationProxies, RelationProxiedBy},
	{RelationHostedBy, RelationHosts},
	{RelationRunsOn, RelationRuns},
	{RelationStoresDataOn, RelationProvidesStorageFor},
	{RelationUses, RelationUsedBy},
	{RelationDependsOn, RelationSupports},
	{RelationPartOf, RelationContains},
	{RelationManagedBy, RelationManages},
	{RelationConnectsTo, RelationConnectsTo},
}

var reverseTypes = func() map[RelationType]RelationType {
	m := make(map[RelationType]RelationType, 2*len(forwardTypes))
	for _, p := range forwardTypes {
		m[p.forward] = p.reverse
		m[p.reverse] = p.forward
	}
	return m
}()

// Reverse returns the paired type for the mirror edge
func (t RelationType) Reverse() (RelationType, bool) {
	r, ok := reverseTypes[t]
	return r, ok
}

// Known reports whether the type is part of the pairing table
func (t RelationType) Known() bool {
	_, ok := reverseTypes[t]
	return ok
}

// Symmetric reports whether the type is its own reverse
func (t RelationType) Symmetric() bool {
	r, ok := reverseTypes[t]
	return ok && r == t
}

// Verb returns the lowercased form used inside edge ids
func (t RelationType) Verb() string {
	return strings.ToLower(string(t))
}

// KnownRelationTypes returns every type in the pairing table
func KnownRelationTypes() []RelationType {
	types := make([]RelationType, 0, len(reverseTypes))
	for _, p := range forwardTypes {
		types = append(types, p.forward)
		if p.reverse != p.forward {
			types = append(types, p.reverse)
		}
	}
	return types
}

// RelationshipID builds the deterministic edge id
func RelationshipID(sourceID string, relType RelationType, targetID string) string {
	return fmt.Sprintf("%s_%s_%s", sourceID, relType.Verb(), targetID)
}

// Metadata keys carried by synthesized relationships
const (
	MetaCreatedAt       = "created_at"
	MetaMatchingMethod  = "matching_method"
	MetaMatchedKey      = "matched_key"
	MetaMatchedDomain   = "matched_domain"
	MetaBackendHost     = "backend_host"
	MetaBackendPort     = "backend_port"
	MetaBackendProtocol = "backend_protocol"
)

// MatchingMethod names the heuristic that produced an inferred edge
type MatchingMethod string

const (
	MatchingMethodDomain MatchingMethod = "domain"
	MatchingMethodIPPort MatchingMethod = "ip_port"
)

// Relationship is a typed, directed, timestamped edge between two documents
type Relationship struct {
	ID         string         `json:"id"`
	Type       RelationType   `json:"type"`
	SourceID   string         `json:"source_id"`
	SourceType EntityType     `json:"source_type"`
	TargetID   string         `json:"target_id"`
	TargetType EntityType     `json:"target_type"`
	Metadata   map[string]any `json:"metadata"`
}

// NewRelationship creates a relationship with a generated id and created_at
func NewRelationship(sourceID string, sourceType EntityType, targetID string, targetType EntityType, relType RelationType, createdAt time.Time) *Relationship {
	return &Relationship{
		ID:         RelationshipID(sourceID, relType, targetID),
		Type:       relType,
		SourceID:   sourceID,
		SourceType: sourceType,
		TargetID:   targetID,
		TargetType: targetType,
		Metadata: map[string]any{
			MetaCreatedAt: FormatTimestamp(createdAt),
		},
	}
}

// SetMetadata sets a metadata value
func (r *Relationship) SetMetadata(key string, value any) {
	if r.Metadata == nil {
		r.Metadata = make(map[string]any)
	}
	r.Metadata[key] = value
}

// CreatedAt returns the raw created_at timestamp
func (r *Relationship) CreatedAt() string {
	s, _ := asString(r.Metadata[MetaCreatedAt])
	return s
}

// Mirror returns the reverse edge: swapped endpoints, paired type and a
// copy of the metadata, so both directions share created_at.
func (r *Relationship) Mirror() (*Relationship, bool) {
	reverse, ok := r.Type.Reverse()
	if !ok {
		return nil, false
	}
	return &Relationship{
		ID:         RelationshipID(r.TargetID, reverse, r.SourceID),
		Type:       reverse,
		SourceID:   r.TargetID,
		SourceType: r.TargetType,
		TargetID:   r.SourceID,
		TargetType: r.SourceType,
		Metadata:   cloneMap(r.Metadata),
	}, true
}

// Raw converts the relationship to its persisted form
func (r *Relationship) Raw() RawRelationship {
	meta := map[string]any{}
	if r.Metadata != nil {
		meta = cloneMap(r.Metadata)
	}
	return RawRelationship{
		"id":          r.ID,
		"type":        string(r.Type),
		"source_id":   r.SourceID,
		"source_type": string(r.SourceType),
		"target_id":   r.TargetID,
		"target_type": string(r.TargetType),
		"metadata":    meta,
	}
}

// TimestampLayout is the ISO-8601 layout written into created_at
const TimestampLayout = time.RFC3339Nano

// timestampLayouts are accepted on read. Stores written by older
// collectors carry naive local timestamps without an offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
}

// FormatTimestamp formats t for a created_at field
func FormatTimestamp(t time.Time) string {
	return t.Format(TimestampLayout)
}

// ParseTimestamp parses an ISO-8601 timestamp in any accepted layout
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid ISO 8601 timestamp %q", s)
}
