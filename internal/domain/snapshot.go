package domain

import (
	"fmt"
	"time"
)

// Top-level store keys
const (
	KeyDocuments     = "documents"
	KeyRelationships = "relationships"
	KeyMetadata      = "metadata"

	MetaExportTimestamp = "export_timestamp"
	MetaPostProcessing  = "relationship_post_processing"
)

// Snapshot is the complete contents of a document store
type Snapshot struct {
	Documents     []Document
	Relationships []RawRelationship
	Metadata      map[string]any

	// Extra holds unrecognised top-level keys so they survive a rewrite
	Extra map[string]any
}

// NewSnapshot creates an empty snapshot
func NewSnapshot() *Snapshot {
	return &Snapshot{
		Documents:     make([]Document, 0),
		Relationships: make([]RawRelationship, 0),
		Metadata:      make(map[string]any),
		Extra:         make(map[string]any),
	}
}

// SnapshotFromMap builds a snapshot from a decoded store. Absent sections
// are treated as empty; sections or entries of the wrong shape are errors.
func SnapshotFromMap(m map[string]any) (*Snapshot, error) {
	snap := NewSnapshot()

	if raw, ok := m[KeyDocuments]; ok && raw != nil {
		list, ok := asList(raw)
		if !ok {
			return nil, fmt.Errorf("%s must be a list, got %T", KeyDocuments, raw)
		}
		for i, item := range list {
			fields, ok := asMap(item)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be an object, got %T", KeyDocuments, i, item)
			}
			snap.Documents = append(snap.Documents, DocumentFromFields(fields))
		}
	}

	if raw, ok := m[KeyRelationships]; ok && raw != nil {
		list, ok := asList(raw)
		if !ok {
			return nil, fmt.Errorf("%s must be a list, got %T", KeyRelationships, raw)
		}
		for i, item := range list {
			fields, ok := asMap(item)
			if !ok {
				return nil, fmt.Errorf("%s[%d] must be an object, got %T", KeyRelationships, i, item)
			}
			snap.Relationships = append(snap.Relationships, RawRelationship(fields))
		}
	}

	if raw, ok := m[KeyMetadata]; ok && raw != nil {
		meta, ok := asMap(raw)
		if !ok {
			return nil, fmt.Errorf("%s must be an object, got %T", KeyMetadata, raw)
		}
		snap.Metadata = meta
	}

	for k, v := range m {
		switch k {
		case KeyDocuments, KeyRelationships, KeyMetadata:
		default:
			snap.Extra[k] = v
		}
	}

	return snap, nil
}

// ToMap converts the snapshot to its persisted form
func (s *Snapshot) ToMap() map[string]any {
	out := make(map[string]any, len(s.Extra)+3)
	for k, v := range s.Extra {
		out[k] = v
	}

	docs := make([]any, 0, len(s.Documents))
	for _, d := range s.Documents {
		docs = append(docs, d.Fields())
	}
	rels := make([]any, 0, len(s.Relationships))
	for _, r := range s.Relationships {
		rels = append(rels, map[string]any(r))
	}
	meta := s.Metadata
	if meta == nil {
		meta = make(map[string]any)
	}

	out[KeyDocuments] = docs
	out[KeyRelationships] = rels
	out[KeyMetadata] = meta
	return out
}

// PostProcessingSummary is recorded in the store metadata after a run
type PostProcessingSummary struct {
	RunID               string
	ProcessedAt         time.Time
	RelationshipsAdded  int
	DNSProxyMatched     int
	ProxyServiceMatched int
}

// RecordPostProcessing writes the run summary into the snapshot metadata
func (s *Snapshot) RecordPostProcessing(sum PostProcessingSummary) {
	if s.Metadata == nil {
		s.Metadata = make(map[string]any)
	}
	ts := FormatTimestamp(sum.ProcessedAt)
	s.Metadata[MetaExportTimestamp] = ts
	s.Metadata[MetaPostProcessing] = map[string]any{
		"run_id":                sum.RunID,
		"processed_at":          ts,
		"relationships_added":   sum.RelationshipsAdded,
		"dns_proxy_matched":     sum.DNSProxyMatched,
		"proxy_service_matched": sum.ProxyServiceMatched,
	}
}
