// Package domain defines the core types of the infragraph knowledge graph.
//
// The graph is made of entity documents produced by the collection
// pipeline (DNS records, proxy hosts, containers, servers, services) and
// typed, directed relationships between them.
//
// # Core Types
//
// Document is a read-only entity record. Its identifier is parsed once into
// an EntityRef so matching code never re-splits raw id strings.
//
// Relationship is a synthesized edge with a deterministic id of the form
// {source_id}_{verb}_{target_id}. RawRelationship is the loosely typed form
// edges take in a persisted store, where collectors may have written
// anything.
//
// RelationType carries the bidirectional pairing table. Every known type
// has exactly one reverse; CONNECTS_TO is its own reverse.
//
// RelationshipSet is the edge list keyed by edge id, used for idempotent
// inserts across repeated runs.
//
// Snapshot is the complete store contents: documents, relationships and
// free-form metadata.
//
// # Design Principles
//
// - Documents are never mutated
// - No database or external dependencies
// - Loosely typed input is coerced at the boundary (see values.go)
package domain
