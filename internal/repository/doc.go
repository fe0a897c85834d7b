// Package repository defines document store access for infragraph.
//
// A store holds the entity documents produced by the collection pipeline,
// the relationship list, and a free-form metadata block. Processing is
// read-modify-write: a run loads the full store once, computes in memory,
// and saves the full store once.
//
// # Implementations
//
// The file subpackage stores everything in a single JSON or YAML file and
// rewrites it atomically (temp file + rename).
//
// The sqlite subpackage keeps documents, relationships and metadata in
// three tables and replaces the relationship and metadata tables inside a
// single transaction.
//
// # Failure Semantics
//
// Load failures are reported as ErrStoreNotFound or ErrMalformedStore and
// happen before any mutation. Save failures leave the previous contents in
// place.
package repository
