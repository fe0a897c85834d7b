// Package handler implements the HTTP API over the relationship graph.
//
// # Handlers
//
// GraphHandler serves store summaries, relationship listings, the last
// post-processing report and on-demand validation, and can trigger a
// post-processing run.
//
// Middleware provides request logging, panic recovery, and CORS support.
//
// # Response Format
//
// Success responses return JSON. Reports and validation results can be
// requested as plain text with ?format=text. Error responses return JSON
// with an {error, details} structure; a missing store maps to 404 and an
// unreadable store to 422.
//
// # Server-Sent Events
//
// The /events endpoint, served by the hub package, streams run and
// validation events to connected clients.
package handler
