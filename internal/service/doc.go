// Package service coordinates the repository, the inference engine and the
// validator.
//
// # Services
//
// PostProcessor runs one batch pass: load the store, match DNS records to
// proxies and proxies to services, upsert the inferred edge pairs and write
// the store back with a run summary in its metadata. Runs are serialized;
// a load failure returns before anything is written.
//
// ValidationService runs the graph validator over the persisted store.
//
// GraphService answers read-only queries over the store for the HTTP API.
//
// # Event System
//
// Services publish events via EventBus so the SSE hub can forward run and
// validation outcomes to connected clients.
package service
