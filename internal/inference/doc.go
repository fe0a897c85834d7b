// Package inference derives relationships that collectors never recorded.
//
// A run builds a Catalog over the loaded documents, feeds it to the domain
// matcher (dns_record -> proxy_host) and the backend resolver
// (proxy_host -> service), and hands the resulting matches to a Synthesizer
// which upserts forward and mirror edges into a domain.RelationshipSet.
//
// Matchers are pure functions over the catalog and return their counters in
// a result value; nothing here touches the store.
package inference
