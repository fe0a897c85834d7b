package service

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// MatchStats summarizes one matcher
type MatchStats struct {
	Matched   int `json:"matched"`
	Unmatched int `json:"unmatched"`
	// Skipped counts entities the matcher could not consider: DNS records
	// without a domain, or proxies without a backend
	Skipped int `json:"skipped"`
	// Loopback counts proxies skipped for a loopback backend
	Loopback int `json:"loopback,omitempty"`
}

// Report is the outcome of one post-processing run
type Report struct {
	RunID      string    `json:"run_id"`
	Store      string    `json:"store"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	Documents          int `json:"documents"`
	DuplicateDocuments int `json:"duplicate_documents"`

	DNSProxy     MatchStats `json:"dns_proxy"`
	ProxyService MatchStats `json:"proxy_service"`

	ExistingRelationships int            `json:"existing_relationships"`
	RelationshipsDerived  int            `json:"relationships_derived"`
	RelationshipsCreated  int            `json:"relationships_created"`
	CreatedByType         map[string]int `json:"created_by_type"`
	TotalRelationships    int            `json:"total_relationships"`
}

// Duration returns how long the run took
func (r *Report) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

// Text renders the run statistics block
func (r *Report) Text() string {
	var b strings.Builder
	rule := strings.Repeat("=", 80)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Relationship Post-Processing Statistics")
	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "Run: %s (%s)\n", r.RunID, r.Store)
	fmt.Fprintf(&b, "Documents: %d (%d duplicates ignored)\n", r.Documents, r.DuplicateDocuments)
	fmt.Fprintln(&b, "DNS -> Proxy Matching:")
	fmt.Fprintf(&b, "  Matched: %d\n", r.DNSProxy.Matched)
	fmt.Fprintf(&b, "  Unmatched: %d\n", r.DNSProxy.Unmatched)
	if r.DNSProxy.Skipped > 0 {
		fmt.Fprintf(&b, "  Missing domain: %d\n", r.DNSProxy.Skipped)
	}
	fmt.Fprintln(&b, "Proxy -> Service Matching:")
	fmt.Fprintf(&b, "  Matched: %d\n", r.ProxyService.Matched)
	fmt.Fprintf(&b, "  Unmatched: %d\n", r.ProxyService.Unmatched)
	if r.ProxyService.Loopback > 0 {
		fmt.Fprintf(&b, "  Loopback backends: %d\n", r.ProxyService.Loopback)
	}

	fmt.Fprintf(&b, "Total Relationships Created: %d\n", r.RelationshipsCreated)
	types := make([]string, 0, len(r.CreatedByType))
	for t := range r.CreatedByType {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(&b, "  %s: %d\n", t, r.CreatedByType[t])
	}
	fmt.Fprintf(&b, "Total Relationships in Store: %d\n", r.TotalRelationships)
	fmt.Fprint(&b, rule)
	return b.String()
}
