package inference

import (
	"log"

	"infragraph/internal/domain"
)

// DomainMatchResult is the outcome of matching DNS records to proxies
type DomainMatchResult struct {
	Matches []Match

	// Matched counts DNS records with at least one proxy
	Matched int
	// Unmatched lists DNS records that matched no proxy
	Unmatched []string
	// MissingDomain lists DNS records without a domain field
	MissingDomain []string
}

// MatchDomains pairs every DNS record with each proxy host whose primary
// domain or alias list contains the record's domain. One record may fan out
// to several proxies.
func MatchDomains(c *Catalog, opts Options) DomainMatchResult {
	var result DomainMatchResult

	for _, dns := range c.DNSRecords {
		name := dns.LookupString("domain")
		if name == "" {
			log.Printf("Warning: DNS record %s missing domain field", dns.ID)
			result.MissingDomain = append(result.MissingDomain, dns.ID)
			continue
		}

		found := 0
		for _, proxy := range c.ProxyHosts {
			if !servesDomain(proxy, name) {
				continue
			}
			found++
			result.Matches = append(result.Matches, Match{
				SourceID:   dns.ID,
				SourceType: domain.EntityTypeDNSRecord,
				TargetID:   proxy.ID,
				TargetType: domain.EntityTypeProxyHost,
				Relation:   domain.RelationRoutesTo,
				Method:     domain.MatchingMethodDomain,
				Key:        name,
				Attributes: map[string]any{domain.MetaMatchedDomain: name},
			})
			if opts.Verbose {
				log.Printf("Matched DNS %s to proxy %s", name, proxy.ID)
			}
		}

		if found == 0 {
			log.Printf("Warning: no matching proxy found for DNS record %s (%s)", name, dns.ID)
			result.Unmatched = append(result.Unmatched, dns.ID)
			continue
		}
		result.Matched++
	}

	return result
}

func servesDomain(proxy domain.Document, name string) bool {
	if proxy.LookupString("domain") == name {
		return true
	}
	for _, alias := range proxy.LookupStrings("domain_names") {
		if alias == name {
			return true
		}
	}
	return false
}
