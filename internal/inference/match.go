package inference

import (
	"strings"

	"infragraph/internal/domain"
)

// Match is one inferred forward relationship. The synthesizer derives the
// mirror edge from it.
type Match struct {
	SourceID   string
	SourceType domain.EntityType
	TargetID   string
	TargetType domain.EntityType
	Relation   domain.RelationType
	Method     domain.MatchingMethod
	// Key is the value both sides agreed on: a domain or a host:port
	Key string
	// Attributes are extra provenance fields copied into edge metadata
	Attributes map[string]any
}

// Options tunes the matchers
type Options struct {
	// LoopbackHosts are backend addresses that never yield a cross-host edge
	LoopbackHosts []string
	// DefaultProtocol is recorded when a proxy declares no backend protocol
	DefaultProtocol string
	// Verbose logs every individual match
	Verbose bool
}

// DefaultOptions returns the matcher defaults
func DefaultOptions() Options {
	return Options{
		LoopbackHosts:   []string{"localhost", "127.0.0.1", "::1"},
		DefaultProtocol: "http",
	}
}

func (o Options) isLoopback(host string) bool {
	for _, lb := range o.LoopbackHosts {
		if strings.EqualFold(host, lb) {
			return true
		}
	}
	return false
}

func (o Options) protocol(proxy domain.Document) string {
	if p := proxy.LookupString("backend_protocol"); p != "" {
		return p
	}
	if o.DefaultProtocol != "" {
		return o.DefaultProtocol
	}
	return "http"
}
