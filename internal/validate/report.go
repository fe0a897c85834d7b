package validate

import (
	"fmt"
	"sort"
	"strings"
)

const ruleWidth = 80

// Report renders the result as a human-readable text block
func (r *Result) Report() string {
	limit := r.opts.ReportLimit
	if limit <= 0 {
		limit = DefaultOptions().ReportLimit
	}

	var b strings.Builder
	rule := strings.Repeat("=", ruleWidth)

	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b, "Relationship Validation Report")
	fmt.Fprintln(&b, rule)

	fmt.Fprintf(&b, "\nTotal relationships: %d\n", r.Stats.TotalRelationships)
	fmt.Fprintf(&b, "Total documents: %d\n", r.Stats.TotalDocuments)
	fmt.Fprintf(&b, "Bidirectional pairs: %d\n", r.Stats.BidirectionalPairs)

	fmt.Fprintln(&b, "\nRelationship types:")
	types := make([]string, 0, len(r.Stats.RelationshipTypes))
	for t := range r.Stats.RelationshipTypes {
		types = append(types, t)
	}
	sort.Strings(types)
	for _, t := range types {
		fmt.Fprintf(&b, "  %s: %d\n", t, r.Stats.RelationshipTypes[t])
	}

	fmt.Fprintln(&b)
	fmt.Fprintln(&b, strings.Repeat("-", ruleWidth))

	if len(r.Errors) == 0 && len(r.Warnings) == 0 {
		fmt.Fprintln(&b, "\nAll relationship validations passed")
	}
	writeSection(&b, "ERROR(S)", "errors", r.Errors, limit)
	writeSection(&b, "WARNING(S)", "warnings", r.Warnings, limit)

	fmt.Fprint(&b, rule)
	return b.String()
}

func writeSection(b *strings.Builder, title, noun string, items []string, limit int) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(b, "\nFound %d %s:\n", len(items), title)
	for i, item := range items {
		if i == limit {
			fmt.Fprintf(b, "  ... and %d more %s\n", len(items)-limit, noun)
			break
		}
		fmt.Fprintf(b, "  - %s\n", item)
	}
}
