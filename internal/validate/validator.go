// Package validate checks a relationship graph for structural and
// referential consistency. It never modifies the graph.
package validate

import (
	"fmt"
	"sort"
	"strings"

	"infragraph/internal/domain"
)

// requiredFields must be present on every relationship
var requiredFields = []string{"id", "type", "source_id", "source_type", "target_id", "target_type", "metadata"}

// stringFields must hold strings when present
var stringFields = []string{"id", "type", "source_id", "source_type", "target_id", "target_type"}

// Options tunes result reporting
type Options struct {
	// ReportLimit caps errors and warnings printed per section
	ReportLimit int
	// OrphanSample caps the ids listed in an orphan warning
	OrphanSample int
}

// DefaultOptions returns the reporting defaults
func DefaultOptions() Options {
	return Options{ReportLimit: 20, OrphanSample: 5}
}

// Checks records the outcome of each independent check
type Checks struct {
	Structure     bool `json:"structure"`
	Bidirectional bool `json:"bidirectional"`
	References    bool `json:"references"`
	Orphans       bool `json:"orphans"`
}

// Result is the outcome of one validation pass
type Result struct {
	Valid    bool     `json:"valid"`
	Checks   Checks   `json:"checks"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`

	OrphanedSources []string   `json:"orphaned_sources"`
	OrphanedTargets []string   `json:"orphaned_targets"`
	Stats           Statistics `json:"statistics"`

	opts Options
}

// pairKey identifies an edge by endpoints and type
type pairKey struct {
	source, target string
	relType        domain.RelationType
}

// Validator runs every check over one graph
type Validator struct {
	opts Options

	documents map[string]domain.Document
	rels      []domain.RawRelationship
	index     map[pairKey][]domain.RawRelationship

	result *Result
}

// New creates a validator
func New(opts Options) *Validator {
	if opts.ReportLimit <= 0 {
		opts.ReportLimit = DefaultOptions().ReportLimit
	}
	if opts.OrphanSample <= 0 {
		opts.OrphanSample = DefaultOptions().OrphanSample
	}
	return &Validator{opts: opts}
}

// Validate checks rels against docs with default options
func Validate(docs []domain.Document, rels []domain.RawRelationship) *Result {
	return New(DefaultOptions()).Run(docs, rels)
}

// Run executes all checks. No check short-circuits another; the graph is
// valid only when every check passes and no error was recorded.
func (v *Validator) Run(docs []domain.Document, rels []domain.RawRelationship) *Result {
	v.documents = make(map[string]domain.Document, len(docs))
	for _, doc := range docs {
		if doc.ID == "" {
			continue
		}
		if _, seen := v.documents[doc.ID]; !seen {
			v.documents[doc.ID] = doc
		}
	}
	v.rels = rels
	v.result = &Result{
		Errors:   make([]string, 0),
		Warnings: make([]string, 0),
		opts:     v.opts,
	}

	v.buildIndex()

	v.result.Checks.Structure = v.checkStructure()
	v.result.Checks.Bidirectional = v.checkBidirectional()
	v.result.Checks.References = v.checkReferences()
	v.result.Checks.Orphans = v.checkOrphans()
	v.result.Stats = v.statistics()

	c := v.result.Checks
	v.result.Valid = c.Structure && c.Bidirectional && c.References && c.Orphans && len(v.result.Errors) == 0
	return v.result
}

func (v *Validator) errorf(format string, args ...any) {
	v.result.Errors = append(v.result.Errors, fmt.Sprintf(format, args...))
}

func (v *Validator) warnf(format string, args ...any) {
	v.result.Warnings = append(v.result.Warnings, fmt.Sprintf(format, args...))
}

// buildIndex maps (source, target, type) to every edge carrying it, in
// store order
func (v *Validator) buildIndex() {
	v.index = make(map[pairKey][]domain.RawRelationship, len(v.rels))
	for _, rel := range v.rels {
		key, ok := keyOf(rel)
		if !ok {
			continue
		}
		v.index[key] = append(v.index[key], rel)
	}
}

func keyOf(rel domain.RawRelationship) (pairKey, bool) {
	key := pairKey{source: rel.SourceID(), target: rel.TargetID(), relType: rel.Type()}
	return key, key.source != "" && key.target != "" && key.relType != ""
}

func (v *Validator) checkStructure() bool {
	ok := true
	firstByID := make(map[string]int)

	for i, rel := range v.rels {
		label := rel.Label(i)

		for _, field := range requiredFields {
			if _, present := rel[field]; !present {
				v.errorf("%s: Missing required field '%s'", label, field)
				ok = false
			}
		}
		for _, field := range stringFields {
			if raw, present := rel[field]; present {
				if _, isString := raw.(string); !isString {
					v.errorf("%s: Field '%s' must be string", label, field)
					ok = false
				}
			}
		}

		if relType, isString := rel.StringField("type"); isString && !domain.RelationType(relType).Known() {
			v.warnf("%s: Relationship type '%s' is not recognized", label, relType)
		}

		if !v.checkCreatedAt(rel, label) {
			ok = false
		}

		id, hasID := rel.StringField("id")
		sourceID, hasSource := rel.StringField("source_id")
		if _, hasTarget := rel.StringField("target_id"); hasID && hasSource && hasTarget {
			prefix := sourceID + "_"
			if !strings.HasPrefix(id, prefix) {
				v.warnf("%s: Relationship ID should start with source_id. Expected pattern: '%s...'", label, prefix)
			}
		}

		if hasID && id != "" {
			if first, dup := firstByID[id]; dup {
				v.warnf("%s: Duplicate relationship id (first seen at relationship[%d])", label, first)
			} else {
				firstByID[id] = i
			}
		}
	}

	return ok
}

func (v *Validator) checkCreatedAt(rel domain.RawRelationship, label string) bool {
	if _, present := rel["metadata"]; !present {
		return true
	}
	meta := rel.Metadata()
	if meta == nil {
		v.errorf("%s: Field 'metadata' must be object", label)
		return false
	}

	createdAt, present := meta[domain.MetaCreatedAt]
	if !present {
		v.errorf("%s: Metadata missing required field 'created_at'", label)
		return false
	}
	ts, isString := createdAt.(string)
	if !isString {
		v.errorf("%s: metadata.created_at must be string", label)
		return false
	}
	if _, err := domain.ParseTimestamp(ts); err != nil {
		v.errorf("%s: metadata.created_at is not a valid ISO 8601 timestamp", label)
		return false
	}
	return true
}

// checkBidirectional confirms every edge of a paired type has exactly one
// mirror and is itself stored once. Both halves of a confirmed pair are
// marked so each pair is examined once.
func (v *Validator) checkBidirectional() bool {
	ok := true
	checked := make(map[pairKey]bool)

	for _, rel := range v.rels {
		key, valid := keyOf(rel)
		if !valid || checked[key] {
			continue
		}
		reverseType, known := key.relType.Reverse()
		if !known {
			continue
		}

		reverseKey := pairKey{source: key.target, target: key.source, relType: reverseType}
		mirrors := v.index[reverseKey]
		if len(mirrors) == 0 {
			v.errorf("%s: Missing bidirectional pair. Expected reverse relationship: %s -%s-> %s",
				labelOrUnknown(rel), key.target, reverseType, key.source)
			ok = false
			continue
		}

		checked[key] = true
		checked[reverseKey] = true

		keys := []pairKey{key}
		if reverseKey != key {
			keys = append(keys, reverseKey)
		}
		for _, k := range keys {
			if edges := v.index[k]; len(edges) > 1 {
				v.errorf("%s -%s-> %s: Expected exactly one relationship, found %d (%s)",
					k.source, k.relType, k.target, len(edges), strings.Join(edgeLabels(edges), ", "))
				ok = false
			}
		}

		mirror := mirrors[len(mirrors)-1]
		if rel.CreatedAt() != mirror.CreatedAt() {
			v.warnf("%s: Bidirectional pair has mismatched created_at timestamps (%s vs %s)",
				labelOrUnknown(rel), rel.CreatedAt(), mirror.CreatedAt())
		}
	}

	return ok
}

// checkReferences confirms endpoints exist with the declared types
func (v *Validator) checkReferences() bool {
	ok := true

	for _, rel := range v.rels {
		label := labelOrUnknown(rel)
		ends := []struct {
			side     string
			id       string
			declared domain.EntityType
		}{
			{"Source", rel.SourceID(), rel.SourceType()},
			{"Target", rel.TargetID(), rel.TargetType()},
		}

		for _, end := range ends {
			if end.id == "" {
				continue
			}
			doc, exists := v.documents[end.id]
			if !exists {
				v.errorf("%s: %s entity '%s' does not exist in documents", label, end.side, end.id)
				ok = false
				continue
			}
			if end.declared != "" && doc.Type != end.declared {
				v.errorf("%s: %s type mismatch. Relationship says '%s', document type is '%s'",
					label, end.side, end.declared, doc.Type)
				ok = false
			}
		}
	}

	return ok
}

// checkOrphans collects unresolved endpoint ids per side
func (v *Validator) checkOrphans() bool {
	sources := make(map[string]bool)
	targets := make(map[string]bool)

	for _, rel := range v.rels {
		if id := rel.SourceID(); id != "" {
			if _, exists := v.documents[id]; !exists {
				sources[id] = true
			}
		}
		if id := rel.TargetID(); id != "" {
			if _, exists := v.documents[id]; !exists {
				targets[id] = true
			}
		}
	}

	v.result.OrphanedSources = sortedKeys(sources)
	v.result.OrphanedTargets = sortedKeys(targets)

	if len(sources) > 0 {
		v.warnf("Found %d orphaned source references: %s",
			len(sources), strings.Join(sample(v.result.OrphanedSources, v.opts.OrphanSample), ", "))
	}
	if len(targets) > 0 {
		v.warnf("Found %d orphaned target references: %s",
			len(targets), strings.Join(sample(v.result.OrphanedTargets, v.opts.OrphanSample), ", "))
	}

	return len(sources) == 0 && len(targets) == 0
}

func labelOrUnknown(rel domain.RawRelationship) string {
	if id := rel.ID(); id != "" {
		return id
	}
	return "unknown"
}

func edgeLabels(rels []domain.RawRelationship) []string {
	labels := make([]string, len(rels))
	for i, rel := range rels {
		labels[i] = labelOrUnknown(rel)
	}
	return labels
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func sample(ids []string, n int) []string {
	if len(ids) > n {
		return ids[:n]
	}
	return ids
}
