package inference

import (
	"time"

	"infragraph/internal/domain"
)

// SynthesisResult reports what a synthesis pass did to the relationship set
type SynthesisResult struct {
	// Derived counts every edge synthesized, including ones already stored
	Derived int
	// Created counts edges actually inserted
	Created int
	// CreatedByType breaks Created down by relation type
	CreatedByType map[domain.RelationType]int
	// Repaired counts pairs where only one direction was already stored
	Repaired int
}

// Synthesizer turns matches into forward and mirror edges
type Synthesizer struct {
	// Now supplies the run timestamp; defaults to time.Now
	Now func() time.Time
}

// NewSynthesizer creates a synthesizer using the wall clock
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{Now: time.Now}
}

// Apply upserts a forward edge and its mirror for every match. All edges of
// one call share a single timestamp. When one direction of a pair is
// already stored, the missing direction reuses its created_at so the pair
// stays timestamp-identical.
func (s *Synthesizer) Apply(set *domain.RelationshipSet, matches ...Match) SynthesisResult {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	stamp := now()

	result := SynthesisResult{CreatedByType: make(map[domain.RelationType]int)}

	for _, m := range matches {
		forward := domain.NewRelationship(m.SourceID, m.SourceType, m.TargetID, m.TargetType, m.Relation, stamp)
		forward.SetMetadata(domain.MetaMatchingMethod, string(m.Method))
		forward.SetMetadata(domain.MetaMatchedKey, m.Key)
		for k, v := range m.Attributes {
			if k == domain.MetaCreatedAt {
				continue
			}
			forward.SetMetadata(k, v)
		}

		mirror, ok := forward.Mirror()
		if !ok {
			continue
		}
		result.Derived += 2

		existingFwd, hasFwd := set.Get(forward.ID)
		existingRev, hasRev := set.Get(mirror.ID)
		switch {
		case hasFwd && hasRev:
			continue
		case hasFwd:
			reuseCreatedAt(mirror, existingFwd)
			result.Repaired++
		case hasRev:
			reuseCreatedAt(forward, existingRev)
			result.Repaired++
		}

		for _, rel := range []*domain.Relationship{forward, mirror} {
			if set.Upsert(rel) {
				result.Created++
				result.CreatedByType[rel.Type]++
			}
		}
	}

	return result
}

func reuseCreatedAt(rel *domain.Relationship, existing domain.RawRelationship) {
	if ts := existing.CreatedAt(); ts != "" {
		rel.SetMetadata(domain.MetaCreatedAt, ts)
	}
}
