package validate

import "infragraph/internal/domain"

// Statistics summarizes the graph that was validated
type Statistics struct {
	TotalRelationships int            `json:"total_relationships"`
	TotalDocuments     int            `json:"total_documents"`
	RelationshipTypes  map[string]int `json:"relationship_types"`
	BidirectionalPairs int            `json:"bidirectional_pairs"`
}

func (v *Validator) statistics() Statistics {
	stats := Statistics{
		TotalRelationships: len(v.rels),
		TotalDocuments:     len(v.documents),
		RelationshipTypes:  make(map[string]int),
	}

	counted := make(map[pairKey]bool)
	for _, rel := range v.rels {
		relType := string(rel.Type())
		if relType == "" {
			relType = "unknown"
		}
		stats.RelationshipTypes[relType]++

		key, ok := keyOf(rel)
		if !ok || counted[key] {
			continue
		}
		reverseType, known := key.relType.Reverse()
		if !known {
			continue
		}
		reverseKey := pairKey{source: key.target, target: key.source, relType: reverseType}
		if len(v.index[reverseKey]) > 0 {
			stats.BidirectionalPairs++
			counted[key] = true
			counted[reverseKey] = true
		}
	}

	return stats
}

// ForType returns the number of edges of one relation type
func (s Statistics) ForType(t domain.RelationType) int {
	return s.RelationshipTypes[string(t)]
}
