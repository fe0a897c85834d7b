package domain

// RelationshipSet is an ordered edge list indexed by edge id. Edges loaded
// from a store are kept verbatim, including ones without an id; new edges
// are only inserted when their id is not already present.
type RelationshipSet struct {
	items []RawRelationship
	byID  map[string]int
}

// NewRelationshipSet creates a set seeded with existing edges
func NewRelationshipSet(existing []RawRelationship) *RelationshipSet {
	s := &RelationshipSet{
		items: make([]RawRelationship, 0, len(existing)),
		byID:  make(map[string]int, len(existing)),
	}
	for _, rel := range existing {
		s.items = append(s.items, rel)
		if id := rel.ID(); id != "" {
			if _, seen := s.byID[id]; !seen {
				s.byID[id] = len(s.items) - 1
			}
		}
	}
	return s
}

// Get returns the first edge with the given id
func (s *RelationshipSet) Get(id string) (RawRelationship, bool) {
	i, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	return s.items[i], true
}

// Has reports whether an edge with the given id exists
func (s *RelationshipSet) Has(id string) bool {
	_, ok := s.byID[id]
	return ok
}

// Upsert inserts rel unless an edge with the same id already exists.
// Existing edges win so their created_at stays stable across runs.
// Returns true when rel was inserted.
func (s *RelationshipSet) Upsert(rel *Relationship) bool {
	if rel.ID == "" {
		rel.ID = RelationshipID(rel.SourceID, rel.Type, rel.TargetID)
	}
	if s.Has(rel.ID) {
		return false
	}
	s.items = append(s.items, rel.Raw())
	s.byID[rel.ID] = len(s.items) - 1
	return true
}

// Len returns the number of edges
func (s *RelationshipSet) Len() int {
	return len(s.items)
}

// Items returns the edges in insertion order
func (s *RelationshipSet) Items() []RawRelationship {
	return s.items
}
