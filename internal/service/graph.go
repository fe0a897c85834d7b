package service

import (
	"context"
	"sort"

	"infragraph/internal/domain"
	"infragraph/internal/repository"
)

// RelationshipFilter narrows a relationship listing. Empty fields match all.
type RelationshipFilter struct {
	Type     string
	SourceID string
	TargetID string
}

func (f RelationshipFilter) matches(rel domain.RawRelationship) bool {
	if f.Type != "" && string(rel.Type()) != f.Type {
		return false
	}
	if f.SourceID != "" && rel.SourceID() != f.SourceID {
		return false
	}
	if f.TargetID != "" && rel.TargetID() != f.TargetID {
		return false
	}
	return true
}

// Summary describes the store contents
type Summary struct {
	Store              string         `json:"store"`
	Documents          int            `json:"documents"`
	DocumentTypes      map[string]int `json:"document_types"`
	Relationships      int            `json:"relationships"`
	RelationshipTypes  map[string]int `json:"relationship_types"`
	LastPostProcessing interface{}    `json:"last_post_processing,omitempty"`
}

// GraphService provides read-only queries over the store
type GraphService struct {
	repo repository.Repository
}

// NewGraphService creates a new graph service
func NewGraphService(repo repository.Repository) *GraphService {
	return &GraphService{repo: repo}
}

// ListRelationships returns stored relationships matching filter, in store order
func (s *GraphService) ListRelationships(ctx context.Context, filter RelationshipFilter) ([]domain.RawRelationship, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]domain.RawRelationship, 0)
	for _, rel := range snap.Relationships {
		if filter.matches(rel) {
			out = append(out, rel)
		}
	}
	return out, nil
}

// Summary counts documents and relationships by type
func (s *GraphService) Summary(ctx context.Context) (*Summary, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, err
	}

	sum := &Summary{
		Store:              s.repo.Location(),
		Documents:          len(snap.Documents),
		DocumentTypes:      make(map[string]int),
		Relationships:      len(snap.Relationships),
		RelationshipTypes:  make(map[string]int),
		LastPostProcessing: snap.Metadata[domain.MetaPostProcessing],
	}
	for _, doc := range snap.Documents {
		sum.DocumentTypes[string(doc.Type)]++
	}
	for _, rel := range snap.Relationships {
		sum.RelationshipTypes[string(rel.Type())]++
	}
	return sum, nil
}

// RelationTypes returns the known relation types in a stable order
func RelationTypes() []string {
	types := make([]string, 0)
	for _, t := range domain.KnownRelationTypes() {
		types = append(types, string(t))
	}
	sort.Strings(types)
	return types
}
