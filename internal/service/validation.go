package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"infragraph/internal/metrics"
	"infragraph/internal/repository"
	"infragraph/internal/validate"
)

// ValidationService validates the persisted graph
type ValidationService struct {
	repo     repository.Repository
	opts     validate.Options
	eventBus *EventBus

	mu   sync.Mutex
	last *validate.Result
}

// NewValidationService creates a validation service
func NewValidationService(repo repository.Repository, opts validate.Options, eventBus *EventBus) *ValidationService {
	return &ValidationService{
		repo:     repo,
		opts:     opts,
		eventBus: eventBus,
	}
}

// Validate loads the store and runs every check over it
func (s *ValidationService) Validate(ctx context.Context) (*validate.Result, error) {
	snap, err := s.repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load store: %w", err)
	}

	result := validate.New(s.opts).Run(snap.Documents, snap.Relationships)
	metrics.ObserveValidation(result.Valid, len(result.Errors), len(result.Warnings))
	log.Printf("Validated %d relationships: valid=%t errors=%d warnings=%d",
		result.Stats.TotalRelationships, result.Valid, len(result.Errors), len(result.Warnings))

	s.mu.Lock()
	s.last = result
	s.mu.Unlock()

	s.eventBus.Publish(Event{
		Type: EventValidationCompleted,
		Payload: map[string]interface{}{
			"valid":    result.Valid,
			"errors":   len(result.Errors),
			"warnings": len(result.Warnings),
		},
	})
	return result, nil
}

// LastResult returns the most recent validation result
func (s *ValidationService) LastResult() *validate.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last
}
