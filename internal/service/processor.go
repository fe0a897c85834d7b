package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"infragraph/internal/domain"
	"infragraph/internal/inference"
	"infragraph/internal/metrics"
	"infragraph/internal/repository"
)

// PostProcessor infers missing relationships and writes them to the store
type PostProcessor struct {
	repo     repository.Repository
	opts     inference.Options
	eventBus *EventBus

	now   func() time.Time
	runID func() string

	mu   sync.Mutex
	last *Report
}

// NewPostProcessor creates a post-processor over repo
func NewPostProcessor(repo repository.Repository, opts inference.Options, eventBus *EventBus) *PostProcessor {
	return &PostProcessor{
		repo:     repo,
		opts:     opts,
		eventBus: eventBus,
		now:      time.Now,
		runID:    uuid.NewString,
	}
}

// Process runs one batch pass over the store. Concurrent calls are
// serialized. Nothing is written unless the store loaded successfully.
func (p *PostProcessor) Process(ctx context.Context) (*Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	report := &Report{
		RunID:     p.runID(),
		Store:     p.repo.Location(),
		StartedAt: p.now(),
	}
	log.Printf("Starting relationship post-processing (run %s)", report.RunID)
	p.eventBus.Publish(Event{
		Type:    EventProcessStarted,
		Payload: map[string]string{"run_id": report.RunID, "store": report.Store},
	})

	if err := p.run(ctx, report); err != nil {
		metrics.RunsTotal.WithLabelValues(metrics.ResultFailure).Inc()
		p.eventBus.Publish(Event{
			Type:    EventProcessFailed,
			Payload: map[string]string{"run_id": report.RunID, "error": err.Error()},
		})
		return nil, err
	}

	metrics.RunsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.RunDuration.Observe(report.Duration().Seconds())
	metrics.StoreRelationships.Set(float64(report.TotalRelationships))

	for _, line := range strings.Split(report.Text(), "\n") {
		log.Print(line)
	}
	log.Printf("Relationship post-processing completed: %d relationships created", report.RelationshipsCreated)

	p.last = report
	p.eventBus.Publish(Event{Type: EventProcessCompleted, Payload: report})
	return report, nil
}

func (p *PostProcessor) run(ctx context.Context, report *Report) error {
	snap, err := p.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load store: %w", err)
	}
	log.Printf("Loaded %d documents and %d existing relationships from %s",
		len(snap.Documents), len(snap.Relationships), p.repo.Location())

	catalog := inference.NewCatalog(snap.Documents)
	report.Documents = catalog.Len()
	report.DuplicateDocuments = catalog.Duplicates
	report.ExistingRelationships = len(snap.Relationships)
	if catalog.Duplicates > 0 {
		log.Printf("Ignored %d duplicate documents (first occurrence kept)", catalog.Duplicates)
	}

	dns := inference.MatchDomains(catalog, p.opts)
	report.DNSProxy = MatchStats{
		Matched:   dns.Matched,
		Unmatched: len(dns.Unmatched),
		Skipped:   len(dns.MissingDomain),
	}
	metrics.ObserveMatches(metrics.KindDNSProxy, dns.Matched, len(dns.Unmatched))

	backends := inference.ResolveBackends(catalog, p.opts)
	report.ProxyService = MatchStats{
		Matched:   backends.Matched,
		Unmatched: len(backends.Unmatched),
		Skipped:   len(backends.Incomplete),
		Loopback:  len(backends.Loopback),
	}
	metrics.ObserveMatches(metrics.KindProxyService, backends.Matched, len(backends.Unmatched))

	matches := make([]inference.Match, 0, len(dns.Matches)+len(backends.Matches))
	matches = append(matches, dns.Matches...)
	matches = append(matches, backends.Matches...)

	set := domain.NewRelationshipSet(snap.Relationships)
	synth := &inference.Synthesizer{Now: p.now}
	result := synth.Apply(set, matches...)

	report.RelationshipsDerived = result.Derived
	report.RelationshipsCreated = result.Created
	report.CreatedByType = make(map[string]int, len(result.CreatedByType))
	for t, n := range result.CreatedByType {
		report.CreatedByType[string(t)] = n
		metrics.RelationshipsCreatedTotal.WithLabelValues(string(t)).Add(float64(n))
	}
	if result.Repaired > 0 {
		log.Printf("Completed %d half-stored relationship pairs", result.Repaired)
	}

	snap.Relationships = set.Items()
	report.TotalRelationships = len(snap.Relationships)
	report.FinishedAt = p.now()

	snap.RecordPostProcessing(domain.PostProcessingSummary{
		RunID:               report.RunID,
		ProcessedAt:         report.FinishedAt,
		RelationshipsAdded:  report.RelationshipsCreated,
		DNSProxyMatched:     report.DNSProxy.Matched,
		ProxyServiceMatched: report.ProxyService.Matched,
	})

	if err := p.repo.Save(ctx, snap); err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}
	log.Printf("Saved %d total relationships to %s", report.TotalRelationships, p.repo.Location())
	return nil
}

// LastReport returns the report of the most recent successful run
func (p *PostProcessor) LastReport() *Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.last
}
