package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"infragraph/internal/domain"
	"infragraph/internal/inference"
	"infragraph/internal/repository"
	"infragraph/internal/validate"
)

// memRepo is an in-memory repository.Repository
type memRepo struct {
	snap    *domain.Snapshot
	loadErr error
	saveErr error
	saves   int
}

func (m *memRepo) Load(ctx context.Context) (*domain.Snapshot, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	// Hand out a copy so callers cannot mutate the stored snapshot in place
	cp := *m.snap
	cp.Relationships = append([]domain.RawRelationship(nil), m.snap.Relationships...)
	cp.Metadata = make(map[string]any, len(m.snap.Metadata))
	for k, v := range m.snap.Metadata {
		cp.Metadata[k] = v
	}
	return &cp, nil
}

func (m *memRepo) Save(ctx context.Context, snap *domain.Snapshot) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.snap = snap
	return nil
}

func (m *memRepo) Location() string { return "memory" }
func (m *memRepo) Close() error     { return nil }

var clock = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func fleet() *domain.Snapshot {
	snap := domain.NewSnapshot()
	snap.Documents = []domain.Document{
		domain.NewDocument("d1", domain.EntityTypeDNSRecord, map[string]any{"domain": "app.example.com"}),
		domain.NewDocument("d2", domain.EntityTypeDNSRecord, map[string]any{"domain": "nowhere.example.com"}),
		domain.NewDocument("p1", domain.EntityTypeProxyHost, map[string]any{
			"domain":       "app.example.com",
			"backend_host": "10.0.0.5",
			"backend_port": 8080,
		}),
		domain.NewDocument("p2", domain.EntityTypeProxyHost, map[string]any{
			"backend_host": "127.0.0.1",
			"backend_port": 9000,
		}),
		domain.NewDocument("container_srvA_web", domain.EntityTypeContainer, map[string]any{
			"part_of_service": "svc1",
			"ports":           []any{map[string]any{"host_port": 8080}},
		}),
		domain.NewDocument("server_srvA", domain.EntityTypePhysicalServer, map[string]any{"primary_ip": "10.0.0.5"}),
		domain.NewDocument("svc1", domain.EntityTypeService, nil),
	}
	return snap
}

func newTestProcessor(repo repository.Repository, bus *EventBus) *PostProcessor {
	p := NewPostProcessor(repo, inference.DefaultOptions(), bus)
	p.now = func() time.Time { return clock }
	p.runID = func() string { return "run-1" }
	return p
}

func TestPostProcessorProcess(t *testing.T) {
	repo := &memRepo{snap: fleet()}
	bus := NewEventBus()
	events := make(chan Event, 10)
	bus.Subscribe(events)

	report, err := newTestProcessor(repo, bus).Process(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if report.DNSProxy.Matched != 1 || report.DNSProxy.Unmatched != 1 {
		t.Errorf("unexpected DNS stats: %+v", report.DNSProxy)
	}
	if report.ProxyService.Matched != 1 || report.ProxyService.Loopback != 1 {
		t.Errorf("unexpected proxy stats: %+v", report.ProxyService)
	}
	if report.RelationshipsCreated != 4 || report.TotalRelationships != 4 {
		t.Errorf("expected 4 relationships created, got %+v", report)
	}
	if repo.saves != 1 {
		t.Errorf("expected one save, got %d", repo.saves)
	}

	summary, ok := repo.snap.Metadata[domain.MetaPostProcessing].(map[string]any)
	if !ok {
		t.Fatalf("expected post-processing summary in metadata, got %v", repo.snap.Metadata)
	}
	if summary["relationships_added"] != 4 || summary["run_id"] != "run-1" {
		t.Errorf("unexpected summary: %v", summary)
	}
	if repo.snap.Metadata[domain.MetaExportTimestamp] != domain.FormatTimestamp(clock) {
		t.Errorf("expected export timestamp to be refreshed")
	}

	first := <-events
	if first.Type != EventProcessStarted {
		t.Errorf("expected start event, got %s", first.Type)
	}
	if last := <-events; last.Type != EventProcessCompleted {
		t.Errorf("expected completion event, got %s", last.Type)
	}

	result := validate.Validate(repo.snap.Documents, repo.snap.Relationships)
	if !result.Valid {
		t.Errorf("expected synthesized graph to validate, got %v", result.Errors)
	}
}

func TestPostProcessorIdempotent(t *testing.T) {
	repo := &memRepo{snap: fleet()}
	p := newTestProcessor(repo, nil)

	first, err := p.Process(context.Background())
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	second, err := p.Process(context.Background())
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if second.RelationshipsCreated != 0 {
		t.Errorf("expected no new relationships, got %d", second.RelationshipsCreated)
	}
	if second.DNSProxy != first.DNSProxy || second.ProxyService != first.ProxyService {
		t.Errorf("expected identical match counts, got %+v vs %+v", first, second)
	}
	if len(repo.snap.Relationships) != 4 {
		t.Errorf("expected 4 relationships after rerun, got %d", len(repo.snap.Relationships))
	}
	if p.LastReport() != second {
		t.Error("expected last report to be the second run")
	}
}

func TestPostProcessorLoadFailure(t *testing.T) {
	repo := &memRepo{loadErr: repository.ErrStoreNotFound}
	bus := NewEventBus()
	events := make(chan Event, 10)
	bus.Subscribe(events)

	_, err := newTestProcessor(repo, bus).Process(context.Background())
	if !errors.Is(err, repository.ErrStoreNotFound) {
		t.Fatalf("expected ErrStoreNotFound, got %v", err)
	}
	if repo.saves != 0 {
		t.Error("expected no write after load failure")
	}

	<-events
	if ev := <-events; ev.Type != EventProcessFailed {
		t.Errorf("expected failure event, got %s", ev.Type)
	}
}

func TestPostProcessorSaveFailure(t *testing.T) {
	repo := &memRepo{snap: fleet(), saveErr: errors.New("disk full")}

	_, err := newTestProcessor(repo, nil).Process(context.Background())
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected save error, got %v", err)
	}
}

func TestReportText(t *testing.T) {
	report := &Report{
		RunID:                "run-1",
		Store:                "memory",
		DNSProxy:             MatchStats{Matched: 2, Unmatched: 1},
		ProxyService:         MatchStats{Matched: 1, Loopback: 1},
		RelationshipsCreated: 6,
		CreatedByType:        map[string]int{"ROUTES_TO": 2, "ROUTES_FROM": 2, "PROXIES": 1, "PROXIED_BY": 1},
	}

	text := report.Text()
	for _, want := range []string{"DNS -> Proxy Matching:", "  Matched: 2", "Loopback backends: 1", "Total Relationships Created: 6", "  PROXIES: 1"} {
		if !strings.Contains(text, want) {
			t.Errorf("expected %q in report:\n%s", want, text)
		}
	}
}

func TestValidationService(t *testing.T) {
	snap := fleet()
	snap.Relationships = []domain.RawRelationship{
		{
			"id": "d1_routes_to_p1", "type": "ROUTES_TO",
			"source_id": "d1", "source_type": "dns_record",
			"target_id": "p1", "target_type": "proxy_host",
			"metadata": map[string]any{"created_at": "2024-03-01T12:00:00Z"},
		},
	}
	svc := NewValidationService(&memRepo{snap: snap}, validate.DefaultOptions(), nil)

	result, err := svc.Validate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Valid || len(result.Errors) != 1 {
		t.Errorf("expected one missing-mirror error, got %v", result.Errors)
	}
	if svc.LastResult() != result {
		t.Error("expected last result to be recorded")
	}
}

func TestGraphService(t *testing.T) {
	repo := &memRepo{snap: fleet()}
	if _, err := newTestProcessor(repo, nil).Process(context.Background()); err != nil {
		t.Fatalf("process failed: %v", err)
	}
	svc := NewGraphService(repo)

	tests := []struct {
		name   string
		filter RelationshipFilter
		want   int
	}{
		{"all", RelationshipFilter{}, 4},
		{"by type", RelationshipFilter{Type: "PROXIES"}, 1},
		{"by source", RelationshipFilter{SourceID: "p1"}, 2},
		{"by target and type", RelationshipFilter{TargetID: "d1", Type: "ROUTES_FROM"}, 1},
		{"no match", RelationshipFilter{SourceID: "ghost"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rels, err := svc.ListRelationships(context.Background(), tt.filter)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if len(rels) != tt.want {
				t.Errorf("expected %d relationships, got %d", tt.want, len(rels))
			}
		})
	}

	sum, err := svc.Summary(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.DocumentTypes["proxy_host"] != 2 || sum.RelationshipTypes["PROXIED_BY"] != 1 {
		t.Errorf("unexpected summary: %+v", sum)
	}
	if sum.LastPostProcessing == nil {
		t.Error("expected last post-processing block")
	}
}
