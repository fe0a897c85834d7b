package validate

import (
	"fmt"
	"strings"
	"testing"

	"infragraph/internal/domain"
)

const ts = "2024-03-01T12:00:00Z"

func docs() []domain.Document {
	return []domain.Document{
		domain.NewDocument("d1", domain.EntityTypeDNSRecord, nil),
		domain.NewDocument("p1", domain.EntityTypeProxyHost, nil),
		domain.NewDocument("svc1", domain.EntityTypeService, nil),
		domain.NewDocument("server_a", domain.EntityTypePhysicalServer, nil),
		domain.NewDocument("server_b", domain.EntityTypePhysicalServer, nil),
	}
}

func rel(source, sourceType, relType, target, targetType, createdAt string) domain.RawRelationship {
	return domain.RawRelationship{
		"id":          fmt.Sprintf("%s_%s_%s", source, strings.ToLower(relType), target),
		"type":        relType,
		"source_id":   source,
		"source_type": sourceType,
		"target_id":   target,
		"target_type": targetType,
		"metadata":    map[string]any{"created_at": createdAt},
	}
}

func routesPair() []domain.RawRelationship {
	return []domain.RawRelationship{
		rel("d1", "dns_record", "ROUTES_TO", "p1", "proxy_host", ts),
		rel("p1", "proxy_host", "ROUTES_FROM", "d1", "dns_record", ts),
	}
}

func assertContains(t *testing.T, items []string, substr string) {
	t.Helper()
	for _, item := range items {
		if strings.Contains(item, substr) {
			return
		}
	}
	t.Errorf("expected an entry containing %q, got %v", substr, items)
}

func TestValidGraph(t *testing.T) {
	rels := append(routesPair(),
		rel("p1", "proxy_host", "PROXIES", "svc1", "service", ts),
		rel("svc1", "service", "PROXIED_BY", "p1", "proxy_host", ts),
	)

	result := Validate(docs(), rels)

	if !result.Valid {
		t.Fatalf("expected valid graph, got errors %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
	if result.Stats.BidirectionalPairs != 2 {
		t.Errorf("expected 2 bidirectional pairs, got %d", result.Stats.BidirectionalPairs)
	}
	if result.Stats.ForType(domain.RelationProxies) != 1 {
		t.Errorf("expected 1 PROXIES edge, got %d", result.Stats.ForType(domain.RelationProxies))
	}
}

func TestMissingMirror(t *testing.T) {
	rels := []domain.RawRelationship{rel("d1", "dns_record", "ROUTES_TO", "p1", "proxy_host", ts)}

	result := Validate(docs(), rels)

	if result.Valid {
		t.Fatal("expected validation to fail")
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected exactly one error, got %v", result.Errors)
	}
	want := "d1_routes_to_p1: Missing bidirectional pair. Expected reverse relationship: p1 -ROUTES_FROM-> d1"
	if result.Errors[0] != want {
		t.Errorf("unexpected error:\n got %s\nwant %s", result.Errors[0], want)
	}
	if result.Checks.Bidirectional {
		t.Error("expected bidirectional check to fail")
	}
}

func TestMissingSource(t *testing.T) {
	rels := []domain.RawRelationship{
		rel("ghost", "dns_record", "ROUTES_TO", "p1", "proxy_host", ts),
		rel("p1", "proxy_host", "ROUTES_FROM", "ghost", "dns_record", ts),
	}

	result := Validate(docs(), rels)

	if result.Valid {
		t.Fatal("expected validation to fail")
	}
	assertContains(t, result.Errors, "Source entity 'ghost' does not exist in documents")
	assertContains(t, result.Errors, "Target entity 'ghost' does not exist in documents")
	if len(result.OrphanedSources) != 1 || result.OrphanedSources[0] != "ghost" {
		t.Errorf("expected ghost under orphaned sources, got %v", result.OrphanedSources)
	}
	if len(result.OrphanedTargets) != 1 {
		t.Errorf("expected ghost under orphaned targets, got %v", result.OrphanedTargets)
	}
	assertContains(t, result.Warnings, "Found 1 orphaned source references: ghost")
	if result.Checks.Orphans || result.Checks.References {
		t.Errorf("expected reference and orphan checks to fail, got %+v", result.Checks)
	}
}

func TestTypeMismatch(t *testing.T) {
	rels := []domain.RawRelationship{
		rel("d1", "container", "ROUTES_TO", "p1", "proxy_host", ts),
		rel("p1", "proxy_host", "ROUTES_FROM", "d1", "container", ts),
	}

	result := Validate(docs(), rels)

	assertContains(t, result.Errors, "Source type mismatch. Relationship says 'container', document type is 'dns_record'")
	assertContains(t, result.Errors, "Target type mismatch. Relationship says 'container', document type is 'dns_record'")
}

func TestMirrorTimestampMismatch(t *testing.T) {
	rels := []domain.RawRelationship{
		rel("d1", "dns_record", "ROUTES_TO", "p1", "proxy_host", ts),
		rel("p1", "proxy_host", "ROUTES_FROM", "d1", "dns_record", "2024-03-02T12:00:00Z"),
	}

	result := Validate(docs(), rels)

	if !result.Valid {
		t.Fatalf("expected timestamp mismatch to be advisory, got errors %v", result.Errors)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected exactly one warning, got %v", result.Warnings)
	}
	assertContains(t, result.Warnings, "mismatched created_at timestamps")
}

func TestSymmetricType(t *testing.T) {
	t.Run("paired", func(t *testing.T) {
		rels := []domain.RawRelationship{
			rel("server_a", "physical_server", "CONNECTS_TO", "server_b", "physical_server", ts),
			rel("server_b", "physical_server", "CONNECTS_TO", "server_a", "physical_server", ts),
		}
		result := Validate(docs(), rels)
		if !result.Valid {
			t.Errorf("expected valid, got %v", result.Errors)
		}
		if result.Stats.BidirectionalPairs != 1 {
			t.Errorf("expected 1 pair, got %d", result.Stats.BidirectionalPairs)
		}
	})

	t.Run("one direction", func(t *testing.T) {
		rels := []domain.RawRelationship{
			rel("server_a", "physical_server", "CONNECTS_TO", "server_b", "physical_server", ts),
		}
		result := Validate(docs(), rels)
		assertContains(t, result.Errors, "Expected reverse relationship: server_b -CONNECTS_TO-> server_a")
	})
}

func TestUnknownTypeIsWarning(t *testing.T) {
	rels := []domain.RawRelationship{rel("server_a", "physical_server", "BACKS_UP", "server_b", "physical_server", ts)}

	result := Validate(docs(), rels)

	if !result.Valid {
		t.Fatalf("expected unknown type to be advisory, got %v", result.Errors)
	}
	assertContains(t, result.Warnings, "Relationship type 'BACKS_UP' is not recognized")
}

func TestStructuralErrors(t *testing.T) {
	tests := []struct {
		name string
		rel  domain.RawRelationship
		want string
	}{
		{
			name: "missing fields",
			rel:  domain.RawRelationship{"type": "USES"},
			want: "relationship[0]: Missing required field 'id'",
		},
		{
			name: "non-string id",
			rel: domain.RawRelationship{
				"id": 7, "type": "USES", "source_id": "svc1", "source_type": "service",
				"target_id": "p1", "target_type": "proxy_host", "metadata": map[string]any{"created_at": ts},
			},
			want: "Field 'id' must be string",
		},
		{
			name: "metadata not an object",
			rel:  withField(rel("svc1", "service", "USES", "p1", "proxy_host", ts), "metadata", "x"),
			want: "Field 'metadata' must be object",
		},
		{
			name: "missing created_at",
			rel:  withField(rel("svc1", "service", "USES", "p1", "proxy_host", ts), "metadata", map[string]any{}),
			want: "Metadata missing required field 'created_at'",
		},
		{
			name: "bad timestamp",
			rel:  rel("svc1", "service", "USES", "p1", "proxy_host", "yesterday"),
			want: "metadata.created_at is not a valid ISO 8601 timestamp",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(docs(), []domain.RawRelationship{tt.rel})
			if result.Valid {
				t.Error("expected validation to fail")
			}
			if result.Checks.Structure {
				t.Error("expected structure check to fail")
			}
			assertContains(t, result.Errors, tt.want)
		})
	}
}

func TestIDPrefixWarning(t *testing.T) {
	rels := routesPair()
	rels[0]["id"] = "routing_1"

	result := Validate(docs(), rels)

	if !result.Valid {
		t.Fatalf("expected id prefix to be advisory, got %v", result.Errors)
	}
	assertContains(t, result.Warnings, "routing_1: Relationship ID should start with source_id. Expected pattern: 'd1_...'")
}

func TestDuplicateDocumentsFirstWins(t *testing.T) {
	documents := append(docs(), domain.NewDocument("d1", domain.EntityTypeContainer, nil))

	result := Validate(documents, routesPair())

	if !result.Valid {
		t.Errorf("expected first d1 document to be used, got %v", result.Errors)
	}
	if result.Stats.TotalDocuments != 5 {
		t.Errorf("expected 5 distinct documents, got %d", result.Stats.TotalDocuments)
	}
}

func TestReport(t *testing.T) {
	t.Run("passing", func(t *testing.T) {
		report := Validate(docs(), routesPair()).Report()
		for _, want := range []string{"Relationship Validation Report", "Total relationships: 2", "ROUTES_TO: 1", "All relationship validations passed"} {
			if !strings.Contains(report, want) {
				t.Errorf("expected report to contain %q:\n%s", want, report)
			}
		}
	})

	t.Run("truncates long sections", func(t *testing.T) {
		var rels []domain.RawRelationship
		for i := 0; i < 5; i++ {
			rels = append(rels, rel("d1", "dns_record", "USES", fmt.Sprintf("x%d", i), "service", ts))
		}
		result := New(Options{ReportLimit: 2}).Run(docs(), rels)
		report := result.Report()

		if !strings.Contains(report, fmt.Sprintf("Found %d ERROR(S):", len(result.Errors))) {
			t.Errorf("expected error header:\n%s", report)
		}
		if !strings.Contains(report, fmt.Sprintf("... and %d more errors", len(result.Errors)-2)) {
			t.Errorf("expected truncation line:\n%s", report)
		}
	})
}

func withField(r domain.RawRelationship, key string, value any) domain.RawRelationship {
	r[key] = value
	return r
}

func TestDuplicateMirror(t *testing.T) {
	t.Run("second mirror with another id", func(t *testing.T) {
		legacy := rel("p1", "proxy_host", "ROUTES_FROM", "d1", "dns_record", ts)
		legacy["id"] = "p1_routes_from_d1_legacy"
		rels := append(routesPair(), legacy)

		result := Validate(docs(), rels)

		if result.Valid {
			t.Fatal("expected validation to fail")
		}
		if result.Checks.Bidirectional {
			t.Error("expected bidirectional check to fail")
		}
		if len(result.Errors) != 1 {
			t.Fatalf("expected exactly one error, got %v", result.Errors)
		}
		want := "p1 -ROUTES_FROM-> d1: Expected exactly one relationship, found 2 (p1_routes_from_d1, p1_routes_from_d1_legacy)"
		if result.Errors[0] != want {
			t.Errorf("unexpected error:\n got %s\nwant %s", result.Errors[0], want)
		}
	})

	t.Run("forward edge stored twice", func(t *testing.T) {
		rels := append(routesPair(), rel("d1", "dns_record", "ROUTES_TO", "p1", "proxy_host", ts))

		result := Validate(docs(), rels)

		if result.Checks.Bidirectional {
			t.Error("expected bidirectional check to fail")
		}
		assertContains(t, result.Errors, "d1 -ROUTES_TO-> p1: Expected exactly one relationship, found 2")
		assertContains(t, result.Warnings, "Duplicate relationship id")
	})

	t.Run("symmetric pair stays valid", func(t *testing.T) {
		rels := []domain.RawRelationship{
			rel("server_a", "physical_server", "CONNECTS_TO", "server_b", "physical_server", ts),
			rel("server_b", "physical_server", "CONNECTS_TO", "server_a", "physical_server", ts),
		}
		if result := Validate(docs(), rels); !result.Valid {
			t.Errorf("expected valid, got %v", result.Errors)
		}
	})
}

func TestMetadataCoercion(t *testing.T) {
	pair := routesPair()
	pair[0]["metadata"] = map[any]any{"created_at": ts}

	result := Validate(docs(), pair)

	if !result.Valid {
		t.Fatalf("expected map[any]any metadata to be accepted, got %v", result.Errors)
	}
	if len(result.Warnings) != 0 {
		t.Errorf("expected no warnings, got %v", result.Warnings)
	}
}
