package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"path/filepath"
	"reflect"
	"testing"

	"infragraph/internal/domain"
	"infragraph/internal/repository"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}
	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

func sampleSnapshot() *domain.Snapshot {
	snap := domain.NewSnapshot()
	snap.Documents = append(snap.Documents,
		domain.NewDocument("dns_app", domain.EntityTypeDNSRecord, map[string]any{"domain": "app.example.com"}),
		domain.NewDocument("proxy_1", domain.EntityTypeProxyHost, map[string]any{"domain": "app.example.com", "forward_port": 8080}),
	)
	snap.Relationships = append(snap.Relationships,
		domain.RawRelationship{
			"id":        "dns_app_routes_to_proxy_1",
			"type":      "ROUTES_TO",
			"source_id": "dns_app",
			"target_id": "proxy_1",
			"metadata":  map[string]any{"created_at": "2024-01-01T00:00:00Z"},
		},
		domain.RawRelationship{"note": "edge without id"},
	)
	snap.Metadata["collector"] = "unraid"
	snap.Extra["schema_version"] = "2"
	return snap
}

// ============================================================================
// Helper Function Tests
// ============================================================================

func TestStringToNull(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected sql.NullString
	}{
		{"empty string", "", sql.NullString{}},
		{"non-empty string", "proxy_1", sql.NullString{String: "proxy_1", Valid: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertEqual(t, tt.expected, stringToNull(tt.input))
		})
	}
}

func TestUnmarshalObject(t *testing.T) {
	t.Run("keeps numbers exact", func(t *testing.T) {
		m, err := unmarshalObject(`{"port": 8080}`)
		assertNoError(t, err)
		assertEqual(t, json.Number("8080"), m["port"])
	})

	t.Run("rejects non-object", func(t *testing.T) {
		if _, err := unmarshalObject(`[1,2]`); err == nil {
			t.Error("expected error for JSON array")
		}
	})
}

// ============================================================================
// Repository Tests
// ============================================================================

func TestNewMissingFile(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "absent.db"))
	if !errors.Is(err, repository.ErrStoreNotFound) {
		t.Errorf("expected ErrStoreNotFound, got %v", err)
	}
}

func TestLoadEmpty(t *testing.T) {
	repo := newTestRepo(t)

	snap, err := repo.Load(context.Background())
	assertNoError(t, err)
	assertEqual(t, 0, len(snap.Documents))
	assertEqual(t, 0, len(snap.Relationships))
}

func TestSaveAndLoad(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	assertNoError(t, repo.Save(ctx, sampleSnapshot()))

	snap, err := repo.Load(ctx)
	assertNoError(t, err)

	assertEqual(t, 2, len(snap.Documents))
	assertEqual(t, "dns_app", snap.Documents[0].ID)
	assertEqual(t, "proxy_1", snap.Documents[1].ID)

	port, ok := snap.Documents[1].LookupPort("forward_port")
	assertEqual(t, true, ok)
	assertEqual(t, 8080, port)

	assertEqual(t, 2, len(snap.Relationships))
	assertEqual(t, "dns_app_routes_to_proxy_1", snap.Relationships[0].ID())
	assertEqual(t, "2024-01-01T00:00:00Z", snap.Relationships[0].CreatedAt())
	assertEqual(t, "edge without id", snap.Relationships[1]["note"])

	assertEqual(t, "unraid", snap.Metadata["collector"])
	assertEqual(t, "2", snap.Extra["schema_version"])
}

func TestSaveReplacesContents(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	assertNoError(t, repo.Save(ctx, sampleSnapshot()))

	next := domain.NewSnapshot()
	next.Documents = append(next.Documents, domain.NewDocument("svc1", domain.EntityTypeService, nil))
	assertNoError(t, repo.Save(ctx, next))

	snap, err := repo.Load(ctx)
	assertNoError(t, err)
	assertEqual(t, 1, len(snap.Documents))
	assertEqual(t, 0, len(snap.Relationships))
	assertEqual(t, 0, len(snap.Metadata))
}

func TestSaveCancelledContextKeepsStore(t *testing.T) {
	repo := newTestRepo(t)
	assertNoError(t, repo.Save(context.Background(), sampleSnapshot()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := repo.Save(ctx, domain.NewSnapshot()); err == nil {
		t.Fatal("expected error from cancelled context")
	}

	snap, err := repo.Load(context.Background())
	assertNoError(t, err)
	assertEqual(t, 2, len(snap.Documents))
}

func TestCreateFileStore(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "graph.db")

	repo, err := Create(path)
	assertNoError(t, err)
	assertNoError(t, repo.Save(ctx, sampleSnapshot()))
	assertNoError(t, repo.Close())

	reopened, err := New(path)
	assertNoError(t, err)
	defer reopened.Close()

	snap, err := reopened.Load(ctx)
	assertNoError(t, err)
	assertEqual(t, 2, len(snap.Relationships))
	assertEqual(t, path, reopened.Location())
}

func TestLoadMalformedBody(t *testing.T) {
	repo := newTestRepo(t)
	_, err := repo.db.Exec(`INSERT INTO documents (id, type, body) VALUES ('x', 'service', '"not an object"')`)
	assertNoError(t, err)

	_, err = repo.Load(context.Background())
	if !errors.Is(err, repository.ErrMalformedStore) {
		t.Errorf("expected ErrMalformedStore, got %v", err)
	}
}
