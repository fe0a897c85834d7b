package watcher

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"
)

func TestFireSkipsUnchangedContent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rag_data.json")
	if err := os.WriteFile(path, []byte(`{"documents": []}`), 0644); err != nil {
		t.Fatal(err)
	}

	var runs int32
	w := New(path, func() { atomic.AddInt32(&runs, 1) })
	w.Settle()

	w.fire()
	if n := atomic.LoadInt32(&runs); n != 0 {
		t.Fatalf("expected no run for unchanged content, got %d", n)
	}

	if err := os.WriteFile(path, []byte(`{"documents": [{"id": "d1"}]}`), 0644); err != nil {
		t.Fatal(err)
	}
	w.fire()
	w.fire()
	if n := atomic.LoadInt32(&runs); n != 1 {
		t.Errorf("expected exactly one run, got %d", n)
	}
}

func TestFireIgnoresOwnWrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rag_data.json")
	if err := os.WriteFile(path, []byte("v1"), 0644); err != nil {
		t.Fatal(err)
	}

	var runs int32
	w := New(path, func() {
		atomic.AddInt32(&runs, 1)
		os.WriteFile(path, []byte("v3 written by callback"), 0644)
	})
	w.Settle()

	os.WriteFile(path, []byte("v2"), 0644)
	w.fire()
	w.fire()

	if n := atomic.LoadInt32(&runs); n != 1 {
		t.Errorf("expected callback write not to retrigger, got %d runs", n)
	}
}

func TestWatchStopsOnCancel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rag_data.json")
	w := New(path, func() {}).WithDebounce(10 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Watch(ctx) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("expected context.Canceled, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}
