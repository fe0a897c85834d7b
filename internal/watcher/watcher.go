package watcher

import (
	"context"
	"crypto/sha256"
	"io"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// Watcher watches the store file and runs a callback when its content
// changes. Writes made by the callback itself are recognised by content
// fingerprint and do not trigger another run.
type Watcher struct {
	path     string
	onChange func()
	debounce time.Duration

	mu       sync.Mutex
	lastSeen [sha256.Size]byte
}

// New creates a new file watcher
func New(path string, onChange func()) *Watcher {
	return &Watcher{
		path:     path,
		onChange: onChange,
		debounce: 500 * time.Millisecond,
	}
}

// WithDebounce sets the debounce duration
func (w *Watcher) WithDebounce(d time.Duration) *Watcher {
	if d > 0 {
		w.debounce = d
	}
	return w
}

// fingerprint hashes the current file content. A missing file hashes to
// the zero value.
func (w *Watcher) fingerprint() [sha256.Size]byte {
	var sum [sha256.Size]byte
	f, err := os.Open(w.path)
	if err != nil {
		return sum
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return sum
	}
	copy(sum[:], h.Sum(nil))
	return sum
}

// Settle records the current file content as already handled
func (w *Watcher) Settle() {
	sum := w.fingerprint()
	w.mu.Lock()
	w.lastSeen = sum
	w.mu.Unlock()
}

// fire runs the callback when the content differs from the last handled
// version, then records the content the callback left behind.
func (w *Watcher) fire() {
	w.mu.Lock()
	defer w.mu.Unlock()

	sum := w.fingerprint()
	if sum == w.lastSeen {
		return
	}

	log.Printf("File changed: %s", w.path)
	w.onChange()
	w.lastSeen = w.fingerprint()
}

// Watch starts watching the file for changes
// It blocks until the context is cancelled or an error occurs
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	// Watch the directory containing the file
	// This handles the store being replaced by rename
	dir := filepath.Dir(w.path)
	filename := filepath.Base(w.path)

	if err := watcher.Add(dir); err != nil {
		return err
	}

	w.Settle()
	log.Printf("Watching %s for changes", w.path)

	var debounceTimer *time.Timer

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			// Check if this event is for our file
			if filepath.Base(event.Name) != filename {
				continue
			}

			// Rename covers stores replaced via a temp file
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				// Debounce rapid changes
				if debounceTimer != nil {
					debounceTimer.Stop()
				}
				debounceTimer = time.AfterFunc(w.debounce, w.fire)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			log.Printf("Watcher error: %v", err)

		case <-ctx.Done():
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return ctx.Err()
		}
	}
}
