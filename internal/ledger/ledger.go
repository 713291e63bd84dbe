// Package ledger persists the set of source items already processed so an
// interrupted run can resume without re-verifying confirmed work.
package ledger

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/goccy/go-json"
	"github.com/gofrs/flock"
)

// filePermissions is the mode for the persisted ledger file.
const filePermissions = 0o600

// Ledger is a concurrent-safe set of completed item keys.
// Entries are only ever added within a run, never removed.
type Ledger struct {
	path string
	lock *flock.Flock

	mu   sync.RWMutex
	done map[string]bool
}

// New creates an empty ledger that will persist to the given path.
func New(path string) *Ledger {
	return &Ledger{
		path: path,
		lock: flock.New(path + ".lock"),
		done: make(map[string]bool),
	}
}

// Load reads the persisted ledger from disk. A missing file yields an empty
// ledger; a file that exists but cannot be parsed is a fatal precondition
// error, so completed work is never silently forgotten.
func Load(path string) (*Ledger, error) {
	ledger := New(path)

	data, err := os.ReadFile(path) // #nosec G304 - ledger path comes from configuration
	if os.IsNotExist(err) {
		return ledger, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cannot read ledger %s: %w", path, err)
	}

	if err := json.Unmarshal(data, &ledger.done); err != nil {
		return nil, fmt.Errorf("ledger %s is not in the expected format: %w", path, err)
	}

	return ledger, nil
}

// MarkDone records the key as completed.
func (l *Ledger) MarkDone(key string) {
	l.mu.Lock()
	l.done[key] = true
	l.mu.Unlock()
}

// Done reports whether the key was already completed.
func (l *Ledger) Done(key string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return l.done[key]
}

// Len returns the number of completed keys.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.done)
}

// Path returns the ledger's persistence path.
func (l *Ledger) Path() string {
	return l.path
}

// Save writes the ledger to disk atomically (temp file + rename) under an
// advisory lock, so a crash mid-write never corrupts the previous ledger and
// two instances never interleave writes.
func (l *Ledger) Save() error {
	locked, err := l.lock.TryLock()
	if err != nil {
		return fmt.Errorf("cannot lock ledger %s: %w", l.path, err)
	}
	if !locked {
		return fmt.Errorf("ledger %s is locked by another instance", l.path)
	}

	defer func() {
		_ = l.lock.Unlock()
	}()

	l.mu.RLock()
	data, err := json.MarshalIndent(l.done, "", "  ")
	l.mu.RUnlock()

	if err != nil {
		return fmt.Errorf("cannot encode ledger: %w", err)
	}

	dir := filepath.Dir(l.path)

	tmp, err := os.CreateTemp(dir, ".ledger-*.tmp")
	if err != nil {
		return fmt.Errorf("cannot create temp ledger in %s: %w", dir, err)
	}

	tmpPath := tmp.Name()

	_, writeErr := tmp.Write(data)
	closeErr := tmp.Close()

	if writeErr != nil || closeErr != nil {
		_ = os.Remove(tmpPath)

		if writeErr != nil {
			return fmt.Errorf("cannot write temp ledger %s: %w", tmpPath, writeErr)
		}

		return fmt.Errorf("cannot close temp ledger %s: %w", tmpPath, closeErr)
	}

	if err := os.Chmod(tmpPath, filePermissions); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("cannot chmod temp ledger %s: %w", tmpPath, err)
	}

	if err := os.Rename(tmpPath, l.path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("cannot replace ledger %s: %w", l.path, err)
	}

	return nil
}
