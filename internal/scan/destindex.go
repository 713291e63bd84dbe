package scan

import (
	"fmt"
	"strings"
	"sync"

	"github.com/kr/fs"
)

// Entry is a single destination file record returned by a name search.
type Entry struct {
	Path string
	Size int64
}

// DestSearcher finds a file by literal name anywhere under a destination root
type DestSearcher interface {
	// Search returns the first file named exactly name (case-insensitive),
	// or false when no such file exists under the root
	Search(name string) (Entry, bool, error)
}

// DestIndex implements DestSearcher with a lazily built one-walk index of the
// destination tree. The first Search pays for the full recursive walk; every
// later lookup is a map read. When several files share a name, the first one
// in walk order wins and the rest are never considered.
type DestIndex struct {
	root string

	mu      sync.Mutex
	byName  map[string]Entry
	built   bool
	walkErr error
}

// NewDestIndex creates an index over the given destination root.
func NewDestIndex(root string) *DestIndex {
	return &DestIndex{root: root}
}

// Search returns the first destination file with the given base name.
func (d *DestIndex) Search(name string) (Entry, bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.built {
		d.build()
	}

	if d.walkErr != nil {
		return Entry{}, false, d.walkErr
	}

	entry, ok := d.byName[strings.ToLower(name)]

	return entry, ok, nil
}

// Len returns the number of distinct file names indexed so far.
// Zero before the first Search.
func (d *DestIndex) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return len(d.byName)
}

// build walks the destination tree once and records the first entry per name.
// Caller holds d.mu.
func (d *DestIndex) build() {
	d.built = true
	d.byName = make(map[string]Entry)

	walker := fs.Walk(d.root)
	for walker.Step() {
		if err := walker.Err(); err != nil {
			d.walkErr = fmt.Errorf("failed to search destination at %s: %w", walker.Path(), err)
			return
		}

		info := walker.Stat()
		if info.IsDir() {
			continue
		}

		key := strings.ToLower(info.Name())
		if _, exists := d.byName[key]; exists {
			continue // first match wins
		}

		d.byName[key] = Entry{
			Path: walker.Path(),
			Size: info.Size(),
		}
	}
}
