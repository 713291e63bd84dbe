// Package scan enumerates source items and indexes the destination tree.
package scan

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/kr/fs"
)

// SourceItem describes one file discovered at the origin, eligible for backup.
// Items are created once per run during enumeration and never mutated.
type SourceItem struct {
	// Path is the stable identifier of the item on the source device.
	Path string
	// Name is the base file name including extension.
	Name string
	// Ext is the file extension including the leading dot, lowercased.
	Ext string
	// Size is the byte size at enumeration time.
	Size int64
	// ModTime is the last-modified timestamp at enumeration time.
	ModTime time.Time
}

// Key returns the stable ledger key for the item.
func (it *SourceItem) Key() string {
	return it.Path
}

// NameFilter decides whether a source file name takes part in the run
type NameFilter interface {
	// ShouldInclude returns true if the file with the given base name should be enumerated
	ShouldInclude(name string) bool
}

// GlobFilter implements NameFilter using glob patterns
type GlobFilter struct {
	normalizedPattern string
	isEmpty           bool
}

// NewGlobFilter creates a new GlobFilter with the given pattern
// Empty pattern matches all files
func NewGlobFilter(pattern string) *GlobFilter {
	return &GlobFilter{
		normalizedPattern: strings.ToLower(pattern),
		isEmpty:           pattern == "",
	}
}

// ShouldInclude returns true if the name matches the glob pattern
// Case-insensitive matching
func (f *GlobFilter) ShouldInclude(name string) bool {
	if f.isEmpty {
		return true
	}

	matched, err := doublestar.Match(f.normalizedPattern, strings.ToLower(name))
	if err != nil {
		// If pattern is invalid, don't match
		return false
	}

	return matched
}

// Enumerate walks the source root recursively and returns every regular file
// whose base name passes the filter, in deterministic walk order. The result
// is a fresh slice on every call, so a run can be restarted from it.
func Enumerate(root string, filter NameFilter) ([]*SourceItem, error) {
	if filter == nil {
		filter = NewGlobFilter("")
	}

	items := make([]*SourceItem, 0)

	walker := fs.Walk(root)
	for walker.Step() {
		if err := walker.Err(); err != nil {
			return nil, fmt.Errorf("failed to enumerate source at %s: %w", walker.Path(), err)
		}

		info := walker.Stat()
		if info.IsDir() {
			continue
		}

		name := info.Name()
		if !filter.ShouldInclude(name) {
			continue
		}

		items = append(items, &SourceItem{
			Path:    walker.Path(),
			Name:    name,
			Ext:     strings.ToLower(filepath.Ext(name)),
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	return items, nil
}
