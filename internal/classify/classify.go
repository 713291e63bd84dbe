// Package classify decides whether a source item already exists somewhere in
// the destination tree.
package classify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pkovacs/cloudkeeper/internal/config"
	"github.com/pkovacs/cloudkeeper/internal/difftool"
	"github.com/pkovacs/cloudkeeper/internal/scan"
)

// RenamedCandidateLayout is the time layout some cloud providers use when they
// rename an upload after its capture time ("preserve original name" disabled).
const RenamedCandidateLayout = "2006-01-02 15.04.05"

// ErrDiffTool is returned in strict mode when the comparison tool fails.
var ErrDiffTool = errors.New("diff tool failed")

// sizeStableExts are container formats whose byte size survives the provider's
// upload pipeline untouched, so an exact size compare settles identity.
var sizeStableExts = map[string]bool{
	".avi": true,
	".m4v": true,
	".mkv": true,
	".mov": true,
	".mp4": true,
	".mpg": true,
	".mts": true,
	".wmv": true,
}

// SizeStable reports whether the extension belongs to the size-stable set.
func (c *Classifier) SizeStable(ext string) bool {
	return sizeStableExts[ext]
}

// Classifier layers name, size and content heuristics to answer IsPresent.
type Classifier struct {
	Dest         scan.DestSearcher
	Diff         difftool.Runner
	NameOnly     bool
	DiffErrors   config.DiffErrorPolicy
	SizeMismatch config.SizeMismatchPolicy
	Logger       *slog.Logger
}

// New creates a Classifier over the given destination searcher and diff runner.
func New(dest scan.DestSearcher, diff difftool.Runner, cfg *config.Config, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}

	return &Classifier{
		Dest:         dest,
		Diff:         diff,
		NameOnly:     cfg.NameOnly,
		DiffErrors:   cfg.DiffErrors,
		SizeMismatch: cfg.SizeMismatch,
		Logger:       logger,
	}
}

// RenamedCandidate returns the alternate file name the provider may have
// assigned to the item based on its modification time.
func RenamedCandidate(item *scan.SourceItem) string {
	return item.ModTime.Format(RenamedCandidateLayout) + item.Ext
}

// IsPresent reports whether the item already exists at the destination.
// Heuristics are layered; the first conclusive one wins.
func (c *Classifier) IsPresent(ctx context.Context, item *scan.SourceItem) (bool, error) {
	entry, found, err := c.Dest.Search(item.Name)
	if err != nil {
		return false, err
	}

	if !found {
		candidate := RenamedCandidate(item)

		entry, found, err = c.Dest.Search(candidate)
		if err != nil {
			return false, err
		}

		if found {
			c.Logger.Debug("matched renamed candidate",
				"item", item.Name, "candidate", candidate)
		}
	}

	if !found {
		return false, nil
	}

	if c.NameOnly {
		return true, nil
	}

	if c.SizeStable(item.Ext) {
		return item.Size == entry.Size, nil
	}

	return c.compareContent(ctx, item, entry)
}

// compareContent settles identity for a name match via the external diff tool,
// falling back to a size-only comparison when the tool is unavailable.
func (c *Classifier) compareContent(ctx context.Context, item *scan.SourceItem, entry scan.Entry) (bool, error) {
	if c.Diff == nil || !c.Diff.Available() {
		return c.compareSizeOnly(item, entry), nil
	}

	verdict, err := c.Diff.Compare(ctx, item.Path, entry.Path)
	if err != nil {
		// Cancellation is not a tool verdict; the item stays unresolved so a
		// later run re-evaluates it
		if ctx.Err() != nil {
			return false, fmt.Errorf("comparison of %s interrupted: %w", item.Name, err)
		}

		verdict = difftool.ToolError

		c.Logger.Warn("diff tool could not be run", "item", item.Name, "error", err)
	}

	switch verdict {
	case difftool.Identical, difftool.RulesIdentical, difftool.Similar:
		return true, nil
	case difftool.Different:
		return false, nil
	case difftool.ToolError:
		if c.DiffErrors == config.DiffStrict {
			return false, fmt.Errorf("%w comparing %s and %s", ErrDiffTool, item.Path, entry.Path)
		}

		// Optimistic policy: never block an unattended run on a flaky tool
		c.Logger.Warn("diff tool reported an error, treating item as present",
			"item", item.Name, "dest", entry.Path)

		return true, nil
	}

	return false, nil
}

// compareSizeOnly is the degraded path when no diff tool exists. Equal sizes
// always mean present; unequal sizes answer per the configured policy instead
// of a silent guess.
func (c *Classifier) compareSizeOnly(item *scan.SourceItem, entry scan.Entry) bool {
	if item.Size == entry.Size {
		return true
	}

	if c.SizeMismatch == config.AssumeSame {
		c.Logger.Warn("size mismatch tolerated (assume-same)",
			"item", item.Name, "sourceSize", item.Size, "destSize", entry.Size)

		return true
	}

	return false
}
