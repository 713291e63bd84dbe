// Package expand materializes cloud-folder placeholders. The sync provider
// represents cloud-only directories as "*.cloudf" placeholder files; opening
// one makes the client replace it, asynchronously, with a real directory that
// may contain further placeholders. Expansion therefore walks the tree in
// repeated passes until a pass finds nothing left to open.
package expand

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/kr/fs"

	"github.com/pkovacs/cloudkeeper/pkg/fileops"
)

// Exported constants.
const (
	// PlaceholderSuffix marks a folder placeholder file
	PlaceholderSuffix = ".cloudf"
	// DefaultReopenInterval is the delay between open attempts on one placeholder
	DefaultReopenInterval = 100 * time.Millisecond
	// DefaultItemTimeout bounds how long one placeholder may take to materialize
	DefaultItemTimeout = 10 * time.Minute
)

// OpenFunc triggers the OS-level "open" of a placeholder path, which nudges
// the sync client into expanding it. Injectable for tests.
type OpenFunc func(path string) error

// Options configures an expansion run.
type Options struct {
	Root           string
	ExcludePattern string // regexp matched against the absolute placeholder path
	Workers        int    // defaults to NumCPU
	ReopenInterval time.Duration
	ItemTimeout    time.Duration
	Open           OpenFunc
}

// Result is the final report of an expansion run.
type Result struct {
	Passes   int
	Expanded int64
	Excluded int64
	TimedOut int64
}

// Expander walks a tree and opens every placeholder until none remain.
type Expander struct {
	opts    Options
	exclude *regexp.Regexp
	logger  *slog.Logger

	mu       sync.Mutex
	timedOut map[string]bool
}

// New creates an Expander. The exclude pattern is compiled up front so an
// invalid regexp fails before any placeholder is touched.
func New(opts Options, logger *slog.Logger) (*Expander, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}

	if opts.ReopenInterval <= 0 {
		opts.ReopenInterval = DefaultReopenInterval
	}

	if opts.ItemTimeout <= 0 {
		opts.ItemTimeout = DefaultItemTimeout
	}

	if opts.Open == nil {
		opts.Open = osOpen
	}

	var exclude *regexp.Regexp

	if opts.ExcludePattern != "" {
		compiled, err := regexp.Compile(opts.ExcludePattern)
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern: %w", err)
		}

		exclude = compiled
	}

	return &Expander{
		opts:     opts,
		exclude:  exclude,
		logger:   logger,
		timedOut: make(map[string]bool),
	}, nil
}

// Run keeps traversing until a full pass dispatches zero placeholders.
func (e *Expander) Run(ctx context.Context) (*Result, error) {
	result := &Result{}

	e.logger.Info("expanding cloud folder placeholders",
		"root", e.opts.Root, "workers", e.opts.Workers)

	for {
		if err := ctx.Err(); err != nil {
			return result, fmt.Errorf("expansion interrupted: %w", err)
		}

		result.Passes++
		e.logger.Info("traversal pass", "pass", result.Passes)

		dispatched, err := e.runPass(ctx, result)
		if err != nil {
			return result, err
		}

		if dispatched == 0 {
			return result, nil
		}
	}
}

// runPass walks the whole tree once, handing every non-excluded placeholder
// to the worker pool, and waits for the pass to finish.
func (e *Expander) runPass(ctx context.Context, result *Result) (int, error) {
	jobs := make(chan string)

	var wg sync.WaitGroup //nolint:varnamelen // wg is idiomatic for WaitGroup
	for range e.opts.Workers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			for path := range jobs {
				if e.expandOne(ctx, path) {
					atomic.AddInt64(&result.Expanded, 1)
				} else {
					atomic.AddInt64(&result.TimedOut, 1)
				}
			}
		}()
	}

	dispatched := 0

	walker := fs.Walk(e.opts.Root)
	for walker.Step() {
		if err := walker.Err(); err != nil {
			// A placeholder expanding mid-walk can vanish under us; skip and
			// let the next pass pick up whatever replaced it
			e.logger.Debug("walk error, skipping", "path", walker.Path(), "error", err)
			continue
		}

		info := walker.Stat()
		if info.IsDir() || !strings.HasSuffix(info.Name(), PlaceholderSuffix) {
			continue
		}

		path := walker.Path()

		// Placeholders that already exhausted their timeout are left alone,
		// otherwise a stuck placeholder would keep the pass loop alive forever
		if e.wasTimedOut(path) {
			continue
		}

		if e.exclude != nil && e.exclude.MatchString(path) {
			atomic.AddInt64(&result.Excluded, 1)

			e.logger.Info("excluded", "path", path)

			continue
		}

		e.logger.Info("expanding", "path", path)

		dispatched++
		jobs <- path
	}

	close(jobs)
	wg.Wait()

	return dispatched, nil
}

// expandOne re-opens the placeholder until it disappears or the item timeout
// elapses. Returns true when the placeholder was replaced.
func (e *Expander) expandOne(ctx context.Context, path string) bool {
	deadline := time.Now().Add(e.opts.ItemTimeout)

	for fileops.Exists(path) {
		// The placeholder may vanish between the exists check and the open;
		// that just means the client got there first
		_ = e.opts.Open(path)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(e.opts.ReopenInterval):
		}

		if time.Now().After(deadline) {
			e.markTimedOut(path)
			e.logger.Warn("placeholder never expanded", "path", path)

			return false
		}
	}

	return true
}

func (e *Expander) wasTimedOut(path string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.timedOut[path]
}

func (e *Expander) markTimedOut(path string) {
	e.mu.Lock()
	e.timedOut[path] = true
	e.mu.Unlock()
}

// osOpen asks the operating system to open the path with its default handler,
// the same gesture as double-clicking the placeholder.
func osOpen(path string) error {
	var cmd *exec.Cmd

	switch runtime.GOOS {
	case "darwin":
		cmd = exec.Command("open", path)
	case "windows":
		cmd = exec.Command("cmd", "/c", "start", "", path)
	default:
		cmd = exec.Command("xdg-open", path)
	}

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	return nil
}
