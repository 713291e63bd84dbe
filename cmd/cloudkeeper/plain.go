package main

import (
	"fmt"
	"os"
	"sync"

	"github.com/dustin/go-humanize"

	"github.com/pkovacs/cloudkeeper/internal/engine"
	"github.com/pkovacs/cloudkeeper/pkg/formatters"
)

// plainEmitter prints engine events as plain log lines for non-TTY runs
// (cron jobs, redirected output). Workers emit concurrently, so every print
// goes through the mutex.
type plainEmitter struct {
	mu            sync.Mutex
	verbose       bool
	lastProcessed int64
}

// Emit implements engine.EventEmitter
func (p *plainEmitter) Emit(event engine.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch event := event.(type) {
	case engine.EnumerateStarted:
		fmt.Printf("scanning %s\n", event.Root)
	case engine.EnumerateComplete:
		fmt.Printf("found %d items\n", event.Count)
	case engine.RunStarted:
		mode := ""
		if event.DryRun {
			mode = " (dry run)"
		}

		fmt.Printf("reconciling %d items with %d workers%s\n", event.Goal, event.Workers, mode)
	case engine.ItemCopied:
		verb := "copied"
		if event.Simulated {
			verb = "would copy"
		}

		fmt.Printf("%s %s (%s)\n", verb, event.Name, humanize.Bytes(uint64(event.Size))) //nolint:gosec // sizes come from os.FileInfo and are non-negative
	case engine.ItemSkipped:
		if p.verbose {
			reason := "already present"
			if event.FromLedger {
				reason = "in ledger"
			}

			fmt.Printf("skipped %s (%s)\n", event.Name, reason)
		}
	case engine.ItemFailed:
		fmt.Fprintf(os.Stderr, "failed %s: %v\n", event.Name, event.Err)
	case engine.Progress:
		p.printProgress(event.Snapshot)
	case engine.Draining:
		fmt.Println("draining in-flight copies")
	case engine.LedgerSaved:
		fmt.Printf("ledger saved to %s (%d entries)\n", event.Path, event.Entries)
	case engine.RunComplete:
		printSummary(event.Summary)
	}
}

// printProgress emits one progress line per change, not per poll tick.
func (p *plainEmitter) printProgress(snap engine.Snapshot) {
	if snap.Processed == p.lastProcessed {
		return
	}

	p.lastProcessed = snap.Processed

	fmt.Printf("progress %d/%d (%s) copied=%d skipped=%d failed=%d eta=%s\n",
		snap.Processed, snap.Goal, formatters.FormatPercent(snap.Percent),
		snap.Copied, snap.Skipped, snap.Failed,
		formatters.FormatETA(snap.ETA, snap.ETAKnown))
}

func printSummary(summary *engine.Summary) {
	status := "complete"

	switch {
	case summary.Cancelled:
		status = "cancelled"
	case !summary.Complete():
		status = "incomplete"
	}

	fmt.Printf("%s: %d processed of %d, %d copied, %d skipped, %d failed in %s\n",
		status, summary.Processed, summary.Goal, summary.Copied,
		summary.Skipped, summary.Failed, formatters.FormatDuration(summary.Elapsed))
}
