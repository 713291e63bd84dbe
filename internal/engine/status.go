package engine

import (
	"sync/atomic"
	"time"
)

// WorkerStatus holds the counters for one worker slot. Each slot is written
// only by its owning worker; the aggregator reads the fields atomically, so a
// snapshot taken mid-update is eventually consistent rather than torn.
type WorkerStatus struct {
	processed atomic.Int64
	copied    atomic.Int64
	skipped   atomic.Int64
	failed    atomic.Int64
}

// AddProcessed increments the processed counter.
func (s *WorkerStatus) AddProcessed() { s.processed.Add(1) }

// AddCopied increments the copied counter.
func (s *WorkerStatus) AddCopied() { s.copied.Add(1) }

// AddSkipped increments the skipped counter.
func (s *WorkerStatus) AddSkipped() { s.skipped.Add(1) }

// AddFailed increments the failed counter.
func (s *WorkerStatus) AddFailed() { s.failed.Add(1) }

// Processed returns the processed count.
func (s *WorkerStatus) Processed() int64 { return s.processed.Load() }

// Copied returns the copied count.
func (s *WorkerStatus) Copied() int64 { return s.copied.Load() }

// Skipped returns the skipped count.
func (s *WorkerStatus) Skipped() int64 { return s.skipped.Load() }

// Failed returns the failed count.
func (s *WorkerStatus) Failed() int64 { return s.failed.Load() }

// Snapshot is one progress report merged across all worker slots.
type Snapshot struct {
	Goal      int64
	Processed int64
	Copied    int64
	Skipped   int64
	Failed    int64
	Percent   float64 // 0..1 of goal
	Elapsed   time.Duration
	ETA       time.Duration
	ETAKnown  bool
}

// Aggregate sums the per-worker counters and derives percent and ETA.
// The ETA is a simple linear extrapolation from the average seconds per
// processed item; it is unknown until the first item completes.
func Aggregate(statuses []*WorkerStatus, startTime, now time.Time, goal int64) Snapshot {
	snap := Snapshot{
		Goal:    goal,
		Elapsed: now.Sub(startTime),
	}

	for _, status := range statuses {
		snap.Processed += status.Processed()
		snap.Copied += status.Copied()
		snap.Skipped += status.Skipped()
		snap.Failed += status.Failed()
	}

	if goal > 0 {
		snap.Percent = float64(snap.Processed) / float64(goal)
	}

	if snap.Processed > 0 {
		avgSecondsPerItem := snap.Elapsed.Seconds() / float64(snap.Processed)
		remaining := goal - snap.Processed

		snap.ETA = time.Duration(float64(remaining) * avgSecondsPerItem * float64(time.Second))
		snap.ETAKnown = true
	}

	return snap
}
