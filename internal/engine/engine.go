// Package engine implements the reconciliation driver: a concurrent worker
// pool that classifies each source item as present-or-missing, copies missing
// items with retry-until-visible semantics, aggregates live progress and
// persists a resumable completion ledger across runs.
package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pkovacs/cloudkeeper/internal/classify"
	"github.com/pkovacs/cloudkeeper/internal/config"
	"github.com/pkovacs/cloudkeeper/internal/difftool"
	"github.com/pkovacs/cloudkeeper/internal/ledger"
	"github.com/pkovacs/cloudkeeper/internal/scan"
)

// Phase is the driver's lifecycle state.
type Phase string

// Driver phases, in order. Failed can be entered from any phase on a fatal
// precondition error.
const (
	PhaseIdle        Phase = "idle"
	PhaseEnumerating Phase = "enumerating"
	PhaseRunning     Phase = "running"
	PhaseDraining    Phase = "draining"
	PhasePersisting  Phase = "persisting"
	PhaseDone        Phase = "done"
	PhaseFailed      Phase = "failed"
)

// DefaultPollInterval is how often the driver samples progress and checks for
// completion or cancellation.
const DefaultPollInterval = 250 * time.Millisecond

// Exported variables.
var (
	ErrRunCancelled = errors.New("run cancelled")
)

// Summary is the final report of a run.
type Summary struct {
	Goal      int64
	Processed int64
	Copied    int64
	Skipped   int64
	Failed    int64
	Elapsed   time.Duration
	Cancelled bool
}

// Complete reports whether every enumerated item was processed and none failed.
func (s *Summary) Complete() bool {
	return s.Processed == s.Goal && s.Failed == 0
}

// Engine orchestrates a reconcile run.
type Engine struct {
	Config       *config.Config
	Logger       *slog.Logger
	TimeProvider TimeProvider
	PollInterval time.Duration

	// Enumerate and NewDiffRunner are swappable for tests.
	Enumerate     func(root string, filter scan.NameFilter) ([]*scan.SourceItem, error)
	NewDiffRunner func(tool string) difftool.Runner

	emitter EventEmitter

	mu        sync.RWMutex
	phase     Phase
	startTime time.Time
	goal      int64
	pool      *Pool

	cancelChan chan struct{}
	cancelOnce sync.Once
	saveOnce   sync.Once
	saveErr    error
	ledger     *ledger.Ledger
}

// NewEngine creates an engine for the given configuration.
func NewEngine(cfg *config.Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	return &Engine{
		Config:       cfg,
		Logger:       logger,
		TimeProvider: &RealTimeProvider{},
		PollInterval: DefaultPollInterval,
		Enumerate:    scan.Enumerate,
		NewDiffRunner: func(tool string) difftool.Runner {
			return difftool.NewExecRunner(tool)
		},
		phase:      PhaseIdle,
		cancelChan: make(chan struct{}),
	}
}

// SetEventEmitter sets the event emitter for UI communication.
// The emitter is optional - if nil, no events are emitted.
// Must be called before Run; the field is read unguarded by worker goroutines.
func (e *Engine) SetEventEmitter(emitter EventEmitter) {
	e.emitter = emitter
}

// Cancel requests a cooperative stop. In-flight copies run to completion;
// queued items are abandoned and the ledger is still persisted.
func (e *Engine) Cancel() {
	e.cancelOnce.Do(func() {
		close(e.cancelChan)
	})
}

// Phase returns the driver's current lifecycle state.
func (e *Engine) Phase() Phase {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return e.phase
}

// Snapshot merges the per-worker counters into one progress report.
// Safe to call from any goroutine at any time.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	pool := e.pool
	startTime := e.startTime
	goal := e.goal
	e.mu.RUnlock()

	if pool == nil {
		return Snapshot{Goal: goal}
	}

	return Aggregate(pool.Statuses(), startTime, e.TimeProvider.Now(), goal)
}

// Run drives the full state machine:
// Idle -> Enumerating -> Running -> Draining -> Persisting -> Done,
// or -> Failed from any state on a fatal precondition error.
func (e *Engine) Run(ctx context.Context) (*Summary, error) {
	e.setPhase(PhaseEnumerating)

	if err := e.Config.Validate(); err != nil {
		e.setPhase(PhaseFailed)
		return nil, err
	}

	completionLedger, err := e.loadLedger()
	if err != nil {
		e.setPhase(PhaseFailed)
		return nil, err
	}

	e.mu.Lock()
	e.ledger = completionLedger
	e.mu.Unlock()

	// Completed work is never lost: persist the ledger even when the run is
	// cancelled or a later step fails
	defer func() {
		_ = e.saveLedger()
	}()

	e.emit(EnumerateStarted{Root: e.Config.SourcePath, Pattern: e.Config.Pattern})

	items, err := e.Enumerate(e.Config.SourcePath, scan.NewGlobFilter(e.Config.Pattern))
	if err != nil {
		e.setPhase(PhaseFailed)
		return nil, err
	}

	e.emit(EnumerateComplete{Count: len(items)})
	e.Logger.Info("enumeration complete", "items", len(items), "pattern", e.Config.Pattern)

	if len(items) == 0 {
		e.setPhase(PhaseDone)

		summary := &Summary{}
		e.emit(RunComplete{Summary: summary})
		e.Logger.Info("nothing to do")

		return summary, nil
	}

	summary, runErr := e.runWorkers(ctx, items, completionLedger)

	e.setPhase(PhasePersisting)

	if saveErr := e.saveLedger(); saveErr != nil {
		e.Logger.Error("failed to persist ledger", "error", saveErr)

		if runErr == nil {
			runErr = saveErr
		}
	} else {
		e.emit(LedgerSaved{Path: completionLedger.Path(), Entries: completionLedger.Len()})
	}

	if runErr != nil && !errors.Is(runErr, ErrRunCancelled) {
		e.setPhase(PhaseFailed)
	} else {
		e.setPhase(PhaseDone)
	}

	e.emit(RunComplete{Summary: summary})

	return summary, runErr
}

// runWorkers covers the Running and Draining phases.
func (e *Engine) runWorkers(ctx context.Context, items []*scan.SourceItem, completionLedger *ledger.Ledger) (*Summary, error) {
	destIndex := scan.NewDestIndex(e.Config.CloudRoot)
	diffRunner := e.NewDiffRunner(e.Config.DiffTool)
	classifier := classify.New(destIndex, diffRunner, e.Config, e.Logger)

	copier := NewCopier(classifier, e.Config.DeliveryDir, e.Logger)
	copier.DryRun = e.Config.DryRun
	copier.Retries = e.Config.Retries
	copier.RetryDelay = e.Config.RetryDelay

	queue := NewWorkQueue()

	pool := NewPool(queue, copier, completionLedger, e.Config.Workers, e.Logger)
	pool.FromScratch = e.Config.FromScratch
	pool.SetEventEmitter(e.emitter)

	e.mu.Lock()
	e.pool = pool
	e.goal = int64(len(items))
	e.startTime = e.TimeProvider.Now()
	e.mu.Unlock()

	e.setPhase(PhaseRunning)
	e.emit(RunStarted{Goal: len(items), Workers: e.Config.Workers, DryRun: e.Config.DryRun})

	pool.Start(ctx)

	for _, item := range items {
		queue.Enqueue(item)
	}

	cancelled := e.pollUntilDone(ctx)

	e.setPhase(PhaseDraining)
	e.emit(Draining{})

	pool.StopAccepting()
	pool.Wait()

	snap := Aggregate(pool.Statuses(), e.startTime, e.TimeProvider.Now(), e.goal)

	summary := &Summary{
		Goal:      snap.Goal,
		Processed: snap.Processed,
		Copied:    snap.Copied,
		Skipped:   snap.Skipped,
		Failed:    snap.Failed,
		Elapsed:   snap.Elapsed,
		Cancelled: cancelled,
	}

	if cancelled {
		return summary, ErrRunCancelled
	}

	return summary, nil
}

// pollUntilDone samples progress on a fixed interval until every enqueued
// item has been processed or a cancellation arrives. Returns true when the
// run was cancelled.
func (e *Engine) pollUntilDone(ctx context.Context) bool {
	ticker := e.TimeProvider.NewTicker(e.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.Cancel()
			return true
		case <-e.cancelChan:
			return true
		case <-ticker.C():
			snap := e.Snapshot()
			e.emit(Progress{Snapshot: snap})

			if snap.Processed >= snap.Goal {
				return false
			}
		}
	}
}

// loadLedger loads the persisted ledger, or starts empty in from-scratch mode.
// A ledger file that exists but cannot be parsed is a fatal precondition error.
func (e *Engine) loadLedger() (*ledger.Ledger, error) {
	if e.Config.FromScratch {
		e.Logger.Info("starting from scratch, ignoring ledger", "path", e.Config.LedgerPath)

		return ledger.New(e.Config.LedgerPath), nil
	}

	completionLedger, err := ledger.Load(e.Config.LedgerPath)
	if err != nil {
		return nil, err
	}

	e.Logger.Info("ledger loaded", "path", e.Config.LedgerPath, "entries", completionLedger.Len())

	return completionLedger, nil
}

// saveLedger persists the ledger exactly once per run, whichever of the
// normal path or the deferred guard gets there first. Skipped in dry-run so
// a simulation leaves no trace.
func (e *Engine) saveLedger() error {
	e.saveOnce.Do(func() {
		e.mu.RLock()
		completionLedger := e.ledger
		e.mu.RUnlock()

		if completionLedger == nil || e.Config.DryRun {
			return
		}

		e.saveErr = completionLedger.Save()
	})

	return e.saveErr
}

func (e *Engine) setPhase(phase Phase) {
	e.mu.Lock()
	e.phase = phase
	e.mu.Unlock()
}

// emit sends an event if an emitter is configured.
// Safe to call even when emitter is nil.
func (e *Engine) emit(event Event) {
	if e.emitter != nil {
		e.emitter.Emit(event)
	}
}
