package engine

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkovacs/cloudkeeper/internal/ledger"
	"github.com/pkovacs/cloudkeeper/internal/scan"
)

// IdleSleep is how long a worker sleeps after finding the queue empty.
const IdleSleep = 50 * time.Millisecond

// Pool runs a fixed number of workers over a shared work queue. A single
// worker produces identical results to the multi-worker path, just without
// parallelism.
type Pool struct {
	Queue  *WorkQueue
	Copier *Copier
	Ledger *ledger.Ledger

	// FromScratch disables ledger short-circuiting so every item is re-evaluated.
	FromScratch bool
	Logger      *slog.Logger

	emitter     EventEmitter
	keepRunning atomic.Bool
	statuses    []*WorkerStatus
	wg          sync.WaitGroup
}

// NewPool creates a pool of workerCount workers over the given queue, copier
// and ledger. Status slots are allocated here, before the pool is shared, so
// Statuses is safe to read concurrently with Start.
func NewPool(queue *WorkQueue, copier *Copier, completionLedger *ledger.Ledger, workerCount int, logger *slog.Logger) *Pool {
	if workerCount < 1 {
		workerCount = 1
	}

	if logger == nil {
		logger = slog.Default()
	}

	statuses := make([]*WorkerStatus, workerCount)
	for i := range statuses {
		statuses[i] = &WorkerStatus{}
	}

	return &Pool{
		Queue:    queue,
		Copier:   copier,
		Ledger:   completionLedger,
		Logger:   logger,
		statuses: statuses,
	}
}

// SetEventEmitter sets the emitter workers report item outcomes to.
// Must be called before Start.
func (p *Pool) SetEventEmitter(emitter EventEmitter) {
	p.emitter = emitter
}

// Statuses returns the per-worker counter slots.
func (p *Pool) Statuses() []*WorkerStatus {
	return p.statuses
}

// Start spawns one worker per status slot. Each worker owns exactly one slot;
// nothing else ever writes to it.
func (p *Pool) Start(ctx context.Context) {
	p.keepRunning.Store(true)

	for i, status := range p.statuses {
		p.wg.Add(1)

		go p.worker(ctx, i, status)
	}
}

// StopAccepting tells workers to exit after their current item. In-flight
// copies run to completion; queued items are left behind.
func (p *Pool) StopAccepting() {
	p.keepRunning.Store(false)
}

// Wait blocks until every worker has exited.
func (p *Pool) Wait() {
	p.wg.Wait()
}

// worker is the per-goroutine loop: try-dequeue, ledger short-circuit,
// classify-and-copy, update own counters.
func (p *Pool) worker(ctx context.Context, id int, status *WorkerStatus) {
	defer p.wg.Done()

	for p.keepRunning.Load() {
		item, ok := p.Queue.TryDequeue()
		if !ok {
			// Recheck the stop flag after a short sleep rather than blocking
			time.Sleep(IdleSleep)
			continue
		}

		p.processItem(ctx, id, item, status)
	}
}

// processItem handles exactly one dequeued item. A panic in classification or
// copying is confined to the item: it is counted as failed and the worker
// keeps consuming.
func (p *Pool) processItem(ctx context.Context, id int, item *scan.SourceItem, status *WorkerStatus) {
	defer status.AddProcessed()

	defer func() {
		if r := recover(); r != nil {
			status.AddFailed()

			p.Logger.Error("worker panic processing item", "worker", id, "item", item.Name, "panic", r)
			p.emit(ItemFailed{Name: item.Name, Err: fmt.Errorf("panic: %v", r)})
		}
	}()

	if !p.FromScratch && p.Ledger.Done(item.Key()) {
		status.AddSkipped()
		p.emit(ItemSkipped{Name: item.Name, FromLedger: true})

		return
	}

	result, err := p.Copier.CopyIfMissing(ctx, item)

	switch result {
	case ResultCopied:
		status.AddCopied()
		p.Ledger.MarkDone(item.Key())
		p.emit(ItemCopied{Name: item.Name, Size: item.Size, Simulated: p.Copier.DryRun})
	case ResultSkipped:
		status.AddSkipped()
		p.Ledger.MarkDone(item.Key())
		p.emit(ItemSkipped{Name: item.Name})
	case ResultFailed:
		// Not marked done so the next run re-evaluates the item
		status.AddFailed()

		p.Logger.Warn("item failed", "worker", id, "item", item.Name, "error", err)
		p.emit(ItemFailed{Name: item.Name, Err: err})
	}
}

func (p *Pool) emit(event Event) {
	if p.emitter != nil {
		p.emitter.Emit(event)
	}
}
