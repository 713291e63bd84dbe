package engine

// Event is the interface implemented by all engine events.
type Event interface {
	isEvent()
}

// EventEmitter is the interface for emitting events.
type EventEmitter interface {
	Emit(event Event)
}

// Enumeration phase events

// EnumerateStarted is emitted when source enumeration begins.
type EnumerateStarted struct {
	Root    string
	Pattern string
}

func (EnumerateStarted) isEvent() {}

// EnumerateComplete is emitted when enumeration finishes.
type EnumerateComplete struct {
	Count int
}

func (EnumerateComplete) isEvent() {}

// Run phase events

// RunStarted is emitted when the worker pool starts.
type RunStarted struct {
	Goal    int
	Workers int
	DryRun  bool
}

func (RunStarted) isEvent() {}

// ItemCopied is emitted when a missing item lands in the delivery folder
// (or would have, in dry-run mode).
type ItemCopied struct {
	Name      string
	Size      int64
	Simulated bool
}

func (ItemCopied) isEvent() {}

// ItemSkipped is emitted when an item is already present or already in the ledger.
type ItemSkipped struct {
	Name       string
	FromLedger bool
}

func (ItemSkipped) isEvent() {}

// ItemFailed is emitted when an item could not be classified or copied.
type ItemFailed struct {
	Name string
	Err  error
}

func (ItemFailed) isEvent() {}

// Progress is emitted on every driver poll tick.
type Progress struct {
	Snapshot Snapshot
}

func (Progress) isEvent() {}

// Shutdown events

// Draining is emitted when workers have been told to stop and in-flight
// copies are being waited out.
type Draining struct{}

func (Draining) isEvent() {}

// LedgerSaved is emitted after the completion ledger is persisted.
type LedgerSaved struct {
	Path    string
	Entries int
}

func (LedgerSaved) isEvent() {}

// RunComplete is emitted with the final summary.
type RunComplete struct {
	Summary *Summary
}

func (RunComplete) isEvent() {}
