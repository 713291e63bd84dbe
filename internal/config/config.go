// Package config handles application configuration and command-line argument parsing.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// DiffErrorPolicy controls how a diff-tool error exit code is interpreted
type DiffErrorPolicy int

const (
	// DiffOptimistic - treat a diff-tool error as "file is present" so an unattended run never blocks
	DiffOptimistic DiffErrorPolicy = iota
	// DiffStrict - treat a diff-tool error as a per-item failure
	DiffStrict
)

// String returns the string representation of DiffErrorPolicy
func (p DiffErrorPolicy) String() string {
	switch p {
	case DiffOptimistic:
		return "optimistic"
	case DiffStrict:
		return "strict"
	default:
		return "unknown"
	}
}

// ParseDiffErrorPolicy parses a string into a DiffErrorPolicy
func ParseDiffErrorPolicy(s string) (DiffErrorPolicy, error) {
	switch strings.ToLower(s) {
	case "optimistic":
		return DiffOptimistic, nil
	case "strict":
		return DiffStrict, nil
	default:
		return DiffOptimistic, fmt.Errorf("invalid diff error policy: %s (valid: optimistic, strict)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg
func (p *DiffErrorPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseDiffErrorPolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// SizeMismatchPolicy controls the answer for "sizes differ" when the diff tool
// is unavailable and only sizes can be compared
type SizeMismatchPolicy int

const (
	// AssumeDifferent - a size mismatch means the file is missing (copy it)
	AssumeDifferent SizeMismatchPolicy = iota
	// AssumeSame - a size mismatch is tolerated and the file counts as present
	AssumeSame
)

// String returns the string representation of SizeMismatchPolicy
func (p SizeMismatchPolicy) String() string {
	switch p {
	case AssumeDifferent:
		return "assume-different"
	case AssumeSame:
		return "assume-same"
	default:
		return "unknown"
	}
}

// ParseSizeMismatchPolicy parses a string into a SizeMismatchPolicy
func ParseSizeMismatchPolicy(s string) (SizeMismatchPolicy, error) {
	switch strings.ToLower(s) {
	case "assume-different", "different":
		return AssumeDifferent, nil
	case "assume-same", "same":
		return AssumeSame, nil
	default:
		return AssumeDifferent, fmt.Errorf("invalid size mismatch policy: %s (valid: assume-different, assume-same)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler for go-arg
func (p *SizeMismatchPolicy) UnmarshalText(text []byte) error {
	parsed, err := ParseSizeMismatchPolicy(string(text))
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// Config holds the reconcile run configuration. It is built once during
// argument parsing and treated as immutable by every component afterwards.
type Config struct {
	SourcePath   string             `arg:"-s,--source" help:"Source directory to back up (e.g. a mounted device)"`
	CloudRoot    string             `arg:"-c,--cloud-root" help:"Destination tree believed to contain already-synced files"`
	DeliveryDir  string             `arg:"--delivery" help:"Folder new copies are written into (default: cloud root)"`
	Pattern      string             `arg:"-p,--pattern" help:"Glob pattern for source file names (e.g. '*.jpg')"`
	Workers      int                `arg:"-w,--workers" default:"4" help:"Number of concurrent workers"`
	DryRun       bool               `arg:"-n,--dry-run" help:"Log intended copies without touching the filesystem"`
	NameOnly     bool               `arg:"--name-only" help:"Treat a file name match as present without content comparison"`
	FromScratch  bool               `arg:"--from-scratch" help:"Ignore the completion ledger and re-evaluate every item"`
	LedgerPath   string             `arg:"--ledger" help:"Completion ledger file path (default: <cloud root>/.cloudkeeper-ledger.json)"`
	DiffTool     string             `arg:"--diff-tool" default:"imagediff" help:"External content comparison executable"`
	DiffErrors   DiffErrorPolicy    `arg:"--diff-errors" default:"optimistic" help:"Diff tool error handling: optimistic|strict"`
	SizeMismatch SizeMismatchPolicy `arg:"--size-mismatch" default:"assume-different" help:"Answer for size-only comparison mismatches: assume-different|assume-same"`
	Retries      int                `arg:"--retries" default:"5" help:"Copy attempts before an item is reported failed"`
	RetryDelay   time.Duration      `arg:"--retry-delay" default:"2s" help:"Delay between copy attempts"`
	Plain        bool               `arg:"--plain" help:"Print plain progress lines instead of the terminal UI"`
	Verbose      bool               `arg:"-v,--verbose" help:"Enable debug logging"`
	LogFile      string             `arg:"--log-file" help:"Also write logs to this file"`
}

// Validate checks the fatal preconditions before any worker starts.
// A failure here aborts the whole run.
func (cfg *Config) Validate() error {
	if cfg.SourcePath == "" {
		return fmt.Errorf("source path is required")
	}

	if cfg.CloudRoot == "" {
		return fmt.Errorf("cloud root path is required")
	}

	sourceInfo, err := os.Stat(cfg.SourcePath)
	if os.IsNotExist(err) {
		return fmt.Errorf("source path does not exist: %s", cfg.SourcePath)
	}
	if err != nil {
		return fmt.Errorf("cannot access source path: %w", err)
	}
	if !sourceInfo.IsDir() {
		return fmt.Errorf("source path is not a directory: %s", cfg.SourcePath)
	}

	cloudInfo, err := os.Stat(cfg.CloudRoot)
	if os.IsNotExist(err) {
		return fmt.Errorf("cloud root does not exist: %s", cfg.CloudRoot)
	}
	if err != nil {
		return fmt.Errorf("cannot access cloud root: %w", err)
	}
	if !cloudInfo.IsDir() {
		return fmt.Errorf("cloud root is not a directory: %s", cfg.CloudRoot)
	}

	if cfg.DeliveryDir != "" {
		deliveryInfo, err := os.Stat(cfg.DeliveryDir)
		if err == nil && !deliveryInfo.IsDir() {
			return fmt.Errorf("delivery folder is not a directory: %s", cfg.DeliveryDir)
		}
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("cannot access delivery folder: %w", err)
		}
	}

	if cfg.Workers < 1 {
		return fmt.Errorf("worker count must be at least 1, got %d", cfg.Workers)
	}

	if cfg.Retries < 1 {
		return fmt.Errorf("retry budget must be at least 1, got %d", cfg.Retries)
	}

	return nil
}

// ApplyDefaults fills in the values that depend on other fields.
func (cfg *Config) ApplyDefaults() {
	if cfg.DeliveryDir == "" {
		cfg.DeliveryDir = cfg.CloudRoot
	}

	if cfg.LedgerPath == "" {
		cfg.LedgerPath = filepath.Join(cfg.CloudRoot, ".cloudkeeper-ledger.json")
	}
}
