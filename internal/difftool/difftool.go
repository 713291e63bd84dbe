// Package difftool invokes an external content-comparison executable and maps
// its exit codes onto comparison verdicts.
package difftool

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// Verdict is the outcome of comparing two files with the external tool
type Verdict int

const (
	// Identical - byte-identical contents
	Identical Verdict = iota
	// RulesIdentical - identical after the tool's built-in normalization rules
	RulesIdentical
	// Similar - contents differ but within the tool's similarity threshold
	Similar
	// Different - contents differ
	Different
	// ToolError - the tool itself failed
	ToolError
)

// Exit codes of the comparison tool.
const (
	exitIdentical      = 0
	exitRulesIdentical = 1
	exitSimilar        = 2
	exitDifferent      = 3
)

// String returns the string representation of Verdict
func (v Verdict) String() string {
	switch v {
	case Identical:
		return "identical"
	case RulesIdentical:
		return "rules-identical"
	case Similar:
		return "similar"
	case Different:
		return "different"
	case ToolError:
		return "tool-error"
	default:
		return "unknown"
	}
}

// Match reports whether the verdict counts as "the file is already present".
func (v Verdict) Match() bool {
	return v == Identical || v == RulesIdentical || v == Similar
}

// ErrToolUnavailable is returned by Available when the executable cannot be found.
var ErrToolUnavailable = errors.New("diff tool not found")

// Runner compares two files by path
type Runner interface {
	// Compare runs the tool on the two paths and returns its verdict.
	// A non-nil error means the tool could not be run at all.
	Compare(ctx context.Context, pathA, pathB string) (Verdict, error)
	// Available reports whether the tool can be invoked.
	Available() bool
}

// ExecRunner runs a comparison executable via os/exec.
type ExecRunner struct {
	// Tool is the executable name or path.
	Tool string
	// ExtraArgs are passed before the two file paths.
	ExtraArgs []string
}

// NewExecRunner creates a runner for the given executable.
func NewExecRunner(tool string) *ExecRunner {
	return &ExecRunner{Tool: tool}
}

// Available reports whether the tool resolves on PATH.
func (r *ExecRunner) Available() bool {
	_, err := exec.LookPath(r.Tool)
	return err == nil
}

// Compare invokes the tool with the two file paths and maps its exit code.
func (r *ExecRunner) Compare(ctx context.Context, pathA, pathB string) (Verdict, error) {
	args := make([]string, 0, len(r.ExtraArgs)+2)
	args = append(args, r.ExtraArgs...)
	args = append(args, pathA, pathB)

	cmd := exec.CommandContext(ctx, r.Tool, args...) // #nosec G204 - tool name comes from configuration

	err := cmd.Run()

	// A tool killed by the context never produced a verdict; its exit code
	// must not be mapped onto one
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ToolError, fmt.Errorf("comparison of %s interrupted: %w", pathA, ctxErr)
	}

	if err == nil {
		return Identical, nil
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return ToolError, fmt.Errorf("failed to run %s: %w", r.Tool, err)
	}

	switch exitErr.ExitCode() {
	case exitRulesIdentical:
		return RulesIdentical, nil
	case exitSimilar:
		return Similar, nil
	case exitDifferent:
		return Different, nil
	default:
		// Any unlisted code is a tool failure, not a comparison result
		return ToolError, nil
	}
}
