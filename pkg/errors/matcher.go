package errors

import "strings"

// PatternMatcher matches error messages to categories using string patterns.
type PatternMatcher interface {
	Match(errorMsg string) ErrorCategory
}

// NewPatternMatcher creates a new PatternMatcher with predefined patterns.
func NewPatternMatcher() PatternMatcher {
	return &patternMatcher{
		patterns: map[ErrorCategory][]string{
			CategoryPermission: {
				"permission denied",
				"access denied",
				"operation not permitted",
			},
			CategoryDiskSpace: {
				"no space left on device",
				"disk full",
				"quota exceeded",
			},
			CategoryLedger: {
				"ledger",
			},
			CategoryDiffTool: {
				"diff tool",
			},
			CategoryPath: {
				"no such file or directory",
				"file not found",
				"does not exist",
				"is not a directory",
			},
			CategoryCopy: {
				"short write",
				"never became visible",
				"input/output error",
				"i/o error",
			},
		},
	}
}

// patternMatcher is the concrete implementation of PatternMatcher.
type patternMatcher struct {
	patterns map[ErrorCategory][]string
}

// Match returns the error category based on pattern matching.
func (m *patternMatcher) Match(errorMsg string) ErrorCategory {
	lowerMsg := strings.ToLower(errorMsg)

	// Ledger and diff-tool failures carry generic OS error text too, so the
	// domain categories are checked first
	ordered := []ErrorCategory{
		CategoryLedger,
		CategoryDiffTool,
		CategoryPermission,
		CategoryDiskSpace,
		CategoryPath,
		CategoryCopy,
	}

	for _, category := range ordered {
		for _, pattern := range m.patterns[category] {
			if strings.Contains(lowerMsg, pattern) {
				return category
			}
		}
	}

	return CategoryUnknown
}
