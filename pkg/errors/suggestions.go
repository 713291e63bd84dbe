package errors

import "fmt"

// SuggestionGenerator generates actionable suggestions based on error category.
type SuggestionGenerator interface {
	Generate(category ErrorCategory, affectedPath string) []string
}

// NewSuggestionGenerator creates a new SuggestionGenerator.
func NewSuggestionGenerator() SuggestionGenerator {
	return &suggestionGenerator{}
}

// suggestionGenerator is the concrete implementation of SuggestionGenerator.
type suggestionGenerator struct{}

// Generate returns actionable suggestions based on the error category and affected path.
func (g *suggestionGenerator) Generate(category ErrorCategory, affectedPath string) []string {
	switch category {
	case CategoryPermission:
		return g.generatePermissionSuggestions(affectedPath)
	case CategoryDiskSpace:
		return g.generateDiskSpaceSuggestions(affectedPath)
	case CategoryPath:
		return g.generatePathSuggestions(affectedPath)
	case CategoryLedger:
		return g.generateLedgerSuggestions(affectedPath)
	case CategoryDiffTool:
		return g.generateDiffToolSuggestions()
	case CategoryCopy:
		return g.generateCopySuggestions()
	case CategoryUnknown:
		return g.generateUnknownSuggestions(affectedPath)
	default:
		return g.generateUnknownSuggestions(affectedPath)
	}
}

func (g *suggestionGenerator) generateCopySuggestions() []string {
	return []string{
		"Check if there is sufficient disk space in the delivery folder",
		"Verify the destination is mounted and the sync client is running",
		"Increase --retries or --retry-delay if the destination is slow to surface new files",
		"Try the operation again - this may be a transient I/O error",
	}
}

func (g *suggestionGenerator) generateDiffToolSuggestions() []string {
	return []string{
		"Verify the comparison tool is installed and on PATH (see --diff-tool)",
		"Run the tool by hand on the two files to see its own error output",
		"Use --diff-errors optimistic to keep an unattended run going despite tool errors",
		"Use --name-only to skip content comparison entirely",
	}
}

func (g *suggestionGenerator) generateDiskSpaceSuggestions(path string) []string {
	suggestions := []string{
		"Free up space on the destination device",
		"Check available space with 'df -h'",
	}

	if path != "" {
		suggestions = append(suggestions, "Verify disk usage for the filesystem containing "+path)
	}

	return suggestions
}

func (g *suggestionGenerator) generateLedgerSuggestions(path string) []string {
	suggestions := []string{
		"The completion ledger could not be used in its current state",
	}

	if path != "" {
		suggestions = append(suggestions, "Inspect the ledger file: "+path)
	}

	suggestions = append(suggestions,
		"Run with --from-scratch to discard the ledger and re-evaluate every item",
		"Check that no other cloudkeeper instance is running against the same ledger")

	return suggestions
}

func (g *suggestionGenerator) generatePathSuggestions(path string) []string {
	suggestions := []string{
		"Verify the path exists and is spelled correctly",
	}

	if path != "" {
		suggestions = append(suggestions, "Check if the path exists: "+path)
		suggestions = append(suggestions, "If this is a removable device, confirm it is mounted")
	} else {
		suggestions = append(suggestions, "Ensure all parent directories exist")
	}

	return suggestions
}

func (g *suggestionGenerator) generatePermissionSuggestions(path string) []string {
	suggestions := []string{
		"Ensure you have read/write permissions for the files and directories",
	}

	if path != "" {
		suggestions = append(suggestions, fmt.Sprintf("Check permissions with 'ls -la %s'", path))
	} else {
		suggestions = append(suggestions, "Check permissions with 'ls -la' on the affected path")
	}

	suggestions = append(suggestions, "Try running with appropriate permissions or as a privileged user")

	return suggestions
}

func (g *suggestionGenerator) generateUnknownSuggestions(path string) []string {
	suggestions := []string{
		"Check the error message for more details",
		"Verify file and directory permissions",
		"Ensure sufficient disk space is available",
	}

	if path != "" {
		suggestions = append(suggestions, "Verify the path is accessible: "+path)
	}

	return suggestions
}
