//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package errors_test

import (
	stderrors "errors"
	"strings"
	"testing"

	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/pkovacs/cloudkeeper/pkg/errors"
)

func TestPatternMatcherCategories(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		errorMsg string
		want     errors.ErrorCategory
	}{
		{
			name:     "permission denied",
			errorMsg: "open /cloud/file.jpg: permission denied",
			want:     errors.CategoryPermission,
		},
		{
			name:     "disk full",
			errorMsg: "write /cloud/file.jpg: no space left on device",
			want:     errors.CategoryDiskSpace,
		},
		{
			name:     "path missing",
			errorMsg: "source path does not exist: /mnt/camera",
			want:     errors.CategoryPath,
		},
		{
			name:     "copy never visible",
			errorMsg: "destination file never became visible: /cloud/a.jpg",
			want:     errors.CategoryCopy,
		},
		{
			name:     "diff tool",
			errorMsg: "diff tool failed comparing /a and /b",
			want:     errors.CategoryDiffTool,
		},
		{
			name:     "unknown",
			errorMsg: "something inexplicable happened",
			want:     errors.CategoryUnknown,
		},
		{
			// The ledger category must win over the generic OS text inside
			// the same message
			name:     "ledger beats path text",
			errorMsg: "cannot read ledger /cloud/.ledger.json: no such file or directory",
			want:     errors.CategoryLedger,
		},
	}

	matcher := errors.NewPatternMatcher()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := matcher.Match(tt.errorMsg); got != tt.want {
				t.Errorf("Match(%q) = %v, want %v", tt.errorMsg, got, tt.want)
			}
		})
	}
}

func TestEnrichAttachesCategoryAndSuggestions(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	original := stderrors.New("ledger /cloud/.ledger.json is not in the expected format: invalid character")

	enriched := errors.NewEnricher().Enrich(original, "/cloud/.ledger.json")

	var actionable errors.ActionableError

	g.Expect(stderrors.As(enriched, &actionable)).To(BeTrue())
	g.Expect(actionable.Category()).To(Equal(errors.CategoryLedger))
	g.Expect(actionable.AffectedPath()).To(Equal("/cloud/.ledger.json"))
	g.Expect(actionable.OriginalError()).To(Equal(original.Error()))

	joined := strings.Join(actionable.Suggestions(), "\n")
	g.Expect(joined).To(ContainSubstring("--from-scratch"))
}

func TestEnrichExtractsPathFromMessage(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	original := stderrors.New("open /mnt/camera/IMG_001.jpg: permission denied")

	enriched := errors.NewEnricher().Enrich(original, "")

	var actionable errors.ActionableError

	g.Expect(stderrors.As(enriched, &actionable)).To(BeTrue())
	g.Expect(actionable.AffectedPath()).To(Equal("/mnt/camera/IMG_001.jpg"))
}

func TestEnrichIsIdempotent(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	enricher := errors.NewEnricher()
	once := enricher.Enrich(stderrors.New("diff tool failed"), "")
	twice := enricher.Enrich(once, "/ignored")

	g.Expect(twice).To(BeIdenticalTo(once))
}

func TestDiffToolSuggestionsMentionPolicies(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	suggestions := errors.NewSuggestionGenerator().Generate(errors.CategoryDiffTool, "")
	joined := strings.Join(suggestions, "\n")

	g.Expect(joined).To(ContainSubstring("--diff-errors optimistic"))
	g.Expect(joined).To(ContainSubstring("--name-only"))
}

func TestFormatSuggestions(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	g.Expect(errors.FormatSuggestions(nil)).To(Equal(""))
	g.Expect(errors.FormatSuggestions(stderrors.New("plain"))).To(Equal(""))

	actionable := errors.NewActionableError("boom", errors.CategoryUnknown,
		[]string{"first", "second"}, "")

	formatted := errors.FormatSuggestions(actionable)
	g.Expect(formatted).To(ContainSubstring("• first"))
	g.Expect(formatted).To(ContainSubstring("• second"))
}
