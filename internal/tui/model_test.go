//nolint:varnamelen // Test files use idiomatic short variable names (t, tt, etc.)
package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/gomega" //nolint:revive // Dot import is idiomatic for Gomega matchers

	"github.com/pkovacs/cloudkeeper/internal/config"
	"github.com/pkovacs/cloudkeeper/internal/engine"
)

func newIdleModel(t *testing.T) Model {
	t.Helper()

	cfg := &config.Config{
		SourcePath: t.TempDir(),
		CloudRoot:  t.TempDir(),
		Workers:    1,
		Retries:    1,
	}
	cfg.ApplyDefaults()

	return NewModel(engine.NewEngine(cfg, nil))
}

func TestViewShowsPhaseAndCounters(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	model := newIdleModel(t)
	model.snap = engine.Snapshot{Goal: 10, Processed: 4, Copied: 3, Skipped: 1, Percent: 0.4}
	model.phase = engine.PhaseRunning

	view := model.View()
	g.Expect(view).To(ContainSubstring("cloudkeeper"))
	g.Expect(view).To(ContainSubstring("running"))
	g.Expect(view).To(ContainSubstring("processed"))
	g.Expect(view).To(ContainSubstring("press q to cancel"))
}

func TestTickKeepsPollingUntilDone(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	model := newIdleModel(t)

	updated, cmd := model.Update(TickMsg(time.Now()))
	g.Expect(cmd).ToNot(BeNil(), "ticking continues while the run is live")

	model, ok := updated.(Model)
	g.Expect(ok).To(BeTrue())
	g.Expect(model.done).To(BeFalse())
}

func TestRunDoneQuitsWithSummary(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	model := newIdleModel(t)
	summary := &engine.Summary{Goal: 2, Processed: 2, Copied: 2}

	updated, cmd := model.Update(RunDoneMsg{Summary: summary})
	g.Expect(cmd).ToNot(BeNil())

	model, ok := updated.(Model)
	g.Expect(ok).To(BeTrue())
	g.Expect(model.done).To(BeTrue())
	g.Expect(model.Summary()).To(Equal(summary))
	g.Expect(model.View()).To(ContainSubstring("complete"))
}

func TestQuitKeyRequestsCancel(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	model := newIdleModel(t)

	updated, _ := model.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})

	model, ok := updated.(Model)
	g.Expect(ok).To(BeTrue())
	g.Expect(model.cancelling).To(BeTrue())
	g.Expect(model.View()).To(ContainSubstring("cancelling"))
}

func TestWindowResizeGrowsBarWithinBounds(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	model := newIdleModel(t)

	updated, _ := model.Update(tea.WindowSizeMsg{Width: 500, Height: 40})

	model, ok := updated.(Model)
	g.Expect(ok).To(BeTrue())
	g.Expect(model.bar.Width).To(Equal(MaxProgressBarWidth))
}

func TestFailedSummaryView(t *testing.T) {
	t.Parallel()

	g := NewWithT(t)

	model := newIdleModel(t)

	updated, _ := model.Update(RunDoneMsg{
		Summary: &engine.Summary{Goal: 2, Processed: 2, Failed: 1},
	})

	model, ok := updated.(Model)
	g.Expect(ok).To(BeTrue())
	g.Expect(model.View()).To(ContainSubstring("finished with failures"))
}
