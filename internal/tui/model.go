// Package tui renders a single-screen live progress view for a reconcile run
// and forwards cancellation keys to the engine.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/dustin/go-humanize"

	"github.com/pkovacs/cloudkeeper/internal/engine"
	"github.com/pkovacs/cloudkeeper/pkg/formatters"
)

// TickMsg is a message sent on each tick interval
type TickMsg time.Time

// RunDoneMsg carries the engine's final result into the model
type RunDoneMsg struct {
	Summary *engine.Summary
	Err     error
}

// Model is the single-screen progress model. The engine runs in its own
// goroutine; the model only polls Snapshot and Phase on each tick.
type Model struct {
	engine     *engine.Engine
	bar        progress.Model
	snap       engine.Snapshot
	phase      engine.Phase
	summary    *engine.Summary
	runErr     error
	done       bool
	cancelling bool
	width      int
}

// NewModel creates a progress model for the given engine.
func NewModel(eng *engine.Engine) Model {
	bar := progress.New(progress.WithDefaultGradient())
	bar.Width = ProgressBarWidth
	bar.ShowPercentage = false // percentage is rendered alongside the counters

	return Model{
		engine: eng,
		bar:    bar,
		phase:  engine.PhaseIdle,
	}
}

// Summary returns the engine's final report, nil until the run finishes.
func (m Model) Summary() *engine.Summary { return m.summary }

// RunErr returns the engine's final error, nil until the run finishes.
func (m Model) RunErr() error { return m.runErr }

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return tea.Batch(runEngineCmd(m.engine), tickCmd())
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = min(msg.Width-4, MaxProgressBarWidth)

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			// Request a cooperative stop and keep ticking; the engine still
			// drains in-flight copies and persists the ledger
			m.cancelling = true
			m.engine.Cancel()
		}

	case TickMsg:
		m.snap = m.engine.Snapshot()
		m.phase = m.engine.Phase()

		if !m.done {
			return m, tickCmd()
		}

	case RunDoneMsg:
		m.done = true
		m.summary = msg.Summary
		m.runErr = msg.Err
		m.snap = m.engine.Snapshot()
		m.phase = m.engine.Phase()

		return m, tea.Quit
	}

	return m, nil
}

// View implements tea.Model
func (m Model) View() string {
	var view strings.Builder

	view.WriteString(TitleStyle().Render("cloudkeeper"))
	view.WriteString("\n")

	if m.done {
		view.WriteString(m.summaryView())

		return view.String()
	}

	view.WriteString(DimStyle().Render(string(m.phase)))

	if m.cancelling {
		view.WriteString(" " + WarningStyle().Render("(cancelling)"))
	}

	view.WriteString("\n\n")
	view.WriteString(m.bar.ViewAs(m.snap.Percent))
	view.WriteString(fmt.Sprintf(" %s\n\n", formatters.FormatPercent(m.snap.Percent)))
	view.WriteString(m.countersView())
	view.WriteString("\n")
	view.WriteString(DimStyle().Render(fmt.Sprintf("elapsed %s  eta %s",
		formatters.FormatDuration(m.snap.Elapsed),
		formatters.FormatETA(m.snap.ETA, m.snap.ETAKnown))))
	view.WriteString("\n\n")
	view.WriteString(DimStyle().Render("press q to cancel"))
	view.WriteString("\n")

	return view.String()
}

func (m Model) countersView() string {
	return fmt.Sprintf("%s %s of %s   %s %s   %s %s   %s %s",
		LabelStyle().Render("processed"),
		humanize.Comma(m.snap.Processed), humanize.Comma(m.snap.Goal),
		LabelStyle().Render("copied"), humanize.Comma(m.snap.Copied),
		LabelStyle().Render("skipped"), humanize.Comma(m.snap.Skipped),
		LabelStyle().Render("failed"), humanize.Comma(m.snap.Failed))
}

func (m Model) summaryView() string {
	var view strings.Builder

	switch {
	case m.summary != nil && m.summary.Cancelled:
		view.WriteString(WarningStyle().Render("cancelled"))
	case m.runErr != nil:
		view.WriteString(ErrorStyle().Render("failed: " + m.runErr.Error()))
	case m.summary != nil && m.summary.Complete():
		view.WriteString(SuccessStyle().Render("complete"))
	default:
		view.WriteString(WarningStyle().Render("finished with failures"))
	}

	view.WriteString("\n\n")
	view.WriteString(m.countersView())
	view.WriteString("\n")
	view.WriteString(DimStyle().Render("elapsed " + formatters.FormatDuration(m.snap.Elapsed)))
	view.WriteString("\n")

	return view.String()
}

func tickCmd() tea.Cmd {
	return tea.Tick(TickIntervalMs*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func runEngineCmd(eng *engine.Engine) tea.Cmd {
	return func() tea.Msg {
		summary, err := eng.Run(context.Background())

		return RunDoneMsg{Summary: summary, Err: err}
	}
}
