package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pkovacs/cloudkeeper/internal/engine"
)

// Run drives a reconcile run under the full-screen progress view and returns
// the engine's final summary and error once the program exits.
func Run(eng *engine.Engine) (*engine.Summary, error) {
	program := tea.NewProgram(NewModel(eng))

	finalModel, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("progress view failed: %w", err)
	}

	model, ok := finalModel.(Model)
	if !ok {
		return nil, fmt.Errorf("unexpected final model type %T", finalModel)
	}

	return model.Summary(), model.RunErr()
}
