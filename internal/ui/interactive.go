package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dupescan/dupescan/internal/config"
	"github.com/dupescan/dupescan/internal/ui/models"
)

// RunInteractive launches the full-screen review interface for root.
func RunInteractive(cfg *config.Config, root string) error {
	app := models.NewAppModel(cfg, root)

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("interactive mode failed: %w", err)
	}

	return nil
}
