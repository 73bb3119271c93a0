package models

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dupescan/dupescan/internal/ui/styles"
)

// QuitViewModel gates program exit behind an optional verification
// rescan. It first asks whether to verify; after the rescan it shows
// whether any duplicates remain, then exits on any key.
type QuitViewModel struct {
	resultShown     bool
	groupsRemaining int
	width           int
}

// NewQuitViewModel creates the quit gate in its question state.
func NewQuitViewModel(width int) *QuitViewModel {
	if width == 0 {
		width = 80
	}
	return &QuitViewModel{width: width}
}

// ShowResult switches the view from the question to the rescan outcome.
func (m *QuitViewModel) ShowResult(groupsRemaining int) {
	m.resultShown = true
	m.groupsRemaining = groupsRemaining
}

// Update handles messages
func (m *QuitViewModel) Update(msg tea.Msg) (*QuitViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		if m.resultShown {
			return m, func() tea.Msg { return ExitMsg{} }
		}
		switch msg.String() {
		case "y", "Y":
			return m, func() tea.Msg { return VerifyRequestedMsg{} }
		case "n", "N", "q", "esc", "enter":
			return m, func() tea.Msg { return ExitMsg{} }
		}
	}

	return m, nil
}

// View renders the quit view
func (m *QuitViewModel) View() string {
	var b strings.Builder

	if m.resultShown {
		if m.groupsRemaining == 0 {
			b.WriteString(styles.SuccessStyle.Render("Verified: no duplicate files remain."))
		} else {
			b.WriteString(styles.WarningStyle.Render(
				fmt.Sprintf("%d duplicate group(s) remain.", m.groupsRemaining)))
		}
		b.WriteString("\n\n")
		b.WriteString(styles.HelpStyle.Render("press any key to exit"))
		return b.String()
	}

	b.WriteString(styles.TitleStyle.Render("Quit"))
	b.WriteString("\n\n")
	b.WriteString("Run a verification rescan before exiting?\n")
	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("y:verify and quit  n:quit now"))

	return b.String()
}
