package models

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dupescan/dupescan/internal/session"
	"github.com/dupescan/dupescan/internal/ui/styles"
	"github.com/dupescan/dupescan/pkg/utils"
)

// ConfirmViewModel gates the delete-all operation behind an explicit
// confirmation. Deletion keeps the first member of every group.
type ConfirmViewModel struct {
	sess    *session.Session
	focused int // 0 = cancel, 1 = confirm
	width   int
}

// NewConfirmViewModel creates the confirmation view for a pending bulk delete.
func NewConfirmViewModel(sess *session.Session, width int) *ConfirmViewModel {
	if width == 0 {
		width = 80
	}
	return &ConfirmViewModel{
		sess:  sess,
		width: width,
	}
}

// Update handles messages
func (m *ConfirmViewModel) Update(msg tea.Msg) (*ConfirmViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "left", "h", "right", "l", "tab":
			m.focused = 1 - m.focused
		case "y":
			return m, func() tea.Msg { return BulkConfirmedMsg{} }
		case "n", "esc":
			return m, func() tea.Msg { return BulkCancelledMsg{} }
		case "enter":
			if m.focused == 1 {
				return m, func() tea.Msg { return BulkConfirmedMsg{} }
			}
			return m, func() tea.Msg { return BulkCancelledMsg{} }
		}
	}

	return m, nil
}

// View renders the confirmation view
func (m *ConfirmViewModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Delete all duplicates?"))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("This will delete %s across %d group(s), keeping the first copy of each.\n",
		styles.BoldStyle.Render(fmt.Sprintf("%d file(s)", m.sess.PendingBulkCount())),
		m.sess.GroupCount()))
	b.WriteString(fmt.Sprintf("Space to be recovered: %s\n\n",
		styles.FileSizeStyle.Render(utils.FormatBytes(m.sess.RecoverableBytes()))))

	b.WriteString(styles.WarningStyle.Render("This cannot be undone."))
	b.WriteString("\n\n")

	cancel := " Cancel "
	confirm := " Delete "
	if m.focused == 0 {
		cancel = styles.HighlightStyle.Render(cancel)
		confirm = styles.DimStyle.Render(confirm)
	} else {
		cancel = styles.DimStyle.Render(cancel)
		confirm = styles.ErrorStyle.Render(confirm)
	}
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cancel, "   ", confirm))
	b.WriteString("\n\n")

	b.WriteString(styles.HelpStyle.Render("tab:switch  enter:choose  y:confirm  n/esc:cancel"))

	return b.String()
}
