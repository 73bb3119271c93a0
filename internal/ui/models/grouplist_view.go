package models

import (
	"fmt"
	"strings"

	prog "github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dupescan/dupescan/internal/deleter"
	"github.com/dupescan/dupescan/internal/session"
	"github.com/dupescan/dupescan/internal/ui/styles"
	"github.com/dupescan/dupescan/pkg/utils"
)

// GroupListModel is the idle view: the duplicate groups of the current
// report plus the main actions. A progress bar tracks how much of the
// report's recoverable space has been freed so far this session.
type GroupListModel struct {
	sess       *session.Session
	cursor     int
	freedBytes int64
	planBytes  int64
	freedBar   prog.Model
	status     string
	width      int
}

// NewGroupListModel creates the group list for the current report.
func NewGroupListModel(sess *session.Session, width int) *GroupListModel {
	bar := prog.New(prog.WithDefaultGradient())
	if width == 0 {
		width = 80
	}
	return &GroupListModel{
		sess:      sess,
		planBytes: sess.RecoverableBytes(),
		freedBar:  bar,
		width:     width,
	}
}

// SetStatus shows a one-line status message above the menu.
func (m *GroupListModel) SetStatus(status string) {
	m.status = status
}

// RecordBatch folds a completed deletion batch into the view's status
// line and freed-space tally.
func (m *GroupListModel) RecordBatch(result *deleter.BatchResult) {
	m.freedBytes += result.DeletedBytes

	status := fmt.Sprintf("Deleted %d file(s), recovered %s",
		len(result.Deleted), utils.FormatBytes(result.DeletedBytes))
	if result.DryRun {
		status += " [dry run]"
	}
	if len(result.Failed) > 0 {
		status += fmt.Sprintf(", %d failed", len(result.Failed))
	}
	m.status = status

	if m.cursor >= m.sess.GroupCount() && m.cursor > 0 {
		m.cursor = m.sess.GroupCount() - 1
	}
}

// Update handles messages
func (m *GroupListModel) Update(msg tea.Msg) (*GroupListModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < m.sess.GroupCount()-1 {
				m.cursor++
			}
		case "enter":
			if m.sess.GroupCount() > 0 {
				cursor := m.cursor
				return m, func() tea.Msg { return GroupChosenMsg{Index: cursor} }
			}
		case "d":
			return m, func() tea.Msg { return BulkRequestedMsg{} }
		case "r":
			return m, func() tea.Msg { return RescanRequestedMsg{} }
		case "q":
			return m, func() tea.Msg { return QuitMsg{} }
		}
	}

	return m, nil
}

// View renders the group list view
func (m *GroupListModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Duplicate File Review"))
	b.WriteString("\n\n")

	report := m.sess.Report()
	if m.sess.GroupCount() == 0 {
		b.WriteString(styles.SuccessStyle.Render("No duplicate files remain."))
		b.WriteString("\n\n")
		b.WriteString(styles.HelpStyle.Render("r:rescan  q:quit"))
		return b.String()
	}

	b.WriteString(fmt.Sprintf("%d group(s), %d duplicate file(s), %s recoverable\n",
		m.sess.GroupCount(),
		m.sess.PendingBulkCount(),
		styles.FileSizeStyle.Render(utils.FormatBytes(m.sess.RecoverableBytes()))))
	b.WriteString(styles.DimStyle.Render(fmt.Sprintf("scanned %d files under %s", report.TotalFiles, report.Root)))
	b.WriteString("\n\n")

	if m.planBytes > 0 && m.freedBytes > 0 {
		pct := float64(m.freedBytes) / float64(m.planBytes)
		if pct > 1 {
			pct = 1
		}
		b.WriteString(fmt.Sprintf("Freed %s of %s\n", utils.FormatBytes(m.freedBytes), utils.FormatBytes(m.planBytes)))
		b.WriteString(m.freedBar.ViewAs(pct))
		b.WriteString("\n\n")
	}

	for i, group := range m.sess.Groups() {
		line := fmt.Sprintf("Group %d - %s (%d files), %s recoverable",
			i+1,
			utils.FormatBytes(group.Size),
			len(group.Members),
			utils.FormatBytes(group.Recoverable()))
		if i == m.cursor {
			b.WriteString(styles.HighlightStyle.Render("> " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(styles.WarningStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("↑/↓:navigate  enter:review  d:delete all  r:rescan  q:quit"))

	return b.String()
}
