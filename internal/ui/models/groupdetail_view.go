package models

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dupescan/dupescan/internal/dedup"
	"github.com/dupescan/dupescan/internal/session"
	"github.com/dupescan/dupescan/internal/ui/styles"
	"github.com/dupescan/dupescan/pkg/utils"
)

// GroupDetailModel reviews one group's members for deletion. Every
// member except the first starts selected, matching the keep-first
// convention of bulk deletion.
type GroupDetailModel struct {
	group    *dedup.Group
	groupNum int
	cursor   int
	selected map[int]bool
	status   string
	width    int
}

// NewGroupDetailModel creates a detail view for the group under review.
func NewGroupDetailModel(group *dedup.Group, index, width int) *GroupDetailModel {
	selected := make(map[int]bool, len(group.Members))
	for i := 1; i < len(group.Members); i++ {
		selected[i] = true
	}
	if width == 0 {
		width = 80
	}
	return &GroupDetailModel{
		group:    group,
		groupNum: index + 1,
		selected: selected,
		width:    width,
	}
}

// SetStatus shows an inline error or notice.
func (m *GroupDetailModel) SetStatus(status string) {
	m.status = status
}

// Update handles messages. Deletion goes through the session so the
// keep-one-copy invariant is enforced in one place.
func (m *GroupDetailModel) Update(msg tea.Msg, sess *session.Session) (*GroupDetailModel, tea.Cmd) {
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
			if m.cursor < len(m.group.Members)-1 {
				m.cursor++
			}
		case " ", "space":
			m.selected[m.cursor] = !m.selected[m.cursor]
			m.status = ""
		case "a":
			for i := 1; i < len(m.group.Members); i++ {
				m.selected[i] = true
			}
		case "n":
			m.selected = make(map[int]bool)
		case "esc":
			return m, func() tea.Msg { return DetailClosedMsg{} }
		case "enter":
			indices := m.selection()
			if len(indices) == 0 {
				return m, func() tea.Msg { return DetailClosedMsg{} }
			}
			result, err := sess.DeleteSelection(indices)
			if errors.Is(err, session.ErrRetainOne) {
				m.status = "At least one copy must be kept; deselect one file."
				return m, nil
			}
			return m, func() tea.Msg { return SelectionDeletedMsg{Result: result, Err: err} }
		}
	}

	return m, nil
}

// selection returns the selected member indices in member order.
func (m *GroupDetailModel) selection() []int {
	var indices []int
	for i := range m.group.Members {
		if m.selected[i] {
			indices = append(indices, i)
		}
	}
	return indices
}

// View renders the group detail view
func (m *GroupDetailModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render(fmt.Sprintf("Group %d - %s each", m.groupNum, utils.FormatBytes(m.group.Size))))
	b.WriteString("\n\n")
	b.WriteString(styles.SubtitleStyle.Render("Select files to DELETE; the first file is kept by default."))
	b.WriteString("\n\n")

	for i, path := range m.group.Members {
		box := styles.UncheckedBox()
		if m.selected[i] {
			box = styles.CheckedBox()
		}

		line := fmt.Sprintf("%s %s", box, styles.FilePathStyle.Render(path))
		if i == 0 {
			line += styles.DimStyle.Render(" (kept by default)")
		}

		if i == m.cursor {
			b.WriteString(styles.SelectedStyle.Render("> "))
		} else {
			b.WriteString("  ")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}

	if m.status != "" {
		b.WriteString("\n")
		b.WriteString(styles.ErrorStyle.Render(m.status))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.HelpStyle.Render("space:toggle  a:all but first  n:none  enter:delete selected  esc:back"))

	return b.String()
}
