package models

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dupescan/dupescan/internal/config"
	"github.com/dupescan/dupescan/internal/dedup"
	"github.com/dupescan/dupescan/internal/deleter"
	"github.com/dupescan/dupescan/internal/scanner"
	"github.com/dupescan/dupescan/internal/session"
)

// ViewState represents the current view in the app. Views follow the
// review session's states: the group list is the idle menu, the detail
// view is one group under review, and the confirm view is the bulk
// deletion gate.
type ViewState int

const (
	ViewScanning ViewState = iota
	ViewGroupList
	ViewGroupDetail
	ViewConfirmBulk
	ViewQuitVerify
)

// AppModel is the root model for the interactive TUI
type AppModel struct {
	state ViewState

	config *config.Config
	root   string
	sess   *session.Session

	scanView    *ScanViewModel
	listView    *GroupListModel
	detailView  *GroupDetailModel
	confirmView *ConfirmViewModel
	quitView    *QuitViewModel

	// verifying marks the scan in flight as the quit-time verification
	// rescan rather than a regular (re)scan.
	verifying bool

	width  int
	height int
	err    error
}

// NewAppModel creates a new app model for reviewing duplicates under root.
func NewAppModel(cfg *config.Config, root string) *AppModel {
	return &AppModel{
		state:  ViewScanning,
		config: cfg,
		root:   root,
	}
}

// Init starts the initial scan immediately.
func (m *AppModel) Init() tea.Cmd {
	m.scanView = NewScanViewModel(m.config, m.root)
	return m.scanView.Init()
}

// Update handles messages
func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			if m.scanView != nil {
				m.scanView.Cancel()
			}
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case ScanDoneMsg:
		if msg.Err != nil {
			m.err = msg.Err
			return m, tea.Quit
		}
		m.attachSession(msg.Report)
		m.listView = NewGroupListModel(m.sess, m.width)
		if m.verifying {
			m.verifying = false
			m.quitView.ShowResult(m.sess.GroupCount())
			m.state = ViewQuitVerify
			return m, nil
		}
		m.state = ViewGroupList
		return m, nil

	case GroupChosenMsg:
		if err := m.sess.ReviewGroup(msg.Index); err != nil {
			m.listView.SetStatus("Invalid selection.")
			return m, nil
		}
		group, _ := m.sess.CurrentGroup()
		m.detailView = NewGroupDetailModel(group, msg.Index, m.width)
		m.state = ViewGroupDetail
		return m, nil

	case DetailClosedMsg:
		m.sess.CloseGroup()
		m.state = ViewGroupList
		return m, nil

	case SelectionDeletedMsg:
		if msg.Err != nil {
			m.detailView.SetStatus(msg.Err.Error())
			return m, nil
		}
		m.listView.RecordBatch(msg.Result)
		m.state = ViewGroupList
		return m, nil

	case BulkRequestedMsg:
		if err := m.sess.RequestBulkDelete(); err != nil {
			m.listView.SetStatus("Nothing to delete.")
			return m, nil
		}
		m.confirmView = NewConfirmViewModel(m.sess, m.width)
		m.state = ViewConfirmBulk
		return m, nil

	case BulkConfirmedMsg:
		result, err := m.sess.ConfirmBulkDelete()
		if err != nil {
			m.err = err
			return m, tea.Quit
		}
		m.listView.RecordBatch(result)
		m.state = ViewGroupList
		return m, nil

	case BulkCancelledMsg:
		m.sess.CancelBulkDelete()
		m.listView.SetStatus("Cancelled.")
		m.state = ViewGroupList
		return m, nil

	case RescanRequestedMsg:
		m.state = ViewScanning
		m.scanView = NewScanViewModel(m.config, m.root)
		return m, m.scanView.Init()

	case QuitMsg:
		m.quitView = NewQuitViewModel(m.width)
		m.state = ViewQuitVerify
		return m, nil

	case VerifyRequestedMsg:
		m.verifying = true
		m.state = ViewScanning
		m.scanView = NewScanViewModel(m.config, m.root)
		return m, m.scanView.Init()

	case ExitMsg:
		if m.sess != nil && m.sess.State() == session.StateIdle {
			m.sess.Quit()
		}
		return m, tea.Quit
	}

	return m.delegateUpdate(msg)
}

// attachSession builds or refreshes the session for a completed scan.
func (m *AppModel) attachSession(report *dedup.Report) {
	if m.sess != nil && m.sess.State() == session.StateIdle {
		// Rescan path: replace the report wholesale.
		m.sess.Replace(report)
		return
	}
	rescan := func(ctx context.Context) (*dedup.Report, error) {
		return scanner.New(m.config).Scan(ctx, m.root)
	}
	m.sess = session.New(report, rescan, deleter.New(m.config.DryRun))
}

// delegateUpdate delegates the update to the current view
func (m *AppModel) delegateUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.state {
	case ViewScanning:
		if m.scanView != nil {
			m.scanView, cmd = m.scanView.Update(msg)
		}
	case ViewGroupList:
		if m.listView != nil {
			m.listView, cmd = m.listView.Update(msg)
		}
	case ViewGroupDetail:
		if m.detailView != nil {
			m.detailView, cmd = m.detailView.Update(msg, m.sess)
		}
	case ViewConfirmBulk:
		if m.confirmView != nil {
			m.confirmView, cmd = m.confirmView.Update(msg)
		}
	case ViewQuitVerify:
		if m.quitView != nil {
			m.quitView, cmd = m.quitView.Update(msg)
		}
	}

	return m, cmd
}

// View renders the current view
func (m *AppModel) View() string {
	if m.err != nil {
		return "Error: " + m.err.Error() + "\n\nPress ctrl+c to quit."
	}

	switch m.state {
	case ViewScanning:
		if m.scanView != nil {
			return m.scanView.View()
		}
	case ViewGroupList:
		if m.listView != nil {
			return m.listView.View()
		}
	case ViewGroupDetail:
		if m.detailView != nil {
			return m.detailView.View()
		}
	case ViewConfirmBulk:
		if m.confirmView != nil {
			return m.confirmView.View()
		}
	case ViewQuitVerify:
		if m.quitView != nil {
			return m.quitView.View()
		}
	}

	return "Loading..."
}

// Custom messages

// ScanDoneMsg reports a completed (or failed) scan.
type ScanDoneMsg struct {
	Report *dedup.Report
	Err    error
}

// GroupChosenMsg selects a group for detail review.
type GroupChosenMsg struct {
	Index int
}

// DetailClosedMsg leaves the detail view without deleting.
type DetailClosedMsg struct{}

// SelectionDeletedMsg reports the outcome of an in-group deletion batch.
type SelectionDeletedMsg struct {
	Result *deleter.BatchResult
	Err    error
}

// BulkRequestedMsg asks for the delete-all confirmation gate.
type BulkRequestedMsg struct{}

// BulkConfirmedMsg confirms the bulk deletion.
type BulkConfirmedMsg struct{}

// BulkCancelledMsg abandons the bulk deletion.
type BulkCancelledMsg struct{}

// RescanRequestedMsg discards the report and starts a fresh scan.
type RescanRequestedMsg struct{}

// QuitMsg opens the quit gate, which offers a verification rescan.
type QuitMsg struct{}

// VerifyRequestedMsg starts the quit-time verification rescan.
type VerifyRequestedMsg struct{}

// ExitMsg terminates the program.
type ExitMsg struct{}
