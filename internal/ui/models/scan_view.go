package models

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dupescan/dupescan/internal/config"
	"github.com/dupescan/dupescan/internal/progress"
	"github.com/dupescan/dupescan/internal/scanner"
	"github.com/dupescan/dupescan/internal/ui/styles"
)

// ScanViewModel shows a spinner and live progress while the scanner walks
// and hashes the tree.
type ScanViewModel struct {
	config    *config.Config
	root      string
	spinner   spinner.Model
	scanning  bool
	scn       *scanner.Scanner
	updates   <-chan interface{}
	latest    *progress.ScanProgress
	startTime time.Time
	ctx       context.Context
	cancel    context.CancelFunc
}

// scanTickMsg polls the progress reporter between spinner frames.
type scanTickMsg struct{}

// NewScanViewModel creates a new scan view model
func NewScanViewModel(cfg *config.Config, root string) *ScanViewModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = styles.SelectedStyle

	scn := scanner.New(cfg)
	ctx, cancel := context.WithCancel(context.Background())

	return &ScanViewModel{
		config:    cfg,
		root:      root,
		spinner:   s,
		scanning:  true,
		scn:       scn,
		updates:   scn.GetProgressReporter().Subscribe(),
		startTime: time.Now(),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Cancel abandons an in-flight scan. The scan command then delivers a
// ScanDoneMsg carrying the context error.
func (m *ScanViewModel) Cancel() {
	m.cancel()
}

// Init starts the spinner and kicks off the scan.
func (m *ScanViewModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.performScan,
		m.waitForProgress,
	)
}

// performScan runs the scan and delivers the outcome as a message.
func (m *ScanViewModel) performScan() tea.Msg {
	report, err := m.scn.Scan(m.ctx, m.root)
	return ScanDoneMsg{Report: report, Err: err}
}

// waitForProgress relays the next progress update from the scanner.
func (m *ScanViewModel) waitForProgress() tea.Msg {
	if update, ok := <-m.updates; ok {
		if sp, ok := update.(*progress.ScanProgress); ok {
			return sp
		}
	}
	return scanTickMsg{}
}

// Update handles messages
func (m *ScanViewModel) Update(msg tea.Msg) (*ScanViewModel, tea.Cmd) {
	switch msg := msg.(type) {
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case *progress.ScanProgress:
		m.latest = msg
		return m, m.waitForProgress

	case scanTickMsg:
		return m, nil
	}

	return m, nil
}

// View renders the scan view
func (m *ScanViewModel) View() string {
	var b strings.Builder

	b.WriteString(styles.TitleStyle.Render("Scanning for duplicate files"))
	b.WriteString("\n\n")
	b.WriteString(fmt.Sprintf("%s %s\n", m.spinner.View(), m.root))
	b.WriteString("\n")
	b.WriteString(styles.DimStyle.Render(progress.FormatScanProgress(m.latest)))
	b.WriteString("\n\n")
	b.WriteString(styles.HelpStyle.Render("ctrl+c: cancel"))

	return b.String()
}
