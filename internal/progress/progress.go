package progress

import (
	"fmt"
	"sync"
	"time"

	"github.com/dupescan/dupescan/pkg/utils"
)

// Phase represents the current phase of operation
type Phase string

const (
	PhaseWalking  Phase = "walking"
	PhaseHashing  Phase = "hashing"
	PhaseDeleting Phase = "deleting"
	PhaseComplete Phase = "complete"
	PhaseError    Phase = "error"
)

// ScanProgress represents progress during the walk and hash phases
type ScanProgress struct {
	Phase       Phase
	CurrentPath string
	FilesFound  int
	TotalSize   int64
	HashedFiles int
	TotalToHash int
	StartTime   time.Time
	Error       error
}

// DeleteProgress represents progress during a deletion batch
type DeleteProgress struct {
	Phase        Phase
	CurrentFile  string
	DeletedFiles int
	TotalFiles   int
	DeletedSize  int64
	FailedFiles  int
	StartTime    time.Time
	Error        error
}

// Reporter provides thread-safe progress reporting to any number of
// subscribed listeners. Updates are delivered non-blocking; a listener
// that falls behind misses intermediate updates rather than stalling
// the operation.
type Reporter struct {
	scanProgress   *ScanProgress
	deleteProgress *DeleteProgress
	mu             sync.RWMutex
	listeners      []chan interface{}
}

// NewReporter creates a new progress reporter
func NewReporter() *Reporter {
	return &Reporter{
		listeners: make([]chan interface{}, 0),
	}
}

// Subscribe returns a channel that receives progress updates
func (r *Reporter) Subscribe() <-chan interface{} {
	r.mu.Lock()
	defer r.mu.Unlock()

	ch := make(chan interface{}, 10)
	r.listeners = append(r.listeners, ch)
	return ch
}

// Unsubscribe closes and removes a listener channel
func (r *Reporter) Unsubscribe(ch <-chan interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, listener := range r.listeners {
		if listener == ch {
			close(listener)
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

// UpdateScan updates scan progress and notifies listeners
func (r *Reporter) UpdateScan(update *ScanProgress) {
	r.mu.Lock()
	r.scanProgress = update
	listeners := make([]chan interface{}, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, listener := range listeners {
		select {
		case listener <- update:
		default:
		}
	}
}

// UpdateDelete updates deletion progress and notifies listeners
func (r *Reporter) UpdateDelete(update *DeleteProgress) {
	r.mu.Lock()
	r.deleteProgress = update
	listeners := make([]chan interface{}, len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, listener := range listeners {
		select {
		case listener <- update:
		default:
		}
	}
}

// GetScan returns the most recent scan progress
func (r *Reporter) GetScan() *ScanProgress {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scanProgress
}

// GetDelete returns the most recent deletion progress
func (r *Reporter) GetDelete() *DeleteProgress {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.deleteProgress
}

// FormatScanProgress returns a human-readable scan progress string
func FormatScanProgress(p *ScanProgress) string {
	if p == nil {
		return "Initializing..."
	}

	elapsed := time.Since(p.StartTime)

	switch p.Phase {
	case PhaseWalking:
		return fmt.Sprintf("Walking... Found %d files (%s) [%s]",
			p.FilesFound,
			utils.FormatBytes(p.TotalSize),
			FormatDuration(elapsed))
	case PhaseHashing:
		return fmt.Sprintf("Hashing candidates... %d/%d [%s]",
			p.HashedFiles,
			p.TotalToHash,
			FormatDuration(elapsed))
	case PhaseComplete:
		return fmt.Sprintf("Scan complete: %d files (%s) in %s",
			p.FilesFound,
			utils.FormatBytes(p.TotalSize),
			FormatDuration(elapsed))
	case PhaseError:
		return fmt.Sprintf("Scan error: %v", p.Error)
	default:
		return "Scanning..."
	}
}

// FormatDeleteProgress returns a human-readable deletion progress string
func FormatDeleteProgress(p *DeleteProgress) string {
	if p == nil {
		return "Preparing..."
	}

	switch p.Phase {
	case PhaseDeleting:
		return fmt.Sprintf("Deleting... %d/%d files - %s freed",
			p.DeletedFiles,
			p.TotalFiles,
			utils.FormatBytes(p.DeletedSize))
	case PhaseComplete:
		return fmt.Sprintf("Deleted %d file(s), recovered %s",
			p.DeletedFiles,
			utils.FormatBytes(p.DeletedSize))
	case PhaseError:
		return fmt.Sprintf("Deletion error: %v", p.Error)
	default:
		return "Preparing deletion..."
	}
}

// FormatDuration formats duration in human-readable format
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)

	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	s := d / time.Second

	if h > 0 {
		return fmt.Sprintf("%dh%dm%ds", h, m, s)
	}
	if m > 0 {
		return fmt.Sprintf("%dm%ds", m, s)
	}
	return fmt.Sprintf("%ds", s)
}
