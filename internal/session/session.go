// Package session implements the interactive review workflow as an
// explicit state machine over one scan report. It performs no terminal
// I/O itself, so transition sequences are testable with synthetic input.
package session

import (
	"context"
	"errors"

	"github.com/dupescan/dupescan/internal/dedup"
	"github.com/dupescan/dupescan/internal/deleter"
)

// State is the current position in the review workflow.
type State int

const (
	StateIdle State = iota
	StateGroupDetail
	StateConfirmBulkDelete
	StateExited
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateGroupDetail:
		return "group-detail"
	case StateConfirmBulkDelete:
		return "confirm-bulk-delete"
	case StateExited:
		return "exited"
	default:
		return "unknown"
	}
}

var (
	// ErrInvalidState means the operation is not legal in the current state.
	ErrInvalidState = errors.New("operation not valid in current state")
	// ErrInvalidSelection means a group or member index was out of range.
	ErrInvalidSelection = errors.New("selection out of range")
	// ErrRetainOne means a selection would delete every member of a group.
	// Each group must keep at least one copy.
	ErrRetainOne = errors.New("cannot delete every copy in a group; at least one must be kept")
	// ErrNoGroups means there are no duplicate groups left to operate on.
	ErrNoGroups = errors.New("no duplicate groups")
)

// Rescanner produces a fresh report for the session's root directory.
type Rescanner func(ctx context.Context) (*dedup.Report, error)

// Session owns the current scan report exclusively and mutates group
// member lists in place as files are deleted. Groups that drop below two
// members become inert and leave the active list. Deletion batches run
// strictly one at a time; a member list is updated only after its batch
// has completed, keeping the in-memory model consistent with disk.
type Session struct {
	state   State
	report  *dedup.Report
	active  []*dedup.Group
	current int
	rescan  Rescanner
	del     *deleter.Deleter
}

// New creates a session over a freshly produced report.
func New(report *dedup.Report, rescan Rescanner, del *deleter.Deleter) *Session {
	s := &Session{
		state:  StateIdle,
		rescan: rescan,
		del:    del,
	}
	s.replaceReport(report)
	return s
}

func (s *Session) replaceReport(report *dedup.Report) {
	s.report = report
	if s.del != nil {
		s.del.SetScope(report.Root)
	}
	s.active = s.active[:0]
	for i := range report.Groups {
		if report.Groups[i].DuplicateCount() > 0 {
			s.active = append(s.active, &report.Groups[i])
		}
	}
	s.current = -1
}

// State returns the current state.
func (s *Session) State() State {
	return s.state
}

// Report returns the current scan report snapshot.
func (s *Session) Report() *dedup.Report {
	return s.report
}

// Groups returns the active duplicate groups, in report order.
func (s *Session) Groups() []*dedup.Group {
	return s.active
}

// GroupCount returns the number of active groups.
func (s *Session) GroupCount() int {
	return len(s.active)
}

// RecoverableBytes returns the space reclaimable from the active groups.
func (s *Session) RecoverableBytes() int64 {
	var total int64
	for _, g := range s.active {
		total += g.Recoverable()
	}
	return total
}

// CurrentGroup returns the group under review while in GroupDetail.
func (s *Session) CurrentGroup() (*dedup.Group, error) {
	if s.state != StateGroupDetail {
		return nil, ErrInvalidState
	}
	return s.active[s.current], nil
}

// CurrentIndex returns the index of the group under review.
func (s *Session) CurrentIndex() int {
	return s.current
}

// ReviewGroup selects a group by index and moves to GroupDetail.
func (s *Session) ReviewGroup(i int) error {
	if s.state != StateIdle {
		return ErrInvalidState
	}
	if i < 0 || i >= len(s.active) {
		return ErrInvalidSelection
	}
	s.current = i
	s.state = StateGroupDetail
	return nil
}

// CloseGroup leaves GroupDetail without deleting anything.
func (s *Session) CloseGroup() error {
	if s.state != StateGroupDetail {
		return ErrInvalidState
	}
	s.current = -1
	s.state = StateIdle
	return nil
}

// DeleteSelection deletes the selected member indices of the group under
// review. A selection covering every member is rejected with ErrRetainOne
// and leaves the session in GroupDetail so the user can re-select.
// On completion the session returns to Idle.
func (s *Session) DeleteSelection(indices []int) (*deleter.BatchResult, error) {
	if s.state != StateGroupDetail {
		return nil, ErrInvalidState
	}
	group := s.active[s.current]

	if len(indices) == 0 {
		return nil, ErrInvalidSelection
	}

	selected := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if idx < 0 || idx >= len(group.Members) {
			return nil, ErrInvalidSelection
		}
		selected[idx] = true
	}
	if len(selected) == len(group.Members) {
		return nil, ErrRetainOne
	}

	paths := make([]string, 0, len(selected))
	for i, path := range group.Members {
		if selected[i] {
			paths = append(paths, path)
		}
	}

	result := s.del.DeleteBatch(paths, group.Size)
	s.applyBatch(group, result)

	s.current = -1
	s.state = StateIdle
	return result, nil
}

// RequestBulkDelete moves to the confirmation gate for delete-all. No
// filesystem mutation happens until ConfirmBulkDelete.
func (s *Session) RequestBulkDelete() error {
	if s.state != StateIdle {
		return ErrInvalidState
	}
	if len(s.active) == 0 {
		return ErrNoGroups
	}
	s.state = StateConfirmBulkDelete
	return nil
}

// PendingBulkCount returns how many files a bulk delete would remove.
func (s *Session) PendingBulkCount() int {
	total := 0
	for _, g := range s.active {
		total += g.DuplicateCount()
	}
	return total
}

// ConfirmBulkDelete deletes all members except the first of every active
// group, one batch per group, sequentially. Each group's member list is
// updated as its batch completes.
func (s *Session) ConfirmBulkDelete() (*deleter.BatchResult, error) {
	if s.state != StateConfirmBulkDelete {
		return nil, ErrInvalidState
	}

	result := &deleter.BatchResult{DryRun: s.del.DryRun()}
	groups := make([]*dedup.Group, len(s.active))
	copy(groups, s.active)

	for _, group := range groups {
		batch := s.del.DeleteBatch(group.Members[1:], group.Size)
		s.applyBatch(group, batch)
		result.Merge(batch)
	}

	s.state = StateIdle
	return result, nil
}

// CancelBulkDelete abandons the confirmation gate.
func (s *Session) CancelBulkDelete() error {
	if s.state != StateConfirmBulkDelete {
		return ErrInvalidState
	}
	s.state = StateIdle
	return nil
}

// Rescan discards the current report and replaces it with a fresh scan
// of the same root. On error the existing report is kept.
func (s *Session) Rescan(ctx context.Context) error {
	if s.state != StateIdle {
		return ErrInvalidState
	}
	report, err := s.rescan(ctx)
	if err != nil {
		return err
	}
	s.replaceReport(report)
	return nil
}

// Replace installs an already-produced report, discarding the current
// one. It is the programmatic form of Rescan for callers that ran the
// scanner themselves.
func (s *Session) Replace(report *dedup.Report) error {
	if s.state != StateIdle {
		return ErrInvalidState
	}
	s.replaceReport(report)
	return nil
}

// Quit moves to the terminal state.
func (s *Session) Quit() error {
	if s.state != StateIdle {
		return ErrInvalidState
	}
	s.state = StateExited
	return nil
}

// applyBatch removes successfully deleted paths from the group's member
// list and drops the group from the active list if it became inert.
func (s *Session) applyBatch(group *dedup.Group, result *deleter.BatchResult) {
	if len(result.Deleted) == 0 {
		return
	}

	deleted := make(map[string]bool, len(result.Deleted))
	for _, path := range result.Deleted {
		deleted[path] = true
	}

	kept := group.Members[:0]
	for _, path := range group.Members {
		if !deleted[path] {
			kept = append(kept, path)
		}
	}
	group.Members = kept

	if group.DuplicateCount() == 0 {
		for i, g := range s.active {
			if g == group {
				s.active = append(s.active[:i], s.active[i+1:]...)
				break
			}
		}
	}

	s.report.RecoverableBytes = s.RecoverableBytes()
}
