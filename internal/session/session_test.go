package session

import (
	"context"
	"errors"
	"testing"

	"github.com/dupescan/dupescan/internal/dedup"
	"github.com/dupescan/dupescan/internal/deleter"
	"github.com/dupescan/dupescan/internal/testutil"
)

// newTestSession builds a session over real temp files so deletion
// batches hit the filesystem.
func newTestSession(t *testing.T, f *testutil.TestFixture) *Session {
	t.Helper()

	g1 := f.CreateDuplicateSet([]byte("0123456789"), "g1/a.txt", "g1/b.txt", "g1/c.txt")
	g2 := f.CreateDuplicateSet([]byte("xy"), "g2/a.txt", "g2/b.txt")

	report := dedup.NewReport(f.RootDir, []dedup.Group{
		{Digest: "d1", Size: 10, Members: g1},
		{Digest: "d2", Size: 2, Members: g2},
	}, 5, nil)

	rescan := func(ctx context.Context) (*dedup.Report, error) {
		return dedup.NewReport(f.RootDir, nil, 0, nil), nil
	}

	return New(report, rescan, deleter.New(false))
}

func TestSessionInitialState(t *testing.T) {
	f := testutil.NewFixture(t)
	s := newTestSession(t, f)

	if s.State() != StateIdle {
		t.Errorf("State() = %s, want idle", s.State())
	}
	if s.GroupCount() != 2 {
		t.Errorf("GroupCount() = %d, want 2", s.GroupCount())
	}
	if s.RecoverableBytes() != 22 {
		t.Errorf("RecoverableBytes() = %d, want 22", s.RecoverableBytes())
	}
	if s.PendingBulkCount() != 3 {
		t.Errorf("PendingBulkCount() = %d, want 3", s.PendingBulkCount())
	}
}

func TestSessionInvalidTransitions(t *testing.T) {
	tests := []struct {
		name string
		op   func(s *Session) error
		prep func(s *Session)
	}{
		{
			name: "delete selection while idle",
			op: func(s *Session) error {
				_, err := s.DeleteSelection([]int{1})
				return err
			},
		},
		{
			name: "close group while idle",
			op:   func(s *Session) error { return s.CloseGroup() },
		},
		{
			name: "confirm bulk while idle",
			op: func(s *Session) error {
				_, err := s.ConfirmBulkDelete()
				return err
			},
		},
		{
			name: "cancel bulk while idle",
			op:   func(s *Session) error { return s.CancelBulkDelete() },
		},
		{
			name: "review group while reviewing",
			prep: func(s *Session) { s.ReviewGroup(0) },
			op:   func(s *Session) error { return s.ReviewGroup(1) },
		},
		{
			name: "rescan while reviewing",
			prep: func(s *Session) { s.ReviewGroup(0) },
			op:   func(s *Session) error { return s.Rescan(context.Background()) },
		},
		{
			name: "quit while confirming",
			prep: func(s *Session) { s.RequestBulkDelete() },
			op:   func(s *Session) error { return s.Quit() },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testutil.NewFixture(t)
			s := newTestSession(t, f)
			if tt.prep != nil {
				tt.prep(s)
			}
			if err := tt.op(s); !errors.Is(err, ErrInvalidState) {
				t.Errorf("error = %v, want ErrInvalidState", err)
			}
		})
	}
}

func TestSessionReviewGroupBounds(t *testing.T) {
	f := testutil.NewFixture(t)
	s := newTestSession(t, f)

	if err := s.ReviewGroup(5); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("ReviewGroup(5) error = %v, want ErrInvalidSelection", err)
	}
	if err := s.ReviewGroup(-1); !errors.Is(err, ErrInvalidSelection) {
		t.Errorf("ReviewGroup(-1) error = %v, want ErrInvalidSelection", err)
	}
	if s.State() != StateIdle {
		t.Errorf("state = %s after failed review, want idle", s.State())
	}
}

func TestSessionReviewAndClose(t *testing.T) {
	f := testutil.NewFixture(t)
	s := newTestSession(t, f)

	if err := s.ReviewGroup(0); err != nil {
		t.Fatalf("ReviewGroup() error = %v", err)
	}
	if s.State() != StateGroupDetail {
		t.Errorf("state = %s, want group-detail", s.State())
	}

	group, err := s.CurrentGroup()
	if err != nil {
		t.Fatalf("CurrentGroup() error = %v", err)
	}
	if len(group.Members) != 3 {
		t.Errorf("group members = %d, want 3", len(group.Members))
	}

	if err := s.CloseGroup(); err != nil {
		t.Fatalf("CloseGroup() error = %v", err)
	}
	if s.State() != StateIdle {
		t.Errorf("state = %s, want idle", s.State())
	}
	if s.GroupCount() != 2 {
		t.Errorf("GroupCount() = %d after close, want 2 (nothing deleted)", s.GroupCount())
	}
}

func TestSessionDeleteSelection(t *testing.T) {
	f := testutil.NewFixture(t)
	s := newTestSession(t, f)

	s.ReviewGroup(0)
	group, _ := s.CurrentGroup()
	keep := group.Members[0]
	gone := group.Members[2]

	result, err := s.DeleteSelection([]int{2})
	if err != nil {
		t.Fatalf("DeleteSelection() error = %v", err)
	}
	if len(result.Deleted) != 1 {
		t.Errorf("Deleted = %d, want 1", len(result.Deleted))
	}
	if result.DeletedBytes != 10 {
		t.Errorf("DeletedBytes = %d, want 10", result.DeletedBytes)
	}

	f.AssertFileNotExists(gone)
	f.AssertFileExists(keep)

	if s.State() != StateIdle {
		t.Errorf("state = %s, want idle after deletion", s.State())
	}
	// Group shrank to a pair but stays active.
	if s.GroupCount() != 2 {
		t.Errorf("GroupCount() = %d, want 2", s.GroupCount())
	}
	if s.RecoverableBytes() != 12 {
		t.Errorf("RecoverableBytes() = %d, want 12", s.RecoverableBytes())
	}
	if s.Report().RecoverableBytes != 12 {
		t.Errorf("report total = %d, want 12", s.Report().RecoverableBytes)
	}
}

func TestSessionDeleteSelectionValidation(t *testing.T) {
	tests := []struct {
		name    string
		indices []int
		want    error
	}{
		{"empty selection", nil, ErrInvalidSelection},
		{"out of range", []int{7}, ErrInvalidSelection},
		{"negative index", []int{-1}, ErrInvalidSelection},
		{"all members", []int{0, 1, 2}, ErrRetainOne},
		{"all members with duplicates", []int{0, 1, 2, 2, 0}, ErrRetainOne},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testutil.NewFixture(t)
			s := newTestSession(t, f)
			s.ReviewGroup(0)

			_, err := s.DeleteSelection(tt.indices)
			if !errors.Is(err, tt.want) {
				t.Fatalf("error = %v, want %v", err, tt.want)
			}
			// Rejection keeps the session in detail for re-selection.
			if s.State() != StateGroupDetail {
				t.Errorf("state = %s, want group-detail", s.State())
			}
			group, _ := s.CurrentGroup()
			if len(group.Members) != 3 {
				t.Errorf("members = %d, want 3 (nothing deleted)", len(group.Members))
			}
		})
	}
}

func TestSessionGroupBecomesInert(t *testing.T) {
	f := testutil.NewFixture(t)
	s := newTestSession(t, f)

	// Delete both duplicates of the first group; it should leave the
	// active list, leaving only the pair group.
	s.ReviewGroup(0)
	if _, err := s.DeleteSelection([]int{1, 2}); err != nil {
		t.Fatalf("DeleteSelection() error = %v", err)
	}

	if s.GroupCount() != 1 {
		t.Errorf("GroupCount() = %d, want 1", s.GroupCount())
	}
	if s.RecoverableBytes() != 2 {
		t.Errorf("RecoverableBytes() = %d, want 2", s.RecoverableBytes())
	}
}

func TestSessionBulkDelete(t *testing.T) {
	f := testutil.NewFixture(t)
	s := newTestSession(t, f)

	firstOfEach := []string{s.Groups()[0].Members[0], s.Groups()[1].Members[0]}

	if err := s.RequestBulkDelete(); err != nil {
		t.Fatalf("RequestBulkDelete() error = %v", err)
	}
	if s.State() != StateConfirmBulkDelete {
		t.Errorf("state = %s, want confirm-bulk-delete", s.State())
	}

	result, err := s.ConfirmBulkDelete()
	if err != nil {
		t.Fatalf("ConfirmBulkDelete() error = %v", err)
	}

	if len(result.Deleted) != 3 {
		t.Errorf("Deleted = %d, want 3", len(result.Deleted))
	}
	if result.DeletedBytes != 22 {
		t.Errorf("DeletedBytes = %d, want 22", result.DeletedBytes)
	}

	// One copy of each group survives.
	for _, path := range firstOfEach {
		f.AssertFileExists(path)
	}

	if s.State() != StateIdle {
		t.Errorf("state = %s, want idle", s.State())
	}
	if s.GroupCount() != 0 {
		t.Errorf("GroupCount() = %d, want 0", s.GroupCount())
	}
	if s.RecoverableBytes() != 0 {
		t.Errorf("RecoverableBytes() = %d, want 0", s.RecoverableBytes())
	}
}

func TestSessionBulkDeleteCancelled(t *testing.T) {
	f := testutil.NewFixture(t)
	s := newTestSession(t, f)

	s.RequestBulkDelete()
	if err := s.CancelBulkDelete(); err != nil {
		t.Fatalf("CancelBulkDelete() error = %v", err)
	}

	if s.State() != StateIdle {
		t.Errorf("state = %s, want idle", s.State())
	}
	if s.GroupCount() != 2 {
		t.Errorf("GroupCount() = %d, want 2 (nothing deleted)", s.GroupCount())
	}
}

func TestSessionBulkDeleteNoGroups(t *testing.T) {
	report := dedup.NewReport("/tmp/none", nil, 0, nil)
	s := New(report, nil, deleter.New(false))

	if err := s.RequestBulkDelete(); !errors.Is(err, ErrNoGroups) {
		t.Errorf("RequestBulkDelete() error = %v, want ErrNoGroups", err)
	}
	if s.State() != StateIdle {
		t.Errorf("state = %s, want idle", s.State())
	}
}

func TestSessionRescan(t *testing.T) {
	f := testutil.NewFixture(t)

	fresh := dedup.NewReport(f.RootDir, []dedup.Group{
		{Digest: "new", Size: 5, Members: []string{f.Path("n1"), f.Path("n2")}},
	}, 2, nil)

	calls := 0
	rescan := func(ctx context.Context) (*dedup.Report, error) {
		calls++
		return fresh, nil
	}

	stale := dedup.NewReport(f.RootDir, []dedup.Group{
		{Digest: "old", Size: 9, Members: []string{f.Path("o1"), f.Path("o2"), f.Path("o3")}},
	}, 3, nil)

	s := New(stale, rescan, deleter.New(false))
	if err := s.Rescan(context.Background()); err != nil {
		t.Fatalf("Rescan() error = %v", err)
	}

	if calls != 1 {
		t.Errorf("rescanner called %d times, want 1", calls)
	}
	if s.Report() != fresh {
		t.Error("report not replaced")
	}
	if s.GroupCount() != 1 || s.RecoverableBytes() != 5 {
		t.Errorf("GroupCount() = %d, RecoverableBytes() = %d; want 1, 5",
			s.GroupCount(), s.RecoverableBytes())
	}
}

func TestSessionRescanFailureKeepsReport(t *testing.T) {
	scanErr := errors.New("disk on fire")
	rescan := func(ctx context.Context) (*dedup.Report, error) {
		return nil, scanErr
	}

	stale := dedup.NewReport("/tmp/r", []dedup.Group{
		{Digest: "d", Size: 1, Members: []string{"/tmp/r/a", "/tmp/r/b"}},
	}, 2, nil)

	s := New(stale, rescan, deleter.New(false))
	if err := s.Rescan(context.Background()); !errors.Is(err, scanErr) {
		t.Fatalf("Rescan() error = %v, want %v", err, scanErr)
	}

	if s.Report() != stale {
		t.Error("failed rescan must keep the existing report")
	}
	if s.GroupCount() != 1 {
		t.Errorf("GroupCount() = %d, want 1", s.GroupCount())
	}
}

func TestSessionReplace(t *testing.T) {
	f := testutil.NewFixture(t)
	s := newTestSession(t, f)

	fresh := dedup.NewReport(f.RootDir, nil, 0, nil)
	if err := s.Replace(fresh); err != nil {
		t.Fatalf("Replace() error = %v", err)
	}
	if s.GroupCount() != 0 {
		t.Errorf("GroupCount() = %d, want 0", s.GroupCount())
	}

	s.state = StateGroupDetail
	if err := s.Replace(fresh); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Replace() in detail error = %v, want ErrInvalidState", err)
	}
}

func TestSessionQuit(t *testing.T) {
	f := testutil.NewFixture(t)
	s := newTestSession(t, f)

	if err := s.Quit(); err != nil {
		t.Fatalf("Quit() error = %v", err)
	}
	if s.State() != StateExited {
		t.Errorf("state = %s, want exited", s.State())
	}
	if err := s.Quit(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second Quit() error = %v, want ErrInvalidState", err)
	}
}

func TestSessionSingleMemberGroupsInertFromStart(t *testing.T) {
	report := dedup.NewReport("/tmp/r", []dedup.Group{
		{Digest: "pair", Size: 4, Members: []string{"/tmp/r/a", "/tmp/r/b"}},
		{Digest: "lone", Size: 4, Members: []string{"/tmp/r/c"}},
	}, 3, nil)

	s := New(report, nil, deleter.New(false))
	if s.GroupCount() != 1 {
		t.Errorf("GroupCount() = %d, want 1 (single-member groups excluded)", s.GroupCount())
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateIdle, "idle"},
		{StateGroupDetail, "group-detail"},
		{StateConfirmBulkDelete, "confirm-bulk-delete"},
		{StateExited, "exited"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %s, want %s", tt.state, got, tt.want)
		}
	}
}
