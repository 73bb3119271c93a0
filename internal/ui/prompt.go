package ui

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dupescan/dupescan/internal/deleter"
	"github.com/dupescan/dupescan/internal/reporter"
	"github.com/dupescan/dupescan/internal/session"
	"github.com/dupescan/dupescan/pkg/utils"
)

// Prompt is the line-oriented review frontend: a numbered menu driving
// the session state machine. It reads from any io.Reader, so the whole
// workflow can be exercised with scripted input.
type Prompt struct {
	sess *session.Session
	in   *bufio.Scanner
	out  io.Writer
}

// NewPrompt creates a prompt frontend over a session.
func NewPrompt(sess *session.Session, in io.Reader, out io.Writer) *Prompt {
	return &Prompt{
		sess: sess,
		in:   bufio.NewScanner(in),
		out:  out,
	}
}

// Run loops over the main menu until the session exits. Out-of-range
// input is reported and re-prompted, never fatal.
func (p *Prompt) Run(ctx context.Context) error {
	for p.sess.State() != session.StateExited {
		if err := ctx.Err(); err != nil {
			return err
		}

		if p.sess.GroupCount() == 0 {
			fmt.Fprintln(p.out, "\nNo duplicates to manage. Exiting.")
			return p.sess.Quit()
		}

		choice, ok := p.menu()
		if !ok {
			// Input exhausted; leave cleanly.
			return p.sess.Quit()
		}

		switch choice {
		case 1:
			p.reviewGroup()
		case 2:
			p.deleteAll()
		case 3:
			p.rescan(ctx)
		case 4:
			if err := p.quit(ctx); err != nil {
				return err
			}
		default:
			fmt.Fprintln(p.out, "Invalid selection, please choose 1-4.")
		}
	}
	return nil
}

// menu prints the main menu and reads one numbered choice.
func (p *Prompt) menu() (int, bool) {
	fmt.Fprintln(p.out, "\nWhat would you like to do?")
	fmt.Fprintf(p.out, "  1. Review a group (1-%d)\n", p.sess.GroupCount())
	fmt.Fprintln(p.out, "  2. Delete all duplicates (keep first of each group)")
	fmt.Fprintln(p.out, "  3. Rescan directory")
	fmt.Fprintln(p.out, "  4. Quit")
	fmt.Fprint(p.out, "Choice: ")

	line, ok := p.readLine()
	if !ok {
		return 0, false
	}
	choice, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		return 0, true // reported as invalid by the caller
	}
	return choice, true
}

// reviewGroup walks the review-one-group flow: pick a group, show its
// members, read a deletion selection, run the batch.
func (p *Prompt) reviewGroup() {
	fmt.Fprintf(p.out, "Group number (1-%d): ", p.sess.GroupCount())
	line, ok := p.readLine()
	if !ok {
		return
	}

	num, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil {
		fmt.Fprintln(p.out, "Invalid group number.")
		return
	}
	if err := p.sess.ReviewGroup(num - 1); err != nil {
		fmt.Fprintf(p.out, "Invalid group number: %v\n", err)
		return
	}

	group, _ := p.sess.CurrentGroup()
	fmt.Fprintf(p.out, "\nGroup %d - %s each\n\n", num, utils.FormatBytes(group.Size))
	for i, path := range group.Members {
		if i == 0 {
			fmt.Fprintf(p.out, "  %d. %s (kept by default)\n", i+1, path)
		} else {
			fmt.Fprintf(p.out, "  %d. %s\n", i+1, path)
		}
	}

	for {
		fmt.Fprint(p.out, "\nFiles to DELETE (numbers separated by spaces, empty to cancel): ")
		line, ok := p.readLine()
		if !ok || strings.TrimSpace(line) == "" {
			p.sess.CloseGroup()
			fmt.Fprintln(p.out, "Nothing deleted.")
			return
		}

		indices, err := parseSelection(line, len(group.Members))
		if err != nil {
			fmt.Fprintf(p.out, "%v\n", err)
			continue
		}

		result, err := p.sess.DeleteSelection(indices)
		switch {
		case errors.Is(err, session.ErrRetainOne):
			fmt.Fprintln(p.out, "At least one copy must be kept; deselect one file.")
			continue
		case errors.Is(err, session.ErrInvalidSelection):
			fmt.Fprintln(p.out, "Selection out of range.")
			continue
		case err != nil:
			fmt.Fprintf(p.out, "Error: %v\n", err)
			return
		}

		p.printBatch(result)
		return
	}
}

// deleteAll runs the bulk-delete flow behind its confirmation gate.
func (p *Prompt) deleteAll() {
	if err := p.sess.RequestBulkDelete(); err != nil {
		fmt.Fprintf(p.out, "Error: %v\n", err)
		return
	}

	fmt.Fprintf(p.out, "\nThis will delete %d file(s), keeping the first file from each group.\n",
		p.sess.PendingBulkCount())
	fmt.Fprint(p.out, "Are you sure you want to proceed? (y/N): ")

	line, _ := p.readLine()
	if !isYes(line, false) {
		p.sess.CancelBulkDelete()
		fmt.Fprintln(p.out, "Cancelled.")
		return
	}

	result, err := p.sess.ConfirmBulkDelete()
	if err != nil {
		fmt.Fprintf(p.out, "Error: %v\n", err)
		return
	}
	p.printBatch(result)
}

// rescan replaces the report and re-prints the summary.
func (p *Prompt) rescan(ctx context.Context) {
	fmt.Fprintf(p.out, "\nRescanning %s...\n", p.sess.Report().Root)
	if err := p.sess.Rescan(ctx); err != nil {
		fmt.Fprintf(p.out, "Error rescanning: %v\n", err)
		return
	}
	reporter.New(p.out, reporter.FormatSummary).Report(p.sess.Report())
}

// quit offers a final verification rescan before terminating.
func (p *Prompt) quit(ctx context.Context) error {
	fmt.Fprint(p.out, "Would you like to rescan to verify no duplicates remain? (Y/n): ")
	line, _ := p.readLine()

	if isYes(line, true) {
		if err := p.sess.Rescan(ctx); err != nil {
			fmt.Fprintf(p.out, "Error rescanning: %v\n", err)
		} else if p.sess.GroupCount() == 0 {
			fmt.Fprintln(p.out, "\nVerified: no duplicate files remain.")
			return p.sess.Quit()
		} else {
			reporter.New(p.out, reporter.FormatSummary).Report(p.sess.Report())
			return nil // back to the menu with the fresh report
		}
	}

	fmt.Fprintln(p.out, "Goodbye!")
	return p.sess.Quit()
}

// printBatch prints per-file outcomes and the aggregate batch summary.
func (p *Prompt) printBatch(result *deleter.BatchResult) {
	for _, path := range result.Deleted {
		fmt.Fprintf(p.out, "  Deleted: %s\n", path)
	}
	for _, failure := range result.Failed {
		fmt.Fprintf(p.out, "  %s\n", failure.UserMessage())
	}

	fmt.Fprintf(p.out, "\nDeleted %d file(s), recovered %s",
		len(result.Deleted), utils.FormatBytes(result.DeletedBytes))
	if result.DryRun {
		fmt.Fprint(p.out, " [dry run]")
	}
	fmt.Fprintln(p.out)

	if len(result.Failed) > 0 {
		fmt.Fprintf(p.out, "%d file(s) could not be deleted.\n", len(result.Failed))
		fmt.Fprint(p.out, deleter.FormatErrorSummary(result.Failed))
	}
}

func (p *Prompt) readLine() (string, bool) {
	if !p.in.Scan() {
		return "", false
	}
	return p.in.Text(), true
}

// parseSelection converts 1-based space-separated file numbers to
// 0-based member indices.
func parseSelection(line string, memberCount int) ([]int, error) {
	fields := strings.Fields(strings.ReplaceAll(line, ",", " "))
	indices := make([]int, 0, len(fields))
	for _, field := range fields {
		num, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("not a file number: %s", field)
		}
		if num < 1 || num > memberCount {
			return nil, fmt.Errorf("file number out of range: %d", num)
		}
		indices = append(indices, num-1)
	}
	return indices, nil
}

// isYes interprets a yes/no answer, falling back to a default for an
// empty line.
func isYes(line string, defaultYes bool) bool {
	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true
	case "n", "no":
		return false
	case "":
		return defaultYes
	default:
		return false
	}
}
