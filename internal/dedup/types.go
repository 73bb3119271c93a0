package dedup

import (
	"time"
)

// FileRecord is a file discovered during the walk, identified by its
// absolute path and byte length. Records are immutable once created.
type FileRecord struct {
	Path string
	Size int64
}

// Warning records a non-fatal problem scoped to a single file. The file
// is excluded from duplicate detection; the scan itself continues.
type Warning struct {
	Path string
	Err  error
}

func (w Warning) String() string {
	return w.Path + ": " + w.Err.Error()
}

// Group is a maximal set of files with equal size and equal content digest.
// Members are kept in discovery order; the first member is the copy retained
// by bulk deletion.
type Group struct {
	Digest  string
	Size    int64
	Members []string
}

// Recoverable returns the space reclaimable by deleting all but one member.
func (g *Group) Recoverable() int64 {
	if len(g.Members) < 2 {
		return 0
	}
	return g.Size * int64(len(g.Members)-1)
}

// DuplicateCount returns the number of redundant copies in the group.
func (g *Group) DuplicateCount() int {
	if len(g.Members) < 2 {
		return 0
	}
	return len(g.Members) - 1
}

// Report is the immutable snapshot produced by one scan pass. A rescan
// supersedes it wholesale; there is no incremental patching.
type Report struct {
	Root             string
	Groups           []Group
	TotalFiles       int
	RecoverableBytes int64
	Warnings         []Warning
	ScannedAt        time.Time
}

// NewReport assembles a report, computing the recoverable-byte total.
func NewReport(root string, groups []Group, totalFiles int, warnings []Warning) *Report {
	r := &Report{
		Root:       root,
		Groups:     groups,
		TotalFiles: totalFiles,
		Warnings:   warnings,
		ScannedAt:  time.Now(),
	}
	for i := range groups {
		r.RecoverableBytes += groups[i].Recoverable()
	}
	return r
}

// DuplicateFileCount returns the total number of redundant copies across
// all groups (one original per group excluded).
func (r *Report) DuplicateFileCount() int {
	total := 0
	for i := range r.Groups {
		total += r.Groups[i].DuplicateCount()
	}
	return total
}
