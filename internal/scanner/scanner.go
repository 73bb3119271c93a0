package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/dupescan/dupescan/internal/config"
	"github.com/dupescan/dupescan/internal/dedup"
	"github.com/dupescan/dupescan/internal/progress"
)

// Setup errors. Anything scoped to a single file is a warning on the
// report instead; only a bad root is fatal.
var (
	ErrNotFound      = errors.New("directory does not exist")
	ErrNotADirectory = errors.New("not a directory")
)

// Scanner walks a directory tree, feeds regular files into a size index
// and drives the duplicate grouper over the candidate buckets. One call
// to Scan is a single atomic pass; no partial report is exposed.
type Scanner struct {
	cfg      *config.Config
	reporter *progress.Reporter
}

// New creates a new Scanner
func New(cfg *config.Config) *Scanner {
	return &Scanner{
		cfg:      cfg,
		reporter: progress.NewReporter(),
	}
}

// SetProgressReporter sets a custom progress reporter
func (s *Scanner) SetProgressReporter(r *progress.Reporter) {
	s.reporter = r
}

// GetProgressReporter returns the scanner's progress reporter
func (s *Scanner) GetProgressReporter() *progress.Reporter {
	return s.reporter
}

// Scan walks root, groups files by size and digest, and assembles the
// scan report. The walk visits regular files only: directories are
// traversed, symlinks are skipped to avoid cycles and double-counting.
// Unreadable entries become warnings. Returns ErrNotFound or
// ErrNotADirectory for a bad root, and ctx.Err() when cancelled.
func (s *Scanner) Scan(ctx context.Context, root string) (*dedup.Report, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", root, err)
	}

	info, err := os.Stat(absRoot)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%s: %w", root, ErrNotFound)
		}
		return nil, fmt.Errorf("stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s: %w", root, ErrNotADirectory)
	}

	startTime := time.Now()

	index, warnings, err := s.walk(ctx, absRoot, startTime)
	if err != nil {
		return nil, err
	}

	groups, hashWarnings, err := s.group(ctx, index, startTime)
	if err != nil {
		return nil, err
	}
	warnings = append(warnings, hashWarnings...)

	report := dedup.NewReport(absRoot, groups, index.Len(), warnings)

	s.reporter.UpdateScan(&progress.ScanProgress{
		Phase:      progress.PhaseComplete,
		FilesFound: report.TotalFiles,
		StartTime:  startTime,
	})

	return report, nil
}

// walk collects FileRecords for every regular file under root, in the
// lexical order filepath.WalkDir guarantees. That order is the documented
// discovery order later visible in group member lists.
func (s *Scanner) walk(ctx context.Context, root string, startTime time.Time) (*dedup.SizeIndex, []dedup.Warning, error) {
	minSize, err := s.cfg.MinBytes()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid minimum file size: %w", err)
	}
	maxSize, err := s.cfg.MaxBytes()
	if err != nil {
		return nil, nil, fmt.Errorf("invalid maximum file size: %w", err)
	}

	index := dedup.NewSizeIndex()
	var warnings []dedup.Warning
	var totalSize int64

	walkErr := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}

		if err != nil {
			warnings = append(warnings, dedup.Warning{Path: path, Err: err})
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			return nil
		}
		if d.Type()&fs.ModeSymlink != 0 {
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if s.excluded(path) {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			warnings = append(warnings, dedup.Warning{Path: path, Err: err})
			return nil
		}

		size := info.Size()
		if size < minSize {
			return nil
		}
		if maxSize > 0 && size > maxSize {
			return nil
		}

		index.Insert(dedup.FileRecord{Path: path, Size: size})
		totalSize += size

		if index.Len()%256 == 0 {
			s.reporter.UpdateScan(&progress.ScanProgress{
				Phase:       progress.PhaseWalking,
				CurrentPath: path,
				FilesFound:  index.Len(),
				TotalSize:   totalSize,
				StartTime:   startTime,
			})
		}
		return nil
	})

	if walkErr != nil {
		return nil, nil, walkErr
	}
	return index, warnings, nil
}

// group runs the duplicate grouper over the candidate buckets, relaying
// hash progress to the reporter.
func (s *Scanner) group(ctx context.Context, index *dedup.SizeIndex, startTime time.Time) ([]dedup.Group, []dedup.Warning, error) {
	grouper := dedup.NewGrouper(s.cfg.Workers)
	grouper.SetProgressFunc(func(hashed, total int, currentPath string) {
		s.reporter.UpdateScan(&progress.ScanProgress{
			Phase:       progress.PhaseHashing,
			CurrentPath: currentPath,
			FilesFound:  index.Len(),
			HashedFiles: hashed,
			TotalToHash: total,
			StartTime:   startTime,
		})
	})

	return grouper.Group(ctx, index.Candidates())
}

// excluded reports whether the path matches any configured exclude
// pattern, tested against both the base name and the full path.
func (s *Scanner) excluded(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range s.cfg.ExcludePatterns {
		if ok, _ := filepath.Match(pattern, base); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, path); ok {
			return true
		}
	}
	return false
}
