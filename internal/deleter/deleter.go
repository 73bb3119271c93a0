package deleter

import (
	"os"
	"time"

	"github.com/dupescan/dupescan/internal/progress"
	"github.com/dupescan/dupescan/internal/security"
)

// BatchResult summarizes one deletion batch. Per-file failures never
// abort the batch; callers get an aggregate outcome instead of an
// all-or-nothing result.
type BatchResult struct {
	Deleted      []string
	DeletedBytes int64
	Failed       []*DeletionError
	DryRun       bool
}

// Merge folds another batch result into this one.
func (r *BatchResult) Merge(other *BatchResult) {
	r.Deleted = append(r.Deleted, other.Deleted...)
	r.DeletedBytes += other.DeletedBytes
	r.Failed = append(r.Failed, other.Failed...)
}

// Deleter removes files with safeguards: a pre-delete Lstat re-check so
// a path swapped for a symlink or directory is refused, retries for
// transient failures, and an optional dry-run mode that only simulates.
type Deleter struct {
	dryRun      bool
	retryDelays []time.Duration
	reporter    *progress.Reporter
	validator   *security.PathValidator
}

// New creates a new Deleter
func New(dryRun bool) *Deleter {
	return &Deleter{
		dryRun: dryRun,
		retryDelays: []time.Duration{
			100 * time.Millisecond,
			500 * time.Millisecond,
			2 * time.Second,
		},
		reporter:  progress.NewReporter(),
		validator: security.NewPathValidator(),
	}
}

// SetScope restricts deletions to paths under root.
func (d *Deleter) SetScope(root string) {
	d.validator.SetScope(root)
}

// SetProgressReporter sets a custom progress reporter
func (d *Deleter) SetProgressReporter(r *progress.Reporter) {
	d.reporter = r
}

// GetProgressReporter returns the deleter's progress reporter
func (d *Deleter) GetProgressReporter() *progress.Reporter {
	return d.reporter
}

// DryRun reports whether deletions are simulated.
func (d *Deleter) DryRun() bool {
	return d.dryRun
}

// DeleteBatch deletes the given files, all of byte length size. Each
// failure is recorded and the batch continues. A file that vanished
// before deletion counts as already deleted, without adding to the
// freed-byte total.
func (d *Deleter) DeleteBatch(paths []string, size int64) *BatchResult {
	result := &BatchResult{DryRun: d.dryRun}
	startTime := time.Now()

	if d.dryRun {
		for _, path := range paths {
			result.Deleted = append(result.Deleted, path)
			result.DeletedBytes += size
		}
		return result
	}

	for _, path := range paths {
		d.reporter.UpdateDelete(&progress.DeleteProgress{
			Phase:        progress.PhaseDeleting,
			CurrentFile:  path,
			DeletedFiles: len(result.Deleted),
			TotalFiles:   len(paths),
			DeletedSize:  result.DeletedBytes,
			FailedFiles:  len(result.Failed),
			StartTime:    startTime,
		})

		freed, err := d.deleteWithRetry(path)
		if err != nil {
			result.Failed = append(result.Failed, err)
			continue
		}
		result.Deleted = append(result.Deleted, path)
		if freed {
			result.DeletedBytes += size
		}
	}

	d.reporter.UpdateDelete(&progress.DeleteProgress{
		Phase:        progress.PhaseComplete,
		DeletedFiles: len(result.Deleted),
		TotalFiles:   len(paths),
		DeletedSize:  result.DeletedBytes,
		FailedFiles:  len(result.Failed),
		StartTime:    startTime,
	})

	return result
}

// deleteWithRetry attempts to delete a file, retrying transient errors.
// The boolean result is false when the file was already gone.
func (d *Deleter) deleteWithRetry(path string) (bool, *DeletionError) {
	var lastErr *DeletionError

	for attempt := 0; attempt <= len(d.retryDelays); attempt++ {
		if attempt > 0 {
			time.Sleep(d.retryDelays[attempt-1])
		}

		freed, err := d.deleteOne(path)
		if err == nil {
			return freed, nil
		}
		lastErr = err
		if !err.Retryable {
			return false, err
		}
	}

	return false, lastErr
}

// deleteOne deletes a single regular file.
func (d *Deleter) deleteOne(path string) (bool, *DeletionError) {
	if err := d.validator.ValidateForDeletion(path); err != nil {
		return false, &DeletionError{
			Path:     path,
			Reason:   ErrorInvalidPath,
			Original: err,
		}
	}

	// Lstat so a symlink swapped in since the scan is caught rather
	// than followed to some unintended target.
	info, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, CategorizeError(path, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return false, &DeletionError{
			Path:     path,
			Reason:   ErrorInvalidPath,
			Original: os.ErrInvalid,
		}
	}
	if info.IsDir() {
		return false, &DeletionError{
			Path:     path,
			Reason:   ErrorIsDirectory,
			Original: os.ErrInvalid,
		}
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, CategorizeError(path, err)
	}

	return true, nil
}
