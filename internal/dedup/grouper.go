package dedup

import (
	"context"
	"runtime"
	"sort"
	"sync"

	"github.com/dupescan/dupescan/pkg/utils"
)

// HashFunc computes a content digest for one file.
type HashFunc func(path string) (string, error)

// ProgressFunc is called as candidate files are hashed.
type ProgressFunc func(hashed, total int, currentPath string)

// Grouper partitions size-bucket candidates into duplicate groups by
// digest equality. Hashing runs on a bounded worker pool; group assembly
// for a bucket happens only after every hash in that bucket has completed.
type Grouper struct {
	workers  int
	hashFn   HashFunc
	progress ProgressFunc
}

// NewGrouper creates a Grouper with the given worker count. A count of
// zero selects a pool sized from the CPU count, clamped to [4,16] so
// I/O parallelism stays reasonable without excessive context switching.
func NewGrouper(workers int) *Grouper {
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers < 4 {
			workers = 4
		}
		if workers > 16 {
			workers = 16
		}
	}
	return &Grouper{
		workers: workers,
		hashFn:  utils.HashFile,
	}
}

// SetHashFunc overrides the digest function. Used by tests.
func (g *Grouper) SetHashFunc(fn HashFunc) {
	g.hashFn = fn
}

// SetProgressFunc installs a progress callback.
func (g *Grouper) SetProgressFunc(fn ProgressFunc) {
	g.progress = fn
}

type hashResult struct {
	path   string
	digest string
	err    error
}

// Group hashes every member of every candidate bucket and sub-partitions
// each bucket by digest equality. Files that fail to hash are excluded
// individually and reported as warnings; the rest of their bucket is kept.
// The returned groups are ordered by decreasing recoverable space, ties
// broken by first member path.
func (g *Grouper) Group(ctx context.Context, buckets []Bucket) ([]Group, []Warning, error) {
	total := 0
	for i := range buckets {
		total += len(buckets[i].Records)
	}

	digests, warnings, err := g.hashAll(ctx, buckets, total)
	if err != nil {
		return nil, nil, err
	}

	var groups []Group
	for i := range buckets {
		groups = append(groups, partitionBucket(buckets[i], digests)...)
	}

	sort.Slice(groups, func(i, j int) bool {
		ri, rj := groups[i].Recoverable(), groups[j].Recoverable()
		if ri != rj {
			return ri > rj
		}
		return groups[i].Members[0] < groups[j].Members[0]
	})

	return groups, warnings, nil
}

// hashAll runs the worker pool over every candidate record and returns a
// path-to-digest map. Hash computations share no mutable state, so the
// only synchronization is around result collection.
func (g *Grouper) hashAll(ctx context.Context, buckets []Bucket, total int) (map[string]string, []Warning, error) {
	jobs := make(chan string)
	results := make(chan hashResult)

	var wg sync.WaitGroup
	for w := 0; w < g.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				digest, err := g.hashFn(path)
				select {
				case results <- hashResult{path: path, digest: digest, err: err}:
				case <-ctx.Done():
					return
				}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := range buckets {
			for _, rec := range buckets[i].Records {
				select {
				case jobs <- rec.Path:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	digests := make(map[string]string, total)
	var warnings []Warning
	hashed := 0

	for res := range results {
		hashed++
		if res.err != nil {
			warnings = append(warnings, Warning{Path: res.path, Err: res.err})
		} else {
			digests[res.path] = res.digest
		}
		if g.progress != nil {
			g.progress(hashed, total, res.path)
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	return digests, warnings, nil
}

// partitionBucket splits one size bucket into duplicate groups by digest.
// Digest order follows first appearance so member and group ordering stay
// tied to discovery order. Buckets where every member hashes differently
// contribute nothing.
func partitionBucket(bucket Bucket, digests map[string]string) []Group {
	byDigest := make(map[string]*Group)
	var order []string

	for _, rec := range bucket.Records {
		digest, ok := digests[rec.Path]
		if !ok {
			continue // hashing failed, file excluded
		}
		grp, ok := byDigest[digest]
		if !ok {
			grp = &Group{Digest: digest, Size: bucket.Size}
			byDigest[digest] = grp
			order = append(order, digest)
		}
		grp.Members = append(grp.Members, rec.Path)
	}

	var groups []Group
	for _, digest := range order {
		if grp := byDigest[digest]; len(grp.Members) >= 2 {
			groups = append(groups, *grp)
		}
	}
	return groups
}
