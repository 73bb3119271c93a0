package dedup

import "sort"

// SizeIndex groups discovered files by byte length. Files with a unique
// size are provably non-duplicate and are never handed to the hasher,
// which is the cheap pre-filter that makes the common mostly-unique-sizes
// case fast.
type SizeIndex struct {
	buckets map[int64][]FileRecord
	count   int
}

// Bucket is one size class with its members in discovery order.
type Bucket struct {
	Size    int64
	Records []FileRecord
}

// NewSizeIndex creates an empty index.
func NewSizeIndex() *SizeIndex {
	return &SizeIndex{
		buckets: make(map[int64][]FileRecord),
	}
}

// Insert appends the record to its size bucket, creating the bucket if
// absent. O(1) amortized.
func (idx *SizeIndex) Insert(rec FileRecord) {
	idx.buckets[rec.Size] = append(idx.buckets[rec.Size], rec)
	idx.count++
}

// Len returns the total number of inserted records.
func (idx *SizeIndex) Len() int {
	return idx.count
}

// Candidates returns only the buckets holding two or more records, in
// ascending size order so downstream processing is deterministic. Members
// within each bucket keep their insertion order.
func (idx *SizeIndex) Candidates() []Bucket {
	sizes := make([]int64, 0, len(idx.buckets))
	for size, records := range idx.buckets {
		if len(records) >= 2 {
			sizes = append(sizes, size)
		}
	}
	sort.Slice(sizes, func(i, j int) bool { return sizes[i] < sizes[j] })

	candidates := make([]Bucket, 0, len(sizes))
	for _, size := range sizes {
		candidates = append(candidates, Bucket{Size: size, Records: idx.buckets[size]})
	}
	return candidates
}
