// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package manifest

import (
	"sync/atomic"

	"github.com/cockroachdb/lsmpicker/internal/base"
)

// FileMetadata is an immutable descriptor of an on-disk sorted table, save
// for the single mutable bit (BeingCompacted) that the compaction picker
// toggles under the column family's lock.
type FileMetadata struct {
	// FileNum uniquely identifies the table within its column family.
	FileNum uint64
	// PathID selects which configured DB path the table lives on.
	PathID int
	// Size is the raw on-disk size of the table, in bytes.
	Size uint64
	// CompensatedSize is Size adjusted upward to reflect an estimate of
	// obsolete data (tombstones, overwritten keys) the table carries. The
	// picker reasons about compensated size; Size is used only where the raw
	// figure is called for (e.g. the oldest file's size in the tiered
	// size-amplification check).
	CompensatedSize uint64

	Smallest base.InternalKey
	Largest  base.InternalKey

	SmallestSeqNum base.SeqNum
	LargestSeqNum  base.SeqNum

	// beingCompacted is true iff some live Compaction currently references
	// this file. It is the core non-overlap invariant: a file referenced by
	// two live compactions at once would let them tear the same key range.
	beingCompacted atomic.Bool
}

// IsCompacting reports whether the file is claimed by a live compaction.
func (f *FileMetadata) IsCompacting() bool {
	return f.beingCompacted.Load()
}

// SetCompacting marks or clears the file's in-flight bit. Called only by the
// picker (to mark) and by ReleaseCompactionFiles (to clear), both under the
// host's column-family lock.
func (f *FileMetadata) SetCompacting(v bool) {
	f.beingCompacted.Store(v)
}

// UserKeyRange is the closed interval [Smallest, Largest] of user keys, with
// sequence numbers and kinds stripped away. Two files with overlapping
// UserKeyRanges may never be placed in compactions that write disjoint
// outputs, since a single user key's versions would be torn apart.
type UserKeyRange struct {
	Smallest, Largest []byte
}

// FileRange computes the bounding internal-key range over a non-empty set of
// files, taking the minimum Smallest and maximum Largest under cmp.
func FileRange(cmp base.InternalKeyComparator, files []*FileMetadata) (smallest, largest base.InternalKey) {
	if len(files) == 0 {
		panic("manifest: FileRange of empty file set")
	}
	smallest, largest = files[0].Smallest, files[0].Largest
	for _, f := range files[1:] {
		if cmp.Compare(f.Smallest, smallest) < 0 {
			smallest = f.Smallest
		}
		if cmp.Compare(f.Largest, largest) > 0 {
			largest = f.Largest
		}
	}
	return smallest, largest
}

// RangesOverlap reports whether the user-key ranges of a and b intersect
// under cmp. Sequence numbers are ignored: a single user key may legitimately
// span many sequence numbers across files, and must never be split by a
// compaction boundary.
func RangesOverlap(cmp base.Compare, a, b []*FileMetadata) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	aLo, aHi := a[0].Smallest.UserKey, a[0].Largest.UserKey
	for _, f := range a[1:] {
		if cmp(f.Smallest.UserKey, aLo) < 0 {
			aLo = f.Smallest.UserKey
		}
		if cmp(f.Largest.UserKey, aHi) > 0 {
			aHi = f.Largest.UserKey
		}
	}
	bLo, bHi := b[0].Smallest.UserKey, b[0].Largest.UserKey
	for _, f := range b[1:] {
		if cmp(f.Smallest.UserKey, bLo) < 0 {
			bLo = f.Smallest.UserKey
		}
		if cmp(f.Largest.UserKey, bHi) > 0 {
			bHi = f.Largest.UserKey
		}
	}
	return cmp(aLo, bHi) <= 0 && cmp(bLo, aHi) <= 0
}

// TotalCompensatedSize sums CompensatedSize across files.
func TotalCompensatedSize(files []*FileMetadata) uint64 {
	var n uint64
	for _, f := range files {
		n += f.CompensatedSize
	}
	return n
}

// TotalSize sums the raw Size across files.
func TotalSize(files []*FileMetadata) uint64 {
	var n uint64
	for _, f := range files {
		n += f.Size
	}
	return n
}
