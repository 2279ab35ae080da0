// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package manifest

import (
	"sort"

	"github.com/cockroachdb/lsmpicker/internal/base"
)

// Version is an immutable snapshot of a column family's on-disk file
// arrangement. A picker borrows a Version for the lifetime of the
// Compaction(s) it derives from it; the caller is responsible for keeping
// the snapshot alive for that long. Version never mutates its own file
// lists — the one piece of conceptually mutable state the picker needs,
// the round-robin cursor into files-by-size, is modeled separately in
// Cursors rather than folded into Version, so the snapshot stays honestly
// immutable. See FileMetadata.SetCompacting for the other mutable bit the
// picker touches directly on shared file descriptors.
type Version struct {
	Cmp base.InternalKeyComparator

	// Files holds, per level, the files in that level. Within a level ≥ 1,
	// files are sorted by key and pairwise non-overlapping. At level 0,
	// files may overlap freely and are ordered newest-first (largest
	// SmallestSeqNum first).
	Files [][]*FileMetadata

	// filesBySize holds, per level ≥ 1, indices into Files[level] sorted by
	// descending CompensatedSize. Level 0 does not use size-ordering: its
	// candidates are chosen by age, not size.
	filesBySize [][]int
}

// NewVersion builds a Version from a set of per-level file lists. Levels ≥ 1
// are expected to already be sorted by key; NewVersion computes the
// size-descending index used by the leveled picker's round-robin scan.
func NewVersion(cmp base.InternalKeyComparator, files [][]*FileMetadata) *Version {
	v := &Version{
		Cmp:         cmp,
		Files:       files,
		filesBySize: make([][]int, len(files)),
	}
	for level := 1; level < len(files); level++ {
		idx := make([]int, len(files[level]))
		for i := range idx {
			idx[i] = i
		}
		sort.Slice(idx, func(a, b int) bool {
			return files[level][idx[a]].CompensatedSize > files[level][idx[b]].CompensatedSize
		})
		v.filesBySize[level] = idx
	}
	return v
}

// NumberLevels returns the number of levels in the snapshot.
func (v *Version) NumberLevels() int {
	return len(v.Files)
}

// NumLevelBytes returns the sum of raw file sizes at level.
func (v *Version) NumLevelBytes(level int) uint64 {
	return TotalSize(v.Files[level])
}

// FilesBySize returns the descending-compensated-size index for level,
// built at construction time. Levels ≥ 1 only.
func (v *Version) FilesBySize(level int) []int {
	return v.filesBySize[level]
}

// GetOverlappingInputs returns every file at level whose user-key range
// intersects [smallest, largest] under ucmp. At level 0, files can overlap
// arbitrarily, so every file is checked. At level ≥ 1, files are sorted and
// disjoint, so this returns a single contiguous subrange; hintIdx, when ≥ 0,
// is used as a starting point for the scan to approximate the O(log n)
// lookup a production Version would implement via binary search.
func (v *Version) GetOverlappingInputs(level int, smallest, largest []byte, hintIdx int) []*FileMetadata {
	ucmp := v.Cmp.UserKeyCompare
	files := v.Files[level]
	var out []*FileMetadata
	if level == 0 {
		for _, f := range files {
			if ucmp(f.Largest.UserKey, smallest) < 0 || ucmp(f.Smallest.UserKey, largest) > 0 {
				continue
			}
			out = append(out, f)
		}
		return out
	}
	start := 0
	if hintIdx >= 0 && hintIdx < len(files) {
		start = hintIdx
		for start > 0 && ucmp(files[start-1].Largest.UserKey, smallest) >= 0 {
			start--
		}
	}
	for i := start; i < len(files); i++ {
		f := files[i]
		if ucmp(f.Smallest.UserKey, largest) > 0 {
			break
		}
		if ucmp(f.Largest.UserKey, smallest) < 0 {
			continue
		}
		out = append(out, f)
	}
	return out
}

// HasOverlappingUserKey reports whether some file at level, not a member of
// files, shares a user key with the boundary of files — i.e. whether files
// is not a clean cut. Only meaningful for level ≥ 1, where Files[level] is
// sorted and disjoint: files must then occupy a contiguous run, and the
// check reduces to comparing the run's edges against its immediate
// neighbors.
func (v *Version) HasOverlappingUserKey(files []*FileMetadata, level int) bool {
	if len(files) == 0 || level == 0 {
		return false
	}
	ucmp := v.Cmp.UserKeyCompare
	all := v.Files[level]
	byNum := make(map[uint64]bool, len(files))
	for _, f := range files {
		byNum[f.FileNum] = true
	}
	first, last := -1, -1
	for i, f := range all {
		if byNum[f.FileNum] {
			if first == -1 {
				first = i
			}
			last = i
		}
	}
	if first == -1 {
		return false
	}
	if first > 0 && ucmp(all[first-1].Largest.UserKey, all[first].Smallest.UserKey) == 0 {
		return true
	}
	if last < len(all)-1 && ucmp(all[last+1].Smallest.UserKey, all[last].Largest.UserKey) == 0 {
		return true
	}
	return false
}

// LevelScore pairs a level with the compaction score computed for it.
// Scores are unitless: a score of 1.0 means the level is exactly at its
// target, and score ≥ 1 is the trigger for considering a compaction there.
type LevelScore struct {
	Level int
	Score float64
}

// ComputeCompactionScore scores every level below the last. levelMaxBytes
// gives level ≥ 1's target size in bytes (typically a geometrically growing
// function of level, owned by the caller's options); l0Trigger is the
// level-0 file-count trigger. sizeBeingCompacted subtracts in-flight bytes
// from a level's tally before scoring it, so that a compaction already
// queued against a level doesn't also trigger a second one piling onto the
// same backlog. The result is sorted by descending score.
func ComputeCompactionScore(
	v *Version, levelMaxBytes []int64, l0Trigger int, sizeBeingCompacted []uint64,
) []LevelScore {
	scores := make([]LevelScore, 0, v.NumberLevels()-1)
	for level := 0; level < v.NumberLevels()-1; level++ {
		var score float64
		if level == 0 {
			score = float64(len(v.Files[0])) / float64(l0Trigger)
		} else {
			size := TotalCompensatedSize(v.Files[level])
			if level < len(sizeBeingCompacted) && sizeBeingCompacted[level] < size {
				size -= sizeBeingCompacted[level]
			}
			if levelMaxBytes[level] <= 0 {
				score = 0
			} else {
				score = float64(size) / float64(levelMaxBytes[level])
			}
		}
		scores = append(scores, LevelScore{Level: level, Score: score})
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].Score > scores[j].Score })
	return scores
}

// Cursors holds the one piece of state the leveled picker persists across
// Version generations: a round-robin pointer, per level, into FilesBySize
// remembering where the last size-ordered scan stopped. It is owned by the
// CompactionPicker alongside (never inside) the Version it currently
// advises over.
type Cursors struct {
	NextFileToCompactBySize []int
}

// NewCursors returns a zeroed cursor set sized for numLevels.
func NewCursors(numLevels int) *Cursors {
	return &Cursors{NextFileToCompactBySize: make([]int, numLevels)}
}
