// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

import (
	"github.com/cockroachdb/errors"

	"github.com/cockroachdb/lsmpicker/internal/manifest"
)

// DeletionCompactionOutputLevel is the sentinel passed as outputLevel to mark
// a deletion-only compaction (FIFO-style) requested through the pluggable
// path, the one legal negative output level.
const DeletionCompactionOutputLevel = -1

// ErrInvalidArgument marks malformed sanitizer/lookup input: an empty input
// set, an unknown file number, or an illegal output level (§7).
var ErrInvalidArgument = errors.New("lsmpicker: invalid argument")

// ErrAborted marks a sanitizer request that collided with a file already
// claimed by a live compaction (§7).
var ErrAborted = errors.New("lsmpicker: aborted, file already being compacted")

// sanitizeCompactionInputFiles implements §4.9.1: it grows the caller's raw
// file-number set, level by level up to outputLevel, into a set that forms
// clean cuts at every level above 0 and that also holds every file, at each
// later level up to outputLevel, whose user-key range overlaps what has been
// picked so far. It returns the grown set partitioned by level. It fails
// with an InvalidArgument/Aborted error on any of the conditions §4.9.1 and
// §7 enumerate, leaving the picker's own state untouched.
func sanitizeCompactionInputFiles(
	v *manifest.Version, numbers map[uint64]struct{}, outputLevel int,
) (levels [][]*manifest.FileMetadata, err error) {
	if len(numbers) == 0 {
		return nil, errors.Mark(errors.Newf("lsmpicker: empty compaction input set"), ErrInvalidArgument)
	}
	if outputLevel < 0 && outputLevel != DeletionCompactionOutputLevel {
		return nil, errors.Mark(errors.Newf("lsmpicker: negative output level %d is not the deletion sentinel", outputLevel), ErrInvalidArgument)
	}
	if outputLevel >= v.NumberLevels() {
		return nil, errors.Mark(errors.Newf("lsmpicker: output level %d exceeds max output level %d", outputLevel, v.NumberLevels()-1), ErrInvalidArgument)
	}
	if _, err := getCompactionInputsFromFileNumbers(v, numbers); err != nil {
		return nil, err
	}

	effectiveOutput := outputLevel
	if outputLevel == DeletionCompactionOutputLevel {
		effectiveOutput = 0
	}

	ucmp := v.Cmp.UserKeyCompare
	levels = make([][]*manifest.FileMetadata, v.NumberLevels())
	var haveRange bool
	var rangeSmallest, rangeLargest []byte

	// wanted starts as the caller's set and grows with the overlapping files
	// pulled in from later levels below.
	wanted := make(map[uint64]struct{}, len(numbers))
	for n := range numbers {
		wanted[n] = struct{}{}
	}

	for l := 0; l <= effectiveOutput; l++ {
		files := v.Files[l]
		first, last := -1, -1
		for i, f := range files {
			if _, ok := wanted[f.FileNum]; ok {
				if first == -1 {
					first = i
				}
				last = i
			}
		}
		if first == -1 {
			continue
		}

		if l > 0 {
			for first > 0 && ucmp(files[first-1].Largest.UserKey, files[first].Smallest.UserKey) >= 0 {
				first--
			}
			for last < len(files)-1 && ucmp(files[last+1].Smallest.UserKey, files[last].Largest.UserKey) <= 0 {
				last++
			}
		}

		picked := files[first : last+1]
		for _, f := range picked {
			if f.IsCompacting() {
				return nil, errors.Mark(errors.Newf("lsmpicker: file %d is already being compacted", f.FileNum), ErrAborted)
			}
		}
		levels[l] = append(levels[l], picked...)

		if l == 0 {
			for _, f := range picked {
				if !haveRange {
					rangeSmallest, rangeLargest = f.Smallest.UserKey, f.Largest.UserKey
					haveRange = true
					continue
				}
				if ucmp(f.Smallest.UserKey, rangeSmallest) < 0 {
					rangeSmallest = f.Smallest.UserKey
				}
				if ucmp(f.Largest.UserKey, rangeLargest) > 0 {
					rangeLargest = f.Largest.UserKey
				}
			}
		} else {
			smallest, largest := picked[0].Smallest.UserKey, picked[len(picked)-1].Largest.UserKey
			if !haveRange || ucmp(smallest, rangeSmallest) < 0 {
				rangeSmallest = smallest
				haveRange = true
			}
			if !haveRange || ucmp(largest, rangeLargest) > 0 {
				rangeLargest = largest
			}
		}

		for m := l + 1; m <= effectiveOutput; m++ {
			for _, f := range v.GetOverlappingInputs(m, rangeSmallest, rangeLargest, -1) {
				if f.IsCompacting() {
					return nil, errors.Mark(errors.Newf("lsmpicker: file %d is already being compacted", f.FileNum), ErrAborted)
				}
				wanted[f.FileNum] = struct{}{}
			}
		}
	}

	if !haveRange {
		return nil, errors.Mark(errors.Newf("lsmpicker: no file in the input set was found at or below output level %d", effectiveOutput), ErrInvalidArgument)
	}

	for m := effectiveOutput + 1; m <= outputLevel && m < v.NumberLevels(); m++ {
		overlap := v.GetOverlappingInputs(m, rangeSmallest, rangeLargest, -1)
		for _, f := range overlap {
			if f.IsCompacting() {
				return nil, errors.Mark(errors.Newf("lsmpicker: file %d is already being compacted", f.FileNum), ErrAborted)
			}
		}
		levels[m] = overlap
	}

	return levels, nil
}

// getCompactionInputsFromFileNumbers resolves a flat set of file numbers,
// already sanitized, into a per-level Inputs partition: fails with
// InvalidArgument if any number does not name a live file in v (§4.9 step 4).
func getCompactionInputsFromFileNumbers(
	v *manifest.Version, numbers map[uint64]struct{},
) (levels [][]*manifest.FileMetadata, err error) {
	remaining := make(map[uint64]struct{}, len(numbers))
	for n := range numbers {
		remaining[n] = struct{}{}
	}
	levels = make([][]*manifest.FileMetadata, v.NumberLevels())
	for l, files := range v.Files {
		for _, f := range files {
			if _, ok := remaining[f.FileNum]; ok {
				levels[l] = append(levels[l], f)
				delete(remaining, f.FileNum)
			}
		}
	}
	if len(remaining) > 0 {
		for n := range remaining {
			return nil, errors.Mark(errors.Newf("lsmpicker: unknown file number %d", n), ErrInvalidArgument)
		}
	}
	return levels, nil
}

// toFileNumbers is the inverse direction of getCompactionInputsFromFileNumbers,
// used only by tests to exercise the round-trip property of §8.9.
func toFileNumbers(levels [][]*manifest.FileMetadata) map[uint64]struct{} {
	out := make(map[uint64]struct{})
	for _, files := range levels {
		for _, f := range files {
			out[f.FileNum] = struct{}{}
		}
	}
	return out
}

// formCompaction implements §4.9 step 5: build a Compaction from a sanitized
// per-level partition, placing everything at levels < outputLevel into
// Inputs[0] (in level order) and the outputLevel partition into Inputs[1].
//
// max_grandparent_overlap_bytes here deliberately carries the computed limit
// through to the Compaction rather than discarding it, resolving the open
// question the distillation flagged: a grandparent-bounded compaction with a
// silently-zeroed limit would never cut output files on grandparent overlap,
// defeating the reason MaxGrandParentOverlapBytes exists at all.
func formCompaction(
	v *manifest.Version, levels [][]*manifest.FileMetadata, outputLevel int, mutable *MutableCFOptions,
) *Compaction {
	var inputLevel int
	var inputs0 []*manifest.FileMetadata
	for l, files := range levels {
		if l == outputLevel || len(files) == 0 {
			continue
		}
		inputLevel = l
		inputs0 = append(inputs0, files...)
	}

	c := &Compaction{
		version:     v,
		Level:       inputLevel,
		OutputLevel: outputLevel,
		Inputs:      [2][]*manifest.FileMetadata{inputs0, levels[outputLevel]},
	}
	if outputLevel+1 < v.NumberLevels() {
		smallest, largest := unionRange(v, c)
		c.Grandparents = v.GetOverlappingInputs(outputLevel+1, smallest.UserKey, largest.UserKey, -1)
	}
	c.MaxGrandparentOverlapBytes = mutable.MaxGrandParentOverlapBytes(inputLevel)
	c.MaxOutputFileSize = mutable.MaxFileSizeForLevel(outputLevel)
	c.BottommostLevel = outputLevel == v.NumberLevels()-1
	return c
}
