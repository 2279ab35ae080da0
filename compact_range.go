// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

import "github.com/cockroachdb/lsmpicker/internal/manifest"

// compactRangeDefault implements the leveled and (begin/end already cleared
// to nil by the caller) tiered branches of manual CompactRange (§4.8). A nil
// begin or end leaves that side of the range open.
//
// The initial overlap scan does not check being_compacted. For inputLevel > 0,
// expandWhileOverlapping then refuses the compaction if any input file, or
// (when the output level differs) any overlapping parent-level file, is
// already being compacted. At level 0 that step is a no-op, so a level-0
// manual compaction relies on the host's guarantee that no automatic
// compaction runs while a manual one is outstanding (§5).
func (p *CompactionPicker) compactRangeDefault(
	v *manifest.Version, mutable *MutableCFOptions, inputLevel, outputLevel int, begin, end []byte,
) (c *Compaction, nextBegin []byte) {
	if end == nil {
		// Take the largest user key at the level, so the scan below is
		// unbounded above.
		for _, f := range v.Files[inputLevel] {
			if end == nil || v.Cmp.UserKeyCompare(f.Largest.UserKey, end) > 0 {
				end = f.Largest.UserKey
			}
		}
	}
	inputs := v.GetOverlappingInputs(inputLevel, begin, end, -1)
	if len(inputs) == 0 {
		return nil, nil
	}

	coveringWholeRange := true
	if inputLevel > 0 {
		capBytes := uint64(float64(mutable.MaxFileSizeForLevel(inputLevel)) * float64(mutable.SourceCompactionFactor))
		var sum uint64
		for i, f := range inputs {
			if sum+f.CompensatedSize >= capBytes {
				nextBegin = f.Smallest.UserKey
				coveringWholeRange = false
				inputs = inputs[:i]
				break
			}
			sum += f.CompensatedSize
		}
	}

	c = &Compaction{
		version:     v,
		Level:       inputLevel,
		OutputLevel: outputLevel,
		Inputs:      [2][]*manifest.FileMetadata{inputs, nil},
	}
	if !expandWhileOverlapping(v, c) {
		return nil, nil
	}
	setupOtherInputs(v, c, mutable)
	c.MaxGrandparentOverlapBytes = mutable.MaxGrandParentOverlapBytes(c.Level)
	c.MaxOutputFileSize = mutable.MaxFileSizeForLevel(c.OutputLevel)
	c.Compression = p.opts.CompressionForLevel(c.OutputLevel)
	c.BottommostLevel = c.OutputLevel == v.NumberLevels()-1
	c.IsManualCompaction = true
	p.insert(c)

	if coveringWholeRange {
		return c, nil
	}
	return c, nextBegin
}
