// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

import "github.com/cockroachdb/lsmpicker/internal/manifest"

// pickLeveled implements the leveled strategy of §4.4: score every level,
// walk them in descending-score order, and return the first candidate that
// survives expansion.
func (p *CompactionPicker) pickLeveled(v *manifest.Version, mutable *MutableCFOptions) *Compaction {
	levelMaxBytes := make([]int64, v.NumberLevels())
	for l := 1; l < v.NumberLevels(); l++ {
		levelMaxBytes[l] = int64(mutable.LevelMaxBytes(l))
	}
	inFlight := p.inFlightBytesByLevel()
	scores := manifest.ComputeCompactionScore(
		v, levelMaxBytes, mutable.Level0FileNumCompactionTrigger, inFlight)

	for _, ls := range scores {
		if ls.Score < 1 {
			break
		}
		c := p.pickCompactionBySize(v, ls.Level, ls.Score, mutable)
		if c == nil {
			continue
		}
		if !p.finishLeveledPick(v, c, mutable) {
			continue
		}
		return c
	}
	return nil
}

// finishLeveledPick runs the level-0 special case or the ordinary expansion
// path, then setupOtherInputs and bookkeeping, for a seed Compaction
// produced by pickCompactionBySize.
func (p *CompactionPicker) finishLeveledPick(v *manifest.Version, c *Compaction, mutable *MutableCFOptions) bool {
	if c.Level == 0 {
		// At most one level-0 compaction runs at a time, because level-0
		// files overlap arbitrarily and a second concurrent compaction
		// could not be guaranteed disjoint from the first.
		if p.hasInProgress(0) {
			return false
		}
		smallest, largest := fileRange(v.Cmp, c.Inputs[0])
		c.Inputs[0] = v.GetOverlappingInputs(0, smallest.UserKey, largest.UserKey, -1)
		if len(c.Inputs[0]) == 0 {
			return false
		}
		for _, f := range c.Inputs[0] {
			if f.IsCompacting() {
				return false
			}
		}
		smallest, largest = fileRange(v.Cmp, c.Inputs[0])
		if parentRangeInCompaction(v, c, 1, smallest.UserKey, largest.UserKey) {
			return false
		}
	} else if !expandWhileOverlapping(v, c) {
		return false
	}

	setupOtherInputs(v, c, mutable)
	c.MaxGrandparentOverlapBytes = mutable.MaxGrandParentOverlapBytes(c.Level)
	c.MaxOutputFileSize = mutable.MaxFileSizeForLevel(c.OutputLevel)
	c.Compression = p.opts.CompressionForLevel(c.OutputLevel)
	c.BottommostLevel = c.OutputLevel == v.NumberLevels()-1
	p.insert(c)
	return true
}

// pickCompactionBySize implements §4.4's PickCompactionBySize: walk
// Version.FilesBySize(level) from the persisted round-robin cursor, skipping
// files already being compacted or whose range collides with an in-flight
// compaction at level+1, and seed a Compaction with the first survivor.
func (p *CompactionPicker) pickCompactionBySize(
	v *manifest.Version, level int, score float64, mutable *MutableCFOptions,
) *Compaction {
	if level == 0 && p.hasInProgress(0) {
		return nil
	}

	outputLevel := level + 1
	if level == 0 {
		// Level 0 always compacts into a fixed base level under the
		// leveled strategy; since this picker doesn't dynamically choose a
		// base level, level+1 is it.
		outputLevel = 1
	}

	cmp := v.Cmp.UserKeyCompare
	var firstNonCompacting = -1
	bySize := v.FilesBySize(level)
	if level == 0 {
		// Level 0 has no size ordering; scan in file order (newest first).
		bySize = make([]int, len(v.Files[0]))
		for i := range bySize {
			bySize[i] = i
		}
	}

	cursor := 0
	if level < len(p.cursors.NextFileToCompactBySize) {
		cursor = p.cursors.NextFileToCompactBySize[level]
	}
	if cursor > len(bySize) {
		cursor = 0
	}

	var picked *manifest.FileMetadata
	for i := cursor; i < len(bySize); i++ {
		f := v.Files[level][bySize[i]]
		if f.IsCompacting() {
			continue
		}
		if firstNonCompacting == -1 {
			firstNonCompacting = i
		}
		if level+1 < v.NumberLevels() &&
			p.conflictsAtLevel(cmp, level+1, f.Smallest.UserKey, f.Largest.UserKey) {
			continue
		}
		picked = f
		break
	}
	if firstNonCompacting == -1 {
		firstNonCompacting = 0
	}
	if level < len(p.cursors.NextFileToCompactBySize) {
		p.cursors.NextFileToCompactBySize[level] = firstNonCompacting
	}
	if picked == nil {
		return nil
	}

	return &Compaction{
		version:     v,
		Level:       level,
		OutputLevel: outputLevel,
		Inputs:      [2][]*manifest.FileMetadata{{picked}, nil},
		Score:       score,
	}
}
