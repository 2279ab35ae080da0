// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

import "github.com/cockroachdb/lsmpicker/internal/manifest"

// expandWhileOverlapping grows c.Inputs[0] to a fixed point under
// Version.GetOverlappingInputs, then validates the result (§4.2). It is used
// by the leveled strategy for level > 0 and by manual CompactRange.
//
// GetOverlappingInputs only ever grows the set it's asked to recompute — a
// newly included file can only have joined by virtue of overlapping the
// current range — so the loop is guaranteed to terminate in at most
// len(version.Files[level]) iterations.
//
// At level 0 this is a no-op that always reports success: level-0 files
// already overlap arbitrarily, and the leveled strategy itself handles the
// level-0 parent-conflict check before calling this.
func expandWhileOverlapping(v *manifest.Version, c *Compaction) bool {
	if c.Level == 0 {
		return true
	}
	for {
		smallest, largest := fileRange(v.Cmp, c.Inputs[0])
		grown := v.GetOverlappingInputs(c.Level, smallest.UserKey, largest.UserKey, c.baseIndex)
		if len(grown) == len(c.Inputs[0]) {
			break
		}
		c.Inputs[0] = grown
	}

	if len(c.Inputs[0]) == 0 {
		return false
	}
	for _, f := range c.Inputs[0] {
		if f.IsCompacting() {
			return false
		}
	}
	if c.Level != c.OutputLevel {
		smallest, largest := fileRange(v.Cmp, c.Inputs[0])
		if parentRangeInCompaction(v, c, c.Level+1, smallest.UserKey, largest.UserKey) {
			return false
		}
	}
	return true
}

// parentRangeInCompaction reports whether any file at parentLevel
// overlapping [smallest, largest] is already claimed by a live compaction.
func parentRangeInCompaction(
	v *manifest.Version, c *Compaction, parentLevel int, smallest, largest []byte,
) bool {
	if parentLevel >= v.NumberLevels() {
		return false
	}
	parents := v.GetOverlappingInputs(parentLevel, smallest, largest, -1)
	for _, f := range parents {
		if f.IsCompacting() {
			return true
		}
	}
	return false
}
