// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

import (
	"github.com/cockroachdb/lsmpicker/internal/base"
	"github.com/cockroachdb/lsmpicker/internal/manifest"
)

// setupOtherInputs fills in Inputs[1] and Grandparents once c.Inputs[0] has
// stabilized at c.Level, and attempts the lateral-growth step of §4.3. It is
// a no-op when c.Level == c.OutputLevel (tiered and FIFO compactions, whose
// output level equals their input level).
func setupOtherInputs(v *manifest.Version, c *Compaction, limits *MutableCFOptions) {
	if c.Level == c.OutputLevel {
		return
	}

	smallest0, largest0 := fileRange(v.Cmp, c.Inputs[0])
	c.Inputs[1] = v.GetOverlappingInputs(c.OutputLevel, smallest0.UserKey, largest0.UserKey, c.parentIndex)

	growLaterally(v, c, limits)

	if c.OutputLevel+1 < v.NumberLevels() {
		smallestAll, largestAll := unionRange(v, c)
		c.Grandparents = v.GetOverlappingInputs(c.OutputLevel+1, smallestAll.UserKey, largestAll.UserKey, -1)
	}
}

// growLaterally attempts to steal extra c.Level files into Inputs[0] without
// growing the set of parent-level files the compaction must also rewrite.
// This is only a free expansion — point 2 of §4.3 — if doing so doesn't
// change Inputs[1] at all; otherwise the parent workload would grow, which
// is never acceptable just to pick up a few extra same-level files.
func growLaterally(v *manifest.Version, c *Compaction, limits *MutableCFOptions) {
	if len(c.Inputs[1]) == 0 {
		return
	}
	smallest, largest := unionRange(v, c)
	expanded0 := v.GetOverlappingInputs(c.Level, smallest.UserKey, largest.UserKey, c.baseIndex)
	if len(expanded0) <= len(c.Inputs[0]) {
		return
	}
	limit := limits.ExpandedCompactionByteSizeLimit(c.Level)
	if manifest.TotalCompensatedSize(expanded0)+manifest.TotalCompensatedSize(c.Inputs[1]) >= limit {
		return
	}
	for _, f := range expanded0 {
		if f.IsCompacting() {
			return
		}
	}
	if v.HasOverlappingUserKey(expanded0, c.Level) {
		return
	}
	smallest1, largest1 := fileRange(v.Cmp, expanded0)
	expanded1 := v.GetOverlappingInputs(c.OutputLevel, smallest1.UserKey, largest1.UserKey, c.parentIndex)
	if len(expanded1) != len(c.Inputs[1]) {
		return
	}
	for _, f := range expanded1 {
		if f.IsCompacting() {
			return
		}
	}
	c.Inputs[0] = expanded0
	c.Inputs[1] = expanded1
}

// unionRange returns the bounding internal-key range across both input
// levels.
func unionRange(v *manifest.Version, c *Compaction) (smallest, largest base.InternalKey) {
	all := c.AllInputs()
	return fileRange(v.Cmp, all)
}
