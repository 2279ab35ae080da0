// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/swiss"

	"github.com/cockroachdb/lsmpicker/internal/manifest"
)

// CompactionPicker is a stateful advisor over an immutable Version snapshot.
// It owns compactionsInProgress (the set of live Compactions, keyed by
// level) and otherwise operates as a pure function of the Version and
// configuration it is given. Every public method runs to completion under
// the caller's column-family lock (§5); CompactionPicker performs no I/O and
// never blocks.
//
// The concrete strategy — leveled, tiered, FIFO, or pluggable — is selected
// by ImmutableCFOptions.CompactionStyle at construction and dispatched to by
// Pick and CompactRange.
type CompactionPicker struct {
	opts *ImmutableCFOptions
	*compactionPickerState
}

// compactionPickerState is the mutable state shared by every strategy: the
// per-level in-flight set and the round-robin cursors the leveled picker
// persists across Version generations. It is factored out of
// CompactionPicker so that tests can construct it directly against a
// synthetic Version without going through NewCompactionPicker.
type compactionPickerState struct {
	numLevels int
	inProgress []*swiss.Map[uint64, *Compaction]
	cursors    *manifest.Cursors
}

func newCompactionPickerState(numLevels int) *compactionPickerState {
	s := &compactionPickerState{
		numLevels:  numLevels,
		inProgress: make([]*swiss.Map[uint64, *Compaction], numLevels),
		cursors:    manifest.NewCursors(numLevels),
	}
	for i := range s.inProgress {
		s.inProgress[i] = swiss.New[uint64, *Compaction](0)
	}
	return s
}

// NewCompactionPicker constructs a picker over the given configuration. Pick
// and CompactRange take the Version as an argument, so one picker serves
// successive Versions, and its in-flight set and round-robin cursors carry
// over from call to call. A newly constructed picker starts with an empty
// in-flight set.
func NewCompactionPicker(opts *ImmutableCFOptions) *CompactionPicker {
	opts.EnsureDefaults()
	return &CompactionPicker{
		opts:                 opts,
		compactionPickerState: newCompactionPickerState(opts.NumLevels),
	}
}

// inFlightBytesByLevel returns, for every level, the sum of compensated
// sizes of files claimed by live compactions whose input level is that
// level. ComputeCompactionScore subtracts this from a level's raw tally so
// that a level already queued for compaction doesn't also register a second
// trigger against the same backlog.
func (s *compactionPickerState) inFlightBytesByLevel() []uint64 {
	out := make([]uint64, s.numLevels)
	for level, m := range s.inProgress {
		m.All(func(_ uint64, c *Compaction) bool {
			out[level] += manifest.TotalCompensatedSize(c.Inputs[0])
			return true
		})
	}
	return out
}

// hasInProgress reports whether any live compaction claims level as its
// input level.
func (s *compactionPickerState) hasInProgress(level int) bool {
	return s.inProgress[level].Len() > 0
}

// conflictsAtLevel reports whether any live compaction registered at level
// (i.e. whose input level is level) claims a file, at either of its input
// levels, whose user-key range overlaps [smallest, largest] under cmp.
// pickCompactionBySize calls it with level+1 to refuse seeding a new
// compaction whose range collides with an in-flight compaction at the parent
// level (§4.4's PickCompactionBySize guard).
func (s *compactionPickerState) conflictsAtLevel(
	cmp func(a, b []byte) int, level int, smallest, largest []byte,
) bool {
	conflict := false
	s.inProgress[level].All(func(_ uint64, c *Compaction) bool {
		for _, f := range c.AllInputs() {
			if cmp(f.Largest.UserKey, smallest) < 0 || cmp(f.Smallest.UserKey, largest) > 0 {
				continue
			}
			conflict = true
			return false
		}
		return true
	})
	return conflict
}

// insert registers c as live at its input level, marking its files
// being-compacted. Called once, by the strategy that produced c, after the
// Compaction is fully built.
func (s *compactionPickerState) insert(c *Compaction) {
	c.markFilesBeingCompacted(true)
	c.picker = s
	s.inProgress[c.Level].Put(c.identity(), c)
}

// ReleaseCompactionFiles clears the being-compacted bit on every file c
// claims and removes c from the in-flight set. The background executor must
// call this exactly once per Compaction it was handed, regardless of
// whether the merge succeeded (§5). If err is non-nil, the leveled picker's
// round-robin cursor for c.Level is rewound so the same file is reconsidered
// on a future scan rather than skipped forever.
func (c *Compaction) ReleaseCompactionFiles(err error) {
	if c.picker == nil {
		return
	}
	c.markFilesBeingCompacted(false)
	c.picker.inProgress[c.Level].Delete(c.identity())
	if err != nil && c.Level < len(c.picker.cursors.NextFileToCompactBySize) {
		c.picker.cursors.NextFileToCompactBySize[c.Level] = 0
	}
	c.picker = nil
}

// Pick runs the strategy selected by CompactionStyle and returns the next
// Compaction to run, or nil if nothing is currently warranted. A nil return
// is not an error (§7): it means the trigger wasn't met, every candidate is
// already in flight, or every file that could be picked collides with a
// live compaction. mutable is re-read on every call rather than cached, so
// callers may adjust it (e.g. in response to a workload change) without
// rebuilding the picker.
func (p *CompactionPicker) Pick(v *manifest.Version, mutable *MutableCFOptions) *Compaction {
	mutable.EnsureDefaults()
	switch p.opts.CompactionStyle {
	case CompactionStyleLeveled:
		return p.pickLeveled(v, mutable)
	case CompactionStyleUniversal:
		return p.pickUniversal(v, mutable)
	case CompactionStyleFIFO:
		return p.pickFIFO(v)
	case CompactionStylePluggable:
		return p.pickPluggable(v, mutable)
	default:
		panic(errors.AssertionFailedf("lsmpicker: unknown compaction style %d", p.opts.CompactionStyle))
	}
}

// CompactRange runs the manual compaction procedure of §4.8, dispatching to
// the FIFO- or tiered-specific overrides where the style demands it.
func (p *CompactionPicker) CompactRange(
	v *manifest.Version, mutable *MutableCFOptions, inputLevel, outputLevel int, begin, end []byte,
) (c *Compaction, nextBegin []byte) {
	mutable.EnsureDefaults()
	switch p.opts.CompactionStyle {
	case CompactionStyleFIFO:
		return p.compactRangeFIFO(v), nil
	case CompactionStylePluggable:
		return p.pickPluggableByRange(v, mutable, inputLevel, outputLevel), nil
	case CompactionStyleUniversal:
		begin, end = nil, nil
	}
	return p.compactRangeDefault(v, mutable, inputLevel, outputLevel, begin, end)
}
