// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cockroachdb/lsmpicker/internal/manifest"
)

// leveledTestMutable builds the S1/S2 scenario's knobs: a level-1 target size
// chosen so the seeded files score just over 1, and an expansion limit tight
// enough to forbid B and X's lateral-growth candidates from actually
// growing.
func leveledTestMutable() *MutableCFOptions {
	m := &MutableCFOptions{
		LevelMaxBytes: func(level int) uint64 {
			if level == 1 {
				return 538
			}
			return 1 << 60
		},
		ExpandedCompactionByteSizeLimit: func(level int) uint64 { return 1500 },
	}
	return m.EnsureDefaults()
}

func leveledTestVersion() (*manifest.Version, *manifest.FileMetadata, *manifest.FileMetadata, *manifest.FileMetadata, *manifest.FileMetadata) {
	a := mkFile(1, 'a', 'c', 100, 10)
	b := mkFile(2, 'd', 'f', 400, 11)
	c := mkFile(3, 'g', 'i', 200, 12)
	x := mkFile(4, 'e', 'h', 1000, 5)
	files := make([][]*manifest.FileMetadata, 7)
	files[1] = []*manifest.FileMetadata{a, b, c}
	files[2] = []*manifest.FileMetadata{x}
	return mkVersion(files), a, b, c, x
}

// S1: level 1's score exceeds 1, the size-ordered seed is B, B's overlapping
// parent is X, and lateral growth into C is blocked by the tight expansion
// limit.
func TestPickLeveled_ScoreGate(t *testing.T) {
	v, _, b, _, x := leveledTestVersion()
	mutable := leveledTestMutable()
	opts := (&ImmutableCFOptions{NumLevels: 7}).EnsureDefaults()
	p := NewCompactionPicker(opts)

	comp := p.Pick(v, mutable)
	require.NotNil(t, comp)
	assert.Equal(t, 1, comp.Level)
	assert.Equal(t, 2, comp.OutputLevel)
	assert.Equal(t, []*manifest.FileMetadata{b}, comp.Inputs[0])
	assert.Equal(t, []*manifest.FileMetadata{x}, comp.Inputs[1])
	assert.Empty(t, comp.Grandparents)
	assert.True(t, b.IsCompacting())
	assert.True(t, x.IsCompacting())
}

// S2: the same shape, but X is already claimed by a live compaction, so the
// parent-conflict check in expandWhileOverlapping blocks the seed and Pick
// finds nothing else to offer.
func TestPickLeveled_BlockedByInFlightParent(t *testing.T) {
	v, _, _, _, x := leveledTestVersion()
	mutable := leveledTestMutable()
	opts := (&ImmutableCFOptions{NumLevels: 7}).EnsureDefaults()
	p := NewCompactionPicker(opts)

	x.SetCompacting(true)
	comp := p.Pick(v, mutable)
	assert.Nil(t, comp)
}

// Property (§8): a file claimed by one live compaction can never be handed
// to a second one concurrently picked against the same Version.
func TestPickLeveled_NoDoubleClaim(t *testing.T) {
	v, _, b, c, x := leveledTestVersion()
	mutable := leveledTestMutable()
	opts := (&ImmutableCFOptions{NumLevels: 7}).EnsureDefaults()
	p := NewCompactionPicker(opts)

	first := p.Pick(v, mutable)
	require.NotNil(t, first)
	assert.Contains(t, first.Inputs[0], b)

	second := p.Pick(v, mutable)
	if second != nil {
		for _, f := range second.AllInputs() {
			assert.NotSame(t, b, f)
			assert.NotSame(t, x, f)
		}
	}
	_ = c
}
