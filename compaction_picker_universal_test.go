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

// S3: size amplification fires once the sum of everything but the oldest
// file reaches 25% of the oldest file's raw size, picking the entire run.
func TestPickUniversal_SizeAmplification(t *testing.T) {
	// Newest-first: C, B, A, O (ages oldest-to-newest: O, A, B, C).
	c := mkFile(4, 'd', 'd', 100, 4)
	b := mkFile(3, 'c', 'c', 100, 3)
	a := mkFile(2, 'b', 'b', 100, 2)
	o := mkFile(1, 'a', 'a', 1000, 1)
	v := mkVersion([][]*manifest.FileMetadata{{c, b, a, o}})

	opts := (&ImmutableCFOptions{NumLevels: 1, CompactionStyle: CompactionStyleUniversal}).EnsureDefaults()
	opts.Universal.MaxSizeAmplificationPercent = 25
	mutable := (&MutableCFOptions{Level0FileNumCompactionTrigger: 4}).EnsureDefaults()
	p := NewCompactionPicker(opts)

	comp := p.Pick(v, mutable)
	require.NotNil(t, comp)
	assert.Equal(t, []*manifest.FileMetadata{c, b, a, o}, comp.Inputs[0])
	assert.True(t, comp.IsFullCompaction)
	assert.True(t, comp.BottommostLevel)
}

// S4: size-ratio, SimilarSize stop style. The run stops growing as soon as
// the next file is not within the ratio of the file added just before it.
func TestPickUniversal_SizeRatioSimilarSizeStop(t *testing.T) {
	f1 := mkFile(5, 'e', 'e', 100, 5)
	f2 := mkFile(4, 'd', 'd', 110, 4)
	f3 := mkFile(3, 'c', 'c', 120, 3)
	f4 := mkFile(2, 'b', 'b', 5000, 2)
	f5 := mkFile(1, 'a', 'a', 5500, 1)
	v := mkVersion([][]*manifest.FileMetadata{{f1, f2, f3, f4, f5}})

	opts := (&ImmutableCFOptions{NumLevels: 1, CompactionStyle: CompactionStyleUniversal}).EnsureDefaults()
	opts.Universal.SizeRatio = 20
	opts.Universal.MinMergeWidth = 2
	opts.Universal.MaxMergeWidth = 8
	opts.Universal.StopStyle = StopStyleSimilarSize
	mutable := (&MutableCFOptions{Level0FileNumCompactionTrigger: 4}).EnsureDefaults()
	p := NewCompactionPicker(opts)

	comp := p.Pick(v, mutable)
	require.NotNil(t, comp)
	assert.Equal(t, []*manifest.FileMetadata{f1, f2, f3}, comp.Inputs[0])
	assert.False(t, comp.BottommostLevel)
	assert.False(t, comp.IsFullCompaction)
}

// Property (§8): a tiered run is always a contiguous newest-to-oldest
// subsequence, never a gapped selection.
func TestPickUniversal_RunIsContiguous(t *testing.T) {
	f1 := mkFile(5, 'e', 'e', 100, 5)
	f2 := mkFile(4, 'd', 'd', 110, 4)
	f3 := mkFile(3, 'c', 'c', 120, 3)
	f4 := mkFile(2, 'b', 'b', 5000, 2)
	f5 := mkFile(1, 'a', 'a', 5500, 1)
	files := []*manifest.FileMetadata{f1, f2, f3, f4, f5}
	picked := pickSizeRatioRun(files, 20, 2, 8, len(files), StopStyleSimilarSize, false)
	require.NotEmpty(t, picked)
	start := -1
	for i, f := range files {
		if f == picked[0] {
			start = i
			break
		}
	}
	require.NotEqual(t, -1, start)
	for i, f := range picked {
		assert.Same(t, files[start+i], f)
	}
}
