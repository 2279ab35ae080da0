// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cockroachdb/lsmpicker/internal/manifest"
)

func sanitizeTestVersion() (*manifest.Version, *manifest.FileMetadata, *manifest.FileMetadata, *manifest.FileMetadata) {
	a := mkFile(1, 'a', 'b', 100, 3)
	b := mkFile(2, 'c', 'd', 100, 2)
	x := mkFile(3, 'b', 'e', 500, 1)
	files := make([][]*manifest.FileMetadata, 3)
	files[0] = []*manifest.FileMetadata{a}
	files[2] = []*manifest.FileMetadata{x}
	return mkVersion(files), a, b, x
}

// Property (§8.8): sanitizing the same file-number set against an unchanged
// Version twice yields the same partition both times.
func TestSanitize_Idempotent(t *testing.T) {
	a := mkFile(1, 'a', 'b', 100, 3)
	b := mkFile(2, 'c', 'd', 100, 2)
	files := make([][]*manifest.FileMetadata, 2)
	files[0] = []*manifest.FileMetadata{a}
	files[1] = []*manifest.FileMetadata{b}
	v := mkVersion(files)

	numbers := map[uint64]struct{}{1: {}, 2: {}}
	first, err := sanitizeCompactionInputFiles(v, numbers, 1)
	require.NoError(t, err)
	second, err := sanitizeCompactionInputFiles(v, numbers, 1)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

// Property (§8.9): converting a sanitized partition to file numbers and back
// reconstructs the identical partition.
func TestSanitize_RoundTripFileNumbers(t *testing.T) {
	a := mkFile(1, 'a', 'b', 100, 3)
	b := mkFile(2, 'c', 'd', 100, 2)
	files := make([][]*manifest.FileMetadata, 2)
	files[0] = []*manifest.FileMetadata{a}
	files[1] = []*manifest.FileMetadata{b}
	v := mkVersion(files)

	levels, err := sanitizeCompactionInputFiles(v, map[uint64]struct{}{1: {}, 2: {}}, 1)
	require.NoError(t, err)

	roundTripped, err := getCompactionInputsFromFileNumbers(v, toFileNumbers(levels))
	require.NoError(t, err)
	assert.Equal(t, levels, roundTripped)
}

// An empty input set is rejected as InvalidArgument, not a nil/empty result.
func TestSanitize_EmptySetIsInvalidArgument(t *testing.T) {
	v, _, _, _ := sanitizeTestVersion()
	_, err := sanitizeCompactionInputFiles(v, map[uint64]struct{}{}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidArgument))
}

// A file already claimed by a live compaction aborts sanitization rather
// than silently dropping it from the selection.
func TestSanitize_AbortsOnInFlightFile(t *testing.T) {
	v, a, _, _ := sanitizeTestVersion()
	a.SetCompacting(true)
	_, err := sanitizeCompactionInputFiles(v, map[uint64]struct{}{1: {}}, 0)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAborted))
}

// formCompaction carries the grandparent-overlap-bytes limit through to the
// resulting Compaction rather than discarding it.
func TestFormCompaction_CarriesGrandparentOverlapLimit(t *testing.T) {
	v, a, b, x := sanitizeTestVersion()
	mutable := (&MutableCFOptions{}).EnsureDefaults()

	levels := make([][]*manifest.FileMetadata, 3)
	levels[0] = []*manifest.FileMetadata{a}
	levels[1] = []*manifest.FileMetadata{b}
	c := formCompaction(v, levels, 1, mutable)

	assert.Equal(t, 0, c.Level)
	assert.Equal(t, 1, c.OutputLevel)
	assert.Equal(t, []*manifest.FileMetadata{a}, c.Inputs[0])
	assert.Equal(t, []*manifest.FileMetadata{b}, c.Inputs[1])
	assert.NotZero(t, c.MaxGrandparentOverlapBytes)
	assert.Equal(t, mutable.MaxGrandParentOverlapBytes(0), c.MaxGrandparentOverlapBytes)
	_ = x
}
