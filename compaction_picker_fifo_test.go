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

// S5: FIFO deletes the oldest files, one at a time, until the cap is met
// again.
func TestPickFIFO_Eviction(t *testing.T) {
	f1 := mkFile(1, 'a', 'a', 600, 3) // newest
	f2 := mkFile(2, 'b', 'b', 300, 2)
	f3 := mkFile(3, 'c', 'c', 400, 1) // oldest
	v := mkVersion([][]*manifest.FileMetadata{{f1, f2, f3}})

	opts := (&ImmutableCFOptions{NumLevels: 1, CompactionStyle: CompactionStyleFIFO}).EnsureDefaults()
	opts.FIFO.MaxTableFilesSize = 1000
	p := NewCompactionPicker(opts)

	comp := p.Pick(v, &MutableCFOptions{})
	require.NotNil(t, comp)
	assert.Equal(t, []*manifest.FileMetadata{f3}, comp.Inputs[0])
	assert.True(t, f3.IsCompacting())
	assert.False(t, f1.IsCompacting())
	assert.False(t, f2.IsCompacting())
}

// Property (§8): FIFO never picks anything once the cap is already met.
func TestPickFIFO_UnderCapIsNoop(t *testing.T) {
	f1 := mkFile(1, 'a', 'a', 200, 2)
	f2 := mkFile(2, 'b', 'b', 300, 1)
	v := mkVersion([][]*manifest.FileMetadata{{f1, f2}})

	opts := (&ImmutableCFOptions{NumLevels: 1, CompactionStyle: CompactionStyleFIFO}).EnsureDefaults()
	opts.FIFO.MaxTableFilesSize = 1000
	p := NewCompactionPicker(opts)

	assert.Nil(t, p.Pick(v, &MutableCFOptions{}))
}
