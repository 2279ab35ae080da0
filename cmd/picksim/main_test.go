// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cockroachdb/lsmpicker"
	"github.com/cockroachdb/lsmpicker/internal/base"
	"github.com/cockroachdb/lsmpicker/internal/manifest"
)

func TestStyleAndLevels(t *testing.T) {
	style, n := styleAndLevels("universal", 7)
	assert.Equal(t, lsmpicker.CompactionStyleUniversal, style)
	assert.Equal(t, 1, n)

	style, n = styleAndLevels("fifo", 7)
	assert.Equal(t, lsmpicker.CompactionStyleFIFO, style)
	assert.Equal(t, 1, n)

	style, n = styleAndLevels("leveled", 7)
	assert.Equal(t, lsmpicker.CompactionStyleLeveled, style)
	assert.Equal(t, 7, n)
}

func TestSyntheticFiles_Level0IsNewestFirst(t *testing.T) {
	files := syntheticFiles(3, 4, 1024)
	lvl0 := files[0]
	for i := 1; i < len(lvl0); i++ {
		assert.Greater(t, lvl0[i-1].SmallestSeqNum, lvl0[i].SmallestSeqNum)
	}
	for l := 1; l < 3; l++ {
		assert.Len(t, files[l], 4)
	}
}

func TestRenderLevelTable_WritesNonEmptyOutput(t *testing.T) {
	files := syntheticFiles(2, 2, 512)
	v := manifest.NewVersion(base.InternalKeyComparator{UserKeyCompare: base.DefaultCompare}, files)
	var buf bytes.Buffer
	renderLevelTable(&buf, v)
	assert.NotEmpty(t, buf.String())
}
