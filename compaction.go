// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

import (
	"github.com/cespare/xxhash/v2"
	"github.com/cockroachdb/lsmpicker/internal/manifest"
)

// Compaction is a decision produced by a CompactionPicker: which files to
// merge, at what level to place the result, and under what byte/compression
// policy. A Compaction does not perform the merge — it is handed to a
// background executor, which eventually calls ReleaseCompactionFiles exactly
// once regardless of outcome (§5).
type Compaction struct {
	version *manifest.Version

	// Level and OutputLevel name the input and output levels. For the
	// tiered and FIFO pickers both equal 0.
	Level       int
	OutputLevel int

	// Inputs[0] holds files at Level; Inputs[1] holds files at OutputLevel
	// that overlap Inputs[0]. Grandparents holds files at OutputLevel+1
	// overlapping the union, used downstream to bound output file size.
	Inputs       [2][]*manifest.FileMetadata
	Grandparents []*manifest.FileMetadata

	OutputPathID               int
	Compression                Compression
	MaxOutputFileSize          uint64
	MaxGrandparentOverlapBytes uint64

	Score              float64
	IsManualCompaction bool
	IsFullCompaction   bool
	BottommostLevel    bool

	// baseIndex and parentIndex are the scan hints the expansion helpers
	// pass for version.Files[Level] and version.Files[OutputLevel]. Nothing
	// in this package advances them, so they stay 0 and every such scan
	// starts at the level's first file.
	baseIndex   int
	parentIndex int

	picker *compactionPickerState
}

// identity returns a stable hash of the compaction's claimed file numbers,
// used as the key into the in-flight set so that two Compaction values
// referencing the same files are recognized as the same entry even if they
// are distinct pointers (e.g. across a picker restart that rebuilds its
// in-flight set from persisted state).
func (c *Compaction) identity() uint64 {
	h := xxhash.New()
	var buf [8]byte
	write := func(n uint64) {
		for i := 0; i < 8; i++ {
			buf[i] = byte(n >> (8 * i))
		}
		_, _ = h.Write(buf[:])
	}
	write(uint64(c.Level))
	write(uint64(c.OutputLevel))
	for _, in := range c.Inputs {
		for _, f := range in {
			write(f.FileNum)
		}
	}
	return h.Sum64()
}

// AllInputs returns every file claimed by the compaction, across both input
// levels. This is the set on which being_compacted must be set and later
// cleared.
func (c *Compaction) AllInputs() []*manifest.FileMetadata {
	out := make([]*manifest.FileMetadata, 0, len(c.Inputs[0])+len(c.Inputs[1]))
	out = append(out, c.Inputs[0]...)
	out = append(out, c.Inputs[1]...)
	return out
}

// markFilesBeingCompacted sets or clears the being-compacted bit on every
// file the compaction claims. Called with v=true just before the compaction
// is inserted into the in-flight set, and with v=false (via
// ReleaseCompactionFiles) once the background executor is done with it.
func (c *Compaction) markFilesBeingCompacted(v bool) {
	for _, f := range c.AllInputs() {
		f.SetCompacting(v)
	}
}
