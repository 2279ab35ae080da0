// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/lsmpicker/internal/manifest"
)

// pickFIFO implements §4.6: level 0 is the only level, and once its total
// compensated size exceeds MaxTableFilesSize, the oldest files are deleted
// (via a deletion-only compaction) until the cap is met again.
func (p *CompactionPicker) pickFIFO(v *manifest.Version) *Compaction {
	if v.NumberLevels() != 1 {
		panic(errors.AssertionFailedf("lsmpicker: FIFO requires exactly one level, got %d", v.NumberLevels()))
	}
	files := v.Files[0]
	if len(files) == 0 {
		return nil
	}
	total := manifest.TotalCompensatedSize(files)
	sizeCap := p.opts.FIFO.MaxTableFilesSize
	if total <= sizeCap {
		return nil
	}
	if p.hasInProgress(0) {
		return nil
	}

	oldestFirst := oldestFirstOrder(files)
	var toDelete []*manifest.FileMetadata
	remaining := total
	for _, f := range oldestFirst {
		toDelete = append(toDelete, f)
		remaining -= f.CompensatedSize
		if remaining <= sizeCap {
			break
		}
	}
	if len(toDelete) == 0 {
		return nil
	}

	c := &Compaction{
		version:     v,
		Level:       0,
		OutputLevel: 0,
		Inputs:      [2][]*manifest.FileMetadata{toDelete, nil},
		IsFullCompaction: false,
	}
	p.insert(c)
	return c
}

// compactRangeFIFO implements the FIFO branch of §4.8: CompactRange ignores
// begin/end and simply delegates to the same deletion-only policy pickFIFO
// already implements, reporting no truncation (FIFO never truncates: it
// always considers every oldest file up to the cap).
func (p *CompactionPicker) compactRangeFIFO(v *manifest.Version) *Compaction {
	c := p.pickFIFO(v)
	if c != nil {
		c.IsManualCompaction = true
	}
	return c
}

// oldestFirstOrder returns files sorted oldest-first (ascending
// SmallestSeqNum), the reverse of level 0's usual newest-first order.
func oldestFirstOrder(files []*manifest.FileMetadata) []*manifest.FileMetadata {
	out := make([]*manifest.FileMetadata, len(files))
	copy(out, files)
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}
