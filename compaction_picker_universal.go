// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

import (
	"github.com/cockroachdb/errors"
	"github.com/cockroachdb/lsmpicker/internal/manifest"
)

// pickUniversal implements the tiered ("universal") strategy of §4.5. It
// operates exclusively on level 0, trying the three sub-policies in order
// and returning the first that yields a candidate.
func (p *CompactionPicker) pickUniversal(v *manifest.Version, mutable *MutableCFOptions) *Compaction {
	files := v.Files[0]
	if len(files) < mutable.Level0FileNumCompactionTrigger {
		return nil
	}
	assertNonOverlappingSeqNums(files)

	u := p.opts.Universal
	if picked := pickSizeAmplification(files, u.MaxSizeAmplificationPercent); picked != nil {
		return p.finishUniversal(v, picked, true, mutable)
	}
	if picked := pickSizeRatioRun(files, u.SizeRatio, u.MinMergeWidth, u.MaxMergeWidth, len(files), u.StopStyle, false); picked != nil {
		return p.finishUniversal(v, picked, sizeRatioShouldCompress(files, picked, u), mutable)
	}
	lastResortMax := len(files) - mutable.Level0FileNumCompactionTrigger
	if lastResortMax < u.MinMergeWidth {
		return nil
	}
	if picked := pickSizeRatioRun(files, u.SizeRatio, u.MinMergeWidth, u.MaxMergeWidth, lastResortMax, u.StopStyle, true); picked != nil {
		p.opts.Logger.Infof("lsmpicker: universal last-resort compaction of %d of %d level-0 files", len(picked), len(files))
		return p.finishUniversal(v, picked, sizeRatioShouldCompress(files, picked, u), mutable)
	}
	return nil
}

// assertNonOverlappingSeqNums checks the invariant the tiered picker relies
// on: level 0's files, read newest-first, have strictly non-overlapping
// sequence-number intervals. A violation here is a programming error in the
// flush/ingest path that produced the Version, not a runtime condition the
// picker can recover from (§7).
func assertNonOverlappingSeqNums(files []*manifest.FileMetadata) {
	for i := 1; i < len(files); i++ {
		if files[i-1].SmallestSeqNum <= files[i].LargestSeqNum {
			panic(errors.AssertionFailedf(
				"lsmpicker: level-0 files are not newest-first by disjoint sequence range: %d..%d overlaps %d..%d",
				files[i-1].SmallestSeqNum, files[i-1].LargestSeqNum,
				files[i].SmallestSeqNum, files[i].LargestSeqNum))
		}
	}
}

// pickSizeAmplification implements §4.5.1. Leading files already being
// compacted are skipped; any later file being compacted aborts the
// sub-policy entirely, since size amplification can't be reduced without
// eventually touching the tail.
func pickSizeAmplification(files []*manifest.FileMetadata, maxAmpPercent int) []*manifest.FileMetadata {
	if len(files) == 0 {
		return nil
	}
	start := 0
	for start < len(files) && files[start].IsCompacting() {
		start++
	}
	if start >= len(files) {
		return nil
	}
	for i := start; i < len(files); i++ {
		if files[i].IsCompacting() {
			return nil
		}
	}
	if start >= len(files)-1 {
		// Nothing but the oldest file remains; there's no "everything
		// except the oldest" to sum.
		return nil
	}

	oldest := files[len(files)-1]
	var candidateSize uint64
	for _, f := range files[start : len(files)-1] {
		candidateSize += f.CompensatedSize
	}
	earliestFileSize := oldest.Size
	if candidateSize*100 < uint64(maxAmpPercent)*earliestFileSize {
		return nil
	}
	return files[start:]
}

// pickSizeRatioRun implements §4.5.2 (and, with acceptAny set, §4.5.3's
// last-resort rerun with an effectively unbounded ratio). It walks candidate
// start positions and, at each, grows a contiguous newer-to-older run while
// the next file's size stays within ratio percent of the run so far.
func pickSizeRatioRun(
	files []*manifest.FileMetadata,
	ratio, minWidth, maxWidth, maxFiles int,
	stop StopStyle,
	acceptAny bool,
) []*manifest.FileMetadata {
	limit := maxWidth
	if maxFiles < limit {
		limit = maxFiles
	}
	if limit < minWidth {
		return nil
	}
	for start := 0; start < len(files); start++ {
		if files[start].IsCompacting() {
			continue
		}
		candidateSize := files[start].CompensatedSize
		run := []*manifest.FileMetadata{files[start]}
		for next := start + 1; next < len(files) && len(run) < limit; next++ {
			f := files[next]
			if f.IsCompacting() {
				break
			}
			if !acceptAny {
				sz := candidateSize * uint64(100+ratio) / 100
				if f.CompensatedSize > sz {
					break
				}
				if stop == StopStyleSimilarSize {
					szRev := f.CompensatedSize * uint64(100+ratio) / 100
					if szRev < candidateSize {
						break
					}
				}
			}
			if stop == StopStyleSimilarSize {
				candidateSize = f.CompensatedSize
			} else {
				candidateSize += f.CompensatedSize
			}
			run = append(run, f)
		}
		if len(run) >= minWidth {
			return run
		}
	}
	return nil
}

// sizeRatioShouldCompress implements §4.5.2's compression rule: disable
// compression if CompressionSizePercent is configured and the total size of
// files older than picked already meets that percentage of total level-0
// bytes — in that case the data is presumed to already be compressed by an
// earlier compaction.
func sizeRatioShouldCompress(files, picked []*manifest.FileMetadata, u CompactionOptionsUniversal) bool {
	if u.CompressionSizePercent < 0 {
		return true
	}
	oldestPickedIdx := 0
	for i, f := range files {
		if f == picked[len(picked)-1] {
			oldestPickedIdx = i
			break
		}
	}
	var olderSize, totalSize uint64
	for i, f := range files {
		totalSize += f.Size
		if i > oldestPickedIdx {
			olderSize += f.Size
		}
	}
	if totalSize == 0 {
		return true
	}
	return olderSize*100 < uint64(u.CompressionSizePercent)*totalSize
}

// finishUniversal assembles the Compaction object for a picked run: asserts
// len(inputs[0]) > 1 (per §4.5, a tiered compaction is never a single
// file), records bottommostLevel and isFullCompaction, chooses the output
// path, and registers the compaction as in-flight.
func (p *CompactionPicker) finishUniversal(
	v *manifest.Version, picked []*manifest.FileMetadata, compress bool, mutable *MutableCFOptions,
) *Compaction {
	if len(picked) <= 1 {
		panic(errors.AssertionFailedf("lsmpicker: universal compaction picked %d files, want > 1", len(picked)))
	}
	files := v.Files[0]
	oldestOnDisk := files[len(files)-1]
	bottommost := false
	full := len(picked) == len(files)
	for _, f := range picked {
		if f == oldestOnDisk {
			bottommost = true
			break
		}
	}

	estimatedTotalSize := manifest.TotalSize(picked)
	pathID := getPathID(p.opts.DBPaths, estimatedTotalSize, p.opts.Universal.SizeRatio)

	compression := CompressionNone
	if compress {
		compression = p.opts.CompressionForLevel(0)
		if compression == CompressionNone {
			compression = CompressionZstd
		}
	}

	c := &Compaction{
		version:           v,
		Level:             0,
		OutputLevel:       0,
		Inputs:            [2][]*manifest.FileMetadata{picked, nil},
		OutputPathID:      pathID,
		Compression:       compression,
		MaxOutputFileSize: mutable.MaxFileSizeForLevel(0),
		BottommostLevel:   bottommost,
		IsFullCompaction:  full,
	}
	p.insert(c)
	return c
}
