// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

import (
	"github.com/cockroachdb/lsmpicker/internal/base"
)

// CompactionStyle selects which of the four picker strategies governs a
// column family.
type CompactionStyle int

const (
	// CompactionStyleLeveled is the size-tiered-within-a-level strategy of
	// §4.4: each non-zero level is key-partitioned, and compactions merge
	// one file from level L with its overlapping files at L+1.
	CompactionStyleLeveled CompactionStyle = iota
	// CompactionStyleUniversal is the tiered strategy of §4.5: all data
	// lives at level 0 as age-ordered runs, merged by size-amp, size-ratio,
	// or last-resort file-count sub-policies.
	CompactionStyleUniversal
	// CompactionStyleFIFO enforces a flat byte cap on level 0 by deleting
	// the oldest files (§4.6). Requires NumLevels == 1.
	CompactionStyleFIFO
	// CompactionStylePluggable delegates file selection to an externally
	// supplied Compactor, routed through the sanitizer (§4.9).
	CompactionStylePluggable
)

// DBPath names one of the storage targets a compaction's output may be
// placed on, alongside the byte budget the picker should try to keep that
// target under before spilling to the next path.
type DBPath struct {
	Path       string
	TargetSize int64
}

// StopStyle selects how the tiered picker's size-ratio sub-policy (§4.5.2)
// accumulates candidate_size across a run.
type StopStyle int

const (
	// StopStyleTotalSize sums every file's compensated size into the
	// running candidate_size.
	StopStyleTotalSize StopStyle = iota
	// StopStyleSimilarSize replaces (rather than accumulates) candidate_size
	// with the most recently added file's compensated size, additionally
	// requiring the next candidate be within size_ratio of it.
	StopStyleSimilarSize
)

// CompactionOptionsUniversal configures the tiered picker (§4.5).
type CompactionOptionsUniversal struct {
	// SizeRatio is the percent tolerance used by the size-ratio sub-policy.
	SizeRatio int
	// MinMergeWidth is the minimum run length the size-ratio sub-policy will
	// accept; must be ≥ 2 (a compaction of one file is not a compaction).
	MinMergeWidth int
	// MaxMergeWidth caps the run length the size-ratio sub-policy will grow
	// to, before max_number_of_files_to_compact takes over as the binding
	// constraint.
	MaxMergeWidth int
	// MaxSizeAmplificationPercent (R) is the size-amplification-sub-policy
	// trigger (§4.5.1): compact everything once
	// candidate_size*100 >= R*earliest_file_size.
	MaxSizeAmplificationPercent int
	// CompressionSizePercent disables output compression when the total
	// size of files older than the compaction already meets this percent
	// of total level-0 bytes (§4.5.2). A negative value disables the rule
	// (compression is always enabled).
	CompressionSizePercent int
	// StopStyle selects the size-ratio run-accumulation rule.
	StopStyle StopStyle
}

// CompactionOptionsFIFO configures the FIFO picker (§4.6).
type CompactionOptionsFIFO struct {
	// MaxTableFilesSize (T) is the total compensated-size cap on level 0.
	MaxTableFilesSize uint64
}

// ImmutableCFOptions is the column family configuration that does not change
// across the lifetime of a CompactionPicker — a new picker is constructed
// whenever any of these would need to change.
type ImmutableCFOptions struct {
	NumLevels       int
	CompactionStyle CompactionStyle

	// Compression is the default output codec. CompressionPerLevel, when
	// non-nil, overrides it per level (indexed by output level, clamped to
	// [0, len-1] for levels beyond the slice).
	Compression         Compression
	CompressionPerLevel []Compression

	DBPaths []DBPath

	Universal CompactionOptionsUniversal
	FIFO      CompactionOptionsFIFO

	Comparer base.InternalKeyComparator
	Logger   base.Logger

	// Compactor is consulted only when CompactionStyle ==
	// CompactionStylePluggable.
	Compactor Compactor
}

// CompressionForLevel resolves the effective output codec for outputLevel,
// honoring CompressionPerLevel when configured (§4.4's compression policy).
func (o *ImmutableCFOptions) CompressionForLevel(outputLevel int) Compression {
	if len(o.CompressionPerLevel) == 0 {
		return o.Compression
	}
	idx := outputLevel
	if idx < 0 {
		idx = 0
	}
	if idx >= len(o.CompressionPerLevel) {
		idx = len(o.CompressionPerLevel) - 1
	}
	return o.CompressionPerLevel[idx]
}

// EnsureDefaults fills in zero-valued fields with the picker's defaults,
// mirroring the level-by-level EnsureDefaults idiom of a column-family
// options type: callers may leave most fields unset and get a working
// configuration.
func (o *ImmutableCFOptions) EnsureDefaults() *ImmutableCFOptions {
	if o.NumLevels <= 0 {
		o.NumLevels = 7
	}
	if o.Comparer.UserKeyCompare == nil {
		o.Comparer = base.InternalKeyComparator{UserKeyCompare: base.DefaultCompare}
	}
	if o.Logger == nil {
		o.Logger = base.DefaultLogger{}
	}
	if o.Universal.MinMergeWidth < 2 {
		o.Universal.MinMergeWidth = 2
	}
	if o.Universal.MaxMergeWidth <= 0 {
		o.Universal.MaxMergeWidth = 1 << 30
	}
	if o.Universal.SizeRatio <= 0 {
		o.Universal.SizeRatio = 1
	}
	if o.Universal.MaxSizeAmplificationPercent <= 0 {
		o.Universal.MaxSizeAmplificationPercent = 200
	}
	if len(o.DBPaths) == 0 {
		o.DBPaths = []DBPath{{Path: "", TargetSize: 1 << 62}}
	}
	return o
}

// MutableCFOptions is the subset of column-family configuration that may
// change without invalidating an existing CompactionPicker, since the
// picker re-reads it on every call rather than caching it at construction.
type MutableCFOptions struct {
	// Level0FileNumCompactionTrigger is the L0 file-count trigger shared by
	// the leveled picker's score computation and the tiered picker's gate
	// (§4.5).
	Level0FileNumCompactionTrigger int

	// MaxFileSizeForLevel returns the target output file size at level,
	// used by the leveled picker's compression/size-splitting logic and by
	// CompactRange's truncation cap (§4.8).
	MaxFileSizeForLevel func(level int) uint64

	// MaxGrandParentOverlapBytes bounds how much level+2 data a single
	// leveled compaction's output may overlap before the downstream writer
	// must cut a new output file.
	MaxGrandParentOverlapBytes func(level int) uint64

	// ExpandedCompactionByteSizeLimit bounds the total size of a leveled
	// compaction after the lateral-growth step of §4.3.
	ExpandedCompactionByteSizeLimit func(level int) uint64

	// SourceCompactionFactor multiplies MaxFileSizeForLevel(inputLevel) to
	// obtain the truncation cap used by manual CompactRange (§4.8).
	SourceCompactionFactor int

	// LevelMaxBytes returns level's target total size in bytes, used to
	// score it for the leveled strategy (score = compensated size /
	// LevelMaxBytes). Levels 0 and the last level are never scored by
	// bytes and may return 0.
	LevelMaxBytes func(level int) uint64
}

// EnsureDefaults fills in defaults matching a typical geometrically growing
// LSM shape: each level's target size is levelMultiplier times its parent's.
func (o *MutableCFOptions) EnsureDefaults() *MutableCFOptions {
	if o.Level0FileNumCompactionTrigger <= 0 {
		o.Level0FileNumCompactionTrigger = 4
	}
	if o.SourceCompactionFactor <= 0 {
		o.SourceCompactionFactor = 1
	}
	const baseFileSize = 2 << 20       // 2 MiB
	const levelMultiplier = 10         // geometric growth factor between levels
	const maxGrandparentOverlap = 10   // in units of target file size
	const expandedLimit = 25           // in units of target file size
	if o.MaxFileSizeForLevel == nil {
		o.MaxFileSizeForLevel = func(level int) uint64 {
			size := uint64(baseFileSize)
			for i := 0; i < level; i++ {
				size *= levelMultiplier
			}
			return size
		}
	}
	if o.MaxGrandParentOverlapBytes == nil {
		mf := o.MaxFileSizeForLevel
		o.MaxGrandParentOverlapBytes = func(level int) uint64 { return maxGrandparentOverlap * mf(level) }
	}
	if o.ExpandedCompactionByteSizeLimit == nil {
		mf := o.MaxFileSizeForLevel
		o.ExpandedCompactionByteSizeLimit = func(level int) uint64 { return expandedLimit * mf(level) }
	}
	if o.LevelMaxBytes == nil {
		const lBaseMaxBytes = 64 << 20 // 64 MiB
		o.LevelMaxBytes = func(level int) uint64 {
			size := uint64(lBaseMaxBytes)
			for i := 1; i < level; i++ {
				size *= levelMultiplier
			}
			return size
		}
	}
	return o
}
