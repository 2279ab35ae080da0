// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

// ColumnFamilyMetaData is the read-only snapshot view of a column family
// handed to an externally supplied Compactor, so that it can make a
// selection without reaching into picker or Version internals.
type ColumnFamilyMetaData struct {
	// Levels holds, per level, every live file number and its compensated
	// size.
	Levels [][]ColumnFamilyFile
}

// ColumnFamilyFile is one file's externally visible identity.
type ColumnFamilyFile struct {
	FileNum         uint64
	CompensatedSize uint64
}

// CompactionOptions is returned by a Compactor to describe how its picked
// files should be compacted.
type CompactionOptions struct {
	Compression Compression
	OutputPathID int
}

// Compactor is the externally supplied selection strategy behind the
// pluggable picker (§4.9). Implementations choose file numbers; the picker
// itself still owns sanitization, marking, and in-flight bookkeeping.
type Compactor interface {
	// PickCompaction selects files for an automatic compaction, returning
	// their file numbers and the level they should be written to.
	PickCompaction(cf ColumnFamilyMetaData) (fileNumbers []uint64, outputLevel int, err error)

	// PickCompactionByRange selects files for a manual compaction confined
	// to [inputLevel, outputLevel].
	PickCompactionByRange(
		cf ColumnFamilyMetaData, inputLevel, outputLevel int,
	) (fileNumbers []uint64, err error)

	// CompactOptions returns the compaction parameters the Compactor wants
	// applied to whatever it picks.
	CompactOptions() CompactionOptions
}
