// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

import (
	"github.com/cockroachdb/lsmpicker/internal/base"
	"github.com/cockroachdb/lsmpicker/internal/manifest"
)

func testComparator() base.InternalKeyComparator {
	return base.InternalKeyComparator{UserKeyCompare: base.DefaultCompare}
}

// mkFile builds a synthetic file metadata descriptor for table tests.
// smallest/largest are treated as single-byte user keys for readability.
func mkFile(num uint64, smallest, largest byte, size uint64, seqNum uint64) *manifest.FileMetadata {
	return &manifest.FileMetadata{
		FileNum:         num,
		Size:            size,
		CompensatedSize: size,
		Smallest:        base.MakeInternalKey([]byte{smallest}, base.SeqNum(seqNum), base.KeyKindSet),
		Largest:         base.MakeInternalKey([]byte{largest}, base.SeqNum(seqNum), base.KeyKindSet),
		SmallestSeqNum:  base.SeqNum(seqNum),
		LargestSeqNum:   base.SeqNum(seqNum),
	}
}

func mkVersion(files [][]*manifest.FileMetadata) *manifest.Version {
	return manifest.NewVersion(testComparator(), files)
}
