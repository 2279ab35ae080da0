// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

import (
	"github.com/cockroachdb/errors"

	"github.com/cockroachdb/lsmpicker/internal/base"
	"github.com/cockroachdb/lsmpicker/internal/manifest"
)

// fileRange computes the minimum bounding internal-key range of a non-empty
// file set (§4.1). It panics on an empty set: every caller in this package
// first checks for emptiness for its own reason (an empty input set usually
// signals "nothing to do", which the caller should handle before asking for
// a range), so reaching here with nothing is a programming error.
func fileRange(cmp base.InternalKeyComparator, files []*manifest.FileMetadata) (smallest, largest base.InternalKey) {
	if len(files) == 0 {
		panic(errors.AssertionFailedf("lsmpicker: fileRange of empty file set"))
	}
	return manifest.FileRange(cmp, files)
}

// rangesOverlap reports whether the user-key ranges of a and b intersect
// under cmp (§4.1). Comparison is on user keys, ignoring sequence numbers,
// because a user key may legitimately span sequence numbers across files
// and must never be split by a compaction boundary.
func rangesOverlap(cmp base.Compare, a, b []*manifest.FileMetadata) bool {
	return manifest.RangesOverlap(cmp, a, b)
}
