// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import "bytes"

// Compare returns -1, 0, or +1 depending on whether a is less than, equal to,
// or greater than b. All user-key comparisons performed by the picker and its
// collaborators go through a Compare of this shape.
type Compare func(a, b []byte) int

// Comparer defines the ordering over user keys that a column family was
// opened with. Every component that reasons about key ranges — range
// utilities, the expansion engine, the sanitizer — takes a Compare rather
// than assuming byte-wise order, since a column family may supply its own.
type Comparer struct {
	Compare Compare
	Name    string
}

// DefaultCompare is the default byte-wise lexicographic ordering.
func DefaultCompare(a, b []byte) int {
	return bytes.Compare(a, b)
}

// DefaultComparer orders keys byte-wise, matching bytes.Compare.
var DefaultComparer = &Comparer{
	Compare: DefaultCompare,
	Name:    "leveldb.BytewiseComparator",
}
