// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

import (
	"fmt"

	"github.com/cockroachdb/redact"
)

// InternalKey is a user key tagged with a sequence number and kind, giving a
// total order over every version of every key ever written. All comparisons
// that must respect write order — file ranges, compaction boundaries — are
// expressed over InternalKey; comparisons that must ignore write order — most
// notably range-overlap tests — strip down to the UserKey.
type InternalKey struct {
	UserKey []byte
	SeqNum  SeqNum
	Kind    KeyKind
}

// MakeInternalKey returns the InternalKey (userKey, seqNum, kind).
func MakeInternalKey(userKey []byte, seqNum SeqNum, kind KeyKind) InternalKey {
	return InternalKey{UserKey: userKey, SeqNum: seqNum, Kind: kind}
}

// String implements fmt.Stringer.
func (k InternalKey) String() string {
	return fmt.Sprintf("%s#%d,%d", k.UserKey, k.SeqNum, k.Kind)
}

// SafeFormat implements redact.SafeFormatter, redacting the user-data portion
// of the key while leaving the sequence number and kind visible in logs.
func (k InternalKey) SafeFormat(w redact.SafePrinter, _ rune) {
	w.Printf("%x#%d,%d", k.UserKey, redact.Safe(k.SeqNum), redact.Safe(k.Kind))
}

// InternalKeyComparator orders InternalKeys by user key first, breaking ties
// by descending sequence number (so that the newest version of a key sorts
// first), and then by kind.
type InternalKeyComparator struct {
	UserKeyCompare Compare
}

// Compare orders a before b, a at b, or a after b.
func (c InternalKeyComparator) Compare(a, b InternalKey) int {
	if n := c.UserKeyCompare(a.UserKey, b.UserKey); n != 0 {
		return n
	}
	if a.SeqNum > b.SeqNum {
		return -1
	}
	if a.SeqNum < b.SeqNum {
		return 1
	}
	if a.Kind < b.Kind {
		return -1
	}
	if a.Kind > b.Kind {
		return 1
	}
	return 0
}
