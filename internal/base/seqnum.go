// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package base

// SeqNum is a sequence number defining precedence among identical user keys.
// A key with a higher sequence number takes precedence over an equal user key
// with a lower sequence number. As keys are committed to the database they
// are assigned increasing sequence numbers.
type SeqNum uint64

const (
	// SeqNumZero is the zero sequence number, assigned by compactions to keys
	// proven to have no live predecessor.
	SeqNumZero SeqNum = 0
	// SeqNumMax is the largest valid sequence number.
	SeqNumMax SeqNum = 1<<63 - 1
)

// KeyKind enumerates the kind tag carried by an InternalKey's trailer.
type KeyKind uint8

const (
	// KeyKindSet is a set of a user key to a value.
	KeyKindSet KeyKind = iota
	// KeyKindDelete is a point deletion of a user key.
	KeyKindDelete
	// KeyKindRangeDelete deletes a range of user keys.
	KeyKindRangeDelete
	// KeyKindMerge is a merge operand.
	KeyKindMerge
)
