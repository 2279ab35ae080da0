// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

import (
	ddzstd "github.com/DataDog/zstd"
	"github.com/golang/snappy"
	kpzstd "github.com/klauspost/compress/zstd"
	"github.com/minio/minlz"
)

// Compression names the codec a Compaction's output table should be written
// with. The picker never runs a codec itself — emitting bytes is the
// background executor's job — but it is the picker's job to choose which one
// applies to a given level or sub-policy (§4.4, §4.5), so the names here are
// backed by the actual codec packages the chosen library would hand off to.
type Compression int

const (
	// CompressionNone disables compression; used by the leveled picker when
	// a level has no explicit override and the column family default is
	// none, and never used by the tiered picker (which always compresses
	// except where §4.5.2's "older data is presumably already compressed"
	// rule applies).
	CompressionNone Compression = iota
	// CompressionSnappy is the historical LSM default: cheap, low ratio.
	CompressionSnappy
	// CompressionZstd trades CPU for a materially better ratio; used for
	// deeper levels and size-amplification-triggered tiered compactions
	// where rewrite cost is amortized over a long level lifetime.
	CompressionZstd
	// CompressionMinLZ is a very fast, moderate-ratio codec suited to
	// level 0's high churn, where compaction latency dominates.
	CompressionMinLZ
)

// String implements fmt.Stringer.
func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionSnappy:
		return "snappy"
	case CompressionZstd:
		return "zstd"
	case CompressionMinLZ:
		return "minlz"
	default:
		return "unknown"
	}
}

// zstdEncoderLevel is the klauspost/compress/zstd encoder level used for
// upper, frequently-rewritten levels where ratio matters more than raw
// speed but a cgo dependency is undesirable.
var zstdEncoderLevel = kpzstd.SpeedBetterCompression

// datadogZstdLevel is the cgo-backed DataDog/zstd level used for bottommost,
// rarely-rewritten levels, where its higher compression levels are worth
// the extra CPU since the output is rewritten far less often.
var datadogZstdLevel = ddzstd.BestCompression

// EncoderLevel resolves a Compression choice to the concrete codec
// configuration the background executor should instantiate when it actually
// writes the compaction's output table.
func (c Compression) EncoderLevel() (kpzstd.EncoderLevel, bool) {
	if c != CompressionZstd {
		return 0, false
	}
	return zstdEncoderLevel, true
}

// BottommostLevel resolves CompressionZstd to the DataDog/zstd level used
// once a compaction is known to be writing the bottommost level (see
// Compaction.BottommostLevel), where the extra compression ratio pays for
// itself over the data's remaining, very long, lifetime.
func (c Compression) BottommostLevel() (int, bool) {
	if c != CompressionZstd {
		return 0, false
	}
	return datadogZstdLevel, true
}

// EstimatedMaxOutputSize estimates the largest on-disk size of a table of
// uncompressedSize input bytes under c: the worst-case encoded length for
// snappy and minlz, and uncompressedSize itself for every other codec. The
// picker itself does not call it.
func (c Compression) EstimatedMaxOutputSize(uncompressedSize int) int {
	switch c {
	case CompressionSnappy:
		return snappy.MaxEncodedLen(uncompressedSize)
	case CompressionMinLZ:
		return minlz.MaxEncodedLen(uncompressedSize)
	default:
		return uncompressedSize
	}
}
