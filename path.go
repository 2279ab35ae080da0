// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

// getPathID implements §4.7's path-selection rule for the tiered picker.
// It chooses the earliest configured DB path whose remaining capacity can
// absorb both fileSize now and estimatedFutureSize later — the extra room a
// tiered run needs once it is itself merged into something roughly twice as
// large. If no path qualifies, the last configured path is used as a
// catch-all.
func getPathID(paths []DBPath, fileSize uint64, sizeRatio int) int {
	if len(paths) == 0 {
		return 0
	}
	estimatedFutureSize := fileSize * uint64(100-sizeRatio) / 100
	var accumulatedPrefixCapacity uint64
	for i, p := range paths[:len(paths)-1] {
		if p.TargetSize > int64(fileSize) {
			room := uint64(p.TargetSize) - fileSize
			if accumulatedPrefixCapacity+room > estimatedFutureSize {
				return i
			}
		}
		accumulatedPrefixCapacity += uint64(p.TargetSize)
	}
	return len(paths) - 1
}
