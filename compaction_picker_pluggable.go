// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

import (
	"github.com/cockroachdb/lsmpicker/internal/manifest"
)

// columnFamilyMetaData builds the read-only snapshot a Compactor is handed,
// per §6's GetColumnFamilyMetaData collaborator method.
func columnFamilyMetaData(v *manifest.Version) ColumnFamilyMetaData {
	cf := ColumnFamilyMetaData{Levels: make([][]ColumnFamilyFile, v.NumberLevels())}
	for l, files := range v.Files {
		cf.Levels[l] = make([]ColumnFamilyFile, len(files))
		for i, f := range files {
			cf.Levels[l][i] = ColumnFamilyFile{FileNum: f.FileNum, CompensatedSize: f.CompensatedSize}
		}
	}
	return cf
}

// pickPluggable implements §4.9's automatic path: ask the configured
// Compactor which files to merge, sanitize and resolve its answer against
// the current Version, and assemble the result into a Compaction. Any
// failure along the way — the Compactor erroring, or its answer failing
// sanitization — yields a nil Compaction exactly like "nothing to do": the
// caller cannot distinguish a badly behaved Compactor from an idle one, by
// design, since neither warrants retrying differently at this layer.
func (p *CompactionPicker) pickPluggable(v *manifest.Version, mutable *MutableCFOptions) *Compaction {
	if p.opts.Compactor == nil {
		return nil
	}
	fileNumbers, outputLevel, err := p.opts.Compactor.PickCompaction(columnFamilyMetaData(v))
	if err != nil || len(fileNumbers) == 0 {
		return nil
	}
	return p.formSanitizedPluggableCompaction(v, fileNumbers, outputLevel, mutable)
}

// pickPluggableByRange implements the manual-compaction variant of §4.9,
// routed through PickCompactionByRange instead of PickCompaction.
func (p *CompactionPicker) pickPluggableByRange(
	v *manifest.Version, mutable *MutableCFOptions, inputLevel, outputLevel int,
) *Compaction {
	if p.opts.Compactor == nil {
		return nil
	}
	fileNumbers, err := p.opts.Compactor.PickCompactionByRange(columnFamilyMetaData(v), inputLevel, outputLevel)
	if err != nil || len(fileNumbers) == 0 {
		return nil
	}
	c := p.formSanitizedPluggableCompaction(v, fileNumbers, outputLevel, mutable)
	if c != nil {
		c.IsManualCompaction = true
	}
	return c
}

// formSanitizedPluggableCompaction runs §4.9 steps 2-5 over a Compactor's
// raw file-number answer.
func (p *CompactionPicker) formSanitizedPluggableCompaction(
	v *manifest.Version, fileNumbers []uint64, outputLevel int, mutable *MutableCFOptions,
) *Compaction {
	numbers := make(map[uint64]struct{}, len(fileNumbers))
	for _, n := range fileNumbers {
		numbers[n] = struct{}{}
	}

	sanitized, err := sanitizeCompactionInputFiles(v, numbers, outputLevel)
	if err != nil {
		return nil
	}
	levels, err := getCompactionInputsFromFileNumbers(v, toFileNumbers(sanitized))
	if err != nil {
		return nil
	}

	effectiveOutput := outputLevel
	if outputLevel == DeletionCompactionOutputLevel {
		effectiveOutput = 0
	}
	c := formCompaction(v, levels, effectiveOutput, mutable)

	compactOpts := p.opts.Compactor.CompactOptions()
	c.Compression = compactOpts.Compression
	c.OutputPathID = compactOpts.OutputPathID

	p.insert(c)
	return c
}
