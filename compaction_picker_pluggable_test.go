// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package lsmpicker

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cockroachdb/lsmpicker/internal/manifest"
)

// fakeCompactor is a minimal Compactor that always offers a fixed file
// number set.
type fakeCompactor struct {
	fileNumbers []uint64
	outputLevel int
	opts        CompactionOptions
	err         error
}

func (f *fakeCompactor) PickCompaction(ColumnFamilyMetaData) ([]uint64, int, error) {
	return f.fileNumbers, f.outputLevel, f.err
}

func (f *fakeCompactor) PickCompactionByRange(ColumnFamilyMetaData, int, int) ([]uint64, error) {
	return f.fileNumbers, f.err
}

func (f *fakeCompactor) CompactOptions() CompactionOptions {
	return f.opts
}

func TestPickPluggable_DelegatesToCompactor(t *testing.T) {
	a := mkFile(1, 'a', 'b', 100, 1)
	b := mkFile(2, 'c', 'd', 100, 2)
	files := make([][]*manifest.FileMetadata, 2)
	files[0] = []*manifest.FileMetadata{a}
	files[1] = []*manifest.FileMetadata{b}
	v := mkVersion(files)

	compactor := &fakeCompactor{
		fileNumbers: []uint64{1, 2},
		outputLevel: 1,
		opts:        CompactionOptions{Compression: CompressionSnappy, OutputPathID: 2},
	}
	opts := (&ImmutableCFOptions{NumLevels: 2, CompactionStyle: CompactionStylePluggable, Compactor: compactor}).EnsureDefaults()
	mutable := (&MutableCFOptions{}).EnsureDefaults()
	p := NewCompactionPicker(opts)

	comp := p.Pick(v, mutable)
	require.NotNil(t, comp)
	assert.Equal(t, []*manifest.FileMetadata{a}, comp.Inputs[0])
	assert.Equal(t, []*manifest.FileMetadata{b}, comp.Inputs[1])
	assert.Equal(t, CompressionSnappy, comp.Compression)
	assert.Equal(t, 2, comp.OutputPathID)
}

// A Compactor's empty answer, or an error, is indistinguishable from an idle
// picker: both yield nil.
func TestPickPluggable_EmptyAnswerIsNil(t *testing.T) {
	a := mkFile(1, 'a', 'b', 100, 1)
	v := mkVersion([][]*manifest.FileMetadata{{a}})

	compactor := &fakeCompactor{}
	opts := (&ImmutableCFOptions{NumLevels: 1, CompactionStyle: CompactionStylePluggable, Compactor: compactor}).EnsureDefaults()
	mutable := (&MutableCFOptions{}).EnsureDefaults()
	p := NewCompactionPicker(opts)

	assert.Nil(t, p.Pick(v, mutable))
}
