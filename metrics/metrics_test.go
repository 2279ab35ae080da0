// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cockroachdb/lsmpicker"
	"github.com/cockroachdb/lsmpicker/internal/manifest"
)

func collectGauges(t *testing.T, c prometheus.Collector) []*dto.Metric {
	ch := make(chan prometheus.Metric)
	done := make(chan struct{})
	var out []*dto.Metric
	go func() {
		for m := range ch {
			pb := &dto.Metric{}
			require.NoError(t, m.Write(pb))
			out = append(out, pb)
		}
		close(done)
	}()
	c.Collect(ch)
	close(ch)
	<-done
	return out
}

func TestPicker_RecordScores(t *testing.T) {
	opts := (&lsmpicker.ImmutableCFOptions{NumLevels: 3}).EnsureDefaults()
	inner := lsmpicker.NewCompactionPicker(opts)
	p := NewPicker(inner)

	p.RecordScores([]manifest.LevelScore{{Level: 0, Score: 1.5}, {Level: 1, Score: 0.25}})

	metrics := collectGauges(t, p.LevelScore())
	assert.Len(t, metrics, 2)
}

func TestPicker_PickRecordsLatency(t *testing.T) {
	opts := (&lsmpicker.ImmutableCFOptions{NumLevels: 1, CompactionStyle: lsmpicker.CompactionStyleFIFO}).EnsureDefaults()
	inner := lsmpicker.NewCompactionPicker(opts)
	p := NewPicker(inner)

	v := manifest.NewVersion(opts.Comparer, [][]*manifest.FileMetadata{nil})
	mutable := (&lsmpicker.MutableCFOptions{}).EnsureDefaults()

	comp := p.Pick(v, mutable)
	assert.Nil(t, comp)
	assert.GreaterOrEqual(t, p.PickLatencyPercentile(50), int64(0))
}
