// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Package metrics instruments a lsmpicker.CompactionPicker with a
// pick-latency histogram and a per-level score gauge, following the same
// Prometheus-facade-over-an-HDR-histogram pattern pebble itself uses for
// its own latency tracking.
package metrics

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/cockroachdb/lsmpicker"
	"github.com/cockroachdb/lsmpicker/internal/manifest"
)

// Picker wraps a *lsmpicker.CompactionPicker, recording how long each Pick
// call takes and the most recently observed score for every level.
type Picker struct {
	inner *lsmpicker.CompactionPicker

	pickLatencyNanos *hdrhistogram.Histogram
	levelScore       *prometheus.GaugeVec
}

// NewPicker wraps inner for metrics collection. The returned *Picker exposes,
// through its LevelScore method, a prometheus.Collector suitable for
// registration with a prometheus.Registry.
func NewPicker(inner *lsmpicker.CompactionPicker) *Picker {
	return &Picker{
		inner:             inner,
		pickLatencyNanos:  hdrhistogram.New(0, (10 * time.Second).Nanoseconds(), 3),
		levelScore: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "lsmpicker",
			Name:      "level_score",
			Help:      "Most recently computed compaction score, by level.",
		}, []string{"level"}),
	}
}

// LevelScore returns the prometheus.Collector tracking per-level scores.
func (p *Picker) LevelScore() prometheus.Collector {
	return p.levelScore
}

// Pick runs the wrapped picker's Pick, recording the call's wall-clock
// latency into the HDR histogram.
func (p *Picker) Pick(v *manifest.Version, mutable *lsmpicker.MutableCFOptions) *lsmpicker.Compaction {
	start := time.Now()
	c := p.inner.Pick(v, mutable)
	_ = p.pickLatencyNanos.RecordValue(time.Since(start).Nanoseconds())
	return c
}

// RecordScores updates the level-score gauge from a freshly computed score
// table, typically the result of manifest.ComputeCompactionScore.
func (p *Picker) RecordScores(scores []manifest.LevelScore) {
	for _, ls := range scores {
		p.levelScore.WithLabelValues(levelLabel(ls.Level)).Set(ls.Score)
	}
}

// PickLatencyPercentile returns the given percentile (0-100) of recorded
// Pick call latency, in nanoseconds.
func (p *Picker) PickLatencyPercentile(pct float64) int64 {
	return p.pickLatencyNanos.ValueAtQuantile(pct)
}

func levelLabel(level int) string {
	const digits = "0123456789"
	if level < 10 {
		return digits[level : level+1]
	}
	// Levels beyond single digits are rare enough in practice that a
	// allocation-light fast path isn't worth it here.
	buf := []byte{}
	for level > 0 {
		buf = append([]byte{digits[level%10]}, buf...)
		level /= 10
	}
	return string(buf)
}
