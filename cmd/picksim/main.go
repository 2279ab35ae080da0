// Copyright 2011 The LevelDB-Go and Pebble Authors. All rights reserved. Use
// of this source code is governed by a BSD-style license that can be found in
// the LICENSE file.

// Command picksim simulates a compaction picker against a synthetic Version
// and renders the level table and score history it observes, in the style
// of pebble's own cmd/pebble introspection subcommands.
package main

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/guptarohit/asciigraph"
	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/cockroachdb/lsmpicker"
	"github.com/cockroachdb/lsmpicker/internal/base"
	"github.com/cockroachdb/lsmpicker/internal/manifest"
)

var (
	numLevels   int
	filesPerLvl int
	fileSize    uint64
	maxRounds   int
	style       string
)

var rootCmd = &cobra.Command{
	Use:   "picksim",
	Short: "simulate a compaction picker against a synthetic LSM shape",
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "repeatedly Pick against a synthetic, geometrically-sized Version",
	RunE:  runSimulation,
}

func main() {
	log.SetFlags(0)

	runCmd.Flags().IntVar(&numLevels, "levels", 7, "number of levels")
	runCmd.Flags().IntVar(&filesPerLvl, "files-per-level", 6, "files seeded at each level, level 0 included")
	runCmd.Flags().Uint64Var(&fileSize, "file-size", 2<<20, "compensated size of each seeded file")
	runCmd.Flags().IntVar(&maxRounds, "rounds", 20, "maximum number of Pick rounds to simulate")
	runCmd.Flags().StringVar(&style, "style", "leveled", "compaction style: leveled, universal, or fifo")

	rootCmd.AddCommand(runCmd)
	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cmpStyle, n := styleAndLevels(style, numLevels)
	files := syntheticFiles(n, filesPerLvl, fileSize)
	v := manifest.NewVersion(base.InternalKeyComparator{UserKeyCompare: base.DefaultCompare}, files)

	opts := &lsmpicker.ImmutableCFOptions{NumLevels: n, CompactionStyle: cmpStyle}
	opts.EnsureDefaults()
	mutable := (&lsmpicker.MutableCFOptions{}).EnsureDefaults()

	picker := lsmpicker.NewCompactionPicker(opts)

	levelMaxBytes := make([]int64, n)
	for l := 1; l < n; l++ {
		levelMaxBytes[l] = int64(mutable.LevelMaxBytes(l))
	}

	var history []float64
	round := 0
	for ; round < maxRounds; round++ {
		c := picker.Pick(v, mutable)
		if c == nil {
			break
		}
		c.ReleaseCompactionFiles(nil)

		scores := manifest.ComputeCompactionScore(v, levelMaxBytes, mutable.Level0FileNumCompactionTrigger, nil)
		if len(scores) > 0 {
			history = append(history, scores[0].Score)
		}
	}

	renderLevelTable(os.Stdout, v)
	fmt.Fprintf(os.Stdout, "\npicked %d compaction(s) before quiescing\n", round)
	if len(history) > 1 {
		fmt.Fprintln(os.Stdout, asciigraph.Plot(history, asciigraph.Height(8), asciigraph.Caption("top score by round")))
	}
	return nil
}

func styleAndLevels(style string, n int) (lsmpicker.CompactionStyle, int) {
	switch style {
	case "universal":
		return lsmpicker.CompactionStyleUniversal, 1
	case "fifo":
		return lsmpicker.CompactionStyleFIFO, 1
	default:
		return lsmpicker.CompactionStyleLeveled, n
	}
}

func syntheticFiles(numLevels, perLevel int, size uint64) [][]*manifest.FileMetadata {
	files := make([][]*manifest.FileMetadata, numLevels)
	fileNum := uint64(1)
	for l := 0; l < numLevels; l++ {
		for i := 0; i < perLevel; i++ {
			lo := byte('a' + i)
			hi := byte('a' + i)
			f := &manifest.FileMetadata{
				FileNum:         fileNum,
				Size:            size,
				CompensatedSize: size,
				Smallest:        base.MakeInternalKey([]byte{lo}, base.SeqNum(fileNum), base.KeyKindSet),
				Largest:         base.MakeInternalKey([]byte{hi}, base.SeqNum(fileNum), base.KeyKindSet),
				SmallestSeqNum:  base.SeqNum(fileNum),
				LargestSeqNum:   base.SeqNum(fileNum),
			}
			files[l] = append(files[l], f)
			fileNum++
		}
	}
	// Files[0] must be newest-first (largest SmallestSeqNum first); every
	// other level is already in ascending-FileNum == ascending-key order as
	// built above, which also happens to be ascending-key order here.
	for i, j := 0, len(files[0])-1; i < j; i, j = i+1, j-1 {
		files[0][i], files[0][j] = files[0][j], files[0][i]
	}
	return files
}

func renderLevelTable(w io.Writer, v *manifest.Version) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"level", "files", "bytes"})
	for l := 0; l < v.NumberLevels(); l++ {
		table.Append([]string{
			fmt.Sprintf("%d", l),
			fmt.Sprintf("%d", len(v.Files[l])),
			fmt.Sprintf("%d", v.NumLevelBytes(l)),
		})
	}
	table.Render()
}
