/*
 * stats.go, part of loopbench.
 *
 * Copyright 2016 The loopbench authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 */

package analyze

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

//Median returns the median of xs, NaN for an empty slice.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return math.NaN()
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	return stat.Quantile(0.5, stat.Empirical, s, nil)
}

//Tukey holds box-and-whisker parameters: quartiles, whiskers at 1.5 IQR
//clamped to the most extreme data points inside them, and the outliers
//beyond the whiskers.
type Tukey struct {
	Q1, Median, Q3 float64
	Lower, Upper   float64
	Outliers       []float64
}

//NewTukey computes box-and-whisker parameters for xs.
func NewTukey(xs []float64) (*Tukey, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("analyze: no data for a box plot")
	}
	s := append([]float64(nil), xs...)
	sort.Float64s(s)
	t := &Tukey{
		Q1:     stat.Quantile(0.25, stat.Empirical, s, nil),
		Median: stat.Quantile(0.5, stat.Empirical, s, nil),
		Q3:     stat.Quantile(0.75, stat.Empirical, s, nil),
	}
	iqr := t.Q3 - t.Q1
	loFence := t.Q1 - 1.5*iqr
	hiFence := t.Q3 + 1.5*iqr

	//whiskers sit on the most extreme points inside the fences
	t.Lower, t.Upper = math.Inf(1), math.Inf(-1)
	for _, v := range s {
		if v < loFence || v > hiFence {
			t.Outliers = append(t.Outliers, v)
			continue
		}
		if v < t.Lower {
			t.Lower = v
		}
		if v > t.Upper {
			t.Upper = v
		}
	}
	return t, nil
}

//Histogram is a fixed-width binning of a sample.
type Histogram struct {
	Min, Width float64
	Counts     []int
}

//NewHistogram bins xs into the given number of equal-width bins
//spanning the data range. A constant sample collapses into a single
//bin of width one.
func NewHistogram(xs []float64, bins int) (*Histogram, error) {
	if len(xs) == 0 {
		return nil, fmt.Errorf("analyze: no data for a histogram")
	}
	if bins <= 0 {
		return nil, fmt.Errorf("analyze: histogram needs a positive bin count, got %d", bins)
	}
	min, max := xs[0], xs[0]
	for _, v := range xs[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	h := &Histogram{Min: min, Counts: make([]int, bins)}
	if max == min {
		h.Width = 1
		h.Counts[0] = len(xs)
		return h, nil
	}
	h.Width = (max - min) / float64(bins)
	for _, v := range xs {
		i := int((v - min) / h.Width)
		if i >= bins {
			i = bins - 1 //max lands in the last bin
		}
		h.Counts[i]++
	}
	return h, nil
}

//LoopSummary is the per-loop row of the benchmark report.
type LoopSummary struct {
	Tag               string
	Models            int
	BestTopRMSD       float64 //lowest RMSD among the top-scoring models
	LowestScoreRMSD   float64 //RMSD of the lowest-scoring model
	LowestRMSD        float64
	PctSubangstrom    float64
	MedianRuntimeSecs float64
}

//Summary holds the whole report: one row per loop and benchmark-wide
//medians over those rows.
type Summary struct {
	Loops []LoopSummary

	MedianBestTopRMSD     float64
	MedianLowestScoreRMSD float64
	MedianLowestRMSD      float64
	MedianPctSubangstrom  float64
}

//Summarize computes the standard selections for every loop and the
//medians across loops.
func Summarize(b *Benchmark) (*Summary, error) {
	if len(b.Loops) == 0 {
		return nil, fmt.Errorf("analyze: benchmark %s has no models", b.Name)
	}
	s := &Summary{}
	var bestTop, lowScore, lowRMSD, pct []float64
	for _, l := range b.Loops {
		best, ok := l.BestOfTop(TopScoringToConsider)
		if !ok {
			continue
		}
		ls, _ := l.LowestScore()
		lr, _ := l.LowestRMSD()
		row := LoopSummary{
			Tag:               l.Tag,
			Models:            len(l.Models),
			BestTopRMSD:       best.RMSD,
			LowestScoreRMSD:   ls.RMSD,
			LowestRMSD:        lr.RMSD,
			PctSubangstrom:    l.PercentSubangstrom(),
			MedianRuntimeSecs: Median(l.Runtimes()),
		}
		s.Loops = append(s.Loops, row)
		bestTop = append(bestTop, row.BestTopRMSD)
		lowScore = append(lowScore, row.LowestScoreRMSD)
		lowRMSD = append(lowRMSD, row.LowestRMSD)
		pct = append(pct, row.PctSubangstrom)
	}
	if len(s.Loops) == 0 {
		return nil, fmt.Errorf("analyze: benchmark %s has no models", b.Name)
	}
	s.MedianBestTopRMSD = Median(bestTop)
	s.MedianLowestScoreRMSD = Median(lowScore)
	s.MedianLowestRMSD = Median(lowRMSD)
	s.MedianPctSubangstrom = Median(pct)
	return s, nil
}
