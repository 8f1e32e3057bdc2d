/*
 * analyze.go, part of loopbench.
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

//Package analyze summarizes finished benchmarks: per-loop model
//selections, benchmark-wide statistics and report figures.
package analyze

import (
	"sort"
	"time"
)

//A Model is one simulation result of a loop.
type Model struct {
	ID      int64
	Score   float64
	RMSD    float64
	Runtime time.Duration
}

//A Loop groups the models produced for one input structure.
type Loop struct {
	Tag    string
	Models []Model
}

//A Benchmark is a named collection of loops.
type Benchmark struct {
	ID    int64
	Name  string
	Title string
	User  string
	Loops []*Loop
}

//TopScoringToConsider is how many of the lowest-scoring models the
//standard "best model" selection looks at. A score function that
//cannot place the right answer among its five favorites has failed for
//practical purposes, however good that answer's geometry is.
const TopScoringToConsider = 5

//SubangstromCutoff separates successful loop reconstructions from
//failed ones.
const SubangstromCutoff = 1.0

//ByScore returns the loop's models ordered by ascending score.
func (l *Loop) ByScore() []Model {
	out := append([]Model(nil), l.Models...)
	sort.Slice(out, func(i, j int) bool { return out[i].Score < out[j].Score })
	return out
}

//ByRMSD returns the loop's models ordered by ascending RMSD.
func (l *Loop) ByRMSD() []Model {
	out := append([]Model(nil), l.Models...)
	sort.Slice(out, func(i, j int) bool { return out[i].RMSD < out[j].RMSD })
	return out
}

//LowestScore returns the model the score function likes best.
func (l *Loop) LowestScore() (Model, bool) {
	if len(l.Models) == 0 {
		return Model{}, false
	}
	return l.ByScore()[0], true
}

//LowestRMSD returns the geometrically closest model, regardless of its
//score.
func (l *Loop) LowestRMSD() (Model, bool) {
	if len(l.Models) == 0 {
		return Model{}, false
	}
	return l.ByRMSD()[0], true
}

//BestOfTop returns the lowest-RMSD model among the n lowest-scoring
//ones. This is the benchmark's headline number: it rewards score
//functions that rank near-native loops highly.
func (l *Loop) BestOfTop(n int) (Model, bool) {
	if len(l.Models) == 0 {
		return Model{}, false
	}
	top := l.ByScore()
	if len(top) > n {
		top = top[:n]
	}
	best := top[0]
	for _, m := range top[1:] {
		if m.RMSD < best.RMSD {
			best = m
		}
	}
	return best, true
}

//PercentSubangstrom returns the fraction of the loop's models under
//the sub-angstrom cutoff, as a percentage.
func (l *Loop) PercentSubangstrom() float64 {
	if len(l.Models) == 0 {
		return 0
	}
	n := 0
	for _, m := range l.Models {
		if m.RMSD < SubangstromCutoff {
			n++
		}
	}
	return 100 * float64(n) / float64(len(l.Models))
}

//RMSDs collects the loop's RMSD values.
func (l *Loop) RMSDs() []float64 {
	out := make([]float64, len(l.Models))
	for i, m := range l.Models {
		out[i] = m.RMSD
	}
	return out
}

//Scores collects the loop's score values.
func (l *Loop) Scores() []float64 {
	out := make([]float64, len(l.Models))
	for i, m := range l.Models {
		out[i] = m.Score
	}
	return out
}

//Runtimes collects the loop's runtimes in seconds.
func (l *Loop) Runtimes() []float64 {
	out := make([]float64, len(l.Models))
	for i, m := range l.Models {
		out[i] = m.Runtime.Seconds()
	}
	return out
}

//Loop returns the named loop, or nil.
func (b *Benchmark) Loop(tag string) *Loop {
	for _, l := range b.Loops {
		if l.Tag == tag {
			return l
		}
	}
	return nil
}

//sortLoops fixes a stable presentation order.
func (b *Benchmark) sortLoops() {
	sort.Slice(b.Loops, func(i, j int) bool { return b.Loops[i].Tag < b.Loops[j].Tag })
}
