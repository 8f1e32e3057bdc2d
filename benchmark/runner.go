/*
 * runner.go, part of loopbench.
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

package benchmark

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"

	"github.com/kortemmelab/loopbench/pdb"
	"github.com/kortemmelab/loopbench/rmsd"
	"github.com/kortemmelab/loopbench/store"
)

//TaskID reads this task's index from the scheduler environment.
func TaskID() (int, error) {
	v := os.Getenv("SGE_TASK_ID")
	if v == "" {
		return 0, fmt.Errorf("benchmark: SGE_TASK_ID not set; not running under the scheduler")
	}
	id, err := strconv.Atoi(v)
	if err != nil || id < 1 {
		return 0, fmt.Errorf("benchmark: bad SGE_TASK_ID %q", v)
	}
	return id, nil
}

//TaskInput maps a task index onto an input structure. Tasks are
//assigned round-robin, so every structure receives the same number of
//models no matter how many tasks the array has.
func TaskInput(taskID int, inputs []string) string {
	return inputs[(taskID-1)%len(inputs)]
}

//RunTask executes one array task of a benchmark: model the loop of the
//assigned input structure once, score it, measure its loop RMSD against
//the input and record the model.
func (l *Launcher) RunTask(ctx context.Context, benchmarkID int64, taskID int) error {
	b, err := l.Store.Benchmark(ctx, benchmarkID)
	if err != nil {
		return err
	}
	inputs, err := l.Store.Inputs(ctx, benchmarkID)
	if err != nil {
		return err
	}
	input := TaskInput(taskID, inputs)
	tag := Tag(input)
	log := l.Log.With(zap.Int64("benchmark", benchmarkID),
		zap.Int("task", taskID), zap.String("input", tag))

	workDir, err := os.MkdirTemp("", fmt.Sprintf("loopbench-%d-%d-", benchmarkID, taskID))
	if err != nil {
		return fmt.Errorf("benchmark: work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	start := time.Now()
	if err := l.runRosetta(ctx, b, input, workDir); err != nil {
		return err
	}
	runtime := time.Since(start)
	log.Info("simulation finished", zap.Duration("runtime", runtime))

	score, err := ParseScore(filepath.Join(workDir, "score.sc"))
	if err != nil {
		return err
	}
	decoy, err := findDecoy(workDir, tag)
	if err != nil {
		return err
	}
	v, err := LoopRMSD(input, decoy)
	if err != nil {
		return err
	}
	log.Info("model measured", zap.Float64("score", score), zap.Float64("rmsd", v))

	return l.Store.InsertModel(ctx, benchmarkID, &store.Model{
		InputTag: tag,
		Score:    score,
		RMSD:     v,
		Runtime:  runtime,
	})
}

//runRosetta invokes the RosettaScripts binary for one model.
func (l *Launcher) runRosetta(ctx context.Context, b *store.Benchmark, input, workDir string) error {
	r := l.Settings.Rosetta
	bin := r.Binary
	if r.Path != "" {
		bin = filepath.Join(r.Path, "source", "bin", r.Binary)
	}
	args := []string{
		"-s", input,
		"-parser:protocol", b.Script,
		"-in:file:fullatom",
		"-nstruct", "1",
		"-out:path:all", workDir,
		"-out:file:scorefile", "score.sc",
		"-loops:loop_file", LoopFile(input),
	}
	for k, v := range b.ScriptVars {
		args = append(args, "-parser:script_vars", k+"="+v)
	}
	if b.FlagsFile != "" {
		args = append(args, "@"+b.FlagsFile)
	}
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("benchmark: rosetta: %w", err)
	}
	return nil
}

//ParseScore reads the total score of the produced model from a Rosetta
//scorefile. The header line names the columns; the last SCORE data line
//is the model this task produced.
func ParseScore(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("benchmark: scorefile: %w", err)
	}
	defer f.Close()

	col := -1
	var last []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "SCORE:") {
			continue
		}
		fields := strings.Fields(strings.TrimPrefix(line, "SCORE:"))
		if len(fields) == 0 {
			continue
		}
		if col < 0 {
			for i, name := range fields {
				if name == "total_score" {
					col = i
					break
				}
			}
			if col < 0 {
				return 0, fmt.Errorf("benchmark: scorefile %s: no total_score column", path)
			}
			continue
		}
		last = fields
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("benchmark: scorefile %s: %w", path, err)
	}
	if last == nil {
		return 0, fmt.Errorf("benchmark: scorefile %s: no score lines", path)
	}
	if col >= len(last) {
		return 0, fmt.Errorf("benchmark: scorefile %s: short score line", path)
	}
	score, err := strconv.ParseFloat(last[col], 64)
	if err != nil {
		return 0, fmt.Errorf("benchmark: scorefile %s: total_score: %w", path, err)
	}
	return score, nil
}

//findDecoy locates the structure Rosetta wrote for this task.
func findDecoy(workDir, tag string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(workDir, tag+"_*.pdb"))
	if err != nil || len(matches) == 0 {
		return "", fmt.Errorf("benchmark: no decoy for %s in %s", tag, workDir)
	}
	return matches[0], nil
}

//LoopRMSD measures the backbone RMSD of a predicted structure's
//remodeled loop against the reference structure. The prediction is
//first superposed onto the reference using the backbone atoms OUTSIDE
//the loop, so the measurement reflects the loop's own placement rather
//than a whole-body fit that could hide it.
func LoopRMSD(nativePath, decoyPath string) (float64, error) {
	return LoopRMSDWithLoops(nativePath, decoyPath, LoopFile(nativePath))
}

//LoopRMSDWithLoops is LoopRMSD with an explicit loop definition file
//instead of the name convention.
func LoopRMSDWithLoops(nativePath, decoyPath, loopFile string) (float64, error) {
	native, err := pdb.ReadFile(nativePath)
	if err != nil {
		return 0, err
	}
	decoy, err := pdb.ReadFile(decoyPath)
	if err != nil {
		return 0, err
	}
	loops, err := pdb.ReadLoops(loopFile)
	if err != nil {
		return 0, err
	}
	loopRes := make(map[int]bool)
	var loopList []int
	for _, lp := range loops {
		for _, r := range lp.Residues() {
			if !loopRes[r] {
				loopRes[r] = true
				loopList = append(loopList, r)
			}
		}
	}
	var frame []int
	for _, r := range native.Residues() {
		if !loopRes[r] {
			frame = append(frame, r)
		}
	}
	if len(frame) == 0 {
		return 0, fmt.Errorf("benchmark: %s: every residue is in a loop, nothing to superpose on", nativePath)
	}

	dFrame, nFrame, err := pairedCoords(decoy, native, frame)
	if err != nil {
		return 0, err
	}
	tr, err := rmsd.Superpose(dFrame, nFrame)
	if err != nil {
		return 0, err
	}
	dLoop, nLoop, err := pairedCoords(decoy, native, loopList)
	if err != nil {
		return 0, err
	}
	return rmsd.RMSD(tr.Apply(dLoop), nLoop)
}

//pairedCoords extracts matching backbone coordinate sets for the given
//residues from two structures of the same sequence.
func pairedCoords(a, b *pdb.Structure, residues []int) (*mat.Dense, *mat.Dense, error) {
	sa := a.Backbone(residues)
	sb := b.Backbone(residues)
	if len(sa) != len(sb) || len(sa) == 0 {
		return nil, nil, fmt.Errorf("benchmark: backbone mismatch over %d residues: %d vs %d atoms",
			len(residues), len(sa), len(sb))
	}
	for i := range sa {
		if sa[i].Name != sb[i].Name || sa[i].ResSeq != sb[i].ResSeq {
			return nil, nil, fmt.Errorf("benchmark: backbone atom %d differs: %s/%d vs %s/%d",
				i, sa[i].Name, sa[i].ResSeq, sb[i].Name, sb[i].ResSeq)
		}
	}
	return pdb.Coords(sa), pdb.Coords(sb), nil
}
