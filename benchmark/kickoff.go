/*
 * kickoff.go, part of loopbench.
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
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"time"

	"go.uber.org/zap"

	"github.com/kortemmelab/loopbench/cluster"
	"github.com/kortemmelab/loopbench/settings"
	"github.com/kortemmelab/loopbench/store"
)

//A Launcher kicks benchmarks off and resumes them.
type Launcher struct {
	Settings  *settings.Settings
	Store     *store.Store
	Submitter *cluster.Submitter
	Log       *zap.Logger
}

//RunOptions parameterize one kickoff.
type RunOptions struct {
	Name        string
	Title       string
	Description string
	Script      string            //RosettaScripts XML protocol
	ScriptVars  map[string]string //substitutions passed to the protocol
	FlagsFile   string            //extra Rosetta flags, one per line
	Fast        bool              //short debug run instead of a full production run
	Nstruct     int               //models per input; 0 picks the fast/full default
	Inputs      []string          //.pdb/.pdb.gz/.pdbs arguments
	Build       bool              //rebuild Rosetta before submitting
	Executable  string            //worker command; defaults to this binary
}

//workerCommand resolves the command array tasks will run.
func workerCommand(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	self, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("benchmark: locate worker binary: %w", err)
	}
	return self, nil
}

//Run expands the inputs, records the benchmark and submits its array
//job. It returns the benchmark ID and the scheduler job ID.
func (l *Launcher) Run(ctx context.Context, opts RunOptions) (int64, int64, error) {
	inputs, err := ExpandInputs(opts.Inputs)
	if err != nil {
		return 0, 0, err
	}
	nstruct := opts.Nstruct
	if nstruct == 0 {
		nstruct = l.Settings.Cluster.Nstruct(opts.Fast)
	}
	if opts.Build {
		if err := l.BuildRosetta(ctx); err != nil {
			return 0, 0, err
		}
	}

	b := &store.Benchmark{
		Name:        opts.Name,
		Title:       opts.Title,
		Description: opts.Description,
		User:        currentUser(),
		Script:      opts.Script,
		ScriptVars:  opts.ScriptVars,
		FlagsFile:   opts.FlagsFile,
		Fast:        opts.Fast,
		Nstruct:     nstruct,
		StartTime:   time.Now(),
	}
	if err := l.Store.CreateBenchmark(ctx, b, inputs); err != nil {
		return 0, 0, err
	}
	jobID, err := l.submit(ctx, b, len(inputs), opts.Executable)
	if err != nil {
		return b.ID, 0, err
	}
	return b.ID, jobID, nil
}

//Resume submits a fresh array job for an existing benchmark, reusing
//its recorded inputs and fast flag. New models accumulate next to the
//old ones. A positive nstruct overrides the recorded models-per-input
//count for this submission only; zero keeps the recorded value.
func (l *Launcher) Resume(ctx context.Context, benchmarkID int64, nstruct int) (int64, error) {
	b, err := l.Store.Benchmark(ctx, benchmarkID)
	if err != nil {
		return 0, err
	}
	inputs, err := l.Store.Inputs(ctx, benchmarkID)
	if err != nil {
		return 0, err
	}
	b.Nstruct = resolveNstruct(b.Nstruct, nstruct)
	l.Log.Info("resuming benchmark", zap.Int64("id", b.ID),
		zap.String("name", b.Name), zap.Int("inputs", len(inputs)),
		zap.Int("nstruct", b.Nstruct))
	return l.submit(ctx, b, len(inputs), "")
}

//resolveNstruct applies an optional override to a recorded
//models-per-input count.
func resolveNstruct(recorded, override int) int {
	if override > 0 {
		return override
	}
	return recorded
}

func (l *Launcher) submit(ctx context.Context, b *store.Benchmark, ninputs int, executable string) (int64, error) {
	worker, err := workerCommand(executable)
	if err != nil {
		return 0, err
	}
	job := &cluster.ArrayJob{
		Name:      b.Name,
		Command:   worker,
		Args:      []string{"run-task", "--benchmark", fmt.Sprint(b.ID)},
		Tasks:     b.Nstruct * ninputs,
		Runtime:   l.Settings.Cluster.Runtime(b.Fast),
		OutputDir: l.Settings.Cluster.OutputDir,
	}
	return l.Submitter.Submit(ctx, job)
}

//BuildRosetta runs the configured build command in the Rosetta source
//tree. Submitting tasks against a half-built Rosetta wastes a full
//array allocation, so kickoff offers this as a pre-step.
func (l *Launcher) BuildRosetta(ctx context.Context) error {
	r := l.Settings.Rosetta
	if r.BuildCommand == "" {
		return fmt.Errorf("benchmark: no rosetta build command configured")
	}
	l.Log.Info("building rosetta", zap.String("command", r.BuildCommand),
		zap.String("dir", r.Path))
	cmd := exec.CommandContext(ctx, "sh", "-c", r.BuildCommand)
	cmd.Dir = r.Path
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("benchmark: rosetta build: %w", err)
	}
	return nil
}

func currentUser() string {
	if u, err := user.Current(); err == nil {
		return u.Username
	}
	return os.Getenv("USER")
}
