/*
 * qsub.go, part of loopbench.
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

//Package cluster submits array jobs to a Sun Grid Engine scheduler by
//shelling out to qsub.
package cluster

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"regexp"
	"strconv"
	"time"

	"go.uber.org/zap"
)

//An ArrayJob describes one qsub submission: Tasks copies of Command,
//distinguished on the worker side by SGE_TASK_ID.
type ArrayJob struct {
	Name      string        //job name (-N)
	Command   string        //script or binary to run on each task
	Args      []string      //arguments passed to Command
	Tasks     int           //array size, task IDs 1..Tasks
	Runtime   time.Duration //per-task wall clock limit (-l h_rt)
	OutputDir string        //stdout/stderr directory (-o/-e)
}

//Submitter submits jobs. The qsub binary can be overridden for testing
//or for schedulers with a compatible front end.
type Submitter struct {
	Qsub string
	log  *zap.Logger
}

func NewSubmitter(qsub string, log *zap.Logger) *Submitter {
	if qsub == "" {
		qsub = "qsub"
	}
	return &Submitter{Qsub: qsub, log: log}
}

//jobIDRe matches the acknowledgment qsub prints, e.g.
//"Your job-array 3971201.1-500:1 (\"bench\") has been submitted".
var jobIDRe = regexp.MustCompile(`[Jj]ob(?:-array)?\s+(\d+)`)

//hRT formats a duration the way SGE's h_rt resource wants it, H:MM:SS.
func hRT(d time.Duration) string {
	s := int(d.Seconds())
	return fmt.Sprintf("%d:%02d:%02d", s/3600, (s%3600)/60, s%60)
}

//Args returns the full qsub argument list for the job.
func (j *ArrayJob) QsubArgs() []string {
	args := []string{
		"-t", fmt.Sprintf("1-%d", j.Tasks),
		"-l", "h_rt=" + hRT(j.Runtime),
		"-o", j.OutputDir,
		"-e", j.OutputDir,
		"-cwd",
	}
	if j.Name != "" {
		args = append(args, "-N", j.Name)
	}
	args = append(args, j.Command)
	return append(args, j.Args...)
}

//validate rejects jobs qsub would refuse anyway, with better messages.
func (j *ArrayJob) validate() error {
	if j.Tasks <= 0 {
		return fmt.Errorf("cluster: job %q has %d tasks", j.Name, j.Tasks)
	}
	if j.Command == "" {
		return fmt.Errorf("cluster: job %q has no command", j.Name)
	}
	if j.Runtime <= 0 {
		return fmt.Errorf("cluster: job %q has no runtime limit", j.Name)
	}
	if j.OutputDir == "" {
		return fmt.Errorf("cluster: job %q has no output directory", j.Name)
	}
	return nil
}

//Submit clears the job's output directory, runs qsub and returns the
//scheduler-assigned job ID.
func (s *Submitter) Submit(ctx context.Context, j *ArrayJob) (int64, error) {
	if err := j.validate(); err != nil {
		return 0, err
	}
	if err := clearDir(j.OutputDir); err != nil {
		return 0, err
	}

	args := j.QsubArgs()
	s.log.Info("submitting array job", zap.String("qsub", s.Qsub),
		zap.Strings("args", args), zap.Int("tasks", j.Tasks))

	cmd := exec.CommandContext(ctx, s.Qsub, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("cluster: qsub: %w (stderr: %s)", err, bytes.TrimSpace(stderr.Bytes()))
	}
	id, err := ParseJobID(stdout.String())
	if err != nil {
		return 0, err
	}
	s.log.Info("array job submitted", zap.Int64("job", id))
	return id, nil
}

//ParseJobID extracts the numeric job ID from qsub's acknowledgment.
func ParseJobID(out string) (int64, error) {
	m := jobIDRe.FindStringSubmatch(out)
	if m == nil {
		return 0, fmt.Errorf("cluster: no job id in qsub output %q", out)
	}
	id, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("cluster: job id: %w", err)
	}
	return id, nil
}

//clearDir empties and recreates a directory. Stale task logs from a
//previous run would otherwise mix with the new run's.
func clearDir(dir string) error {
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("cluster: clear %s: %w", dir, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("cluster: create %s: %w", dir, err)
	}
	return nil
}
