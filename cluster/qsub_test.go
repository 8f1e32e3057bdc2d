/*
 * qsub_test.go, part of loopbench.
 *
 * Copyright 2016 The loopbench authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 */

package cluster

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestQsubArgs(t *testing.T) {
	j := &ArrayJob{
		Name:      "bench",
		Command:   "loopbench",
		Args:      []string{"run-task", "--benchmark", "7"},
		Tasks:     5000,
		Runtime:   30 * time.Minute,
		OutputDir: "job_output",
	}
	assert.Equal(t, []string{
		"-t", "1-5000",
		"-l", "h_rt=0:30:00",
		"-o", "job_output",
		"-e", "job_output",
		"-cwd",
		"-N", "bench",
		"loopbench", "run-task", "--benchmark", "7",
	}, j.QsubArgs())
}

func TestHRT(t *testing.T) {
	assert.Equal(t, "0:30:00", hRT(30*time.Minute))
	assert.Equal(t, "4:00:00", hRT(4*time.Hour))
	assert.Equal(t, "25:10:05", hRT(25*time.Hour+10*time.Minute+5*time.Second))
}

func TestParseJobID(t *testing.T) {
	id, err := ParseJobID("Your job-array 3971201.1-500:1 (\"bench\") has been submitted\n")
	require.NoError(t, err)
	assert.Equal(t, int64(3971201), id)

	id, err = ParseJobID("Your job 12345 (\"single\") has been submitted\n")
	require.NoError(t, err)
	assert.Equal(t, int64(12345), id)

	_, err = ParseJobID("qsub: command not understood\n")
	assert.Error(t, err)
}

//a stand-in qsub that echoes a canned acknowledgment.
func fakeQsub(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "qsub")
	script := "#!/bin/sh\necho 'Your job-array 4242.1-10:1 (\"bench\") has been submitted'\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))
	return path
}

func TestSubmit(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "job_output")
	//pre-populate with a stale log that must be cleared
	require.NoError(t, os.MkdirAll(outDir, 0o755))
	stale := filepath.Join(outDir, "bench.o1.1")
	require.NoError(t, os.WriteFile(stale, []byte("old"), 0o644))

	s := NewSubmitter(fakeQsub(t), zap.NewNop())
	j := &ArrayJob{
		Name:      "bench",
		Command:   "loopbench",
		Tasks:     10,
		Runtime:   30 * time.Minute,
		OutputDir: outDir,
	}
	id, err := s.Submit(context.Background(), j)
	require.NoError(t, err)
	assert.Equal(t, int64(4242), id)

	_, err = os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale task log survived submission")
}

func TestSubmitValidation(t *testing.T) {
	s := NewSubmitter("qsub", zap.NewNop())
	_, err := s.Submit(context.Background(), &ArrayJob{Command: "x", Runtime: time.Hour, OutputDir: "o"})
	assert.Error(t, err, "zero tasks")
	_, err = s.Submit(context.Background(), &ArrayJob{Tasks: 1, Runtime: time.Hour, OutputDir: "o"})
	assert.Error(t, err, "no command")
}
