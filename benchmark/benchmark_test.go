/*
 * benchmark_test.go, part of loopbench.
 *
 * Copyright 2016 The loopbench authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 */

package benchmark

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte("ATOM\n"), 0o644))
}

func TestExpandInputs(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "1a8d.pdb")
	b := filepath.Join(dir, "2b3c.pdb.gz")
	c := filepath.Join(dir, "3xyz.pdb")
	touch(t, a)
	touch(t, b)
	touch(t, c)
	list := filepath.Join(dir, "set.pdbs")
	require.NoError(t, os.WriteFile(list, []byte("# the set\n3xyz.pdb\n1a8d.pdb\n"), 0o644))

	//list expansion, deduplication against the direct argument, sorting
	got, err := ExpandInputs([]string{b, a, list})
	require.NoError(t, err)
	assert.Equal(t, []string{a, b, c}, got)
}

func TestExpandInputsErrors(t *testing.T) {
	dir := t.TempDir()
	_, err := ExpandInputs([]string{filepath.Join(dir, "missing.pdb")})
	assert.Error(t, err, "nonexistent input")

	bad := filepath.Join(dir, "notes.txt")
	touch(t, bad)
	_, err = ExpandInputs([]string{bad})
	assert.Error(t, err, "unknown extension")

	_, err = ExpandInputs(nil)
	assert.Error(t, err, "no inputs at all")
}

func TestTagAndLoopFile(t *testing.T) {
	assert.Equal(t, "1a8d", Tag("structures/1a8d.pdb.gz"))
	assert.Equal(t, "1a8d", Tag("/data/1a8d.pdb"))
	assert.Equal(t, "structures/1a8d.loop", LoopFile("structures/1a8d.pdb.gz"))
	assert.Equal(t, "/data/1a8d.loop", LoopFile("/data/1a8d.pdb"))
}

func TestTaskInput(t *testing.T) {
	inputs := []string{"a.pdb", "b.pdb", "c.pdb"}
	//round-robin over the input list, 1-based task ids
	assert.Equal(t, "a.pdb", TaskInput(1, inputs))
	assert.Equal(t, "b.pdb", TaskInput(2, inputs))
	assert.Equal(t, "c.pdb", TaskInput(3, inputs))
	assert.Equal(t, "a.pdb", TaskInput(4, inputs))
	assert.Equal(t, "c.pdb", TaskInput(600, inputs))
}

func TestResolveNstruct(t *testing.T) {
	assert.Equal(t, 500, resolveNstruct(500, 0), "zero keeps the recorded value")
	assert.Equal(t, 50, resolveNstruct(500, 50), "positive override wins")
	assert.Equal(t, 500, resolveNstruct(500, -1), "negative treated as no override")
}

func TestTaskID(t *testing.T) {
	t.Setenv("SGE_TASK_ID", "17")
	id, err := TaskID()
	require.NoError(t, err)
	assert.Equal(t, 17, id)

	t.Setenv("SGE_TASK_ID", "")
	_, err = TaskID()
	assert.Error(t, err)

	t.Setenv("SGE_TASK_ID", "zero")
	_, err = TaskID()
	assert.Error(t, err)
}

func TestParseScore(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "score.sc")
	content := "SEQUENCE: \n" +
		"SCORE: total_score fa_atr fa_rep description\n" +
		"SCORE:     -210.543 -900.1  120.3 1a8d_0001\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	score, err := ParseScore(path)
	require.NoError(t, err)
	assert.InDelta(t, -210.543, score, 1e-9)
}

func TestParseScoreErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "score.sc")
	require.NoError(t, os.WriteFile(path, []byte("SCORE: fa_atr description\n"), 0o644))
	_, err := ParseScore(path)
	assert.ErrorContains(t, err, "total_score")

	require.NoError(t, os.WriteFile(path, []byte("SCORE: total_score description\n"), 0o644))
	_, err = ParseScore(path)
	assert.ErrorContains(t, err, "no score lines")
}

const nativePDB = `ATOM      1  N   ALA A   1       0.000   0.000   0.000  1.00  0.00           N
ATOM      2  CA  ALA A   1       1.458   0.000   0.000  1.00  0.00           C
ATOM      3  C   ALA A   1       2.009   1.420   0.000  1.00  0.00           C
ATOM      4  O   ALA A   1       1.251   2.390   0.000  1.00  0.00           O
ATOM      5  N   GLY A   2       3.332   1.536   0.000  1.00  0.00           N
ATOM      6  CA  GLY A   2       3.988   2.839   0.000  1.00  0.00           C
ATOM      7  C   GLY A   2       5.504   2.696   0.000  1.00  0.00           C
ATOM      8  O   GLY A   2       6.030   1.584   0.000  1.00  0.00           O
ATOM      9  N   SER A   3       6.224   3.815   0.000  1.00  0.00           N
ATOM     10  CA  SER A   3       7.677   3.790   0.000  1.00  0.00           C
ATOM     11  C   SER A   3       8.230   5.210   0.000  1.00  0.00           C
ATOM     12  O   SER A   3       7.473   6.183   0.000  1.00  0.00           O
END
`

//identical to the native except residue 2, whose atoms are shifted by
//2A along z.
const decoyPDB = `ATOM      1  N   ALA A   1       0.000   0.000   0.000  1.00  0.00           N
ATOM      2  CA  ALA A   1       1.458   0.000   0.000  1.00  0.00           C
ATOM      3  C   ALA A   1       2.009   1.420   0.000  1.00  0.00           C
ATOM      4  O   ALA A   1       1.251   2.390   0.000  1.00  0.00           O
ATOM      5  N   GLY A   2       3.332   1.536   2.000  1.00  0.00           N
ATOM      6  CA  GLY A   2       3.988   2.839   2.000  1.00  0.00           C
ATOM      7  C   GLY A   2       5.504   2.696   2.000  1.00  0.00           C
ATOM      8  O   GLY A   2       6.030   1.584   2.000  1.00  0.00           O
ATOM      9  N   SER A   3       6.224   3.815   0.000  1.00  0.00           N
ATOM     10  CA  SER A   3       7.677   3.790   0.000  1.00  0.00           C
ATOM     11  C   SER A   3       8.230   5.210   0.000  1.00  0.00           C
ATOM     12  O   SER A   3       7.473   6.183   0.000  1.00  0.00           O
END
`

func TestLoopRMSD(t *testing.T) {
	dir := t.TempDir()
	native := filepath.Join(dir, "1abc.pdb")
	decoy := filepath.Join(dir, "1abc_0001.pdb")
	require.NoError(t, os.WriteFile(native, []byte(nativePDB), 0o644))
	require.NoError(t, os.WriteFile(decoy, []byte(decoyPDB), 0o644))
	require.NoError(t, os.WriteFile(LoopFile(native), []byte("LOOP 2 2\n"), 0o644))

	v, err := LoopRMSD(native, decoy)
	require.NoError(t, err)
	//frame residues 1 and 3 match exactly, so superposition is the
	//identity and the loop offset of 2A survives as the RMSD
	assert.InDelta(t, 2.0, v, 1e-6)
}

func TestLoopRMSDAllLoop(t *testing.T) {
	dir := t.TempDir()
	native := filepath.Join(dir, "1abc.pdb")
	decoy := filepath.Join(dir, "1abc_0001.pdb")
	require.NoError(t, os.WriteFile(native, []byte(nativePDB), 0o644))
	require.NoError(t, os.WriteFile(decoy, []byte(decoyPDB), 0o644))
	require.NoError(t, os.WriteFile(LoopFile(native), []byte("LOOP 1 3\n"), 0o644))

	_, err := LoopRMSD(native, decoy)
	assert.ErrorContains(t, err, "nothing to superpose")
}
