/*
 * pdb_test.go, part of loopbench.
 *
 * Copyright 2016 The loopbench authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 */

package pdb

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
)

//two residues of backbone plus a sidechain atom, an altloc pair and a
//water. Column layout follows the PDB format spec.
const miniPDB = `HEADER    HYDROLASE                               01-JAN-00   1ABC
ATOM      1  N   ALA A  10      11.104   6.134  -6.504  1.00  7.98           N
ATOM      2  CA  ALA A  10      11.639   6.071  -5.147  1.00  8.12           C
ATOM      3  C   ALA A  10      10.697   6.751  -4.161  1.00  8.50           C
ATOM      4  O   ALA A  10       9.480   6.693  -4.342  1.00  9.00           O
ATOM      5  CB  ALA A  10      11.867   4.623  -4.717  1.00  8.90           C
ATOM      6  N  AGLY A  11      11.233   7.406  -3.137  0.50  8.80           N
ATOM      7  N  BGLY A  11      11.300   7.500  -3.200  0.50  8.80           N
ATOM      8  CA  GLY A  11      10.432   8.109  -2.128  1.00  9.20           C
ATOM      9  C   GLY A  11      10.866   7.708  -0.720  1.00  9.60           C
ATOM     10  O   GLY A  11      12.026   7.363  -0.490  1.00 10.10           O
HETATM   11  O   HOH A 201       5.000   5.000   5.000  1.00 20.00           O
END
`

func TestReadAtoms(t *testing.T) {
	s, err := Read(strings.NewReader(miniPDB))
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 11 {
		t.Fatalf("atom count: got %d, want 11", s.Len())
	}
	a := s.Atoms[1]
	if a.Name != "CA" || a.Residue != "ALA" || a.Chain != "A" || a.ResSeq != 10 {
		t.Errorf("second atom misparsed: %+v", a)
	}
	if math.Abs(a.X-11.639) > 1e-9 || math.Abs(a.Y-6.071) > 1e-9 || math.Abs(a.Z+5.147) > 1e-9 {
		t.Errorf("second atom coordinates misparsed: %v %v %v", a.X, a.Y, a.Z)
	}
	if math.Abs(a.BFactor-8.12) > 1e-9 {
		t.Errorf("B factor: got %v, want 8.12", a.BFactor)
	}
	w := s.Atoms[10]
	if !w.Het || w.Residue != "HOH" {
		t.Errorf("water record misparsed: %+v", w)
	}
}

func TestFirstModelOnly(t *testing.T) {
	two := "MODEL        1\n" +
		"ATOM      1  CA  ALA A   1       1.000   2.000   3.000  1.00  0.00           C\n" +
		"ENDMDL\n" +
		"MODEL        2\n" +
		"ATOM      1  CA  ALA A   1       9.000   9.000   9.000  1.00  0.00           C\n" +
		"ENDMDL\n"
	s, err := Read(strings.NewReader(two))
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Fatalf("atom count: got %d, want 1", s.Len())
	}
	if s.Atoms[0].X != 1.0 {
		t.Errorf("got an atom from the second model: %+v", s.Atoms[0])
	}
}

func TestBareEndRecordStopsScan(t *testing.T) {
	//a bare END (no trailing spaces) must end the scan before any
	//following records
	in := "ATOM      1  CA  ALA A   1       1.000   2.000   3.000  1.00  0.00           C\n" +
		"END\n" +
		"ATOM      2  CA  ALA A   2       9.000   9.000   9.000  1.00  0.00           C\n"
	s, err := Read(strings.NewReader(in))
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 1 {
		t.Fatalf("atom count: got %d, want 1", s.Len())
	}
}

func TestBackboneSelection(t *testing.T) {
	s, err := Read(strings.NewReader(miniPDB))
	if err != nil {
		t.Fatal(err)
	}
	bb := s.Backbone([]int{10, 11})
	//4 backbone atoms in residue 10, 4 in residue 11 (altloc B dropped)
	if len(bb) != 8 {
		t.Fatalf("backbone atom count: got %d, want 8", len(bb))
	}
	for _, a := range bb {
		if a.Name == "CB" {
			t.Error("sidechain atom in the backbone selection")
		}
		if a.AltLoc == "B" {
			t.Error("alternate location B in the backbone selection")
		}
	}
	//residue order follows the list, not the file
	rev := s.Backbone([]int{11, 10})
	if rev[0].ResSeq != 11 {
		t.Errorf("backbone selection does not follow residue list order")
	}
	c := Coords(bb)
	r, cols := c.Dims()
	if r != 8 || cols != 3 {
		t.Errorf("coordinate matrix: got %dx%d, want 8x3", r, cols)
	}
	if c.At(0, 0) != bb[0].X {
		t.Errorf("coordinate matrix row 0 does not match atom 0")
	}
}

func TestCAAndResidues(t *testing.T) {
	s, err := Read(strings.NewReader(miniPDB))
	if err != nil {
		t.Fatal(err)
	}
	ca := s.CA(s.Residues())
	if len(ca) != 2 {
		t.Fatalf("CA count: got %d, want 2", len(ca))
	}
	res := s.Residues()
	if len(res) != 2 || res[0] != 10 || res[1] != 11 {
		t.Errorf("residues: got %v, want [10 11]", res)
	}
}

func TestReadFileGzip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mini.pdb.gz")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	gz := gzip.NewWriter(f)
	if _, err := gz.Write([]byte(miniPDB)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if err := f.Close(); err != nil {
		t.Fatal(err)
	}
	s, err := ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if s.Len() != 11 {
		t.Errorf("atom count from gzip: got %d, want 11", s.Len())
	}
	if s.Path != path {
		t.Errorf("structure path not recorded")
	}
}

func TestReadErrors(t *testing.T) {
	if _, err := Read(strings.NewReader("REMARK nothing here\n")); err == nil {
		t.Error("expected an error for a file with no atoms")
	}
	bad := "ATOM      1  CA  ALA A   1       bad     2.000   3.000\n"
	if _, err := Read(strings.NewReader(bad)); err == nil {
		t.Error("expected an error for a malformed coordinate")
	}
}

func TestReadLoops(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "1abc.loop")
	content := "# remodeled region\nLOOP 153 164 158 0 1\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	loops, err := ReadLoops(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loops) != 1 || loops[0].Start != 153 || loops[0].End != 164 {
		t.Fatalf("loops: got %+v", loops)
	}
	res := loops[0].Residues()
	if len(res) != 12 || res[0] != 153 || res[11] != 164 {
		t.Errorf("loop residues: got %v", res)
	}

	bad := filepath.Join(dir, "bad.loop")
	if err := os.WriteFile(bad, []byte("LOOP 20 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := ReadLoops(bad); err == nil {
		t.Error("expected an error for an inverted loop range")
	}
}
