/*
 * pdb.go, part of loopbench.
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

//Package pdb reads protein structures from PDB-format files and extracts
//coordinate subsets for superposition and RMSD calculations. Only the
//record types the benchmark needs are parsed (ATOM, HETATM, MODEL/ENDMDL
//and TER); everything else is skipped.
package pdb

import (
	"sort"

	"gonum.org/v1/gonum/mat"
)

//backboneNames are the protein backbone atoms used for loop RMSDs, in
//the order the original benchmark collects them.
var backboneNames = map[string]bool{"N": true, "CA": true, "C": true, "O": true}

//Atom is a single ATOM or HETATM record.
type Atom struct {
	Serial    int
	Name      string
	AltLoc    string
	Residue   string
	Chain     string
	ResSeq    int
	ICode     string
	X, Y, Z   float64
	Occupancy float64
	BFactor   float64
	Element   string
	Het       bool //from a HETATM record
}

//Structure is the first model of a PDB entry.
type Structure struct {
	Path  string
	Atoms []*Atom
}

//Len returns the number of atoms in the structure.
func (s *Structure) Len() int {
	return len(s.Atoms)
}

//usable reports whether an atom should take part in coordinate
//extraction: protein atoms with no alternate location, or the "A"
//alternate.
func usable(a *Atom) bool {
	if a.Het {
		return false
	}
	return a.AltLoc == "" || a.AltLoc == "A"
}

//Residues returns the sorted, de-duplicated residue numbers of the
//protein atoms in the structure.
func (s *Structure) Residues() []int {
	seen := make(map[int]bool)
	var out []int
	for _, a := range s.Atoms {
		if a.Het || seen[a.ResSeq] {
			continue
		}
		seen[a.ResSeq] = true
		out = append(out, a.ResSeq)
	}
	sort.Ints(out)
	return out
}

//Backbone returns the backbone atoms (N, CA, C, O) of the given residues,
//grouped by residue in the order the residues are listed and in file
//order within each residue. This is the atom set the benchmark measures
//loop RMSDs over; listing the residues in the same order for two
//structures of the same sequence yields corresponding atoms.
func (s *Structure) Backbone(residues []int) []*Atom {
	var out []*Atom
	for _, r := range residues {
		for _, a := range s.Atoms {
			if a.ResSeq == r && backboneNames[a.Name] && usable(a) {
				out = append(out, a)
			}
		}
	}
	return out
}

//CA returns the alpha-carbon atoms of the given residues, in residue
//list order.
func (s *Structure) CA(residues []int) []*Atom {
	var out []*Atom
	for _, r := range residues {
		for _, a := range s.Atoms {
			if a.ResSeq == r && a.Name == "CA" && usable(a) {
				out = append(out, a)
			}
		}
	}
	return out
}

//Coords packs the coordinates of the given atoms into an Nx3 matrix,
//one atom per row.
func Coords(atoms []*Atom) *mat.Dense {
	data := make([]float64, 0, len(atoms)*3)
	for _, a := range atoms {
		data = append(data, a.X, a.Y, a.Z)
	}
	return mat.NewDense(len(atoms), 3, data)
}
