/*
 * read.go, part of loopbench.
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

package pdb

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/gzip"
)

//Read parses PDB-format records from r. Only the first model of a
//multi-model file is kept: an ENDMDL record stops the scan.
func Read(r io.Reader) (*Structure, error) {
	s := &Structure{}
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "ATOM"), strings.HasPrefix(line, "HETATM"):
			a, err := parseAtom(line)
			if err != nil {
				return nil, fmt.Errorf("pdb: line %d: %w", lineno, err)
			}
			s.Atoms = append(s.Atoms, a)
		case strings.HasPrefix(line, "ENDMDL"), strings.TrimSpace(line) == "END":
			if len(s.Atoms) > 0 {
				return s, nil
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pdb: %w", err)
	}
	if len(s.Atoms) == 0 {
		return nil, fmt.Errorf("pdb: no ATOM records found")
	}
	return s, nil
}

//ReadFile reads a structure from a .pdb or .pdb.gz file.
func ReadFile(path string) (*Structure, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pdb: %w", err)
	}
	defer f.Close()
	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(f)
		if err != nil {
			return nil, fmt.Errorf("pdb: %s: %w", path, err)
		}
		defer gz.Close()
		r = gz
	}
	s, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("pdb: %s: %w", path, err)
	}
	s.Path = path
	return s, nil
}

//parseAtom decodes one ATOM/HETATM record using the fixed column layout
//of the PDB format. Records shorter than 80 columns are padded so that
//optional trailing fields (occupancy, B factor, element) read as empty.
func parseAtom(line string) (*Atom, error) {
	if len(line) < 54 {
		return nil, fmt.Errorf("truncated atom record (%d columns)", len(line))
	}
	if len(line) < 80 {
		line = line + strings.Repeat(" ", 80-len(line))
	}
	a := &Atom{Het: strings.HasPrefix(line, "HETATM")}

	var err error
	if a.Serial, err = atoi(line[6:11]); err != nil {
		return nil, fmt.Errorf("atom serial: %w", err)
	}
	a.Name = strings.TrimSpace(line[12:16])
	a.AltLoc = strings.TrimSpace(line[16:17])
	a.Residue = strings.TrimSpace(line[17:20])
	a.Chain = strings.TrimSpace(line[21:22])
	if a.ResSeq, err = atoi(line[22:26]); err != nil {
		return nil, fmt.Errorf("residue number: %w", err)
	}
	a.ICode = strings.TrimSpace(line[26:27])
	if a.X, err = atof(line[30:38]); err != nil {
		return nil, fmt.Errorf("x coordinate: %w", err)
	}
	if a.Y, err = atof(line[38:46]); err != nil {
		return nil, fmt.Errorf("y coordinate: %w", err)
	}
	if a.Z, err = atof(line[46:54]); err != nil {
		return nil, fmt.Errorf("z coordinate: %w", err)
	}
	//occupancy, B factor and element are optional in practice
	a.Occupancy, _ = atof(line[54:60])
	a.BFactor, _ = atof(line[60:66])
	a.Element = strings.TrimSpace(line[76:78])
	return a, nil
}

func atoi(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}

func atof(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

//A Loop is a residue range being remodeled, as named by a Rosetta loop
//definition file.
type Loop struct {
	Start, End int
}

//Residues returns the residue numbers of the loop, inclusive on both
//ends.
func (l Loop) Residues() []int {
	if l.End < l.Start {
		return nil
	}
	out := make([]int, 0, l.End-l.Start+1)
	for r := l.Start; r <= l.End; r++ {
		out = append(out, r)
	}
	return out
}

//ReadLoops parses a Rosetta loop definition file. Each definition line
//reads "LOOP <start> <end> [cutpoint skip-rate extend]"; bare
//"<start> <end>" lines and # comments are accepted too.
func ReadLoops(path string) ([]Loop, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("pdb: %w", err)
	}
	defer f.Close()

	var loops []Loop
	scanner := bufio.NewScanner(f)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if fields[0] == "LOOP" {
			fields = fields[1:]
		}
		if len(fields) < 2 {
			return nil, fmt.Errorf("pdb: %s:%d: malformed loop definition", path, lineno)
		}
		start, err := strconv.Atoi(fields[0])
		if err != nil {
			return nil, fmt.Errorf("pdb: %s:%d: loop start: %w", path, lineno, err)
		}
		end, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("pdb: %s:%d: loop end: %w", path, lineno, err)
		}
		if end < start {
			return nil, fmt.Errorf("pdb: %s:%d: loop ends (%d) before it starts (%d)", path, lineno, end, start)
		}
		loops = append(loops, Loop{Start: start, End: end})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pdb: %s: %w", path, err)
	}
	if len(loops) == 0 {
		return nil, fmt.Errorf("pdb: %s: no loop definitions found", path)
	}
	return loops, nil
}
