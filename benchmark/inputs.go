/*
 * inputs.go, part of loopbench.
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

//Package benchmark launches loop-modeling benchmarks on the cluster,
//runs individual array tasks, and records everything in the run
//database.
package benchmark

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

//ExpandInputs resolves the input arguments of a kickoff into a sorted,
//deduplicated list of structure files. ".pdb" and ".pdb.gz" files are
//taken as they are; ".pdbs" list files are expanded line by line. Every
//resolved file must exist.
func ExpandInputs(args []string) ([]string, error) {
	seen := make(map[string]bool)
	var out []string
	add := func(p string) error {
		if !strings.HasSuffix(p, ".pdb") && !strings.HasSuffix(p, ".pdb.gz") {
			return fmt.Errorf("benchmark: input %s is not a .pdb, .pdb.gz or .pdbs file", p)
		}
		if _, err := os.Stat(p); err != nil {
			return fmt.Errorf("benchmark: input %s: %w", p, err)
		}
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
		return nil
	}
	for _, a := range args {
		if strings.HasSuffix(a, ".pdbs") {
			listed, err := readList(a)
			if err != nil {
				return nil, err
			}
			for _, p := range listed {
				if err := add(p); err != nil {
					return nil, err
				}
			}
			continue
		}
		if err := add(a); err != nil {
			return nil, err
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("benchmark: no input structures")
	}
	sort.Strings(out)
	return out, nil
}

//readList reads a .pdbs list file, one structure path per line,
//relative paths resolved against the list file's directory.
func readList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("benchmark: list %s: %w", path, err)
	}
	defer f.Close()
	dir := filepath.Dir(path)
	var out []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !filepath.IsAbs(line) {
			line = filepath.Join(dir, line)
		}
		out = append(out, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("benchmark: list %s: %w", path, err)
	}
	return out, nil
}

//Tag derives the short structure identifier from an input path: the
//base name with the .pdb/.pdb.gz extension removed, e.g.
//"structures/1a8d.pdb.gz" tags as "1a8d".
func Tag(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, ".gz")
	return strings.TrimSuffix(base, ".pdb")
}

//LoopFile returns the loop definition file that goes with an input
//structure: the same path with a .loop extension.
func LoopFile(path string) string {
	return strings.TrimSuffix(strings.TrimSuffix(path, ".gz"), ".pdb") + ".loop"
}
