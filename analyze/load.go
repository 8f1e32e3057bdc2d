/*
 * load.go, part of loopbench.
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

package analyze

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kortemmelab/loopbench/store"
)

//FromStore loads a benchmark and all its models from the run database,
//grouping models into loops by input structure.
func FromStore(ctx context.Context, st *store.Store, id int64) (*Benchmark, error) {
	rec, err := st.Benchmark(ctx, id)
	if err != nil {
		return nil, err
	}
	models, err := st.Models(ctx, id)
	if err != nil {
		return nil, err
	}
	b := &Benchmark{ID: rec.ID, Name: rec.Name, Title: rec.Title, User: rec.User}
	byTag := make(map[string]*Loop)
	for _, m := range models {
		l := byTag[m.InputTag]
		if l == nil {
			l = &Loop{Tag: m.InputTag}
			byTag[m.InputTag] = l
			b.Loops = append(b.Loops, l)
		}
		l.Models = append(l.Models, Model{
			ID:      m.ID,
			Score:   m.Score,
			RMSD:    m.RMSD,
			Runtime: m.Runtime,
		})
	}
	b.sortLoops()
	return b, nil
}

//FromStoreByName loads the most recent benchmark with the given name.
func FromStoreByName(ctx context.Context, st *store.Store, name string) (*Benchmark, error) {
	rec, err := st.LatestBenchmarkByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return FromStore(ctx, st, rec.ID)
}

//ReadResults loads a benchmark from a flat results file, one model per
//line: "tag id rmsd score runtime_seconds", with # comments. The
//benchmark is named after the file.
func ReadResults(path string) (*Benchmark, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("analyze: %w", err)
	}
	defer f.Close()
	name := strings.TrimSuffix(filepath.Base(path), ".results")
	b, err := readResults(f, name)
	if err != nil {
		return nil, fmt.Errorf("analyze: %s: %w", path, err)
	}
	return b, nil
}

func readResults(r io.Reader, name string) (*Benchmark, error) {
	b := &Benchmark{Name: name}
	byTag := make(map[string]*Loop)
	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != 5 {
			return nil, fmt.Errorf("line %d: want 5 fields, got %d", lineno, len(fields))
		}
		id, err := strconv.ParseInt(fields[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: model id: %w", lineno, err)
		}
		rmsd, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: rmsd: %w", lineno, err)
		}
		score, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: score: %w", lineno, err)
		}
		secs, err := strconv.ParseFloat(fields[4], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: runtime: %w", lineno, err)
		}
		tag := fields[0]
		l := byTag[tag]
		if l == nil {
			l = &Loop{Tag: tag}
			byTag[tag] = l
			b.Loops = append(b.Loops, l)
		}
		l.Models = append(l.Models, Model{
			ID:      id,
			RMSD:    rmsd,
			Score:   score,
			Runtime: time.Duration(secs * float64(time.Second)),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(b.Loops) == 0 {
		return nil, fmt.Errorf("no model lines")
	}
	b.sortLoops()
	return b, nil
}

//WriteResults writes a benchmark back out as a flat results file.
func WriteResults(w io.Writer, b *Benchmark) error {
	if _, err := fmt.Fprintf(w, "# benchmark %s\n# tag id rmsd score runtime_seconds\n", b.Name); err != nil {
		return fmt.Errorf("analyze: %w", err)
	}
	for _, l := range b.Loops {
		for _, m := range l.Models {
			_, err := fmt.Fprintf(w, "%s %d %.4f %.4f %.1f\n",
				l.Tag, m.ID, m.RMSD, m.Score, m.Runtime.Seconds())
			if err != nil {
				return fmt.Errorf("analyze: %w", err)
			}
		}
	}
	return nil
}
