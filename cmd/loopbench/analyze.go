/*
 * analyze.go, part of loopbench.
 *
 * Copyright 2016 The loopbench authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 */

package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kortemmelab/loopbench/analyze"
)

func newAnalyzeCmd(a *app) *cobra.Command {
	var outDir string
	var export string
	cmd := &cobra.Command{
		Use:   "analyze <benchmark-id|benchmark-name|file.results>",
		Short: "Summarize a finished benchmark and render its report",
		Long: `Summarize a finished benchmark and render its report.

The argument is a benchmark ID, a benchmark name (the most recent run
with that name is used), or a .results flat file exported earlier.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			var b *analyze.Benchmark
			var err error
			switch arg := args[0]; {
			case strings.HasSuffix(arg, ".results"):
				b, err = analyze.ReadResults(arg)
			default:
				st, serr := a.openStore(ctx)
				if serr != nil {
					return serr
				}
				defer st.Close()
				if id, perr := strconv.ParseInt(arg, 10, 64); perr == nil {
					b, err = analyze.FromStore(ctx, st, id)
				} else {
					b, err = analyze.FromStoreByName(ctx, st, arg)
				}
			}
			if err != nil {
				return err
			}

			if export != "" {
				f, err := os.Create(export)
				if err != nil {
					return fmt.Errorf("analyze: export: %w", err)
				}
				if err := analyze.WriteResults(f, b); err != nil {
					f.Close()
					return err
				}
				if err := f.Close(); err != nil {
					return fmt.Errorf("analyze: export: %w", err)
				}
				a.log.Info("results exported", zap.String("path", export))
			}

			if err := analyze.Report(b, outDir); err != nil {
				return err
			}
			sum, err := analyze.Summarize(b)
			if err != nil {
				return err
			}
			fmt.Printf("benchmark %s: %d loops, median best-of-top-%d RMSD %.3f A, median %%sub-A %.1f\n",
				b.Name, len(sum.Loops), analyze.TopScoringToConsider,
				sum.MedianBestTopRMSD, sum.MedianPctSubangstrom)
			fmt.Printf("report written to %s\n", outDir)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "report", "report output directory")
	cmd.Flags().StringVar(&export, "export", "", "also export a .results flat file")
	return cmd
}
