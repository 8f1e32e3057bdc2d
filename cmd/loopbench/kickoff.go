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

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kortemmelab/loopbench/benchmark"
)

func newKickoffCmd(a *app) *cobra.Command {
	var opts benchmark.RunOptions
	cmd := &cobra.Command{
		Use:   "kickoff <input.pdb|input.pdb.gz|set.pdbs>...",
		Short: "Record a new benchmark and submit its simulation array",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.Name == "" {
				return fmt.Errorf("kickoff: --name is required")
			}
			if opts.Script == "" {
				return fmt.Errorf("kickoff: --script is required")
			}
			opts.Inputs = args
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			id, job, err := a.launcher(st).Run(ctx, opts)
			if err != nil {
				return err
			}
			a.log.Info("benchmark kicked off",
				zap.Int64("benchmark", id), zap.Int64("job", job))
			fmt.Printf("benchmark %d submitted as job %d\n", id, job)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Name, "name", "", "benchmark name")
	cmd.Flags().StringVar(&opts.Title, "title", "", "report title")
	cmd.Flags().StringVar(&opts.Description, "description", "", "free-form run notes")
	cmd.Flags().StringVar(&opts.Script, "script", "", "RosettaScripts protocol XML")
	cmd.Flags().StringToStringVar(&opts.ScriptVars, "var", nil,
		"protocol script_vars substitution (key=value, repeatable)")
	cmd.Flags().StringVar(&opts.FlagsFile, "flags", "", "extra Rosetta flags file")
	cmd.Flags().BoolVar(&opts.Fast, "fast", false,
		"short debug run: few models, tight runtime limit")
	cmd.Flags().IntVar(&opts.Nstruct, "nstruct", 0,
		"models per input structure (0 picks the fast/full default)")
	cmd.Flags().BoolVar(&opts.Build, "build", false, "rebuild Rosetta first")
	return cmd
}
