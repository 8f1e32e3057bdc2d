/*
 * resume.go, part of loopbench.
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
	"strconv"

	"github.com/spf13/cobra"
)

func newResumeCmd(a *app) *cobra.Command {
	var nstruct int
	cmd := &cobra.Command{
		Use:   "resume <benchmark-id>",
		Short: "Submit more simulation tasks for an existing benchmark",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("resume: benchmark id: %w", err)
			}
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()

			job, err := a.launcher(st).Resume(ctx, id, nstruct)
			if err != nil {
				return err
			}
			fmt.Printf("benchmark %d resumed as job %d\n", id, job)
			return nil
		},
	}
	cmd.Flags().IntVar(&nstruct, "nstruct", 0,
		"models per input structure for this submission (0 keeps the recorded value)")
	return cmd
}
