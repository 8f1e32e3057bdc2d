/*
 * runtask.go, part of loopbench.
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
	"github.com/spf13/cobra"

	"github.com/kortemmelab/loopbench/benchmark"
)

//run-task is what the array job invokes on the worker nodes; it is not
//meant to be run by hand except for debugging, with --task standing in
//for SGE_TASK_ID.
func newRunTaskCmd(a *app) *cobra.Command {
	var benchmarkID int64
	var taskID int
	cmd := &cobra.Command{
		Use:    "run-task --benchmark <id>",
		Short:  "Execute one simulation task of a benchmark (called by the scheduler)",
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id := taskID
			if id == 0 {
				var err error
				if id, err = benchmark.TaskID(); err != nil {
					return err
				}
			}
			ctx := cmd.Context()
			st, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close()
			return a.launcher(st).RunTask(ctx, benchmarkID, id)
		},
	}
	cmd.Flags().Int64Var(&benchmarkID, "benchmark", 0, "benchmark id")
	cmd.Flags().IntVar(&taskID, "task", 0, "task id override (default SGE_TASK_ID)")
	cmd.MarkFlagRequired("benchmark")
	return cmd
}
