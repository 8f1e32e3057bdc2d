/*
 * rmsdcmd.go, part of loopbench.
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

	"github.com/spf13/cobra"

	"github.com/kortemmelab/loopbench/benchmark"
	"github.com/kortemmelab/loopbench/pdb"
	"github.com/kortemmelab/loopbench/rmsd"
)

//rmsd compares two structures directly, without the database or the
//cluster. Handy for eyeballing a single model.
func newRMSDCmd(a *app) *cobra.Command {
	var loopFile string
	cmd := &cobra.Command{
		Use:   "rmsd <reference.pdb> <model.pdb>",
		Short: "Backbone RMSD between two structures",
		Long: `Backbone RMSD between two structures of the same sequence.

Without --loops the whole backbones are superposed and measured. With
--loops the structures are superposed on the backbone outside the loops
and the RMSD is measured over the loop residues only, exactly as the
benchmark scores its models.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if loopFile != "" {
				v, err := benchmark.LoopRMSDWithLoops(args[0], args[1], loopFile)
				if err != nil {
					return err
				}
				fmt.Printf("%.4f\n", v)
				return nil
			}
			ref, err := pdb.ReadFile(args[0])
			if err != nil {
				return err
			}
			mdl, err := pdb.ReadFile(args[1])
			if err != nil {
				return err
			}
			res := ref.Residues()
			v, _, err := rmsd.SuperposedRMSD(
				pdb.Coords(mdl.Backbone(res)), pdb.Coords(ref.Backbone(res)))
			if err != nil {
				return err
			}
			fmt.Printf("%.4f\n", v)
			return nil
		},
	}
	cmd.Flags().StringVar(&loopFile, "loops", "", "loop definition file for a benchmark-style measurement")
	return cmd
}
