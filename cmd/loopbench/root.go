/*
 * root.go, part of loopbench.
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
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kortemmelab/loopbench/benchmark"
	"github.com/kortemmelab/loopbench/cluster"
	"github.com/kortemmelab/loopbench/settings"
	"github.com/kortemmelab/loopbench/store"
)

type app struct {
	settingsPath string
	verbose      bool

	cfg *settings.Settings
	log *zap.Logger
}

//setup loads the settings and builds the logger; every subcommand runs
//it first.
func (a *app) setup() error {
	level := zap.InfoLevel
	if a.verbose {
		level = zap.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg := zap.Config{
		Level:            zap.NewAtomicLevelAt(level),
		Encoding:         "console",
		EncoderConfig:    enc,
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	}
	log, err := cfg.Build()
	if err != nil {
		return err
	}
	a.log = log

	s, err := settings.Load(a.settingsPath)
	if err != nil {
		return err
	}
	a.cfg = s
	return nil
}

//openStore connects to the run database.
func (a *app) openStore(ctx context.Context) (*store.Store, error) {
	return store.Open(ctx, &a.cfg.Database, a.log)
}

//launcher assembles the benchmark launcher around an open store.
func (a *app) launcher(st *store.Store) *benchmark.Launcher {
	return &benchmark.Launcher{
		Settings:  a.cfg,
		Store:     st,
		Submitter: cluster.NewSubmitter(a.cfg.Cluster.Qsub, a.log),
		Log:       a.log,
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "loopbench",
		Short:         "Protein loop-modeling benchmark workflow",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVar(&a.settingsPath, "settings", "",
		"settings file (default "+settings.DefaultPath+")")
	root.PersistentFlags().BoolVarP(&a.verbose, "verbose", "v", false,
		"debug logging")

	root.AddCommand(
		newKickoffCmd(a),
		newResumeCmd(a),
		newRunTaskCmd(a),
		newAnalyzeCmd(a),
		newRMSDCmd(a),
	)
	return root
}
