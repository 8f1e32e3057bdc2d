/*
 * settings.go, part of loopbench.
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

//Package settings loads the benchmark configuration: where Rosetta
//lives, how to reach the run database and how jobs are submitted to the
//cluster. Values come from built-in defaults, then a YAML settings file,
//then LOOPBENCH_* environment variables, each layer overriding the last.
package settings

import (
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

//DefaultPath is where Load looks when no settings file is given.
const DefaultPath = "loopbench.yaml"

const defaults = `
rosetta:
  path: ""
  binary: rosetta_scripts
  build_command: "scons bin mode=release -j8"
database:
  name: loopbench
  user: ""
  host: localhost
  port: 3306
  password_command: ""
cluster:
  qsub: qsub
  output_dir: job_output
  fast_runtime: 30m
  full_runtime: 4h
  fast_nstruct: 10
  full_nstruct: 500
analysis:
  author: ""
`

//Rosetta locates the modeling suite.
type Rosetta struct {
	Path         string `koanf:"path"`
	Binary       string `koanf:"binary"`
	BuildCommand string `koanf:"build_command"`
}

//Database holds the MySQL connection parameters. The password is never
//written down: PasswordCommand is a shell command whose trimmed stdout
//is the password.
type Database struct {
	Name            string `koanf:"name"`
	User            string `koanf:"user"`
	Host            string `koanf:"host"`
	Port            int    `koanf:"port"`
	PasswordCommand string `koanf:"password_command"`
}

//Cluster holds the job submission parameters.
type Cluster struct {
	Qsub        string        `koanf:"qsub"`
	OutputDir   string        `koanf:"output_dir"`
	FastRuntime time.Duration `koanf:"fast_runtime"`
	FullRuntime time.Duration `koanf:"full_runtime"`
	FastNstruct int           `koanf:"fast_nstruct"`
	FullNstruct int           `koanf:"full_nstruct"`
}

//Analysis holds report metadata.
type Analysis struct {
	Author string `koanf:"author"`
}

//Settings is the full benchmark configuration.
type Settings struct {
	Rosetta  Rosetta  `koanf:"rosetta"`
	Database Database `koanf:"database"`
	Cluster  Cluster  `koanf:"cluster"`
	Analysis Analysis `koanf:"analysis"`
}

//Load reads the settings file at path, layering it over the defaults
//and under any LOOPBENCH_* environment variables (so e.g.
//LOOPBENCH_DATABASE_HOST overrides database.host). An empty path means
//DefaultPath; a missing file at DefaultPath is not an error, a missing
//explicit file is.
func Load(path string) (*Settings, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider([]byte(defaults)), yaml.Parser()); err != nil {
		return nil, fmt.Errorf("settings: defaults: %w", err)
	}

	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit {
			return nil, fmt.Errorf("settings: %s: %w", path, err)
		}
	}

	//only the first underscore separates the section: keys themselves
	//contain underscores (LOOPBENCH_DATABASE_PASSWORD_COMMAND maps to
	//database.password_command)
	err := k.Load(env.Provider("LOOPBENCH_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "LOOPBENCH_"))
		return strings.Replace(s, "_", ".", 1)
	}), nil)
	if err != nil {
		return nil, fmt.Errorf("settings: environment: %w", err)
	}

	var s Settings
	if err := k.Unmarshal("", &s); err != nil {
		return nil, fmt.Errorf("settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

//Validate checks the loaded values for the mistakes a settings file can
//plausibly contain.
func (s *Settings) Validate() error {
	if s.Database.Name == "" {
		return fmt.Errorf("settings: database.name must be set")
	}
	if s.Database.Port <= 0 || s.Database.Port > 65535 {
		return fmt.Errorf("settings: database.port %d out of range", s.Database.Port)
	}
	if s.Cluster.FastNstruct <= 0 || s.Cluster.FullNstruct <= 0 {
		return fmt.Errorf("settings: cluster nstruct values must be positive")
	}
	if s.Cluster.FastRuntime <= 0 || s.Cluster.FullRuntime <= 0 {
		return fmt.Errorf("settings: cluster runtimes must be positive")
	}
	if s.Cluster.OutputDir == "" {
		return fmt.Errorf("settings: cluster.output_dir must be set")
	}
	return nil
}

//Password runs the configured password command and returns its trimmed
//output. An empty command yields an empty password.
func (d *Database) Password() (string, error) {
	if d.PasswordCommand == "" {
		return "", nil
	}
	out, err := exec.Command("sh", "-c", d.PasswordCommand).Output()
	if err != nil {
		return "", fmt.Errorf("settings: password command: %w", err)
	}
	return strings.TrimSpace(string(out)), nil
}

//Nstruct returns the models-per-input count for a fast or full run.
func (c *Cluster) Nstruct(fast bool) int {
	if fast {
		return c.FastNstruct
	}
	return c.FullNstruct
}

//Runtime returns the per-task wall clock limit for a fast or full run.
func (c *Cluster) Runtime(fast bool) time.Duration {
	if fast {
		return c.FastRuntime
	}
	return c.FullRuntime
}
