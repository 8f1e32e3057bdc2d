/*
 * store.go, part of loopbench.
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

//Package store records benchmark runs and their models in MySQL. One
//benchmark row is written at kickoff, one input row per starting
//structure, and one model row per simulation task as tasks finish.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"

	"github.com/kortemmelab/loopbench/settings"
)

//ErrNotFound is returned when a benchmark or model lookup matches no row.
var ErrNotFound = errors.New("store: not found")

var schema = []string{
	`CREATE TABLE IF NOT EXISTS benchmarks (
		id BIGINT NOT NULL AUTO_INCREMENT,
		name VARCHAR(255) NOT NULL,
		title VARCHAR(255) NOT NULL DEFAULT '',
		description TEXT,
		user VARCHAR(64) NOT NULL DEFAULT '',
		script TEXT,
		script_vars TEXT,
		flags_file TEXT,
		fast BOOLEAN NOT NULL DEFAULT FALSE,
		nstruct INT NOT NULL,
		start_time DATETIME NOT NULL,
		PRIMARY KEY (id),
		INDEX idx_benchmarks_name (name)
	)`,
	`CREATE TABLE IF NOT EXISTS benchmark_inputs (
		id BIGINT NOT NULL AUTO_INCREMENT,
		benchmark_id BIGINT NOT NULL,
		pdb_path VARCHAR(1024) NOT NULL,
		PRIMARY KEY (id),
		INDEX idx_inputs_benchmark (benchmark_id)
	)`,
	`CREATE TABLE IF NOT EXISTS models (
		id BIGINT NOT NULL AUTO_INCREMENT,
		benchmark_id BIGINT NOT NULL,
		input_tag VARCHAR(255) NOT NULL,
		score DOUBLE NOT NULL,
		rmsd DOUBLE NOT NULL,
		runtime_seconds BIGINT NOT NULL,
		created_at DATETIME NOT NULL,
		PRIMARY KEY (id),
		INDEX idx_models_benchmark (benchmark_id)
	)`,
}

//A Benchmark is one recorded kickoff of the workflow.
type Benchmark struct {
	ID          int64
	Name        string
	Title       string
	Description string
	User        string
	Script      string
	ScriptVars  map[string]string
	FlagsFile   string
	Fast        bool
	Nstruct     int
	StartTime   time.Time
}

//A Model is one finished simulation task.
type Model struct {
	ID        int64
	InputTag  string
	Score     float64
	RMSD      float64
	Runtime   time.Duration
	CreatedAt time.Time
}

//Store wraps the run database.
type Store struct {
	db  *sql.DB
	log *zap.Logger
}

//DSN builds the MySQL connection string for the configured database,
//running the password command to obtain the password.
func DSN(d *settings.Database) (string, error) {
	pw, err := d.Password()
	if err != nil {
		return "", err
	}
	cfg := mysql.NewConfig()
	cfg.User = d.User
	cfg.Passwd = pw
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", d.Host, d.Port)
	cfg.DBName = d.Name
	cfg.ParseTime = true
	return cfg.FormatDSN(), nil
}

//Open connects to the run database and creates any missing tables.
func Open(ctx context.Context, d *settings.Database, log *zap.Logger) (*Store, error) {
	dsn, err := DSN(d)
	if err != nil {
		return nil, err
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("store: open: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("store: connect to %s: %w", d.Host, err)
	}
	s := &Store{db: db, log: log}
	if err := s.init(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) init(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("store: create schema: %w", err)
		}
	}
	s.log.Debug("run database schema ready")
	return nil
}

//Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

//CreateBenchmark inserts a benchmark and its input structures and fills
//in the assigned ID.
func (s *Store) CreateBenchmark(ctx context.Context, b *Benchmark, inputs []string) error {
	vars, err := json.Marshal(b.ScriptVars)
	if err != nil {
		return fmt.Errorf("store: encode script vars: %w", err)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("store: begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO benchmarks
		(name, title, description, user, script, script_vars, flags_file, fast, nstruct, start_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Name, b.Title, b.Description, b.User, b.Script, string(vars),
		b.FlagsFile, b.Fast, b.Nstruct, b.StartTime)
	if err != nil {
		return fmt.Errorf("store: insert benchmark: %w", err)
	}
	b.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: benchmark id: %w", err)
	}
	for _, p := range inputs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO benchmark_inputs (benchmark_id, pdb_path) VALUES (?, ?)`,
			b.ID, p); err != nil {
			return fmt.Errorf("store: insert input %s: %w", p, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("store: commit: %w", err)
	}
	s.log.Info("benchmark recorded", zap.Int64("id", b.ID),
		zap.String("name", b.Name), zap.Int("inputs", len(inputs)))
	return nil
}

const benchmarkCols = `id, name, title, description, user, script, script_vars,
	flags_file, fast, nstruct, start_time`

func scanBenchmark(row *sql.Row) (*Benchmark, error) {
	var b Benchmark
	var vars string
	err := row.Scan(&b.ID, &b.Name, &b.Title, &b.Description, &b.User,
		&b.Script, &vars, &b.FlagsFile, &b.Fast, &b.Nstruct, &b.StartTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan benchmark: %w", err)
	}
	if vars != "" {
		if err := json.Unmarshal([]byte(vars), &b.ScriptVars); err != nil {
			return nil, fmt.Errorf("store: decode script vars: %w", err)
		}
	}
	return &b, nil
}

//Benchmark fetches one benchmark by ID.
func (s *Store) Benchmark(ctx context.Context, id int64) (*Benchmark, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+benchmarkCols+` FROM benchmarks WHERE id = ?`, id)
	return scanBenchmark(row)
}

//LatestBenchmarkByName fetches the most recently started benchmark with
//the given name. Names are reused across reruns; the newest run wins.
func (s *Store) LatestBenchmarkByName(ctx context.Context, name string) (*Benchmark, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+benchmarkCols+` FROM benchmarks WHERE name = ?
		ORDER BY start_time DESC, id DESC LIMIT 1`, name)
	return scanBenchmark(row)
}

//Inputs returns the input structure paths of a benchmark, in insertion
//order. Insertion order fixes the task-to-structure assignment, so it
//must be stable across kickoff and resume.
func (s *Store) Inputs(ctx context.Context, benchmarkID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT pdb_path FROM benchmark_inputs WHERE benchmark_id = ? ORDER BY id`,
		benchmarkID)
	if err != nil {
		return nil, fmt.Errorf("store: inputs: %w", err)
	}
	defer rows.Close()
	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("store: scan input: %w", err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: inputs: %w", err)
	}
	if len(paths) == 0 {
		return nil, ErrNotFound
	}
	return paths, nil
}

//InsertModel records one finished simulation task.
func (s *Store) InsertModel(ctx context.Context, benchmarkID int64, m *Model) error {
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO models (benchmark_id, input_tag, score, rmsd, runtime_seconds, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		benchmarkID, m.InputTag, m.Score, m.RMSD,
		int64(m.Runtime.Seconds()), m.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: insert model: %w", err)
	}
	m.ID, err = res.LastInsertId()
	if err != nil {
		return fmt.Errorf("store: model id: %w", err)
	}
	return nil
}

//Models returns every recorded model of a benchmark.
func (s *Store) Models(ctx context.Context, benchmarkID int64) ([]*Model, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, input_tag, score, rmsd, runtime_seconds, created_at
		FROM models WHERE benchmark_id = ? ORDER BY id`, benchmarkID)
	if err != nil {
		return nil, fmt.Errorf("store: models: %w", err)
	}
	defer rows.Close()
	var models []*Model
	for rows.Next() {
		var m Model
		var secs int64
		if err := rows.Scan(&m.ID, &m.InputTag, &m.Score, &m.RMSD, &secs, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan model: %w", err)
		}
		m.Runtime = time.Duration(secs) * time.Second
		models = append(models, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("store: models: %w", err)
	}
	return models, nil
}
