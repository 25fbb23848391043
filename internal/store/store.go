// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package store persists analysed events in a SQLite database so that runs
// can be listed, inspected and exported after the fact.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/singlelep/internal/calc"
	"github.com/pdiddy/singlelep/internal/features"
	"github.com/pdiddy/singlelep/pkg/types"
)

const dbFile = "features.db"

// ErrNotFound is returned when a run or event does not exist.
var ErrNotFound = errors.New("not found")

// Store manages the feature database.
type Store struct {
	db  *sql.DB
	dir string
}

// NewStore opens or creates the database at cfg.Dir/features.db and creates
// the schema if it does not exist.
func NewStore(cfg types.StoreConfig) (*Store, error) {
	if err := os.MkdirAll(cfg.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory: %w", err)
	}

	dbPath := filepath.Join(cfg.Dir, dbFile)
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db, dir: cfg.Dir}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file location.
func (s *Store) Path() string {
	return filepath.Join(s.dir, dbFile)
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			source TEXT,
			config TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			event_index INTEGER NOT NULL,
			run INTEGER,
			lumi INTEGER,
			event INTEGER,
			PRIMARY KEY (run_id, event_index)
		)`,
		`CREATE TABLE IF NOT EXISTS features (
			run_id TEXT NOT NULL,
			event_index INTEGER NOT NULL,
			position INTEGER NOT NULL,
			name TEXT NOT NULL,
			kind TEXT NOT NULL,
			value TEXT NOT NULL,
			PRIMARY KEY (run_id, event_index, name),
			FOREIGN KEY (run_id, event_index) REFERENCES events(run_id, event_index) ON DELETE CASCADE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_features_name ON features(run_id, name)`,
	}

	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// BeginRun records a new run and returns its ID. The configuration is kept
// alongside so that the run can be reproduced.
func (s *Store) BeginRun(ctx context.Context, source string, cfg types.CalcConfig) (string, error) {
	cfgYAML, err := yaml.Marshal(&cfg)
	if err != nil {
		return "", fmt.Errorf("marshaling run config: %w", err)
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO runs (id, started_at, source, config) VALUES (?, ?, ?, ?)`,
		id, time.Now().UTC().Format(time.RFC3339Nano), source, string(cfgYAML),
	)
	if err != nil {
		return "", fmt.Errorf("inserting run: %w", err)
	}
	return id, nil
}

// WriteEvent stores one analysed event, replacing any earlier copy of the
// same event index in the run.
func (s *Store) WriteEvent(ctx context.Context, runID string, ef calc.EventFeatures) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`DELETE FROM events WHERE run_id = ? AND event_index = ?`, runID, ef.Index,
	); err != nil {
		return fmt.Errorf("deleting old event: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO events (run_id, event_index, run, lumi, event) VALUES (?, ?, ?, ?, ?)`,
		runID, ef.Index, ef.Run, ef.Lumi, ef.Event,
	); err != nil {
		return fmt.Errorf("inserting event %d: %w", ef.Index, err)
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO features (run_id, event_index, position, name, kind, value)
		 VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	rec := ef.Features
	if rec == nil {
		rec = features.NewRecord()
	}
	for pos, name := range rec.Names() {
		v, _ := rec.Get(name)
		kind, data, err := features.EncodeValue(v)
		if err != nil {
			return fmt.Errorf("encoding feature %s: %w", name, err)
		}
		if _, err := stmt.ExecContext(ctx, runID, ef.Index, pos, name, string(kind), string(data)); err != nil {
			return fmt.Errorf("inserting feature %s: %w", name, err)
		}
	}

	return tx.Commit()
}

// WriteSummary holds counts from storing a batch.
type WriteSummary struct {
	Written int
	Failed  int
}

// WriteAll stores every event of a batch under runID, reporting progress to
// w. A failed event is reported and counted; the remaining events are still
// written.
func (s *Store) WriteAll(ctx context.Context, runID string, events []calc.EventFeatures, w io.Writer) (WriteSummary, error) {
	var summary WriteSummary
	for _, ef := range events {
		select {
		case <-ctx.Done():
			return summary, ctx.Err()
		default:
		}

		if err := s.WriteEvent(ctx, runID, ef); err != nil {
			fmt.Fprintf(w, "failed  storing event %d: %v\n", ef.Index, err)
			summary.Failed++
			continue
		}
		summary.Written++
	}
	fmt.Fprintf(w, "stored %d events in run %s\n", summary.Written, runID)
	return summary, nil
}
