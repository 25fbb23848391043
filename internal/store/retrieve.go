// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/pdiddy/singlelep/internal/calc"
	"github.com/pdiddy/singlelep/internal/features"
)

// Run describes one stored analysis run.
type Run struct {
	ID        string    `json:"id" yaml:"id"`
	StartedAt time.Time `json:"started_at" yaml:"started_at"`
	Source    string    `json:"source" yaml:"source"`
	Config    string    `json:"config" yaml:"config"`
	Events    int       `json:"events" yaml:"events"`
}

// ColumnEntry is the value of one feature in one event.
type ColumnEntry struct {
	EventIndex int
	Value      features.Value
}

// Runs lists all runs, oldest first.
func (s *Store) Runs(ctx context.Context) ([]Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.started_at, r.source, r.config, COUNT(e.event_index)
		FROM runs r
		LEFT JOIN events e ON e.run_id = r.id
		GROUP BY r.id
		ORDER BY r.started_at, r.id`)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Run returns the run with the given ID.
func (s *Store) Run(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT r.id, r.started_at, r.source, r.config, COUNT(e.event_index)
		FROM runs r
		LEFT JOIN events e ON e.run_id = r.id
		WHERE r.id = ?
		GROUP BY r.id`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("run %s: %w", id, ErrNotFound)
	}
	return r, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r         Run
		startedAt string
		source    sql.NullString
		config    sql.NullString
	)
	if err := sc.Scan(&r.ID, &startedAt, &source, &config, &r.Events); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scanning run: %w", err)
	}
	r.Source = source.String
	r.Config = config.String
	if t, err := time.Parse(time.RFC3339Nano, startedAt); err == nil {
		r.StartedAt = t
	}
	return r, nil
}

// Event returns the stored event with index idx in run runID, features in
// their original order.
func (s *Store) Event(ctx context.Context, runID string, idx int) (calc.EventFeatures, error) {
	ef := calc.EventFeatures{Index: idx}
	err := s.db.QueryRowContext(ctx,
		`SELECT run, lumi, event FROM events WHERE run_id = ? AND event_index = ?`, runID, idx,
	).Scan(&ef.Run, &ef.Lumi, &ef.Event)
	if errors.Is(err, sql.ErrNoRows) {
		return ef, fmt.Errorf("event %d of run %s: %w", idx, runID, ErrNotFound)
	}
	if err != nil {
		return ef, fmt.Errorf("querying event: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name, kind, value FROM features
		WHERE run_id = ? AND event_index = ?
		ORDER BY position`, runID, idx)
	if err != nil {
		return ef, fmt.Errorf("querying features: %w", err)
	}
	defer rows.Close()

	ef.Features = features.NewRecord()
	for rows.Next() {
		name, v, err := scanFeature(rows)
		if err != nil {
			return ef, err
		}
		ef.Features.SetValue(name, v)
	}
	return ef, rows.Err()
}

// Events returns every stored event of run runID in event order.
func (s *Store) Events(ctx context.Context, runID string) ([]calc.EventFeatures, error) {
	if _, err := s.Run(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT e.event_index, e.run, e.lumi, e.event, f.name, f.kind, f.value
		FROM events e
		LEFT JOIN features f ON f.run_id = e.run_id AND f.event_index = e.event_index
		WHERE e.run_id = ?
		ORDER BY e.event_index, f.position`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying events: %w", err)
	}
	defer rows.Close()

	var out []calc.EventFeatures
	for rows.Next() {
		var (
			ef              calc.EventFeatures
			name, kind, val sql.NullString
		)
		if err := rows.Scan(&ef.Index, &ef.Run, &ef.Lumi, &ef.Event, &name, &kind, &val); err != nil {
			return nil, fmt.Errorf("scanning event: %w", err)
		}
		if len(out) == 0 || out[len(out)-1].Index != ef.Index {
			ef.Features = features.NewRecord()
			out = append(out, ef)
		}
		if !name.Valid {
			continue
		}
		v, err := features.DecodeValue(features.Kind(kind.String), []byte(val.String))
		if err != nil {
			return nil, fmt.Errorf("decoding feature %s: %w", name.String, err)
		}
		out[len(out)-1].Features.SetValue(name.String, v)
	}
	return out, rows.Err()
}

// Column returns feature name across all events of run runID, in event
// order. Events lacking the feature are omitted.
func (s *Store) Column(ctx context.Context, runID, name string) ([]ColumnEntry, error) {
	if _, err := s.Run(ctx, runID); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT event_index, name, kind, value FROM features
		WHERE run_id = ? AND name = ?
		ORDER BY event_index`, runID, name)
	if err != nil {
		return nil, fmt.Errorf("querying column %s: %w", name, err)
	}
	defer rows.Close()

	var out []ColumnEntry
	for rows.Next() {
		var (
			idx              int
			fname, kind, val string
		)
		if err := rows.Scan(&idx, &fname, &kind, &val); err != nil {
			return nil, fmt.Errorf("scanning feature: %w", err)
		}
		v, err := features.DecodeValue(features.Kind(kind), []byte(val))
		if err != nil {
			return nil, fmt.Errorf("decoding feature %s: %w", fname, err)
		}
		out = append(out, ColumnEntry{EventIndex: idx, Value: v})
	}
	return out, rows.Err()
}

func scanFeature(sc scanner) (string, features.Value, error) {
	var name, kind, val string
	if err := sc.Scan(&name, &kind, &val); err != nil {
		return "", features.Value{}, fmt.Errorf("scanning feature: %w", err)
	}
	v, err := features.DecodeValue(features.Kind(kind), []byte(val))
	if err != nil {
		return "", features.Value{}, fmt.Errorf("decoding feature %s: %w", name, err)
	}
	return name, v, nil
}
