package db

import (
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math"

	"github.com/banshee-data/cdc.tracking/internal/cdc"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var embeddedMigrations embed.FS

// ErrUnknownRun is returned when recording into a run that was never created.
var ErrUnknownRun = errors.New("unknown run")

// Migrations returns the embedded schema migrations.
func Migrations() fs.FS {
	sub, err := fs.Sub(embeddedMigrations, "migrations")
	if err != nil {
		// The embed pattern guarantees the directory exists.
		panic(err)
	}
	return sub
}

type DB struct {
	*sql.DB
}

// OpenDB opens the database and applies connection pragmas without touching
// the schema.
func OpenDB(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// One connection keeps pragmas and in-memory databases consistent.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA temp_store=MEMORY",
		"PRAGMA foreign_keys=ON",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	return &DB{db}, nil
}

// NewDB opens the database and migrates it to the latest schema.
func NewDB(path string) (*DB, error) {
	db, err := OpenDB(path)
	if err != nil {
		return nil, err
	}
	if err := db.MigrateUp(Migrations()); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

// Run is one invocation of the reconstruction over an input file.
type Run struct {
	ID         string
	Source     string
	ConfigJSON string
	StartedAt  string
}

// CreateRun registers a run and returns its ID. cfg is stored as JSON.
func (db *DB) CreateRun(source string, cfg any) (string, error) {
	cfgJSON, err := json.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("failed to encode run config: %w", err)
	}
	id := uuid.NewString()
	if _, err := db.Exec(
		`INSERT INTO runs (run_id, source, config_json) VALUES (?, ?, ?)`,
		id, source, string(cfgJSON),
	); err != nil {
		return "", fmt.Errorf("failed to insert run: %w", err)
	}
	return id, nil
}

func (db *DB) Runs() ([]Run, error) {
	rows, err := db.Query(`SELECT run_id, source, config_json, started_at FROM runs ORDER BY started_at, run_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var cfg sql.NullString
		if err := rows.Scan(&r.ID, &r.Source, &cfg, &r.StartedAt); err != nil {
			return nil, err
		}
		r.ConfigJSON = cfg.String
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RecordEvent stores the combination result of one event: a summary row,
// every track with its start trajectory, and the track hits in order. stats
// is stored as JSON. Everything is written in one transaction.
func (db *DB) RecordEvent(runID string, ev *cdc.Event, stats any) error {
	statsJSON, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("failed to encode event stats: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var exists int
	if err := tx.QueryRow(`SELECT COUNT(*) FROM runs WHERE run_id = ?`, runID).Scan(&exists); err != nil {
		return err
	}
	if exists == 0 {
		return fmt.Errorf("%w: %s", ErrUnknownRun, runID)
	}

	if _, err := tx.Exec(
		`INSERT INTO events (run_id, event_number, wire_hits, segments_left, tracks, stats_json)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, ev.Number, len(ev.WireHits), len(ev.Segments), len(ev.Tracks), string(statsJSON),
	); err != nil {
		return fmt.Errorf("failed to insert event %d: %w", ev.Number, err)
	}

	trackStmt, err := tx.Prepare(
		`INSERT INTO tracks (track_id, run_id, event_number, curvature, phi0, impact,
			tan_lambda, z0, chi2, ndf, n_hits, segment_ids)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer trackStmt.Close()

	hitStmt, err := tx.Prepare(
		`INSERT INTO track_hits (track_id, seq, wire_hit_id, super_layer, rl, x, y, z, arc_length)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer hitStmt.Close()

	for _, t := range ev.Tracks {
		circle := t.StartTrajectory.GlobalCircle()
		segIDs, err := json.Marshal(t.SegmentIDs)
		if err != nil {
			return err
		}
		if _, err := trackStmt.Exec(
			t.ID, runID, ev.Number,
			circle.Curvature(), circle.Phi0(), circle.Impact(),
			t.StartTrajectory.TanLambda, t.StartTrajectory.Z0,
			nullableFloat(t.StartTrajectory.Circle.Chi2), t.StartTrajectory.Circle.NDF,
			t.Len(), string(segIDs),
		); err != nil {
			return fmt.Errorf("failed to insert track %s: %w", t.ID, err)
		}
		for i, h := range t.Hits {
			if _, err := hitStmt.Exec(
				t.ID, i, h.Hit.ID, h.Hit.SuperLayer, int(h.RL),
				h.RecoPos2D.X, h.RecoPos2D.Y, h.Z, h.ArcLength2D,
			); err != nil {
				return fmt.Errorf("failed to insert hit %d of track %s: %w", i, t.ID, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	log.Printf("[db] recorded event %d: %d tracks", ev.Number, len(ev.Tracks))
	return nil
}

// EventSummary is the stored per-event row.
type EventSummary struct {
	Number       int
	WireHits     int
	SegmentsLeft int
	Tracks       int
	StatsJSON    string
}

func (db *DB) EventSummaries(runID string) ([]EventSummary, error) {
	rows, err := db.Query(
		`SELECT event_number, wire_hits, segments_left, tracks, stats_json
		 FROM events WHERE run_id = ? ORDER BY event_number`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []EventSummary
	for rows.Next() {
		var s EventSummary
		var stats sql.NullString
		if err := rows.Scan(&s.Number, &s.WireHits, &s.SegmentsLeft, &s.Tracks, &stats); err != nil {
			return nil, err
		}
		s.StatsJSON = stats.String
		out = append(out, s)
	}
	return out, rows.Err()
}

// TrackRow is a stored track with its start trajectory in global
// perigee parameters.
type TrackRow struct {
	ID          string
	EventNumber int
	Curvature   float64
	Phi0        float64
	Impact      float64
	TanLambda   float64
	Z0          float64
	Chi2        sql.NullFloat64
	NDF         int
	NHits       int
	SegmentIDs  []int
}

func (db *DB) Tracks(runID string, eventNumber int) ([]TrackRow, error) {
	rows, err := db.Query(
		`SELECT track_id, event_number, curvature, phi0, impact, tan_lambda, z0, chi2, ndf, n_hits, segment_ids
		 FROM tracks WHERE run_id = ? AND event_number = ? ORDER BY track_id`, runID, eventNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []TrackRow
	for rows.Next() {
		var r TrackRow
		var ndf sql.NullInt64
		var segIDs sql.NullString
		if err := rows.Scan(&r.ID, &r.EventNumber, &r.Curvature, &r.Phi0, &r.Impact,
			&r.TanLambda, &r.Z0, &r.Chi2, &ndf, &r.NHits, &segIDs); err != nil {
			return nil, err
		}
		r.NDF = int(ndf.Int64)
		if segIDs.Valid && segIDs.String != "" {
			if err := json.Unmarshal([]byte(segIDs.String), &r.SegmentIDs); err != nil {
				return nil, fmt.Errorf("track %s: bad segment ids: %w", r.ID, err)
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// HitRow is a stored track hit.
type HitRow struct {
	Seq        int
	WireHitID  int
	SuperLayer int
	RL         int
	X, Y, Z    float64
	ArcLength  float64
}

// TrackHits returns the hits of a track in stored order.
func (db *DB) TrackHits(trackID string) ([]HitRow, error) {
	rows, err := db.Query(
		`SELECT seq, wire_hit_id, super_layer, rl, x, y, z, arc_length
		 FROM track_hits WHERE track_id = ? ORDER BY seq`, trackID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HitRow
	for rows.Next() {
		var h HitRow
		if err := rows.Scan(&h.Seq, &h.WireHitID, &h.SuperLayer, &h.RL, &h.X, &h.Y, &h.Z, &h.ArcLength); err != nil {
			return nil, err
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// nullableFloat maps NaN, which sqlite cannot store, to NULL.
func nullableFloat(v float64) sql.NullFloat64 {
	return sql.NullFloat64{Float64: v, Valid: !math.IsNaN(v)}
}
