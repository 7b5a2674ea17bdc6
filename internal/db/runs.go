package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrRunNotFound is returned by GetRun for an unknown run id.
var ErrRunNotFound = errors.New("run not found")

// DefaultListLimit caps ListRuns when the caller passes a limit <= 0.
const DefaultListLimit = 50

// Run is one recorded spiral computation.
type Run struct {
	ID               string        `json:"run_id"`
	Size             int           `json:"size"`
	Bound            int           `json:"bound"`
	PrimeCount       int           `json:"prime_count"`
	DiagonalPrimes   int           `json:"diagonal_primes"`
	MeanRingDensity  float64       `json:"mean_ring_density"`
	Artifacts        []string      `json:"artifacts"`
	SieveDuration    time.Duration `json:"sieve_ns"`
	FillDuration     time.Duration `json:"fill_ns"`
	ClassifyDuration time.Duration `json:"classify_ns"`
	CreatedAt        time.Time     `json:"created_at"`
}

// RingStat is the stored prime count of one ring of a run.
type RingStat struct {
	RunID  string `json:"run_id"`
	Ring   int    `json:"ring"`
	Cells  int    `json:"cells"`
	Primes int    `json:"primes"`
}

// RecordRun inserts run and its ring rows in one transaction. An empty run.ID
// is filled with a new uuid and a zero CreatedAt with the current time.
func (db *DB) RecordRun(run *Run, rings []RingStat) (err error) {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	artifacts := run.Artifacts
	if artifacts == nil {
		artifacts = []string{}
	}
	artifactsJSON, err := json.Marshal(artifacts)
	if err != nil {
		return fmt.Errorf("failed to encode artifacts: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	_, err = tx.Exec(`
		INSERT INTO runs (
			run_id, size, bound, prime_count, diagonal_primes, mean_ring_density,
			artifacts_json, sieve_nanos, fill_nanos, classify_nanos, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Size, run.Bound, run.PrimeCount, run.DiagonalPrimes, run.MeanRingDensity,
		string(artifactsJSON), run.SieveDuration.Nanoseconds(), run.FillDuration.Nanoseconds(),
		run.ClassifyDuration.Nanoseconds(), run.CreatedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO ring_stats (run_id, ring, cells, primes) VALUES (?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare ring insert: %w", err)
	}
	defer stmt.Close()
	for i := range rings {
		rings[i].RunID = run.ID
		if _, err = stmt.Exec(run.ID, rings[i].Ring, rings[i].Cells, rings[i].Primes); err != nil {
			return fmt.Errorf("failed to insert ring %d: %w", rings[i].Ring, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}
	return nil
}

const runColumns = `run_id, size, bound, prime_count, diagonal_primes, mean_ring_density,
	artifacts_json, sieve_nanos, fill_nanos, classify_nanos, created_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*Run, error) {
	var (
		run                      Run
		artifactsJSON            string
		sieveNs, fillNs, classNs int64
		createdAt                int64
	)
	if err := row.Scan(
		&run.ID, &run.Size, &run.Bound, &run.PrimeCount, &run.DiagonalPrimes, &run.MeanRingDensity,
		&artifactsJSON, &sieveNs, &fillNs, &classNs, &createdAt,
	); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(artifactsJSON), &run.Artifacts); err != nil {
		return nil, fmt.Errorf("run %s: invalid artifacts: %w", run.ID, err)
	}
	run.SieveDuration = time.Duration(sieveNs)
	run.FillDuration = time.Duration(fillNs)
	run.ClassifyDuration = time.Duration(classNs)
	run.CreatedAt = time.Unix(0, createdAt)
	return &run, nil
}

// ListRuns returns the most recent runs, newest first.
func (db *DB) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	rows, err := db.Query(`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, run_id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	runs := []Run{}
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// GetRun returns one run and its ring rows ordered by ring.
func (db *DB) GetRun(id string) (*Run, []RingStat, error) {
	run, err := scanRun(db.QueryRow(`SELECT `+runColumns+` FROM runs WHERE run_id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get run: %w", err)
	}

	rows, err := db.Query(`SELECT run_id, ring, cells, primes FROM ring_stats WHERE run_id = ? ORDER BY ring`, id)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query ring stats: %w", err)
	}
	defer rows.Close()

	rings := []RingStat{}
	for rows.Next() {
		var rs RingStat
		if err := rows.Scan(&rs.RunID, &rs.Ring, &rs.Cells, &rs.Primes); err != nil {
			return nil, nil, fmt.Errorf("failed to scan ring stat: %w", err)
		}
		rings = append(rings, rs)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, err
	}
	return run, rings, nil
}
