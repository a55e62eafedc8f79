// Package store persists benchmark run history in a local SQLite
// database.
package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jpintar/countland/internal/benchmark"
)

// Store represents the SQLite-based run-history store
type Store struct {
	db   *sql.DB
	path string
}

// NewStore creates a new store instance with SQLite database
func NewStore(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	dbPath := filepath.Join(dataDir, "countland.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{
		db:   db,
		path: dbPath,
	}

	if err := store.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	return store, nil
}

// initialize creates the necessary tables
func (s *Store) initialize() error {
	runsTable := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at DATETIME,
		source TEXT,
		genes INTEGER,
		cells INTEGER,
		seed INTEGER,
		params TEXT
	);`

	scoresTable := `
	CREATE TABLE IF NOT EXISTS scores (
		run_id TEXT,
		variant TEXT,
		pipeline TEXT,
		cells INTEGER,
		ari REAL,
		nmi REAL,
		homogeneity REAL,
		seconds REAL,
		PRIMARY KEY (run_id, variant, pipeline),
		FOREIGN KEY (run_id) REFERENCES runs (id)
	);`

	for _, table := range []string{runsTable, scoresTable} {
		if _, err := s.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	return nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun stores a completed benchmark report and all its scored runs.
func (s *Store) SaveRun(report *benchmark.Report) error {
	params, err := json.Marshal(report.Params)
	if err != nil {
		return fmt.Errorf("failed to marshal run params: %w", err)
	}

	_, err = s.db.Exec(`
	INSERT OR REPLACE INTO runs (id, started_at, source, genes, cells, seed, params)
	VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.ID,
		report.StartedAt,
		report.Source,
		report.Genes,
		report.Cells,
		report.Seed,
		string(params),
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}

	for _, run := range report.Runs {
		_, err := s.db.Exec(`
		INSERT OR REPLACE INTO scores
		(run_id, variant, pipeline, cells, ari, nmi, homogeneity, seconds)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			report.ID,
			run.Variant,
			run.Pipeline,
			run.Cells,
			run.Score.ARI,
			run.Score.NMI,
			run.Score.Homogeneity,
			run.Seconds,
		)
		if err != nil {
			return fmt.Errorf("failed to save score for %s/%s: %w", run.Variant, run.Pipeline, err)
		}
	}

	return nil
}

// RunSummary is one stored run without its per-pipeline scores.
type RunSummary struct {
	ID        string
	StartedAt time.Time
	Source    string
	Genes     int
	Cells     int
	Seed      int64
}

// ListRuns returns stored runs, newest first.
func (s *Store) ListRuns(limit int) ([]RunSummary, error) {
	rows, err := s.db.Query(`
	SELECT id, started_at, source, genes, cells, seed
	FROM runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		if err := rows.Scan(&r.ID, &r.StartedAt, &r.Source, &r.Genes, &r.Cells, &r.Seed); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RunScores returns the scored runs for a stored benchmark run, in
// insertion order.
func (s *Store) RunScores(runID string) ([]benchmark.Run, error) {
	rows, err := s.db.Query(`
	SELECT variant, pipeline, cells, ari, nmi, homogeneity, seconds
	FROM scores WHERE run_id = ? ORDER BY rowid`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scores: %w", err)
	}
	defer rows.Close()

	var out []benchmark.Run
	for rows.Next() {
		var r benchmark.Run
		if err := rows.Scan(&r.Variant, &r.Pipeline, &r.Cells,
			&r.Score.ARI, &r.Score.NMI, &r.Score.Homogeneity, &r.Seconds); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// StoreStats represents store statistics
type StoreStats struct {
	RunCount    int
	ScoreCount  int
	StoreSize   int64
	LastUpdated time.Time
}

// Stats returns statistics about the store
func (s *Store) Stats() (*StoreStats, error) {
	stats := &StoreStats{}

	queries := map[string]*int{
		"SELECT COUNT(*) FROM runs":   &stats.RunCount,
		"SELECT COUNT(*) FROM scores": &stats.ScoreCount,
	}
	for query, target := range queries {
		if err := s.db.QueryRow(query).Scan(target); err != nil {
			return nil, fmt.Errorf("failed to get count: %w", err)
		}
	}

	if fileInfo, err := os.Stat(s.path); err == nil {
		stats.StoreSize = fileInfo.Size()
		stats.LastUpdated = fileInfo.ModTime()
	}

	return stats, nil
}

// Clear removes all stored runs and scores.
func (s *Store) Clear() error {
	for _, table := range []string{"scores", "runs"} {
		if _, err := s.db.Exec(fmt.Sprintf("DELETE FROM %s", table)); err != nil {
			return fmt.Errorf("failed to clear %s table: %w", table, err)
		}
	}

	if _, err := s.db.Exec("VACUUM"); err != nil {
		return fmt.Errorf("failed to vacuum database: %w", err)
	}

	return nil
}
