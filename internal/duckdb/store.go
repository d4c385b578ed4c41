// Package duckdb stores parsed SpliceAI records in DuckDB so they can be
// looked up by variant id, gene or score.
package duckdb

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/marcboeker/go-duckdb"
)

// Store manages a DuckDB connection holding SpliceAI records.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates a DuckDB database at the given path.
// Use an empty string for an in-memory database.
func Open(path string) (*Store, error) {
	if path != "" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}

	s := &Store{db: db, path: path}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Path returns the database path, empty for in-memory stores.
func (s *Store) Path() string {
	return s.path
}

// ensureSchema creates tables if they don't exist.
func (s *Store) ensureSchema() error {
	if _, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS spliceai_scores (
		id VARCHAR,
		source_key VARCHAR,
		chrom VARCHAR,
		pos BIGINT,
		ref VARCHAR,
		alt VARCHAR,
		gene_symbol VARCHAR,
		pos_strand BOOLEAN,
		exonic BOOLEAN,
		distance BIGINT,
		ds_ag DOUBLE,
		ds_al DOUBLE,
		ds_dg DOUBLE,
		ds_dl DOUBLE,
		dp_ag BIGINT,
		dp_al BIGINT,
		dp_dg BIGINT,
		dp_dl BIGINT
	)`); err != nil {
		return err
	}

	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS load_runs (
		path VARCHAR,
		size BIGINT,
		mod_time VARCHAR,
		lines BIGINT,
		records BIGINT,
		skipped BIGINT,
		loaded_at TIMESTAMP
	)`)
	return err
}
