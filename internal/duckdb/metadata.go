package duckdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/inodb/spliceai-loader/internal/spliceai"
)

// FileFingerprint holds stat-based identity for a file.
type FileFingerprint struct {
	Path    string
	Size    int64
	ModTime time.Time
}

// StatFile creates a FileFingerprint from an on-disk file.
func StatFile(path string) (FileFingerprint, error) {
	info, err := os.Stat(path)
	if err != nil {
		return FileFingerprint{}, err
	}
	return FileFingerprint{
		Path:    path,
		Size:    info.Size(),
		ModTime: info.ModTime(),
	}, nil
}

func (fp FileFingerprint) modTime() string {
	return fp.ModTime.UTC().Format(time.RFC3339Nano)
}

// LoadRun describes one completed load of an input file.
type LoadRun struct {
	FileFingerprint
	Lines    int64
	Records  int64
	Skipped  int64
	LoadedAt time.Time
}

// execer is satisfied by *sql.DB and *sql.Conn.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// RecordLoad stores the outcome of loading the file identified by fp.
func (s *Store) RecordLoad(fp FileFingerprint, stats spliceai.Stats) error {
	return recordLoad(context.Background(), s.db, fp, stats)
}

func recordLoad(ctx context.Context, db execer, fp FileFingerprint, stats spliceai.Stats) error {
	_, err := db.ExecContext(ctx, `INSERT INTO load_runs VALUES (?, ?, ?, ?, ?, ?, ?)`,
		fp.Path, fp.Size, fp.modTime(),
		int64(stats.Lines), int64(stats.Records), int64(stats.Skipped),
		time.Now().UTC())
	if err != nil {
		return fmt.Errorf("record load run: %w", err)
	}
	return nil
}

const loadRunColumns = `path, size, mod_time, lines, records, skipped, loaded_at`

// LastLoad returns the most recent load of path. ok is false when the
// file was never loaded.
func (s *Store) LastLoad(path string) (LoadRun, bool, error) {
	return scanLoadRun(s.db.QueryRow(`SELECT `+loadRunColumns+`
		FROM load_runs WHERE path=? ORDER BY loaded_at DESC LIMIT 1`, path))
}

// LatestLoad returns the most recent load of any file, which is the one
// whose records are currently stored.
func (s *Store) LatestLoad() (LoadRun, bool, error) {
	return scanLoadRun(s.db.QueryRow(`SELECT `+loadRunColumns+`
		FROM load_runs ORDER BY loaded_at DESC LIMIT 1`))
}

func scanLoadRun(row *sql.Row) (run LoadRun, ok bool, err error) {
	var modTime string
	err = row.Scan(&run.Path, &run.Size, &modTime, &run.Lines, &run.Records, &run.Skipped, &run.LoadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return LoadRun{}, false, nil
	}
	if err != nil {
		return LoadRun{}, false, fmt.Errorf("query load run: %w", err)
	}
	run.ModTime, err = time.Parse(time.RFC3339Nano, modTime)
	if err != nil {
		return LoadRun{}, false, fmt.Errorf("parse load run mod time: %w", err)
	}
	return run, true, nil
}

// Loaded reports whether the stored records come from the file identified
// by fp and the file has not changed since. Loading another file in
// between replaces the records, so only the latest load counts.
func (s *Store) Loaded(fp FileFingerprint) bool {
	run, ok, err := s.LatestLoad()
	if err != nil || !ok {
		return false
	}
	return run.Path == fp.Path && run.Size == fp.Size && run.ModTime.Equal(fp.ModTime)
}
