package duckdb

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"fmt"

	goduckdb "github.com/marcboeker/go-duckdb"

	"github.com/inodb/spliceai-loader/internal/spliceai"
)

// DefaultBatchSize is the number of records buffered before an append.
const DefaultBatchSize = 10000

const selectColumns = `id, source_key, chrom, pos, ref, alt,
	gene_symbol, pos_strand, exonic, distance,
	ds_ag, ds_al, ds_dg, ds_dl,
	dp_ag, dp_al, dp_dg, dp_dl`

// Writer buffers records and appends them to DuckDB in batches.
// It implements spliceai.RecordWriter.
type Writer struct {
	store   *Store
	batch   int
	pending []*spliceai.Record
	written int

	// conn is set when the writer replaces the stored records inside a
	// transaction opened by BeginReplace.
	conn *sql.Conn
}

// NewWriter creates a batching writer. A batch of 0 uses DefaultBatchSize.
func (s *Store) NewWriter(batch int) *Writer {
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &Writer{
		store:   s,
		batch:   batch,
		pending: make([]*spliceai.Record, 0, batch),
	}
}

// WriteHeader is a no-op; the schema is created by Open.
func (w *Writer) WriteHeader() error { return nil }

// Write buffers a record, appending the batch once it is full.
func (w *Writer) Write(r *spliceai.Record) error {
	w.pending = append(w.pending, r)
	if len(w.pending) >= w.batch {
		return w.Flush()
	}
	return nil
}

// Flush appends all buffered records.
func (w *Writer) Flush() error {
	if len(w.pending) == 0 {
		return nil
	}
	var err error
	if w.conn != nil {
		err = appendRecords(w.conn, w.pending)
	} else {
		err = w.store.WriteRecords(w.pending)
	}
	if err != nil {
		return err
	}
	w.written += len(w.pending)
	w.pending = w.pending[:0]
	return nil
}

// Written returns the number of records appended so far.
func (w *Writer) Written() int {
	return w.written
}

// BeginReplace starts a transaction that deletes every stored record and
// returns a writer appending inside it. Other connections keep seeing the
// previous records until Commit. Rollback discards the new rows and keeps
// the old ones.
func (s *Store) BeginReplace(batch int) (*Writer, error) {
	ctx := context.Background()
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("get connection: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "BEGIN TRANSACTION"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("begin replace: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "DELETE FROM spliceai_scores"); err != nil {
		conn.ExecContext(ctx, "ROLLBACK")
		conn.Close()
		return nil, fmt.Errorf("clear records: %w", err)
	}

	w := s.NewWriter(batch)
	w.conn = conn
	return w, nil
}

// Commit flushes pending records, records the load run for fp and commits
// the replacement. It is only valid on a writer from BeginReplace.
func (w *Writer) Commit(fp FileFingerprint, stats spliceai.Stats) error {
	if w.conn == nil {
		return fmt.Errorf("commit: writer has no open transaction")
	}
	if err := w.Flush(); err != nil {
		return err
	}

	ctx := context.Background()
	if err := recordLoad(ctx, w.conn, fp, stats); err != nil {
		return err
	}
	if _, err := w.conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return w.release()
}

// Rollback abandons the replacement. It is a no-op after Commit.
func (w *Writer) Rollback() error {
	if w.conn == nil {
		return nil
	}
	w.pending = w.pending[:0]
	if _, err := w.conn.ExecContext(context.Background(), "ROLLBACK"); err != nil {
		w.release()
		return fmt.Errorf("rollback replace: %w", err)
	}
	return w.release()
}

func (w *Writer) release() error {
	err := w.conn.Close()
	w.conn = nil
	return err
}

// WriteRecords batch-inserts records into DuckDB using the Appender API.
// Each score of a record becomes one row.
func (s *Store) WriteRecords(records []*spliceai.Record) error {
	if len(records) == 0 {
		return nil
	}

	conn, err := s.db.Conn(context.Background())
	if err != nil {
		return fmt.Errorf("get connection: %w", err)
	}
	defer conn.Close()

	return appendRecords(conn, records)
}

// appendRecords appends records on conn, inside whatever transaction is
// open on it.
func appendRecords(conn *sql.Conn, records []*spliceai.Record) error {
	var appender *goduckdb.Appender
	if err := conn.Raw(func(driverConn any) error {
		var err error
		appender, err = goduckdb.NewAppenderFromConn(driverConn.(driver.Conn), "", "spliceai_scores")
		return err
	}); err != nil {
		return fmt.Errorf("create appender: %w", err)
	}
	defer appender.Close()

	for _, r := range records {
		v := r.Variant
		for _, sc := range v.Scores {
			if err := appender.AppendRow(
				r.ID, r.SourceKey, v.Chrom, v.Pos, v.Ref, v.Alt,
				sc.GeneSymbol, sc.PosStrand, sc.Exonic, sc.Distance,
				sc.AcceptorGain.Score, sc.AcceptorLoss.Score, sc.DonorGain.Score, sc.DonorLoss.Score,
				sc.AcceptorGain.Position, sc.AcceptorLoss.Position, sc.DonorGain.Position, sc.DonorLoss.Position,
			); err != nil {
				return fmt.Errorf("append record %s: %w", r.ID, err)
			}
		}
	}

	return appender.Flush()
}

// Count returns the number of stored score rows.
func (s *Store) Count() (int64, error) {
	var n int64
	if err := s.db.QueryRow("SELECT COUNT(*) FROM spliceai_scores").Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

// Clear removes all stored records.
func (s *Store) Clear() error {
	_, err := s.db.Exec("DELETE FROM spliceai_scores")
	return err
}

// Lookup returns the records stored under a variant id, e.g. "chr1:g.100A>G".
func (s *Store) Lookup(id string) ([]*spliceai.Record, error) {
	rows, err := s.db.Query(`SELECT `+selectColumns+`
		FROM spliceai_scores WHERE id=? ORDER BY gene_symbol`, id)
	if err != nil {
		return nil, fmt.Errorf("query record: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// SearchByGene returns all records scored against a gene symbol.
func (s *Store) SearchByGene(symbol string) ([]*spliceai.Record, error) {
	rows, err := s.db.Query(`SELECT `+selectColumns+`
		FROM spliceai_scores WHERE gene_symbol=? ORDER BY chrom, pos, ref, alt`, symbol)
	if err != nil {
		return nil, fmt.Errorf("query by gene: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// SearchByScore returns records where any of the four delta scores is at
// least minScore.
func (s *Store) SearchByScore(minScore float64) ([]*spliceai.Record, error) {
	rows, err := s.db.Query(`SELECT `+selectColumns+`
		FROM spliceai_scores
		WHERE greatest(ds_ag, ds_al, ds_dg, ds_dl) >= ?
		ORDER BY chrom, pos, ref, alt`, minScore)
	if err != nil {
		return nil, fmt.Errorf("query by score: %w", err)
	}
	defer rows.Close()

	return scanRecords(rows)
}

// scanRecords scans rows into records holding a single score each.
func scanRecords(rows *sql.Rows) ([]*spliceai.Record, error) {
	var records []*spliceai.Record
	for rows.Next() {
		var (
			r  spliceai.Record
			sc spliceai.Score
		)
		if err := rows.Scan(
			&r.ID, &r.SourceKey, &r.Variant.Chrom, &r.Variant.Pos, &r.Variant.Ref, &r.Variant.Alt,
			&sc.GeneSymbol, &sc.PosStrand, &sc.Exonic, &sc.Distance,
			&sc.AcceptorGain.Score, &sc.AcceptorLoss.Score, &sc.DonorGain.Score, &sc.DonorLoss.Score,
			&sc.AcceptorGain.Position, &sc.AcceptorLoss.Position, &sc.DonorGain.Position, &sc.DonorLoss.Position,
		); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		r.Variant.Scores = []spliceai.Score{sc}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}
