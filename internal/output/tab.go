// Package output provides record output formatters.
package output

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/inodb/spliceai-loader/internal/spliceai"
)

// TabWriter writes records in tab-delimited format, one row per gene score.
type TabWriter struct {
	w       *bufio.Writer
	columns []string
}

// NewTabWriter creates a new tab-delimited writer.
func NewTabWriter(w io.Writer) *TabWriter {
	return &TabWriter{
		w: bufio.NewWriter(w),
		columns: []string{
			"#ID",
			"CHROM",
			"POS",
			"REF",
			"ALT",
			"SYMBOL",
			"STRAND",
			"REGION",
			"DIST",
			"DS_AG",
			"DS_AL",
			"DS_DG",
			"DS_DL",
			"DP_AG",
			"DP_AL",
			"DP_DG",
			"DP_DL",
			"DS_MAX",
		},
	}
}

// WriteHeader writes the header line.
func (tw *TabWriter) WriteHeader() error {
	_, err := tw.w.WriteString(strings.Join(tw.columns, "\t") + "\n")
	return err
}

// Write writes a single record.
func (tw *TabWriter) Write(r *spliceai.Record) error {
	v := r.Variant
	for _, s := range v.Scores {
		strand := "-"
		if s.PosStrand {
			strand = "+"
		}
		region := "intronic"
		if s.Exonic {
			region = "exonic"
		}

		values := []string{
			r.ID,
			v.Chrom,
			strconv.FormatInt(v.Pos, 10),
			v.Ref,
			v.Alt,
			s.GeneSymbol,
			strand,
			region,
			strconv.FormatInt(s.Distance, 10),
			formatScore(s.AcceptorGain.Score),
			formatScore(s.AcceptorLoss.Score),
			formatScore(s.DonorGain.Score),
			formatScore(s.DonorLoss.Score),
			strconv.FormatInt(s.AcceptorGain.Position, 10),
			strconv.FormatInt(s.AcceptorLoss.Position, 10),
			strconv.FormatInt(s.DonorGain.Position, 10),
			strconv.FormatInt(s.DonorLoss.Position, 10),
			formatScore(s.MaxScore()),
		}

		if _, err := tw.w.WriteString(strings.Join(values, "\t") + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// Flush flushes any buffered data to the underlying writer.
func (tw *TabWriter) Flush() error {
	return tw.w.Flush()
}

// formatScore formats a delta score with 4 decimals, as SpliceAI prints them.
func formatScore(score float64) string {
	return strconv.FormatFloat(score, 'f', 4, 64)
}
