// Package spliceai parses SpliceAI-annotated VCF files into normalized records.
package spliceai

import (
	"github.com/goccy/go-json"
)

// DefaultSourceKey namespaces the variant payload in emitted documents.
const DefaultSourceKey = "splice_ai"

// Record is a single normalized SpliceAI entry, ready for indexing.
type Record struct {
	ID        string  // Synthesized identifier, e.g. "chr1:g.100A>G"
	SourceKey string  // Key the variant payload is nested under
	Variant   Variant // Variant with its splice-effect scores
}

// Variant holds the genomic coordinates of a record and its scores.
type Variant struct {
	Chrom  string  `json:"chrom"`
	Pos    int64   `json:"pos"`
	Ref    string  `json:"ref"`
	Alt    string  `json:"alt"`
	Scores []Score `json:"scores"`
}

// Score is the SpliceAI prediction for one gene overlapping a variant.
type Score struct {
	GeneSymbol   string `json:"gene_symbol"`
	PosStrand    bool   `json:"pos_strand"`
	Exonic       bool   `json:"exonic"`
	Distance     int64  `json:"distance"`
	AcceptorGain Delta  `json:"acceptor_gain"`
	AcceptorLoss Delta  `json:"acceptor_loss"`
	DonorGain    Delta  `json:"donor_gain"`
	DonorLoss    Delta  `json:"donor_loss"`
}

// Delta pairs a delta score with its position relative to the variant.
type Delta struct {
	Score    float64 `json:"score"`
	Position int64   `json:"position"`
}

// MaxScore returns the largest of the four delta scores.
func (s Score) MaxScore() float64 {
	m := s.AcceptorGain.Score
	for _, d := range []Delta{s.AcceptorLoss, s.DonorGain, s.DonorLoss} {
		if d.Score > m {
			m = d.Score
		}
	}
	return m
}

// FormatID builds the canonical identifier chr{chrom}:g.{pos}{ref}>{alt}.
func FormatID(chrom, pos, ref, alt string) string {
	return "chr" + chrom + ":g." + pos + ref + ">" + alt
}

// MarshalJSON renders the record as a document with the variant nested
// under its source key: {"_id": "...", "splice_ai": {...}}.
func (r *Record) MarshalJSON() ([]byte, error) {
	key := r.SourceKey
	if key == "" {
		key = DefaultSourceKey
	}
	return json.MarshalNoEscape(map[string]any{
		"_id": r.ID,
		key:   r.Variant,
	})
}
