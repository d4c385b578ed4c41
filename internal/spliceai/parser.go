package spliceai

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	numColumns    = 8
	numInfoFields = 12
)

// infoKeys names the INFO values in the order they appear. Keys in the
// file are not matched; the order is positional.
var infoKeys = [numInfoFields]string{
	"SYMBOL", "STRAND", "TYPE", "DIST",
	"DS_AG", "DS_AL", "DS_DG", "DS_DL",
	"DP_AG", "DP_AL", "DP_DG", "DP_DL",
}

// Options configures a Parser.
type Options struct {
	SourceKey        string   // key the variant is nested under, default DefaultSourceKey
	Delimiter        string   // column separator, default tab
	CountLines       bool     // pre-scan the file so progress can report ratio and ETA
	ProgressInterval int      // report progress every N lines, default every line
	Reporter         Reporter // receives progress and diagnostics, default no-op
}

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() Options {
	return Options{
		SourceKey:        DefaultSourceKey,
		Delimiter:        "\t",
		CountLines:       true,
		ProgressInterval: 1,
		Reporter:         NopReporter(),
	}
}

func (o *Options) setDefaults() {
	if o.SourceKey == "" {
		o.SourceKey = DefaultSourceKey
	}
	if o.Delimiter == "" {
		o.Delimiter = "\t"
	}
	if o.ProgressInterval <= 0 {
		o.ProgressInterval = 1
	}
	if o.Reporter == nil {
		o.Reporter = NopReporter()
	}
}

// Parser reads SpliceAI records from a VCF file, one at a time.
type Parser struct {
	reader     *bufio.Reader
	file       *os.File
	opts       Options
	lineNumber int
	total      int
	start      time.Time
	records    int
	skipped    []string
	eof        bool
	finished   bool
}

// CheckInput verifies that path names an existing file. A path that does
// not exist or is a directory yields *MissingInputError; any other stat
// failure is returned wrapped.
func CheckInput(path string) error {
	info, err := os.Stat(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return &MissingInputError{Path: path}
	case err != nil:
		return fmt.Errorf("stat spliceai file: %w", err)
	case info.IsDir():
		return &MissingInputError{Path: path}
	}
	return nil
}

// Open checks that path is an existing file and returns a parser for it.
// A missing input is reported as *MissingInputError before anything is read.
func Open(path string, opts Options) (*Parser, error) {
	if err := CheckInput(path); err != nil {
		return nil, err
	}

	opts.setDefaults()

	var err error
	total := 0
	if opts.CountLines {
		total, err = CountLines(path)
		if err != nil {
			return nil, err
		}
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open spliceai file: %w", err)
	}

	p := NewParserFromReader(file, total, opts)
	p.file = file
	return p, nil
}

// NewParserFromReader creates a parser from an io.Reader. total is the
// number of lines expected, or 0 when unknown.
func NewParserFromReader(r io.Reader, total int, opts Options) *Parser {
	opts.setDefaults()
	return &Parser{
		reader: bufio.NewReader(r),
		opts:   opts,
		total:  total,
		start:  time.Now(),
	}
}

// Next returns the next valid record, skipping comments, blank lines and
// rejected lines. Returns nil, nil when there are no more records.
func (p *Parser) Next() (*Record, error) {
	for !p.eof {
		line, err := p.reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				return nil, fmt.Errorf("read spliceai line: %w", err)
			}
			p.eof = true
			if line == "" {
				break
			}
		}
		p.lineNumber++
		p.reportProgress()

		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}

		rec, perr := p.parseLine(trimmed)
		if perr != nil {
			p.skipped = append(p.skipped, line)
			p.opts.Reporter.Skip(perr, line)
			continue
		}
		p.records++
		return rec, nil
	}

	p.finish()
	return nil, nil
}

// All returns the remaining records as a single-use sequence. The
// underlying file is closed when iteration stops, including on break.
func (p *Parser) All() iter.Seq2[*Record, error] {
	return func(yield func(*Record, error) bool) {
		defer p.Close()
		for {
			rec, err := p.Next()
			if err != nil {
				yield(nil, err)
				return
			}
			if rec == nil {
				return
			}
			if !yield(rec, nil) {
				return
			}
		}
	}
}

func (p *Parser) reportProgress() {
	if p.lineNumber%p.opts.ProgressInterval != 0 && p.lineNumber != 1 {
		return
	}
	pr := Progress{Line: p.lineNumber, Total: p.total}
	if p.total > 0 {
		pr.Ratio = float64(p.lineNumber) / float64(p.total)
		if pr.Ratio < 1 {
			elapsed := time.Since(p.start)
			pr.ETA = time.Duration(float64(elapsed) * (1 - pr.Ratio) / pr.Ratio)
		}
	}
	p.opts.Reporter.Progress(pr)
}

func (p *Parser) finish() {
	if p.finished {
		return
	}
	p.finished = true
	total := p.total
	if total == 0 {
		total = p.lineNumber
	}
	p.opts.Reporter.Summary(Summary{
		Total:   total,
		Records: p.records,
		Skipped: p.skipped,
	})
}

// parseLine converts a trimmed, non-comment line into a Record.
func (p *Parser) parseLine(line string) (*Record, *ParseError) {
	fields := strings.Split(line, p.opts.Delimiter)
	if len(fields) != numColumns {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Kind:    KindMalformedLine,
			Message: fmt.Sprintf("expected %d columns, found %d", numColumns, len(fields)),
		}
	}

	// fields[2] (ID), [5] (QUAL) and [6] (FILTER) are not carried over.
	chrom, posField, ref, alt, info := fields[0], fields[1], fields[3], fields[4], fields[7]

	values, err := decodeInfo(info)
	if err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Kind:    KindMalformedInfo,
			Message: err.Error(),
			Err:     err,
		}
	}

	var c coercer
	pos := c.parseInt("POS", posField)
	score := Score{
		GeneSymbol: values[0],
		PosStrand:  values[1] == "+",
		Exonic:     values[2] == "E",
		Distance:   c.parseInt(infoKeys[3], values[3]),
		AcceptorGain: Delta{
			Score:    c.parseFloat(infoKeys[4], values[4]),
			Position: c.parseInt(infoKeys[8], values[8]),
		},
		AcceptorLoss: Delta{
			Score:    c.parseFloat(infoKeys[5], values[5]),
			Position: c.parseInt(infoKeys[9], values[9]),
		},
		DonorGain: Delta{
			Score:    c.parseFloat(infoKeys[6], values[6]),
			Position: c.parseInt(infoKeys[10], values[10]),
		},
		DonorLoss: Delta{
			Score:    c.parseFloat(infoKeys[7], values[7]),
			Position: c.parseInt(infoKeys[11], values[11]),
		},
	}
	if c.err != nil {
		return nil, &ParseError{
			Line:    p.lineNumber,
			Kind:    KindTypeCoercion,
			Message: c.err.Error(),
			Err:     c.err,
		}
	}

	return &Record{
		ID:        FormatID(chrom, posField, ref, alt),
		SourceKey: p.opts.SourceKey,
		Variant: Variant{
			Chrom:  chrom,
			Pos:    pos,
			Ref:    ref,
			Alt:    alt,
			Scores: []Score{score},
		},
	}, nil
}

// decodeInfo splits the INFO column into its 12 positional values.
func decodeInfo(info string) ([numInfoFields]string, error) {
	var values [numInfoFields]string

	pieces := strings.Split(strings.TrimSpace(info), ";")
	for i, piece := range pieces {
		parts := strings.Split(piece, "=")
		if len(parts) < 2 {
			return values, fmt.Errorf("info field %d %q has no value", i+1, piece)
		}
		if i < numInfoFields {
			values[i] = parts[1]
		}
	}
	if len(pieces) != numInfoFields {
		return values, fmt.Errorf("expected %d info fields, found %d", numInfoFields, len(pieces))
	}
	return values, nil
}

// coercer parses numeric fields, keeping the first failure.
type coercer struct {
	err error
}

func (c *coercer) parseInt(name, s string) int64 {
	if c.err != nil {
		return 0
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		c.err = fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return n
}

func (c *coercer) parseFloat(name, s string) float64 {
	if c.err != nil {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		c.err = fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return f
}

// Skipped returns the raw lines rejected so far, in file order.
func (p *Parser) Skipped() []string {
	return p.skipped
}

// LineNumber returns the current line number being processed.
func (p *Parser) LineNumber() int {
	return p.lineNumber
}

// Total returns the pre-counted number of lines, or 0 if not counted.
func (p *Parser) Total() int {
	return p.total
}

// Records returns how many records have been produced so far.
func (p *Parser) Records() int {
	return p.records
}

// Close closes the underlying file. It is safe to call more than once.
func (p *Parser) Close() error {
	if p.file == nil {
		return nil
	}
	err := p.file.Close()
	p.file = nil
	return err
}
