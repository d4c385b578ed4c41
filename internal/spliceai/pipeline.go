package spliceai

import "fmt"

// RecordWriter defines the interface for consumers of parsed records.
type RecordWriter interface {
	WriteHeader() error
	Write(r *Record) error
	Flush() error
}

// Stats summarizes a completed run.
type Stats struct {
	Lines   int
	Records int
	Skipped int
}

// WriteAll pulls every record from the parser and hands it to the writer.
// The parser is closed when WriteAll returns.
func WriteAll(p *Parser, w RecordWriter) (Stats, error) {
	defer p.Close()

	if err := w.WriteHeader(); err != nil {
		return Stats{}, fmt.Errorf("write header: %w", err)
	}

	for rec, err := range p.All() {
		if err != nil {
			return p.stats(), err
		}
		if err := w.Write(rec); err != nil {
			return p.stats(), fmt.Errorf("write record %s: %w", rec.ID, err)
		}
	}

	if err := w.Flush(); err != nil {
		return p.stats(), fmt.Errorf("flush records: %w", err)
	}
	return p.stats(), nil
}

func (p *Parser) stats() Stats {
	return Stats{
		Lines:   p.lineNumber,
		Records: p.records,
		Skipped: len(p.skipped),
	}
}
