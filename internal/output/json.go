package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/inodb/spliceai-loader/internal/spliceai"
)

// JSONWriter writes one JSON document per line, in the shape consumed by
// document stores: {"_id": ..., "<source_key>": {...}}.
type JSONWriter struct {
	w *bufio.Writer
}

// NewJSONWriter creates a new JSON lines writer.
func NewJSONWriter(w io.Writer) *JSONWriter {
	return &JSONWriter{w: bufio.NewWriter(w)}
}

// WriteHeader is a no-op; JSON lines have no header.
func (jw *JSONWriter) WriteHeader() error { return nil }

// Write encodes a single record followed by a newline. The document bytes
// are written as produced so ids keep a literal '>' rather than \u003e.
func (jw *JSONWriter) Write(r *spliceai.Record) error {
	data, err := r.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encode record %s: %w", r.ID, err)
	}
	jw.w.Write(data)
	return jw.w.WriteByte('\n')
}

// Flush flushes any buffered data to the underlying writer.
func (jw *JSONWriter) Flush() error {
	return jw.w.Flush()
}
