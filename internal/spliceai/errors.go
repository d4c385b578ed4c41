package spliceai

import (
	"fmt"
	"os"
)

// ErrorKind classifies why a data line was rejected.
type ErrorKind int

const (
	KindMalformedLine ErrorKind = iota + 1 // wrong number of columns
	KindMalformedInfo                      // INFO did not decode to 12 values
	KindTypeCoercion                       // numeric field failed to parse
)

func (k ErrorKind) String() string {
	switch k {
	case KindMalformedLine:
		return "malformed line"
	case KindMalformedInfo:
		return "malformed info"
	case KindTypeCoercion:
		return "type coercion"
	}
	return "unknown"
}

// ParseError represents a rejected line with its line context.
type ParseError struct {
	Line    int
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("spliceai parse error at line %d (%s): %s", e.Line, e.Kind, e.Message)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// MissingInputError is returned when the input file does not exist.
type MissingInputError struct {
	Path string
}

func (e *MissingInputError) Error() string {
	return "cannot find input file: " + e.Path
}

// Is lets callers match with errors.Is(err, os.ErrNotExist).
func (e *MissingInputError) Is(target error) bool {
	return target == os.ErrNotExist
}
