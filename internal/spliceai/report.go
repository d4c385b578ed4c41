package spliceai

import (
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Progress describes how far a parse run has advanced.
type Progress struct {
	Line  int           // 1-based index of the line about to be classified
	Total int           // total lines in the input, 0 when not counted
	Ratio float64       // Line / Total, 0 when Total is unknown
	ETA   time.Duration // linear estimate of the time remaining
}

// Summary is reported once, after the last line has been read.
type Summary struct {
	Total   int      // lines in the input (counted, or read when not counted)
	Records int      // records produced
	Skipped []string // rejected raw lines, in file order
}

// Reporter receives progress and diagnostics from a Parser.
type Reporter interface {
	Progress(p Progress)
	Skip(err *ParseError, raw string)
	Summary(s Summary)
}

type nopReporter struct{}

func (nopReporter) Progress(Progress)        {}
func (nopReporter) Skip(*ParseError, string) {}
func (nopReporter) Summary(Summary)          {}

// NopReporter returns a Reporter that discards everything.
func NopReporter() Reporter { return nopReporter{} }

// LogReporter writes parser diagnostics to a zap logger.
type LogReporter struct {
	logger *zap.Logger
}

// NewLogReporter creates a Reporter backed by the given logger.
func NewLogReporter(l *zap.Logger) *LogReporter {
	if l == nil {
		l = zap.NewNop()
	}
	return &LogReporter{logger: l}
}

// Progress logs the running line index, completion and estimated time left.
func (r *LogReporter) Progress(p Progress) {
	if p.Total <= 0 {
		r.logger.Info("reading line", zap.Int("line", p.Line))
		return
	}
	r.logger.Info("reading line",
		zap.Int("line", p.Line),
		zap.Int("total", p.Total),
		zap.String("progress", formatPercent(p.Ratio)),
		zap.Duration("eta", p.ETA.Round(time.Second)))
}

// Skip logs a rejected line together with the reason.
func (r *LogReporter) Skip(err *ParseError, raw string) {
	r.logger.Error("failed to parse line",
		zap.Int("line", err.Line),
		zap.String("kind", err.Kind.String()),
		zap.String("content", strings.TrimRight(raw, " \t\r\n")),
		zap.Error(err))
}

// Summary logs the skip count followed by every skipped line.
func (r *LogReporter) Summary(s Summary) {
	r.logger.Info("parse completed",
		zap.Int("records", s.Records),
		zap.Int("skipped", len(s.Skipped)),
		zap.Int("total", s.Total))
	for _, line := range s.Skipped {
		r.logger.Info("skipped line", zap.String("content", strings.TrimRight(line, " \t\r\n")))
	}
}

func formatPercent(ratio float64) string {
	return strconv.FormatFloat(ratio*100, 'f', 2, 64) + "%"
}
