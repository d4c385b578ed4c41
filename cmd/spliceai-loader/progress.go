package main

import (
	"io"

	"gopkg.in/cheggaaa/pb.v1"

	"github.com/inodb/spliceai-loader/internal/spliceai"
)

// barReporter draws parse progress as a terminal bar instead of logging
// one line per record. Skips and the summary go to the wrapped reporter.
type barReporter struct {
	next     spliceai.Reporter
	out      io.Writer
	bar      *pb.ProgressBar
	finished bool
}

func newBarReporter(next spliceai.Reporter, out io.Writer) *barReporter {
	return &barReporter{next: next, out: out}
}

func (b *barReporter) Progress(p spliceai.Progress) {
	if b.finished {
		return
	}
	if b.bar == nil {
		b.bar = pb.New(p.Total)
		b.bar.Output = b.out
		b.bar.ShowTimeLeft = p.Total > 0
		b.bar.ShowPercent = p.Total > 0
		b.bar.ShowBar = p.Total > 0
		b.bar.Start()
	}
	b.bar.Set(p.Line)
}

func (b *barReporter) Skip(err *spliceai.ParseError, raw string) {
	b.next.Skip(err, raw)
}

func (b *barReporter) Summary(s spliceai.Summary) {
	b.Finish()
	b.next.Summary(s)
}

// Finish stops the bar. It is safe to call more than once.
func (b *barReporter) Finish() {
	if b.finished {
		return
	}
	b.finished = true
	if b.bar != nil {
		b.bar.Finish()
	}
}
