package spliceai

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type memWriter struct {
	header  bool
	records []*Record
	flushed bool
	failOn  string
}

func (m *memWriter) WriteHeader() error {
	m.header = true
	return nil
}

func (m *memWriter) Write(r *Record) error {
	if r.ID == m.failOn {
		return errors.New("boom")
	}
	m.records = append(m.records, r)
	return nil
}

func (m *memWriter) Flush() error {
	m.flushed = true
	return nil
}

func TestWriteAll(t *testing.T) {
	p, err := Open(findTestFile(t, "sample.vcf"), DefaultOptions())
	require.NoError(t, err)

	w := &memWriter{}
	stats, err := WriteAll(p, w)
	require.NoError(t, err)

	assert.True(t, w.header)
	assert.True(t, w.flushed)
	assert.Len(t, w.records, 2)
	assert.Equal(t, Stats{Lines: 9, Records: 2, Skipped: 3}, stats)
}

func TestWriteAll_WriterError(t *testing.T) {
	input := strings.Repeat(tubb8Line+"\n", 3)
	p := newTestParser(input, nil)

	w := &memWriter{failOn: "chr1:g.100A>G"}
	stats, err := WriteAll(p, w)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "chr1:g.100A>G")
	assert.False(t, w.flushed)
	assert.Equal(t, 1, stats.Records)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, DefaultFilename), []byte(tubb8Line+"\n"), 0644))

	p, err := Load(dir, "", DefaultOptions(), nil)
	require.NoError(t, err)
	defer p.Close()
	assert.Equal(t, 1, p.Total())
	assert.Len(t, collect(t, p), 1)
}

func TestLoad_MissingInput(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	dir := t.TempDir()

	p, err := Load(dir, "scores.vcf", DefaultOptions(), zap.New(core))
	require.Error(t, err)
	assert.Nil(t, p)

	var mi *MissingInputError
	require.ErrorAs(t, err, &mi)
	assert.Equal(t, filepath.Join(dir, "scores.vcf"), mi.Path)
	assert.Equal(t, 1, logs.FilterLevelExact(zapcore.ErrorLevel).Len())
}
