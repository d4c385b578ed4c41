package spliceai

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountLines(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    int
	}{
		{"empty", "", 0},
		{"single line with newline", "a\n", 1},
		{"single line without newline", "a", 1},
		{"three lines", "a\nb\nc\n", 3},
		{"trailing partial line", "a\nb\nc", 3},
		{"blank lines count", "\n\n\n", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "in.vcf")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0644))

			got, err := CountLines(path)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCountLines_LargerThanBuffer(t *testing.T) {
	content := strings.Repeat(strings.Repeat("x", 999)+"\n", 200)
	got, err := countLines(strings.NewReader(content))
	require.NoError(t, err)
	assert.Equal(t, 200, got)
}

func TestCountLines_MissingFile(t *testing.T) {
	_, err := CountLines(filepath.Join(t.TempDir(), "missing.vcf"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestCountLines_SampleFile(t *testing.T) {
	got, err := CountLines(findTestFile(t, "sample.vcf"))
	require.NoError(t, err)
	assert.Equal(t, 9, got)
}
