package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inodb/spliceai-loader/internal/config"
	"github.com/inodb/spliceai-loader/internal/spliceai"
)

const sampleInput = "##fileformat=VCFv4.2\n" +
	"#CHROM\tPOS\tID\tREF\tALT\tQUAL\tFILTER\tINFO\n" +
	"1\t100\tid1\tA\tG\t.\t.\tSYMBOL=TUBB8;STRAND=-;TYPE=E;DIST=-4;DS_AG=0.1391;DS_AL=0.0000;DS_DG=0.0000;DS_DL=0.0000;DP_AG=-1;DP_AL=1;DP_DG=-1;DP_DL=28\n" +
	"2\t200\tid2\tC\tT\t.\t.\tbadinfo\n" +
	"12\t25245351\t.\tC\tA\t.\t.\tSYMBOL=KRAS;STRAND=+;TYPE=I;DIST=12;DS_AG=0.0100;DS_AL=0.0200;DS_DG=0.8300;DS_DL=0.0400;DP_AG=5;DP_AL=-3;DP_DG=2;DP_DL=-40\n"

// setup isolates the test from any user config and writes the sample
// input into a fresh data folder.
func setup(t *testing.T) string {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, spliceai.DefaultFilename), []byte(sampleInput), 0644))
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newApp().rootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := root.Execute()
	return out.String(), err
}

func TestParse_JSONL(t *testing.T) {
	dir := setup(t)

	out, err := execute(t, "parse", dir)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"_id":"chr1:g.100A>G"`)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &doc))
	assert.Equal(t, "chr1:g.100A>G", doc["_id"])
	assert.Contains(t, doc, "splice_ai")
}

func TestParse_TabToFile(t *testing.T) {
	dir := setup(t)
	outFile := filepath.Join(t.TempDir(), "scores.tsv")

	_, err := execute(t, "parse", "-f", "tab", "-o", outFile, "--progress-interval", "2", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(outFile)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "#ID\t"))
	assert.True(t, strings.HasPrefix(lines[2], "chr12:g.25245351C>A\t"))
}

func TestParse_SourceKeyFlag(t *testing.T) {
	dir := setup(t)

	out, err := execute(t, "parse", "--source-key", "spliceai_raw", dir)
	require.NoError(t, err)
	assert.Contains(t, out, `"spliceai_raw":`)
	assert.NotContains(t, out, `"splice_ai":`)
}

func TestParse_MissingInput(t *testing.T) {
	setup(t)

	_, err := execute(t, "parse", filepath.Join(t.TempDir(), "empty"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Equal(t, ExitError, run([]string{"--log-level", "error", "parse", filepath.Join(t.TempDir(), "empty")}))
}

func TestParse_UnknownFormat(t *testing.T) {
	dir := setup(t)
	_, err := execute(t, "parse", "-f", "xml", dir)
	assert.Error(t, err)
}

func TestLoadAndQuery(t *testing.T) {
	dir := setup(t)
	db := filepath.Join(t.TempDir(), "spliceai.duckdb")

	_, err := execute(t, "load", "--db", db, dir)
	require.NoError(t, err)

	out, err := execute(t, "query", "--db", db, "--id", "chr1:g.100A>G")
	require.NoError(t, err)
	assert.Contains(t, out, "TUBB8")

	out, err = execute(t, "query", "--db", db, "--gene", "KRAS")
	require.NoError(t, err)
	assert.Contains(t, out, "chr12:g.25245351C>A")

	out, err = execute(t, "query", "--db", db, "--min-score", "0.5")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(strings.TrimSpace(out), "\n")+1)

	// Reloading an unchanged input is skipped and does not duplicate rows.
	_, err = execute(t, "load", "--db", db, dir)
	require.NoError(t, err)
	out, err = execute(t, "query", "--db", db, "--gene", "TUBB8")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "TUBB8"))

	_, err = execute(t, "load", "--db", db, "--force", dir)
	require.NoError(t, err)
	out, err = execute(t, "query", "--db", db, "--gene", "TUBB8")
	require.NoError(t, err)
	assert.Equal(t, 1, strings.Count(out, "TUBB8"))
}

// writeInput creates a data folder holding one SpliceAI line scored
// against gene.
func writeInput(t *testing.T, gene string) string {
	t.Helper()
	dir := t.TempDir()
	line := "1\t100\t.\tA\tG\t.\t.\tSYMBOL=" + gene +
		";STRAND=+;TYPE=E;DIST=3;DS_AG=0.5;DS_AL=0;DS_DG=0;DS_DL=0;DP_AG=1;DP_AL=2;DP_DG=3;DP_DL=4\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, spliceai.DefaultFilename), []byte(line), 0644))
	return dir
}

func TestLoad_ReloadAfterOtherInput(t *testing.T) {
	setup(t)
	db := filepath.Join(t.TempDir(), "spliceai.duckdb")
	first := writeInput(t, "AAA")
	second := writeInput(t, "BBB")

	for _, dir := range []string{first, second, first} {
		_, err := execute(t, "load", "--db", db, dir)
		require.NoError(t, err)
	}

	out, err := execute(t, "query", "--db", db, "--gene", "AAA")
	require.NoError(t, err)
	assert.Contains(t, out, `"gene_symbol":"AAA"`)

	out, err = execute(t, "query", "--db", db, "--gene", "BBB")
	require.NoError(t, err)
	assert.Empty(t, strings.TrimSpace(out))
}

func TestLoad_FailedLoadKeepsPrevious(t *testing.T) {
	setup(t)
	db := filepath.Join(t.TempDir(), "spliceai.duckdb")

	_, err := execute(t, "load", "--db", db, writeInput(t, "AAA"))
	require.NoError(t, err)

	// The input name resolves to a directory.
	broken := t.TempDir()
	require.NoError(t, os.Mkdir(filepath.Join(broken, spliceai.DefaultFilename), 0755))
	_, err = execute(t, "load", "--db", db, broken)
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// A missing input fails the same way.
	_, err = execute(t, "load", "--db", db, t.TempDir())
	assert.ErrorIs(t, err, os.ErrNotExist)

	out, err := execute(t, "query", "--db", db, "--gene", "AAA")
	require.NoError(t, err)
	assert.Contains(t, out, `"gene_symbol":"AAA"`)
}

func TestQuery_RequiresSelector(t *testing.T) {
	setup(t)
	_, err := execute(t, "query", "--db", filepath.Join(t.TempDir(), "x.duckdb"))
	assert.Error(t, err)
}

func TestConfigSetGet(t *testing.T) {
	setup(t)
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, os.WriteFile(cfgFile, []byte("log:\n  level: error\n"), 0644))

	out, err := execute(t, "--config", cfgFile, "config", "set", "source_key", "spliceai_masked")
	require.NoError(t, err)
	assert.Contains(t, out, "source_key")

	out, err = execute(t, "--config", cfgFile, "config", "get", "source_key")
	require.NoError(t, err)
	assert.Equal(t, "spliceai_masked", strings.TrimSpace(out))

	out, err = execute(t, "--config", cfgFile, "config")
	require.NoError(t, err)
	assert.Contains(t, out, "source_key: spliceai_masked")

	_, err = execute(t, "--config", cfgFile, "config", "set", "delimiter", "::")
	assert.Error(t, err)
}

func TestNewLogger(t *testing.T) {
	for _, format := range []string{"console", "json"} {
		l, err := newLogger(config.LogConfig{Level: "debug", Format: format})
		require.NoError(t, err)
		assert.NotNil(t, l)
	}

	_, err := newLogger(config.LogConfig{Level: "loud", Format: "console"})
	assert.Error(t, err)

	_, err = newLogger(config.LogConfig{Level: "info", Format: "xml"})
	assert.Error(t, err)
}
