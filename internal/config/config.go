// Package config holds the loader settings, unmarshalled from Viper
// (config file, SPLICEAI_* environment and command line flags).
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/inodb/spliceai-loader/internal/duckdb"
	"github.com/inodb/spliceai-loader/internal/spliceai"
)

// Config keys.
const (
	KeySourceKey        = "source_key"
	KeyDelimiter        = "delimiter"
	KeyFilename         = "filename"
	KeyCountLines       = "count_lines"
	KeyProgressInterval = "progress_interval"
	KeyDB               = "db"
	KeyBatchSize        = "batch_size"
	KeyLogLevel         = "log.level"
	KeyLogFormat        = "log.format"
)

// EnvPrefix is prepended to environment variable names, e.g. SPLICEAI_DB.
const EnvPrefix = "SPLICEAI"

// LogConfig selects the logger level and encoding.
type LogConfig struct {
	// debug, info, warn or error
	Level string `mapstructure:"level"`

	// console or json
	Format string `mapstructure:"format"`
}

// Config is the root-level settings struct.
type Config struct {
	// key the variant payload is nested under in emitted documents
	SourceKey string `mapstructure:"source_key"`

	// column separator of the input file
	Delimiter string `mapstructure:"delimiter"`

	// name of the SpliceAI file inside the data folder
	Filename string `mapstructure:"filename"`

	// pre-scan the input so progress reports a ratio and ETA
	CountLines bool `mapstructure:"count_lines"`

	// report progress every N lines
	ProgressInterval int `mapstructure:"progress_interval"`

	// path to the DuckDB database used by load and query
	DB string `mapstructure:"db"`

	// records buffered per DuckDB append
	BatchSize int `mapstructure:"batch_size"`

	Log LogConfig `mapstructure:"log"`
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeySourceKey, spliceai.DefaultSourceKey)
	v.SetDefault(KeyDelimiter, `\t`)
	v.SetDefault(KeyFilename, spliceai.DefaultFilename)
	v.SetDefault(KeyCountLines, true)
	v.SetDefault(KeyProgressInterval, 1)
	v.SetDefault(KeyDB, defaultDBPath())
	v.SetDefault(KeyBatchSize, duckdb.DefaultBatchSize)
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFormat, "console")
}

// Load decodes the settings held by v and validates them.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	c.Delimiter = unescape(c.Delimiter)
	if len([]rune(c.Delimiter)) != 1 {
		return Config{}, fmt.Errorf("delimiter must be a single character, got %q", c.Delimiter)
	}
	if c.SourceKey == "" {
		return Config{}, fmt.Errorf("%s must not be empty", KeySourceKey)
	}
	if c.ProgressInterval < 1 {
		return Config{}, fmt.Errorf("%s must be at least 1, got %d", KeyProgressInterval, c.ProgressInterval)
	}
	return c, nil
}

// ParserOptions converts the settings into parser options. The reporter
// is left for the caller to set.
func (c Config) ParserOptions() spliceai.Options {
	return spliceai.Options{
		SourceKey:        c.SourceKey,
		Delimiter:        c.Delimiter,
		CountLines:       c.CountLines,
		ProgressInterval: c.ProgressInterval,
	}
}

// DefaultConfigFile returns ~/.spliceai-loader.yaml.
func DefaultConfigFile() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".spliceai-loader.yaml"), nil
}

func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "spliceai.duckdb"
	}
	return filepath.Join(home, ".spliceai-loader", "spliceai.duckdb")
}

// unescape turns the escape sequences people write in YAML or shell
// (`\t`, `\s`) into the character they stand for.
func unescape(s string) string {
	switch strings.ToLower(s) {
	case `\t`, "tab":
		return "\t"
	case `\s`, "space":
		return " "
	}
	return s
}
