// Package main provides the spliceai-loader command-line tool.
package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/inodb/spliceai-loader/internal/config"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitError   = 1
)

// Version information (set at build time)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	a := newApp()
	root := a.rootCmd()
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "Hint: Check the data folder and the configured filename\n")
		}
		return ExitError
	}
	return ExitSuccess
}

// app carries the state shared by all subcommands.
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger
}

func newApp() *app {
	v := viper.New()
	config.SetDefaults(v)
	return &app{v: v, logger: zap.NewNop()}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "spliceai-loader",
		Short: "Parse SpliceAI VCF annotations into normalized records",
		Long: `spliceai-loader reads a SpliceAI-annotated VCF file and turns every data line
into a normalized record keyed by chr{chrom}:g.{pos}{ref}>{alt}. Records can be
written as JSON documents, as a tab-delimited table, or loaded into DuckDB.`,
		Version:       fmt.Sprintf("%s (%s) built %s", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.logger.Sync()
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgFile, "config", "", "Config file (default: ~/.spliceai-loader.yaml)")
	pf.String("log-level", "info", "Log level: debug, info, warn, error")
	pf.String("log-format", "console", "Log format: console, json")
	pf.String("source-key", "splice_ai", "Key the variant payload is nested under")
	pf.String("delimiter", `\t`, "Column delimiter of the input file")
	pf.String("filename", "", "Name of the SpliceAI file inside the data folder")
	pf.Bool("count-lines", true, "Pre-scan the input to report progress ratio and ETA")
	pf.Int("progress-interval", 1, "Report progress every N lines")
	pf.String("db", "", "DuckDB database path (default: ~/.spliceai-loader/spliceai.duckdb)")

	for key, flag := range map[string]string{
		config.KeyLogLevel:         "log-level",
		config.KeyLogFormat:        "log-format",
		config.KeySourceKey:        "source-key",
		config.KeyDelimiter:        "delimiter",
		config.KeyFilename:         "filename",
		config.KeyCountLines:       "count-lines",
		config.KeyProgressInterval: "progress-interval",
		config.KeyDB:               "db",
	} {
		a.v.BindPFlag(key, pf.Lookup(flag))
	}

	root.AddCommand(a.newParseCmd())
	root.AddCommand(a.newLoadCmd())
	root.AddCommand(a.newQueryCmd())
	root.AddCommand(a.newConfigCmd())

	return root
}

// init reads the config file and environment, then builds the logger.
func (a *app) init() error {
	a.v.SetEnvPrefix(config.EnvPrefix)
	a.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	a.v.AutomaticEnv()

	cfgFile := a.cfgFile
	if cfgFile == "" {
		def, err := config.DefaultConfigFile()
		if err == nil {
			if _, statErr := os.Stat(def); statErr == nil {
				cfgFile = def
			}
		}
	}
	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config %s: %w", cfgFile, err)
		}
	}

	cfg, err := config.Load(a.v)
	if err != nil {
		return err
	}
	a.cfg = cfg

	logger, err := newLogger(cfg.Log)
	if err != nil {
		return err
	}
	a.logger = logger
	return nil
}

// newLogger builds a zap logger writing to stderr.
func newLogger(lc config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(lc.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", lc.Level, err)
	}

	var zc zap.Config
	switch lc.Format {
	case "json":
		zc = zap.NewProductionConfig()
	case "console", "":
		zc = zap.NewDevelopmentConfig()
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	default:
		return nil, fmt.Errorf("unknown log format %q", lc.Format)
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{"stderr"}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.DisableStacktrace = true

	return zc.Build()
}
