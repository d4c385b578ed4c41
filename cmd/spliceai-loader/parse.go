package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/spliceai-loader/internal/output"
	"github.com/inodb/spliceai-loader/internal/spliceai"
)

func (a *app) newParseCmd() *cobra.Command {
	var (
		outputFormat string
		outputFile   string
		progressBar  bool
	)

	cmd := &cobra.Command{
		Use:   "parse [data-folder]",
		Short: "Parse the SpliceAI file and write normalized records",
		Long: `Parse the SpliceAI VCF file found in the data folder (default: current
directory) and write one normalized record per valid line. Comment and blank
lines are ignored; malformed lines are logged and reported at the end.`,
		Example: `  spliceai-loader parse /data/spliceai
  spliceai-loader parse -f tab -o scores.tsv /data/spliceai
  spliceai-loader parse --filename spliceai_scores.masked.snv.hg38.vcf --progress-bar .`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var out io.Writer = cmd.OutOrStdout()
			if outputFile != "" {
				f, err := os.Create(outputFile)
				if err != nil {
					return fmt.Errorf("creating output file: %w", err)
				}
				defer f.Close()
				out = f
			}

			var writer spliceai.RecordWriter
			switch outputFormat {
			case "jsonl", "json":
				writer = output.NewJSONWriter(out)
			case "tab":
				writer = output.NewTabWriter(out)
			default:
				return fmt.Errorf("unknown output format %q", outputFormat)
			}

			stats, err := a.parseInto(dataFolder(args), writer, progressBar)
			if err != nil {
				return err
			}
			a.logger.Info("records written",
				zap.Int("records", stats.Records),
				zap.Int("skipped", stats.Skipped),
				zap.String("format", outputFormat))
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFormat, "output-format", "f", "jsonl", "Output format: jsonl, tab")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().BoolVar(&progressBar, "progress-bar", false, "Show a progress bar instead of per-line progress logs")

	return cmd
}

// parseInto opens the configured file in folder and drains it into writer.
func (a *app) parseInto(folder string, writer spliceai.RecordWriter, progressBar bool) (spliceai.Stats, error) {
	var reporter spliceai.Reporter = spliceai.NewLogReporter(a.logger)
	if progressBar {
		bar := newBarReporter(reporter, os.Stderr)
		defer bar.Finish()
		reporter = bar
	}

	opts := a.cfg.ParserOptions()
	opts.Reporter = reporter

	p, err := spliceai.Load(folder, a.cfg.Filename, opts, a.logger)
	if err != nil {
		return spliceai.Stats{}, err
	}
	return spliceai.WriteAll(p, writer)
}

func dataFolder(args []string) string {
	if len(args) == 0 {
		return "."
	}
	return args[0]
}
