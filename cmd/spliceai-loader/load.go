package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/inodb/spliceai-loader/internal/config"
	"github.com/inodb/spliceai-loader/internal/duckdb"
	"github.com/inodb/spliceai-loader/internal/spliceai"
)

func (a *app) newLoadCmd() *cobra.Command {
	var (
		force       bool
		progressBar bool
	)

	cmd := &cobra.Command{
		Use:   "load [data-folder]",
		Short: "Parse the SpliceAI file and store the records in DuckDB",
		Long: `Parse the SpliceAI VCF file found in the data folder and store its records
in a DuckDB database, replacing those of the previous load. The input's size
and modification time are recorded, and reloading the input that is already
stored is skipped unless --force is given.`,
		Example: `  spliceai-loader load /data/spliceai
  spliceai-loader load --db scores.duckdb --force /data/spliceai`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			folder := dataFolder(args)
			path := filepath.Join(folder, a.cfg.Filename)

			if err := spliceai.CheckInput(path); err != nil {
				a.logger.Error("cannot open input file", zap.String("path", path), zap.Error(err))
				return err
			}
			fp, err := duckdb.StatFile(path)
			if err != nil {
				return fmt.Errorf("stat input: %w", err)
			}

			store, err := duckdb.Open(a.cfg.DB)
			if err != nil {
				return err
			}
			defer store.Close()

			if !force && store.Loaded(fp) {
				a.logger.Info("input unchanged since last load, skipping",
					zap.String("path", path),
					zap.String("db", a.cfg.DB))
				return nil
			}

			// Previous records stay visible until the new ones commit.
			w, err := store.BeginReplace(a.cfg.BatchSize)
			if err != nil {
				return err
			}
			defer w.Rollback() // no-op after Commit

			stats, err := a.parseInto(folder, w, progressBar)
			if err != nil {
				return err
			}
			if err := w.Commit(fp, stats); err != nil {
				return err
			}

			a.logger.Info("records loaded",
				zap.String("db", a.cfg.DB),
				zap.Int("records", stats.Records),
				zap.Int("skipped", stats.Skipped))
			return nil
		},
	}

	cmd.Flags().Int("batch-size", 0, "Records buffered per DuckDB append")
	cmd.Flags().BoolVar(&force, "force", false, "Reload even if the input is unchanged")
	cmd.Flags().BoolVar(&progressBar, "progress-bar", false, "Show a progress bar instead of per-line progress logs")
	a.v.BindPFlag(config.KeyBatchSize, cmd.Flags().Lookup("batch-size"))

	return cmd
}
