package main

import (
	"github.com/spf13/cobra"

	"github.com/inodb/spliceai-loader/internal/duckdb"
	"github.com/inodb/spliceai-loader/internal/output"
	"github.com/inodb/spliceai-loader/internal/spliceai"
)

func (a *app) newQueryCmd() *cobra.Command {
	var (
		id       string
		gene     string
		minScore float64
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Look up loaded records by id, gene or score",
		Example: `  spliceai-loader query --id 'chr1:g.100A>G'
  spliceai-loader query --gene TUBB8
  spliceai-loader query --min-score 0.5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := duckdb.Open(a.cfg.DB)
			if err != nil {
				return err
			}
			defer store.Close()

			var records []*spliceai.Record
			switch {
			case id != "":
				records, err = store.Lookup(id)
			case gene != "":
				records, err = store.SearchByGene(gene)
			default:
				records, err = store.SearchByScore(minScore)
			}
			if err != nil {
				return err
			}

			w := output.NewJSONWriter(cmd.OutOrStdout())
			for _, r := range records {
				if err := w.Write(r); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&id, "id", "", "Variant id, e.g. chr1:g.100A>G")
	cmd.Flags().StringVar(&gene, "gene", "", "Gene symbol")
	cmd.Flags().Float64Var(&minScore, "min-score", 0, "Minimum delta score on any of AG, AL, DG, DL")
	cmd.MarkFlagsMutuallyExclusive("id", "gene", "min-score")
	cmd.MarkFlagsOneRequired("id", "gene", "min-score")

	return cmd
}
