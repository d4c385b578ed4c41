package spliceai

import (
	"path/filepath"

	"go.uber.org/zap"
)

// DefaultFilename is the SpliceAI file looked up inside a data folder.
const DefaultFilename = "whole_genome_filtered_spliceai_scores.vcf"

// Load resolves filename inside dataFolder and opens a parser on it.
// An empty filename selects DefaultFilename. A missing input is logged
// and returned as *MissingInputError.
func Load(dataFolder, filename string, opts Options, logger *zap.Logger) (*Parser, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if filename == "" {
		filename = DefaultFilename
	}
	path := filepath.Join(dataFolder, filename)

	p, err := Open(path, opts)
	if err != nil {
		logger.Error("cannot open input file", zap.String("path", path), zap.Error(err))
		return nil, err
	}
	logger.Info("start reading file",
		zap.String("path", path),
		zap.Int("lines", p.Total()))
	return p, nil
}
