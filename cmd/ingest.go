package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teatrade/auction-cli/internal/extract"
	"github.com/teatrade/auction-cli/internal/ingest"
)

var ingestDir string

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest a directory of auction exports",
	Long:  "Scans the input directory, routes every workbook and report to its handler and merges the extracted records into the store. Files that already succeeded are skipped via the processing ledger.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if ingestDir != "" {
			cfg.Ingest.InputDir = ingestDir
		}
		if err := cfg.Validate("ingest"); err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		mapping, err := loadMapping()
		if err != nil {
			return err
		}

		runner := ingest.NewRunner(st, extract.NewSet(cfg.Extract.PdfToTextPath), mapping, ingest.Options{
			InputDir:       cfg.Ingest.InputDir,
			SourceLocation: cfg.Ingest.SourceLocation,
			HeaderScanRows: cfg.Ingest.HeaderScanRows,
		})

		stats, err := runner.Run(ctx)
		if err != nil {
			return eris.Wrap(err, "ingest run")
		}

		zap.L().Info("ingest complete",
			zap.Int("files", stats.Files),
			zap.Int64("records", stats.Records),
			zap.Int("failures", stats.Failures),
		)
		return nil
	},
}

// loadMapping returns the column mapping, reading the override file when one
// is configured.
func loadMapping() (*ingest.Mapping, error) {
	if cfg.Ingest.MappingPath == "" {
		return ingest.DefaultMapping(), nil
	}
	m, err := ingest.LoadMapping(cfg.Ingest.MappingPath)
	if err != nil {
		return nil, eris.Wrapf(err, "load mapping %s", cfg.Ingest.MappingPath)
	}
	return m, nil
}

func init() {
	ingestCmd.Flags().StringVar(&ingestDir, "dir", "", "input directory (overrides ingest.input_dir)")
	rootCmd.AddCommand(ingestCmd)
}
