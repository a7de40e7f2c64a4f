package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teatrade/auction-cli/internal/model"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the processing ledger",
	Long:  "Displays the outcome of the most recent processing attempt for every file and data kind.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("store"); err != nil {
			return err
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		entries, err := st.ListLedger(ctx)
		if err != nil {
			return eris.Wrap(err, "read ledger")
		}

		if len(entries) == 0 {
			zap.L().Info("ledger is empty, run 'ingest' to process files")
			return nil
		}

		formatLedgerEntries(os.Stdout, entries)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

// formatLedgerEntries writes a tabular representation of ledger entries to out.
func formatLedgerEntries(out io.Writer, entries []model.LogEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "FILE\tKIND\tSTATUS\tRECORDS\tPROCESSED")
	_, _ = fmt.Fprintln(w, "----\t----\t------\t-------\t---------")

	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			truncate(e.FileIdentifier, 60),
			e.DataKind,
			e.Status,
			e.RecordsInserted,
			e.ProcessedAt,
		)
	}
	_ = w.Flush()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
