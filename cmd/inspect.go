package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/teatrade/auction-cli/internal/sheet"
)

var (
	inspectDirFlag string
	inspectRows    int
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Dump workbook headers for troubleshooting",
	Long:  "Prints the sheet names and leading rows of every workbook in a directory so header drift can be spotted before ingestion. Does not touch the store.",
	RunE: func(cmd *cobra.Command, args []string) error {
		return inspectDir(os.Stdout, inspectDirFlag, inspectRows)
	},
}

func init() {
	inspectCmd.Flags().StringVar(&inspectDirFlag, "dir", "", "directory of workbooks (required)")
	inspectCmd.Flags().IntVar(&inspectRows, "rows", 5, "rows to print per sheet")
	_ = inspectCmd.MarkFlagRequired("dir")
	rootCmd.AddCommand(inspectCmd)
}

// inspectDir prints the leading rows of every sheet of every workbook in dir.
// Unreadable workbooks are reported inline and skipped so one corrupt export
// does not hide the rest.
func inspectDir(out io.Writer, dir string, rows int) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return eris.Wrapf(err, "read directory %s", dir)
	}

	var files []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || strings.HasPrefix(name, "~$") {
			continue
		}
		if strings.EqualFold(filepath.Ext(name), ".xlsx") {
			files = append(files, name)
		}
	}
	sort.Strings(files)

	if len(files) == 0 {
		_, _ = fmt.Fprintf(out, "no workbooks found in %s\n", dir)
		return nil
	}

	for _, name := range files {
		_, _ = fmt.Fprintf(out, "FILE %s\n", name)

		wb, err := sheet.Open(filepath.Join(dir, name))
		if err != nil {
			_, _ = fmt.Fprintf(out, "  ERROR %v\n", err)
			continue
		}

		for _, sheetName := range wb.SheetNames() {
			sh, err := wb.Sheet(sheetName)
			if err != nil {
				_, _ = fmt.Fprintf(out, "  SHEET %s: ERROR %v\n", sheetName, err)
				continue
			}

			_, _ = fmt.Fprintf(out, "  SHEET %s (%d rows)\n", sheetName, len(sh.Rows))
			for i, row := range sh.Rows {
				if i >= rows {
					break
				}
				_, _ = fmt.Fprintf(out, "    %d: %s\n", i, strings.Join(row, " | "))
			}
		}
	}
	return nil
}
