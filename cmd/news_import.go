package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/teatrade/auction-cli/internal/model"
)

var newsImportPath string

var newsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import scraped articles from a JSON file",
	Long:  "Reads a JSON array of articles handed over by the scraper and inserts them, skipping duplicate links and near-duplicate headlines.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("news"); err != nil {
			return err
		}

		data, err := os.ReadFile(newsImportPath)
		if err != nil {
			return eris.Wrapf(err, "read %s", newsImportPath)
		}

		var articles []model.Article
		if err := json.Unmarshal(data, &articles); err != nil {
			return eris.Wrapf(err, "parse %s", newsImportPath)
		}

		st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		inserted, skipped, err := st.InsertArticles(ctx, articles, cfg.News.SimilarityThreshold)
		if err != nil {
			return eris.Wrap(err, "insert articles")
		}

		zap.L().Info("news import complete",
			zap.Int("inserted", inserted),
			zap.Int("skipped", skipped),
			zap.String("json", newsImportPath),
		)
		return nil
	},
}

func init() {
	newsImportCmd.Flags().StringVar(&newsImportPath, "json", "", "path to JSON article file (required)")
	_ = newsImportCmd.MarkFlagRequired("json")
	newsCmd.AddCommand(newsImportCmd)
}
