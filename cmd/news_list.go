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

var newsListLimit int

var newsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored articles, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("news"); err != nil {
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

		articles, err := st.ListArticles(ctx, newsListLimit)
		if err != nil {
			return eris.Wrap(err, "list articles")
		}

		if len(articles) == 0 {
			zap.L().Info("no articles stored, run 'news import' first")
			return nil
		}

		formatArticles(os.Stdout, articles)
		return nil
	},
}

func init() {
	newsListCmd.Flags().IntVar(&newsListLimit, "limit", 20, "maximum articles to show")
	newsCmd.AddCommand(newsListCmd)
}

// formatArticles writes a tabular representation of articles to out.
func formatArticles(out io.Writer, articles []model.Article) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "SCRAPED\tDATE\tSOURCE\tHEADLINE")
	_, _ = fmt.Fprintln(w, "-------\t----\t------\t--------")

	for _, a := range articles {
		date := "-"
		if a.ArticleDate != nil && *a.ArticleDate != "" {
			date = *a.ArticleDate
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			a.ScrapedDate,
			date,
			a.Source,
			truncate(a.Headline, 70),
		)
	}
	_ = w.Flush()
}
