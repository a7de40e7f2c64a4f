package store

import (
	"context"
	"strings"
	"time"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/rotisserie/eris"

	"github.com/teatrade/auction-cli/internal/model"
)

// InsertArticles stores scraper-delivered news items, skipping duplicates.
// A duplicate is an exact link match or a headline within the similarity
// threshold of one already stored; news wires republish the same story
// under trivially reworded headlines, so link identity alone is not enough.
// Returns how many rows were inserted and how many were skipped.
func (s *Store) InsertArticles(ctx context.Context, articles []model.Article, similarityThreshold float64) (inserted, skipped int, err error) {
	links, headlines, err := s.articleIndex(ctx)
	if err != nil {
		return 0, 0, err
	}

	for _, a := range articles {
		if _, dup := links[a.Link]; dup {
			skipped++
			continue
		}
		if similarHeadline(a.Headline, headlines, similarityThreshold) {
			skipped++
			continue
		}

		scraped := a.ScrapedDate
		if scraped == "" {
			scraped = time.Now().UTC().Format("2006-01-02")
		}

		_, err := s.db.ExecContext(ctx,
			`INSERT INTO articles (headline, snippet, source, link, scraped_date, article_date)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			a.Headline, a.Snippet, a.Source, a.Link, scraped, a.ArticleDate,
		)
		if err != nil {
			return inserted, skipped, eris.Wrapf(err, "sqlite: insert article %s", a.Link)
		}
		inserted++
		links[a.Link] = struct{}{}
		headlines = append(headlines, a.Headline)
	}
	return inserted, skipped, nil
}

// ListArticles returns stored articles, newest scrape first.
func (s *Store) ListArticles(ctx context.Context, limit int) ([]model.Article, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, headline, snippet, source, link, scraped_date, article_date
		 FROM articles ORDER BY scraped_date DESC, id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, eris.Wrap(err, "sqlite: list articles")
	}
	defer rows.Close()

	var out []model.Article
	for rows.Next() {
		var a model.Article
		var snippet, articleDate *string
		if err := rows.Scan(&a.ID, &a.Headline, &snippet, &a.Source, &a.Link, &a.ScrapedDate, &articleDate); err != nil {
			return nil, eris.Wrap(err, "sqlite: scan article")
		}
		a.Snippet = snippet
		a.ArticleDate = articleDate
		out = append(out, a)
	}
	return out, eris.Wrap(rows.Err(), "sqlite: list articles iterate")
}

func (s *Store) articleIndex(ctx context.Context) (map[string]struct{}, []string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT link, headline FROM articles`)
	if err != nil {
		return nil, nil, eris.Wrap(err, "sqlite: load article index")
	}
	defer rows.Close()

	links := make(map[string]struct{})
	var headlines []string
	for rows.Next() {
		var link, headline string
		if err := rows.Scan(&link, &headline); err != nil {
			return nil, nil, eris.Wrap(err, "sqlite: scan article index")
		}
		links[link] = struct{}{}
		headlines = append(headlines, headline)
	}
	return links, headlines, eris.Wrap(rows.Err(), "sqlite: article index iterate")
}

// similarHeadline reports whether candidate is within threshold of any known
// headline, using normalized Levenshtein similarity on case-folded text.
func similarHeadline(candidate string, known []string, threshold float64) bool {
	if threshold <= 0 {
		return false
	}
	c := strings.ToLower(candidate)
	for _, h := range known {
		k := strings.ToLower(h)
		longest := len([]rune(c))
		if l := len([]rune(k)); l > longest {
			longest = l
		}
		if longest == 0 {
			return true
		}
		dist := fuzzy.LevenshteinDistance(c, k)
		if 1-float64(dist)/float64(longest) >= threshold {
			return true
		}
	}
	return false
}
