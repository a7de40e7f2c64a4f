package model

// Article is one news item delivered by the external scraper. The scraper
// runs out-of-process and hands over a JSON array of these; the link is the
// primary dedup key, the headline a fuzzy secondary one.
type Article struct {
	ID          int64   `json:"id,omitempty"`
	Headline    string  `json:"headline"`
	Snippet     *string `json:"snippet,omitempty"`
	Source      string  `json:"source"`
	Link        string  `json:"link"`
	ScrapedDate string  `json:"scraped_date,omitempty"`
	ArticleDate *string `json:"article_date,omitempty"`
}
