package scraper

import (
	"bytes"
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"

	"github.com/Hem1234567/laras-07/internal/extract"
	"github.com/Hem1234567/laras-07/internal/fetcher"
	"github.com/Hem1234567/laras-07/internal/model"
	"github.com/Hem1234567/laras-07/internal/normalize"
	"github.com/Hem1234567/laras-07/internal/sink"
)

// Courts searches a case-law index for judgments matching Query.
type Courts struct {
	Fetcher    fetcher.Fetcher
	URL        string
	Query      string
	OutputPath string
	Now        func() time.Time
}

// Name implements Scraper.
func (c *Courts) Name() string { return "courts" }

// Scrape implements Scraper.
func (c *Courts) Scrape(ctx context.Context) (*Result, error) {
	params := url.Values{}
	params.Set("formInput", c.Query)
	params.Set("pagenum", "0")

	resp, err := c.Fetcher.Fetch(ctx, c.URL, params)
	if err != nil {
		return nil, err
	}
	judgments, err := ParseJudgments(resp.Body, resp.URL, stamp(c.Now))
	if err != nil {
		return nil, err
	}
	if err := sink.WriteCSV(c.OutputPath, judgments); err != nil {
		return nil, err
	}
	return &Result{
		Rows:     int64(len(judgments)),
		Files:    []string{c.OutputPath},
		Metadata: map[string]any{"query": c.Query},
	}, nil
}

// ParseJudgments reads the div.result blocks of a search results page.
// Titles of the form "A vs B on 15 November, 2023" yield the judgment date.
func ParseJudgments(body []byte, pageURL string, scrapedAt time.Time) ([]model.CourtJudgment, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "courts: parse html")
	}
	base, _ := url.Parse(pageURL)

	out := []model.CourtJudgment{}
	doc.Find("div.result").Each(func(_ int, r *goquery.Selection) {
		link := r.Find(".result_title a").First()
		title := extract.CleanText(link.Text())
		if title == "" {
			return
		}
		j := model.CourtJudgment{
			Court:     extract.CleanText(r.Find(".docsource").First().Text()),
			Title:     title,
			Citation:  extract.CleanText(r.Find(".cite_tag").First().Text()),
			URL:       resolve(base, link.AttrOr("href", "")),
			ScrapedAt: scrapedAt,
		}
		if i := strings.LastIndex(title, " on "); i >= 0 {
			if d := normalize.ParseDate(title[i+4:]); d != nil {
				j.Date = d.String()
			}
		}
		out = append(out, j)
	})
	return out, nil
}
