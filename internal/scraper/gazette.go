package scraper

import (
	"bytes"
	"context"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/Hem1234567/laras-07/internal/extract"
	"github.com/Hem1234567/laras-07/internal/fetcher"
	"github.com/Hem1234567/laras-07/internal/model"
	"github.com/Hem1234567/laras-07/internal/sink"
)

// Gazette reads the official gazette search results grid. Columns are
// matched by header text so reordering on the portal does not shift fields.
type Gazette struct {
	Fetcher    fetcher.Fetcher
	URL        string
	OutputPath string
	// PDFDir receives notification PDFs when DownloadPDFs is set.
	PDFDir       string
	DownloadPDFs bool
	Now          func() time.Time
}

// Name implements Scraper.
func (g *Gazette) Name() string { return "gazette" }

// Scrape implements Scraper.
func (g *Gazette) Scrape(ctx context.Context) (*Result, error) {
	resp, err := g.Fetcher.Fetch(ctx, g.URL, nil)
	if err != nil {
		return nil, err
	}
	items, err := ParseGazette(resp.Body, resp.URL, stamp(g.Now))
	if err != nil {
		return nil, err
	}

	downloaded := 0
	if g.DownloadPDFs {
		downloaded = g.download(ctx, items)
	}

	if err := sink.WriteCSV(g.OutputPath, items); err != nil {
		return nil, err
	}
	return &Result{
		Rows:     int64(len(items)),
		Files:    []string{g.OutputPath},
		Metadata: map[string]any{"pdfs_downloaded": downloaded},
	}, nil
}

func (g *Gazette) download(ctx context.Context, items []model.GazetteNotification) int {
	log := zap.L().With(zap.String("component", "scraper.gazette"))
	n := 0
	for i := range items {
		if items[i].PDFURL == "" || ctx.Err() != nil {
			continue
		}
		path := filepath.Join(g.PDFDir, fileSafe(items[i].GazetteID)+".pdf")
		if _, err := g.Fetcher.DownloadToFile(ctx, items[i].PDFURL, path); err != nil {
			log.Warn("gazette: pdf download failed", zap.String("url", items[i].PDFURL), zap.Error(err))
			continue
		}
		items[i].PDFPath = path
		n++
	}
	return n
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

func fileSafe(s string) string {
	s = unsafeFileChars.ReplaceAllString(s, "_")
	if s == "" {
		return "notification"
	}
	return s
}

// gazetteColumns maps a lowercased header keyword to a field setter.
var gazetteColumns = []struct {
	keyword string
	set     func(*model.GazetteNotification, string)
}{
	{"gazette id", func(n *model.GazetteNotification, v string) { n.GazetteID = v }},
	{"ministry", func(n *model.GazetteNotification, v string) { n.Ministry = v }},
	{"department", func(n *model.GazetteNotification, v string) {
		if n.Ministry == "" {
			n.Ministry = v
		}
	}},
	{"subject", func(n *model.GazetteNotification, v string) { n.Subject = v }},
	{"date", func(n *model.GazetteNotification, v string) { n.Date = v }},
	{"title", func(n *model.GazetteNotification, v string) { n.Title = v }},
	{"description", func(n *model.GazetteNotification, v string) { n.Title = v }},
}

// ParseGazette extracts notifications from a results page. The first table
// whose header row mentions a gazette id is used. Rows without an id are
// skipped. PDF links are resolved against pageURL.
func ParseGazette(body []byte, pageURL string, scrapedAt time.Time) ([]model.GazetteNotification, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrap(err, "gazette: parse html")
	}
	base, _ := url.Parse(pageURL)

	var table *goquery.Selection
	doc.Find("table").EachWithBreak(func(_ int, t *goquery.Selection) bool {
		header := strings.ToLower(extract.CleanText(t.Find("tr").First().Text()))
		if strings.Contains(header, "gazette id") {
			table = t
			return false
		}
		return true
	})
	items := []model.GazetteNotification{}
	if table == nil {
		return items, nil
	}

	headers := table.Find("tr").First().Find("th, td")
	setters := make([]func(*model.GazetteNotification, string), headers.Length())
	headers.Each(func(i int, h *goquery.Selection) {
		text := strings.ToLower(extract.CleanText(h.Text()))
		for _, c := range gazetteColumns {
			if strings.Contains(text, c.keyword) {
				setters[i] = c.set
				return
			}
		}
	})

	table.Find("tr").Slice(1, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
		n := model.GazetteNotification{ScrapedAt: scrapedAt}
		tr.Find("td").Each(func(i int, td *goquery.Selection) {
			if i < len(setters) && setters[i] != nil {
				setters[i](&n, extract.CleanText(td.Text()))
			}
		})
		for _, href := range extract.Links(tr) {
			if strings.HasSuffix(strings.ToLower(href), ".pdf") {
				n.PDFURL = resolve(base, href)
				break
			}
		}
		if n.GazetteID == "" {
			return
		}
		if n.Title == "" {
			n.Title = n.Subject
		}
		items = append(items, n)
	})
	return items, nil
}

func resolve(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil || base == nil {
		return href
	}
	return base.ResolveReference(ref).String()
}

func stamp(now func() time.Time) time.Time {
	if now != nil {
		return now().UTC()
	}
	return time.Now().UTC()
}
