package scraper

import (
	"bytes"
	"context"
	"net/url"
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

// NewsSource is one headline listing.
type NewsSource struct {
	Name string
	URL  string
	// Selector picks the headline anchors on the page.
	Selector string
}

// DefaultKeywords keeps headlines about infrastructure works.
var DefaultKeywords = []string{
	"infrastructure", "highway", "expressway", "metro", "railway", "airport",
	"port", "corridor", "bridge", "land acquisition",
}

// PIBSource returns the press release listing source.
func PIBSource(rawURL string) NewsSource {
	return NewsSource{Name: "PIB", URL: rawURL, Selector: "ul li a[href*='PRID']"}
}

// TOISource returns the newspaper infrastructure section source.
func TOISource(rawURL string) NewsSource {
	return NewsSource{Name: "Times of India", URL: rawURL, Selector: "figcaption a, .w_tle a, span.w_tle a"}
}

// News collects infrastructure headlines from several listings. A source
// that fails is logged and skipped; the scrape fails only when every
// source does.
type News struct {
	Fetcher    fetcher.Fetcher
	Sources    []NewsSource
	Keywords   []string
	OutputPath string
	Now        func() time.Time
}

// Name implements Scraper.
func (n *News) Name() string { return "news" }

// Scrape implements Scraper.
func (n *News) Scrape(ctx context.Context) (*Result, error) {
	log := zap.L().With(zap.String("component", "scraper.news"))
	scrapedAt := stamp(n.Now)

	items := []model.NewsItem{}
	var lastErr error
	failures := 0
	for _, src := range n.Sources {
		resp, err := n.Fetcher.Fetch(ctx, src.URL, nil)
		if err == nil {
			var got []model.NewsItem
			got, err = ParseHeadlines(resp.Body, resp.URL, src, n.Keywords, scrapedAt)
			items = append(items, got...)
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Warn("news: source failed", zap.String("source", src.Name), zap.Error(err))
			lastErr = err
			failures++
		}
	}
	if len(n.Sources) > 0 && failures == len(n.Sources) {
		return nil, eris.Wrap(lastErr, "news: every source failed")
	}

	if err := sink.WriteCSV(n.OutputPath, items); err != nil {
		return nil, err
	}
	return &Result{
		Rows:     int64(len(items)),
		Files:    []string{n.OutputPath},
		Metadata: map[string]any{"sources_failed": failures},
	}, nil
}

// ParseHeadlines returns the anchors matched by src.Selector whose text
// contains one of keywords as a whole word (all anchors when keywords is empty). Repeated
// links on the same page are reported once.
func ParseHeadlines(body []byte, pageURL string, src NewsSource, keywords []string, scrapedAt time.Time) ([]model.NewsItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, eris.Wrapf(err, "news: parse %s", src.Name)
	}
	base, _ := url.Parse(pageURL)

	keep := newKeywordMatcher(keywords)
	out := []model.NewsItem{}
	seen := map[string]bool{}
	doc.Find(src.Selector).Each(func(_ int, a *goquery.Selection) {
		title := extract.CleanText(a.Text())
		href := a.AttrOr("href", "")
		if title == "" || href == "" || !keep.match(title) {
			return
		}
		link := resolve(base, href)
		if seen[link] {
			return
		}
		seen[link] = true
		out = append(out, model.NewsItem{
			Source:    src.Name,
			Title:     title,
			Date:      scrapedAt.Format(model.DateLayout),
			URL:       link,
			ScrapedAt: scrapedAt,
		})
	})
	return out, nil
}

// keywordMatcher matches whole words or phrases, case-insensitively, with
// an optional plural suffix: "port" matches "Ports" but not "report".
// With no keywords every headline matches.
type keywordMatcher struct {
	re *regexp.Regexp
}

func newKeywordMatcher(keywords []string) keywordMatcher {
	alts := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if k = strings.TrimSpace(k); k != "" {
			alts = append(alts, regexp.QuoteMeta(strings.ToLower(k)))
		}
	}
	if len(alts) == 0 {
		return keywordMatcher{}
	}
	return keywordMatcher{re: regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)(?:e?s)?\b`)}
}

func (m keywordMatcher) match(s string) bool {
	return m.re == nil || m.re.MatchString(strings.ToLower(s))
}
