// Package extract pulls tabular rows out of HTML listing pages.
package extract

import (
	"bytes"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/rotisserie/eris"
)

// MinCells is the minimum number of cells a row must carry to be kept.
const MinCells = 5

// DefaultSelector matches the project listing table on the highway
// authority site.
const DefaultSelector = "table.project-table"

var innerWhitespace = regexp.MustCompile(`\s+`)

// RawRow is the ordered cell text of one table row.
type RawRow []string

// Cell returns the i-th cell and whether it exists.
func (r RawRow) Cell(i int) (string, bool) {
	if i < 0 || i >= len(r) {
		return "", false
	}
	return r[i], true
}

// CellOr returns the i-th cell, or def when it is missing or blank.
func (r RawRow) CellOr(i int, def string) string {
	v, ok := r.Cell(i)
	if !ok || v == "" {
		return def
	}
	return v
}

// TableExtractor reads data rows from the first matching table in a page.
type TableExtractor struct {
	// Selector is tried first; when nothing matches, the first <table> in
	// the document is used.
	Selector string
	// MinCells overrides the package default when > 0.
	MinCells int
}

// NewTableExtractor returns an extractor preferring selector.
func NewTableExtractor(selector string) *TableExtractor {
	if selector == "" {
		selector = DefaultSelector
	}
	return &TableExtractor{Selector: selector}
}

// Extract returns the data rows of the located table. The first row is
// treated as the header and skipped. Rows with fewer than MinCells cells
// are dropped. A page without any table yields no rows and no error.
func (e *TableExtractor) Extract(body []byte) ([]RawRow, error) {
	rows, _, err := e.ExtractCounted(body)
	return rows, err
}

// ExtractCounted is Extract that also reports how many rows were dropped
// for being too short.
func (e *TableExtractor) ExtractCounted(body []byte) ([]RawRow, int, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, 0, eris.Wrap(err, "extract: parse html")
	}

	table := e.locate(doc)
	if table == nil {
		return []RawRow{}, 0, nil
	}

	minCells := e.MinCells
	if minCells <= 0 {
		minCells = MinCells
	}

	rows := []RawRow{}
	dropped := 0
	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return
		}
		row := RowText(tr)
		if len(row) < minCells {
			dropped++
			return
		}
		rows = append(rows, row)
	})
	return rows, dropped, nil
}

func (e *TableExtractor) locate(doc *goquery.Document) *goquery.Selection {
	if e.Selector != "" {
		if sel := doc.Find(e.Selector).First(); sel.Length() > 0 {
			return sel
		}
	}
	if sel := doc.Find("table").First(); sel.Length() > 0 {
		return sel
	}
	return nil
}

// RowText returns the cleaned text of every td in tr. Header cells are not
// data and do not count toward MinCells.
func RowText(tr *goquery.Selection) RawRow {
	cells := tr.ChildrenFiltered("td")
	row := make(RawRow, 0, cells.Length())
	cells.Each(func(_ int, c *goquery.Selection) {
		row = append(row, CleanText(c.Text()))
	})
	return row
}

// CleanText collapses runs of whitespace and trims the result.
func CleanText(s string) string {
	return strings.TrimSpace(innerWhitespace.ReplaceAllString(s, " "))
}

// Links returns the absolute-or-relative href of every anchor in sel, in
// document order.
func Links(sel *goquery.Selection) []string {
	var out []string
	sel.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		if href := strings.TrimSpace(a.AttrOr("href", "")); href != "" {
			out = append(out, href)
		}
	})
	return out
}
