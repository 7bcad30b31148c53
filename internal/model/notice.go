package model

import "time"

// Row is anything the CSV sink can write.
type Row interface {
	CSVHeader() []string
	CSVRecord() []string
}

func stampCell(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// GazetteNotification is one entry from the official gazette search results.
type GazetteNotification struct {
	GazetteID string    `json:"gazette_id"`
	Date      string    `json:"date"`
	Title     string    `json:"title"`
	Ministry  string    `json:"ministry"`
	Subject   string    `json:"subject"`
	PDFURL    string    `json:"pdf_url"`
	PDFPath   string    `json:"pdf_path,omitempty"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// CSVHeader implements Row.
func (GazetteNotification) CSVHeader() []string {
	return []string{"gazette_id", "date", "title", "ministry", "subject", "pdf_url", "pdf_path", "scraped_at"}
}

// CSVRecord implements Row.
func (g GazetteNotification) CSVRecord() []string {
	return []string{g.GazetteID, g.Date, g.Title, g.Ministry, g.Subject, g.PDFURL, g.PDFPath, stampCell(g.ScrapedAt)}
}

// CourtJudgment is one search hit from a case-law index.
type CourtJudgment struct {
	Court     string    `json:"court"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	Citation  string    `json:"citation"`
	URL       string    `json:"url"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// CSVHeader implements Row.
func (CourtJudgment) CSVHeader() []string {
	return []string{"court", "title", "date", "citation", "url", "scraped_at"}
}

// CSVRecord implements Row.
func (c CourtJudgment) CSVRecord() []string {
	return []string{c.Court, c.Title, c.Date, c.Citation, c.URL, stampCell(c.ScrapedAt)}
}

// NewsItem is one infrastructure headline.
type NewsItem struct {
	Source    string    `json:"source"`
	Title     string    `json:"title"`
	Date      string    `json:"date"`
	URL       string    `json:"url"`
	ScrapedAt time.Time `json:"scraped_at"`
}

// CSVHeader implements Row.
func (NewsItem) CSVHeader() []string {
	return []string{"source", "title", "date", "url", "scraped_at"}
}

// CSVRecord implements Row.
func (n NewsItem) CSVRecord() []string {
	return []string{n.Source, n.Title, n.Date, n.URL, stampCell(n.ScrapedAt)}
}
