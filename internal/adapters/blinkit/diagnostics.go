package blinkit

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"blinkit_scraper/internal/adapters/session"
)

const maxDetail = 300

// summarize turns an error body into one log-friendly line. Block pages are
// HTML, so their <title> says more than the first bytes of markup.
func summarize(resp *session.Response) string {
	if len(resp.Body) == 0 {
		return ""
	}
	ct := strings.ToLower(resp.Header.Get("Content-Type"))
	if strings.Contains(ct, "html") || bytes.HasPrefix(bytes.TrimSpace(resp.Body), []byte("<")) {
		if doc, err := goquery.NewDocumentFromReader(bytes.NewReader(resp.Body)); err == nil {
			if title := strings.TrimSpace(doc.Find("title").First().Text()); title != "" {
				return "html page: " + clip(title)
			}
			if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
				return "html page: " + clip(h1)
			}
		}
	}
	return clip(strings.Join(strings.Fields(string(resp.Body)), " "))
}

func clip(s string) string {
	if utf8.RuneCountInString(s) <= maxDetail {
		return s
	}
	r := []rune(s)
	return string(r[:maxDetail]) + "…"
}
