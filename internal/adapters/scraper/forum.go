package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const threadLinkSelector = `div.structItem-title a[href*="/threads/"]`

// ThreadURLs lists the absolute thread URLs linked from a forum index page,
// in page order, capped at limit when limit > 0.
func (e *Extractor) ThreadURLs(doc *goquery.Document, limit int) []string {
	var urls []string
	seen := make(map[string]bool)

	doc.Find(threadLinkSelector).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" {
			return true
		}
		full := absolute(e.base, href)
		if !seen[full] {
			seen[full] = true
			urls = append(urls, full)
		}
		return limit <= 0 || len(urls) < limit
	})

	return urls
}
