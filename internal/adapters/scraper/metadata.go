package scraper

import (
	"regexp"
	"strings"

	"forum-harvester/internal/domain"
	"forum-harvester/internal/patterns"

	"github.com/PuerkitoBio/goquery"
)

var (
	pageIndicatorRe = regexp.MustCompile(`(\d+)\s+of\s+(\d+)`)
)

// pageCountStrategy inspects the pagination nav (possibly empty) or the whole
// document and reports a page count when it finds one.
type pageCountStrategy struct {
	name  string
	count func(doc *goquery.Document, nav *goquery.Selection) (int, bool)
}

// pageCountLadder is tried in order; the first usable count wins.
var pageCountLadder = []pageCountStrategy{
	{"last_page_link", func(_ *goquery.Document, nav *goquery.Selection) (int, bool) {
		last := nav.Find("a.pageNav-page--last, .pageNav-page--last a").First()
		if last.Length() == 0 {
			return 0, false
		}
		return parseCount(strippedText(last))
	}},
	{"max_page_link", func(_ *goquery.Document, nav *goquery.Selection) (int, bool) {
		highest := 0
		nav.Find(".pageNav-page a, a.pageNav-page").Each(func(_ int, a *goquery.Selection) {
			if n, ok := parseCount(strippedText(a)); ok && n > highest {
				highest = n
			}
		})
		return highest, highest > 0
	}},
	{"page_indicator", func(_ *goquery.Document, nav *goquery.Selection) (int, bool) {
		indicator := nav.Find(".pageNavSimple-el--current").First()
		m := pageIndicatorRe.FindStringSubmatch(flatText(indicator, " "))
		if m == nil {
			return 0, false
		}
		return parseCount(m[2])
	}},
	{"page_jump_input", func(doc *goquery.Document, _ *goquery.Selection) (int, bool) {
		input := doc.Find("input.js-pageJumpPage").First()
		if input.Length() == 0 {
			return 0, false
		}
		return parseCount(input.AttrOr("max", ""))
	}},
}

// ExtractMetadata reads thread-level data from the first page.
func (e *Extractor) ExtractMetadata(doc *goquery.Document, threadURL string) domain.Metadata {
	meta := domain.Metadata{
		Title:      threadTitle(doc),
		ThreadID:   domain.ThreadID(threadURL),
		Tags:       texts(doc.Find("a.tagItem")),
		Prefixes:   texts(doc.Find("a.labelLink")),
		TotalPages: e.TotalPages(doc),
	}

	if start := doc.Find("time.u-dt").First(); start.Length() > 0 {
		meta.StartDate = strings.TrimSpace(start.AttrOr("datetime", ""))
		if meta.StartDate == "" {
			meta.StartDate = strippedText(start)
		}
	}

	return meta
}

// TotalPages runs the page-count ladder, defaulting to 1.
func (e *Extractor) TotalPages(doc *goquery.Document) int {
	nav, ok := patterns.ResolveFirst(doc.Selection, e.patterns, patterns.FieldPagination)
	if !ok {
		nav = doc.Selection.Slice(0, 0)
	}
	for _, strategy := range pageCountLadder {
		if n, ok := strategy.count(doc, nav); ok && n > 0 {
			return n
		}
	}
	return 1
}

// threadTitle reads the heading without its prefix labels.
func threadTitle(doc *goquery.Document) string {
	h1 := doc.Find("h1.p-title-value").First()
	if h1.Length() == 0 {
		return ""
	}
	h1 = h1.Clone()
	h1.Find(".labelLink, .label").Remove()
	return strings.TrimSpace(flatText(h1, " "))
}

func texts(sel *goquery.Selection) []string {
	out := make([]string, 0, sel.Length())
	sel.Each(func(_ int, s *goquery.Selection) {
		out = append(out, strippedText(s))
	})
	return out
}
