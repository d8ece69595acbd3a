package scraper

import (
	"net/url"
	"strings"

	"forum-harvester/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

// extractLinks classifies every navigable anchor in the content.
func (e *Extractor) extractLinks(content *goquery.Selection) []domain.Link {
	var links []domain.Link

	content.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(strings.ToLower(href), "javascript:") {
			return
		}

		full := absolute(e.base, href)
		text := strippedText(a)
		linkType := domain.LinkExternal

		if img := a.Find("img").First(); img.Length() > 0 {
			linkType = domain.LinkImageLink
			if text == "" {
				text = img.AttrOr("alt", "")
			}
			if text == "" {
				text = img.AttrOr("title", "")
			}
		} else if e.sameHost(full) {
			linkType = domain.LinkInternal
		}

		if text == "" {
			text = href
		}

		links = append(links, domain.Link{URL: full, Text: text, LinkType: linkType})
	})

	return links
}

// dropAttachmentImageLinks removes image links whose text names an
// attachment already extracted for the same post.
func dropAttachmentImageLinks(links []domain.Link, attachments []domain.Attachment) []domain.Link {
	if len(attachments) == 0 {
		return links
	}
	kept := links[:0:0]
	for _, l := range links {
		if l.LinkType == domain.LinkImageLink && mentionsAttachment(l.Text, attachments) {
			continue
		}
		kept = append(kept, l)
	}
	return kept
}

func mentionsAttachment(text string, attachments []domain.Attachment) bool {
	for _, a := range attachments {
		if a.Filename != "" && strings.Contains(text, a.Filename) {
			return true
		}
	}
	return false
}

// sameHost reports whether rawURL points at the forum's own host.
func (e *Extractor) sameHost(rawURL string) bool {
	if e.base == nil {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return false
	}
	return strings.EqualFold(u.Host, e.base.Host)
}
