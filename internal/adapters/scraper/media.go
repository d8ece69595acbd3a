package scraper

import (
	"regexp"
	"strings"

	"forum-harvester/internal/domain"

	"github.com/PuerkitoBio/goquery"
)

// lazyPlayerSelector matches placeholders whose parent loads the player on click.
const lazyPlayerSelector = "div.generic2wide-iframe-div, div.iframe-wrapper-redgifs"

// deferredURLRe finds a quoted URL passed as the second argument of an
// inline handler call such as loadMedia(this, 'https://...').
var deferredURLRe = regexp.MustCompile(`[A-Za-z_$][\w$]*\(\s*[^,()]+,\s*["']([^"']+)["']`)

// extractMediaEmbeds collects iframes, then lazy-load placeholders.
func (e *Extractor) extractMediaEmbeds(content *goquery.Selection) []domain.MediaEmbed {
	var embeds []domain.MediaEmbed

	content.Find("iframe").Each(func(_ int, iframe *goquery.Selection) {
		src := strings.TrimSpace(iframe.AttrOr("src", ""))
		if src == "" {
			return
		}
		mediaType, id := classifyMedia(src)
		embeds = append(embeds, domain.MediaEmbed{
			MediaType: mediaType,
			EmbedURL:  src,
			MediaID:   id,
		})
	})

	content.Find(lazyPlayerSelector).Each(func(_ int, div *goquery.Selection) {
		handler := div.Parent().AttrOr("onclick", "")
		if handler == "" {
			return
		}
		m := deferredURLRe.FindStringSubmatch(handler)
		if m == nil {
			return
		}
		mediaType := domain.MediaVideo
		if strings.Contains(m[1], "redgifs") {
			mediaType = domain.MediaRedgifs
		}
		embeds = append(embeds, domain.MediaEmbed{
			MediaType: mediaType,
			EmbedURL:  m[1],
		})
	})

	return embeds
}
