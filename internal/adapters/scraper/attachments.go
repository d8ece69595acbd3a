package scraper

import (
	"fmt"
	"regexp"
	"strings"

	"forum-harvester/internal/domain"
	"forum-harvester/internal/patterns"

	"github.com/PuerkitoBio/goquery"
)

var (
	attachmentIDRe   = regexp.MustCompile(`/attachments/[^/]+\.(\d+)/`)
	attachmentNameRe = regexp.MustCompile(`/attachments/([^/]+)/`)
	imageStemRe      = regexp.MustCompile(`(?i)/([^/]+)\.(jpg|jpeg|png|gif|webp)`)
	imageNameRe      = regexp.MustCompile(`(?i)/([^/]+\.(jpg|jpeg|png|gif|webp))`)
)

// anchorStrategy finds explicit attachment anchors in post content.
type anchorStrategy func(content *goquery.Selection, set *patterns.PatternSet) *goquery.Selection

// attachmentAnchorLadder is tried in order; the first non-empty result is used.
var attachmentAnchorLadder = []anchorStrategy{
	func(content *goquery.Selection, _ *patterns.PatternSet) *goquery.Selection {
		return content.Find("a.file-preview")
	},
	func(content *goquery.Selection, set *patterns.PatternSet) *goquery.Selection {
		sel, ok := patterns.Resolve(content, set, patterns.FieldAttachments)
		if !ok {
			return nil
		}
		return content.Find("a[href]").FilterFunction(func(_ int, a *goquery.Selection) bool {
			return a.IsSelection(sel) || a.Parents().IsSelection(sel)
		})
	},
	func(content *goquery.Selection, _ *patterns.PatternSet) *goquery.Selection {
		return content.Find(`a[href*="/attachments/"]`)
	},
}

// extractAttachments keeps every explicit attachment anchor in document
// order, then adds inline images whose absolute URL is not yet recorded.
func (e *Extractor) extractAttachments(content *goquery.Selection) []domain.Attachment {
	var attachments []domain.Attachment
	seen := make(map[string]bool)

	for _, strategy := range attachmentAnchorLadder {
		anchors := strategy(content, e.patterns)
		if anchors == nil || anchors.Length() == 0 {
			continue
		}
		anchors.Each(func(_ int, a *goquery.Selection) {
			if att, ok := e.anchorAttachment(a); ok {
				seen[att.URL] = true
				attachments = append(attachments, att)
			}
		})
		break
	}

	content.Find("img.bbImage").Each(func(_ int, img *goquery.Selection) {
		att, ok := e.inlineAttachment(img)
		if !ok || seen[att.URL] {
			return
		}
		seen[att.URL] = true
		attachments = append(attachments, att)
	})

	return attachments
}

func (e *Extractor) anchorAttachment(a *goquery.Selection) (domain.Attachment, bool) {
	href := strings.TrimSpace(a.AttrOr("href", ""))
	if href == "" {
		return domain.Attachment{}, false
	}

	id := ""
	if m := attachmentIDRe.FindStringSubmatch(href); m != nil {
		id = m[1]
	}

	filename := strippedText(a)
	if filename == "" {
		if m := attachmentNameRe.FindStringSubmatch(href); m != nil {
			filename = m[1]
		} else {
			filename = "attachment_" + id
		}
	}

	return domain.Attachment{
		AttachmentID: id,
		Filename:     filename,
		URL:          absolute(e.base, href),
		FileType:     classifyFileType(filename),
	}, true
}

// inlineAttachment reads a flagged inline image. Data URI placeholders are
// skipped in favour of the lazy-load attributes.
func (e *Extractor) inlineAttachment(img *goquery.Selection) (domain.Attachment, bool) {
	src := ""
	for _, attr := range []string{"src", "data-url", "data-src"} {
		v := strings.TrimSpace(img.AttrOr(attr, ""))
		if v != "" && !strings.HasPrefix(v, "data:") {
			src = v
			break
		}
	}
	if src == "" {
		return domain.Attachment{}, false
	}

	id := ""
	if strings.Contains(src, "/attachments/") {
		if m := attachmentIDRe.FindStringSubmatch(src); m != nil {
			id = m[1]
		}
	} else if m := imageStemRe.FindStringSubmatch(src); m != nil {
		id = m[1]
	}

	filename := img.AttrOr("alt", "")
	if filename == "" {
		filename = img.AttrOr("title", "")
	}
	if filename == "" {
		if m := imageNameRe.FindStringSubmatch(src); m != nil {
			filename = m[1]
		} else {
			filename = fmt.Sprintf("image_%s.jpg", id)
		}
	}

	return domain.Attachment{
		AttachmentID: id,
		Filename:     filename,
		URL:          absolute(e.base, src),
		FileType:     domain.FileImage,
	}, true
}
