// Package scraper turns parsed forum pages into domain records.
package scraper

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"net/url"
	"strings"

	"forum-harvester/internal/domain"
	"forum-harvester/internal/patterns"
	"forum-harvester/pkg/log"

	"github.com/PuerkitoBio/goquery"
)

// fallbackPostSelector is used when no post container candidate matches.
const fallbackPostSelector = "article.message"

// Extractor extracts posts and thread metadata for one site.
// It holds no per-page state and is safe to reuse across pages.
type Extractor struct {
	base     *url.URL
	patterns *patterns.PatternSet
}

// NewExtractor creates an extractor resolving relative URLs against baseURL.
// A nil pattern set uses the built-in defaults.
func NewExtractor(baseURL string, set *patterns.PatternSet) (*Extractor, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidThreadURL, baseURL)
	}
	if set == nil {
		set = patterns.Defaults()
	}
	return &Extractor{base: &url.URL{Scheme: base.Scheme, Host: base.Host}, patterns: set}, nil
}

// Patterns returns the pattern set used for resolution.
func (e *Extractor) Patterns() *patterns.PatternSet {
	return e.patterns
}

// ExtractPosts returns the page's posts in document order. A post whose
// extraction panics is logged and skipped.
func (e *Extractor) ExtractPosts(ctx context.Context, doc *goquery.Document) []domain.Post {
	containers, ok := patterns.Resolve(doc.Selection, e.patterns, patterns.FieldPostContainer)
	if !ok {
		containers = doc.Find(fallbackPostSelector)
	}

	posts := make([]domain.Post, 0, containers.Length())
	containers.Each(func(i int, el *goquery.Selection) {
		post, err := e.safeExtractPost(el)
		if err != nil {
			log.GlobalWarnCtx(ctx, "skipping post", "index", i, "error", err)
			return
		}
		posts = append(posts, post)
	})

	return posts
}

func (e *Extractor) safeExtractPost(el *goquery.Selection) (post domain.Post, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("extract post: %v", r)
		}
	}()
	return e.extractPost(el), nil
}

func (e *Extractor) extractPost(el *goquery.Selection) domain.Post {
	author, ok := e.extractAuthor(el)
	if !ok {
		author = domain.UnknownUser()
	}

	post := domain.Post{
		Author:    author,
		Date:      e.extractDate(el),
		Reactions: countReactions(e.reactionsElement(el)),
	}

	if content, ok := patterns.ResolveFirst(el, e.patterns, patterns.FieldContentWrapper); ok {
		post.Content = flatText(content, " ")
		post.Attachments = e.extractAttachments(content)
		post.MediaEmbeds = e.extractMediaEmbeds(content)
		post.Links = dropAttachmentImageLinks(e.extractLinks(content), post.Attachments)
	}

	post.PostID = e.postID(el)
	if post.PostID == "" {
		post.PostID = syntheticPostID(post)
		post.SyntheticID = true
	}

	return post
}

// postID reads the configured identity attribute, then the element id with
// its "post-" prefix removed.
func (e *Extractor) postID(el *goquery.Selection) string {
	if id := strings.TrimSpace(el.AttrOr(e.patterns.PostIDAttribute(), "")); id != "" {
		return id
	}
	return strings.TrimPrefix(strings.TrimSpace(el.AttrOr("id", "")), "post-")
}

// syntheticPostID derives a stable surrogate key from the post body so posts
// without any identity attribute stay distinct and re-extraction is stable.
func syntheticPostID(p domain.Post) string {
	sum := sha1.Sum([]byte(p.Author.Username + "|" + p.Date + "|" + p.Content))
	return "synthetic-" + hex.EncodeToString(sum[:])[:12]
}

// extractDate prefers the machine-readable datetime attribute.
func (e *Extractor) extractDate(el *goquery.Selection) string {
	sel, ok := patterns.ResolveFirst(el, e.patterns, patterns.FieldDate)
	if !ok {
		return ""
	}
	if dt := strings.TrimSpace(sel.AttrOr("datetime", "")); dt != "" {
		return dt
	}
	return strippedText(sel)
}
