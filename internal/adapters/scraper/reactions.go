package scraper

import (
	"regexp"

	"forum-harvester/internal/patterns"

	"github.com/PuerkitoBio/goquery"
)

var (
	othersRe        = regexp.MustCompile(`and\s+(\d+)\s+others?`)
	reactionsLinkRe = regexp.MustCompile(`/posts/\d+/reactions`)
)

// reactionStrategy returns a count and whether it applies to the element.
type reactionStrategy func(el *goquery.Selection, text string) (int, bool)

// reactionLadder is evaluated in order; the first applicable strategy wins.
var reactionLadder = []reactionStrategy{
	// "Alice, Bob and 11 others"
	func(el *goquery.Selection, text string) (int, bool) {
		m := othersRe.FindStringSubmatch(text)
		if m == nil {
			return 0, false
		}
		others, ok := firstInt(m[1])
		if !ok {
			return 0, false
		}
		return visibleNames(el) + others, true
	},
	func(el *goquery.Selection, _ string) (int, bool) {
		n := visibleNames(el)
		return n, n > 0
	},
	func(_ *goquery.Selection, text string) (int, bool) {
		return firstInt(text)
	},
}

// countReactions applies the ladder to a reactions element, defaulting to 0.
func countReactions(el *goquery.Selection) int {
	if el == nil || el.Length() == 0 {
		return 0
	}
	text := flatText(el, " ")
	for _, strategy := range reactionLadder {
		if n, ok := strategy(el, text); ok {
			return n
		}
	}
	return 0
}

// visibleNames counts the distinct reacting names shown in bdi tags.
func visibleNames(el *goquery.Selection) int {
	names := make(map[string]struct{})
	el.Find("bdi").Each(func(_ int, bdi *goquery.Selection) {
		names[strippedText(bdi)] = struct{}{}
	})
	return len(names)
}

// reactionsElement resolves the reactions field, falling back to the
// post's reactions-list link.
func (e *Extractor) reactionsElement(post *goquery.Selection) *goquery.Selection {
	if sel, ok := patterns.ResolveFirst(post, e.patterns, patterns.FieldReactions); ok {
		return sel
	}
	return post.Find("a[href]").FilterFunction(func(_ int, a *goquery.Selection) bool {
		return reactionsLinkRe.MatchString(a.AttrOr("href", ""))
	}).First()
}
