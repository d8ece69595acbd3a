package scraper

import (
	"regexp"

	"forum-harvester/internal/domain"
	"forum-harvester/internal/patterns"

	"github.com/PuerkitoBio/goquery"
)

var memberIDRe = regexp.MustCompile(`/members/[^/]+\.(\d+)/`)

// userSectionSelectors locate the author sidebar inside a post.
var userSectionSelectors = []string{"section.message-user", ".message-user"}

// userTitleSelectors are tried in order; the second covers older themes.
var userTitleSelectors = []string{`h5[class*="userTitle"]`, "span.userTitle"}

// extractAuthor reads the post's author sidebar. The second result is false
// when no username could be found.
func (e *Extractor) extractAuthor(post *goquery.Selection) (domain.User, bool) {
	section, ok := patterns.ResolveCandidates(post, userSectionSelectors)
	if !ok {
		return domain.User{}, false
	}
	section = section.First()

	nameSel, ok := patterns.ResolveFirst(section, e.patterns, patterns.FieldAuthor)
	if !ok {
		return domain.User{}, false
	}
	username := strippedText(nameSel)
	if username == "" {
		return domain.User{}, false
	}

	user := domain.User{Username: username}

	href, exists := nameSel.Attr("href")
	if !exists {
		href = nameSel.Find("a[href]").First().AttrOr("href", "")
	}
	if href != "" {
		user.ProfileURL = absolute(e.base, href)
		if m := memberIDRe.FindStringSubmatch(user.ProfileURL); m != nil {
			user.UserID = m[1]
		}
	}

	if title, ok := patterns.ResolveCandidates(section, userTitleSelectors); ok {
		user.UserTitle = strippedText(title.First())
	}

	// Stats are positional: messages, reaction score, points.
	slots := []**int{&user.Messages, &user.ReactionScore, &user.Points}
	next := 0
	section.Find("dd").EachWithBreak(func(_ int, dd *goquery.Selection) bool {
		n, ok := parseCount(strippedText(dd))
		if !ok {
			return true
		}
		v := n
		*slots[next] = &v
		next++
		return next < len(slots)
	})

	return user, true
}
