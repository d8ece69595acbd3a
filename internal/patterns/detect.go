package patterns

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Detect inspects a sample thread page and returns the candidates it can
// confirm. Fields with no confirmed candidate are left empty so resolution
// falls back to the defaults.
func Detect(doc *goquery.Document, sampleURL string) *PatternSet {
	root := doc.Selection
	set := &PatternSet{
		Version:         CurrentVersion,
		ThreadURLSample: sampleURL,
	}

	set.Selectors.PostContainer = detectPostContainer(root)
	set.Classes.ContentWrapper = presentClasses(root, "bbWrapper", "messageText", "message-body", "post-content")

	set.Selectors.Author = dotted(presentClasses(root, "username", "author", "message-name"))
	if root.Find("[data-user-id]").Has("a").Length() > 0 {
		set.Selectors.Author = append(set.Selectors.Author, "[data-user-id] a")
	}

	if times := root.Find("time"); times.Length() > 0 {
		set.Selectors.Date = append(set.Selectors.Date, "time")
		if times.Filter("[datetime]").Length() > 0 {
			set.Selectors.Date = append(set.Selectors.Date, "time[datetime]")
		}
	}
	set.Selectors.Date = append(set.Selectors.Date, dotted(presentClasses(root, "u-dt", "DateTime", "message-date"))...)

	set.Selectors.Reactions = dotted(presentClasses(root, "reactionsBar", "reactions", "likes", "message-reactions"))
	set.Selectors.Attachments = dotted(presentClasses(root, "attachment", "attachmentList", "message-attachments"))
	set.Selectors.Pagination = dotted(presentClasses(root, "pageNav", "pagination", "page-nav"))
	set.Attributes.PostID = detectPostIDAttribute(root, set.Selectors.PostContainer)

	return set.Normalize()
}

func detectPostContainer(root *goquery.Selection) []string {
	candidates := dotted(presentClasses(root, "message", "post", "message--post"))

	root.Find("article").Slice(0, min(3, root.Find("article").Length())).EachWithBreak(func(_ int, article *goquery.Selection) bool {
		classes := strings.Fields(article.AttrOr("class", ""))
		for _, c := range classes {
			if strings.Contains(c, "message") || strings.Contains(c, "post") {
				candidates = append(candidates, "article."+strings.Join(classes[:min(2, len(classes))], "."))
				return false
			}
		}
		return true
	})

	return candidates
}

// detectPostIDAttribute prefers attributes present on detected post
// containers and only then looks at the whole page.
func detectPostIDAttribute(root *goquery.Selection, containers []string) string {
	attrs := []string{"data-content", "id", "data-post-id"}
	scopes := []*goquery.Selection{}
	if posts, ok := ResolveCandidates(root, containers); ok {
		scopes = append(scopes, posts)
	}
	scopes = append(scopes, root.Find("*"))

	for _, scope := range scopes {
		for _, attr := range attrs {
			if scope.Filter("[" + attr + "]").Length() > 0 {
				return attr
			}
		}
	}
	return ""
}

func presentClasses(root *goquery.Selection, classes ...string) []string {
	var found []string
	for _, c := range classes {
		if root.Find("." + c).Length() > 0 {
			found = append(found, c)
		}
	}
	return found
}

func dotted(classes []string) []string {
	out := make([]string, 0, len(classes))
	for _, c := range classes {
		out = append(out, "."+c)
	}
	return out
}
