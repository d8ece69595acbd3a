package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var (
	pageSegmentRe = regexp.MustCompile(`page-\d+`)
	threadIDRe    = regexp.MustCompile(`/threads/(?:[^/]*\.)?(\d+)(?:[/?#]|$)`)
)

// ThreadID extracts the numeric thread id from a thread URL, or "".
func ThreadID(threadURL string) string {
	if m := threadIDRe.FindStringSubmatch(threadURL); m != nil {
		return m[1]
	}
	return ""
}

// PageURL returns the URL of page n of a thread. An existing page-N segment
// is replaced; otherwise one is appended to the path.
func PageURL(threadURL string, n int) string {
	if n <= 1 {
		return threadURL
	}
	segment := fmt.Sprintf("page-%d", n)

	u, err := url.Parse(threadURL)
	if err != nil {
		if pageSegmentRe.MatchString(threadURL) {
			return pageSegmentRe.ReplaceAllString(threadURL, segment)
		}
		return strings.TrimRight(threadURL, "/") + "/" + segment
	}

	if pageSegmentRe.MatchString(u.Path) {
		u.Path = pageSegmentRe.ReplaceAllString(u.Path, segment)
	} else {
		u.Path = strings.TrimRight(u.Path, "/") + "/" + segment
	}
	u.RawPath = ""
	return u.String()
}
