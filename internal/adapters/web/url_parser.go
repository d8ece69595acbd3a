package web

import (
	"net/url"
	"regexp"
	"strings"

	"forum-harvester/internal/domain"
)

// threadURLRegex matches forum thread URLs, with or without a slug and with
// the forum installed under a sub-path ("/community/threads/...").
// Page segments, query and fragment are allowed and ignored for the id.
var threadURLRegex = regexp.MustCompile(
	`^https?://[^/\s]+(?:/[^\s?#]*)?/threads/(?:[^/\s?#]*\.)?(\d+)(?:[/?#]|$)`,
)

// ParseThreadURL validates a thread URL and extracts its numeric id.
// The returned URL has its fragment removed.
// Returns domain.ErrInvalidThreadURL if the URL format is invalid.
func ParseThreadURL(raw string) (threadURL string, threadID string, err error) {
	raw = strings.TrimSpace(raw)
	matches := threadURLRegex.FindStringSubmatch(raw)
	if matches == nil {
		return "", "", domain.ErrInvalidThreadURL
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", "", domain.ErrInvalidThreadURL
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u.String(), matches[1], nil
}
