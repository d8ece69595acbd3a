package domain

import (
	"net/url"
	"strings"
)

type socialPlatform struct {
	host     string
	platform string
}

// socialPlatforms is evaluated top to bottom; the first matching row wins.
var socialPlatforms = []socialPlatform{
	{"tiktok.com", "tiktok"},
	{"twitter.com", "twitter"},
	{"x.com", "x"},
	{"instagram.com", "instagram"},
	{"facebook.com", "facebook"},
	{"onlyfans.com", "onlyfans"},
	{"fansly.com", "fansly"},
	{"patreon.com", "patreon"},
	{"youtube.com", "youtube"},
	{"youtu.be", "youtube"},
	{"snapchat.com", "snapchat"},
	{"reddit.com", "reddit"},
	{"twitch.tv", "twitch"},
	{"discord.gg", "discord"},
	{"discord.com", "discord"},
	{"telegram.org", "telegram"},
	{"t.me", "telegram"},
	{"linkedin.com", "linkedin"},
	{"pinterest.com", "pinterest"},
	{"tumblr.com", "tumblr"},
	{"vimeo.com", "vimeo"},
	{"threads.net", "threads"},
	{"bluesky.social", "bluesky"},
}

// ClassifyPlatform matches the link's host against the social table.
// A row matches the host itself or any subdomain of it.
func ClassifyPlatform(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.ToLower(u.Hostname())
	for _, p := range socialPlatforms {
		if host == p.host || strings.HasSuffix(host, "."+p.host) {
			return p.platform, true
		}
	}
	return "", false
}

// AggregateSocialLinks scans every post's links in order and returns each
// social platform link once, retagged with its platform name.
func AggregateSocialLinks(posts []Post) []Link {
	var social []Link
	seen := make(map[string]bool)

	for _, post := range posts {
		for _, link := range post.Links {
			platform, ok := ClassifyPlatform(link.URL)
			if !ok {
				continue
			}
			key := socialKey(link.URL)
			if seen[key] {
				continue
			}
			seen[key] = true
			social = append(social, Link{
				URL:      link.URL,
				Text:     link.Text,
				LinkType: LinkType(platform),
			})
		}
	}

	return social
}

// socialKey normalizes a URL for deduplication: lowercased host without
// "www.", path without trailing slash, query kept.
func socialKey(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	key := host + strings.TrimRight(u.EscapedPath(), "/")
	if u.RawQuery != "" {
		key += "?" + u.RawQuery
	}
	return key
}
