package fetch

import (
	"net/http"
	"slices"
	"strings"
)

// ClearanceCookie is set by the anti-bot challenge once a browser has passed it.
const ClearanceCookie = "cf_clearance"

// ParseCookieString splits a "name=value; name2=value2" header into cookies.
// Pairs without a name are dropped.
func ParseCookieString(raw string) []*http.Cookie {
	var cookies []*http.Cookie
	for _, part := range strings.Split(raw, ";") {
		name, value, _ := strings.Cut(strings.TrimSpace(part), "=")
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		cookies = append(cookies, &http.Cookie{Name: name, Value: strings.TrimSpace(value)})
	}
	return cookies
}

// CookiesFromMap converts a name to value mapping, sorted for stable output.
func CookiesFromMap(m map[string]string) []*http.Cookie {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	slices.Sort(names)
	cookies := make([]*http.Cookie, 0, len(names))
	for _, name := range names {
		cookies = append(cookies, &http.Cookie{Name: name, Value: m[name]})
	}
	return cookies
}

func hasClearance(cookies []*http.Cookie) bool {
	for _, c := range cookies {
		if strings.Contains(c.Name, ClearanceCookie) {
			return true
		}
	}
	return false
}
