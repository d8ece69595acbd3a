package config

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
	"sync"
	"time"

	"forum-harvester/internal/adapters/fetch"
	"forum-harvester/internal/patterns"
	"forum-harvester/pkg/log"
)

// SitesVersion is the current site profiles schema.
const SitesVersion = 2

// SiteProfile is what the cookie collaborator saved for one forum.
type SiteProfile struct {
	Domain       string               `json:"domain,omitempty"`
	URL          string               `json:"url,omitempty"`
	CookieString string               `json:"string,omitempty"`
	CookieDict   map[string]string    `json:"dict,omitempty"`
	Patterns     *patterns.PatternSet `json:"patterns,omitempty"`
}

// Cookies returns the profile's cookies, preferring the raw header string.
func (p SiteProfile) Cookies() []*http.Cookie {
	if p.CookieString != "" {
		return fetch.ParseCookieString(p.CookieString)
	}
	return fetch.CookiesFromMap(p.CookieDict)
}

// SiteProfiles is the on-disk document, keyed by host.
type SiteProfiles struct {
	Version int                    `json:"version"`
	Domains map[string]SiteProfile `json:"domains"`
}

// legacyDocument covers both historical shapes: the single-domain file
// (domain/url/string/dict at top level) and the unversioned multi-domain file.
type legacyDocument struct {
	Version json.RawMessage        `json:"version"`
	Domains map[string]SiteProfile `json:"domains"`
	SiteProfile
}

// ParseSiteProfiles decodes any known schema version and migrates it to
// the current one.
func ParseSiteProfiles(data []byte) (*SiteProfiles, error) {
	var doc legacyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse site profiles: %w", err)
	}

	out := &SiteProfiles{Version: SitesVersion, Domains: make(map[string]SiteProfile)}
	switch {
	case doc.Domains != nil:
		for host, p := range doc.Domains {
			out.Domains[normalizeHost(host)] = normalizeProfile(host, p)
		}
	case doc.CookieString != "" || doc.CookieDict != nil:
		host := doc.Domain
		if host == "" {
			host = hostOf(doc.URL)
		}
		if host == "" {
			host = "unknown"
		}
		out.Domains[normalizeHost(host)] = normalizeProfile(host, doc.SiteProfile)
	}
	return out, nil
}

func normalizeProfile(host string, p SiteProfile) SiteProfile {
	if p.Domain == "" {
		p.Domain = host
	}
	if p.Patterns != nil {
		p.Patterns.Normalize()
	}
	return p
}

// Lookup finds the profile for a page URL's host, with or without "www.".
func (s *SiteProfiles) Lookup(rawURL string) (SiteProfile, bool) {
	host := normalizeHost(hostOf(rawURL))
	if host == "" {
		return SiteProfile{}, false
	}
	p, ok := s.Domains[host]
	return p, ok
}

// Put stores or replaces the profile for host.
func (s *SiteProfiles) Put(host string, p SiteProfile) {
	if s.Domains == nil {
		s.Domains = make(map[string]SiteProfile)
	}
	s.Domains[normalizeHost(host)] = normalizeProfile(host, p)
}

// Marshal renders the document in the current schema.
func (s *SiteProfiles) Marshal() ([]byte, error) {
	s.Version = SitesVersion
	return json.MarshalIndent(s, "", "  ")
}

func hostOf(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" {
		// Bare hosts ("forum.example.com") are accepted too.
		if !strings.ContainsAny(rawURL, "/:") {
			return strings.TrimSpace(rawURL)
		}
		return ""
	}
	return u.Hostname()
}

func normalizeHost(host string) string {
	return strings.TrimPrefix(strings.ToLower(strings.TrimSpace(host)), "www.")
}

// SiteRegistry serves site profiles from a file and reloads it when the
// file changes on disk.
type SiteRegistry struct {
	path string

	mu          sync.RWMutex
	profiles    *SiteProfiles
	lastModTime time.Time
}

// LoadSites reads the profiles file. A missing file yields an empty registry.
func LoadSites(path string) (*SiteRegistry, error) {
	r := &SiteRegistry{path: path, profiles: &SiteProfiles{Version: SitesVersion, Domains: map[string]SiteProfile{}}}
	if err := r.reload(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}
	return r, nil
}

func (r *SiteRegistry) reload() error {
	info, err := os.Stat(r.path)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		return err
	}
	profiles, err := ParseSiteProfiles(data)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles = profiles
	r.lastModTime = info.ModTime()
	return nil
}

// Watch polls the file every interval until ctx ends, reloading on change.
func (r *SiteRegistry) Watch(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.reloadIfChanged()
		}
	}
}

func (r *SiteRegistry) reloadIfChanged() {
	info, err := os.Stat(r.path)
	if err != nil {
		return
	}
	r.mu.RLock()
	changed := info.ModTime().After(r.lastModTime)
	r.mu.RUnlock()
	if !changed {
		return
	}
	if err := r.reload(); err != nil {
		log.GlobalWarn("site profiles reload failed", "path", r.path, "error", err)
		return
	}
	log.GlobalInfo("site profiles reloaded", "path", r.path)
}

// Lookup returns the profile for the URL's host.
func (r *SiteRegistry) Lookup(rawURL string) (SiteProfile, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.profiles.Lookup(rawURL)
}

// SavePatterns attaches a pattern set to the host's profile and rewrites
// the file in the current schema.
func (r *SiteRegistry) SavePatterns(rawURL string, set *patterns.PatternSet) error {
	host := hostOf(rawURL)
	if host == "" {
		return fmt.Errorf("no host in %q", rawURL)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p := r.profiles.Domains[normalizeHost(host)]
	if p.URL == "" {
		u, _ := url.Parse(rawURL)
		p.URL = u.Scheme + "://" + u.Host
	}
	p.Patterns = set
	r.profiles.Put(host, p)

	data, err := r.profiles.Marshal()
	if err != nil {
		return err
	}
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return fmt.Errorf("write site profiles: %w", err)
	}
	if info, err := os.Stat(r.path); err == nil {
		r.lastModTime = info.ModTime()
	}
	return nil
}
