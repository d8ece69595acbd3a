// Package site assembles per-forum fetch and extraction sessions from the
// runtime config and the saved site profiles.
package site

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"forum-harvester/internal/adapters/fetch"
	"forum-harvester/internal/adapters/scraper"
	"forum-harvester/internal/config"
	"forum-harvester/internal/domain"
	"forum-harvester/internal/patterns"
	"forum-harvester/internal/usecases"
	"forum-harvester/pkg/log"
)

// Profiles looks up the saved profile for a page URL.
type Profiles interface {
	Lookup(rawURL string) (config.SiteProfile, bool)
}

// Opener builds a fresh session for each operation. Pattern precedence is
// the override set, then the site profile's set, then the built-in defaults.
type Opener struct {
	cfg      *config.Config
	profiles Profiles
	override *patterns.PatternSet
}

// NewOpener creates an Opener. profiles and override may be nil.
func NewOpener(cfg *config.Config, profiles Profiles, override *patterns.PatternSet) *Opener {
	return &Opener{
		cfg:      cfg,
		profiles: profiles,
		override: override,
	}
}

// Open implements usecases.SessionOpener.
func (o *Opener) Open(ctx context.Context, rawURL string) (*usecases.Session, error) {
	base, err := origin(rawURL)
	if err != nil {
		return nil, err
	}

	var profile config.SiteProfile
	found := false
	if o.profiles != nil {
		profile, found = o.profiles.Lookup(rawURL)
	}
	set := patterns.Merge(o.override, profile.Patterns)
	cookies := profile.Cookies()
	userAgent := o.cfg.ResolvedUserAgent()

	manager, err := fetch.NewManager(fetch.Config{
		BaseURL:        base,
		UserAgent:      userAgent,
		Cookies:        cookies,
		Delay:          o.cfg.Delay,
		ReadySelectors: set.Candidates(patterns.FieldPostContainer),
		NewRenderer:    fetch.NewBrowserFactory(o.cfg.BrowserConfig(base, userAgent)),
	})
	if err != nil {
		return nil, err
	}

	extractor, err := scraper.NewExtractor(base, set)
	if err != nil {
		return nil, err
	}

	log.GlobalDebugCtx(ctx, "site session opened",
		"site", base,
		"profile", found,
		"cookies", len(cookies),
		"custom_patterns", o.override != nil || profile.Patterns != nil,
	)

	return &usecases.Session{Fetcher: manager, Extractor: extractor}, nil
}

// origin returns scheme://host of an absolute http(s) URL.
func origin(rawURL string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidThreadURL, rawURL)
	}
	return u.Scheme + "://" + u.Host, nil
}
