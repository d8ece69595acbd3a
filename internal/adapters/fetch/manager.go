// Package fetch retrieves forum pages, escalating from a plain HTTP client to
// a rendered browser session when the site challenges automated clients.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"forum-harvester/internal/domain"
	"forum-harvester/pkg/log"

	"github.com/PuerkitoBio/goquery"
)

// ChallengeMarkers are text fragments only present on the anti-bot interstitial.
var ChallengeMarkers = []string{"Just a moment", "Checking your browser"}

const (
	cookiesHint   = "the forum may be blocking automated requests: add cookies from a logged-in browser session, or check whether the forum requires login"
	clearanceHint = "the challenge was not passed: log in with a browser, wait for the challenge to complete and save fresh cookies for this site"
)

// Renderer is a browser tab that executes page scripts.
type Renderer interface {
	Navigate(ctx context.Context, url string) error
	HTML(ctx context.Context) (string, error)
	// WaitFor blocks until an element matches selector or timeout elapses.
	WaitFor(ctx context.Context, selector string, timeout time.Duration) error
	Close()
}

// RendererFactory starts a rendered session seeded with the given cookies.
type RendererFactory func(ctx context.Context, cookies []*http.Cookie) (Renderer, error)

// Config controls both fetch tiers. Zero durations fall back to defaults.
type Config struct {
	// BaseURL scopes the cookie jar and the browser cookies.
	BaseURL   string
	UserAgent string
	Headers   map[string]string
	Cookies   []*http.Cookie

	// Delay is applied before every lightweight request.
	Delay   time.Duration
	Timeout time.Duration

	// ReadySelectors are the post container candidates the rendered tier waits for.
	ReadySelectors []string
	SettleWait     time.Duration
	ChallengeWait  time.Duration
	ReadyTimeout   time.Duration
	// MinContentLength is the shortest rendered page accepted as real content.
	MinContentLength int

	NewRenderer RendererFactory
}

func (c *Config) withDefaults() {
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if len(c.ReadySelectors) == 0 {
		c.ReadySelectors = []string{"article.message", ".message", ".post"}
	}
	if c.SettleWait == 0 {
		c.SettleWait = 3 * time.Second
	}
	if c.ChallengeWait == 0 {
		c.ChallengeWait = 8 * time.Second
	}
	if c.ReadyTimeout == 0 {
		c.ReadyTimeout = 15 * time.Second
	}
	if c.MinContentLength == 0 {
		c.MinContentLength = 1000
	}
}

// Manager owns the cookie jar, the Referer chain and at most one rendered
// session. It is meant to serve a single sequential scrape.
type Manager struct {
	cfg    Config
	base   *url.URL
	client *http.Client
	sleep  func(ctx context.Context, d time.Duration) error

	lastURL string

	mu       sync.Mutex
	renderer Renderer
}

// NewManager creates a fetch manager for one site.
func NewManager(cfg Config) (*Manager, error) {
	cfg.withDefaults()

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Host == "" {
		return nil, fmt.Errorf("%w: base %q", domain.ErrInvalidThreadURL, cfg.BaseURL)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	if len(cfg.Cookies) > 0 {
		jar.SetCookies(base, cfg.Cookies)
	}

	return &Manager{
		cfg:    cfg,
		base:   base,
		client: &http.Client{Jar: jar, Timeout: cfg.Timeout},
		sleep:  sleepCtx,
	}, nil
}

// Fetch retrieves and parses pageURL. Every failure is a *domain.FetchError.
func (m *Manager) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if err := m.sleep(ctx, m.cfg.Delay); err != nil {
		return nil, &domain.FetchError{URL: pageURL, Tier: domain.TierHTTP, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, &domain.FetchError{URL: pageURL, Tier: domain.TierHTTP, Err: err}
	}
	applyHeaders(req, m.cfg.UserAgent, m.lastURL, m.cfg.Headers)

	resp, err := m.client.Do(req)
	if err != nil {
		return nil, &domain.FetchError{URL: pageURL, Tier: domain.TierHTTP, Err: err}
	}
	defer resp.Body.Close()
	m.lastURL = pageURL

	switch {
	case resp.StatusCode == http.StatusForbidden:
		if hasClearance(m.client.Jar.Cookies(m.base)) {
			log.GlobalWarnCtx(ctx, "forbidden with challenge clearance, switching to rendered tier", "url", pageURL)
			return m.fetchRendered(ctx, pageURL)
		}
		return nil, &domain.FetchError{
			URL:        pageURL,
			Tier:       domain.TierHTTP,
			StatusCode: resp.StatusCode,
			Hint:       cookiesHint,
			Err:        domain.ErrCookiesRequired,
		}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &domain.FetchError{URL: pageURL, Tier: domain.TierHTTP, StatusCode: resp.StatusCode}
	}

	body, err := decodedBody(resp)
	if err != nil {
		return nil, &domain.FetchError{URL: pageURL, Tier: domain.TierHTTP, StatusCode: resp.StatusCode, Err: err}
	}
	defer body.Close()

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, &domain.FetchError{URL: pageURL, Tier: domain.TierHTTP, StatusCode: resp.StatusCode, Err: err}
	}
	return doc, nil
}

// fetchRendered loads pageURL in the shared browser session.
func (m *Manager) fetchRendered(ctx context.Context, pageURL string) (*goquery.Document, error) {
	fail := func(err error, hint string) error {
		return &domain.FetchError{URL: pageURL, Tier: domain.TierRendered, Hint: hint, Err: err}
	}

	r, err := m.session(ctx)
	if err != nil {
		return nil, fail(fmt.Errorf("start browser: %w", err), "")
	}

	if err := r.Navigate(ctx, pageURL); err != nil {
		return nil, fail(err, "")
	}
	if err := m.sleep(ctx, m.cfg.SettleWait); err != nil {
		return nil, fail(err, "")
	}

	html, err := r.HTML(ctx)
	if err != nil {
		return nil, fail(err, "")
	}
	if isChallenge(html) {
		log.GlobalInfoCtx(ctx, "challenge page detected, waiting", "url", pageURL, "wait", m.cfg.ChallengeWait.String())
		if err := m.sleep(ctx, m.cfg.ChallengeWait); err != nil {
			return nil, fail(err, "")
		}
	}

	selector := strings.Join(m.cfg.ReadySelectors, ", ")
	if err := r.WaitFor(ctx, selector, m.cfg.ReadyTimeout); err != nil {
		if ctx.Err() != nil {
			return nil, fail(ctx.Err(), "")
		}
		log.GlobalWarnCtx(ctx, "timeout waiting for posts, checking content", "url", pageURL, "error", err)
	}

	html, err = r.HTML(ctx)
	if err != nil {
		return nil, fail(err, "")
	}
	if len(html) < m.cfg.MinContentLength || isChallenge(html) {
		return nil, fail(domain.ErrChallengeBlocked, clearanceHint)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fail(err, "")
	}
	return doc, nil
}

// session returns the rendered session, starting it on first use.
func (m *Manager) session(ctx context.Context) (Renderer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.renderer != nil {
		return m.renderer, nil
	}
	if m.cfg.NewRenderer == nil {
		return nil, errors.New("no rendered tier configured")
	}

	log.GlobalInfoCtx(ctx, "starting browser session, reused for all pages")
	r, err := m.cfg.NewRenderer(ctx, m.client.Jar.Cookies(m.base))
	if err != nil {
		return nil, err
	}
	m.renderer = r
	return r, nil
}

// SessionActive reports whether a rendered session is running.
func (m *Manager) SessionActive() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.renderer != nil
}

// ReleaseSession tears down the rendered session if one was started.
// It is safe to call any number of times.
func (m *Manager) ReleaseSession() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.renderer == nil {
		return
	}
	m.renderer.Close()
	m.renderer = nil
	log.GlobalInfo("browser session closed")
}

func isChallenge(html string) bool {
	for _, marker := range ChallengeMarkers {
		if strings.Contains(html, marker) {
			return true
		}
	}
	return false
}

// sleepCtx pauses for d unless ctx ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
