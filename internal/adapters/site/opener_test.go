package site

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"forum-harvester/internal/adapters/scraper"
	"forum-harvester/internal/config"
	"forum-harvester/internal/domain"
	"forum-harvester/internal/patterns"
	"forum-harvester/test/fixtures"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticProfiles map[string]config.SiteProfile

func (s staticProfiles) Lookup(rawURL string) (config.SiteProfile, bool) {
	for _, p := range s {
		return p, true
	}
	return config.SiteProfile{}, false
}

func testConfig() *config.Config {
	return &config.Config{UserAgent: "harvester-test/1.0", Headless: true}
}

func TestOpen_InvalidURL(t *testing.T) {
	// Arrange
	o := NewOpener(testConfig(), nil, nil)

	for _, raw := range []string{"", "forum.example.com/threads/x.1/", "ftp://forum.example.com/threads/x.1/"} {
		// Act
		_, err := o.Open(context.Background(), raw)

		// Assert
		assert.ErrorIs(t, err, domain.ErrInvalidThreadURL, raw)
	}
}

func TestOpen_PatternPrecedence(t *testing.T) {
	// Arrange
	profile := config.SiteProfile{Patterns: &patterns.PatternSet{
		Selectors: patterns.Selectors{PostContainer: []string{".site-post"}},
	}}
	override := &patterns.PatternSet{
		Selectors: patterns.Selectors{PostContainer: []string{".override-post"}},
	}
	o := NewOpener(testConfig(), staticProfiles{"forum.example.com": profile}, override)

	// Act
	session, err := o.Open(context.Background(), fixtures.ThreadURL)

	// Assert
	require.NoError(t, err)
	extractor, ok := session.Extractor.(*scraper.Extractor)
	require.True(t, ok)
	candidates := extractor.Patterns().Candidates(patterns.FieldPostContainer)
	require.GreaterOrEqual(t, len(candidates), 3)
	assert.Equal(t, []string{".override-post", ".site-post"}, candidates[:2])
}

func TestOpen_AppliesProfileCookiesAndUserAgent(t *testing.T) {
	// Arrange
	var gotCookie, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotCookie = r.Header.Get("Cookie")
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(fixtures.GenerateThreadPage()))
	}))
	defer srv.Close()

	profile := config.SiteProfile{CookieString: "xf_session=abc"}
	o := NewOpener(testConfig(), staticProfiles{"127.0.0.1": profile}, nil)
	session, err := o.Open(context.Background(), srv.URL+"/threads/summer-photos.4242/")
	require.NoError(t, err)
	defer session.Fetcher.ReleaseSession()

	// Act
	doc, err := session.Fetcher.Fetch(context.Background(), srv.URL+"/threads/summer-photos.4242/")

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "xf_session=abc", gotCookie)
	assert.Equal(t, "harvester-test/1.0", gotUA)
	assert.Len(t, session.Extractor.ExtractPosts(context.Background(), doc), 2)
}
