package usecases_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"forum-harvester/internal/adapters/scraper"
	"forum-harvester/internal/domain"
	"forum-harvester/internal/patterns"
	"forum-harvester/internal/usecases"
	"forum-harvester/test/fixtures"

	"github.com/PuerkitoBio/goquery"
)

// MockFetcher serves canned pages by URL.
type MockFetcher struct {
	pages    map[string]string
	errs     map[string]error
	fetched  []string
	released int
}

func NewMockFetcher() *MockFetcher {
	return &MockFetcher{pages: make(map[string]string), errs: make(map[string]error)}
}

func (m *MockFetcher) Fetch(ctx context.Context, url string) (*goquery.Document, error) {
	m.fetched = append(m.fetched, url)
	if err, ok := m.errs[url]; ok {
		return nil, err
	}
	html, ok := m.pages[url]
	if !ok {
		return nil, &domain.FetchError{URL: url, Tier: domain.TierHTTP, StatusCode: http.StatusNotFound}
	}
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

func (m *MockFetcher) ReleaseSession() {
	m.released++
}

// MockOpener hands out one session around a MockFetcher.
type MockOpener struct {
	fetcher *MockFetcher
	err     error
	opened  int
}

func (m *MockOpener) Open(ctx context.Context, url string) (*usecases.Session, error) {
	m.opened++
	if m.err != nil {
		return nil, m.err
	}
	extractor, err := scraper.NewExtractor(fixtures.BaseURL, nil)
	if err != nil {
		return nil, err
	}
	return &usecases.Session{Fetcher: m.fetcher, Extractor: extractor}, nil
}

// MockSink records saved threads.
type MockSink struct {
	saved []*domain.ThreadExport
	err   error
}

func (m *MockSink) Save(ctx context.Context, thread *domain.ThreadExport) error {
	if m.err != nil {
		return m.err
	}
	m.saved = append(m.saved, thread)
	return nil
}

// MockCache is a mock implementation of ThreadCache.
type MockCache struct {
	threads map[string]*domain.ThreadExport
}

func NewMockCache() *MockCache {
	return &MockCache{threads: make(map[string]*domain.ThreadExport)}
}

func (m *MockCache) key(threadURL string, maxPages int) string {
	return fmt.Sprintf("%s#%d", threadURL, maxPages)
}

func (m *MockCache) Get(threadURL string, maxPages int) (*domain.ThreadExport, bool) {
	thread, found := m.threads[m.key(threadURL, maxPages)]
	return thread, found
}

func (m *MockCache) Set(threadURL string, maxPages int, thread *domain.ThreadExport) {
	m.threads[m.key(threadURL, maxPages)] = thread
}

func threePageFetcher() *MockFetcher {
	f := NewMockFetcher()
	f.pages[fixtures.ThreadURL] = fixtures.GenerateThreadPage()
	f.pages[domain.PageURL(fixtures.ThreadURL, 2)] = fixtures.GeneratePostPage(2, 2)
	f.pages[domain.PageURL(fixtures.ThreadURL, 3)] = fixtures.GeneratePostPage(3, 2)
	return f
}

func postIDs(posts []domain.Post) []string {
	ids := make([]string, 0, len(posts))
	for _, p := range posts {
		ids = append(ids, p.PostID)
	}
	return ids
}

// ScrapeThreadUseCase tests

func TestScrapeThreadUseCase_Execute_AllPages(t *testing.T) {
	// Arrange
	fetcher := threePageFetcher()
	uc := usecases.NewScrapeThreadUseCase(&MockOpener{fetcher: fetcher})

	// Act
	thread, err := uc.Execute(context.Background(), fixtures.ThreadURL, 0)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := strings.Join(postIDs(thread.Posts), ",")
	if got != "post-101,102,post-201,post-202,post-301,post-302" {
		t.Errorf("post ids: got %v, want post-101,102,post-201..post-302", got)
	}
	if thread.ThreadID != "4242" {
		t.Errorf("ThreadID: got %v, want 4242", thread.ThreadID)
	}
	if thread.Title != "Summer photos" {
		t.Errorf("Title: got %q, want Summer photos", thread.Title)
	}
	if thread.TotalPages != 3 || thread.CurrentPage != 3 {
		t.Errorf("pages: got %d/%d, want 3/3", thread.CurrentPage, thread.TotalPages)
	}
	if fetcher.released != 1 {
		t.Errorf("released: got %d, want 1", fetcher.released)
	}
}

func TestScrapeThreadUseCase_Execute_SkipsFailedPage(t *testing.T) {
	// Arrange
	fetcher := threePageFetcher()
	page2 := domain.PageURL(fixtures.ThreadURL, 2)
	fetcher.errs[page2] = &domain.FetchError{URL: page2, Tier: domain.TierHTTP, StatusCode: http.StatusBadGateway}
	uc := usecases.NewScrapeThreadUseCase(&MockOpener{fetcher: fetcher})

	// Act
	thread, err := uc.Execute(context.Background(), fixtures.ThreadURL, 0)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := strings.Join(postIDs(thread.Posts), ",")
	if got != "post-101,102,post-301,post-302" {
		t.Errorf("post ids: got %v, want pages 1 and 3", got)
	}
	if thread.CurrentPage != 3 {
		t.Errorf("CurrentPage: got %d, want 3", thread.CurrentPage)
	}
	if len(fetcher.fetched) != 3 {
		t.Errorf("fetches: got %d, want 3", len(fetcher.fetched))
	}
}

func TestScrapeThreadUseCase_Execute_LastPageFails_KeepsPreviousCurrentPage(t *testing.T) {
	// Arrange
	fetcher := threePageFetcher()
	delete(fetcher.pages, domain.PageURL(fixtures.ThreadURL, 3))
	uc := usecases.NewScrapeThreadUseCase(&MockOpener{fetcher: fetcher})

	// Act
	thread, err := uc.Execute(context.Background(), fixtures.ThreadURL, 0)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(thread.Posts) != 4 {
		t.Errorf("posts: got %d, want 4", len(thread.Posts))
	}
	if thread.CurrentPage != 2 {
		t.Errorf("CurrentPage: got %d, want 2", thread.CurrentPage)
	}
	if thread.TotalPages != 3 {
		t.Errorf("TotalPages: got %d, want 3", thread.TotalPages)
	}
}

func TestScrapeThreadUseCase_Execute_EmptyLastPage_KeepsPreviousCurrentPage(t *testing.T) {
	// Arrange
	fetcher := threePageFetcher()
	fetcher.pages[domain.PageURL(fixtures.ThreadURL, 3)] = fixtures.GenerateEmptyPage()
	uc := usecases.NewScrapeThreadUseCase(&MockOpener{fetcher: fetcher})

	// Act
	thread, err := uc.Execute(context.Background(), fixtures.ThreadURL, 0)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if thread.CurrentPage != 2 {
		t.Errorf("CurrentPage: got %d, want 2", thread.CurrentPage)
	}
}

func TestScrapeThreadUseCase_Execute_SkipsEmptyPage(t *testing.T) {
	// Arrange
	fetcher := threePageFetcher()
	fetcher.pages[domain.PageURL(fixtures.ThreadURL, 2)] = fixtures.GenerateEmptyPage()
	uc := usecases.NewScrapeThreadUseCase(&MockOpener{fetcher: fetcher})

	// Act
	thread, err := uc.Execute(context.Background(), fixtures.ThreadURL, 0)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(thread.Posts) != 4 {
		t.Errorf("posts: got %d, want 4", len(thread.Posts))
	}
}

func TestScrapeThreadUseCase_Execute_AggregatesSocialLinks(t *testing.T) {
	// Arrange
	uc := usecases.NewScrapeThreadUseCase(&MockOpener{fetcher: threePageFetcher()})

	// Act
	thread, err := uc.Execute(context.Background(), fixtures.ThreadURL, 0)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(thread.SocialLinks) != 2 {
		t.Fatalf("social links: got %d, want 2 (%v)", len(thread.SocialLinks), thread.SocialLinks)
	}
	if thread.SocialLinks[0].LinkType != "twitter" {
		t.Errorf("first platform: got %v, want twitter", thread.SocialLinks[0].LinkType)
	}
	if thread.SocialLinks[1].LinkType != "instagram" {
		t.Errorf("second platform: got %v, want instagram", thread.SocialLinks[1].LinkType)
	}
}

func TestScrapeThreadUseCase_Execute_MaxPages(t *testing.T) {
	// Arrange
	fetcher := threePageFetcher()
	uc := usecases.NewScrapeThreadUseCase(&MockOpener{fetcher: fetcher})

	// Act
	thread, err := uc.Execute(context.Background(), fixtures.ThreadURL, 2)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(fetcher.fetched) != 2 {
		t.Errorf("fetches: got %d, want 2", len(fetcher.fetched))
	}
	if thread.CurrentPage != 2 || thread.TotalPages != 3 {
		t.Errorf("pages: got %d/%d, want 2/3", thread.CurrentPage, thread.TotalPages)
	}
}

func TestScrapeThreadUseCase_Execute_FirstPageFailure(t *testing.T) {
	// Arrange
	fetcher := NewMockFetcher()
	fetcher.errs[fixtures.ThreadURL] = &domain.FetchError{
		URL:        fixtures.ThreadURL,
		Tier:       domain.TierHTTP,
		StatusCode: http.StatusForbidden,
		Err:        domain.ErrCookiesRequired,
	}
	uc := usecases.NewScrapeThreadUseCase(&MockOpener{fetcher: fetcher})

	// Act
	thread, err := uc.Execute(context.Background(), fixtures.ThreadURL, 0)

	// Assert
	if thread != nil {
		t.Errorf("thread: got %+v, want nil", thread)
	}
	if !errors.Is(err, domain.ErrFetchFailed) {
		t.Errorf("error: got %v, want ErrFetchFailed", err)
	}
	if !errors.Is(err, domain.ErrCookiesRequired) {
		t.Errorf("error: got %v, want ErrCookiesRequired", err)
	}
	if fetcher.released != 1 {
		t.Errorf("released: got %d, want 1", fetcher.released)
	}
}

func TestScrapeThreadUseCase_Execute_OpenError(t *testing.T) {
	// Arrange
	opener := &MockOpener{err: domain.ErrInvalidThreadURL}
	uc := usecases.NewScrapeThreadUseCase(opener)

	// Act
	_, err := uc.Execute(context.Background(), "not a url", 0)

	// Assert
	if !errors.Is(err, domain.ErrInvalidThreadURL) {
		t.Errorf("error: got %v, want ErrInvalidThreadURL", err)
	}
}

func TestScrapeThreadUseCase_Execute_Idempotent(t *testing.T) {
	// Arrange
	uc := usecases.NewScrapeThreadUseCase(&MockOpener{fetcher: threePageFetcher()})

	// Act
	first, err1 := uc.Execute(context.Background(), fixtures.ThreadURL, 0)
	second, err2 := uc.Execute(context.Background(), fixtures.ThreadURL, 0)

	// Assert
	if err1 != nil || err2 != nil {
		t.Fatalf("unexpected errors: %v, %v", err1, err2)
	}
	a := strings.Join(postIDs(first.Posts), ",")
	b := strings.Join(postIDs(second.Posts), ",")
	if a != b {
		t.Errorf("post ids differ: %v vs %v", a, b)
	}
}

// ArchiveThreadUseCase tests

func TestArchiveThreadUseCase_Execute_SavesToEverySink(t *testing.T) {
	// Arrange
	first, second := &MockSink{}, &MockSink{}
	scrape := usecases.NewScrapeThreadUseCase(&MockOpener{fetcher: threePageFetcher()})
	uc := usecases.NewArchiveThreadUseCase(scrape, first, second)

	// Act
	export, err := uc.Execute(context.Background(), fixtures.ThreadURL, 1)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if export.TotalPosts != 2 {
		t.Errorf("TotalPosts: got %d, want 2", export.TotalPosts)
	}
	if len(first.saved) != 1 || len(second.saved) != 1 {
		t.Errorf("saves: got %d and %d, want 1 and 1", len(first.saved), len(second.saved))
	}
}

func TestArchiveThreadUseCase_Execute_NoPosts(t *testing.T) {
	// Arrange
	fetcher := NewMockFetcher()
	fetcher.pages[fixtures.ThreadURL] = fixtures.GenerateEmptyPage()
	sink := &MockSink{}
	uc := usecases.NewArchiveThreadUseCase(usecases.NewScrapeThreadUseCase(&MockOpener{fetcher: fetcher}), sink)

	// Act
	_, err := uc.Execute(context.Background(), fixtures.ThreadURL, 0)

	// Assert
	if !errors.Is(err, domain.ErrNoPosts) {
		t.Errorf("error: got %v, want ErrNoPosts", err)
	}
	if len(sink.saved) != 0 {
		t.Errorf("saves: got %d, want 0", len(sink.saved))
	}
}

func TestArchiveThreadUseCase_Execute_SinkError(t *testing.T) {
	// Arrange
	sinkErr := errors.New("disk full")
	scrape := usecases.NewScrapeThreadUseCase(&MockOpener{fetcher: threePageFetcher()})
	uc := usecases.NewArchiveThreadUseCase(scrape, &MockSink{err: sinkErr})

	// Act
	_, err := uc.Execute(context.Background(), fixtures.ThreadURL, 1)

	// Assert
	if !errors.Is(err, sinkErr) {
		t.Errorf("error: got %v, want %v", err, sinkErr)
	}
}

// GetThreadUseCase tests

func TestGetThreadUseCase_Execute_CacheHit(t *testing.T) {
	// Arrange
	cache := NewMockCache()
	cached := &domain.ThreadExport{ThreadID: "4242", Title: "Cached"}
	cache.Set(fixtures.ThreadURL, 0, cached)
	opener := &MockOpener{fetcher: NewMockFetcher()}
	archiver := usecases.NewArchiveThreadUseCase(usecases.NewScrapeThreadUseCase(opener))
	uc := usecases.NewGetThreadUseCase(cache, archiver)

	// Act
	thread, err := uc.Execute(context.Background(), fixtures.ThreadURL, 0)

	// Assert
	if err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if thread.Title != "Cached" {
		t.Errorf("Title: got %v, want Cached", thread.Title)
	}
	if opener.opened != 0 {
		t.Errorf("sessions opened: got %d, want 0", opener.opened)
	}
}

func TestGetThreadUseCase_Execute_CacheMiss(t *testing.T) {
	// Arrange
	cache := NewMockCache()
	opener := &MockOpener{fetcher: threePageFetcher()}
	archiver := usecases.NewArchiveThreadUseCase(usecases.NewScrapeThreadUseCase(opener))
	uc := usecases.NewGetThreadUseCase(cache, archiver)

	// Act
	thread, err := uc.Execute(context.Background(), fixtures.ThreadURL, 1)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, found := cache.Get(fixtures.ThreadURL, 1); !found {
		t.Error("thread should be cached after scrape")
	}
	if thread.ThreadID != "4242" {
		t.Errorf("ThreadID: got %v, want 4242", thread.ThreadID)
	}
}

func TestGetThreadUseCase_Execute_ErrorNotCached(t *testing.T) {
	// Arrange
	cache := NewMockCache()
	opener := &MockOpener{fetcher: NewMockFetcher()}
	archiver := usecases.NewArchiveThreadUseCase(usecases.NewScrapeThreadUseCase(opener))
	uc := usecases.NewGetThreadUseCase(cache, archiver)

	// Act
	_, err := uc.Execute(context.Background(), fixtures.ThreadURL, 0)

	// Assert
	if err == nil {
		t.Error("expected error, got nil")
	}
	if len(cache.threads) != 0 {
		t.Errorf("cache size: got %d, want 0", len(cache.threads))
	}
}

// DetectPatternsUseCase tests

type MockPatternStore struct {
	saved map[string]*patterns.PatternSet
}

func (m *MockPatternStore) SavePatterns(url string, set *patterns.PatternSet) error {
	if m.saved == nil {
		m.saved = make(map[string]*patterns.PatternSet)
	}
	m.saved[url] = set
	return nil
}

func TestDetectPatternsUseCase_Execute_Save(t *testing.T) {
	// Arrange
	fetcher := threePageFetcher()
	store := &MockPatternStore{}
	uc := usecases.NewDetectPatternsUseCase(&MockOpener{fetcher: fetcher}, store)

	// Act
	set, err := uc.Execute(context.Background(), fixtures.ThreadURL, true)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if set.ThreadURLSample != fixtures.ThreadURL {
		t.Errorf("ThreadURLSample: got %v, want %v", set.ThreadURLSample, fixtures.ThreadURL)
	}
	if len(set.Selectors.PostContainer) == 0 {
		t.Error("expected detected post containers")
	}
	if store.saved[fixtures.ThreadURL] != set {
		t.Error("detected set should be saved for the sample URL")
	}
	if fetcher.released != 1 {
		t.Errorf("released: got %d, want 1", fetcher.released)
	}
}

func TestDetectPatternsUseCase_Execute_SaveWithoutStore(t *testing.T) {
	// Arrange
	uc := usecases.NewDetectPatternsUseCase(&MockOpener{fetcher: threePageFetcher()}, nil)

	// Act
	set, err := uc.Execute(context.Background(), fixtures.ThreadURL, true)

	// Assert
	if err == nil {
		t.Error("expected error, got nil")
	}
	if set == nil {
		t.Error("detected set should still be returned")
	}
}

// ListThreadsUseCase tests

func TestListThreadsUseCase_Execute(t *testing.T) {
	// Arrange
	forumURL := fixtures.BaseURL + "/forums/photos.7/"
	fetcher := NewMockFetcher()
	fetcher.pages[forumURL] = fixtures.GenerateForumListing()
	uc := usecases.NewListThreadsUseCase(&MockOpener{fetcher: fetcher})

	// Act
	urls, err := uc.Execute(context.Background(), forumURL, 2)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{fixtures.BaseURL + "/threads/first.1/", fixtures.BaseURL + "/threads/second.2/"}
	if strings.Join(urls, " ") != strings.Join(want, " ") {
		t.Errorf("urls: got %v, want %v", urls, want)
	}
}

// ReadThreadUseCase tests

type MockStore struct {
	threads map[string]*domain.ThreadExport
}

func (m *MockStore) Get(ctx context.Context, threadID string) (*domain.ThreadExport, error) {
	thread, ok := m.threads[threadID]
	if !ok {
		return nil, domain.ErrThreadNotFound
	}
	return thread, nil
}

func (m *MockStore) List(ctx context.Context, limit int) ([]domain.ThreadSummary, error) {
	var out []domain.ThreadSummary
	for _, t := range m.threads {
		out = append(out, domain.ThreadSummary{ThreadID: t.ThreadID, Title: t.Title})
	}
	return out, nil
}

func TestReadThreadUseCase_Stats(t *testing.T) {
	// Arrange
	thread := &domain.ThreadExport{
		ThreadID: "1",
		Posts: []domain.PostExport{
			{Author: domain.UserExport{Username: "alice"}, Reactions: 3},
			{Author: domain.UserExport{Username: "bob"}, Reactions: 2},
			{Author: domain.UserExport{Username: "alice"}},
		},
	}
	uc := usecases.NewReadThreadUseCase(&MockStore{threads: map[string]*domain.ThreadExport{"1": thread}})

	// Act
	_, stats, err := uc.Stats(context.Background(), "1", 5)

	// Assert
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stats.Reactions != 5 || stats.UniqueAuthors != 2 {
		t.Errorf("stats: got %+v", stats)
	}
	if stats.TopAuthors[0].Username != "alice" {
		t.Errorf("top author: got %v, want alice", stats.TopAuthors[0].Username)
	}
}

func TestReadThreadUseCase_Execute_NotFound(t *testing.T) {
	// Arrange
	uc := usecases.NewReadThreadUseCase(&MockStore{threads: map[string]*domain.ThreadExport{}})

	// Act
	_, err := uc.Execute(context.Background(), "missing")

	// Assert
	if !errors.Is(err, domain.ErrThreadNotFound) {
		t.Errorf("error: got %v, want ErrThreadNotFound", err)
	}
}
