package usecases

import (
	"context"
	"fmt"

	"forum-harvester/internal/domain"
	"forum-harvester/pkg/log"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

// PageFetcher retrieves parsed pages for one site and owns any rendered
// session it starts along the way.
type PageFetcher interface {
	Fetch(ctx context.Context, url string) (*goquery.Document, error)
	ReleaseSession()
}

// PageExtractor turns parsed forum pages into domain records.
type PageExtractor interface {
	ExtractMetadata(doc *goquery.Document, threadURL string) domain.Metadata
	ExtractPosts(ctx context.Context, doc *goquery.Document) []domain.Post
	ThreadURLs(doc *goquery.Document, limit int) []string
}

// Session is a fetcher and extractor configured for the site hosting a URL.
// A session serves exactly one sequential operation.
type Session struct {
	Fetcher   PageFetcher
	Extractor PageExtractor
}

// SessionOpener builds a fresh session for the site hosting url.
type SessionOpener interface {
	Open(ctx context.Context, url string) (*Session, error)
}

type scrapeState string

const (
	stateInit        scrapeState = "init"
	stateFetching    scrapeState = "fetching_page"
	stateExtracting  scrapeState = "extracting_page"
	stateNextPage    scrapeState = "next_page"
	stateAggregating scrapeState = "aggregating"
	stateDone        scrapeState = "done"
	stateFailed      scrapeState = "failed"
)

// ScrapeThreadUseCase walks the pages of a thread one at a time and
// aggregates them into a single Thread.
type ScrapeThreadUseCase struct {
	sessions SessionOpener
}

// NewScrapeThreadUseCase creates a new ScrapeThreadUseCase.
func NewScrapeThreadUseCase(sessions SessionOpener) *ScrapeThreadUseCase {
	return &ScrapeThreadUseCase{sessions: sessions}
}

// threadRun is the state of one Execute call.
type threadRun struct {
	ctx     context.Context
	url     string
	session *Session
	state   scrapeState
	thread  *domain.Thread
}

func (r *threadRun) enter(next scrapeState, page int) {
	log.GlobalDebugCtx(r.ctx, "scrape state", "from", r.state, "state", next, "page", page)
	r.state = next
}

// Execute scrapes threadURL. maxPages <= 0 scrapes every page.
// Only a failure on the first page is returned as an error: later pages
// that fail to fetch or yield no posts are logged and skipped.
func (uc *ScrapeThreadUseCase) Execute(ctx context.Context, threadURL string, maxPages int) (*domain.Thread, error) {
	ctx = log.WithFields(ctx, "scrape_id", uuid.NewString(), "url", threadURL)
	run := &threadRun{ctx: ctx, url: threadURL, state: stateInit}

	session, err := uc.sessions.Open(ctx, threadURL)
	if err != nil {
		run.enter(stateFailed, 0)
		return nil, fmt.Errorf("open session: %w", err)
	}
	run.session = session
	defer session.Fetcher.ReleaseSession()

	if err := run.firstPage(); err != nil {
		run.enter(stateFailed, 1)
		log.GlobalErrorCtx(ctx, "thread scrape failed", "page", 1, "error", err)
		return nil, err
	}

	pagesToScrape := run.thread.TotalPages
	if maxPages > 0 && maxPages < pagesToScrape {
		pagesToScrape = maxPages
	}
	log.GlobalInfoCtx(ctx, "thread pagination", "total_pages", run.thread.TotalPages, "pages_to_scrape", pagesToScrape)

	for n := 2; n <= pagesToScrape; n++ {
		if ctx.Err() != nil {
			log.GlobalWarnCtx(ctx, "scrape cancelled, keeping pages so far", "page", n, "error", ctx.Err())
			break
		}
		run.enter(stateNextPage, n)
		run.page(n)
	}

	run.enter(stateAggregating, run.thread.CurrentPage)
	run.thread.SocialLinks = domain.AggregateSocialLinks(run.thread.Posts)

	run.enter(stateDone, run.thread.CurrentPage)
	log.GlobalInfoCtx(ctx, "thread scraped",
		"thread_id", run.thread.ThreadID,
		"posts", len(run.thread.Posts),
		"social_links", len(run.thread.SocialLinks),
		"current_page", run.thread.CurrentPage,
	)

	return run.thread, nil
}

// firstPage fetches page 1, reads the thread metadata and its posts.
func (r *threadRun) firstPage() error {
	r.enter(stateFetching, 1)
	doc, err := r.session.Fetcher.Fetch(r.ctx, r.url)
	if err != nil {
		return fmt.Errorf("scrape thread: %w", err)
	}

	r.enter(stateExtracting, 1)
	meta := r.session.Extractor.ExtractMetadata(doc, r.url)
	if meta.TotalPages < 1 {
		meta.TotalPages = 1
	}
	posts := r.session.Extractor.ExtractPosts(r.ctx, doc)

	r.thread = &domain.Thread{
		ThreadID:    meta.ThreadID,
		Title:       meta.Title,
		URL:         r.url,
		StartDate:   meta.StartDate,
		Tags:        meta.Tags,
		Prefixes:    meta.Prefixes,
		Posts:       posts,
		TotalPages:  meta.TotalPages,
		CurrentPage: 1,
	}

	log.GlobalInfoCtx(r.ctx, "page extracted", "page", 1, "posts", len(posts), "title", meta.Title)
	if len(posts) == 0 {
		log.GlobalWarnCtx(r.ctx, "no posts matched on first page", "page", 1)
	}
	return nil
}

// page fetches and extracts page n, skipping it on any failure.
// CurrentPage only advances when the page contributed posts.
func (r *threadRun) page(n int) {
	pageURL := domain.PageURL(r.url, n)

	r.enter(stateFetching, n)
	doc, err := r.session.Fetcher.Fetch(r.ctx, pageURL)
	if err != nil {
		log.GlobalWarnCtx(r.ctx, "skipping page", "page", n, "page_url", pageURL, "error", err)
		return
	}

	r.enter(stateExtracting, n)
	posts := r.session.Extractor.ExtractPosts(r.ctx, doc)
	if len(posts) == 0 {
		log.GlobalWarnCtx(r.ctx, "skipping page without posts", "page", n, "page_url", pageURL)
		return
	}

	r.thread.Posts = append(r.thread.Posts, posts...)
	r.thread.CurrentPage = n
	log.GlobalInfoCtx(r.ctx, "page extracted", "page", n, "posts", len(posts))
}
