package usecases

import (
	"context"
	"fmt"

	"forum-harvester/pkg/log"
)

// ListThreadsUseCase collects thread URLs from a forum index page.
type ListThreadsUseCase struct {
	sessions SessionOpener
}

// NewListThreadsUseCase creates a new ListThreadsUseCase.
func NewListThreadsUseCase(sessions SessionOpener) *ListThreadsUseCase {
	return &ListThreadsUseCase{sessions: sessions}
}

// Execute returns up to maxThreads absolute thread URLs found on forumURL.
// maxThreads <= 0 returns all of them.
func (uc *ListThreadsUseCase) Execute(ctx context.Context, forumURL string, maxThreads int) ([]string, error) {
	session, err := uc.sessions.Open(ctx, forumURL)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer session.Fetcher.ReleaseSession()

	doc, err := session.Fetcher.Fetch(ctx, forumURL)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}

	urls := session.Extractor.ThreadURLs(doc, maxThreads)
	log.GlobalInfoCtx(ctx, "threads listed", "url", forumURL, "threads", len(urls))
	return urls, nil
}
