package usecases

import (
	"context"

	"forum-harvester/internal/domain"
	"forum-harvester/pkg/log"
)

// ThreadCache defines the interface for caching exported threads.
type ThreadCache interface {
	Get(threadURL string, maxPages int) (*domain.ThreadExport, bool)
	Set(threadURL string, maxPages int, thread *domain.ThreadExport)
}

// GetThreadUseCase handles retrieving threads with cache-first strategy.
type GetThreadUseCase struct {
	cache    ThreadCache
	archiver *ArchiveThreadUseCase
}

// NewGetThreadUseCase creates a new GetThreadUseCase.
func NewGetThreadUseCase(cache ThreadCache, archiver *ArchiveThreadUseCase) *GetThreadUseCase {
	return &GetThreadUseCase{
		cache:    cache,
		archiver: archiver,
	}
}

// Execute returns the thread, checking the cache before scraping.
func (uc *GetThreadUseCase) Execute(ctx context.Context, threadURL string, maxPages int) (*domain.ThreadExport, error) {
	if thread, found := uc.cache.Get(threadURL, maxPages); found {
		log.GlobalDebugCtx(ctx, "cache hit", "url", threadURL, "max_pages", maxPages)
		return thread, nil
	}

	log.GlobalDebugCtx(ctx, "cache miss, scraping", "url", threadURL, "max_pages", maxPages)

	thread, err := uc.archiver.Execute(ctx, threadURL, maxPages)
	if err != nil {
		return nil, err
	}

	uc.cache.Set(threadURL, maxPages, thread)

	return thread, nil
}
