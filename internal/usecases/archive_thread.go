package usecases

import (
	"context"
	"fmt"

	"forum-harvester/internal/domain"
	"forum-harvester/pkg/log"
)

// ThreadSink persists an exported thread.
type ThreadSink interface {
	Save(ctx context.Context, thread *domain.ThreadExport) error
}

// ArchiveThreadUseCase scrapes a thread and hands the export to every sink.
type ArchiveThreadUseCase struct {
	scraper *ScrapeThreadUseCase
	sinks   []ThreadSink
}

// NewArchiveThreadUseCase creates a new ArchiveThreadUseCase.
func NewArchiveThreadUseCase(scraper *ScrapeThreadUseCase, sinks ...ThreadSink) *ArchiveThreadUseCase {
	return &ArchiveThreadUseCase{
		scraper: scraper,
		sinks:   sinks,
	}
}

// Execute scrapes threadURL and saves the export. A thread without posts is
// returned as domain.ErrNoPosts and not saved. The first failing sink stops
// the run.
func (uc *ArchiveThreadUseCase) Execute(ctx context.Context, threadURL string, maxPages int) (*domain.ThreadExport, error) {
	thread, err := uc.scraper.Execute(ctx, threadURL, maxPages)
	if err != nil {
		return nil, err
	}
	if len(thread.Posts) == 0 {
		return nil, fmt.Errorf("%s: %w", threadURL, domain.ErrNoPosts)
	}

	export := domain.NewThreadExport(thread)
	for _, sink := range uc.sinks {
		if err := sink.Save(ctx, export); err != nil {
			return nil, fmt.Errorf("save thread %s: %w", export.ThreadID, err)
		}
	}

	log.GlobalDebugCtx(ctx, "thread archived", "thread_id", export.ThreadID, "sinks", len(uc.sinks))
	return export, nil
}
