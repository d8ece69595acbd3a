package usecases

import (
	"context"

	"forum-harvester/internal/domain"
)

// ThreadStore reads archived threads.
type ThreadStore interface {
	Get(ctx context.Context, threadID string) (*domain.ThreadExport, error)
	List(ctx context.Context, limit int) ([]domain.ThreadSummary, error)
}

// ReadThreadUseCase serves archived threads and their statistics.
type ReadThreadUseCase struct {
	store ThreadStore
}

// NewReadThreadUseCase creates a new ReadThreadUseCase.
func NewReadThreadUseCase(store ThreadStore) *ReadThreadUseCase {
	return &ReadThreadUseCase{store: store}
}

// Execute returns the archived thread or domain.ErrThreadNotFound.
func (uc *ReadThreadUseCase) Execute(ctx context.Context, threadID string) (*domain.ThreadExport, error) {
	if threadID == "" {
		return nil, domain.ErrThreadNotFound
	}
	return uc.store.Get(ctx, threadID)
}

// Stats returns the archived thread with its viewer statistics.
func (uc *ReadThreadUseCase) Stats(ctx context.Context, threadID string, topAuthors int) (*domain.ThreadExport, domain.ThreadStats, error) {
	thread, err := uc.Execute(ctx, threadID)
	if err != nil {
		return nil, domain.ThreadStats{}, err
	}
	return thread, domain.Summarize(thread, topAuthors), nil
}

// List returns the most recently archived threads.
func (uc *ReadThreadUseCase) List(ctx context.Context, limit int) ([]domain.ThreadSummary, error) {
	return uc.store.List(ctx, limit)
}
