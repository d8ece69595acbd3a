package usecases

import (
	"context"
	"fmt"

	"forum-harvester/internal/patterns"
	"forum-harvester/pkg/log"
)

// PatternStore keeps detected pattern sets per site.
type PatternStore interface {
	SavePatterns(url string, set *patterns.PatternSet) error
}

// DetectPatternsUseCase infers a site's pattern set from a sample thread page.
type DetectPatternsUseCase struct {
	sessions SessionOpener
	store    PatternStore
}

// NewDetectPatternsUseCase creates a new DetectPatternsUseCase.
// store may be nil when results are never saved.
func NewDetectPatternsUseCase(sessions SessionOpener, store PatternStore) *DetectPatternsUseCase {
	return &DetectPatternsUseCase{
		sessions: sessions,
		store:    store,
	}
}

// Execute fetches sampleURL and detects its patterns, storing them for the
// site when save is set.
func (uc *DetectPatternsUseCase) Execute(ctx context.Context, sampleURL string, save bool) (*patterns.PatternSet, error) {
	session, err := uc.sessions.Open(ctx, sampleURL)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	defer session.Fetcher.ReleaseSession()

	doc, err := session.Fetcher.Fetch(ctx, sampleURL)
	if err != nil {
		return nil, fmt.Errorf("detect patterns: %w", err)
	}

	set := patterns.Detect(doc, sampleURL)
	log.GlobalInfoCtx(ctx, "patterns detected",
		"url", sampleURL,
		"post_container", set.Selectors.PostContainer,
		"post_id_attribute", set.Attributes.PostID,
	)

	if save {
		if uc.store == nil {
			return set, fmt.Errorf("no pattern store configured")
		}
		if err := uc.store.SavePatterns(sampleURL, set); err != nil {
			return set, fmt.Errorf("save patterns: %w", err)
		}
		log.GlobalInfoCtx(ctx, "patterns saved", "url", sampleURL)
	}

	return set, nil
}
