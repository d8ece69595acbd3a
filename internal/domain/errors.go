package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrFetchFailed matches every page retrieval failure, whichever tier produced it.
	ErrFetchFailed = errors.New("failed to fetch page")

	// ErrChallengeBlocked is returned when the rendered tier still sees an
	// anti-bot interstitial or a page too short to be real content.
	ErrChallengeBlocked = errors.New("challenge page still shown")

	// ErrCookiesRequired is returned on HTTP 403 without a prior challenge pass.
	ErrCookiesRequired = errors.New("access forbidden, cookies likely required")

	// ErrInvalidThreadURL is returned when the URL is not an absolute http(s) URL.
	ErrInvalidThreadURL = errors.New("invalid thread URL")

	// ErrThreadNotFound is returned when an archived thread does not exist.
	ErrThreadNotFound = errors.New("thread not found")

	// ErrRateLimited is returned when rate limit is exceeded.
	ErrRateLimited = errors.New("rate limit exceeded")

	// ErrNoPosts is returned when a scrape produced a thread without posts.
	ErrNoPosts = errors.New("no posts extracted")
)

// Tier identifies the fetch strategy that produced a result or failure.
type Tier string

const (
	TierHTTP     Tier = "http"
	TierRendered Tier = "rendered"
)

// FetchError describes a failed page retrieval.
// errors.Is(err, ErrFetchFailed) holds for every FetchError.
type FetchError struct {
	URL        string
	Tier       Tier
	StatusCode int
	Hint       string
	Err        error
}

func (e *FetchError) Error() string {
	msg := fmt.Sprintf("fetch %s (%s tier)", e.URL, e.Tier)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(": HTTP %d", e.StatusCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FetchError) Unwrap() error { return e.Err }

func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// IsChallengeBlocked reports whether err is a rendered-tier challenge failure.
func IsChallengeBlocked(err error) bool {
	return errors.Is(err, ErrChallengeBlocked)
}
