package web

import (
	"context"
	"errors"

	"forum-harvester/internal/domain"

	"github.com/gofiber/fiber/v2"
)

type errorResponse struct {
	Error string `json:"error"`
	Hint  string `json:"hint,omitempty"`
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidThreadURL):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrThreadNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, domain.ErrRateLimited):
		return fiber.StatusTooManyRequests
	case errors.Is(err, domain.ErrNoPosts):
		return fiber.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.StatusGatewayTimeout
	case errors.Is(err, domain.ErrFetchFailed):
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}

// friendlyError returns a neutral, non-blaming error message.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidThreadURL):
		return "That doesn't look like a forum thread URL. Paste a link containing /threads/."
	case errors.Is(err, domain.ErrThreadNotFound):
		return "This thread hasn't been archived yet."
	case errors.Is(err, domain.ErrRateLimited):
		return "Too many scrapes. Please wait a moment and try again."
	case errors.Is(err, domain.ErrNoPosts):
		return "The page loaded but no posts could be recognized. The forum theme may need custom patterns."
	case errors.Is(err, domain.ErrChallengeBlocked):
		return "The forum is still showing its anti-bot check."
	case errors.Is(err, domain.ErrCookiesRequired):
		return "The forum refused the request. It may require cookies from a logged-in session."
	case errors.Is(err, context.DeadlineExceeded):
		return "The scrape took too long. Try again with a smaller page limit."
	case errors.Is(err, domain.ErrFetchFailed):
		return "The forum couldn't be reached right now. Please try again in a moment."
	default:
		return "Something went wrong while processing this thread."
	}
}

// hintFor returns the remediation hint carried by a fetch failure.
func hintFor(err error) string {
	var fe *domain.FetchError
	if errors.As(err, &fe) {
		return fe.Hint
	}
	return ""
}

func writeError(c *fiber.Ctx, err error) error {
	return c.Status(statusFor(err)).JSON(errorResponse{
		Error: friendlyError(err),
		Hint:  hintFor(err),
	})
}
