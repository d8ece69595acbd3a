package web

import (
	"context"
	"time"

	"forum-harvester/internal/domain"
	"forum-harvester/internal/usecases"
	"forum-harvester/pkg/log"
	"forum-harvester/templates/pages"

	"github.com/a-h/templ"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
)

const (
	defaultListLimit = 50
	topAuthors       = 5
)

// Handlers contains the HTTP handlers for the web application.
type Handlers struct {
	getThread *usecases.GetThreadUseCase
	threads   *usecases.ReadThreadUseCase

	// slot admits one scrape at a time so the server keeps the same
	// sequential pacing as the CLI.
	slot    chan struct{}
	timeout time.Duration
}

// NewHandlers creates a new Handlers instance. scrapeTimeout bounds a
// single scrape including the wait for the scrape slot.
func NewHandlers(getThread *usecases.GetThreadUseCase, threads *usecases.ReadThreadUseCase, scrapeTimeout time.Duration) *Handlers {
	return &Handlers{
		getThread: getThread,
		threads:   threads,
		slot:      make(chan struct{}, 1),
		timeout:   scrapeTimeout,
	}
}

type scrapeRequest struct {
	URL      string `json:"url" form:"url"`
	MaxPages int    `json:"max_pages" form:"max_pages"`
}

// render writes a templ component through net/http. The adaptor writes its
// own status line, so the status already set on c is passed along.
func render(c *fiber.Ctx, component templ.Component) error {
	status := c.Response().StatusCode()
	return adaptor.HTTPHandler(templ.Handler(component, templ.WithStatus(status)))(c)
}

// APIScrape scrapes (or serves from cache) the thread named in the body.
func (h *Handlers) APIScrape(c *fiber.Ctx) error {
	var req scrapeRequest
	if err := c.BodyParser(&req); err != nil {
		log.GlobalWarnCtx(c.UserContext(), "invalid scrape request", "error", err)
		return writeError(c, domain.ErrInvalidThreadURL)
	}

	threadURL, threadID, err := ParseThreadURL(req.URL)
	if err != nil {
		log.GlobalWarnCtx(c.UserContext(), "invalid thread URL", "url", req.URL)
		return writeError(c, err)
	}
	maxPages := max(req.MaxPages, 0)

	ctx, cancel := context.WithTimeout(c.UserContext(), h.timeout)
	defer cancel()

	if err := h.acquire(ctx); err != nil {
		log.GlobalWarnCtx(ctx, "scrape slot wait expired", "thread_id", threadID)
		return writeError(c, err)
	}
	defer h.release()

	thread, err := h.getThread.Execute(ctx, threadURL, maxPages)
	if err != nil {
		log.GlobalErrorCtx(ctx, "scrape failed", "url", threadURL, "thread_id", threadID, "error", err)
		return writeError(c, err)
	}

	c.Set(fiber.HeaderLocation, "/api/threads/"+thread.ThreadID)
	return c.JSON(thread)
}

func (h *Handlers) acquire(ctx context.Context) error {
	select {
	case h.slot <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (h *Handlers) release() {
	<-h.slot
}

// APIGetThread returns an archived thread export.
func (h *Handlers) APIGetThread(c *fiber.Ctx) error {
	thread, err := h.threads.Execute(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(thread)
}

// APIListThreads lists archived threads, newest first.
func (h *Handlers) APIListThreads(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultListLimit)
	threads, err := h.threads.List(c.UserContext(), limit)
	if err != nil {
		log.GlobalErrorCtx(c.UserContext(), "list threads failed", "error", err)
		return writeError(c, err)
	}
	if threads == nil {
		threads = []domain.ThreadSummary{}
	}
	return c.JSON(threads)
}

// Home renders the archive index.
func (h *Handlers) Home(c *fiber.Ctx) error {
	threads, err := h.threads.List(c.UserContext(), defaultListLimit)
	if err != nil {
		log.GlobalErrorCtx(c.UserContext(), "list threads failed", "error", err)
		return h.renderError(c, err)
	}
	return render(c, pages.Index(threads))
}

// ViewThread renders an archived thread with its statistics.
func (h *Handlers) ViewThread(c *fiber.Ctx) error {
	thread, stats, err := h.threads.Stats(c.UserContext(), c.Params("id"), topAuthors)
	if err != nil {
		return h.renderError(c, err)
	}
	return render(c, pages.Thread(thread, stats))
}

// Health reports liveness.
func (h *Handlers) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// renderError renders a full-page error.
func (h *Handlers) renderError(c *fiber.Ctx, err error) error {
	c.Status(statusFor(err))
	return render(c, pages.Error(friendlyError(err)))
}
