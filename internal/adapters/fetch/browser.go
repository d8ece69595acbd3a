package fetch

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"sync"
	"time"

	"forum-harvester/pkg/log"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
)

// maskWebdriver hides navigator.webdriver from page scripts.
const maskWebdriver = `Object.defineProperty(navigator, 'webdriver', { get: () => undefined })`

// BrowserConfig describes how the rendered session is launched.
type BrowserConfig struct {
	// CookieURL is the origin the seeded cookies are bound to.
	CookieURL string
	UserAgent string
	Headless  bool
	// ChromePath overrides the Chrome binary.
	ChromePath string
	// RemoteURL attaches to an already running Chrome instead of launching one.
	RemoteURL string
	// ProfileDir is used as the user data dir when it exists on disk.
	ProfileDir string
}

// Browser is a single Chrome tab driven through the DevTools protocol.
// Calls are serialized; the tab is shared by every page of one scrape.
type Browser struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc

	mu sync.Mutex
}

// NewBrowserFactory returns a RendererFactory launching Browsers with cfg.
func NewBrowserFactory(cfg BrowserConfig) RendererFactory {
	return func(ctx context.Context, cookies []*http.Cookie) (Renderer, error) {
		return StartBrowser(ctx, cfg, cookies)
	}
}

// allocatorOptions are the launch flags for a local Chrome.
func allocatorOptions(cfg BrowserConfig) []chromedp.ExecAllocatorOption {
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-notifications", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("no-first-run", true),
		chromedp.WindowSize(1920, 1080),
		chromedp.UserAgent(userAgent),
	)

	if cfg.ChromePath != "" {
		opts = append(opts, chromedp.ExecPath(cfg.ChromePath))
	}

	if cfg.ProfileDir != "" {
		if info, err := os.Stat(cfg.ProfileDir); err == nil && info.IsDir() {
			opts = append(opts, chromedp.UserDataDir(cfg.ProfileDir))
		}
	}

	return opts
}

// StartBrowser launches (or attaches to) Chrome, installs the fingerprint
// mask and seeds the cookies. The session outlives ctx; call Close.
func StartBrowser(ctx context.Context, cfg BrowserConfig, cookies []*http.Cookie) (*Browser, error) {
	var allocCtx context.Context
	var allocCancel context.CancelFunc
	if cfg.RemoteURL != "" {
		log.GlobalInfoCtx(ctx, "attaching to remote chrome", "url", cfg.RemoteURL)
		allocCtx, allocCancel = chromedp.NewRemoteAllocator(context.Background(), cfg.RemoteURL)
	} else {
		if cfg.ChromePath != "" {
			log.GlobalInfoCtx(ctx, "using custom chrome path", "path", cfg.ChromePath)
		}
		allocCtx, allocCancel = chromedp.NewExecAllocator(context.Background(), allocatorOptions(cfg)...)
	}

	tabCtx, cancel := chromedp.NewContext(allocCtx)

	tasks := setupTasks(cfg, cookies)
	if err := chromedp.Run(tabCtx, tasks); err != nil {
		cancel()
		allocCancel()
		return nil, err
	}

	log.GlobalInfoCtx(ctx, "browser started", "cookies", len(cookies))
	return &Browser{ctx: tabCtx, cancel: cancel, allocCancel: allocCancel}, nil
}

// setupTasks installs the fingerprint mask, the user agent on attached
// browsers and the seeded cookies.
func setupTasks(cfg BrowserConfig, cookies []*http.Cookie) chromedp.Tasks {
	tasks := chromedp.Tasks{
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(maskWebdriver).Do(ctx)
			return err
		}),
	}
	// Launched browsers get the user agent as a flag.
	if cfg.RemoteURL != "" && cfg.UserAgent != "" {
		tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
			return emulation.SetUserAgentOverride(cfg.UserAgent).Do(ctx)
		}))
	}
	if len(cookies) > 0 && cfg.CookieURL != "" {
		tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
			for _, c := range cookies {
				if err := network.SetCookie(c.Name, c.Value).WithURL(cfg.CookieURL).Do(ctx); err != nil {
					return fmt.Errorf("set cookie %s: %w", c.Name, err)
				}
			}
			return nil
		}))
	}
	return tasks
}

// run executes actions on the tab, aborting when either ctx or the session ends.
func (b *Browser) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	runCtx, cancel := context.WithCancel(b.ctx)
	defer cancel()
	if timeout > 0 {
		runCtx, cancel = context.WithTimeout(runCtx, timeout)
		defer cancel()
	}
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	return chromedp.Run(runCtx, actions...)
}

func (b *Browser) Navigate(ctx context.Context, url string) error {
	return b.run(ctx, 0, chromedp.Navigate(url))
}

func (b *Browser) HTML(ctx context.Context) (string, error) {
	var html string
	err := b.run(ctx, 0, chromedp.OuterHTML("html", &html, chromedp.ByQuery))
	return html, err
}

func (b *Browser) WaitFor(ctx context.Context, selector string, timeout time.Duration) error {
	return b.run(ctx, timeout, chromedp.WaitReady(selector, chromedp.ByQuery))
}

// Close shuts the tab and the browser down.
func (b *Browser) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.cancel != nil {
		b.cancel()
		b.allocCancel()
		b.cancel = nil
	}
}
