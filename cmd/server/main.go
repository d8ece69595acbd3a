package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/spf13/viper"

	"forum-harvester/internal/adapters/cache"
	"forum-harvester/internal/adapters/web"
	"forum-harvester/internal/app"
	"forum-harvester/internal/config"
	"forum-harvester/internal/usecases"
	"forum-harvester/pkg/log"
	"forum-harvester/pkg/log/transporters"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "forum-harvester server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(viper.New(), os.Getenv("HARVESTER_CONFIG"))
	if err != nil {
		return err
	}

	logger := app.NewLogger(cfg.LogLevel, transporters.NewStdout())
	log.SetDefault(logger)
	defer logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(cfg)
	if err != nil {
		log.GlobalError("startup failed", "error", err)
		return err
	}
	defer a.Close()

	if cfg.SitesReload > 0 {
		go a.Sites.Watch(ctx, cfg.SitesReload)
	}

	threadCache := cache.NewMemoryCache(cfg.CacheTTL)
	defer threadCache.Close()

	// Initialize use cases
	getThreadUC := usecases.NewGetThreadUseCase(threadCache, a.Archive)

	// Initialize web handlers
	handlers := web.NewHandlers(getThreadUC, a.Threads, cfg.ScrapeTimeout)
	rateLimiter := web.NewRateLimiter(10, time.Minute) // 10 scrapes/min
	defer rateLimiter.Stop()

	srv := fiber.New(fiber.Config{
		AppName: "Forum Harvester",
	})

	// Middleware
	srv.Use(recover.New())
	srv.Use(requestid.New(web.RequestIDConfig()))
	srv.Use(web.RequestIDToContextMiddleware())
	srv.Use(web.RequestLoggerMiddleware())

	web.SetupRoutes(srv, handlers, rateLimiter)

	go func() {
		<-ctx.Done()
		log.GlobalInfo("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
			log.GlobalWarn("shutdown incomplete", "error", err)
		}
	}()

	log.GlobalInfo("starting server",
		"port", cfg.Port,
		"sites_file", cfg.SitesFile,
		"database", cfg.Database,
		"cache_ttl", cfg.CacheTTL,
	)
	if err := srv.Listen(":" + cfg.Port); err != nil {
		log.GlobalError("server stopped", "error", err)
		return err
	}
	return nil
}
