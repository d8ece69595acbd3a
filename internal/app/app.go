// Package app wires the adapters and use cases shared by the server and
// the command-line tool.
package app

import (
	"fmt"

	"forum-harvester/internal/adapters/export"
	"forum-harvester/internal/adapters/site"
	"forum-harvester/internal/adapters/storage"
	"forum-harvester/internal/config"
	"forum-harvester/internal/patterns"
	"forum-harvester/internal/usecases"
	"forum-harvester/pkg/log"
)

// App holds one process's adapters and use cases.
type App struct {
	Config *config.Config
	Sites  *config.SiteRegistry
	Store  *storage.SQLiteStore
	JSON   *export.JSONWriter

	Scrape  *usecases.ScrapeThreadUseCase
	Archive *usecases.ArchiveThreadUseCase
	Detect  *usecases.DetectPatternsUseCase
	List    *usecases.ListThreadsUseCase
	Threads *usecases.ReadThreadUseCase
}

// New opens the site profiles, the optional pattern override and the
// archive database named by cfg.
func New(cfg *config.Config) (*App, error) {
	sites, err := config.LoadSites(cfg.SitesFile)
	if err != nil {
		return nil, fmt.Errorf("load site profiles: %w", err)
	}

	var override *patterns.PatternSet
	if cfg.PatternsFile != "" {
		override, err = patterns.LoadFile(cfg.PatternsFile)
		if err != nil {
			return nil, fmt.Errorf("load patterns: %w", err)
		}
		log.GlobalInfo("pattern override loaded", "path", cfg.PatternsFile)
	}

	store, err := storage.OpenSQLite(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	opener := site.NewOpener(cfg, sites, override)
	jsonWriter := export.NewJSONWriter(cfg.OutputDir)
	scrape := usecases.NewScrapeThreadUseCase(opener)

	return &App{
		Config:  cfg,
		Sites:   sites,
		Store:   store,
		JSON:    jsonWriter,
		Scrape:  scrape,
		Archive: usecases.NewArchiveThreadUseCase(scrape, jsonWriter, store),
		Detect:  usecases.NewDetectPatternsUseCase(opener, sites),
		List:    usecases.NewListThreadsUseCase(opener),
		Threads: usecases.NewReadThreadUseCase(store),
	}, nil
}

// Close releases the archive database.
func (a *App) Close() error {
	return a.Store.Close()
}

// NewLogger builds the process logger at the named level. An unknown level
// falls back to info and is reported once the logger is installed.
func NewLogger(level string, transporters ...log.Transporter) *log.Logger {
	parsed, err := log.ParseLevel(level)
	logger := log.New(parsed, transporters...)
	if err != nil {
		logger.Warn("unknown log level, using info", "log_level", level)
	}
	return logger
}
