package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"forum-harvester/internal/app"
	"forum-harvester/pkg/log"
)

const defaultSchedule = "@every 1h"

func newMonitorCmd(c *cli) *cobra.Command {
	var (
		schedule string
		maxPages int
		once     bool
	)

	cmd := &cobra.Command{
		Use:   "monitor [thread-url...]",
		Short: "Re-archive threads on a schedule",
		Long: "Re-scrapes each thread on the cron schedule and refreshes its JSON export\n" +
			"and archive row. Threads come from the arguments or the monitor.threads\n" +
			"config key. A run still in progress when the next one is due is skipped.",
		RunE: func(cmd *cobra.Command, args []string) error {
			threads := monitorThreads(args, c.v.GetStringSlice("monitor.threads"))
			if len(threads) == 0 {
				return errors.New("no threads to monitor: pass URLs or set monitor.threads")
			}
			if !cmd.Flags().Changed("schedule") && c.v.IsSet("monitor.schedule") {
				schedule = c.v.GetString("monitor.schedule")
			}
			if !cmd.Flags().Changed("max-pages") {
				maxPages = c.cfg.MaxPages
			}

			a, err := c.openApp()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			if once {
				return archiveAll(ctx, a, threads, maxPages)
			}
			return runMonitor(ctx, a, schedule, threads, maxPages)
		},
	}

	cmd.Flags().StringVar(&schedule, "schedule", defaultSchedule, "cron spec or @every duration")
	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "pages to scrape per thread, 0 for all")
	cmd.Flags().BoolVar(&once, "once", false, "archive every thread once and exit")
	return cmd
}

// monitorThreads prefers explicit arguments over configured threads and
// drops duplicates.
func monitorThreads(args, configured []string) []string {
	source := args
	if len(source) == 0 {
		source = configured
	}
	seen := make(map[string]bool, len(source))
	var out []string
	for _, u := range source {
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

func runMonitor(ctx context.Context, a *app.App, schedule string, threads []string, maxPages int) error {
	logger := cronLogger{}
	sched := cron.New(cron.WithLogger(logger), cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))

	id, err := sched.AddFunc(schedule, func() {
		if err := archiveAll(ctx, a, threads, maxPages); err != nil {
			log.GlobalWarn("monitor run incomplete", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	sched.Start()
	log.GlobalInfo("monitor started", "schedule", schedule, "threads", len(threads), "next_run", sched.Entry(id).Next)

	<-ctx.Done()
	log.GlobalInfo("monitor stopping, waiting for the current run")
	<-sched.Stop().Done()
	return nil
}

// archiveAll archives threads one after another. A failing thread does not
// stop the run; the last failure is returned.
func archiveAll(ctx context.Context, a *app.App, threads []string, maxPages int) error {
	var lastErr error
	archived := 0
	for _, u := range threads {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		thread, err := a.Archive.Execute(ctx, u, maxPages)
		if err != nil {
			log.GlobalError("archive failed", "url", u, "error", err)
			lastErr = err
			continue
		}
		archived++
		log.GlobalInfo("thread archived", "url", u, "thread_id", thread.ThreadID, "posts", thread.TotalPosts)
	}
	log.GlobalInfo("monitor run finished", "archived", archived, "failed", len(threads)-archived)
	return lastErr
}

// cronLogger routes the scheduler's own messages into pkg/log.
type cronLogger struct{}

func (cronLogger) Info(msg string, keysAndValues ...interface{}) {
	log.GlobalDebug("cron: "+msg, keysAndValues...)
}

func (cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	log.GlobalError("cron: "+msg, append(keysAndValues, "error", err)...)
}
