package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"forum-harvester/internal/app"
	"forum-harvester/internal/config"
	"forum-harvester/internal/domain"
	"forum-harvester/pkg/log"
	"forum-harvester/pkg/log/transporters"
)

// cli carries state shared by every subcommand of one invocation.
type cli struct {
	v       *viper.Viper
	cfgFile string
	cfg     *config.Config
	logger  *log.Logger
	prevLog *log.Logger
	logOut  io.Writer
	app     *app.App
}

// execute runs one invocation with args, reporting any error on stderr.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	c := &cli{v: viper.New(), logOut: stderr}
	defer c.teardown()

	root := c.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	if err != nil {
		report(stderr, err)
	}
	return err
}

func (c *cli) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "forum-harvester",
		Short:         "Archive XenForo forum threads as structured JSON",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup()
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.cfgFile, "config", "", "config file (default ./harvester.yaml)")
	flags.String("log-level", "info", "trace, debug, info, warn, error or off")
	flags.String("sites", "cookies.json", "site profiles file with cookies and patterns")
	flags.String("patterns", "", "pattern file overriding every site profile")
	flags.String("output-dir", "downloads", "directory for JSON exports")
	flags.String("database", "harvester.db", "SQLite archive path")
	flags.Duration("delay", 1500*time.Millisecond, "minimum delay between page requests")
	flags.String("user-agent", "", `user agent, or "random"`)
	flags.Bool("headless", true, "run the browser tier headless")

	for key, flag := range map[string]string{
		"log_level":     "log-level",
		"sites_file":    "sites",
		"patterns_file": "patterns",
		"output_dir":    "output-dir",
		"database":      "database",
		"delay":         "delay",
		"user_agent":    "user-agent",
		"headless":      "headless",
	} {
		_ = c.v.BindPFlag(key, flags.Lookup(flag))
	}

	root.AddCommand(
		newScrapeCmd(c),
		newDetectCmd(c),
		newListCmd(c),
		newViewCmd(c),
		newMonitorCmd(c),
	)
	return root
}

func (c *cli) setup() error {
	cfg, err := config.Load(c.v, c.cfgFile)
	if err != nil {
		return err
	}
	c.cfg = cfg

	c.logger = app.NewLogger(cfg.LogLevel, transporters.NewConsoleWithWriter(c.logOut, false))
	c.prevLog = log.Default()
	log.SetDefault(c.logger)
	return nil
}

func (c *cli) teardown() {
	if c.app != nil {
		if err := c.app.Close(); err != nil {
			log.GlobalWarn("close archive", "error", err)
		}
		c.app = nil
	}
	if c.logger != nil {
		log.SetDefault(c.prevLog)
		c.logger.Close()
	}
}

// openApp wires the adapters on first use.
func (c *cli) openApp() (*app.App, error) {
	if c.app != nil {
		return c.app, nil
	}
	a, err := app.New(c.cfg)
	if err != nil {
		return nil, err
	}
	c.app = a
	return a, nil
}

// report prints err with any remediation hint.
func report(w io.Writer, err error) {
	fmt.Fprintf(w, "%s %v\n", color.RedString("error:"), err)

	var fe *domain.FetchError
	if errors.As(err, &fe) && fe.Hint != "" {
		fmt.Fprintf(w, "%s %s\n", color.YellowString("hint:"), fe.Hint)
	}
}
