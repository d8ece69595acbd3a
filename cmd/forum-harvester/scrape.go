package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newScrapeCmd(c *cli) *cobra.Command {
	var maxPages int

	cmd := &cobra.Command{
		Use:   "scrape <thread-url>",
		Short: "Scrape a thread into a JSON export and the archive database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("max-pages") {
				maxPages = c.cfg.MaxPages
			}

			a, err := c.openApp()
			if err != nil {
				return err
			}

			thread, err := a.Archive.Execute(cmd.Context(), args[0], maxPages)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", color.GreenString("saved"), a.JSON.Path(thread.ThreadID))
			printSummary(out, thread, defaultTopAuthors)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxPages, "max-pages", 0, "pages to scrape, 0 for all")
	return cmd
}
