package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newListCmd(c *cli) *cobra.Command {
	var maxThreads int

	cmd := &cobra.Command{
		Use:   "list <forum-url>",
		Short: "List thread URLs found on a forum index page",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openApp()
			if err != nil {
				return err
			}

			urls, err := a.List.Execute(cmd.Context(), args[0], maxThreads)
			if err != nil {
				return err
			}
			for _, u := range urls {
				fmt.Fprintln(cmd.OutOrStdout(), u)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&maxThreads, "max", 20, "maximum threads to list, 0 for all")
	return cmd
}
