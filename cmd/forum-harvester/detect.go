package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

func newDetectCmd(c *cli) *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "detect <sample-thread-url>",
		Short: "Detect extraction patterns from a sample thread page",
		Long: "Fetches one thread page, scans it for post containers and the post id\n" +
			"attribute, and prints the detected pattern set as YAML. With --save the\n" +
			"set is stored in the site profiles file for the page's host.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openApp()
			if err != nil {
				return err
			}

			set, err := a.Detect.Execute(cmd.Context(), args[0], save)
			if set != nil {
				data, yerr := set.ToYAML()
				if yerr != nil {
					return yerr
				}
				cmd.OutOrStdout().Write(data)
			}
			if err != nil {
				return err
			}

			if save {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s patterns stored in %s\n", color.GreenString("saved"), c.cfg.SitesFile)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "store the detected patterns in the site profile")
	return cmd
}
