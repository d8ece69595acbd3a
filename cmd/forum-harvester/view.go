package main

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"forum-harvester/internal/adapters/export"
	"forum-harvester/internal/domain"
)

const defaultTopAuthors = 5

func newViewCmd(c *cli) *cobra.Command {
	var (
		top   int
		posts int
	)

	cmd := &cobra.Command{
		Use:   "view <export.json>",
		Short: "Print statistics for a JSON thread export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			thread, err := export.ReadFile(args[0])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			printSummary(out, thread, top)
			printPosts(out, thread.Posts, posts)
			return nil
		},
	}

	cmd.Flags().IntVar(&top, "top", defaultTopAuthors, "number of top authors to show")
	cmd.Flags().IntVar(&posts, "posts", 0, "number of posts to print")
	return cmd
}

func printSummary(w io.Writer, t *domain.ThreadExport, top int) {
	stats := domain.Summarize(t, top)
	bold := color.New(color.Bold)

	bold.Fprintln(w, t.Title)
	fmt.Fprintf(w, "%s  thread %s, pages %d/%d\n", t.URL, t.ThreadID, t.CurrentPage, t.TotalPages)
	if tags := append(append([]string{}, t.Prefixes...), t.Tags...); len(tags) > 0 {
		fmt.Fprintf(w, "tags: %s\n", strings.Join(tags, ", "))
	}

	fmt.Fprintf(w, "\nposts %d  authors %d  attachments %d  media %d  links %d  reactions %d\n",
		stats.Posts, stats.UniqueAuthors, stats.Attachments, stats.MediaEmbeds, stats.Links, stats.Reactions)

	if len(stats.TopAuthors) > 0 {
		bold.Fprintln(w, "\nTop authors")
		for i, a := range stats.TopAuthors {
			fmt.Fprintf(w, "%2d. %s (%d)\n", i+1, a.Username, a.Posts)
		}
	}

	if len(stats.AttachmentTypes) > 0 {
		types := make([]string, 0, len(stats.AttachmentTypes))
		for ft := range stats.AttachmentTypes {
			types = append(types, ft)
		}
		sort.Strings(types)
		bold.Fprintln(w, "\nAttachment types")
		for _, ft := range types {
			fmt.Fprintf(w, "  %s: %d\n", ft, stats.AttachmentTypes[ft])
		}
	}

	if len(t.SocialLinks) > 0 {
		bold.Fprintln(w, "\nSocial links")
		for _, l := range t.SocialLinks {
			fmt.Fprintf(w, "  %s %s\n", color.CyanString(l.Platform), l.URL)
		}
	}
}

func printPosts(w io.Writer, posts []domain.PostExport, n int) {
	if n <= 0 {
		return
	}
	fmt.Fprintln(w)
	for i, p := range posts {
		if i == n {
			break
		}
		fmt.Fprintf(w, "%s %s %s\n", color.YellowString("#"+p.PostID), p.Author.Username, color.HiBlackString(p.Date))
		fmt.Fprintln(w, p.Content)
		fmt.Fprintln(w)
	}
}
