package domain

import "sort"

// AuthorCount is one row of the top-authors table.
type AuthorCount struct {
	Username string
	Posts    int
}

// ThreadStats summarizes an exported thread for viewers.
type ThreadStats struct {
	Posts           int
	UniqueAuthors   int
	Attachments     int
	MediaEmbeds     int
	Links           int
	Reactions       int
	TopAuthors      []AuthorCount
	AttachmentTypes map[string]int
}

// Summarize computes viewer statistics. TopAuthors holds at most limit rows,
// ordered by post count and then username.
func Summarize(t *ThreadExport, limit int) ThreadStats {
	stats := ThreadStats{
		Posts:           len(t.Posts),
		AttachmentTypes: make(map[string]int),
	}

	counts := make(map[string]int)
	for _, p := range t.Posts {
		stats.Attachments += len(p.Attachments)
		stats.MediaEmbeds += len(p.MediaEmbeds)
		stats.Links += len(p.Links)
		stats.Reactions += p.Reactions
		counts[p.Author.Username]++
		for _, a := range p.Attachments {
			stats.AttachmentTypes[a.FileType]++
		}
	}
	stats.UniqueAuthors = len(counts)

	for name, n := range counts {
		stats.TopAuthors = append(stats.TopAuthors, AuthorCount{Username: name, Posts: n})
	}
	sort.Slice(stats.TopAuthors, func(i, j int) bool {
		a, b := stats.TopAuthors[i], stats.TopAuthors[j]
		if a.Posts != b.Posts {
			return a.Posts > b.Posts
		}
		return a.Username < b.Username
	})
	if len(stats.TopAuthors) > limit {
		stats.TopAuthors = stats.TopAuthors[:limit]
	}

	return stats
}
