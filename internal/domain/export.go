package domain

import "time"

// ThreadExport is the serialized thread handed to downloaders and viewers.
// Field names and nesting are a compatibility contract.
type ThreadExport struct {
	ThreadID    string             `json:"thread_id"`
	Title       string             `json:"title"`
	URL         string             `json:"url"`
	StartDate   string             `json:"start_date"`
	Tags        []string           `json:"tags"`
	Prefixes    []string           `json:"prefixes"`
	SocialLinks []SocialLinkExport `json:"social_links"`
	TotalPages  int                `json:"total_pages"`
	CurrentPage int                `json:"current_page"`
	TotalPosts  int                `json:"total_posts"`
	Posts       []PostExport       `json:"posts"`
}

type SocialLinkExport struct {
	URL      string `json:"url"`
	Text     string `json:"text"`
	Platform string `json:"platform"`
}

type PostExport struct {
	PostID      string             `json:"post_id"`
	Author      UserExport         `json:"author"`
	Content     string             `json:"content"`
	Date        string             `json:"date"`
	Reactions   int                `json:"reactions"`
	Attachments []AttachmentExport `json:"attachments"`
	MediaEmbeds []MediaEmbedExport `json:"media_embeds"`
	Links       []LinkExport       `json:"links"`
}

type UserExport struct {
	Username      string  `json:"username"`
	UserID        *string `json:"user_id"`
	ProfileURL    *string `json:"profile_url"`
	UserTitle     *string `json:"user_title"`
	Messages      *int    `json:"messages"`
	ReactionScore *int    `json:"reaction_score"`
	Points        *int    `json:"points"`
}

type AttachmentExport struct {
	AttachmentID string `json:"attachment_id"`
	Filename     string `json:"filename"`
	URL          string `json:"url"`
	FileType     string `json:"file_type"`
}

type MediaEmbedExport struct {
	MediaType string  `json:"media_type"`
	EmbedURL  string  `json:"embed_url"`
	MediaID   *string `json:"media_id"`
}

type LinkExport struct {
	URL      string `json:"url"`
	Text     string `json:"text"`
	LinkType string `json:"link_type"`
}

// NewThreadExport converts a thread into its export form.
// Slices are never nil so they serialize as empty arrays.
func NewThreadExport(t *Thread) *ThreadExport {
	out := &ThreadExport{
		ThreadID:    t.ThreadID,
		Title:       t.Title,
		URL:         t.URL,
		StartDate:   t.StartDate,
		Tags:        nonNil(t.Tags),
		Prefixes:    nonNil(t.Prefixes),
		SocialLinks: make([]SocialLinkExport, 0, len(t.SocialLinks)),
		TotalPages:  t.TotalPages,
		CurrentPage: t.CurrentPage,
		TotalPosts:  len(t.Posts),
		Posts:       make([]PostExport, 0, len(t.Posts)),
	}

	for _, l := range t.SocialLinks {
		out.SocialLinks = append(out.SocialLinks, SocialLinkExport{
			URL:      l.URL,
			Text:     l.Text,
			Platform: string(l.LinkType),
		})
	}

	for _, p := range t.Posts {
		out.Posts = append(out.Posts, exportPost(p))
	}

	return out
}

func exportPost(p Post) PostExport {
	pe := PostExport{
		PostID: p.PostID,
		Author: UserExport{
			Username:      p.Author.Username,
			UserID:        optional(p.Author.UserID),
			ProfileURL:    optional(p.Author.ProfileURL),
			UserTitle:     optional(p.Author.UserTitle),
			Messages:      p.Author.Messages,
			ReactionScore: p.Author.ReactionScore,
			Points:        p.Author.Points,
		},
		Content:     p.Content,
		Date:        p.Date,
		Reactions:   p.Reactions,
		Attachments: make([]AttachmentExport, 0, len(p.Attachments)),
		MediaEmbeds: make([]MediaEmbedExport, 0, len(p.MediaEmbeds)),
		Links:       make([]LinkExport, 0, len(p.Links)),
	}

	for _, a := range p.Attachments {
		pe.Attachments = append(pe.Attachments, AttachmentExport{
			AttachmentID: a.AttachmentID,
			Filename:     a.Filename,
			URL:          a.URL,
			FileType:     string(a.FileType),
		})
	}
	for _, m := range p.MediaEmbeds {
		pe.MediaEmbeds = append(pe.MediaEmbeds, MediaEmbedExport{
			MediaType: string(m.MediaType),
			EmbedURL:  m.EmbedURL,
			MediaID:   optional(m.MediaID),
		})
	}
	for _, l := range p.Links {
		pe.Links = append(pe.Links, LinkExport{
			URL:      l.URL,
			Text:     l.Text,
			LinkType: string(l.LinkType),
		})
	}

	return pe
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// ThreadSummary is one row of the archive listing.
type ThreadSummary struct {
	ThreadID    string    `json:"thread_id"`
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	TotalPosts  int       `json:"total_posts"`
	TotalPages  int       `json:"total_pages"`
	CurrentPage int       `json:"current_page"`
	ScrapedAt   time.Time `json:"scraped_at"`
}
