// Package domain contains the core business entities and rules.
package domain

// User is a post author as shown in the post's user sidebar.
type User struct {
	Username      string
	UserID        string
	ProfileURL    string
	UserTitle     string
	Messages      *int
	ReactionScore *int
	Points        *int
}

// UnknownUser is substituted when a post has no recoverable author.
func UnknownUser() User {
	return User{Username: "Unknown"}
}

// FileType classifies an attachment by filename extension.
type FileType string

const (
	FileImage    FileType = "image"
	FileVideo    FileType = "video"
	FileDocument FileType = "document"
	FileUnknown  FileType = "unknown"
)

// Attachment is a file attached to or inlined in a post.
// URL is absolute and is the identity used for deduplication.
type Attachment struct {
	AttachmentID string
	Filename     string
	URL          string
	FileType     FileType
}

// MediaType tags an embedded media element. The set is open.
type MediaType string

const (
	MediaIframe     MediaType = "iframe"
	MediaYouTube    MediaType = "youtube"
	MediaRedgifs    MediaType = "redgifs"
	MediaSaintVideo MediaType = "saint_video"
	MediaImgur      MediaType = "imgur"
	MediaVideo      MediaType = "video"
)

// MediaEmbed is an iframe or lazy-loaded player found in a post.
type MediaEmbed struct {
	MediaType MediaType
	EmbedURL  string
	MediaID   string
}

// LinkType classifies a link. Social aggregation rewrites it to a platform tag.
type LinkType string

const (
	LinkInternal  LinkType = "internal"
	LinkExternal  LinkType = "external"
	LinkImageLink LinkType = "image_link"
)

// Link is an anchor found in post content.
type Link struct {
	URL      string
	Text     string
	LinkType LinkType
}

// Post is a single forum post.
type Post struct {
	PostID      string
	Author      User
	Content     string
	Date        string
	Reactions   int
	Attachments []Attachment
	MediaEmbeds []MediaEmbed
	Links       []Link

	// SyntheticID is set when PostID was derived from the post body
	// because the page carried no identity attribute.
	SyntheticID bool
}

// Thread is a forum thread aggregated across all fetched pages.
type Thread struct {
	ThreadID    string
	Title       string
	URL         string
	StartDate   string
	Tags        []string
	Prefixes    []string
	Posts       []Post
	SocialLinks []Link
	TotalPages  int
	CurrentPage int
}

// Metadata is what the first page reveals about the thread as a whole.
type Metadata struct {
	Title      string
	ThreadID   string
	Tags       []string
	Prefixes   []string
	StartDate  string
	TotalPages int
}
