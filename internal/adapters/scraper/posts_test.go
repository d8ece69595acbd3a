package scraper

import (
	"context"
	"strings"
	"testing"

	"forum-harvester/internal/domain"
	"forum-harvester/internal/patterns"
	"forum-harvester/test/fixtures"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	require.NoError(t, err)
	return doc
}

func newTestExtractor(t *testing.T, set *patterns.PatternSet) *Extractor {
	t.Helper()
	e, err := NewExtractor(fixtures.ThreadURL, set)
	require.NoError(t, err)
	return e
}

func threadPosts(t *testing.T) []domain.Post {
	t.Helper()
	e := newTestExtractor(t, nil)
	posts := e.ExtractPosts(context.Background(), parse(t, fixtures.GenerateThreadPage()))
	require.Len(t, posts, 2)
	return posts
}

func TestNewExtractor_RelativeURL_ReturnsError(t *testing.T) {
	// Act
	_, err := NewExtractor("/threads/x.1/", nil)

	// Assert
	assert.ErrorIs(t, err, domain.ErrInvalidThreadURL)
}

func TestExtractPosts_PostIdentity_ReadsAttributeThenElementID(t *testing.T) {
	// Act
	posts := threadPosts(t)

	// Assert
	assert.Equal(t, "post-101", posts[0].PostID)
	assert.Equal(t, "102", posts[1].PostID)
	assert.False(t, posts[0].SyntheticID)
	assert.False(t, posts[1].SyntheticID)
}

func TestExtractPosts_AuthorSidebar_ExtractsUser(t *testing.T) {
	// Act
	author := threadPosts(t)[0].Author

	// Assert
	assert.Equal(t, "Alice", author.Username)
	assert.Equal(t, fixtures.BaseURL+"/members/alice.42/", author.ProfileURL)
	assert.Equal(t, "42", author.UserID)
	assert.Equal(t, "Well-known member", author.UserTitle)
	require.NotNil(t, author.Messages)
	require.NotNil(t, author.ReactionScore)
	require.NotNil(t, author.Points)
	assert.Equal(t, 1234, *author.Messages)
	assert.Equal(t, 567, *author.ReactionScore)
	assert.Equal(t, 89, *author.Points)
}

func TestExtractPosts_NoAuthorSidebar_UsesUnknownUser(t *testing.T) {
	// Act
	author := threadPosts(t)[1].Author

	// Assert
	assert.Equal(t, domain.UnknownUser(), author)
}

func TestExtractPosts_Content_FlattensText(t *testing.T) {
	// Act
	content := threadPosts(t)[0].Content

	// Assert
	assert.True(t, strings.HasPrefix(content, "Hello everyone"), content)
	assert.Contains(t, content, "here are my photos.")
	assert.NotContains(t, content, "<b>")
}

func TestExtractPosts_Date_PrefersDatetimeAttribute(t *testing.T) {
	// Act
	posts := threadPosts(t)

	// Assert
	assert.Equal(t, "2024-06-01T09:30:00+0000", posts[0].Date)
	assert.Equal(t, "Yesterday at 5:00 PM", posts[1].Date)
}

func TestExtractPosts_Reactions_CountsNamesAndSummaries(t *testing.T) {
	// Act
	posts := threadPosts(t)

	// Assert
	assert.Equal(t, 13, posts[0].Reactions)
	assert.Equal(t, 42, posts[1].Reactions)
}

func TestExtractPosts_InlineImage_BecomesAttachment(t *testing.T) {
	// Act
	attachments := threadPosts(t)[0].Attachments

	// Assert
	require.Len(t, attachments, 1)
	assert.Equal(t, domain.Attachment{
		AttachmentID: "sunset",
		Filename:     "sunset.jpg",
		URL:          "https://img.example.net/photos/sunset.jpg",
		FileType:     domain.FileImage,
	}, attachments[0])
}

func TestExtractPosts_FilePreview_BecomesAttachment(t *testing.T) {
	// Act
	attachments := threadPosts(t)[1].Attachments

	// Assert
	require.Len(t, attachments, 1)
	assert.Equal(t, domain.Attachment{
		AttachmentID: "555",
		Filename:     "report.pdf",
		URL:          fixtures.BaseURL + "/attachments/report-pdf.555/",
		FileType:     domain.FileDocument,
	}, attachments[0])
}

func TestExtractPosts_MediaEmbeds_IframeAndLazyPlayer(t *testing.T) {
	// Act
	posts := threadPosts(t)

	// Assert
	assert.Equal(t, []domain.MediaEmbed{{
		MediaType: domain.MediaYouTube,
		EmbedURL:  "https://www.youtube.com/embed/dQw4w9WgXcQ?rel=0",
		MediaID:   "dQw4w9WgXcQ",
	}}, posts[0].MediaEmbeds)
	assert.Equal(t, []domain.MediaEmbed{{
		MediaType: domain.MediaRedgifs,
		EmbedURL:  "https://www.redgifs.com/ifr/calmwaves",
	}}, posts[1].MediaEmbeds)
}

func TestExtractPosts_Links_ClassifiedAndDeduplicatedAgainstAttachments(t *testing.T) {
	// Act
	links := threadPosts(t)[0].Links

	// Assert
	assert.Equal(t, []domain.Link{
		{URL: "https://twitter.com/alice_shoots", Text: "my twitter", LinkType: domain.LinkExternal},
		{URL: fixtures.BaseURL + "/threads/winter-photos.4100/", Text: "winter thread", LinkType: domain.LinkInternal},
		{URL: "https://img.example.net/full/dunes.png", Text: "dunes.png", LinkType: domain.LinkImageLink},
	}, links)
}

func TestExtractPosts_SameDocumentTwice_IsIdempotent(t *testing.T) {
	// Arrange
	e := newTestExtractor(t, nil)
	doc := parse(t, fixtures.GenerateThreadPage())

	// Act
	first := e.ExtractPosts(context.Background(), doc)
	second := e.ExtractPosts(context.Background(), doc)

	// Assert
	assert.Equal(t, first, second)
}

func TestExtractPosts_EmptyPage_ReturnsNoPosts(t *testing.T) {
	// Arrange
	e := newTestExtractor(t, nil)

	// Act
	posts := e.ExtractPosts(context.Background(), parse(t, fixtures.GenerateEmptyPage()))

	// Assert
	assert.Empty(t, posts)
}

func TestExtractPosts_CustomContainerMiss_FallsBackToDefaults(t *testing.T) {
	// Arrange
	set := &patterns.PatternSet{Selectors: patterns.Selectors{PostContainer: []string{"li.forumPost"}}}
	e := newTestExtractor(t, set)

	// Act
	posts := e.ExtractPosts(context.Background(), parse(t, fixtures.GenerateThreadPage()))

	// Assert
	assert.Len(t, posts, 2)
}

func TestExtractPosts_CustomContainer_TakesPriority(t *testing.T) {
	// Arrange
	html := `<html><body>
<li class="forumPost" data-content="post-1"><div class="bbWrapper">first</div></li>
<article class="message" data-content="post-2"><div class="bbWrapper">ignored</div></article>
</body></html>`
	set := &patterns.PatternSet{Selectors: patterns.Selectors{PostContainer: []string{"li.forumPost"}}}
	e := newTestExtractor(t, set)

	// Act
	posts := e.ExtractPosts(context.Background(), parse(t, html))

	// Assert
	require.Len(t, posts, 1)
	assert.Equal(t, "post-1", posts[0].PostID)
	assert.Equal(t, "first", posts[0].Content)
}

func TestExtractPosts_MissingIdentity_SynthesizesStableDistinctIDs(t *testing.T) {
	// Arrange
	html := `<html><body>
<article class="message"><div class="bbWrapper">one</div></article>
<article class="message"><div class="bbWrapper">two</div></article>
</body></html>`
	e := newTestExtractor(t, nil)
	doc := parse(t, html)

	// Act
	first := e.ExtractPosts(context.Background(), doc)
	second := e.ExtractPosts(context.Background(), doc)

	// Assert
	require.Len(t, first, 2)
	assert.True(t, first[0].SyntheticID)
	assert.True(t, strings.HasPrefix(first[0].PostID, "synthetic-"))
	assert.Len(t, first[0].PostID, len("synthetic-")+12)
	assert.NotEqual(t, first[0].PostID, first[1].PostID)
	assert.Equal(t, first[0].PostID, second[0].PostID)
}

func TestExtractPosts_NoContentElement_YieldsEmptyContent(t *testing.T) {
	// Arrange
	html := `<html><body><article class="message" data-content="post-9"><p>bare</p></article></body></html>`
	e := newTestExtractor(t, nil)

	// Act
	posts := e.ExtractPosts(context.Background(), parse(t, html))

	// Assert
	require.Len(t, posts, 1)
	assert.Empty(t, posts[0].Content)
	assert.Empty(t, posts[0].Attachments)
	assert.Empty(t, posts[0].Links)
}

func TestExtractAttachments_SharedURLs_CountsUnion(t *testing.T) {
	// Arrange
	html := `<div class="bbWrapper">
<a class="file-preview" href="/attachments/a-jpg.1/">a.jpg</a>
<a class="file-preview" href="/attachments/b-jpg.2/">b.jpg</a>
<img class="bbImage" src="/attachments/a-jpg.1/" alt="a.jpg">
<img class="bbImage" src="https://cdn.example.net/c.png">
<img class="bbImage" src="data:image/gif;base64,R0lGOD" data-url="https://cdn.example.net/d.webp">
<img class="bbImage" src="data:image/gif;base64,R0lGOD">
</div>`
	e := newTestExtractor(t, nil)
	content := parse(t, html).Find("div.bbWrapper")

	// Act
	attachments := e.extractAttachments(content)

	// Assert
	require.Len(t, attachments, 4)
	assert.Equal(t, "1", attachments[0].AttachmentID)
	assert.Equal(t, "2", attachments[1].AttachmentID)
	assert.Equal(t, "c.png", attachments[2].Filename)
	assert.Equal(t, "c", attachments[2].AttachmentID)
	assert.Equal(t, "https://cdn.example.net/d.webp", attachments[3].URL)
}

func TestExtractAttachments_RepeatedExplicitAnchors_AllKept(t *testing.T) {
	// Arrange
	html := `<div class="bbWrapper">
<a class="file-preview" href="/attachments/a-jpg.1/">a.jpg</a>
<a class="file-preview" href="/attachments/a-jpg.1/">a.jpg</a>
<img class="bbImage" src="/attachments/a-jpg.1/" alt="a.jpg">
<img class="bbImage" src="https://cdn.example.net/c.png">
</div>`
	e := newTestExtractor(t, nil)
	content := parse(t, html).Find("div.bbWrapper")

	// Act
	attachments := e.extractAttachments(content)

	// Assert
	require.Len(t, attachments, 3)
	assert.Equal(t, attachments[0].URL, attachments[1].URL)
	assert.Equal(t, "c.png", attachments[2].Filename)
}

func TestExtractAttachments_PatternAnchors_KeepDocumentOrder(t *testing.T) {
	// Arrange
	html := `<div class="bbWrapper">
<div class="files"><a href="/files/first.pdf">first.pdf</a></div>
<a class="files" href="/files/second.zip">second.zip</a>
<div class="files"><a href="/files/third.mp4">third.mp4</a></div>
</div>`
	set := &patterns.PatternSet{Selectors: patterns.Selectors{Attachments: []string{".files"}}}
	e := newTestExtractor(t, set)
	content := parse(t, html).Find("div.bbWrapper")

	// Act
	attachments := e.extractAttachments(content)

	// Assert
	require.Len(t, attachments, 3)
	assert.Equal(t, "first.pdf", attachments[0].Filename)
	assert.Equal(t, "second.zip", attachments[1].Filename)
	assert.Equal(t, "third.mp4", attachments[2].Filename)
}

func TestExtractLinks_LookalikeHost_IsExternal(t *testing.T) {
	// Arrange
	html := `<div class="bbWrapper">
<a href="https://forum.example.com.evil.net/x">lookalike</a>
<a href="https://FORUM.example.com/threads/a.1/">same forum</a>
</div>`
	e := newTestExtractor(t, nil)
	content := parse(t, html).Find("div.bbWrapper")

	// Act
	links := e.extractLinks(content)

	// Assert
	require.Len(t, links, 2)
	assert.Equal(t, domain.LinkExternal, links[0].LinkType)
	assert.Equal(t, domain.LinkInternal, links[1].LinkType)
}

func TestExtractAttachments_URLPatternFallback(t *testing.T) {
	// Arrange
	html := `<div class="bbWrapper"><a href="/attachments/clip-mp4.77/"></a></div>`
	e := newTestExtractor(t, nil)
	content := parse(t, html).Find("div.bbWrapper")

	// Act
	attachments := e.extractAttachments(content)

	// Assert
	require.Len(t, attachments, 1)
	assert.Equal(t, "clip-mp4.77", attachments[0].Filename)
	assert.Equal(t, "77", attachments[0].AttachmentID)
	assert.Equal(t, domain.FileUnknown, attachments[0].FileType)
}
