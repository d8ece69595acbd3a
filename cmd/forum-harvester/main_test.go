package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"forum-harvester/internal/adapters/export"
	"forum-harvester/internal/domain"
)

func sampleExport() *domain.ThreadExport {
	return &domain.ThreadExport{
		ThreadID:    "4242",
		Title:       "Summer photos",
		URL:         "https://forum.example.com/threads/summer-photos.4242/",
		Tags:        []string{"summer"},
		Prefixes:    []string{"Photos"},
		TotalPages:  3,
		CurrentPage: 1,
		TotalPosts:  3,
		SocialLinks: []domain.SocialLinkExport{
			{URL: "https://twitter.com/alice_shoots", Text: "tw", Platform: "twitter"},
		},
		Posts: []domain.PostExport{
			{PostID: "post-101", Author: domain.UserExport{Username: "alice"}, Content: "first post", Reactions: 3,
				Attachments: []domain.AttachmentExport{{Filename: "a.jpg", URL: "https://img.example.net/a.jpg", FileType: "image"}}},
			{PostID: "post-102", Author: domain.UserExport{Username: "bob"}, Content: "second post"},
			{PostID: "post-103", Author: domain.UserExport{Username: "alice"}, Content: "third post"},
		},
	}
}

func run(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	color.NoColor = true
	var out, errOut bytes.Buffer
	err = execute(context.Background(), args, &out, &errOut)
	return out.String(), errOut.String(), err
}

func TestView_PrintsSummary(t *testing.T) {
	// Arrange
	dir := t.TempDir()
	chdir(t, dir)
	writer := export.NewJSONWriter(filepath.Join(dir, "downloads"))
	require.NoError(t, writer.Save(context.Background(), sampleExport()))

	// Act
	stdout, _, err := run(t, "view", writer.Path("4242"), "--posts", "1")

	// Assert
	require.NoError(t, err)
	assert.Contains(t, stdout, "Summer photos")
	assert.Contains(t, stdout, "tags: Photos, summer")
	assert.Contains(t, stdout, "posts 3  authors 2  attachments 1")
	assert.Contains(t, stdout, " 1. alice (2)")
	assert.Contains(t, stdout, "image: 1")
	assert.Contains(t, stdout, "twitter https://twitter.com/alice_shoots")
	assert.Contains(t, stdout, "first post")
	assert.NotContains(t, stdout, "second post")
}

func TestView_MissingFile(t *testing.T) {
	// Arrange
	chdir(t, t.TempDir())

	// Act
	_, stderr, err := run(t, "view", "nope.json")

	// Assert
	assert.Error(t, err)
	assert.Contains(t, stderr, "error:")
}

func TestScrape_RequiresURL(t *testing.T) {
	// Arrange
	chdir(t, t.TempDir())

	// Act
	_, stderr, err := run(t, "scrape")

	// Assert
	assert.Error(t, err)
	assert.Contains(t, stderr, "accepts 1 arg(s)")
}

func TestMonitor_NoThreads(t *testing.T) {
	// Arrange
	chdir(t, t.TempDir())

	// Act
	_, _, err := run(t, "monitor")

	// Assert
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no threads to monitor")
}

func TestMonitorThreads(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		configured []string
		want       []string
	}{
		{"arguments win", []string{"a", "b"}, []string{"c"}, []string{"a", "b"}},
		{"falls back to config", nil, []string{"c", "", "c", "d"}, []string{"c", "d"}},
		{"nothing", nil, nil, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, monitorThreads(tt.args, tt.configured))
		})
	}
}

func TestReport_PrintsHint(t *testing.T) {
	// Arrange
	color.NoColor = true
	var buf bytes.Buffer
	err := &domain.FetchError{
		URL:        "https://forum.example.com/threads/x.1/",
		Tier:       domain.TierHTTP,
		StatusCode: 403,
		Hint:       "export cf_clearance into the site profile",
		Err:        domain.ErrCookiesRequired,
	}

	// Act
	report(&buf, err)

	// Assert
	assert.Contains(t, buf.String(), "error: fetch https://forum.example.com/threads/x.1/ (http tier): HTTP 403")
	assert.Contains(t, buf.String(), "hint: export cf_clearance into the site profile")
}
