package scraper

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCountReactions(t *testing.T) {
	tests := []struct {
		name string
		html string
		want int
	}{
		{"names and others", `<div class="r"><bdi>Alice</bdi>, <bdi>Bob</bdi> and 11 others</div>`, 13},
		{"single other", `<div class="r"><bdi>Alice</bdi> and 1 other</div>`, 2},
		{"names only", `<div class="r"><bdi>Alice</bdi>, <bdi>Bob</bdi> and <bdi>Carol</bdi></div>`, 3},
		{"repeated name counted once", `<div class="r"><bdi>Alice</bdi>, <bdi>Alice</bdi></div>`, 1},
		{"number only", `<div class="r">42 people liked this</div>`, 42},
		{"nothing", `<div class="r">Like</div>`, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Arrange
			el := parse(t, "<html><body>"+tt.html+"</body></html>").Find("div.r")

			// Act
			got := countReactions(el)

			// Assert
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCountReactions_NoElement_ReturnsZero(t *testing.T) {
	assert.Equal(t, 0, countReactions(nil))
}

func TestReactionsElement_FallsBackToReactionsLink(t *testing.T) {
	// Arrange
	html := `<html><body><article class="message">
<a href="/posts/5/reactions"><bdi>A</bdi>, <bdi>B</bdi></a>
</article></body></html>`
	e := newTestExtractor(t, nil)
	post := parse(t, html).Find("article")

	// Act
	got := countReactions(e.reactionsElement(post))

	// Assert
	assert.Equal(t, 2, got)
}
