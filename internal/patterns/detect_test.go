package patterns

import (
	"testing"

	"forum-harvester/test/fixtures"

	"github.com/stretchr/testify/assert"
)

func TestDetect_ThreadPage_FindsXenForoStructure(t *testing.T) {
	// Act
	set := Detect(doc(t, fixtures.GenerateThreadPage()), fixtures.ThreadURL)

	// Assert
	assert.Equal(t, fixtures.ThreadURL, set.ThreadURLSample)
	assert.Contains(t, set.Selectors.PostContainer, ".message")
	assert.Contains(t, set.Selectors.PostContainer, "article.message.message--post")
	assert.Equal(t, []string{"bbWrapper"}, set.Classes.ContentWrapper)
	assert.Contains(t, set.Selectors.Author, ".username")
	assert.Contains(t, set.Selectors.Date, "time[datetime]")
	assert.Equal(t, []string{".reactionsBar"}, set.Selectors.Reactions)
	assert.Equal(t, []string{".pageNav"}, set.Selectors.Pagination)
	assert.Empty(t, set.Selectors.Attachments)
	assert.Equal(t, "data-content", set.Attributes.PostID)
}

func TestDetect_EmptyPage_LeavesFieldsForDefaults(t *testing.T) {
	// Act
	set := Detect(doc(t, fixtures.GenerateEmptyPage()), "")

	// Assert
	assert.Empty(t, set.Selectors.PostContainer)
	assert.Empty(t, set.Attributes.PostID)
	assert.Equal(t, []string{".message", "article.message"}, set.Candidates(FieldPostContainer))
}
