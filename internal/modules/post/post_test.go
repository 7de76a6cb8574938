package post

import (
	"testing"

	"github.com/seoforge/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildKeywordRows(t *testing.T) {
	rows := buildKeywordRows("post-1", models.KeywordSet{
		Primary:   []string{"seo tools", " "},
		Secondary: []string{"keyword research"},
		Semantic:  []string{"search visibility"},
		LSI:       []string{"serp"},
	})

	require.Len(t, rows, 4)
	assert.Equal(t, models.KeywordTypePrimary, rows[0].KeywordType)
	assert.Equal(t, "seo tools", rows[0].KeywordText)
	assert.Equal(t, models.KeywordTypeSecondary, rows[1].KeywordType)
	assert.Equal(t, models.KeywordTypeSemantic, rows[2].KeywordType)
	assert.Equal(t, models.KeywordTypeLSI, rows[3].KeywordType)
	for _, row := range rows {
		assert.Equal(t, "post-1", row.BlogPostID)
	}
}

func TestBuildHeadingRowsDocumentOrder(t *testing.T) {
	rows := buildHeadingRows("post-1", models.HeadingTree{
		H1:  "Main Title",
		H2s: []string{"Section A", "Section B"},
		H3s: []models.Subheading{
			{H2Index: 1, Text: "B Detail"},
			{H2Index: 0, Text: "A Detail One"},
			{H2Index: 0, Text: "A Detail Two"},
		},
	})

	require.Len(t, rows, 6)

	levels := make([]string, len(rows))
	texts := make([]string, len(rows))
	for i, row := range rows {
		levels[i] = row.HeadingLevel
		texts[i] = row.HeadingText
		assert.Equal(t, i, row.OrderIndex)
	}
	assert.Equal(t, []string{"h1", "h2", "h3", "h3", "h2", "h3"}, levels)
	assert.Equal(t, []string{
		"Main Title",
		"Section A", "A Detail One", "A Detail Two",
		"Section B", "B Detail",
	}, texts)
}

func TestBuildHeadingRowsSkipsEmpty(t *testing.T) {
	rows := buildHeadingRows("post-1", models.HeadingTree{
		H2s: []string{"Only Section", ""},
	})
	require.Len(t, rows, 1)
	assert.Equal(t, "h2", rows[0].HeadingLevel)
	assert.Equal(t, 0, rows[0].OrderIndex)
}
