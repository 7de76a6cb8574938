package ai

import (
	"strings"
	"testing"

	"github.com/seoforge/core/internal/models"
	"github.com/stretchr/testify/assert"
)

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 3, CountWords("one  two\nthree"))
}

func buildScoringContent(primaryHits int, extraWords int) string {
	var b strings.Builder
	b.WriteString("Best SEO Tools for 2026\n")
	b.WriteString("<h2>Getting Started</h2>\n<h2>Advanced Tactics</h2>\n")
	for i := 0; i < primaryHits; i++ {
		b.WriteString("seo tools are useful. ")
	}
	for i := 0; i < extraWords; i++ {
		b.WriteString("filler ")
	}
	return b.String()
}

func TestScoreContentFullMarks(t *testing.T) {
	content := buildScoringContent(6, 200)
	score := ScoreContent(content,
		models.KeywordSet{Primary: []string{"SEO tools"}},
		models.MetaTags{Title: "Best SEO Tools for 2026"},
		models.HeadingTree{H2s: []string{"Getting Started", "Advanced Tactics"}},
		100)
	assert.Equal(t, 100, score)
}

func TestScoreContentBelowWordTarget(t *testing.T) {
	content := buildScoringContent(6, 0)
	score := ScoreContent(content,
		models.KeywordSet{Primary: []string{"SEO tools"}},
		models.MetaTags{Title: "Best SEO Tools for 2026"},
		models.HeadingTree{H2s: []string{"Getting Started", "Advanced Tactics"}},
		5000)
	assert.Equal(t, 70, score)
}

func TestScoreContentKeywordStuffingGetsNoKeywordPoints(t *testing.T) {
	content := buildScoringContent(30, 200)
	score := ScoreContent(content,
		models.KeywordSet{Primary: []string{"SEO tools"}},
		models.MetaTags{Title: "Best SEO Tools for 2026"},
		models.HeadingTree{H2s: []string{"Getting Started", "Advanced Tactics"}},
		100)
	assert.Equal(t, 75, score)
}

func TestScoreContentMissingHeading(t *testing.T) {
	content := buildScoringContent(6, 200)
	score := ScoreContent(content,
		models.KeywordSet{Primary: []string{"SEO tools"}},
		models.MetaTags{Title: "Best SEO Tools for 2026"},
		models.HeadingTree{H2s: []string{"Getting Started", "Pricing Breakdown"}},
		100)
	assert.Equal(t, 75, score)
}

func TestScoreContentMissingTitle(t *testing.T) {
	content := buildScoringContent(6, 200)
	score := ScoreContent(content,
		models.KeywordSet{Primary: []string{"SEO tools"}},
		models.MetaTags{Title: "A Title That Never Appears"},
		models.HeadingTree{H2s: []string{"Getting Started"}},
		100)
	assert.Equal(t, 80, score)
}

func TestScoreContentEmptyInputs(t *testing.T) {
	score := ScoreContent("", models.KeywordSet{}, models.MetaTags{}, models.HeadingTree{}, 0)
	assert.Equal(t, 0, score)
}
