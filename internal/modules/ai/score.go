package ai

import (
	"strings"

	"github.com/seoforge/core/internal/models"
)

// CountWords counts whitespace-separated tokens, HTML tags included.
func CountWords(text string) int {
	return len(strings.Fields(text))
}

// ScoreContent rates generated content on four additive signals: hitting the
// target word count (+30), the first primary keyword appearing 5 to 15 times
// case-insensitively (+25), every planned H2 appearing in the body (+25),
// and the meta title appearing verbatim (+20).
func ScoreContent(content string, keywords models.KeywordSet, metaTags models.MetaTags, headings models.HeadingTree, targetWordCount int) int {
	score := 0
	lower := strings.ToLower(content)

	if targetWordCount > 0 && CountWords(content) >= targetWordCount {
		score += 30
	}

	if len(keywords.Primary) > 0 {
		primary := strings.ToLower(strings.TrimSpace(keywords.Primary[0]))
		if primary != "" {
			occurrences := strings.Count(lower, primary)
			if occurrences >= 5 && occurrences <= 15 {
				score += 25
			}
		}
	}

	if len(headings.H2s) > 0 {
		allPresent := true
		for _, h2 := range headings.H2s {
			if !strings.Contains(lower, strings.ToLower(h2)) {
				allPresent = false
				break
			}
		}
		if allPresent {
			score += 25
		}
	}

	if metaTags.Title != "" && strings.Contains(content, metaTags.Title) {
		score += 20
	}

	return score
}
