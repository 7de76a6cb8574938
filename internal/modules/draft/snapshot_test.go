package draft

import (
	"encoding/json"
	"testing"

	"github.com/seoforge/core/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalIsDeterministic(t *testing.T) {
	a := Snapshot{
		Keywords:   models.KeywordSet{Primary: []string{"espresso"}, LSI: []string{"crema"}},
		MetaTags:   models.MetaTags{Title: "T", Description: "D", Slug: "t"},
		Headings:   models.HeadingTree{H1: "H", H2s: []string{"A", "B"}},
		ShortIntro: "intro",
		Content:    "body",
		FaqContent: []models.FaqItem{{Question: "Q", Answer: "A"}},
	}
	b := a

	assert.Equal(t, a.Canonical(), b.Canonical())
}

func TestCanonicalTreatsNilAndEmptySlicesAlike(t *testing.T) {
	withNil := Snapshot{ShortIntro: "x"}
	withEmpty := Snapshot{
		Keywords:   models.KeywordSet{Primary: []string{}, Secondary: []string{}, Semantic: []string{}, LSI: []string{}},
		Headings:   models.HeadingTree{H2s: []string{}, H3s: []models.Subheading{}},
		FaqContent: []models.FaqItem{},
		ShortIntro: "x",
	}

	assert.Equal(t, withNil.Canonical(), withEmpty.Canonical())
}

func TestCanonicalDetectsFieldChange(t *testing.T) {
	base := snapWithIntro("one")
	changed := snapWithIntro("two")

	assert.NotEqual(t, base.Canonical(), changed.Canonical())
}

func TestEmptySnapshotCanonicalIsNonEmpty(t *testing.T) {
	// the initial confirmed form is the empty string; an all-blank snapshot
	// must still compare unequal to it
	assert.NotEmpty(t, Snapshot{}.Canonical())
}

func TestSnapshotRoundTripThroughModel(t *testing.T) {
	snap := Snapshot{
		Keywords: models.KeywordSet{
			Primary:   []string{"coffee grinder"},
			Secondary: []string{"burr grinder", "blade grinder"},
			Semantic:  []string{"grind size"},
			LSI:       []string{"coffee beans"},
		},
		MetaTags: models.MetaTags{Title: "Grinders", Description: "All about grinders", Slug: "grinders"},
		Headings: models.HeadingTree{
			H1:  "The Grinder Guide",
			H2s: []string{"Why Grind Fresh", "Burr vs Blade"},
			H3s: []models.Subheading{{H2Index: 1, Text: "Conical Burrs"}},
		},
		ShortIntro: "<p>Fresh grinding matters.</p>",
		Content:    "<h2>Why Grind Fresh</h2><p>...</p>",
		FaqContent: []models.FaqItem{{Question: "How fine?", Answer: "Depends on brew method."}},
	}

	row := models.BlogDraftModel{
		UserID:     "u1",
		Keywords:   snap.Keywords,
		MetaTags:   snap.MetaTags,
		Headings:   snap.Headings,
		ShortIntro: snap.ShortIntro,
		Content:    snap.Content,
		FaqContent: snap.FaqContent,
	}

	back := SnapshotOf(&row)
	assert.Equal(t, snap.Canonical(), back.Canonical())
}

func TestSnapshotUnmarshalAcceptsCamelCase(t *testing.T) {
	raw := `{
		"keywords": {"primary": ["espresso"], "secondary": [], "semantic": [], "lsi": []},
		"metaTags": {"title": "T", "description": "D", "slug": "t"},
		"headings": {"h1": "H", "h2s": ["A"], "h3s": [{"h2Index": 0, "text": "sub"}]},
		"shortIntro": "intro",
		"content": "body",
		"faqContent": [{"question": "Q", "answer": "A"}]
	}`

	var snap Snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &snap))

	assert.Equal(t, "T", snap.MetaTags.Title)
	assert.Equal(t, "intro", snap.ShortIntro)
	assert.Equal(t, []string{"espresso"}, snap.Keywords.Primary)
	require.Len(t, snap.Headings.H3s, 1)
	assert.Equal(t, 0, snap.Headings.H3s[0].H2Index)
	require.Len(t, snap.FaqContent, 1)
	assert.Equal(t, "Q", snap.FaqContent[0].Question)
}
