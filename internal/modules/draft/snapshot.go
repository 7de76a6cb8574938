package draft

import (
	"encoding/json"

	"github.com/seoforge/core/internal/models"
)

// Snapshot is the complete wizard state observed from a client. It is the
// unit of change detection: two snapshots are equal iff their canonical
// forms are equal.
type Snapshot struct {
	Keywords   models.KeywordSet  `json:"keywords"`
	MetaTags   models.MetaTags    `json:"meta_tags"`
	Headings   models.HeadingTree `json:"headings"`
	ShortIntro string             `json:"short_intro"`
	Content    string             `json:"content"`
	FaqContent []models.FaqItem   `json:"faq_content"`
}

func (s *Snapshot) UnmarshalJSON(data []byte) error {
	type snakeCase Snapshot
	type camelCase struct {
		MetaTags   *models.MetaTags `json:"metaTags"`
		ShortIntro *string          `json:"shortIntro"`
		FaqContent []models.FaqItem `json:"faqContent"`
	}

	var snake snakeCase
	if err := json.Unmarshal(data, &snake); err != nil {
		return err
	}

	var camel camelCase
	if err := json.Unmarshal(data, &camel); err != nil {
		return err
	}

	*s = Snapshot(snake)
	if s.MetaTags == (models.MetaTags{}) && camel.MetaTags != nil {
		s.MetaTags = *camel.MetaTags
	}
	if s.ShortIntro == "" && camel.ShortIntro != nil {
		s.ShortIntro = *camel.ShortIntro
	}
	if s.FaqContent == nil && camel.FaqContent != nil {
		s.FaqContent = camel.FaqContent
	}

	return nil
}

// normalized returns a copy with nil slices replaced by empty ones, so that
// a missing list and an empty list serialize identically.
func (s Snapshot) normalized() Snapshot {
	out := s
	out.Keywords.Primary = nonNil(s.Keywords.Primary)
	out.Keywords.Secondary = nonNil(s.Keywords.Secondary)
	out.Keywords.Semantic = nonNil(s.Keywords.Semantic)
	out.Keywords.LSI = nonNil(s.Keywords.LSI)
	out.Headings.H2s = nonNil(s.Headings.H2s)
	if s.Headings.H3s == nil {
		out.Headings.H3s = []models.Subheading{}
	}
	if s.FaqContent == nil {
		out.FaqContent = []models.FaqItem{}
	}
	return out
}

// Canonical returns the deterministic serialized form used for change
// detection. Struct field order is fixed, so equal states always produce
// byte-identical output.
func (s Snapshot) Canonical() string {
	b, err := json.Marshal(s.normalized())
	if err != nil {
		// Snapshot contains only strings and slices; Marshal cannot fail.
		return ""
	}
	return string(b)
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}
