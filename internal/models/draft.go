package models

// KeywordSet groups the four keyword lists the wizard works with.
type KeywordSet struct {
	Primary   []string `json:"primary"`
	Secondary []string `json:"secondary"`
	Semantic  []string `json:"semantic"`
	LSI       []string `json:"lsi"`
}

// MetaTags holds the SEO meta fields for a post.
type MetaTags struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Slug        string `json:"slug"`
}

// Subheading is an h3 attached to the h2 at H2Index.
type Subheading struct {
	H2Index int    `json:"h2Index"`
	Text    string `json:"text"`
}

// HeadingTree is the generated heading structure of a post.
type HeadingTree struct {
	H1  string       `json:"h1"`
	H2s []string     `json:"h2s"`
	H3s []Subheading `json:"h3s"`
}

// FaqItem is a single question/answer pair.
type FaqItem struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// BlogDraftModel is the single in-progress wizard state for a user. The
// unique index on UserID is what makes the autosave upsert race free: two
// concurrent saves for the same user resolve to one row via ON CONFLICT.
type BlogDraftModel struct {
	Base
	UserID     string      `json:"user_id"     gorm:"type:char(36);uniqueIndex;not null"`
	Keywords   KeywordSet  `json:"keywords"    gorm:"type:text;serializer:json"`
	MetaTags   MetaTags    `json:"meta_tags"   gorm:"type:text;serializer:json"`
	Headings   HeadingTree `json:"headings"    gorm:"type:text;serializer:json"`
	ShortIntro string      `json:"short_intro" gorm:"type:text"`
	Content    string      `json:"content"     gorm:"type:text"`
	FaqContent []FaqItem   `json:"faq_content" gorm:"type:text;serializer:json"`
}

func (BlogDraftModel) TableName() string { return "blog_drafts" }
