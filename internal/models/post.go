package models

// Post status values.
const (
	PostStatusDraft     = "draft"
	PostStatusPublished = "published"
)

// Keyword type values, mirroring the wizard's four lists.
const (
	KeywordTypePrimary   = "primary"
	KeywordTypeSecondary = "secondary"
	KeywordTypeSemantic  = "semantic"
	KeywordTypeLSI       = "lsi"
)

// BlogPostModel is a finalized post saved from the wizard.
type BlogPostModel struct {
	Base
	UserID          string    `json:"user_id"          gorm:"type:char(36);index;not null"`
	Title           string    `json:"title"            gorm:"not null"`
	H1Title         string    `json:"h1_title"`
	MetaTitle       string    `json:"meta_title"`
	MetaDescription string    `json:"meta_description" gorm:"type:text"`
	URLSlug         string    `json:"url_slug"         gorm:"index"`
	ShortIntro      string    `json:"short_intro"      gorm:"type:text"`
	Content         string    `json:"content"          gorm:"type:text"`
	FaqContent      []FaqItem `json:"faq_content"      gorm:"type:text;serializer:json"`
	WordCount       int       `json:"word_count"       gorm:"default:0"`
	SeoScore        int       `json:"seo_score"        gorm:"default:0"`
	Status          string    `json:"status"           gorm:"index;default:'draft'"`

	Keywords []PostKeywordModel `json:"keywords,omitempty" gorm:"foreignKey:BlogPostID"`
	Headings []PostHeadingModel `json:"headings,omitempty" gorm:"foreignKey:BlogPostID"`
}

func (BlogPostModel) TableName() string { return "blog_posts" }

// PostKeywordModel is one keyword row attached to a saved post.
type PostKeywordModel struct {
	Base
	BlogPostID  string `json:"-"            gorm:"type:char(36);index;not null"`
	KeywordType string `json:"keyword_type" gorm:"index;not null"`
	KeywordText string `json:"keyword_text" gorm:"not null"`
}

func (PostKeywordModel) TableName() string { return "keywords" }

// PostHeadingModel is one heading row attached to a saved post.
// OrderIndex preserves document order across levels.
type PostHeadingModel struct {
	Base
	BlogPostID   string `json:"-"             gorm:"type:char(36);index;not null"`
	HeadingLevel string `json:"heading_level" gorm:"not null"` // h1 | h2 | h3
	HeadingText  string `json:"heading_text"  gorm:"not null"`
	OrderIndex   int    `json:"order_index"   gorm:"default:0"`
}

func (PostHeadingModel) TableName() string { return "headings" }
