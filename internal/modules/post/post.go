package post

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/seoforge/core/internal/middleware"
	"github.com/seoforge/core/internal/models"
	"github.com/seoforge/core/internal/modules/ai"
	"github.com/seoforge/core/internal/pkg/pagination"
	"github.com/seoforge/core/internal/pkg/response"
	"github.com/seoforge/core/internal/pkg/webhook"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Webhook event names sent to a profile's configured URL.
const (
	EventPostSaved     = "post.saved"
	EventPostPublished = "post.published"
)

// SaveRequest is the finalized wizard state submitted for persistence.
type SaveRequest struct {
	Keywords   models.KeywordSet  `json:"keywords"`
	MetaTags   models.MetaTags    `json:"metaTags"`
	Headings   models.HeadingTree `json:"headings"`
	ShortIntro string             `json:"shortIntro"`
	Content    string             `json:"content"    binding:"required"`
	FaqContent []models.FaqItem   `json:"faqContent"`
	SeoScore   int                `json:"seoScore"`
}

// Service persists finalized posts with their keyword and heading children.
type Service struct {
	db       *gorm.DB
	notifier *webhook.Notifier
	logger   *zap.Logger
}

func NewService(db *gorm.DB, notifier *webhook.Notifier, logger *zap.Logger) *Service {
	return &Service{db: db, notifier: notifier, logger: logger}
}

// Create saves the wizard state as a blog post and discards the user's draft.
func (s *Service) Create(userID string, req SaveRequest) (*models.BlogPostModel, error) {
	title := strings.TrimSpace(req.Headings.H1)
	if title == "" {
		title = strings.TrimSpace(req.MetaTags.Title)
	}
	if title == "" {
		return nil, errors.New("post title is empty")
	}

	post := models.BlogPostModel{
		UserID:          userID,
		Title:           title,
		H1Title:         req.Headings.H1,
		MetaTitle:       req.MetaTags.Title,
		MetaDescription: req.MetaTags.Description,
		URLSlug:         req.MetaTags.Slug,
		ShortIntro:      req.ShortIntro,
		Content:         req.Content,
		FaqContent:      req.FaqContent,
		WordCount:       ai.CountWords(req.Content),
		SeoScore:        req.SeoScore,
		Status:          models.PostStatusDraft,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&post).Error; err != nil {
			return err
		}
		if rows := buildKeywordRows(post.ID, req.Keywords); len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		if rows := buildHeadingRows(post.ID, req.Headings); len(rows) > 0 {
			if err := tx.Create(&rows).Error; err != nil {
				return err
			}
		}
		// The saved post supersedes the in-progress draft.
		return tx.Unscoped().Where("user_id = ?", userID).Delete(&models.BlogDraftModel{}).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifyAsync(userID, EventPostSaved, &post)
	return &post, nil
}

func buildKeywordRows(postID string, kw models.KeywordSet) []models.PostKeywordModel {
	rows := make([]models.PostKeywordModel, 0,
		len(kw.Primary)+len(kw.Secondary)+len(kw.Semantic)+len(kw.LSI))
	add := func(keywordType string, texts []string) {
		for _, text := range texts {
			text = strings.TrimSpace(text)
			if text == "" {
				continue
			}
			rows = append(rows, models.PostKeywordModel{
				BlogPostID:  postID,
				KeywordType: keywordType,
				KeywordText: text,
			})
		}
	}
	add(models.KeywordTypePrimary, kw.Primary)
	add(models.KeywordTypeSecondary, kw.Secondary)
	add(models.KeywordTypeSemantic, kw.Semantic)
	add(models.KeywordTypeLSI, kw.LSI)
	return rows
}

// buildHeadingRows flattens the tree into document order: h1 first, each h2
// followed by its own h3s.
func buildHeadingRows(postID string, tree models.HeadingTree) []models.PostHeadingModel {
	rows := make([]models.PostHeadingModel, 0, 1+len(tree.H2s)+len(tree.H3s))
	order := 0
	add := func(level, text string) {
		text = strings.TrimSpace(text)
		if text == "" {
			return
		}
		rows = append(rows, models.PostHeadingModel{
			BlogPostID:   postID,
			HeadingLevel: level,
			HeadingText:  text,
			OrderIndex:   order,
		})
		order++
	}

	add("h1", tree.H1)
	for i, h2 := range tree.H2s {
		add("h2", h2)
		for _, h3 := range tree.H3s {
			if h3.H2Index == i {
				add("h3", h3.Text)
			}
		}
	}
	return rows
}

// List returns the user's posts, newest first.
func (s *Service) List(userID string, q pagination.Query) ([]models.BlogPostModel, response.Pagination, error) {
	tx := s.db.Model(&models.BlogPostModel{}).
		Where("user_id = ?", userID).
		Order("created_at DESC")

	var posts []models.BlogPostModel
	pag, err := pagination.Paginate(tx, q, &posts)
	return posts, pag, err
}

// Get returns one of the user's posts with its keyword and heading children.
func (s *Service) Get(userID, postID string) (*models.BlogPostModel, error) {
	var post models.BlogPostModel
	err := s.db.
		Preload("Keywords").
		Preload("Headings", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		First(&post, "id = ? AND user_id = ?", postID, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &post, nil
}

// UpdateStatus transitions a post between draft and published.
func (s *Service) UpdateStatus(userID, postID, status string) (*models.BlogPostModel, error) {
	post, err := s.Get(userID, postID)
	if err != nil || post == nil {
		return nil, err
	}

	if err := s.db.Model(post).Update("status", status).Error; err != nil {
		return nil, err
	}
	post.Status = status

	if status == models.PostStatusPublished {
		s.notifyAsync(userID, EventPostPublished, post)
	}
	return post, nil
}

// Delete removes a post and its children.
func (s *Service) Delete(userID, postID string) (bool, error) {
	var post models.BlogPostModel
	err := s.db.First(&post, "id = ? AND user_id = ?", postID, userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("blog_post_id = ?", postID).Delete(&models.PostKeywordModel{}).Error; err != nil {
			return err
		}
		if err := tx.Unscoped().Where("blog_post_id = ?", postID).Delete(&models.PostHeadingModel{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&post).Error
	})
	return err == nil, err
}

// notifyAsync delivers the event to the user's webhook URL, if any. Failures
// are logged and never surface to the request.
func (s *Service) notifyAsync(userID, event string, post *models.BlogPostModel) {
	if s.notifier == nil {
		return
	}

	go func() {
		var profile models.ProfileModel
		if err := s.db.Select("webhook_url").First(&profile, "id = ?", userID).Error; err != nil {
			return
		}
		if strings.TrimSpace(profile.WebhookURL) == "" {
			return
		}
		payload := gin.H{
			"postId":   post.ID,
			"title":    post.Title,
			"status":   post.Status,
			"seoScore": post.SeoScore,
		}
		if err := s.notifier.Notify(context.Background(), profile.WebhookURL, event, payload); err != nil {
			s.logger.Warn("webhook delivery failed",
				zap.String("event", event),
				zap.String("post_id", post.ID),
				zap.Error(err))
		}
	}()
}

type Handler struct{ svc *Service }

func NewHandler(svc *Service) *Handler { return &Handler{svc: svc} }

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/posts", authMW)

	g.POST("", h.create)
	g.GET("", h.list)
	g.GET("/:id", h.get)
	g.PATCH("/:id/status", h.updateStatus)
	g.DELETE("/:id", h.delete)
}

// POST /posts
func (h *Handler) create(c *gin.Context) {
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	post, err := h.svc.Create(middleware.CurrentUserID(c), req)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Created(c, post)
}

// GET /posts
func (h *Handler) list(c *gin.Context) {
	q := pagination.FromContext(c)
	posts, pag, err := h.svc.List(middleware.CurrentUserID(c), q)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	response.Paged(c, posts, pag)
}

// GET /posts/:id
func (h *Handler) get(c *gin.Context) {
	post, err := h.svc.Get(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if post == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, post)
}

type updateStatusDTO struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /posts/:id/status
func (h *Handler) updateStatus(c *gin.Context) {
	var dto updateStatusDTO
	if err := c.ShouldBindJSON(&dto); err != nil {
		response.BadRequest(c, err.Error())
		return
	}
	status := strings.ToLower(strings.TrimSpace(dto.Status))
	if status != models.PostStatusDraft && status != models.PostStatusPublished {
		response.BadRequest(c, "status must be draft or published")
		return
	}

	post, err := h.svc.UpdateStatus(middleware.CurrentUserID(c), c.Param("id"), status)
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if post == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, post)
}

// DELETE /posts/:id
func (h *Handler) delete(c *gin.Context) {
	ok, err := h.svc.Delete(middleware.CurrentUserID(c), c.Param("id"))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if !ok {
		response.NotFound(c)
		return
	}
	response.NoContent(c)
}
