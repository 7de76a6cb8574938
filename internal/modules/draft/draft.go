package draft

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/seoforge/core/internal/middleware"
	"github.com/seoforge/core/internal/models"
	"github.com/seoforge/core/internal/pkg/response"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Service struct{ db *gorm.DB }

func NewService(db *gorm.DB) *Service { return &Service{db: db} }

// UpsertSnapshot writes the user's draft in a single statement. The unique
// index on user_id plus ON CONFLICT makes concurrent saves for the same user
// converge on one row instead of racing a select-then-insert.
func (s *Service) UpsertSnapshot(ctx context.Context, userID string, snap Snapshot) error {
	row := models.BlogDraftModel{
		UserID:     userID,
		Keywords:   snap.Keywords,
		MetaTags:   snap.MetaTags,
		Headings:   snap.Headings,
		ShortIntro: snap.ShortIntro,
		Content:    snap.Content,
		FaqContent: snap.FaqContent,
	}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"keywords", "meta_tags", "headings",
			"short_intro", "content", "faq_content", "updated_at",
		}),
	}).Create(&row).Error
}

// GetByUser returns the user's draft, or nil when none is stored.
func (s *Service) GetByUser(userID string) (*models.BlogDraftModel, error) {
	var d models.BlogDraftModel
	if err := s.db.First(&d, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &d, nil
}

// DeleteByUser discards the user's stored draft.
func (s *Service) DeleteByUser(userID string) error {
	return s.db.Unscoped().Delete(&models.BlogDraftModel{}, "user_id = ?", userID).Error
}

// SnapshotOf converts a stored draft row back into wizard state.
func SnapshotOf(d *models.BlogDraftModel) Snapshot {
	return Snapshot{
		Keywords:   d.Keywords,
		MetaTags:   d.MetaTags,
		Headings:   d.Headings,
		ShortIntro: d.ShortIntro,
		Content:    d.Content,
		FaqContent: d.FaqContent,
	}
}

// SettingsFunc resolves the autosave session parameters for a user at
// session start.
type SettingsFunc func(userID string) (quiet time.Duration, enabled bool)

type Handler struct {
	svc      *Service
	sessions *Registry
	settings SettingsFunc
}

func NewHandler(svc *Service, sessions *Registry, settings SettingsFunc) *Handler {
	return &Handler{svc: svc, sessions: sessions, settings: settings}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, authMW gin.HandlerFunc) {
	g := rg.Group("/drafts", authMW)
	g.GET("", h.get)
	g.DELETE("/current", h.discard)
	g.PUT("/autosave", h.observe)
	g.POST("/autosave/flush", h.flush)
	g.DELETE("/autosave", h.teardown)
}

type draftResponse struct {
	ID       string    `json:"id"`
	Snapshot Snapshot  `json:"snapshot"`
	Created  time.Time `json:"created"`
	Modified time.Time `json:"modified"`
}

func toResponse(d *models.BlogDraftModel) draftResponse {
	return draftResponse{
		ID:       d.ID,
		Snapshot: SnapshotOf(d).normalized(),
		Created:  d.CreatedAt,
		Modified: d.UpdatedAt,
	}
}

func (h *Handler) get(c *gin.Context) {
	d, err := h.svc.GetByUser(middleware.CurrentUserID(c))
	if err != nil {
		response.InternalError(c, err)
		return
	}
	if d == nil {
		response.NotFound(c)
		return
	}
	response.OK(c, toResponse(d))
}

func (h *Handler) discard(c *gin.Context) {
	if err := h.svc.DeleteByUser(middleware.CurrentUserID(c)); err != nil {
		response.InternalError(c, err)
		return
	}
	response.NoContent(c)
}

// observe feeds a snapshot into the user's autosave session. The write
// itself happens later, once the quiet period elapses.
func (h *Handler) observe(c *gin.Context) {
	var snap Snapshot
	if err := c.ShouldBindJSON(&snap); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	userID := middleware.CurrentUserID(c)
	quiet, enabled := h.settings(userID)
	h.sessions.Obtain(userID, quiet, enabled).Observe(snap)

	response.Accepted(c, gin.H{"scheduled": true})
}

func (h *Handler) flush(c *gin.Context) {
	coord := h.sessions.Get(middleware.CurrentUserID(c))
	if coord == nil {
		response.NotFoundMsg(c, "no autosave session")
		return
	}
	if err := coord.Flush(c.Request.Context()); err != nil {
		response.InternalError(c, err)
		return
	}
	response.OK(c, gin.H{"flushed": true})
}

func (h *Handler) teardown(c *gin.Context) {
	h.sessions.Close(middleware.CurrentUserID(c))
	response.NoContent(c)
}
